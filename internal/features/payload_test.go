package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	payload, err := DecodePayload(strings.NewReader(`{"Flow Duration": 12345678901234567, "extra": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567", payload["Flow Duration"].(interface{ String() string }).String())
	assert.Equal(t, "x", payload["extra"])
}

func TestDecodePayload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "empty", body: "", wantErr: "empty"},
		{name: "malformed", body: `{"Flow Duration": }`, wantErr: "failed to decode"},
		{name: "trailing data", body: `{"a": 1} {"b": 2}`, wantErr: "unexpected data"},
		{name: "array", body: `[1, 2, 3]`, wantErr: "got array"},
		{name: "null", body: `null`, wantErr: "got null"},
		{name: "string", body: `"hello"`, wantErr: "got string"},
		{name: "number", body: `42`, wantErr: "got number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
