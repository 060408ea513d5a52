package features

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodePayload reads a single JSON object from r. Numbers are kept as
// json.Number so integer values are not rounded before conversion.
func DecodePayload(r io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("request body is empty")
		}
		return nil, fmt.Errorf("failed to decode JSON object: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to decode JSON object: unexpected data after top-level value")
	}

	payload, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("request body must be a JSON object, got %s", jsonKind(v))
	}
	return payload, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
