package scoring

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/wifi-anomaly-api/internal/features"
)

// modelJSON returns testdata/xgb_model.json after applying mutate to its learner object
func modelJSON(t *testing.T, mutate func(learner map[string]interface{})) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/xgb_model.json")
	require.NoError(t, err)
	if mutate == nil {
		return data
	}

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	mutate(doc["learner"].(map[string]interface{}))
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func firstTree(learner map[string]interface{}) map[string]interface{} {
	gb := learner["gradient_booster"].(map[string]interface{})
	model := gb["model"].(map[string]interface{})
	return model["trees"].([]interface{})[0].(map[string]interface{})
}

// scaled returns a scaled vector with the given Flow Duration and Flow IAT Std values
func scaled(flowDuration, iatStd float64) []float64 {
	x := make([]float64, 10)
	x[0] = flowDuration
	x[8] = iatStd
	return x
}

func TestTreeClassifier_Predict(t *testing.T) {
	c, err := LoadTreeClassifier(bytes.NewReader(modelJSON(t, nil)), features.Default())
	require.NoError(t, err)
	// best_iteration=1 keeps the first two rounds
	assert.Equal(t, 2, c.NumTrees())

	tests := []struct {
		name   string
		x      []float64
		margin float64
		label  int
	}{
		{name: "short flow, low jitter", x: scaled(-1.8, -1), margin: -1.7, label: LabelNormal},
		{name: "long flow, low jitter", x: scaled(8, -1), margin: 2.3, label: LabelAnomaly},
		{name: "split threshold goes right", x: scaled(0, 0), margin: 1.7, label: LabelAnomaly},
		{name: "missing value follows default_left", x: scaled(math.NaN(), 1), margin: -2.3, label: LabelNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Probability(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, 1/(1+math.Exp(-tt.margin)), p, 1e-6)

			label, err := c.Predict(tt.x)
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestTreeClassifier_AllTreesWithoutBestIteration(t *testing.T) {
	data := modelJSON(t, func(learner map[string]interface{}) {
		delete(learner["attributes"].(map[string]interface{}), "best_iteration")
	})

	c, err := LoadTreeClassifier(bytes.NewReader(data), features.Default())
	require.NoError(t, err)
	assert.Equal(t, 3, c.NumTrees())

	// the third tree adds a constant 100 to every margin
	label, err := c.Predict(scaled(-1.8, -1))
	require.NoError(t, err)
	assert.Equal(t, LabelAnomaly, label)
}

func TestTreeClassifier_BaseScore(t *testing.T) {
	data := modelJSON(t, func(learner map[string]interface{}) {
		learner["learner_model_param"].(map[string]interface{})["base_score"] = "[9E-1]"
	})

	c, err := LoadTreeClassifier(bytes.NewReader(data), features.Default())
	require.NoError(t, err)

	// logit(0.9) ~ 2.197 lifts -1.7 above zero
	p, err := c.Probability(scaled(-1.8, -1))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-(-1.7+math.Log(9)))), p, 1e-6)
}

func TestTreeClassifier_WrongWidth(t *testing.T) {
	c, err := LoadTreeClassifier(bytes.NewReader(modelJSON(t, nil)), features.Default())
	require.NoError(t, err)

	_, err = c.Predict([]float64{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature shape mismatch")
}

func TestLoadTreeClassifier_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(learner map[string]interface{})
		wantErr string
	}{
		{
			name: "dart booster",
			mutate: func(l map[string]interface{}) {
				l["gradient_booster"].(map[string]interface{})["name"] = "dart"
			},
			wantErr: "unsupported booster",
		},
		{
			name: "regression objective",
			mutate: func(l map[string]interface{}) {
				l["objective"].(map[string]interface{})["name"] = "reg:squarederror"
			},
			wantErr: "unsupported objective",
		},
		{
			name: "multiclass",
			mutate: func(l map[string]interface{}) {
				l["learner_model_param"].(map[string]interface{})["num_class"] = "3"
			},
			wantErr: "3 classes",
		},
		{
			name: "feature count",
			mutate: func(l map[string]interface{}) {
				l["learner_model_param"].(map[string]interface{})["num_feature"] = "9"
			},
			wantErr: "trained on 9 features",
		},
		{
			name: "feature order",
			mutate: func(l map[string]interface{}) {
				names := l["feature_names"].([]interface{})
				names[0], names[1] = names[1], names[0]
			},
			wantErr: "do not match",
		},
		{
			name: "base score out of range",
			mutate: func(l map[string]interface{}) {
				l["learner_model_param"].(map[string]interface{})["base_score"] = "1"
			},
			wantErr: "base_score",
		},
		{
			name: "child out of range",
			mutate: func(l map[string]interface{}) {
				firstTree(l)["left_children"] = []interface{}{7, -1, -1}
			},
			wantErr: "out of range children",
		},
		{
			name: "split feature out of range",
			mutate: func(l map[string]interface{}) {
				firstTree(l)["split_indices"] = []interface{}{12, 0, 0}
			},
			wantErr: "splits on feature 12",
		},
		{
			name: "categorical split",
			mutate: func(l map[string]interface{}) {
				firstTree(l)["split_type"] = []interface{}{1, 0, 0}
			},
			wantErr: "categorical",
		},
		{
			name: "ragged arrays",
			mutate: func(l map[string]interface{}) {
				firstTree(l)["split_conditions"] = []interface{}{0.0, 1.0}
			},
			wantErr: "inconsistent lengths",
		},
		{
			name: "bad best iteration",
			mutate: func(l map[string]interface{}) {
				l["attributes"].(map[string]interface{})["best_iteration"] = "first"
			},
			wantErr: "invalid best_iteration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTreeClassifier(bytes.NewReader(modelJSON(t, tt.mutate)), features.Default())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadTreeClassifier_BoolDefaultLeft(t *testing.T) {
	data := modelJSON(t, func(l map[string]interface{}) {
		firstTree(l)["default_left"] = []interface{}{false, false, false}
	})

	c, err := LoadTreeClassifier(bytes.NewReader(data), features.Default())
	require.NoError(t, err)

	// NaN now goes right: +2.0, then +0.3
	label, err := c.Predict(scaled(math.NaN(), -1))
	require.NoError(t, err)
	assert.Equal(t, LabelAnomaly, label)
}

func TestLoadTreeClassifierFile(t *testing.T) {
	_, err := LoadTreeClassifierFile("testdata/xgb_model.json", features.Default())
	require.NoError(t, err)

	_, err = LoadTreeClassifierFile("testdata/nope.json", features.Default())
	require.Error(t, err)
}
