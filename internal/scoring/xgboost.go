package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ajharbinger/wifi-anomaly-api/internal/features"
)

// ObjectiveBinaryLogistic is the only objective the tree classifier evaluates
const ObjectiveBinaryLogistic = "binary:logistic"

// xgbModel mirrors the parts of XGBoost's JSON model format
// (Booster.save_model("model.json")) needed for inference.
type xgbModel struct {
	Learner struct {
		Attributes      map[string]string `json:"attributes"`
		FeatureNames    []string          `json:"feature_names"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Param struct {
					NumTrees        string `json:"num_trees"`
					NumParallelTree string `json:"num_parallel_tree"`
				} `json:"gbtree_model_param"`
				Trees    []xgbTree `json:"trees"`
				TreeInfo []int     `json:"tree_info"`
			} `json:"model"`
		} `json:"gradient_booster"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumClass   string `json:"num_class"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
}

type xgbTree struct {
	LeftChildren    []int      `json:"left_children"`
	RightChildren   []int      `json:"right_children"`
	SplitIndices    []int      `json:"split_indices"`
	SplitConditions []float64  `json:"split_conditions"`
	DefaultLeft     []flexBool `json:"default_left"`
	SplitType       []int      `json:"split_type"`
}

// flexBool accepts both 0/1 and true/false, which differ across XGBoost releases
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*b = true
	case "0", "false":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// node is a flattened tree node. Leaves have left == -1 and carry their
// output in value.
type node struct {
	left        int32
	right       int32
	feature     int32
	defaultLeft bool
	value       float32
}

type regTree struct {
	nodes []node
}

// TreeClassifier evaluates a gradient boosted tree ensemble trained with the
// binary:logistic objective. Arithmetic is done in float32 to match XGBoost.
type TreeClassifier struct {
	trees      []regTree
	baseMargin float32
	numFeature int
}

// NumTrees returns the number of trees used for prediction
func (c *TreeClassifier) NumTrees() int {
	return len(c.trees)
}

// Probability returns the anomaly probability for x
func (c *TreeClassifier) Probability(x []float64) (float64, error) {
	margin, err := c.margin(x)
	if err != nil {
		return 0, err
	}
	return float64(sigmoid(margin)), nil
}

// Predict returns 1 when the anomaly probability exceeds 0.5
func (c *TreeClassifier) Predict(x []float64) (int, error) {
	p, err := c.Probability(x)
	if err != nil {
		return 0, err
	}
	if p > 0.5 {
		return LabelAnomaly, nil
	}
	return LabelNormal, nil
}

func (c *TreeClassifier) margin(x []float64) (float32, error) {
	if len(x) != c.numFeature {
		return 0, fmt.Errorf("feature shape mismatch, expected: %d, got %d", c.numFeature, len(x))
	}

	fx := make([]float32, len(x))
	for i, v := range x {
		fx[i] = float32(v)
	}

	sum := c.baseMargin
	for i := range c.trees {
		leaf, err := c.trees[i].leaf(fx)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += leaf
	}
	return sum, nil
}

func (t *regTree) leaf(x []float32) (float32, error) {
	idx := int32(0)
	// a well-formed tree never needs more steps than it has nodes
	for steps := 0; steps <= len(t.nodes); steps++ {
		n := t.nodes[idx]
		if n.left == -1 {
			return n.value, nil
		}
		v := x[n.feature]
		switch {
		case math.IsNaN(float64(v)):
			if n.defaultLeft {
				idx = n.left
			} else {
				idx = n.right
			}
		case v < n.value:
			idx = n.left
		default:
			idx = n.right
		}
	}
	return 0, fmt.Errorf("tree walk did not reach a leaf")
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(x))))
}

// LoadTreeClassifier decodes an XGBoost JSON model and checks it against schema
func LoadTreeClassifier(r io.Reader, schema *features.Schema) (*TreeClassifier, error) {
	var m xgbModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode classifier artifact: %w", err)
	}
	l := &m.Learner

	if name := l.GradientBooster.Name; name != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q, expected gbtree", name)
	}
	if obj := l.Objective.Name; obj != ObjectiveBinaryLogistic {
		return nil, fmt.Errorf("unsupported objective %q, expected %s", obj, ObjectiveBinaryLogistic)
	}
	if nc := parseParamInt(l.LearnerModelParam.NumClass, 0); nc > 1 {
		return nil, fmt.Errorf("model has %d classes, expected a binary classifier", nc)
	}

	numFeature := parseParamInt(l.LearnerModelParam.NumFeature, 0)
	if numFeature != schema.Len() {
		return nil, fmt.Errorf("classifier was trained on %d features, schema has %d", numFeature, schema.Len())
	}
	if len(l.FeatureNames) > 0 && !schema.Equal(l.FeatureNames) {
		return nil, fmt.Errorf("classifier feature names %v do not match schema %v", l.FeatureNames, schema.Names())
	}

	baseScore, err := parseBaseScore(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}
	if baseScore <= 0 || baseScore >= 1 {
		return nil, fmt.Errorf("base_score %v must be in (0, 1) for %s", baseScore, ObjectiveBinaryLogistic)
	}

	raw := l.GradientBooster.Model.Trees
	if len(raw) == 0 {
		return nil, fmt.Errorf("classifier has no trees")
	}

	// XGBClassifier.predict stops at best_iteration when early stopping recorded one
	limit := len(raw)
	if best, ok := l.Attributes["best_iteration"]; ok {
		perRound := parseParamInt(l.GradientBooster.Model.Param.NumParallelTree, 1)
		if perRound < 1 {
			perRound = 1
		}
		iter, err := strconv.Atoi(best)
		if err != nil {
			return nil, fmt.Errorf("invalid best_iteration %q: %w", best, err)
		}
		if n := (iter + 1) * perRound; n < limit {
			limit = n
		}
	}

	c := &TreeClassifier{
		trees:      make([]regTree, 0, limit),
		baseMargin: float32(-math.Log(1/baseScore - 1)),
		numFeature: numFeature,
	}
	for i := 0; i < limit; i++ {
		tree, err := buildTree(raw[i], numFeature)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		c.trees = append(c.trees, tree)
	}
	return c, nil
}

// LoadTreeClassifierFile reads an XGBoost JSON model from disk
func LoadTreeClassifierFile(path string, schema *features.Schema) (*TreeClassifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open classifier artifact: %w", err)
	}
	defer f.Close()
	return LoadTreeClassifier(f, schema)
}

func buildTree(t xgbTree, numFeature int) (regTree, error) {
	n := len(t.LeftChildren)
	if n == 0 {
		return regTree{}, fmt.Errorf("tree has no nodes")
	}
	if len(t.RightChildren) != n || len(t.SplitIndices) != n || len(t.SplitConditions) != n {
		return regTree{}, fmt.Errorf("tree arrays have inconsistent lengths")
	}
	if len(t.DefaultLeft) != 0 && len(t.DefaultLeft) != n {
		return regTree{}, fmt.Errorf("default_left has %d entries, expected %d", len(t.DefaultLeft), n)
	}

	nodes := make([]node, n)
	for i := 0; i < n; i++ {
		left, right := t.LeftChildren[i], t.RightChildren[i]
		nd := node{left: int32(left), right: int32(right), value: float32(t.SplitConditions[i])}
		if len(t.DefaultLeft) == n {
			nd.defaultLeft = bool(t.DefaultLeft[i])
		}

		if left != -1 {
			if left <= 0 || left >= n || right <= 0 || right >= n {
				return regTree{}, fmt.Errorf("node %d has out of range children (%d, %d)", i, left, right)
			}
			if len(t.SplitType) == n && t.SplitType[i] != 0 {
				return regTree{}, fmt.Errorf("node %d uses a categorical split, which is not supported", i)
			}
			feature := t.SplitIndices[i]
			if feature < 0 || feature >= numFeature {
				return regTree{}, fmt.Errorf("node %d splits on feature %d, model has %d", i, feature, numFeature)
			}
			nd.feature = int32(feature)
		}
		nodes[i] = nd
	}
	return regTree{nodes: nodes}, nil
}

// parseBaseScore handles both "5E-1" and the bracketed "[5E-1]" written by XGBoost 2.1+
func parseBaseScore(s string) (float64, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]"))
	if s == "" {
		return 0.5, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid base_score %q: %w", s, err)
	}
	return v, nil
}

func parseParamInt(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return v
}
