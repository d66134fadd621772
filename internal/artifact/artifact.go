// Package artifact loads and evaluates the trained intent model. The artifact
// is a versioned JSON file produced by the training pipeline; it is loaded
// once at process start and treated as read-only for the process lifetime.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Model families the evaluator understands.
const (
	ModelLogistic     = "logistic"
	ModelBoostedTrees = "boosted_trees"
)

// Schema describes the feature vector the model expects: feature names in
// order, plus the categorical encoding tables fixed at training time.
type Schema struct {
	FeatureNames []string                      `json:"feature_names"`
	Encoders     map[string]map[string]float64 `json:"encoders"`
}

// Scaler holds per-feature standardization parameters.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// TreeNode is one node of a regression tree. Leaf nodes have Feature == -1
// and carry Value; internal nodes route on x[Feature] < Threshold.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a single regression tree evaluated from node 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Artifact is the on-disk trained model: schema, scaler, predictor
// parameters and training-time feature importances.
type Artifact struct {
	Version   string `json:"version"`
	ModelType string `json:"model_type"`
	Schema    Schema `json:"schema"`
	Scaler    Scaler `json:"scaler"`

	// Logistic parameters.
	Weights   []float64 `json:"weights,omitempty"`
	Intercept float64   `json:"intercept,omitempty"`

	// Boosted-tree parameters.
	Trees     []Tree  `json:"trees,omitempty"`
	BaseScore float64 `json:"base_score,omitempty"`

	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read %s", path)
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, eris.Wrapf(err, "artifact: parse %s", path)
	}
	if err := art.Validate(); err != nil {
		return nil, err
	}

	zap.L().Info("artifact: model loaded",
		zap.String("path", path),
		zap.String("version", art.Version),
		zap.String("model_type", art.ModelType),
		zap.Int("features", len(art.Schema.FeatureNames)),
	)
	return &art, nil
}

// Validate checks internal consistency: any dimension mismatch between the
// schema, scaler and predictor parameters is a load-time error, never a
// per-request one.
func (a *Artifact) Validate() error {
	var errs []string

	if a.Version == "" {
		errs = append(errs, "version is required")
	}
	n := len(a.Schema.FeatureNames)
	if n == 0 {
		errs = append(errs, "schema has no features")
	}
	seen := make(map[string]bool, n)
	for _, name := range a.Schema.FeatureNames {
		if seen[name] {
			errs = append(errs, fmt.Sprintf("duplicate feature %q", name))
		}
		seen[name] = true
	}
	if len(a.Scaler.Mean) != n || len(a.Scaler.Std) != n {
		errs = append(errs, fmt.Sprintf("scaler dimensions %d/%d do not match %d features",
			len(a.Scaler.Mean), len(a.Scaler.Std), n))
	}

	switch a.ModelType {
	case ModelLogistic:
		if len(a.Weights) != n {
			errs = append(errs, fmt.Sprintf("logistic weights %d do not match %d features", len(a.Weights), n))
		}
	case ModelBoostedTrees:
		if len(a.Trees) == 0 {
			errs = append(errs, "boosted_trees model has no trees")
		}
		for ti, tree := range a.Trees {
			if len(tree.Nodes) == 0 {
				errs = append(errs, fmt.Sprintf("tree %d has no nodes", ti))
				continue
			}
			for ni, node := range tree.Nodes {
				if node.Feature >= n {
					errs = append(errs, fmt.Sprintf("tree %d node %d routes on unknown feature %d", ti, ni, node.Feature))
				}
				if node.Feature >= 0 {
					if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
						errs = append(errs, fmt.Sprintf("tree %d node %d has out-of-range children", ti, ni))
					} else if node.Left <= ni || node.Right <= ni {
						// Children must route strictly forward; a back or self
						// reference would make eval loop forever.
						errs = append(errs, fmt.Sprintf("tree %d node %d has non-forward children", ti, ni))
					}
				}
			}
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown model_type %q", a.ModelType))
	}

	if len(errs) > 0 {
		return eris.Errorf("artifact: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
