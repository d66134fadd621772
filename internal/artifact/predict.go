package artifact

import (
	"math"

	"github.com/rotisserie/eris"
)

// Predict returns the probability of high intent for a feature vector in
// the artifact's schema order. Inference never mutates the artifact, so a
// loaded artifact is safe for concurrent use.
func (a *Artifact) Predict(x []float64) (float64, error) {
	if len(x) != len(a.Schema.FeatureNames) {
		return 0, eris.Errorf("artifact: feature vector length %d does not match schema %d",
			len(x), len(a.Schema.FeatureNames))
	}

	scaled := make([]float64, len(x))
	for i, v := range x {
		if a.Scaler.Std[i] == 0 {
			scaled[i] = 0
			continue
		}
		scaled[i] = (v - a.Scaler.Mean[i]) / a.Scaler.Std[i]
	}

	var margin float64
	switch a.ModelType {
	case ModelLogistic:
		margin = a.Intercept
		for i, w := range a.Weights {
			margin += w * scaled[i]
		}
	case ModelBoostedTrees:
		margin = a.BaseScore
		for _, tree := range a.Trees {
			margin += tree.eval(scaled)
		}
	default:
		return 0, eris.Errorf("artifact: unknown model_type %q", a.ModelType)
	}

	return sigmoid(margin), nil
}

// InitialScore converts the model probability to an integer 0-100 score by
// truncation, matching the training pipeline's convention.
func (a *Artifact) InitialScore(x []float64) (int, error) {
	p, err := a.Predict(x)
	if err != nil {
		return 0, err
	}
	score := int(p * 100)
	if score > 100 {
		score = 100
	}
	return score, nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Value
		}
		if x[node.Feature] < node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
