package artifact

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logisticArtifact() *Artifact {
	return &Artifact{
		Version:   "1.2.0",
		ModelType: ModelLogistic,
		Schema: Schema{
			FeatureNames: []string{"credit_score", "income", "age_group"},
			Encoders: map[string]map[string]float64{
				"age_group": {"18-25": 0, "26-35": 1, "36-50": 2, "51+": 3},
			},
		},
		Scaler: Scaler{
			Mean: []float64{650, 600000, 1.5},
			Std:  []float64{100, 200000, 1},
		},
		Weights:   []float64{0.8, 0.5, 0.1},
		Intercept: -0.2,
		FeatureImportance: map[string]float64{
			"credit_score": 0.55, "income": 0.35, "age_group": 0.10,
		},
	}
}

func treeArtifact() *Artifact {
	return &Artifact{
		Version:   "2.0.0",
		ModelType: ModelBoostedTrees,
		Schema: Schema{
			FeatureNames: []string{"credit_score", "income"},
		},
		Scaler: Scaler{
			Mean: []float64{0, 0},
			Std:  []float64{1, 1},
		},
		BaseScore: 0.1,
		Trees: []Tree{
			{Nodes: []TreeNode{
				{Feature: 0, Threshold: 700, Left: 1, Right: 2},
				{Feature: -1, Value: -0.5},
				{Feature: -1, Value: 0.7},
			}},
			{Nodes: []TreeNode{
				{Feature: 1, Threshold: 500000, Left: 1, Right: 2},
				{Feature: -1, Value: -0.2},
				{Feature: -1, Value: 0.4},
			}},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Artifact)
	}{
		{"missing version", func(a *Artifact) { a.Version = "" }},
		{"no features", func(a *Artifact) { a.Schema.FeatureNames = nil }},
		{"duplicate feature", func(a *Artifact) {
			a.Schema.FeatureNames = []string{"credit_score", "credit_score", "age_group"}
		}},
		{"scaler mismatch", func(a *Artifact) { a.Scaler.Mean = []float64{650} }},
		{"weights mismatch", func(a *Artifact) { a.Weights = []float64{0.8} }},
		{"unknown model type", func(a *Artifact) { a.ModelType = "perceptron" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := logisticArtifact()
			tt.mutate(a)
			assert.Error(t, a.Validate())
		})
	}

	t.Run("valid logistic", func(t *testing.T) {
		assert.NoError(t, logisticArtifact().Validate())
	})
	t.Run("valid boosted trees", func(t *testing.T) {
		assert.NoError(t, treeArtifact().Validate())
	})
	t.Run("tree with bad children", func(t *testing.T) {
		a := treeArtifact()
		a.Trees[0].Nodes[0].Right = 9
		assert.Error(t, a.Validate())
	})
	t.Run("tree routing on unknown feature", func(t *testing.T) {
		a := treeArtifact()
		a.Trees[0].Nodes[0].Feature = 5
		assert.Error(t, a.Validate())
	})
	t.Run("tree routing to itself", func(t *testing.T) {
		a := treeArtifact()
		a.Trees[0].Nodes = []TreeNode{
			{Feature: 0, Threshold: 700, Left: 0, Right: 0},
		}
		err := a.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-forward children")
	})
	t.Run("tree routing backward", func(t *testing.T) {
		a := treeArtifact()
		a.Trees[0].Nodes = []TreeNode{
			{Feature: 0, Threshold: 700, Left: 1, Right: 2},
			{Feature: 1, Threshold: 500000, Left: 0, Right: 2},
			{Feature: -1, Value: 0.3},
		}
		err := a.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-forward children")
	})
	t.Run("no trees", func(t *testing.T) {
		a := treeArtifact()
		a.Trees = nil
		assert.Error(t, a.Validate())
	})
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	data, err := json.Marshal(logisticArtifact())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	art, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", art.Version)
	assert.Equal(t, ModelLogistic, art.ModelType)
	assert.Len(t, art.Schema.FeatureNames, 3)
}

func TestLoad_Failures(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("schema mismatch detected at load", func(t *testing.T) {
		a := logisticArtifact()
		a.Weights = a.Weights[:1]
		data, err := json.Marshal(a)
		require.NoError(t, err)
		path := filepath.Join(dir, "mismatch.json")
		require.NoError(t, os.WriteFile(path, data, 0o644))
		_, err = Load(path)
		assert.Error(t, err)
	})
}

func TestPredict_Logistic(t *testing.T) {
	a := logisticArtifact()

	// At the scaler means, all standardized values are 0 and the margin is
	// just the intercept.
	p, err := a.Predict([]float64{650, 600000, 1.5})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(0.2)), p, 1e-9)

	// One std above the mean on every feature.
	p2, err := a.Predict([]float64{750, 800000, 2.5})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-(0.8+0.5+0.1-0.2))), p2, 1e-9)
	assert.Greater(t, p2, p)
}

func TestPredict_BoostedTrees(t *testing.T) {
	a := treeArtifact()

	// Left/left path: 0.1 - 0.5 - 0.2.
	p, err := a.Predict([]float64{600, 300000})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(-0.6), p, 1e-9)

	// Right/right path: 0.1 + 0.7 + 0.4.
	p2, err := a.Predict([]float64{800, 900000})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(1.2), p2, 1e-9)
}

func TestPredict_ZeroStdIsDefined(t *testing.T) {
	a := logisticArtifact()
	a.Scaler.Std[1] = 0

	p, err := a.Predict([]float64{650, 999999, 1.5})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(0.2)), p, 1e-9)
}

func TestPredict_LengthMismatch(t *testing.T) {
	a := logisticArtifact()
	_, err := a.Predict([]float64{650})
	assert.Error(t, err)
}

func TestInitialScore_Truncates(t *testing.T) {
	a := logisticArtifact()

	p, err := a.Predict([]float64{650, 600000, 1.5})
	require.NoError(t, err)

	score, err := a.InitialScore([]float64{650, 600000, 1.5})
	require.NoError(t, err)
	assert.Equal(t, int(p*100), score)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestScorer_Degraded(t *testing.T) {
	s := NewScorer(nil)
	assert.False(t, s.Ready())
	assert.Empty(t, s.Version())
	assert.Nil(t, s.FeatureImportance())

	_, err := s.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.InitialScore([]float64{1})
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.Schema()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestScorer_Loaded(t *testing.T) {
	s := NewScorer(logisticArtifact())
	assert.True(t, s.Ready())
	assert.Equal(t, "1.2.0", s.Version())

	schema, err := s.Schema()
	require.NoError(t, err)
	assert.Len(t, schema.FeatureNames, 3)

	score, err := s.InitialScore([]float64{750, 800000, 2.5})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestLoadScorer_DegradedOnFailure(t *testing.T) {
	s, err := LoadScorer(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
	require.NotNil(t, s)
	assert.False(t, s.Ready())
}
