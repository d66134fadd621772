package artifact

import (
	"github.com/rotisserie/eris"
)

// ErrNotLoaded is returned when inference is attempted without a loaded
// artifact.
var ErrNotLoaded = eris.New("artifact: model not loaded")

// Scorer is the process-wide model lifecycle state: either it holds a loaded
// artifact or it is degraded. There is no implicit reload; replacing the
// artifact is an explicit administrative restart.
type Scorer struct {
	art *Artifact
}

// NewScorer wraps a loaded artifact. A nil artifact yields a degraded scorer
// whose Ready reports false.
func NewScorer(art *Artifact) *Scorer {
	return &Scorer{art: art}
}

// LoadScorer loads the artifact at path. On load failure it returns a
// degraded scorer alongside the error so the caller can decide between
// failing startup and running with scoring refused.
func LoadScorer(path string) (*Scorer, error) {
	art, err := Load(path)
	if err != nil {
		return &Scorer{}, err
	}
	return &Scorer{art: art}, nil
}

// Ready reports whether the model artifact is loaded and usable.
func (s *Scorer) Ready() bool {
	return s != nil && s.art != nil
}

// Predict returns the high-intent probability for a schema-ordered vector.
func (s *Scorer) Predict(x []float64) (float64, error) {
	if !s.Ready() {
		return 0, ErrNotLoaded
	}
	return s.art.Predict(x)
}

// InitialScore returns the integer 0-100 model score for a vector.
func (s *Scorer) InitialScore(x []float64) (int, error) {
	if !s.Ready() {
		return 0, ErrNotLoaded
	}
	return s.art.InitialScore(x)
}

// Schema returns the feature schema the loaded artifact expects.
func (s *Scorer) Schema() (Schema, error) {
	if !s.Ready() {
		return Schema{}, ErrNotLoaded
	}
	return s.art.Schema, nil
}

// Version returns the loaded artifact version, or "" when degraded.
func (s *Scorer) Version() string {
	if !s.Ready() {
		return ""
	}
	return s.art.Version
}

// FeatureImportance exposes the training-time importances verbatim.
func (s *Scorer) FeatureImportance() map[string]float64 {
	if !s.Ready() {
		return nil
	}
	return s.art.FeatureImportance
}
