// Package scoring sequences the intent scoring pipeline: feature building,
// model scoring, comment reranking, tier classification, pseudonymization
// and persistence.
package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homesignal/leadscore/internal/artifact"
	"github.com/homesignal/leadscore/internal/feature"
	"github.com/homesignal/leadscore/internal/model"
	"github.com/homesignal/leadscore/internal/pseudo"
	"github.com/homesignal/leadscore/internal/rerank"
	"github.com/homesignal/leadscore/internal/store"
)

// FallbackPolicy controls behavior when the model artifact is unavailable.
// Disabled by default: scoring requests are refused, not answered with an
// arbitrary score.
type FallbackPolicy struct {
	Enabled      bool `yaml:"enabled" mapstructure:"enabled"`
	NeutralScore int  `yaml:"neutral_score" mapstructure:"neutral_score"`
}

// Pipeline is the single entry point for scoring leads. Stateless per
// request; safe for concurrent use.
type Pipeline struct {
	builder  *feature.Builder
	scorer   *artifact.Scorer
	reranker *rerank.Reranker
	store    store.Store
	fallback FallbackPolicy
	now      func() time.Time
}

// NewPipeline assembles a Pipeline. A ready scorer requires a builder bound
// to its schema; a degraded scorer may run without one when a fallback
// policy is configured.
func NewPipeline(builder *feature.Builder, scorer *artifact.Scorer, reranker *rerank.Reranker, st store.Store, fallback FallbackPolicy) (*Pipeline, error) {
	if scorer == nil {
		return nil, eris.New("scoring: scorer is required")
	}
	if scorer.Ready() && builder == nil {
		return nil, eris.New("scoring: feature builder is required when the model is loaded")
	}
	if reranker == nil {
		return nil, eris.New("scoring: reranker is required")
	}
	if st == nil {
		return nil, eris.New("scoring: store is required")
	}
	if fallback.Enabled && (fallback.NeutralScore < 0 || fallback.NeutralScore > 100) {
		return nil, eris.Errorf("scoring: fallback neutral score %d out of range", fallback.NeutralScore)
	}
	return &Pipeline{
		builder:  builder,
		scorer:   scorer,
		reranker: reranker,
		store:    st,
		fallback: fallback,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// ModelReady reports whether the model artifact is loaded.
func (p *Pipeline) ModelReady() bool {
	return p.scorer.Ready()
}

// ModelVersion returns the loaded artifact version, or "" when degraded.
func (p *Pipeline) ModelVersion() string {
	return p.scorer.Version()
}

// Store exposes the persistence collaborator for read paths.
func (p *Pipeline) Store() store.Store {
	return p.store
}

// Score runs the full pipeline for one lead. On any stage failure it
// returns a typed error identifying the stage and persists nothing; the one
// exception is persistence itself, where the computed result is returned
// alongside a *PersistenceError.
func (p *Pipeline) Score(ctx context.Context, lead model.LeadInput) (*model.ScoreResult, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	var (
		initialScore int
		usedFallback bool
	)
	switch {
	case p.scorer.Ready():
		vec := p.builder.Build(lead)
		score, err := p.scorer.InitialScore(vec)
		if err != nil {
			return nil, eris.Wrap(err, "scoring: model inference")
		}
		initialScore = score
	case p.fallback.Enabled:
		initialScore = p.fallback.NeutralScore
		usedFallback = true
	default:
		return nil, ErrModelUnavailable
	}

	reranked := p.reranker.Rerank(initialScore, lead.Comments)

	result := &model.ScoreResult{
		InitialScore:  initialScore,
		RerankedScore: reranked.Score,
		IntentLevel:   model.ClassifyIntent(reranked.Score),
		Explanation:   reranked.Explanation,
		HashedEmail:   pseudo.Digest(lead.Email),
		HashedPhone:   pseudo.Digest(lead.Phone),
		Timestamp:     p.now(),
		ModelFallback: usedFallback,
	}

	rec := model.LeadRecord{
		ID:            uuid.New().String(),
		HashedEmail:   result.HashedEmail,
		HashedPhone:   result.HashedPhone,
		InitialScore:  result.InitialScore,
		RerankedScore: result.RerankedScore,
		IntentLevel:   result.IntentLevel,
		Explanation:   result.Explanation,
		Comments:      lead.Comments,
		Timestamp:     result.Timestamp,
	}
	if err := p.store.AppendLead(ctx, rec); err != nil {
		zap.L().Error("scoring: result computed but not persisted",
			zap.String("record_id", rec.ID),
			zap.Error(err),
		)
		return result, &PersistenceError{Err: err}
	}

	zap.L().Info("scoring: lead scored",
		zap.String("record_id", rec.ID),
		zap.Int("initial_score", result.InitialScore),
		zap.Int("reranked_score", result.RerankedScore),
		zap.String("intent_level", string(result.IntentLevel)),
		zap.Bool("model_fallback", usedFallback),
	)
	return result, nil
}
