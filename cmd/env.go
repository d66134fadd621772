package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homesignal/leadscore/internal/artifact"
	"github.com/homesignal/leadscore/internal/feature"
	"github.com/homesignal/leadscore/internal/rerank"
	"github.com/homesignal/leadscore/internal/scoring"
	"github.com/homesignal/leadscore/internal/store"
)

// scoringEnv holds the initialized store and pipeline needed by the
// score/batch/serve/leads/stats commands.
type scoringEnv struct {
	Store    store.Store
	Pipeline *scoring.Pipeline
}

// Close releases resources held by the environment.
func (e *scoringEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initScoring sets up the store, loads the model artifact and rerank rules,
// and assembles the pipeline. Callers should defer env.Close().
//
// A missing or invalid model artifact does not abort startup: the pipeline
// runs degraded and either refuses scoring requests or applies the
// configured fallback policy.
func initScoring(ctx context.Context) (*scoringEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	scorer, err := artifact.LoadScorer(cfg.Model.ArtifactPath)
	if err != nil {
		zap.L().Warn("model artifact unavailable, running degraded",
			zap.String("path", cfg.Model.ArtifactPath),
			zap.Bool("fallback_enabled", cfg.Model.Fallback.Enabled),
			zap.Error(err),
		)
	}

	var builder *feature.Builder
	if scorer.Ready() {
		schema, err := scorer.Schema()
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "read artifact schema")
		}
		builder, err = feature.NewBuilder(schema)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "bind feature builder to artifact schema")
		}
	}

	rules := rerank.DefaultRules()
	if cfg.Rerank.RulesPath != "" {
		rules, err = rerank.LoadRules(cfg.Rerank.RulesPath)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load rerank rules")
		}
		zap.L().Info("rerank rules loaded",
			zap.String("path", cfg.Rerank.RulesPath),
			zap.Int("rules", len(rules)),
		)
	}
	reranker, err := rerank.New(rules)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "build reranker")
	}

	p, err := scoring.NewPipeline(builder, scorer, reranker, st, cfg.Model.Fallback)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &scoringEnv{Store: st, Pipeline: p}, nil
}
