package scoring

import (
	"context"
	"math"

	"github.com/rotisserie/eris"

	"github.com/homesignal/leadscore/internal/model"
	"github.com/homesignal/leadscore/internal/store"
)

// Stats is an aggregate view over all stored lead records plus model
// metadata exposed verbatim from the artifact.
type Stats struct {
	TotalLeads         int                       `json:"total_leads"`
	AvgInitialScore    float64                   `json:"average_initial_score"`
	AvgRerankedScore   float64                   `json:"average_reranked_score"`
	IntentDistribution map[model.IntentLevel]int `json:"intent_distribution"`
	ModelLoaded        bool                      `json:"model_loaded"`
	ModelVersion       string                    `json:"model_version,omitempty"`
	FeatureImportance  map[string]float64        `json:"feature_importance,omitempty"`
}

// statsPageSize bounds each ListLeads page while folding.
const statsPageSize = 1000

// Stats folds over every stored record.
func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		IntentDistribution: make(map[model.IntentLevel]int),
		ModelLoaded:        p.scorer.Ready(),
		ModelVersion:       p.scorer.Version(),
		FeatureImportance:  p.scorer.FeatureImportance(),
	}

	var sumInitial, sumReranked int
	for offset := 0; ; offset += statsPageSize {
		recs, err := p.store.ListLeads(ctx, store.LeadFilter{Limit: statsPageSize, Offset: offset})
		if err != nil {
			return nil, eris.Wrap(err, "scoring: list leads for stats")
		}
		for _, rec := range recs {
			stats.TotalLeads++
			sumInitial += rec.InitialScore
			sumReranked += rec.RerankedScore
			stats.IntentDistribution[rec.IntentLevel]++
		}
		if len(recs) < statsPageSize {
			break
		}
	}

	if stats.TotalLeads > 0 {
		stats.AvgInitialScore = round2(float64(sumInitial) / float64(stats.TotalLeads))
		stats.AvgRerankedScore = round2(float64(sumReranked) / float64(stats.TotalLeads))
	}
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
