package rerank

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Adjustment records one rule that fired during reranking.
type Adjustment struct {
	Category Category `json:"category"`
	Trigger  string   `json:"trigger"`
	Delta    int      `json:"delta"`
}

// Result is the outcome of reranking one comment against a rule set.
type Result struct {
	Score       int          `json:"score"`
	Adjustments []Adjustment `json:"adjustments,omitempty"`
	Explanation string       `json:"explanation"`
}

// Reranker evaluates a static rule table against lead comments. Safe for
// concurrent use; the rule set is immutable after construction.
type Reranker struct {
	// byCategory holds rules grouped per category, ordered by evaluation
	// priority: descending |delta|, then longer trigger, then lexicographic.
	byCategory map[Category][]Rule
	folder     cases.Caser
}

// New builds a Reranker from the given rules, validating them first.
func New(rules []Rule) (*Reranker, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	byCategory := make(map[Category][]Rule)
	for _, r := range rules {
		r.Trigger = strings.TrimSpace(r.Trigger)
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}
	for cat := range byCategory {
		rs := byCategory[cat]
		sort.SliceStable(rs, func(i, j int) bool {
			ai, aj := abs(rs[i].Delta), abs(rs[j].Delta)
			if ai != aj {
				return ai > aj
			}
			if len(rs[i].Trigger) != len(rs[j].Trigger) {
				return len(rs[i].Trigger) > len(rs[j].Trigger)
			}
			return rs[i].Trigger < rs[j].Trigger
		})
	}

	return &Reranker{byCategory: byCategory, folder: cases.Fold()}, nil
}

// Rerank applies the rule table to the comment and returns the adjusted
// score clamped to [0,100]. At most one rule fires per category: the
// matching rule with the largest absolute delta wins, ties broken by longer
// trigger then lexicographic order. Empty or whitespace-only comments leave
// the score unchanged.
func (r *Reranker) Rerank(initialScore int, comments string) Result {
	normalized := strings.TrimSpace(r.folder.String(comments))
	if normalized == "" {
		return Result{
			Score:       clamp(initialScore),
			Explanation: "no comments provided",
		}
	}

	var adjustments []Adjustment
	total := 0
	for _, cat := range categoryOrder {
		for _, rule := range r.byCategory[cat] {
			if strings.Contains(normalized, r.folder.String(rule.Trigger)) {
				adjustments = append(adjustments, Adjustment{
					Category: cat,
					Trigger:  rule.Trigger,
					Delta:    rule.Delta,
				})
				total += rule.Delta
				break
			}
		}
	}

	if len(adjustments) == 0 {
		return Result{
			Score:       clamp(initialScore),
			Explanation: "no significant keywords found in comments",
		}
	}

	return Result{
		Score:       clamp(initialScore + total),
		Adjustments: adjustments,
		Explanation: explain(total, adjustments),
	}
}

func explain(total int, adjustments []Adjustment) string {
	parts := make([]string, len(adjustments))
	for i, a := range adjustments {
		parts[i] = fmt.Sprintf("%s: %s", a.Category, a.Trigger)
	}
	return fmt.Sprintf("score adjusted by %+d points: %s", total, strings.Join(parts, ", "))
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
