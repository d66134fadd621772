package rerank

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func newDefaultReranker(t *testing.T) *Reranker {
	t.Helper()
	r, err := New(DefaultRules())
	require.NoError(t, err)
	return r
}

func TestRerank_EmptyComment(t *testing.T) {
	r := newDefaultReranker(t)

	for _, comment := range []string{"", "   ", "\t\n"} {
		res := r.Rerank(55, comment)
		assert.Equal(t, 55, res.Score, "comment %q", comment)
		assert.Empty(t, res.Adjustments)
		assert.Equal(t, "no comments provided", res.Explanation)
	}
}

func TestRerank_NoKeywords(t *testing.T) {
	r := newDefaultReranker(t)

	res := r.Rerank(50, "the weather is nice today")
	assert.Equal(t, 50, res.Score)
	assert.Empty(t, res.Adjustments)
	assert.Equal(t, "no significant keywords found in comments", res.Explanation)
}

func TestRerank_PositiveSignals(t *testing.T) {
	r := newDefaultReranker(t)

	// urgency "urgent" +10 and readiness "ready to buy" +15.
	res := r.Rerank(50, "I am ready to buy and it's urgent")
	assert.Equal(t, 75, res.Score)
	require.Len(t, res.Adjustments, 2)
	assert.Equal(t, CategoryUrgency, res.Adjustments[0].Category)
	assert.Equal(t, "urgent", res.Adjustments[0].Trigger)
	assert.Equal(t, CategoryReadiness, res.Adjustments[1].Category)
	assert.Equal(t, "ready to buy", res.Adjustments[1].Trigger)
	assert.Equal(t, "score adjusted by +25 points: urgency: urgent, readiness: ready to buy", res.Explanation)
}

func TestRerank_NegativeSignals(t *testing.T) {
	r := newDefaultReranker(t)

	// disengagement "not interested" -15 and browsing "just browsing" -10.
	res := r.Rerank(50, "just browsing, not interested")
	assert.Equal(t, 25, res.Score)
	require.Len(t, res.Adjustments, 2)
	assert.Equal(t, CategoryDisengagement, res.Adjustments[0].Category)
	assert.Equal(t, CategoryBrowsing, res.Adjustments[1].Category)
}

func TestRerank_CaseInsensitive(t *testing.T) {
	r := newDefaultReranker(t)

	lower := r.Rerank(50, "ready to buy ASAP")
	upper := r.Rerank(50, "READY TO BUY asap")
	assert.Equal(t, lower.Score, upper.Score)
	assert.Equal(t, 50+15+15, lower.Score)
}

func TestRerank_ClampUpper(t *testing.T) {
	r := newDefaultReranker(t)

	// asap +15, ready to buy +15, baby +15, sums past 100 from 95.
	res := r.Rerank(95, "new baby on the way, ready to buy asap")
	assert.Equal(t, 100, res.Score)
}

func TestRerank_ClampLower(t *testing.T) {
	r := newDefaultReranker(t)

	// not interested -15, just browsing -10 from 10 would go below 0.
	res := r.Rerank(10, "just browsing, really not interested")
	assert.Equal(t, 0, res.Score)
}

func TestRerank_OneRulePerCategory(t *testing.T) {
	r := newDefaultReranker(t)

	// Both "asap" (+15) and "urgent" (+10) match; only the larger-delta
	// rule fires for the urgency category.
	res := r.Rerank(50, "urgent, need it asap")
	require.Len(t, res.Adjustments, 1)
	assert.Equal(t, "asap", res.Adjustments[0].Trigger)
	assert.Equal(t, 65, res.Score)
}

func TestRerank_TieBreakDeterministic(t *testing.T) {
	rules := []Rule{
		{Trigger: "quick", Delta: 8, Category: CategoryUrgency},
		{Trigger: "fast", Delta: 8, Category: CategoryUrgency},
	}
	r, err := New(rules)
	require.NoError(t, err)

	// Equal deltas: longer trigger wins.
	res := r.Rerank(50, "a fast and quick closing")
	require.Len(t, res.Adjustments, 1)
	assert.Equal(t, "quick", res.Adjustments[0].Trigger)

	// Same input, same outcome regardless of declaration order.
	r2, err := New([]Rule{rules[1], rules[0]})
	require.NoError(t, err)
	res2 := r2.Rerank(50, "a fast and quick closing")
	assert.Equal(t, res.Adjustments, res2.Adjustments)
}

func TestRerank_LifeEventMagnitudes(t *testing.T) {
	r := newDefaultReranker(t)

	baby := r.Rerank(50, "expecting a baby")
	promo := r.Rerank(50, "got a promotion")
	assert.Equal(t, 65, baby.Score)
	assert.Equal(t, 55, promo.Score)
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr bool
	}{
		{"defaults valid", DefaultRules(), false},
		{"empty trigger", []Rule{{Trigger: " ", Delta: 5, Category: CategoryUrgency}}, true},
		{"zero delta", []Rule{{Trigger: "now", Delta: 0, Category: CategoryUrgency}}, true},
		{"unknown category", []Rule{{Trigger: "now", Delta: 5, Category: "mystery"}}, true},
		{"wrong polarity positive category", []Rule{{Trigger: "now", Delta: -5, Category: CategoryUrgency}}, true},
		{"wrong polarity negative category", []Rule{{Trigger: "meh", Delta: 5, Category: CategoryBrowsing}}, true},
		{"duplicate in category", []Rule{
			{Trigger: "now", Delta: 5, Category: CategoryUrgency},
			{Trigger: "NOW", Delta: 8, Category: CategoryUrgency},
		}, true},
		{"same trigger different categories ok", []Rule{
			{Trigger: "family", Delta: 8, Category: CategoryLifeEvent},
			{Trigger: "family", Delta: 5, Category: CategoryReadiness},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.rules)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadRules_File(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/rules.yaml"
	content := `rules:
  - trigger: "dream home"
    delta: 12
    category: readiness
  - trigger: "no rush"
    delta: -6
    category: disengagement
`
	require.NoError(t, writeFile(path, content))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "dream home", rules[0].Trigger)
	assert.Equal(t, 12, rules[0].Delta)
	assert.Equal(t, CategoryReadiness, rules[0].Category)
}

func TestLoadRules_Malformed(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRules(dir + "/nope.yaml")
		assert.Error(t, err)
	})

	t.Run("empty rules", func(t *testing.T) {
		path := dir + "/empty.yaml"
		require.NoError(t, writeFile(path, "rules: []\n"))
		_, err := LoadRules(path)
		assert.Error(t, err)
	})

	t.Run("bad rule", func(t *testing.T) {
		path := dir + "/bad.yaml"
		require.NoError(t, writeFile(path, "rules:\n  - trigger: now\n    delta: 0\n    category: urgency\n"))
		_, err := LoadRules(path)
		assert.Error(t, err)
	})
}
