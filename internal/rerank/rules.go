// Package rerank implements the deterministic comment-driven rule engine that
// perturbs a model-derived intent score using free-text lead comments.
package rerank

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Category tags a rule for explanation grouping. Positive-delta categories
// signal intent, negative-delta categories signal its absence.
type Category string

const (
	CategoryUrgency       Category = "urgency"
	CategoryReadiness     Category = "readiness"
	CategoryLifeEvent     Category = "life_event"
	CategoryDisengagement Category = "disengagement"
	CategoryBrowsing      Category = "browsing"
)

// categoryOrder fixes the order adjustments appear in explanations.
var categoryOrder = []Category{
	CategoryUrgency, CategoryReadiness, CategoryLifeEvent,
	CategoryDisengagement, CategoryBrowsing,
}

// categoryPolarity maps each category to the sign its deltas must carry.
var categoryPolarity = map[Category]int{
	CategoryUrgency:       +1,
	CategoryReadiness:     +1,
	CategoryLifeEvent:     +1,
	CategoryDisengagement: -1,
	CategoryBrowsing:      -1,
}

// Rule is one trigger phrase with its score delta. The active rule set is
// static configuration loaded once at process start.
type Rule struct {
	Trigger  string   `yaml:"trigger" json:"trigger"`
	Delta    int      `yaml:"delta" json:"delta"`
	Category Category `yaml:"category" json:"category"`
}

// DefaultRules returns the built-in rule table. Deltas reproduce the
// production keyword weights.
func DefaultRules() []Rule {
	return []Rule{
		{Trigger: "urgent", Delta: 10, Category: CategoryUrgency},
		{Trigger: "asap", Delta: 15, Category: CategoryUrgency},
		{Trigger: "immediately", Delta: 15, Category: CategoryUrgency},
		{Trigger: "quick", Delta: 8, Category: CategoryUrgency},
		{Trigger: "fast", Delta: 8, Category: CategoryUrgency},
		{Trigger: "soon", Delta: 5, Category: CategoryUrgency},

		{Trigger: "ready to buy", Delta: 15, Category: CategoryReadiness},
		{Trigger: "want to buy", Delta: 12, Category: CategoryReadiness},
		{Trigger: "looking to purchase", Delta: 10, Category: CategoryReadiness},
		{Trigger: "interested in buying", Delta: 8, Category: CategoryReadiness},
		{Trigger: "ready to invest", Delta: 12, Category: CategoryReadiness},
		{Trigger: "want to invest", Delta: 10, Category: CategoryReadiness},

		{Trigger: "marriage", Delta: 10, Category: CategoryLifeEvent},
		{Trigger: "married", Delta: 5, Category: CategoryLifeEvent},
		{Trigger: "baby", Delta: 15, Category: CategoryLifeEvent},
		{Trigger: "child", Delta: 10, Category: CategoryLifeEvent},
		{Trigger: "family", Delta: 8, Category: CategoryLifeEvent},
		{Trigger: "relocation", Delta: 12, Category: CategoryLifeEvent},
		{Trigger: "job change", Delta: 8, Category: CategoryLifeEvent},
		{Trigger: "promotion", Delta: 5, Category: CategoryLifeEvent},

		{Trigger: "not interested", Delta: -15, Category: CategoryDisengagement},
		{Trigger: "not ready", Delta: -8, Category: CategoryDisengagement},
		{Trigger: "maybe later", Delta: -5, Category: CategoryDisengagement},
		{Trigger: "too expensive", Delta: -5, Category: CategoryDisengagement},
		{Trigger: "out of budget", Delta: -8, Category: CategoryDisengagement},

		{Trigger: "just browsing", Delta: -10, Category: CategoryBrowsing},
		{Trigger: "just looking", Delta: -8, Category: CategoryBrowsing},
		{Trigger: "casually looking", Delta: -5, Category: CategoryBrowsing},
	}
}

// ruleFile is the on-disk YAML shape for a custom rule set.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rule set from a YAML file. Malformed rule configuration
// is fatal at startup, never per-request.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rerank: read rules file %s", path)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, eris.Wrapf(err, "rerank: parse rules file %s", path)
	}
	if len(rf.Rules) == 0 {
		return nil, eris.Errorf("rerank: rules file %s contains no rules", path)
	}

	if err := ValidateRules(rf.Rules); err != nil {
		return nil, err
	}
	return rf.Rules, nil
}

// ValidateRules checks a rule set for configuration errors: empty triggers,
// zero deltas, unknown categories, deltas whose sign contradicts their
// category, and duplicate triggers within a category.
func ValidateRules(rules []Rule) error {
	var errs []string
	seen := make(map[string]bool)

	for i, r := range rules {
		trigger := strings.TrimSpace(r.Trigger)
		if trigger == "" {
			errs = append(errs, fmt.Sprintf("rule %d: empty trigger", i))
			continue
		}
		polarity, ok := categoryPolarity[r.Category]
		if !ok {
			errs = append(errs, fmt.Sprintf("rule %d (%q): unknown category %q", i, trigger, r.Category))
			continue
		}
		if r.Delta == 0 {
			errs = append(errs, fmt.Sprintf("rule %d (%q): delta must be non-zero", i, trigger))
		} else if r.Delta*polarity < 0 {
			errs = append(errs, fmt.Sprintf("rule %d (%q): delta sign contradicts category %s", i, trigger, r.Category))
		}

		key := string(r.Category) + "\x00" + strings.ToLower(trigger)
		if seen[key] {
			errs = append(errs, fmt.Sprintf("rule %d (%q): duplicate trigger in category %s", i, trigger, r.Category))
		}
		seen[key] = true
	}

	if len(errs) > 0 {
		return eris.Errorf("rerank: rule validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
