// Package feature derives the fixed-order numeric vector the intent model
// expects from a validated lead submission.
package feature

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/homesignal/leadscore/internal/artifact"
	"github.com/homesignal/leadscore/internal/model"
)

// Vector is a feature vector in the artifact schema's order. Immutable once
// built.
type Vector []float64

// numericFeatures maps schema feature names to their extraction formulas.
// Derived features define division by zero as 0 rather than propagating an
// error; denominators are already validated positive at the boundary.
var numericFeatures = map[string]func(model.LeadInput) float64{
	"credit_score":              func(l model.LeadInput) float64 { return float64(l.CreditScore) },
	"income":                    func(l model.LeadInput) float64 { return float64(l.Income) },
	"loan_amount":               func(l model.LeadInput) float64 { return float64(l.LoanAmount) },
	"down_payment":              func(l model.LeadInput) float64 { return float64(l.DownPayment) },
	"property_search_frequency": func(l model.LeadInput) float64 { return float64(l.PropertySearchFrequency) },
	"budget_tool_usage":         func(l model.LeadInput) float64 { return float64(l.BudgetToolUsage) },
	"listing_saves":             func(l model.LeadInput) float64 { return float64(l.ListingSaves) },
	"email_clicks":              func(l model.LeadInput) float64 { return float64(l.EmailClicks) },
	"whatsapp_interactions":     func(l model.LeadInput) float64 { return float64(l.WhatsappInteractions) },
	"time_to_purchase":          func(l model.LeadInput) float64 { return float64(l.TimeToPurchase) },
	"emi_affordability":         func(l model.LeadInput) float64 { return l.EMIAffordability },
	"job_stability":             func(l model.LeadInput) float64 { return l.JobStability },

	"income_to_loan_ratio": func(l model.LeadInput) float64 {
		return safeRatio(float64(l.Income), float64(l.LoanAmount))
	},
	"down_payment_ratio": func(l model.LeadInput) float64 {
		return safeRatio(float64(l.DownPayment), float64(l.LoanAmount))
	},
	"digital_engagement": func(l model.LeadInput) float64 {
		return float64(l.PropertySearchFrequency + l.BudgetToolUsage +
			l.ListingSaves + l.EmailClicks + l.WhatsappInteractions)
	},
	"urgency_score": func(l model.LeadInput) float64 {
		return 100 / float64(l.TimeToPurchase+1)
	},
}

// categoricalValue returns the raw categorical value a schema feature name
// refers to, or false if the name is not categorical.
func categoricalValue(name string, l model.LeadInput) (string, bool) {
	switch name {
	case "age_group":
		return string(l.AgeGroup), true
	case "family_background":
		return string(l.FamilyBackground), true
	case "employment_type":
		return string(l.EmploymentType), true
	case "property_type":
		return string(l.PropertyType), true
	}
	return "", false
}

// Builder produces feature vectors for one artifact schema. The schema is
// checked once at construction; a feature the builder cannot produce is a
// fatal configuration mismatch, not a per-request error.
type Builder struct {
	schema artifact.Schema
}

// NewBuilder validates that every schema feature is derivable and returns a
// Builder bound to that schema.
func NewBuilder(schema artifact.Schema) (*Builder, error) {
	var missing []string
	for _, name := range schema.FeatureNames {
		if _, ok := numericFeatures[name]; ok {
			continue
		}
		if _, ok := categoricalValue(name, model.LeadInput{}); ok {
			if _, hasEncoder := schema.Encoders[name]; !hasEncoder {
				missing = append(missing, name+" (no encoder table)")
			}
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("feature: schema mismatch, cannot derive: %s", strings.Join(missing, ", "))
	}
	return &Builder{schema: schema}, nil
}

// Build derives the feature vector for a validated lead. Deterministic:
// the same lead always produces the same vector. Unknown categorical values
// encode to 0 so UI-bypassing submissions degrade instead of failing.
func (b *Builder) Build(lead model.LeadInput) Vector {
	vec := make(Vector, len(b.schema.FeatureNames))
	for i, name := range b.schema.FeatureNames {
		if fn, ok := numericFeatures[name]; ok {
			vec[i] = fn(lead)
			continue
		}
		raw, _ := categoricalValue(name, lead)
		vec[i] = b.schema.Encoders[name][raw]
	}
	return vec
}

// FeatureNames returns the schema order the builder produces.
func (b *Builder) FeatureNames() []string {
	return b.schema.FeatureNames
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
