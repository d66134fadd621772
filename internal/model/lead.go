package model

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// AgeGroup buckets a lead's age for the model's categorical encoding.
type AgeGroup string

const (
	AgeGroup18To25 AgeGroup = "18-25"
	AgeGroup26To35 AgeGroup = "26-35"
	AgeGroup36To50 AgeGroup = "36-50"
	AgeGroup51Plus AgeGroup = "51+"
)

// FamilyBackground describes the lead's household situation.
type FamilyBackground string

const (
	FamilySingle          FamilyBackground = "Single"
	FamilyMarried         FamilyBackground = "Married"
	FamilyMarriedWithKids FamilyBackground = "Married with Kids"
)

// EmploymentType describes how the lead earns income.
type EmploymentType string

const (
	EmploymentSalaried      EmploymentType = "Salaried"
	EmploymentSelfEmployed  EmploymentType = "Self-Employed"
	EmploymentBusinessOwner EmploymentType = "Business Owner"
	EmploymentFreelancer    EmploymentType = "Freelancer"
)

// PropertyType describes the kind of property the lead is shopping for.
type PropertyType string

const (
	PropertyApartment  PropertyType = "Apartment"
	PropertyVilla      PropertyType = "Villa"
	PropertyPlot       PropertyType = "Plot"
	PropertyCommercial PropertyType = "Commercial"
)

// phonePattern matches Indian mobile numbers in the +91-XXXXXXXXXX form
// the intake form collects.
var phonePattern = regexp.MustCompile(`^\+91-[6-9]\d{9}$`)

// LeadInput is a raw lead submission as received from the intake layer.
type LeadInput struct {
	Phone string `json:"phone"`
	Email string `json:"email"`

	CreditScore int   `json:"credit_score"`
	Income      int64 `json:"income"`
	LoanAmount  int64 `json:"loan_amount"`
	DownPayment int64 `json:"down_payment"`

	AgeGroup         AgeGroup         `json:"age_group"`
	FamilyBackground FamilyBackground `json:"family_background"`
	EmploymentType   EmploymentType   `json:"employment_type"`
	PropertyType     PropertyType     `json:"property_type"`

	PropertySearchFrequency int `json:"property_search_frequency"`
	BudgetToolUsage         int `json:"budget_tool_usage"`
	ListingSaves            int `json:"listing_saves"`
	EmailClicks             int `json:"email_clicks"`
	WhatsappInteractions    int `json:"whatsapp_interactions"`

	TimeToPurchase   int     `json:"time_to_purchase"`
	EMIAffordability float64 `json:"emi_affordability"`
	JobStability     float64 `json:"job_stability"`

	Comments string `json:"comments"`
	Consent  bool   `json:"consent"`
}

// ValidationError reports a LeadInput field that failed boundary validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid lead input: %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate checks every field constraint at the intake boundary. Out-of-range
// values are rejected, never clamped.
func (l *LeadInput) Validate() error {
	if !phonePattern.MatchString(l.Phone) {
		return invalid("phone", "must be in format +91-XXXXXXXXXX")
	}
	if _, err := mail.ParseAddress(l.Email); err != nil || strings.ContainsAny(l.Email, " <>") {
		return invalid("email", "must be a valid email address")
	}
	if l.CreditScore < 300 || l.CreditScore > 850 {
		return invalid("credit_score", "must be between 300 and 850")
	}
	if l.Income <= 0 {
		return invalid("income", "must be positive")
	}
	if l.LoanAmount <= 0 {
		return invalid("loan_amount", "must be positive")
	}
	if l.DownPayment <= 0 {
		return invalid("down_payment", "must be positive")
	}

	switch l.AgeGroup {
	case AgeGroup18To25, AgeGroup26To35, AgeGroup36To50, AgeGroup51Plus:
	default:
		return invalid("age_group", "must be one of: 18-25, 26-35, 36-50, 51+")
	}
	switch l.FamilyBackground {
	case FamilySingle, FamilyMarried, FamilyMarriedWithKids:
	default:
		return invalid("family_background", "must be one of: Single, Married, Married with Kids")
	}
	switch l.EmploymentType {
	case EmploymentSalaried, EmploymentSelfEmployed, EmploymentBusinessOwner, EmploymentFreelancer:
	default:
		return invalid("employment_type", "must be one of: Salaried, Self-Employed, Business Owner, Freelancer")
	}
	switch l.PropertyType {
	case PropertyApartment, PropertyVilla, PropertyPlot, PropertyCommercial:
	default:
		return invalid("property_type", "must be one of: Apartment, Villa, Plot, Commercial")
	}

	counters := map[string]int{
		"property_search_frequency": l.PropertySearchFrequency,
		"budget_tool_usage":         l.BudgetToolUsage,
		"listing_saves":             l.ListingSaves,
		"email_clicks":              l.EmailClicks,
		"whatsapp_interactions":     l.WhatsappInteractions,
		"time_to_purchase":          l.TimeToPurchase,
	}
	for _, field := range []string{
		"property_search_frequency", "budget_tool_usage", "listing_saves",
		"email_clicks", "whatsapp_interactions", "time_to_purchase",
	} {
		if counters[field] < 0 {
			return invalid(field, "must be >= 0")
		}
	}

	if l.EMIAffordability < 0 {
		return invalid("emi_affordability", "must be >= 0")
	}
	if l.JobStability < 0 {
		return invalid("job_stability", "must be >= 0")
	}
	if !l.Consent {
		return invalid("consent", "consent is required for data processing")
	}
	return nil
}
