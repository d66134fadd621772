package main

import (
	"fmt"
	"math/rand"

	"github.com/homesignal/leadscore/internal/model"
)

// sampleLead generates a random but always-valid lead for demos and manual
// testing of the /score endpoint.
func sampleLead() model.LeadInput {
	comments := []string{
		"I am ready to buy and it's urgent",
		"looking to purchase before my job change",
		"just browsing for now",
		"expecting a baby, want to buy soon",
		"maybe later, too expensive right now",
		"",
	}

	return model.LeadInput{
		Phone:                   fmt.Sprintf("+91-9%09d", rand.Intn(1_000_000_000)),
		Email:                   fmt.Sprintf("lead%04d@example.com", rand.Intn(10_000)),
		CreditScore:             300 + rand.Intn(551),
		Income:                  int64(300_000 + rand.Intn(4_700_001)),
		LoanAmount:              int64(1_000_000 + rand.Intn(19_000_001)),
		DownPayment:             int64(200_000 + rand.Intn(4_800_001)),
		AgeGroup:                pick(model.AgeGroup18To25, model.AgeGroup26To35, model.AgeGroup36To50, model.AgeGroup51Plus),
		FamilyBackground:        pick(model.FamilySingle, model.FamilyMarried, model.FamilyMarriedWithKids),
		EmploymentType:          pick(model.EmploymentSalaried, model.EmploymentSelfEmployed, model.EmploymentBusinessOwner, model.EmploymentFreelancer),
		PropertyType:            pick(model.PropertyApartment, model.PropertyVilla, model.PropertyPlot, model.PropertyCommercial),
		PropertySearchFrequency: rand.Intn(30),
		BudgetToolUsage:         rand.Intn(10),
		ListingSaves:            rand.Intn(50),
		EmailClicks:             rand.Intn(20),
		WhatsappInteractions:    rand.Intn(15),
		TimeToPurchase:          rand.Intn(24),
		EMIAffordability:        rand.Float64() * 5,
		JobStability:            rand.Float64() * 10,
		Comments:                pick(comments...),
		Consent:                 true,
	}
}

func pick[T any](options ...T) T {
	return options[rand.Intn(len(options))]
}
