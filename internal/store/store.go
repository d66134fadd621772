// Package store persists scored lead records. The store is append-only:
// records are inserted once and never mutated.
package store

import (
	"context"

	"github.com/homesignal/leadscore/internal/model"
)

// LeadFilter specifies criteria for listing lead records.
type LeadFilter struct {
	IntentLevel model.IntentLevel `json:"intent_level,omitempty"`
	MinScore    int               `json:"min_score,omitempty"`
	Limit       int               `json:"limit,omitempty"`
	Offset      int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for the scoring pipeline.
type Store interface {
	// AppendLead inserts a record. Records carry only pseudonymized
	// identifiers; append order reflects request-completion order.
	AppendLead(ctx context.Context, rec model.LeadRecord) error

	// ListLeads returns records matching the filter, newest first.
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.LeadRecord, error)

	// CountLeads returns the total number of stored records.
	CountLeads(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
