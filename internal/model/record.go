package model

import "time"

// ScoreResult is the outcome of scoring a single lead. Created once per
// request and immutable afterward; identifying fields are already hashed.
type ScoreResult struct {
	InitialScore  int         `json:"initial_score"`
	RerankedScore int         `json:"reranked_score"`
	IntentLevel   IntentLevel `json:"intent_level"`
	Explanation   string      `json:"explanation"`
	HashedEmail   string      `json:"hashed_email"`
	HashedPhone   string      `json:"hashed_phone"`
	Timestamp     time.Time   `json:"timestamp"`

	// ModelFallback is set when the neutral-score fallback produced the
	// result because the model artifact was unavailable.
	ModelFallback bool `json:"model_fallback,omitempty"`
}

// LeadRecord is the persisted form of a ScoreResult. Records are append-only.
type LeadRecord struct {
	ID            string      `json:"id"`
	HashedEmail   string      `json:"hashed_email"`
	HashedPhone   string      `json:"hashed_phone"`
	InitialScore  int         `json:"initial_score"`
	RerankedScore int         `json:"reranked_score"`
	IntentLevel   IntentLevel `json:"intent_level"`
	Explanation   string      `json:"explanation"`
	Comments      string      `json:"comments"`
	Timestamp     time.Time   `json:"timestamp"`
}
