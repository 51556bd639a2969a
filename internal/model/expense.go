// Package model defines the core expense data types shared across the application.
package model

import "time"

// Draft is an extracted but unconfirmed expense candidate. It is owned by
// the pending-confirmation registry for its lifetime and is mutated in
// place by user edits until it is committed or discarded.
type Draft struct {
	CreatedAt time.Time
	Amount    *float64
	RawText   string
	Category  Category
}

// Record is a confirmed expense, immutable once persisted. It maps
// one-to-one onto a spreadsheet row.
type Record struct {
	Date     time.Time
	Note     string
	Category Category
	Amount   float64
}

// Result is the outcome of one extraction request, stored so it can be
// fetched later through the analysis API. Error is non-empty when the
// extraction degraded through the whole fallback chain.
type Result struct {
	CreatedAt    time.Time
	Amount       *float64
	ID           string
	UserID       string
	Date         string
	OriginalText string
	Error        string
	Category     Category
}
