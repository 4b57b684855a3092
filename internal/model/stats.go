package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestCounts partitions requests by state for one owner (or globally
// when unscoped). Computed fresh on every call; the individual counts
// are separate queries, so under concurrent writes they may disagree
// with Total for a moment.
type RequestCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

// ActivityScope selects whose activity records a rollup covers. Both
// nil means global.
type ActivityScope struct {
	RequesterID *uuid.UUID
	CollectorID *uuid.UUID
}

type CategoryStat struct {
	Count int64   `json:"count"`
	Kg    float64 `json:"kg"`
}

// Stats is the dashboard payload. Categories maps waste category to its
// completed-collection rollup; Activity holds the most recent completed
// collections, newest first.
type Stats struct {
	Total      int64                   `json:"total"`
	Pending    int64                   `json:"pending"`
	InProgress int64                   `json:"in_progress"`
	Completed  int64                   `json:"completed"`
	TotalKg    float64                 `json:"total_kg"`
	Categories map[string]CategoryStat `json:"categories"`
	Activity   []ActivityRecord        `json:"activity"`
}

// ActivityEntry is one export row: an activity record joined with the
// people involved.
type ActivityEntry struct {
	ActivityRecord
	RequesterName string `json:"requester_name"`
	CollectorName string `json:"collector_name"`
}

// ActivityReport feeds the Excel and PDF generators.
type ActivityReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	TotalKg     float64
	Entries     []ActivityEntry
	Categories  map[string]CategoryStat
}
