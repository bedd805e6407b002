package store

import (
	"time"

	"labelspool/internal/label"
)

// ProcessedRecord marks an order id as already handled. One live record per
// id; the record expires once printed_at falls outside the configured window.
type ProcessedRecord struct {
	OrderID   string
	PrintedAt time.Time
}

// DeferredLabel is a resolved shipping label parked by the quiet-hours gate.
// It carries everything needed to print and notify later without re-fetching
// from the order source.
type DeferredLabel struct {
	ID        int64
	OrderID   string
	PackageID string
	Courier   string
	Payload   []byte
	Ext       string
	Context   label.Order
	CreatedAt time.Time
}

// DatabaseHealth captures diagnostic information about the state database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	ProcessedRecords int
	DeferredLabels   int
	Error            string
}
