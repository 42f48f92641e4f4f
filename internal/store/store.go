// Package store persists summary runs and their result tables.
package store

import (
	"context"

	"github.com/qrystalml/enron-summary/internal/model"
)

// Latest selects the most recent run wherever a run id is accepted.
const Latest = "latest"

// RunParams holds everything recorded for a summarise run.
type RunParams struct {
	Input     string
	Timezone  string
	Delimiter string
	Events    int
	FlatRows  int
	Messages  int
	Skipped   int
	People    []string
	Counts    []model.PersonCount
	Sent      []model.MonthlySent
	Contacts  []model.MonthlyShare
}

// ListParams holds parameters for listing runs.
type ListParams struct {
	Limit int
}

// Store defines the run storage interface.
type Store interface {
	// SaveRun stores a run and its tables. Returns the created run.
	SaveRun(ctx context.Context, p RunParams) (*model.Run, error)

	// GetRun retrieves a run with all tables. An empty id or Latest selects
	// the most recent run.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// ListRuns lists runs newest first, without their tables.
	ListRuns(ctx context.Context, p ListParams) ([]model.Run, error)

	// Rm deletes a run and its tables.
	Rm(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
