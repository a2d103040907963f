package store

import (
	"context"
	"time"
)

// Row is one line of the persisted output log. Only Output is mandatory;
// the remaining columns attribute the line to the dispatch that produced it.
type Row struct {
	ID        int64     `json:"id"`
	Output    string    `json:"output"`
	Round     string    `json:"round,omitempty"`
	Broker    string    `json:"broker,omitempty"`
	Side      string    `json:"side,omitempty"`
	Tickers   []string  `json:"tickers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OutputLog is the append-only output table shown by the panel. Only the
// desk service writes to it.
type OutputLog interface {
	// Rows returns every row in insertion order.
	Rows(ctx context.Context) ([]Row, error)
	// Append adds rows at the end of the log.
	Append(ctx context.Context, rows []Row) error
	// Clear empties the log.
	Clear(ctx context.Context) error
	// Close releases the underlying resources.
	Close() error
}
