package domain

import (
	"context"
	"time"
)

// HabitEntryRepository is the read side of the log store.
type HabitEntryRepository interface {
	// ListByHabitID retrieves entries for a habit whose completion date falls
	// within [from, to], both inclusive.
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*HabitEntry, error)

	// ListAllByHabitID retrieves the full history of a habit.
	// Used where a computation must not be limited to the query window (best weekday, rollups).
	ListAllByHabitID(ctx context.Context, habitID string) ([]*HabitEntry, error)
}
