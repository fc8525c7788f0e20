package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidEntry = errors.New("invalid habit entry data")
)

// HabitEntry is one row of the log store. Completed=false records an explicit miss.
type HabitEntry struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	CompletionDate time.Time `json:"completion_date" db:"completion_date"`
	Completed      bool      `json:"completed" db:"completed"`
	Notes          string    `json:"notes" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewHabitEntry(habitID, userID string, date time.Time, completed bool) *HabitEntry {
	now := time.Now().UTC()

	return &HabitEntry{
		HabitID:        habitID,
		UserID:         userID,
		CompletionDate: NormalizeDate(date),
		Completed:      completed,

		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (e *HabitEntry) Validate() error {
	if strings.TrimSpace(e.HabitID) == "" {
		return fmt.Errorf("%w: habit_id is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEntry)
	}
	if e.CompletionDate.IsZero() {
		return fmt.Errorf("%w: completion_date is required", ErrInvalidEntry)
	}
	return nil
}

func (e *HabitEntry) ToLogEntry() LogEntry {
	return LogEntry{
		Date:      NormalizeDate(e.CompletionDate),
		Completed: e.Completed,
	}
}

// SeriesFromEntries builds the engine input for the [from, to] window.
func SeriesFromEntries(from, to time.Time, entries []*HabitEntry) LogSeries {
	logs := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		logs = append(logs, e.ToLogEntry())
	}
	return NewLogSeries(from, to, logs)
}
