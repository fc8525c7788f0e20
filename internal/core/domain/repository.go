package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrUnauthorized  = errors.New("habit does not belong to user")
)

type HabitRepository interface {
	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user, archived ones included.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)
}
