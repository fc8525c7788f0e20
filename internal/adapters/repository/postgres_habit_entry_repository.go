package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
)

var _ domain.HabitEntryRepository = (*PostgresEntryRepository)(nil)

type PostgresEntryRepository struct {
	db *sqlx.DB
}

func NewPostgresEntryRepository(db *sqlx.DB) *PostgresEntryRepository {
	return &PostgresEntryRepository{db: db}
}

const entryColumns = `
	id, habit_id, user_id, completion_date, completed,
	COALESCE(notes, '') AS notes, created_at, updated_at`

func (r *PostgresEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	entries := []*domain.HabitEntry{}

	query := `
		SELECT ` + entryColumns + `
		FROM habit_entries
		WHERE habit_id = $1
		  AND completion_date >= $2
		  AND completion_date <= $3
		  AND deleted_at IS NULL
		ORDER BY completion_date ASC`

	err := r.db.SelectContext(ctx, &entries, query, habitID, domain.NormalizeDate(from), domain.NormalizeDate(to))
	if err != nil {
		return nil, fmt.Errorf("list entries for habit %s: %w", habitID, err)
	}
	return entries, nil
}

func (r *PostgresEntryRepository) ListAllByHabitID(ctx context.Context, habitID string) ([]*domain.HabitEntry, error) {
	entries := []*domain.HabitEntry{}

	query := `
		SELECT ` + entryColumns + `
		FROM habit_entries
		WHERE habit_id = $1 AND deleted_at IS NULL
		ORDER BY completion_date ASC`

	if err := r.db.SelectContext(ctx, &entries, query, habitID); err != nil {
		return nil, fmt.Errorf("list history for habit %s: %w", habitID, err)
	}
	return entries, nil
}
