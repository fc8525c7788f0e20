package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/config"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const testSearchPath = `
CREATE SCHEMA IF NOT EXISTS kanso_stats_test;
SET search_path TO kanso_stats_test;`

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB pins the pool to a single connection so the search_path set
// for the isolated schema applies to every query.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	cfg := config.DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "kanso_user"),
		Password: getEnv("DB_PASSWORD", "secret"),
		Name:     getEnv("DB_NAME", "kanso_db"),
		SSLMode:  "disable",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSearchPath)
	require.NoError(t, err, "Failed to switch to the test schema")
	require.NoError(t, EnsureSchema(context.Background(), db))

	t.Cleanup(func() {
		_, _ = db.Exec("TRUNCATE TABLE habit_entries, habits CASCADE")
		db.Close()
	})

	_, err = db.Exec("TRUNCATE TABLE habit_entries, habits CASCADE")
	require.NoError(t, err)

	return db
}

func insertHabit(t *testing.T, db *sqlx.DB, h *domain.Habit) {
	t.Helper()
	weekdays := make([]int64, len(h.Weekdays))
	for i, d := range h.Weekdays {
		weekdays[i] = int64(d)
	}

	_, err := db.Exec(`INSERT INTO habits (id, user_id, title, frequency_type, weekdays, created_at, archived_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		h.ID, h.UserID, h.Title, string(h.FrequencyType), pq.Array(weekdays), h.CreatedAt, h.ArchivedAt)
	require.NoError(t, err, "Failed to insert habit fixture")
}

func insertEntry(t *testing.T, db *sqlx.DB, e *domain.HabitEntry) {
	t.Helper()
	_, err := db.NamedExec(`INSERT INTO habit_entries
        (id, habit_id, user_id, completion_date, completed, notes, created_at, updated_at)
        VALUES (:id, :habit_id, :user_id, :completion_date, :completed, :notes, :created_at, :updated_at)`, e)
	require.NoError(t, err, "Failed to insert entry fixture")
}
