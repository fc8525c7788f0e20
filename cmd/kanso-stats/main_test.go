package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
)

const sampleLog = `{
  "habits": [
    {"id": "read", "title": "Read", "frequency_type": "daily"},
    {"id": "gym", "title": "Gym", "frequency_type": "weekly", "weekdays": [1, 3, 5]}
  ],
  "entries": [
    {"habit_id": "read", "date": "2024-01-13"},
    {"habit_id": "read", "date": "2024-01-14"},
    {"habit_id": "read", "date": "2024-01-15"},
    {"habit_id": "gym", "date": "2024-01-10"},
    {"habit_id": "gym", "date": "2024-01-12"},
    {"habit_id": "gym", "date": "2024-01-15", "completed": false}
  ]
}`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	path := writeLog(t, sampleLog)

	t.Run("habit", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{"habit", "--file", path, "--habit", "read", "--end", "2024-01-15"}, &out, &bytes.Buffer{})
		require.NoError(t, err)

		var stats domain.HabitStats
		require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
		assert.Equal(t, 3, stats.CurrentStreak)
		assert.Equal(t, 100.0, stats.CompletionRate)
	})

	t.Run("weekly habit ends on a miss", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{"habit", "-f", path, "--habit", "gym", "--end", "2024-01-15"}, &out, &bytes.Buffer{})
		require.NoError(t, err)

		var stats domain.HabitStats
		require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
		assert.Equal(t, 0, stats.CurrentStreak)
		assert.Equal(t, 2, stats.LongestStreak)
		assert.Equal(t, 66.67, stats.CompletionRate)
	})

	t.Run("user", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{"user", "--file", path, "--start", "2024-01-01", "--end", "2024-01-15"}, &out, &bytes.Buffer{})
		require.NoError(t, err)

		var stats domain.UserStats
		require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
		assert.Equal(t, 2, stats.HabitCount)
		assert.Equal(t, 83.34, stats.OverallRate)
		assert.Equal(t, "read", stats.Ranking[0].HabitID)
	})

	t.Run("milestone", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{"milestone", "--file", path, "--habit", "read", "--end", "2024-01-15"}, &out, &bytes.Buffer{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"next_milestone":7,"estimated_days_to_reach":4,"confidence":95}`, out.String())
	})

	t.Run("breakdown", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{"breakdown", "--file", path, "--habit", "gym", "--end", "2024-01-15"}, &out, &bytes.Buffer{})
		require.NoError(t, err)

		var b domain.Breakdown
		require.NoError(t, json.Unmarshal(out.Bytes(), &b))
		assert.Equal(t, domain.Rollup{Completed: 0, Total: 1, CompletionRate: 0}, b.ByWeekday[0])
		assert.Equal(t, 3, b.ByMonth[0].Total)
	})

	t.Run("missing habit flag", func(t *testing.T) {
		err := run(ctx, []string{"habit", "--file", path}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("unknown habit", func(t *testing.T) {
		err := run(ctx, []string{"habit", "--file", path, "--habit", "nope"}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("bad date in file", func(t *testing.T) {
		bad := writeLog(t, `{"habits":[{"id":"a","title":"A"}],"entries":[{"habit_id":"a","date":"15/01/2024"}]}`)
		err := run(ctx, []string{"user", "--file", bad}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "invalid date")
	})

	t.Run("archived habit is left out of user stats", func(t *testing.T) {
		archived := writeLog(t, `{
  "habits": [
    {"id": "read", "title": "Read"},
    {"id": "old", "title": "Old", "archived": true}
  ],
  "entries": [
    {"habit_id": "read", "date": "2024-01-15"},
    {"habit_id": "old", "date": "2024-01-15", "completed": false}
  ]
}`)
		var out bytes.Buffer
		err := run(ctx, []string{"user", "--file", archived, "--end", "2024-01-15"}, &out, &bytes.Buffer{})
		require.NoError(t, err)

		var stats domain.UserStats
		require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
		assert.Equal(t, 1, stats.HabitCount)
		assert.Equal(t, 100.0, stats.OverallRate)
	})

	t.Run("habit without frequency is daily", func(t *testing.T) {
		daily := writeLog(t, `{"habits":[{"id":"a","title":"A"}],"entries":[{"habit_id":"a","date":"2024-01-14"},{"habit_id":"a","date":"2024-01-15"}]}`)
		var out bytes.Buffer
		err := run(ctx, []string{"habit", "--file", daily, "--habit", "a", "--end", "2024-01-15"}, &out, &bytes.Buffer{})
		require.NoError(t, err)

		var stats domain.HabitStats
		require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
		assert.Equal(t, 2, stats.CurrentStreak)
	})

	t.Run("habit without title", func(t *testing.T) {
		bad := writeLog(t, `{"habits":[{"id":"a"}],"entries":[]}`)
		err := run(ctx, []string{"user", "--file", bad}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, domain.ErrHabitTitleEmpty)
	})

	t.Run("entry without habit id", func(t *testing.T) {
		bad := writeLog(t, `{"habits":[{"id":"a","title":"A"}],"entries":[{"date":"2024-01-15"}]}`)
		err := run(ctx, []string{"user", "--file", bad}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, domain.ErrInvalidEntry)
	})

	t.Run("version", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(ctx, []string{"--version"}, &out, &bytes.Buffer{}))
		assert.Contains(t, out.String(), version)
	})
}

func TestOptions_StatsInput(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

	in, err := (&options{}).statsInput(now)
	require.NoError(t, err)
	assert.Equal(t, domain.Date(2024, 3, 10), in.EndDate)
	assert.Equal(t, domain.Date(2024, 2, 10), in.StartDate)

	_, err = (&options{start: "March"}).statsInput(now)
	assert.Error(t, err)
}
