package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/workers"
)

const (
	cliUserID         = "local"
	defaultWindowDays = 30
)

var version = "dev"

// logFile is the on-disk format read by every subcommand.
type logFile struct {
	Habits []struct {
		ID            string           `json:"id"`
		Title         string           `json:"title"`
		FrequencyType domain.Frequency `json:"frequency_type"`
		Weekdays      []int            `json:"weekdays"`
		Archived      bool             `json:"archived"`
	} `json:"habits"`
	Entries []struct {
		HabitID   string `json:"habit_id"`
		Date      string `json:"date"`
		Completed *bool  `json:"completed"`
	} `json:"entries"`
}

type options struct {
	file    string
	habitID string
	start   string
	end     string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "kanso-stats",
		Short:         "Compute habit streaks and statistics from a JSON log file",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "path to the JSON log file")
	root.PersistentFlags().StringVar(&opts.start, "start", "", "window start (YYYY-MM-DD), defaults to 30 days before --end")
	root.PersistentFlags().StringVar(&opts.end, "end", "", "window end and reference day (YYYY-MM-DD), defaults to today")
	_ = root.MarkPersistentFlagRequired("file")

	habitCmd := func(use, short string, fn func(context.Context, *services.StatsService, domain.StatsInput) (any, error)) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return execute(cmd.Context(), opts, stdout, fn)
			},
		}
		cmd.Flags().StringVar(&opts.habitID, "habit", "", "habit id")
		_ = cmd.MarkFlagRequired("habit")
		return cmd
	}

	root.AddCommand(
		habitCmd("habit", "Per-habit statistics", func(ctx context.Context, svc *services.StatsService, in domain.StatsInput) (any, error) {
			return svc.GetHabitStats(ctx, in)
		}),
		habitCmd("milestone", "Next streak milestone projection", func(ctx context.Context, svc *services.StatsService, in domain.StatsInput) (any, error) {
			return svc.GetMilestone(ctx, in)
		}),
		habitCmd("breakdown", "Completion by weekday and month over the full history", func(ctx context.Context, svc *services.StatsService, in domain.StatsInput) (any, error) {
			return svc.GetBreakdown(ctx, in)
		}),
		&cobra.Command{
			Use:   "user",
			Short: "Aggregate statistics across all habits in the file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return execute(cmd.Context(), opts, stdout, func(ctx context.Context, svc *services.StatsService, in domain.StatsInput) (any, error) {
					return svc.GetUserStats(ctx, in)
				})
			},
		},
	)

	return root
}

func execute(ctx context.Context, opts *options, stdout io.Writer, fn func(context.Context, *services.StatsService, domain.StatsInput) (any, error)) error {
	input, err := opts.statsInput(time.Now())
	if err != nil {
		return err
	}

	svc, err := loadService(opts.file)
	if err != nil {
		return err
	}

	out, err := fn(ctx, svc, input)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (o *options) statsInput(now time.Time) (domain.StatsInput, error) {
	end := domain.NormalizeDate(now)
	if o.end != "" {
		d, err := time.Parse(domain.DateLayout, o.end)
		if err != nil {
			return domain.StatsInput{}, fmt.Errorf("invalid --end: %w", err)
		}
		end = d
	}

	start := end.AddDate(0, 0, -(defaultWindowDays - 1))
	if o.start != "" {
		d, err := time.Parse(domain.DateLayout, o.start)
		if err != nil {
			return domain.StatsInput{}, fmt.Errorf("invalid --start: %w", err)
		}
		start = d
	}

	return domain.StatsInput{UserID: cliUserID, HabitID: o.habitID, StartDate: start, EndDate: end}, nil
}

// loadService seeds in-memory repositories from the log file. Habits go through
// the same checks as NewHabit; archived ones are kept but left out of user
// stats. Entries without an explicit "completed" field count as completed.
func loadService(path string) (*services.StatsService, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	var lf logFile
	if err := json.Unmarshal(raw, &lf); err != nil {
		return nil, fmt.Errorf("decode log file %s: %w", path, err)
	}

	habits := repository.NewInMemoryHabitRepository()
	for i, def := range lf.Habits {
		if def.ID == "" {
			return nil, fmt.Errorf("habit #%d has no id", i)
		}
		h, err := domain.NewHabit(cliUserID, def.Title, def.FrequencyType, def.Weekdays)
		if err != nil {
			return nil, fmt.Errorf("habit %s: %w", def.ID, err)
		}
		h.ID = def.ID
		h.CreatedAt = time.Unix(int64(i), 0).UTC()
		if def.Archived {
			h.Archive()
		}
		habits.Save(h)
	}

	entries := repository.NewInMemoryEntryRepository()
	for i, e := range lf.Entries {
		d, err := time.Parse(domain.DateLayout, e.Date)
		if err != nil {
			return nil, fmt.Errorf("entry #%d: invalid date %q", i, e.Date)
		}
		completed := e.Completed == nil || *e.Completed
		entry := domain.NewHabitEntry(e.HabitID, cliUserID, d, completed)
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("entry #%d: %w", i, err)
		}
		entries.Add(entry)
	}

	return services.NewStatsService(habits, entries, workers.NewPool(workers.DefaultConcurrency, zap.NewNop()), zap.NewNop()), nil
}
