package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/engine"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/workers"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/metrics"
)

// StatsService loads habits and their logs through the repository ports and
// hands them to the engine. It never reads the clock: input.EndDate is "today".
type StatsService struct {
	habitRepo  domain.HabitRepository
	entryRepo  domain.HabitEntryRepository
	aggregator *engine.HabitStatsAggregator
	projector  engine.MilestoneProjector
	pool       *workers.Pool
	logger     *zap.Logger
}

func NewStatsService(habitRepo domain.HabitRepository, entryRepo domain.HabitEntryRepository, pool *workers.Pool, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pool == nil {
		pool = workers.NewPool(workers.DefaultConcurrency, logger)
	}
	return &StatsService{
		habitRepo:  habitRepo,
		entryRepo:  entryRepo,
		aggregator: engine.NewHabitStatsAggregator(),
		pool:       pool,
		logger:     logger.Named("stats"),
	}
}

func (s *StatsService) GetHabitStats(ctx context.Context, input domain.StatsInput) (*domain.HabitStats, error) {
	habit, err := s.ownedHabit(ctx, input)
	if err != nil {
		return nil, err
	}

	in, err := s.loadInput(ctx, habit, input)
	if err != nil {
		return nil, err
	}

	stats, err := s.aggregator.ComputeHabitStats(in)
	if err != nil {
		return nil, err
	}

	metrics.HabitStatsComputed.WithLabelValues("habit").Inc()
	return &stats, nil
}

// GetUserStats aggregates every active habit of the user. A habit whose logs
// cannot be loaded or whose schedule is invalid contributes zeroed stats and is
// listed in DegradedHabits instead of failing the whole request.
func (s *StatsService) GetUserStats(ctx context.Context, input domain.StatsInput) (*domain.UserStats, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	all, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("list habits for user %s: %w", input.UserID, err)
	}

	habits := make([]*domain.Habit, 0, len(all))
	for _, h := range all {
		if h.IsActive() {
			habits = append(habits, h)
		}
	}

	loaded := workers.Map(ctx, s.pool, habits, func(ctx context.Context, h *domain.Habit) (engine.HabitStatsInput, error) {
		return s.loadInput(ctx, h, input)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputs := make([]engine.HabitStatsInput, 0, len(habits))
	var degraded []string
	for i, res := range loaded {
		if res.Err != nil {
			degraded = append(degraded, s.degrade(habits[i].ID, res.Err))
			inputs = append(inputs, engine.HabitStatsInput{HabitID: habits[i].ID, Schedule: domain.DailySchedule()})
			continue
		}
		inputs = append(inputs, res.Value)
	}

	perHabit, err := s.aggregator.ComputeMany(inputs)
	if err != nil {
		for _, e := range unwrapJoined(err) {
			var habitErr *engine.HabitError
			if errors.As(e, &habitErr) {
				degraded = append(degraded, s.degrade(habitErr.HabitID, habitErr.Err))
			}
		}
	}

	us := engine.ComputeUserStats(perHabit)
	us.DegradedHabits = degraded

	metrics.HabitStatsComputed.WithLabelValues("user").Inc()
	return &us, nil
}

func (s *StatsService) GetMilestone(ctx context.Context, input domain.StatsInput) (*domain.MilestoneProjection, error) {
	stats, err := s.GetHabitStats(ctx, input)
	if err != nil {
		return nil, err
	}

	projection := s.projector.Project(*stats)
	return &projection, nil
}

// GetBreakdown rolls up the full history up to input.EndDate; StartDate is ignored.
func (s *StatsService) GetBreakdown(ctx context.Context, input domain.StatsInput) (*domain.Breakdown, error) {
	habit, err := s.ownedHabit(ctx, input)
	if err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, habit.ID, input)
	if err != nil {
		return nil, err
	}

	metrics.HabitStatsComputed.WithLabelValues("breakdown").Inc()
	return &domain.Breakdown{
		HabitID:   habit.ID,
		ByWeekday: engine.WeekdayRollup(history),
		ByMonth:   engine.MonthRollup(history),
	}, nil
}

func (s *StatsService) ownedHabit(ctx context.Context, input domain.StatsInput) (*domain.Habit, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	habit, err := s.habitRepo.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != input.UserID {
		return nil, domain.ErrUnauthorized
	}
	return habit, nil
}

func (s *StatsService) loadInput(ctx context.Context, habit *domain.Habit, input domain.StatsInput) (engine.HabitStatsInput, error) {
	schedule, err := habit.Schedule()
	if err != nil {
		return engine.HabitStatsInput{}, &engine.HabitError{HabitID: habit.ID, Err: err}
	}

	entries, err := s.entryRepo.ListByHabitID(ctx, habit.ID, input.StartDate, input.EndDate)
	if err != nil {
		return engine.HabitStatsInput{}, fmt.Errorf("load entries for habit %s: %w", habit.ID, err)
	}

	history, err := s.loadHistory(ctx, habit.ID, input)
	if err != nil {
		return engine.HabitStatsInput{}, err
	}

	return engine.HabitStatsInput{
		HabitID:  habit.ID,
		Series:   domain.SeriesFromEntries(input.StartDate, input.EndDate, entries),
		History:  &history,
		Schedule: schedule,
	}, nil
}

// loadHistory drops entries dated after input.EndDate.
func (s *StatsService) loadHistory(ctx context.Context, habitID string, input domain.StatsInput) (domain.LogSeries, error) {
	all, err := s.entryRepo.ListAllByHabitID(ctx, habitID)
	if err != nil {
		return domain.LogSeries{}, fmt.Errorf("load history for habit %s: %w", habitID, err)
	}

	end := domain.NormalizeDate(input.EndDate)
	kept := make([]*domain.HabitEntry, 0, len(all))
	start := end
	for _, e := range all {
		if e == nil {
			continue
		}
		d := domain.NormalizeDate(e.CompletionDate)
		if d.After(end) {
			continue
		}
		if d.Before(start) {
			start = d
		}
		kept = append(kept, e)
	}

	return domain.SeriesFromEntries(start, end, kept), nil
}

func (s *StatsService) degrade(habitID string, err error) string {
	s.logger.Warn("habit stats degraded to zero values",
		zap.String("habit_id", habitID),
		zap.Error(err),
	)
	metrics.HabitStatsDegraded.Inc()
	return habitID
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
