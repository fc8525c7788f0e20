package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
)

var (
	_ domain.HabitRepository      = (*InMemoryHabitRepository)(nil)
	_ domain.HabitEntryRepository = (*InMemoryEntryRepository)(nil)
)

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

// Save inserts or replaces a habit. Used to seed the store.
func (r *InMemoryHabitRepository) Save(habit *domain.Habit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *habit
	r.store[habit.ID] = &clone
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].ID < habits[j].ID
	})

	return habits, nil
}

type InMemoryEntryRepository struct {
	byHabit map[string][]*domain.HabitEntry

	mu sync.RWMutex
}

func NewInMemoryEntryRepository() *InMemoryEntryRepository {
	return &InMemoryEntryRepository{
		byHabit: make(map[string][]*domain.HabitEntry),
	}
}

func (r *InMemoryEntryRepository) Add(entries ...*domain.HabitEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		clone := *e
		clone.CompletionDate = domain.NormalizeDate(e.CompletionDate)
		r.byHabit[e.HabitID] = append(r.byHabit[e.HabitID], &clone)
	}
}

func (r *InMemoryEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	from, to = domain.NormalizeDate(from), domain.NormalizeDate(to)

	return r.filter(habitID, func(e *domain.HabitEntry) bool {
		return !e.CompletionDate.Before(from) && !e.CompletionDate.After(to)
	}), nil
}

func (r *InMemoryEntryRepository) ListAllByHabitID(ctx context.Context, habitID string) ([]*domain.HabitEntry, error) {
	return r.filter(habitID, func(*domain.HabitEntry) bool { return true }), nil
}

func (r *InMemoryEntryRepository) filter(habitID string, keep func(*domain.HabitEntry) bool) []*domain.HabitEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.HabitEntry{}
	for _, e := range r.byHabit[habitID] {
		if keep(e) {
			clone := *e
			out = append(out, &clone)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletionDate.Before(out[j].CompletionDate)
	})
	return out
}
