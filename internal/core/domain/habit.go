package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
)

const MaxTitleLen = 100

// Habit is the habit definition as the log store hands it over. The engine
// only ever sees the schedule derived from it.
type Habit struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	Title         string     `json:"title" db:"title"`
	FrequencyType Frequency  `json:"frequency_type" db:"frequency_type"`
	Weekdays      []int      `json:"weekdays,omitempty" db:"-"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty" db:"archived_at"`
}

func NewHabit(userID, title string, freq Frequency, weekdays []int) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrHabitTitleEmpty
	}
	if len(trimmed) > MaxTitleLen {
		return nil, ErrHabitTitleTooLong
	}

	h := &Habit{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         trimmed,
		FrequencyType: freq,
		Weekdays:      weekdays,
		CreatedAt:     time.Now().UTC(),
	}

	schedule, err := h.Schedule()
	if err != nil {
		return nil, err
	}
	h.FrequencyType = schedule.Frequency

	return h, nil
}

// Schedule converts the stored frequency and weekdays into a validated
// HabitSchedule. An empty frequency means daily.
func (h *Habit) Schedule() (HabitSchedule, error) {
	var s HabitSchedule
	switch h.FrequencyType {
	case "", FrequencyDaily:
		s = DailySchedule()
	case FrequencyWeekly:
		days := make([]Weekday, 0, len(h.Weekdays))
		for _, d := range h.Weekdays {
			days = append(days, Weekday(d))
		}
		s = WeeklySchedule(days...)
	default:
		s = HabitSchedule{Frequency: h.FrequencyType}
	}

	if err := s.Validate(); err != nil {
		return HabitSchedule{}, err
	}
	return s, nil
}

func (h *Habit) IsActive() bool {
	return h.ArchivedAt == nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
}
