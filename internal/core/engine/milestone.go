package engine

import (
	"math"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
)

const (
	// UnreachableDays is reported when the completion rate is zero.
	UnreachableDays = 99
	MaxConfidence   = 95
	milestoneStep   = 7
)

var milestoneLadder = [...]int{3, 7, 14, 21, 30, 60, 90, 100}

type MilestoneProjector struct{}

func (MilestoneProjector) Project(stats domain.HabitStats) domain.MilestoneProjection {
	next := NextMilestone(stats.CurrentStreak)

	days := UnreachableDays
	if stats.CompletionRate > 0 {
		remaining := float64(next - stats.CurrentStreak)
		days = int(math.Ceil(remaining * 100 / stats.CompletionRate))
	}

	return domain.MilestoneProjection{
		NextMilestone:        next,
		EstimatedDaysToReach: days,
		Confidence:           min(int(math.Round(stats.CompletionRate)), MaxConfidence),
	}
}

// NextMilestone is the first ladder value above current, or current+7 past the top.
func NextMilestone(current int) int {
	for _, m := range milestoneLadder {
		if m > current {
			return m
		}
	}
	return current + milestoneStep
}
