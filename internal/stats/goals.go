package stats

import (
	"math"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
)

// GoalProgress returns how far the goal is, in percent, clamped to [0, 100].
// Goals whose target is not above the starting weight report 0.
func GoalProgress(goal fitness.Goal) float64 {
	if goal.TargetWeight <= goal.StartingWeight {
		return 0
	}
	p := (goal.CurrentWeight - goal.StartingWeight) / (goal.TargetWeight - goal.StartingWeight) * 100
	return math.Min(100, math.Max(0, p))
}

// DaysLeft is the number of days until the target date, rounded up, never negative.
func DaysLeft(goal fitness.Goal, now time.Time) int {
	days := math.Ceil(goal.TargetDate.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}
