package stats

import (
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
)

const week = 7 * 24 * time.Hour

// WorkoutVolume is the sum of weight * reps over every set of the workout.
func WorkoutVolume(workout fitness.Workout) float64 {
	var volume float64
	for _, ex := range workout.Exercises {
		for _, set := range ex.Sets {
			volume += set.Volume()
		}
	}
	return volume
}

// WeeklyVolume sums the volume of workouts dated strictly after now - 7 days.
func WeeklyVolume(workouts []fitness.Workout, now time.Time) float64 {
	weekAgo := now.Add(-week)
	var volume float64
	for _, w := range workouts {
		if w.Date.After(weekAgo) {
			volume += WorkoutVolume(w)
		}
	}
	return volume
}
