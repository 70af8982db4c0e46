package stats

import (
	"sort"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
)

// SortByDate returns a sorted copy of the workouts. The input is left untouched.
func SortByDate(workouts []fitness.Workout, newestFirst bool) []fitness.Workout {
	sorted := make([]fitness.Workout, len(workouts))
	copy(sorted, workouts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if newestFirst {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// LastWorkout returns the most recent workout, false if there are none.
func LastWorkout(workouts []fitness.Workout) (fitness.Workout, bool) {
	if len(workouts) == 0 {
		return fitness.Workout{}, false
	}
	last := workouts[0]
	for _, w := range workouts[1:] {
		if w.Date.After(last.Date) {
			last = w
		}
	}
	return last, true
}

// WorkoutsSince returns the workouts dated after since, oldest first.
func WorkoutsSince(workouts []fitness.Workout, since time.Time) []fitness.Workout {
	var recent []fitness.Workout
	for _, w := range SortByDate(workouts, false) {
		if w.Date.After(since) {
			recent = append(recent, w)
		}
	}
	return recent
}

// ExerciseNames returns every distinct exercise name logged with at least one set, sorted.
func ExerciseNames(workouts []fitness.Workout) []string {
	seen := make(map[string]bool)
	var names []string
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if ex.Name == "" || len(ex.Sets) == 0 || seen[ex.Name] {
				continue
			}
			seen[ex.Name] = true
			names = append(names, ex.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Point is one workout in the progress series of an exercise.
type Point struct {
	Date      time.Time `json:"date"`
	MaxWeight float64   `json:"maxWeight"`
	Volume    float64   `json:"volume"`
}

// ProgressSeries returns, oldest first, the max weight and the volume of the exercise
// in every workout where it has at least one set.
func ProgressSeries(workouts []fitness.Workout, exerciseName string) []Point {
	var series []Point
	for _, w := range SortByDate(workouts, false) {
		ex, ok := w.Exercise(exerciseName)
		if !ok {
			continue
		}
		maxWeight, ok := ex.MaxWeight()
		if !ok {
			continue
		}
		var volume float64
		for _, set := range ex.Sets {
			volume += set.Volume()
		}
		series = append(series, Point{
			Date:      w.Date,
			MaxWeight: maxWeight,
			Volume:    volume,
		})
	}
	return series
}
