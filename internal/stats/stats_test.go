package stats_test

import (
	"testing"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dateNow = time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)

func workout(id string, date time.Time, exercises ...fitness.WorkoutExercise) fitness.Workout {
	return fitness.Workout{
		ID:          id,
		RoutineName: "Routine " + id,
		Date:        date,
		Exercises:   exercises,
	}
}

func exercise(name string, sets ...fitness.Set) fitness.WorkoutExercise {
	return fitness.WorkoutExercise{
		Exercise: fitness.Exercise{Name: name, Muscle: fitness.DefaultMuscle},
		Sets:     sets,
	}
}

func set(weight float64, reps int) fitness.Set {
	return fitness.Set{Weight: weight, Reps: reps}
}

func TestPersonalRecords_Empty(t *testing.T) {
	assert.Empty(t, stats.PersonalRecords(nil))
	assert.Equal(t, stats.Record{Exercise: "Squat"}, stats.PersonalRecord(nil, "Squat"))
}

func TestPersonalRecords(t *testing.T) {
	d1 := dateNow.AddDate(0, 0, -3)
	d2 := dateNow.AddDate(0, 0, -1)
	workouts := []fitness.Workout{
		workout("w1", d1,
			exercise("Bench Press", set(80, 8), set(85, 5)),
			exercise("Squat", set(100, 5)),
		),
		workout("w2", d2,
			exercise("Bench Press", set(82.5, 6)),
			exercise("Squat", set(110, 3), set(105, 5)),
			exercise("Plank"),
		),
	}

	records := stats.PersonalRecords(workouts)
	require.Len(t, records, 2)
	assert.Equal(t, stats.Record{Exercise: "Squat", Weight: 110, Reps: 3, Date: d2}, records[0])
	assert.Equal(t, stats.Record{Exercise: "Bench Press", Weight: 85, Reps: 5, Date: d1}, records[1])

	assert.Equal(t, records[1], stats.PersonalRecord(workouts, "Bench Press"))
	assert.Equal(t, stats.Record{Exercise: "Plank"}, stats.PersonalRecord(workouts, "Plank"))
}

func TestPersonalRecords_TieKeepsFirstSeen(t *testing.T) {
	first := dateNow.AddDate(0, 0, -10)
	later := dateNow.AddDate(0, 0, -2)
	workouts := []fitness.Workout{
		workout("w1", first, exercise("Row", set(60, 10))),
		workout("w2", later, exercise("Row", set(60, 12))),
	}

	rec := stats.PersonalRecord(workouts, "Row")
	assert.Equal(t, 60.0, rec.Weight)
	assert.Equal(t, 10, rec.Reps)
	assert.Equal(t, first, rec.Date)
}

func TestPersonalRecords_MaxPresentInInput(t *testing.T) {
	workouts := []fitness.Workout{
		workout("w1", dateNow, exercise("Curl", set(12, 10), set(14, 8), set(10, 12))),
		workout("w2", dateNow, exercise("Curl", set(13, 10))),
		workout("w3", dateNow, exercise("Curl")),
	}

	for _, rec := range stats.PersonalRecords(workouts) {
		found := false
		for _, w := range workouts {
			ex, ok := w.Exercise(rec.Exercise)
			if !ok {
				continue
			}
			for _, s := range ex.Sets {
				assert.LessOrEqual(t, s.Weight, rec.Weight)
				if s.Weight == rec.Weight && s.Reps == rec.Reps {
					found = true
				}
			}
		}
		assert.True(t, found, "record %v not in input", rec)
	}
}

func TestWorkoutVolume(t *testing.T) {
	assert.Zero(t, stats.WorkoutVolume(fitness.Workout{}))
	assert.Zero(t, stats.WorkoutVolume(workout("w", dateNow, exercise("Plank"))))

	w := workout("w", dateNow,
		exercise("Bench Press", set(80, 8), set(85, 5)),
		exercise("Dips", set(0, 12)),
		exercise("Fly", set(15.5, 10)),
	)
	assert.Equal(t, 80.0*8+85*5+15.5*10, stats.WorkoutVolume(w))
}

func TestWeeklyVolume(t *testing.T) {
	workouts := []fitness.Workout{
		workout("today", dateNow, exercise("Squat", set(100, 5))),
		workout("almost week", dateNow.Add(-7*24*time.Hour+time.Second), exercise("Squat", set(10, 1))),
		workout("exactly week", dateNow.Add(-7*24*time.Hour), exercise("Squat", set(1000, 1))),
		workout("old", dateNow.AddDate(0, 0, -20), exercise("Squat", set(1000, 1))),
	}

	assert.Equal(t, 510.0, stats.WeeklyVolume(workouts, dateNow))
	assert.Zero(t, stats.WeeklyVolume(nil, dateNow))
}

func TestStagnationCheck(t *testing.T) {
	series := func(name string, weights ...float64) []fitness.Workout {
		var workouts []fitness.Workout
		for i, w := range weights {
			date := dateNow.AddDate(0, 0, -len(weights)+i)
			workouts = append(workouts, workout(name, date, exercise(name, set(w/2, 10), set(w, 5))))
		}
		return workouts
	}

	testCases := []struct {
		name     string
		weights  []float64
		stagnant bool
		weight   float64
	}{
		{name: "increasing", weights: []float64{50, 55, 60}},
		{name: "decreasing", weights: []float64{60, 55, 50}, stagnant: true, weight: 50},
		{name: "flat", weights: []float64{50, 50, 50}, stagnant: true, weight: 50},
		{name: "two workouts", weights: []float64{60, 50}},
		{name: "one workout", weights: []float64{60}},
		{name: "only last three count", weights: []float64{100, 50, 55, 60}},
		{name: "earlier increase ignored", weights: []float64{40, 60, 60, 55}, stagnant: true, weight: 55},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := stats.StagnationCheck(series("Press", tc.weights...))
			if !tc.stagnant {
				assert.Empty(t, result)
				return
			}
			require.Len(t, result, 1)
			assert.Equal(t, stats.Stagnation{Exercise: "Press", Weight: tc.weight}, result[0])
		})
	}
}

func TestStagnationCheck_ChronologicalAndSetless(t *testing.T) {
	// listed newest first, and with an appearance that has no sets
	workouts := []fitness.Workout{
		workout("w4", dateNow, exercise("Squat", set(120, 3))),
		workout("w3", dateNow.AddDate(0, 0, -1), exercise("Squat")),
		workout("w2", dateNow.AddDate(0, 0, -2), exercise("Squat", set(110, 3))),
		workout("w1", dateNow.AddDate(0, 0, -3), exercise("Squat", set(100, 3))),
	}
	assert.Empty(t, stats.StagnationCheck(workouts))

	workouts[0] = workout("w4", dateNow, exercise("Squat", set(105, 3)))
	assert.Equal(t, []stats.Stagnation(nil), stats.StagnationCheck(workouts))

	workouts[0] = workout("w4", dateNow, exercise("Squat", set(95, 3)))
	workouts[2] = workout("w2", dateNow.AddDate(0, 0, -2), exercise("Squat", set(100, 3)))
	assert.Equal(t, []stats.Stagnation{{Exercise: "Squat", Weight: 95}}, stats.StagnationCheck(workouts))
}

func TestGoalProgress(t *testing.T) {
	testCases := []struct {
		name     string
		goal     fitness.Goal
		expected float64
	}{
		{name: "halfway", goal: fitness.Goal{StartingWeight: 80, CurrentWeight: 90, TargetWeight: 100}, expected: 50},
		{name: "not started", goal: fitness.Goal{StartingWeight: 80, CurrentWeight: 80, TargetWeight: 100}, expected: 0},
		{name: "over target", goal: fitness.Goal{StartingWeight: 80, CurrentWeight: 120, TargetWeight: 100}, expected: 100},
		{name: "below start", goal: fitness.Goal{StartingWeight: 80, CurrentWeight: 60, TargetWeight: 100}, expected: 0},
		{name: "target not above start", goal: fitness.Goal{StartingWeight: 100, CurrentWeight: 110, TargetWeight: 100}, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stats.GoalProgress(tc.goal))
		})
	}
}

func TestDaysLeft(t *testing.T) {
	assert.Equal(t, 3, stats.DaysLeft(fitness.Goal{TargetDate: dateNow.Add(50 * time.Hour)}, dateNow))
	assert.Equal(t, 1, stats.DaysLeft(fitness.Goal{TargetDate: dateNow.Add(time.Hour)}, dateNow))
	assert.Equal(t, 0, stats.DaysLeft(fitness.Goal{TargetDate: dateNow}, dateNow))
	assert.Equal(t, 0, stats.DaysLeft(fitness.Goal{TargetDate: dateNow.AddDate(0, 0, -5)}, dateNow))
}

func TestWorkoutHelpers(t *testing.T) {
	w1 := workout("w1", dateNow.AddDate(0, 0, -40), exercise("Squat", set(100, 5)))
	w2 := workout("w2", dateNow.AddDate(0, 0, -2), exercise("Bench Press", set(80, 5)), exercise("Squat", set(90, 5), set(110, 2)))
	w3 := workout("w3", dateNow.AddDate(0, 0, -10), exercise("Deadlift"))
	workouts := []fitness.Workout{w1, w2, w3}

	last, ok := stats.LastWorkout(workouts)
	require.True(t, ok)
	assert.Equal(t, "w2", last.ID)
	_, ok = stats.LastWorkout(nil)
	assert.False(t, ok)

	sorted := stats.SortByDate(workouts, true)
	assert.Equal(t, []string{"w2", "w3", "w1"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, "w1", workouts[0].ID)

	recent := stats.WorkoutsSince(workouts, dateNow.AddDate(0, 0, -30))
	require.Len(t, recent, 2)
	assert.Equal(t, "w3", recent[0].ID)
	assert.Equal(t, "w2", recent[1].ID)

	assert.Equal(t, []string{"Bench Press", "Squat"}, stats.ExerciseNames(workouts))

	assert.Equal(t, []stats.Point{
		{Date: w1.Date, MaxWeight: 100, Volume: 500},
		{Date: w2.Date, MaxWeight: 110, Volume: 670},
	}, stats.ProgressSeries(workouts, "Squat"))
	assert.Empty(t, stats.ProgressSeries(workouts, "Deadlift"))
}
