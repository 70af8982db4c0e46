package ui

import (
	"testing"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/state"

	"github.com/stretchr/testify/assert"
)

func liftWorkout(id string, daysAgo int, name string, weight float64) fitness.Workout {
	return fitness.Workout{
		ID:          id,
		RoutineName: "Upper",
		Date:        testNow.AddDate(0, 0, -daysAgo),
		Exercises: []fitness.WorkoutExercise{
			{Exercise: fitness.Exercise{Name: name, Muscle: "Chest"}, Sets: []fitness.Set{{Weight: weight, Reps: 5}}},
		},
	}
}

func signedInView() state.View {
	return state.View{UserID: "u1", Now: testNow}
}

func TestRenderer_SignedOut(t *testing.T) {
	rd := NewRenderer()
	for page, render := range rd.Renderers() {
		assert.Contains(t, render(state.View{}), "Sign in to see your data.", page)
	}
}

func TestRenderer_Dashboard(t *testing.T) {
	rd := NewRenderer()

	empty := rd.Dashboard(signedInView())
	assert.Contains(t, empty, "No workouts logged yet.")
	assert.Contains(t, empty, "Log workouts to see your records.")
	assert.NotContains(t, empty, "Stagnation alert")

	v := signedInView()
	v.Workouts = []fitness.Workout{
		liftWorkout("w1", 20, "Bench Press", 60),
		liftWorkout("w2", 10, "Bench Press", 55),
		liftWorkout("w3", 2, "Bench Press", 50),
	}
	out := rd.Dashboard(v)
	assert.Contains(t, out, "Stagnation alert")
	assert.Contains(t, out, "Bench Press (50 kg)")
	assert.Contains(t, out, "60 kg x 5 reps")
	// only the last workout is inside the week
	assert.Contains(t, out, "250 kg")
	assert.Contains(t, out, "Total workouts")
}

func TestRenderer_DashboardTopFiveRecords(t *testing.T) {
	rd := NewRenderer()
	v := signedInView()
	for i, name := range []string{"A", "B", "C", "D", "E", "F"} {
		v.Workouts = append(v.Workouts, liftWorkout(name, i, "Lift "+name, float64(100-i*10)))
	}

	out := rd.Dashboard(v)
	assert.Contains(t, out, "Lift A")
	assert.Contains(t, out, "Lift E")
	assert.NotContains(t, out, "Lift F")
}

func TestRenderer_Goals(t *testing.T) {
	rd := NewRenderer()
	v := signedInView()
	v.Goals = []fitness.Goal{{
		ID:             "g1",
		ExerciseName:   "Squat",
		TargetWeight:   120,
		TargetDate:     testNow.AddDate(0, 0, 30),
		StartingWeight: 100,
		CurrentWeight:  110,
	}}

	out := rd.Goals(v)
	assert.Contains(t, out, "1. Squat")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "30 days left")
	assert.Contains(t, out, "Start: 100 kg")
	assert.Contains(t, out, "Current: 110 kg")
}

func TestRenderer_HistoryDetails(t *testing.T) {
	rd := NewRenderer()
	v := signedInView()
	w := liftWorkout("w1", 1, "Row", 70)
	w.Feedback = fitness.Feedback{Energy: 4, Mood: 3, Motivation: 5, Notes: "sore back"}
	v.Workouts = []fitness.Workout{w, liftWorkout("w2", 3, "Row", 65)}

	out := rd.History(v)
	assert.NotContains(t, out, "Feedback")

	rd.Select(PageHistory, "w1")
	out = rd.History(v)
	assert.Contains(t, out, "Total volume: 350 kg")
	assert.Contains(t, out, "Set 1: 70 kg x 5 reps")
	assert.Contains(t, out, "Energy: ★★★★☆")
	assert.Contains(t, out, "Notes: sore back")

	rd.Select(PageHistory, "w2")
	assert.Contains(t, rd.History(v), "No feedback recorded.")
}

func TestRenderer_Analytics(t *testing.T) {
	rd := NewRenderer()
	assert.Contains(t, rd.Analytics(signedInView()), "Log some workouts to see your analytics.")

	v := signedInView()
	v.Workouts = []fitness.Workout{
		liftWorkout("w1", 2, "Row", 70),
		liftWorkout("w2", 1, "Curl", 20),
	}
	assert.Contains(t, rd.Analytics(v), "Curl: max weight per workout")

	rd.Select(PageAnalytics, "Row")
	out := rd.Analytics(v)
	assert.Contains(t, out, "Row: max weight per workout")
	assert.Contains(t, out, testNow.AddDate(0, 0, -2).Format(fitness.DateLayout))

	rd.Select(PageAnalytics, "Gone")
	assert.Contains(t, rd.Analytics(v), "Curl: max weight per workout")
}

func TestRenderer_Settings(t *testing.T) {
	rd := NewRenderer()
	assert.Contains(t, rd.Settings(signedInView()), "Create a routine first to add exercises.")

	v := signedInView()
	v.Routines = []fitness.Routine{
		{ID: "r1", Name: "Push", Exercises: []fitness.Exercise{{Name: "Bench", Muscle: "Chest"}}},
		{ID: "r2", Name: "Pull"},
	}
	out := rd.Settings(v)
	assert.Contains(t, out, "Exercises in Push")
	assert.Contains(t, out, "1. Bench (Chest)")

	rd.Select(PageSettings, "r2")
	out = rd.Settings(v)
	assert.Contains(t, out, "Exercises in Pull")
	assert.Contains(t, out, "No exercises in this routine.")
}

func TestRenderer_LogWorkout(t *testing.T) {
	rd := NewRenderer()
	assert.Contains(t, rd.LogWorkout(signedInView()), "No routines yet.")

	v := signedInView()
	v.CurrentWorkout = &fitness.Workout{
		RoutineName: "Legs",
		Date:        time.Now(),
		Exercises: []fitness.WorkoutExercise{
			{Exercise: fitness.Exercise{Name: "Squat"}, Sets: []fitness.Set{{Weight: 100, Reps: 5}}},
		},
	}
	out := rd.LogWorkout(v)
	assert.Contains(t, out, "Legs")
	assert.Contains(t, out, "Set 1: 100 kg x 5 reps")
}

func TestRenderer_DashboardAnalysis(t *testing.T) {
	rd := NewRenderer()
	assert.Contains(t, rd.Dashboard(signedInView()), "Get insights on your progress")

	rd.SetAnalysis("Keep pushing.")
	out := rd.Dashboard(signedInView())
	assert.Contains(t, out, "Keep pushing.")
	assert.NotContains(t, out, "Get insights on your progress")

	rd.Select(PageHistory, "w1")
	rd.Reset()
	assert.Empty(t, rd.Selected(PageHistory))
	assert.Contains(t, rd.Dashboard(signedInView()), "Get insights on your progress")
}
