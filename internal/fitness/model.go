package fitness

import (
	"fmt"
	"time"
)

const (
	// DateLayout is used for goal target dates, workouts carry full RFC 3339 timestamps.
	DateLayout = "2006-01-02"

	DefaultMuscle = "General"
)

// Collection names a per-user document collection in the store.
type Collection string

const (
	CollectionRoutines Collection = "routines"
	CollectionWorkouts Collection = "workouts"
	CollectionGoals    Collection = "goals"
)

// Collections lists every collection a signed in user is subscribed to.
var Collections = []Collection{
	CollectionRoutines,
	CollectionWorkouts,
	CollectionGoals,
}

func (c Collection) String() string {
	return string(c)
}

// Path returns users/{userID}/{collection}.
func (c Collection) Path(userID string) string {
	return fmt.Sprintf("users/%s/%s", userID, c)
}

// DocPath returns users/{userID}/{collection}/{docID}.
func (c Collection) DocPath(userID, docID string) string {
	return fmt.Sprintf("users/%s/%s/%s", userID, c, docID)
}

type Exercise struct {
	Name   string `json:"name" yaml:"name"`
	Muscle string `json:"muscle" yaml:"muscle"`
}

type Set struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// Volume is weight times reps.
func (s Set) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

type Routine struct {
	ID        string     `json:"id"`
	Name      string     `json:"name" yaml:"name"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
}

// WorkoutExercise is an exercise performed within a workout, together with the recorded sets.
type WorkoutExercise struct {
	Exercise
	Sets []Set `json:"sets"`
}

// MaxWeight returns the heaviest set weight, and false if no sets were recorded.
func (we WorkoutExercise) MaxWeight() (float64, bool) {
	if len(we.Sets) == 0 {
		return 0, false
	}
	maxWeight := we.Sets[0].Weight
	for _, s := range we.Sets[1:] {
		if s.Weight > maxWeight {
			maxWeight = s.Weight
		}
	}
	return maxWeight, true
}

// Feedback is captured after a workout is finished. Ratings are 1-5.
type Feedback struct {
	Energy     int    `json:"energy"`
	Mood       int    `json:"mood"`
	Motivation int    `json:"motivation"`
	Notes      string `json:"notes"`
}

func (f Feedback) IsEmpty() bool {
	return f == Feedback{}
}

type Workout struct {
	ID          string            `json:"id"`
	RoutineName string            `json:"routineName"`
	Date        time.Time         `json:"date"`
	Exercises   []WorkoutExercise `json:"exercises"`
	Feedback    Feedback          `json:"feedback"`
}

// HasSets reports whether at least one exercise has a recorded set.
func (w Workout) HasSets() bool {
	for _, ex := range w.Exercises {
		if len(ex.Sets) > 0 {
			return true
		}
	}
	return false
}

// Exercise finds the first exercise in the workout with the given name.
func (w Workout) Exercise(name string) (WorkoutExercise, bool) {
	for _, ex := range w.Exercises {
		if ex.Name == name {
			return ex, true
		}
	}
	return WorkoutExercise{}, false
}

// Clone returns a deep copy, so set edits never leak into the source.
func (w Workout) Clone() Workout {
	c := w
	c.Exercises = make([]WorkoutExercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		c.Exercises[i] = WorkoutExercise{
			Exercise: ex.Exercise,
			Sets:     append([]Set(nil), ex.Sets...),
		}
	}
	return c
}

type Goal struct {
	ID             string    `json:"id"`
	ExerciseName   string    `json:"exerciseName"`
	TargetWeight   float64   `json:"targetWeight"`
	TargetDate     time.Time `json:"targetDate"`
	StartingWeight float64   `json:"startingWeight"`
	CurrentWeight  float64   `json:"currentWeight"`
}
