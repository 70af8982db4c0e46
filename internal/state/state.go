package state

import (
	"sync"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
)

// State is the in-memory application state of one client. Collection slices are
// written only by the subscription manager, the current workout only by the
// workout session controller. Everything else reads snapshots.
type State struct {
	mutex sync.RWMutex

	userID         string
	routines       []fitness.Routine
	workouts       []fitness.Workout
	goals          []fitness.Goal
	currentWorkout *fitness.Workout
}

func New() *State {
	return &State{}
}

// View is a read-only snapshot of the state, handed to renderers.
type View struct {
	UserID         string
	Routines       []fitness.Routine
	Workouts       []fitness.Workout
	Goals          []fitness.Goal
	CurrentWorkout *fitness.Workout
	// Now is filled by the router at render time.
	Now time.Time
}

func (v View) SignedIn() bool {
	return v.UserID != ""
}

// Reset starts a new session for userID (empty means signed out). All collections
// are cleared and any in-progress workout is dropped.
func (s *State) Reset(userID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.userID = userID
	s.routines = []fitness.Routine{}
	s.workouts = []fitness.Workout{}
	s.goals = []fitness.Goal{}
	s.currentWorkout = nil
}

func (s *State) UserID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.userID
}

func (s *State) ReplaceRoutines(routines []fitness.Routine) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.routines = nonNil(routines)
}

func (s *State) ReplaceWorkouts(workouts []fitness.Workout) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.workouts = nonNil(workouts)
}

func (s *State) ReplaceGoals(goals []fitness.Goal) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.goals = nonNil(goals)
}

func (s *State) Routines() []fitness.Routine {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]fitness.Routine(nil), s.routines...)
}

func (s *State) Workouts() []fitness.Workout {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]fitness.Workout(nil), s.workouts...)
}

func (s *State) Goals() []fitness.Goal {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]fitness.Goal(nil), s.goals...)
}

// Routine finds a routine by id.
func (s *State) Routine(id string) (fitness.Routine, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for _, r := range s.routines {
		if r.ID == id {
			return r, true
		}
	}
	return fitness.Routine{}, false
}

// CurrentWorkout returns a copy of the in-progress workout.
func (s *State) CurrentWorkout() (fitness.Workout, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.currentWorkout == nil {
		return fitness.Workout{}, false
	}
	return s.currentWorkout.Clone(), true
}

// SetCurrentWorkout replaces the in-progress workout, nil clears it.
func (s *State) SetCurrentWorkout(w *fitness.Workout) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if w == nil {
		s.currentWorkout = nil
		return
	}
	c := w.Clone()
	s.currentWorkout = &c
}

// Snapshot copies the state into a View. Slices are copied, so later
// replacements never show up in a view that is being rendered.
func (s *State) Snapshot() View {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	v := View{
		UserID:   s.userID,
		Routines: append([]fitness.Routine{}, s.routines...),
		Workouts: append([]fitness.Workout{}, s.workouts...),
		Goals:    append([]fitness.Goal{}, s.goals...),
	}
	if s.currentWorkout != nil {
		c := s.currentWorkout.Clone()
		v.CurrentWorkout = &c
	}
	return v
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
