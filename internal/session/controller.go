package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/notice"
	"github.com/2beens/gymtracker/internal/state"
	"github.com/2beens/gymtracker/internal/store"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/internal/ui"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNoActiveWorkout = errors.New("no active workout")
	ErrFinishing       = errors.New("workout is being finished")
	ErrIndexOutOfRange = errors.New("index out of range")
)

const (
	msgInvalidSet     = "Enter valid values for weight and reps."
	msgNoSets         = "Add at least one set to finish the workout."
	msgInvalidRatings = "Ratings must be between 1 and 5."
)

// FeedbackCapturer asks the user how the workout went. It blocks until the
// user answers or gives up.
type FeedbackCapturer interface {
	CaptureFeedback(ctx context.Context) (fitness.Feedback, error)
}

type Confirmer interface {
	Confirm(ctx context.Context, title, message string) bool
}

type Navigator interface {
	Navigate(page ui.Page) bool
	Redraw()
}

type GoalRefresher interface {
	Refresh(ctx context.Context, userID string, goals []fitness.Goal, workouts []fitness.Workout) (int, error)
}

type Params struct {
	State          *state.State
	DocStore       store.DocumentStore
	Goals          GoalRefresher
	Feedback       FeedbackCapturer
	Confirmer      Confirmer
	Navigator      Navigator
	Notifier       notice.Notifier
	MetricsManager *metrics.Manager
}

// Controller drives the in-progress workout: Idle until a routine is
// started, Active while sets are logged, Idle again once the workout is
// cancelled or persisted. It is the only writer of the current workout.
type Controller struct {
	state          *state.State
	docStore       store.DocumentStore
	goals          GoalRefresher
	feedback       FeedbackCapturer
	confirmer      Confirmer
	navigator      Navigator
	notifier       notice.Notifier
	metricsManager *metrics.Manager

	now   func() time.Time
	newID func() string

	mutex     sync.Mutex
	finishing bool
}

func NewController(params Params) *Controller {
	return &Controller{
		state:          params.State,
		docStore:       params.DocStore,
		goals:          params.Goals,
		feedback:       params.Feedback,
		confirmer:      params.Confirmer,
		navigator:      params.Navigator,
		notifier:       params.Notifier,
		metricsManager: params.MetricsManager,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// Active reports whether a workout is in progress.
func (c *Controller) Active() bool {
	_, ok := c.state.CurrentWorkout()
	return ok
}

// StartWorkout copies the routine's exercises into a new in-progress workout
// and shows the log page. Nothing happens if the routine does not exist or
// a workout is already active.
func (c *Controller) StartWorkout(routineID string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, active := c.state.CurrentWorkout(); active {
		log.Debugf("session: start of [%s] ignored, workout already active", routineID)
		return false
	}
	routine, ok := c.state.Routine(routineID)
	if !ok {
		log.Debugf("session: routine [%s] not found", routineID)
		return false
	}

	exercises := make([]fitness.WorkoutExercise, len(routine.Exercises))
	for i, ex := range routine.Exercises {
		exercises[i] = fitness.WorkoutExercise{
			Exercise: ex,
			Sets:     []fitness.Set{},
		}
	}
	c.state.SetCurrentWorkout(&fitness.Workout{
		ID:          c.newID(),
		RoutineName: routine.Name,
		Date:        c.now().UTC(),
		Exercises:   exercises,
	})

	c.metricsManager.CounterWorkouts.WithLabelValues("started").Inc()
	log.Debugf("session: started workout from routine [%s]", routine.Name)
	c.navigator.Navigate(ui.PageLogWorkout)
	return true
}

// AddSet appends a set to the exercise at exIndex. The weight must be a
// non-negative number and reps positive, otherwise nothing changes.
func (c *Controller) AddSet(exIndex int, weight float64, reps int) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 || reps <= 0 {
		return c.invalid(msgInvalidSet)
	}

	err := c.edit(func(w *fitness.Workout) error {
		if exIndex < 0 || exIndex >= len(w.Exercises) {
			return fmt.Errorf("exercise %d: %w", exIndex, ErrIndexOutOfRange)
		}
		w.Exercises[exIndex].Sets = append(w.Exercises[exIndex].Sets, fitness.Set{
			Weight: weight,
			Reps:   reps,
		})
		return nil
	})
	if err != nil {
		return err
	}
	c.navigator.Redraw()
	return nil
}

// AddSetInput parses the raw weight and reps text and adds the set.
func (c *Controller) AddSetInput(exIndex int, weightInput, repsInput string) error {
	weight, err := strconv.ParseFloat(strings.TrimSpace(weightInput), 64)
	if err != nil {
		return c.invalid(msgInvalidSet)
	}
	reps, err := strconv.Atoi(strings.TrimSpace(repsInput))
	if err != nil {
		return c.invalid(msgInvalidSet)
	}
	return c.AddSet(exIndex, weight, reps)
}

// RemoveSet removes the set at setIndex of the exercise at exIndex.
func (c *Controller) RemoveSet(exIndex, setIndex int) error {
	err := c.edit(func(w *fitness.Workout) error {
		if exIndex < 0 || exIndex >= len(w.Exercises) {
			return fmt.Errorf("exercise %d: %w", exIndex, ErrIndexOutOfRange)
		}
		sets := w.Exercises[exIndex].Sets
		if setIndex < 0 || setIndex >= len(sets) {
			return fmt.Errorf("set %d: %w", setIndex, ErrIndexOutOfRange)
		}
		w.Exercises[exIndex].Sets = append(sets[:setIndex:setIndex], sets[setIndex+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	c.navigator.Redraw()
	return nil
}

// CancelWorkout drops the in-progress workout after the user confirms.
func (c *Controller) CancelWorkout(ctx context.Context) bool {
	c.mutex.Lock()
	if _, ok := c.state.CurrentWorkout(); !ok || c.finishing {
		c.mutex.Unlock()
		return false
	}
	c.mutex.Unlock()

	// the prompt blocks, so it runs without the lock
	if !c.confirmer.Confirm(ctx, "Cancel workout", "Are you sure you want to cancel the current workout? All unsaved data will be lost.") {
		return false
	}

	c.mutex.Lock()
	if c.finishing {
		c.mutex.Unlock()
		return false
	}
	c.state.SetCurrentWorkout(nil)
	c.mutex.Unlock()

	c.metricsManager.CounterWorkouts.WithLabelValues("cancelled").Inc()
	c.navigator.Navigate(ui.PageLogWorkout)
	c.notifier.Notify("Workout cancelled.", true)
	return true
}

// FinishWorkout asks for feedback, stores the workout, refreshes goal
// progress and goes back to the dashboard. The workout stays active when it
// has no sets, when feedback is not given and when the store write fails.
func (c *Controller) FinishWorkout(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.finish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	c.mutex.Lock()
	workout, ok := c.state.CurrentWorkout()
	if !ok {
		c.mutex.Unlock()
		return ErrNoActiveWorkout
	}
	if c.finishing {
		c.mutex.Unlock()
		return ErrFinishing
	}
	if !workout.HasSets() {
		c.mutex.Unlock()
		return c.invalid(msgNoSets)
	}
	c.finishing = true
	c.mutex.Unlock()

	defer func() {
		c.mutex.Lock()
		c.finishing = false
		c.mutex.Unlock()
	}()

	feedback, err := c.feedback.CaptureFeedback(ctx)
	if err != nil {
		log.Debugf("session: feedback not captured: %s", err)
		return fmt.Errorf("capture feedback: %w", err)
	}
	if !validRating(feedback.Energy) || !validRating(feedback.Mood) || !validRating(feedback.Motivation) {
		return c.invalid(msgInvalidRatings)
	}

	// sets may have changed while the user was answering, and a sign out
	// drops the workout altogether
	current, ok := c.state.CurrentWorkout()
	if !ok || current.ID != workout.ID {
		return ErrNoActiveWorkout
	}
	workout = current
	workout.Feedback = feedback

	userID := c.state.UserID()
	span.SetAttributes(attribute.String("user", userID))
	id, err := c.docStore.Create(ctx, fitness.CollectionWorkouts.Path(userID), workout.Fields())
	if err != nil {
		c.metricsManager.CounterWorkouts.WithLabelValues("failed").Inc()
		c.metricsManager.CounterStoreErrors.WithLabelValues("create_workout").Inc()
		c.notifier.Notify("Could not save the workout. Try again.", false)
		return fmt.Errorf("save workout: %w", err)
	}
	c.metricsManager.CounterWorkouts.WithLabelValues("finished").Inc()
	log.Debugf("session: workout [%s] saved as [%s]", workout.RoutineName, id)

	saved := workout
	saved.ID = id
	workouts := []fitness.Workout{saved}
	for _, w := range c.state.Workouts() {
		// the push of the new workout may already be in
		if w.ID != id {
			workouts = append(workouts, w)
		}
	}
	if _, goalErr := c.goals.Refresh(ctx, userID, c.state.Goals(), workouts); goalErr != nil {
		log.Errorf("session: refresh goals after workout: %s", goalErr)
		c.notifier.Notify("Could not update goal progress.", false)
	}

	c.mutex.Lock()
	if current, ok := c.state.CurrentWorkout(); ok && current.ID == workout.ID {
		c.state.SetCurrentWorkout(nil)
	}
	c.mutex.Unlock()

	c.notifier.Notify("Workout saved!", true)
	c.navigator.Navigate(ui.PageDashboard)
	return nil
}

func (c *Controller) edit(apply func(w *fitness.Workout) error) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	w, ok := c.state.CurrentWorkout()
	if !ok {
		return ErrNoActiveWorkout
	}
	if err := apply(&w); err != nil {
		return err
	}
	c.state.SetCurrentWorkout(&w)
	return nil
}

func (c *Controller) invalid(message string) error {
	c.notifier.Notify(message, false)
	return fitness.NewValidationError(message)
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}
