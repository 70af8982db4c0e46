package app

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/session"
	"github.com/2beens/gymtracker/internal/ui"

	log "github.com/sirupsen/logrus"
)

// findRoutine accepts the routine's list number or its name.
func (c *Commander) findRoutine(arg string) (fitness.Routine, error) {
	routines := c.state.Routines()
	if len(routines) == 0 {
		return fitness.Routine{}, fitness.NewValidationError("No routines yet. Create one with routine-add.")
	}
	if _, err := strconv.Atoi(arg); err == nil {
		i, err := pick(arg, len(routines))
		if err != nil {
			return fitness.Routine{}, err
		}
		return routines[i], nil
	}
	for _, r := range routines {
		if strings.EqualFold(r.Name, arg) {
			return r, nil
		}
	}
	return fitness.Routine{}, fitness.NewValidationError("Routine not found: " + arg)
}

func (c *Commander) start(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	routine, err := c.findRoutine(rest(args))
	if err != nil {
		return err
	}
	if !c.session.StartWorkout(routine.ID) {
		if c.session.Active() {
			return fitness.NewValidationError("Finish or cancel the current workout first.")
		}
		return fitness.NewValidationError("Routine not found: " + routine.Name)
	}
	return nil
}

func (c *Commander) addSet(_ context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	exIndex, err := strconv.Atoi(args[0])
	if err != nil {
		return fitness.NewValidationError(msgPickFromList)
	}
	return sessionErr(c.session.AddSetInput(exIndex-1, args[1], args[2]))
}

func (c *Commander) removeSet(_ context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	exIndex, exErr := strconv.Atoi(args[0])
	setIndex, setErr := strconv.Atoi(args[1])
	if exErr != nil || setErr != nil {
		return fitness.NewValidationError(msgPickFromList)
	}
	return sessionErr(c.session.RemoveSet(exIndex-1, setIndex-1))
}

func (c *Commander) finish(ctx context.Context, _ []string) error {
	err := c.session.FinishWorkout(ctx)
	if errors.Is(err, ui.ErrPromptCancelled) {
		c.notifier.Notify("The workout is still going, finish it when you are done.", true)
		return nil
	}
	err = sessionErr(err)
	if err != nil && !fitness.IsValidationError(err) {
		// the controller already told the user about failed writes
		log.Errorf("commander: finish workout: %s", err)
		return nil
	}
	return err
}

func (c *Commander) cancel(ctx context.Context, _ []string) error {
	if !c.session.Active() {
		return fitness.NewValidationError("There is no workout in progress.")
	}
	c.session.CancelWorkout(ctx)
	return nil
}

// sessionErr maps controller errors to what the user is told. Validation
// errors were already shown by the controller.
func sessionErr(err error) error {
	switch {
	case err == nil:
		return nil
	case fitness.IsValidationError(err):
		return nil
	case errors.Is(err, session.ErrNoActiveWorkout):
		return fitness.NewValidationError("Start a workout first.")
	case errors.Is(err, session.ErrIndexOutOfRange):
		return fitness.NewValidationError(msgPickFromList)
	case errors.Is(err, session.ErrFinishing):
		return fitness.NewValidationError("The workout is being saved.")
	default:
		return err
	}
}
