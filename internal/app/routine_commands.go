package app

import (
	"context"
	"fmt"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/ui"
)

func (c *Commander) selectRoutine(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	routine, err := c.findRoutine(rest(args))
	if err != nil {
		return err
	}
	c.renderer.Select(ui.PageSettings, routine.ID)
	c.router.Navigate(ui.PageSettings)
	return nil
}

// selectedRoutine is the routine whose exercises the settings page shows.
func (c *Commander) selectedRoutine() (fitness.Routine, error) {
	routines := c.state.Routines()
	if len(routines) == 0 {
		return fitness.Routine{}, fitness.NewValidationError("Create a routine first to add exercises.")
	}
	if id := c.renderer.Selected(ui.PageSettings); id != "" {
		for _, r := range routines {
			if r.ID == id {
				return r, nil
			}
		}
	}
	return routines[0], nil
}

func (c *Commander) addRoutine(ctx context.Context, args []string) error {
	name := rest(args)
	if name == "" {
		return fitness.NewValidationError("Please enter a routine name.")
	}

	routine := fitness.Routine{Name: name, Exercises: []fitness.Exercise{}}
	id, err := c.docStore.Create(ctx, fitness.CollectionRoutines.Path(c.state.UserID()), routine.Fields())
	if err != nil {
		return c.storeFailure("create_routine", "Could not create the routine.", err)
	}
	c.renderer.Select(ui.PageSettings, id)
	c.notifier.Notify("Routine created.", true)
	c.router.Navigate(ui.PageSettings)
	return nil
}

func (c *Commander) renameRoutine(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	routine, err := c.findRoutine(args[0])
	if err != nil {
		return err
	}
	name := rest(args[1:])
	if name == "" {
		return fitness.NewValidationError("Please enter a routine name.")
	}
	if name == routine.Name {
		return nil
	}

	docPath := fitness.CollectionRoutines.DocPath(c.state.UserID(), routine.ID)
	if err := c.docStore.UpsertMerge(ctx, docPath, map[string]any{"name": name}); err != nil {
		return c.storeFailure("rename_routine", "Could not rename the routine.", err)
	}
	c.notifier.Notify("Routine renamed.", true)
	return nil
}

func (c *Commander) deleteRoutine(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	routine, err := c.findRoutine(rest(args))
	if err != nil {
		return err
	}
	if !c.prompter.Confirm(ctx, "Delete routine", fmt.Sprintf("Delete %s? This cannot be undone.", routine.Name)) {
		return nil
	}

	if err := c.docStore.Delete(ctx, fitness.CollectionRoutines.DocPath(c.state.UserID(), routine.ID)); err != nil {
		return c.storeFailure("delete_routine", "Could not delete the routine.", err)
	}
	if c.renderer.Selected(ui.PageSettings) == routine.ID {
		c.renderer.Select(ui.PageSettings, "")
	}
	c.notifier.Notify("Routine deleted.", true)
	return nil
}

func (c *Commander) addExercise(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	routine, err := c.selectedRoutine()
	if err != nil {
		return err
	}
	exercise, err := exerciseFromArgs(args[0], args[1:])
	if err != nil {
		return err
	}

	exercises := append(append([]fitness.Exercise(nil), routine.Exercises...), exercise)
	return c.writeExercises(ctx, routine, exercises, "Exercise added.")
}

func (c *Commander) editExercise(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	routine, err := c.selectedRoutine()
	if err != nil {
		return err
	}
	i, err := pick(args[0], len(routine.Exercises))
	if err != nil {
		return err
	}
	exercise, err := exerciseFromArgs(args[1], args[2:])
	if err != nil {
		return err
	}

	exercises := append([]fitness.Exercise(nil), routine.Exercises...)
	exercises[i] = exercise
	return c.writeExercises(ctx, routine, exercises, "Exercise updated.")
}

func (c *Commander) removeExercise(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	routine, err := c.selectedRoutine()
	if err != nil {
		return err
	}
	i, err := pick(args[0], len(routine.Exercises))
	if err != nil {
		return err
	}

	exercises := make([]fitness.Exercise, 0, len(routine.Exercises)-1)
	exercises = append(exercises, routine.Exercises[:i]...)
	exercises = append(exercises, routine.Exercises[i+1:]...)
	return c.writeExercises(ctx, routine, exercises, "Exercise removed.")
}

// writeExercises replaces the whole exercises list of the routine.
func (c *Commander) writeExercises(ctx context.Context, routine fitness.Routine, exercises []fitness.Exercise, done string) error {
	docPath := fitness.CollectionRoutines.DocPath(c.state.UserID(), routine.ID)
	err := c.docStore.UpsertMerge(ctx, docPath, map[string]any{
		"exercises": fitness.ExercisesFields(exercises),
	})
	if err != nil {
		return c.storeFailure("update_exercises", "Could not save the exercises.", err)
	}
	c.notifier.Notify(done, true)
	return nil
}

func exerciseFromArgs(name string, muscleArgs []string) (fitness.Exercise, error) {
	exercise := fitness.Exercise{
		Name:   rest([]string{name}),
		Muscle: rest(muscleArgs),
	}
	if exercise.Name == "" {
		return fitness.Exercise{}, fitness.NewValidationError("Please enter an exercise name.")
	}
	if exercise.Muscle == "" {
		exercise.Muscle = fitness.DefaultMuscle
	}
	return exercise, nil
}
