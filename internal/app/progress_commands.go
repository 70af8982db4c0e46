package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/gymtracker/internal/ai"
	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/goals"
	"github.com/2beens/gymtracker/internal/stats"
	"github.com/2beens/gymtracker/internal/ui"

	log "github.com/sirupsen/logrus"
)

func (c *Commander) addGoal(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errUsage
	}
	n := len(args)
	goal, err := goals.New(goals.Input{
		ExerciseName: rest(args[:n-2]),
		TargetWeight: args[n-2],
		TargetDate:   args[n-1],
	}, c.state.Workouts())
	if err != nil {
		return err
	}

	if _, err := c.docStore.Create(ctx, fitness.CollectionGoals.Path(c.state.UserID()), goal.Fields()); err != nil {
		return c.storeFailure("create_goal", "Could not save the goal.", err)
	}
	c.notifier.Notify("Goal created!", true)
	c.router.Navigate(ui.PageGoals)
	return nil
}

func (c *Commander) deleteGoal(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	all := c.state.Goals()
	i, err := pick(args[0], len(all))
	if err != nil {
		return err
	}
	goal := all[i]
	if !c.prompter.Confirm(ctx, "Delete goal", fmt.Sprintf("Delete the %s goal?", goal.ExerciseName)) {
		return nil
	}

	if err := c.docStore.Delete(ctx, fitness.CollectionGoals.DocPath(c.state.UserID(), goal.ID)); err != nil {
		return c.storeFailure("delete_goal", "Could not delete the goal.", err)
	}
	c.notifier.Notify("Goal deleted.", true)
	return nil
}

// historyWorkout picks a workout by its number on the history page, which
// lists the newest first.
func (c *Commander) historyWorkout(arg string) (fitness.Workout, error) {
	sorted := stats.SortByDate(c.state.Workouts(), true)
	i, err := pick(arg, len(sorted))
	if err != nil {
		return fitness.Workout{}, err
	}
	return sorted[i], nil
}

func (c *Commander) showWorkout(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	workout, err := c.historyWorkout(args[0])
	if err != nil {
		return err
	}
	if c.renderer.Selected(ui.PageHistory) == workout.ID {
		c.renderer.Select(ui.PageHistory, "")
	} else {
		c.renderer.Select(ui.PageHistory, workout.ID)
	}
	c.router.Navigate(ui.PageHistory)
	return nil
}

func (c *Commander) deleteWorkout(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	workout, err := c.historyWorkout(args[0])
	if err != nil {
		return err
	}
	message := fmt.Sprintf("Delete the %s workout of %s?", workout.RoutineName, workout.Date.Format(fitness.DateLayout))
	if !c.prompter.Confirm(ctx, "Delete workout", message) {
		return nil
	}

	userID := c.state.UserID()
	if err := c.docStore.Delete(ctx, fitness.CollectionWorkouts.DocPath(userID, workout.ID)); err != nil {
		return c.storeFailure("delete_workout", "Could not delete the workout.", err)
	}
	if c.renderer.Selected(ui.PageHistory) == workout.ID {
		c.renderer.Select(ui.PageHistory, "")
	}
	c.notifier.Notify("Workout deleted.", true)

	remaining := make([]fitness.Workout, 0)
	for _, w := range c.state.Workouts() {
		if w.ID != workout.ID {
			remaining = append(remaining, w)
		}
	}
	if _, err := c.goals.Refresh(ctx, userID, c.state.Goals(), remaining); err != nil {
		log.Errorf("commander: refresh goals after delete: %s", err)
		c.notifier.Notify("Could not update goal progress.", false)
	}
	return nil
}

func (c *Commander) chart(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	names := stats.ExerciseNames(c.state.Workouts())
	if len(names) == 0 {
		return fitness.NewValidationError("Log some workouts to see your analytics.")
	}

	arg := rest(args)
	selected := ""
	if _, err := strconv.Atoi(arg); err == nil {
		i, err := pick(arg, len(names))
		if err != nil {
			return err
		}
		selected = names[i]
	} else {
		for _, name := range names {
			if strings.EqualFold(name, arg) {
				selected = name
				break
			}
		}
	}
	if selected == "" {
		return fitness.NewValidationError("No logged workouts with " + arg + ".")
	}

	c.renderer.Select(ui.PageAnalytics, selected)
	c.router.Navigate(ui.PageAnalytics)
	return nil
}

func (c *Commander) analyze(ctx context.Context, _ []string) error {
	if c.analyzer == nil {
		return fitness.NewValidationError("AI analysis is not configured.")
	}

	c.notifier.Notify("Analyzing your workouts...", true)
	text, err := c.analyzer.Analyze(ctx, c.state.UserID(), c.state.Workouts())
	switch {
	case errors.Is(err, ai.ErrNoWorkouts):
		return fitness.NewValidationError("Log some workouts in the last 30 days to get an analysis.")
	case errors.Is(err, ai.ErrRateLimited):
		return fitness.NewValidationError("Too many analysis requests, try again in a minute.")
	case err != nil:
		return &failure{message: "Could not get the analysis. Try again later.", err: err}
	}

	c.renderer.SetAnalysis(text)
	c.notifier.Notify("Analysis ready.", true)
	c.router.Navigate(ui.PageDashboard)
	return nil
}
