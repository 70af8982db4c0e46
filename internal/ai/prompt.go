package ai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/stats"
)

const SystemPrompt = "You are an experienced strength coach. You get a summary of a lifter's " +
	"workouts from the last 30 days. Point out progress, stagnation and imbalances between " +
	"muscle groups, and suggest concrete changes for the next weeks. Be encouraging and " +
	"keep the answer under 250 words."

// BuildPrompt summarises the workouts, oldest first, one block per workout.
func BuildPrompt(workouts []fitness.Workout) string {
	var b strings.Builder
	b.WriteString("My workouts from the last 30 days:\n")
	for _, w := range stats.SortByDate(workouts, false) {
		fmt.Fprintf(&b, "\n%s - %s (volume %.0f kg)\n", w.Date.Format(fitness.DateLayout), w.RoutineName, stats.WorkoutVolume(w))
		for _, ex := range w.Exercises {
			if len(ex.Sets) == 0 {
				continue
			}
			sets := make([]string, 0, len(ex.Sets))
			for _, s := range ex.Sets {
				sets = append(sets, strconv.FormatFloat(s.Weight, 'f', -1, 64)+"x"+strconv.Itoa(s.Reps))
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", ex.Name, ex.Muscle, strings.Join(sets, ", "))
		}
		if !w.Feedback.IsEmpty() {
			fmt.Fprintf(&b, "  feedback: energy %d/5, mood %d/5, motivation %d/5", w.Feedback.Energy, w.Feedback.Mood, w.Feedback.Motivation)
			if w.Feedback.Notes != "" {
				fmt.Fprintf(&b, ", notes: %s", w.Feedback.Notes)
			}
			b.WriteString("\n")
		}
	}

	if stagnant := stats.StagnationCheck(workouts); len(stagnant) > 0 {
		b.WriteString("\nExercises that have not progressed in the last 3 sessions:\n")
		for _, s := range stagnant {
			fmt.Fprintf(&b, "- %s at %s kg\n", s.Exercise, strconv.FormatFloat(s.Weight, 'f', -1, 64))
		}
	}
	return b.String()
}
