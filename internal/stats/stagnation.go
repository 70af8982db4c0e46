package stats

import (
	"github.com/2beens/gymtracker/internal/fitness"
)

// stagnationWindow is how many of the latest appearances of an exercise are compared.
const stagnationWindow = 3

// Stagnation flags an exercise whose per-workout max weight did not increase
// over its last three appearances.
type Stagnation struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
}

// StagnationCheck looks at the last three workouts (by date) in which each exercise
// has at least one set. If their max weights are non-increasing, the exercise is
// reported as stagnant at the most recent max weight. Results follow the order in
// which exercise names first appear in the chronologically sorted workouts.
func StagnationCheck(workouts []fitness.Workout) []Stagnation {
	history := make(map[string][]float64)
	var names []string
	for _, w := range SortByDate(workouts, false) {
		counted := make(map[string]bool, len(w.Exercises))
		for _, entry := range w.Exercises {
			if entry.Name == "" || counted[entry.Name] {
				continue
			}
			counted[entry.Name] = true

			// a name listed twice in one workout counts once, by its first entry
			ex, _ := w.Exercise(entry.Name)
			maxWeight, ok := ex.MaxWeight()
			if !ok {
				continue
			}
			if _, seen := history[ex.Name]; !seen {
				names = append(names, ex.Name)
			}
			history[ex.Name] = append(history[ex.Name], maxWeight)
		}
	}

	var stagnant []Stagnation
	for _, name := range names {
		weights := history[name]
		if len(weights) < stagnationWindow {
			continue
		}
		last := weights[len(weights)-stagnationWindow:]
		if last[0] >= last[1] && last[1] >= last[2] {
			stagnant = append(stagnant, Stagnation{
				Exercise: name,
				Weight:   last[2],
			})
		}
	}

	return stagnant
}
