package stats

import (
	"sort"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
)

// Record is the heaviest set ever logged for an exercise,
// together with the date of the workout it belongs to.
type Record struct {
	Exercise string    `json:"exercise"`
	Weight   float64   `json:"weight"`
	Reps     int       `json:"reps"`
	Date     time.Time `json:"date"`
}

// PersonalRecords returns one record per exercise name, sorted by weight, heaviest first.
// A set replaces the current record only if it is strictly heavier, so on equal
// weights the first one seen (in the given workouts order) wins.
func PersonalRecords(workouts []fitness.Workout) []Record {
	records, order := collectRecords(workouts)

	result := make([]Record, 0, len(order))
	for _, name := range order {
		result = append(result, records[name])
	}

	// stable, so records with equal weights keep the order they were found in
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})

	return result
}

// PersonalRecord returns the record for one exercise, or a zero record
// (weight 0, reps 0) if the exercise was never logged with a set.
func PersonalRecord(workouts []fitness.Workout, exerciseName string) Record {
	records, _ := collectRecords(workouts)
	if rec, ok := records[exerciseName]; ok {
		return rec
	}
	return Record{Exercise: exerciseName}
}

func collectRecords(workouts []fitness.Workout) (map[string]Record, []string) {
	records := make(map[string]Record)
	var order []string
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if ex.Name == "" {
				continue
			}
			for _, set := range ex.Sets {
				current, seen := records[ex.Name]
				if seen && set.Weight <= current.Weight {
					continue
				}
				if !seen {
					order = append(order, ex.Name)
				}
				records[ex.Name] = Record{
					Exercise: ex.Name,
					Weight:   set.Weight,
					Reps:     set.Reps,
					Date:     w.Date,
				}
			}
		}
	}
	return records, order
}
