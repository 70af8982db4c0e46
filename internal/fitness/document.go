package fitness

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Documents coming from the store are loosely typed (map[string]any, numbers
// as int64, float64 or json.Number depending on the backend). Decoding maps
// them onto the typed entities, defaulting optional fields and rejecting
// documents whose required fields cannot be read.

func DecodeRoutine(id string, fields map[string]any) (Routine, error) {
	name, ok := fields["name"].(string)
	if !ok {
		return Routine{}, fmt.Errorf("routine %s: name: %w", id, ErrMalformedDoc)
	}

	routine := Routine{
		ID:        id,
		Name:      name,
		Exercises: []Exercise{},
	}
	for _, raw := range asList(fields["exercises"]) {
		ex, ok := decodeExercise(raw)
		if !ok {
			continue
		}
		routine.Exercises = append(routine.Exercises, ex)
	}

	return routine, nil
}

func DecodeWorkout(id string, fields map[string]any) (Workout, error) {
	date, ok := asTime(fields["date"])
	if !ok {
		return Workout{}, fmt.Errorf("workout %s: date: %w", id, ErrMalformedDoc)
	}

	routineName, _ := fields["routineName"].(string)
	workout := Workout{
		ID:          id,
		RoutineName: routineName,
		Date:        date,
		Exercises:   []WorkoutExercise{},
	}

	for _, raw := range asList(fields["exercises"]) {
		ex, ok := decodeExercise(raw)
		if !ok {
			continue
		}
		we := WorkoutExercise{Exercise: ex, Sets: []Set{}}
		exFields, _ := raw.(map[string]any)
		for _, rawSet := range asList(exFields["sets"]) {
			if set, ok := decodeSet(rawSet); ok {
				we.Sets = append(we.Sets, set)
			}
		}
		workout.Exercises = append(workout.Exercises, we)
	}

	if fb, ok := fields["feedback"].(map[string]any); ok {
		workout.Feedback = decodeFeedback(fb)
	}

	return workout, nil
}

func DecodeGoal(id string, fields map[string]any) (Goal, error) {
	exerciseName, ok := fields["exerciseName"].(string)
	if !ok || exerciseName == "" {
		return Goal{}, fmt.Errorf("goal %s: exerciseName: %w", id, ErrMalformedDoc)
	}
	targetWeight, ok := asFloat(fields["targetWeight"])
	if !ok {
		return Goal{}, fmt.Errorf("goal %s: targetWeight: %w", id, ErrMalformedDoc)
	}
	targetDate, ok := asTime(fields["targetDate"])
	if !ok {
		return Goal{}, fmt.Errorf("goal %s: targetDate: %w", id, ErrMalformedDoc)
	}

	startingWeight, _ := asFloat(fields["startingWeight"])
	currentWeight, _ := asFloat(fields["currentWeight"])

	return Goal{
		ID:             id,
		ExerciseName:   exerciseName,
		TargetWeight:   targetWeight,
		TargetDate:     targetDate,
		StartingWeight: startingWeight,
		CurrentWeight:  currentWeight,
	}, nil
}

// Fields returns the document fields of the routine, without the id.
func (r Routine) Fields() map[string]any {
	return map[string]any{
		"name":      r.Name,
		"exercises": ExercisesFields(r.Exercises),
	}
}

// ExercisesFields encodes the full exercises list, used for merge updates
// which always rewrite the whole array.
func ExercisesFields(exercises []Exercise) []any {
	list := make([]any, 0, len(exercises))
	for _, ex := range exercises {
		list = append(list, map[string]any{
			"name":   ex.Name,
			"muscle": ex.Muscle,
		})
	}
	return list
}

func (w Workout) Fields() map[string]any {
	exercises := make([]any, 0, len(w.Exercises))
	for _, ex := range w.Exercises {
		sets := make([]any, 0, len(ex.Sets))
		for _, s := range ex.Sets {
			sets = append(sets, map[string]any{
				"weight": s.Weight,
				"reps":   s.Reps,
			})
		}
		exercises = append(exercises, map[string]any{
			"name":   ex.Name,
			"muscle": ex.Muscle,
			"sets":   sets,
		})
	}

	feedback := map[string]any{}
	if !w.Feedback.IsEmpty() {
		feedback = map[string]any{
			"energy":     w.Feedback.Energy,
			"mood":       w.Feedback.Mood,
			"motivation": w.Feedback.Motivation,
			"notes":      w.Feedback.Notes,
		}
	}

	return map[string]any{
		"routineName": w.RoutineName,
		"date":        w.Date.UTC().Format(time.RFC3339Nano),
		"exercises":   exercises,
		"feedback":    feedback,
	}
}

func (g Goal) Fields() map[string]any {
	return map[string]any{
		"exerciseName":   g.ExerciseName,
		"targetWeight":   g.TargetWeight,
		"targetDate":     g.TargetDate.Format(DateLayout),
		"startingWeight": g.StartingWeight,
		"currentWeight":  g.CurrentWeight,
	}
}

func decodeExercise(raw any) (Exercise, bool) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return Exercise{}, false
	}
	name, ok := fields["name"].(string)
	if !ok || name == "" {
		return Exercise{}, false
	}
	muscle, _ := fields["muscle"].(string)
	if muscle == "" {
		muscle = DefaultMuscle
	}
	return Exercise{Name: name, Muscle: muscle}, true
}

func decodeSet(raw any) (Set, bool) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return Set{}, false
	}
	weight, ok := asFloat(fields["weight"])
	if !ok || weight < 0 {
		return Set{}, false
	}
	reps, ok := asFloat(fields["reps"])
	if !ok || reps < 1 || reps > math.MaxInt32 || reps != math.Trunc(reps) {
		return Set{}, false
	}
	return Set{Weight: weight, Reps: int(reps)}, true
}

// decodeFeedback accepts numeric strings too, older clients stored the raw form values.
func decodeFeedback(fields map[string]any) Feedback {
	energy, _ := asFloat(fields["energy"])
	mood, _ := asFloat(fields["mood"])
	motivation, _ := asFloat(fields["motivation"])
	notes, _ := fields["notes"].(string)
	return Feedback{
		Energy:     int(energy),
		Mood:       int(mood),
		Motivation: int(motivation),
		Notes:      notes,
	}
}

func asList(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case []map[string]any:
		list := make([]any, len(v))
		for i := range v {
			list[i] = v[i]
		}
		return list
	default:
		return nil
	}
}

func asFloat(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, DateLayout} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
