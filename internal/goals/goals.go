package goals

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/stats"
	"github.com/2beens/gymtracker/internal/store"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

// Updater keeps the current weight of goals in line with personal records.
type Updater struct {
	docStore       store.DocumentStore
	metricsManager *metrics.Manager
}

func NewUpdater(docStore store.DocumentStore, metricsManager *metrics.Manager) *Updater {
	return &Updater{
		docStore:       docStore,
		metricsManager: metricsManager,
	}
}

// Refresh computes the personal record of every goal's exercise and, where it
// differs from the stored current weight, merges the new current weight into
// the goal document. Writes run concurrently and independently: one failing
// write neither stops nor rolls back the others. All failures are returned
// together once every write has finished.
func (u *Updater) Refresh(
	ctx context.Context,
	userID string,
	goals []fitness.Goal,
	workouts []fitness.Workout,
) (updated int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.refresh")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("goals", len(goals)))

	var (
		wg    sync.WaitGroup
		mutex sync.Mutex
	)
	for _, goal := range goals {
		record := stats.PersonalRecord(workouts, goal.ExerciseName)
		if record.Weight == goal.CurrentWeight {
			continue
		}

		wg.Add(1)
		go func(goal fitness.Goal, weight float64) {
			defer wg.Done()

			docPath := fitness.CollectionGoals.DocPath(userID, goal.ID)
			writeErr := u.docStore.UpsertMerge(ctx, docPath, map[string]any{
				"currentWeight": weight,
			})

			mutex.Lock()
			defer mutex.Unlock()
			if writeErr != nil {
				u.metricsManager.CounterStoreErrors.WithLabelValues("goal_update").Inc()
				err = multierr.Append(err, fmt.Errorf("update goal %s: %w", goal.ID, writeErr))
				return
			}
			updated++
			u.metricsManager.CounterGoalUpdates.Inc()
			log.Debugf("goals: %s current weight %.1f -> %.1f", goal.ExerciseName, goal.CurrentWeight, weight)
		}(goal, record.Weight)
	}
	wg.Wait()

	return updated, err
}

// Input is the raw goal form.
type Input struct {
	ExerciseName string
	TargetWeight string
	TargetDate   string
}

// New validates the form and builds a goal whose starting and current weight
// are the exercise's personal record at creation time.
func New(in Input, workouts []fitness.Workout) (fitness.Goal, error) {
	logged := stats.ExerciseNames(workouts)
	if len(logged) == 0 {
		return fitness.Goal{}, fitness.NewValidationError("Log a workout before setting goals.")
	}

	name := strings.TrimSpace(in.ExerciseName)
	weightStr := strings.TrimSpace(in.TargetWeight)
	dateStr := strings.TrimSpace(in.TargetDate)
	if name == "" || weightStr == "" || dateStr == "" {
		return fitness.Goal{}, fitness.NewValidationError("Please fill in all fields.")
	}

	known := false
	for _, n := range logged {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		return fitness.Goal{}, fitness.NewValidationError("Choose an exercise you have already logged.")
	}

	targetWeight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil || targetWeight <= 0 {
		return fitness.Goal{}, fitness.NewValidationError("Target weight must be a positive number.")
	}
	targetDate, err := time.Parse(fitness.DateLayout, dateStr)
	if err != nil {
		return fitness.Goal{}, fitness.NewValidationError("Target date must look like 2006-01-02.")
	}

	record := stats.PersonalRecord(workouts, name)
	return fitness.Goal{
		ExerciseName:   name,
		TargetWeight:   targetWeight,
		TargetDate:     targetDate,
		StartingWeight: record.Weight,
		CurrentWeight:  record.Weight,
	}, nil
}
