package subscription

import (
	"context"
	"fmt"
	"sync"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/state"
	"github.com/2beens/gymtracker/internal/store"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

// Refresher re-renders whatever is on screen, if it depends on the collection.
type Refresher interface {
	Refresh(collection fitness.Collection)
}

type notifier interface {
	Notify(message string, success bool)
}

// Manager owns the live subscriptions of the signed in user, one per collection,
// and is the only writer of the collection slices of the state.
//
// Every sign in and sign out starts a new generation. Handlers remember the
// generation they were opened in and drop pushes from older ones, so a late
// snapshot of a previous user never lands in the current state.
type Manager struct {
	docStore       store.DocumentStore
	state          *state.State
	refresher      Refresher
	notifier       notifier
	metricsManager *metrics.Manager

	mutex        sync.Mutex
	generation   uint64
	unsubscribes []store.Unsubscribe
}

func NewManager(
	docStore store.DocumentStore,
	st *state.State,
	refresher Refresher,
	notifier notifier,
	metricsManager *metrics.Manager,
) *Manager {
	return &Manager{
		docStore:       docStore,
		state:          st,
		refresher:      refresher,
		notifier:       notifier,
		metricsManager: metricsManager,
	}
}

// SignIn closes the subscriptions of the previous session, if any, resets the
// state for userID and opens one subscription per collection. Collections that
// fail to subscribe are reported in the returned error, the others stay open.
func (m *Manager) SignIn(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "subscription.sign-in")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	m.mutex.Lock()
	m.generation++
	gen := m.generation
	previous := m.unsubscribes
	m.unsubscribes = nil
	m.state.Reset(userID)
	m.mutex.Unlock()

	// old listeners go away before new ones are opened
	m.closeAll(previous)
	m.metricsManager.CounterSignIns.Inc()

	for _, collection := range fitness.Collections {
		unsubscribe, subErr := m.docStore.Subscribe(ctx, collection.Path(userID), m.handler(gen, collection))
		if subErr != nil {
			m.metricsManager.CounterStoreErrors.WithLabelValues("subscribe").Inc()
			err = multierr.Append(err, fmt.Errorf("subscribe %s: %w", collection, subErr))
			continue
		}

		m.mutex.Lock()
		if m.generation != gen {
			// signed out, or in as someone else, while subscribing
			m.mutex.Unlock()
			unsubscribe()
			continue
		}
		m.unsubscribes = append(m.unsubscribes, unsubscribe)
		m.metricsManager.GaugeSubscriptions.Set(float64(len(m.unsubscribes)))
		m.mutex.Unlock()
	}

	log.Debugf("subscription manager: signed in [%s], generation %d", userID, gen)
	return err
}

// SignOut closes all subscriptions and clears the state.
func (m *Manager) SignOut() {
	m.mutex.Lock()
	m.generation++
	previous := m.unsubscribes
	m.unsubscribes = nil
	m.state.Reset("")
	m.metricsManager.GaugeSubscriptions.Set(0)
	m.mutex.Unlock()

	m.closeAll(previous)
	log.Debugln("subscription manager: signed out")
}

// Active returns the number of open subscriptions.
func (m *Manager) Active() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.unsubscribes)
}

func (m *Manager) closeAll(unsubscribes []store.Unsubscribe) {
	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
}

func (m *Manager) handler(gen uint64, collection fitness.Collection) store.SnapshotHandler {
	return func(docs []store.Document, err error) {
		if err != nil {
			if m.isCurrent(gen) {
				log.Errorf("subscription manager: %s subscription failed: %s", collection, err)
				m.metricsManager.CounterStoreErrors.WithLabelValues("snapshot").Inc()
				m.notifier.Notify(fmt.Sprintf("Lost connection to your %s.", collection), false)
			}
			return
		}

		// decode outside the lock, it only touches the pushed documents
		apply := m.decode(collection, docs)

		m.mutex.Lock()
		if gen != m.generation {
			m.mutex.Unlock()
			m.metricsManager.CounterStalePushes.Inc()
			log.Debugf("subscription manager: dropped stale %s push (generation %d)", collection, gen)
			return
		}
		apply()
		m.mutex.Unlock()

		m.metricsManager.CounterPushes.WithLabelValues(collection.String()).Inc()
		m.refresher.Refresh(collection)
	}
}

func (m *Manager) isCurrent(gen uint64) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return gen == m.generation
}

// decode maps the pushed documents to entities and returns the func that
// replaces the state slice with them. Malformed documents are skipped.
func (m *Manager) decode(collection fitness.Collection, docs []store.Document) func() {
	switch collection {
	case fitness.CollectionRoutines:
		routines := make([]fitness.Routine, 0, len(docs))
		for _, doc := range docs {
			r, err := fitness.DecodeRoutine(doc.ID, doc.Fields)
			if err != nil {
				m.skip(collection, err)
				continue
			}
			routines = append(routines, r)
		}
		return func() { m.state.ReplaceRoutines(routines) }
	case fitness.CollectionWorkouts:
		workouts := make([]fitness.Workout, 0, len(docs))
		for _, doc := range docs {
			w, err := fitness.DecodeWorkout(doc.ID, doc.Fields)
			if err != nil {
				m.skip(collection, err)
				continue
			}
			workouts = append(workouts, w)
		}
		return func() { m.state.ReplaceWorkouts(workouts) }
	case fitness.CollectionGoals:
		goals := make([]fitness.Goal, 0, len(docs))
		for _, doc := range docs {
			g, err := fitness.DecodeGoal(doc.ID, doc.Fields)
			if err != nil {
				m.skip(collection, err)
				continue
			}
			goals = append(goals, g)
		}
		return func() { m.state.ReplaceGoals(goals) }
	default:
		log.Errorf("subscription manager: unknown collection %s", collection)
		return func() {}
	}
}

func (m *Manager) skip(collection fitness.Collection, err error) {
	m.metricsManager.CounterMalformedDocs.WithLabelValues(collection.String()).Inc()
	log.Warnf("subscription manager: skip %s document: %s", collection, err)
}
