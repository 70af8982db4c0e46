package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterPushes        *prometheus.CounterVec
	CounterStalePushes   prometheus.Counter
	CounterMalformedDocs *prometheus.CounterVec
	CounterRenders       *prometheus.CounterVec
	CounterStoreErrors   *prometheus.CounterVec
	CounterGoalUpdates   prometheus.Counter
	CounterWorkouts      *prometheus.CounterVec
	CounterAIRequests    *prometheus.CounterVec
	CounterSignIns       prometheus.Counter

	// gauges
	GaugeSubscriptions prometheus.Gauge
	GaugeLifeSignal    prometheus.Gauge

	// histograms
	HistAIRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("gymtracker", "test_client", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gymtracker", "test_client", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterPushes := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "snapshot_pushes",
		Help:      "The total number of collection snapshots applied to the state",
	}, []string{"collection"})
	counterStalePushes := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "stale_snapshot_pushes",
		Help:      "The total number of snapshots dropped because they belonged to an old session",
	})
	counterMalformedDocs := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "malformed_documents",
		Help:      "The total number of documents skipped because they could not be decoded",
	}, []string{"collection"})
	counterRenders := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "renders",
		Help:      "The total number of page renders",
	}, []string{"page"})
	counterStoreErrors := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_errors",
		Help:      "The total number of failed document store operations",
	}, []string{"op"})
	counterGoalUpdates := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "goal_updates",
		Help:      "The total number of goal current weight updates issued",
	})
	counterWorkouts := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workout_sessions",
		Help:      "The total number of workout sessions, by outcome",
	}, []string{"outcome"})
	counterAIRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ai_requests",
		Help:      "The total number of AI analysis requests, by outcome",
	}, []string{"outcome"})
	counterSignIns := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sign_ins",
		Help:      "The total number of sessions started",
	})

	gaugeSubscriptions := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_subscriptions",
		Help:      "Current number of open collection subscriptions",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the client is alive",
	})

	histAIRequestDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ai_request_duration_seconds",
		Help:      "Histogram of AI text generation latency in seconds",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40},
	})

	return &Manager{
		CounterPushes:         counterPushes,
		CounterStalePushes:    counterStalePushes,
		CounterMalformedDocs:  counterMalformedDocs,
		CounterRenders:        counterRenders,
		CounterStoreErrors:    counterStoreErrors,
		CounterGoalUpdates:    counterGoalUpdates,
		CounterWorkouts:       counterWorkouts,
		CounterAIRequests:     counterAIRequests,
		CounterSignIns:        counterSignIns,
		GaugeSubscriptions:    gaugeSubscriptions,
		GaugeLifeSignal:       gaugeLifeSignal,
		HistAIRequestDuration: histAIRequestDuration,
	}
}
