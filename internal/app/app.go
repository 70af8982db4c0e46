package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/2beens/gymtracker/internal/ai"
	"github.com/2beens/gymtracker/internal/config"
	"github.com/2beens/gymtracker/internal/goals"
	"github.com/2beens/gymtracker/internal/identity"
	"github.com/2beens/gymtracker/internal/notice"
	"github.com/2beens/gymtracker/internal/session"
	"github.com/2beens/gymtracker/internal/state"
	"github.com/2beens/gymtracker/internal/store"
	"github.com/2beens/gymtracker/internal/store/fsstore"
	"github.com/2beens/gymtracker/internal/store/memstore"
	"github.com/2beens/gymtracker/internal/store/redisstore"
	"github.com/2beens/gymtracker/internal/subscription"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/internal/ui"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	noticeTTL   = 4 * time.Second
	serviceName = "gymtracker"
)

type Params struct {
	Config      *config.Config
	Secrets     *config.Secrets
	VersionInfo string
}

// App is the terminal client with everything it needs wired together.
type App struct {
	config        *config.Config
	screen        *ui.Screen
	commander     *Commander
	subscriptions *subscription.Manager
	docStore      store.DocumentStore
	redisClient   *redis.Client

	metricsServer  *metrics.Server
	otelShutdown   func()
	stopIdentities func()
}

// New builds the client. Any error here means the backend or identity could
// not be set up, and the client cannot run.
func New(ctx context.Context, params Params) (_ *App, err error) {
	cfg := params.Config
	a := &App{
		config: cfg,
		screen: ui.NewScreen(noticeTTL),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var promRegistry *prometheus.Registry
	if cfg.MetricsEnabled {
		promRegistry = metrics.SetupPrometheus()
	} else {
		promRegistry = prometheus.NewRegistry()
	}
	metricsManager := metrics.NewManager(serviceName, "client", promRegistry)
	if cfg.MetricsEnabled {
		a.metricsServer = metrics.NewServer(cfg.MetricsHost, cfg.MetricsPort, promRegistry, metricsManager)
	}

	if cfg.Backend != config.BackendMemory {
		a.redisClient, err = newRedisClient(ctx, cfg, params.Secrets.RedisPassword)
		if err != nil {
			return nil, err
		}
	}

	a.otelShutdown, err = tracing.HoneycombSetup(params.Secrets.HoneycombEnabled, serviceName, a.redisClient)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	a.docStore, err = newDocStore(ctx, cfg, params.Secrets, a.redisClient)
	if err != nil {
		return nil, err
	}

	var users identity.UserStore = identity.NewMemoryUserStore()
	if a.redisClient != nil {
		users = identity.NewRedisUserStore(a.redisClient)
	}
	identityProvider := identity.NewLocal(users, 0)

	st := state.New()
	noticeBoard := notice.NewBoard(noticeTTL)
	noticeBoard.OnNotice(a.screen.ShowNotice)

	renderer := ui.NewRenderer()
	router := ui.NewRouter(st, a.screen, renderer.Renderers(), metricsManager)
	a.subscriptions = subscription.NewManager(a.docStore, st, router, noticeBoard, metricsManager)
	goalUpdater := goals.NewUpdater(a.docStore, metricsManager)

	controller := session.NewController(session.Params{
		State:          st,
		DocStore:       a.docStore,
		Goals:          goalUpdater,
		Feedback:       newPromptFeedback(a.screen),
		Confirmer:      a.screen,
		Navigator:      router,
		Notifier:       noticeBoard,
		MetricsManager: metricsManager,
	})

	commanderParams := CommanderParams{
		State:          st,
		DocStore:       a.docStore,
		Identity:       identityProvider,
		Subscriptions:  a.subscriptions,
		Router:         router,
		Renderer:       renderer,
		Display:        a.screen,
		Session:        controller,
		Goals:          goalUpdater,
		Prompter:       a.screen,
		Notifier:       noticeBoard,
		MetricsManager: metricsManager,
	}
	if analyzer := newAnalyzer(ctx, cfg, params.Secrets, a.redisClient, metricsManager); analyzer != nil {
		commanderParams.Analyzer = analyzer
	}
	a.commander = NewCommander(commanderParams)
	a.stopIdentities = identityProvider.OnIdentityChange(a.commander.IdentityListener(ctx))

	log.Infof("gymtracker %s ready, backend [%s]", params.VersionInfo, cfg.Backend)
	return a, nil
}

// Run shows the sign in view and blocks until the user quits.
func (a *App) Run(ctx context.Context) error {
	if a.metricsServer != nil {
		a.metricsServer.Serve()
	}
	a.screen.ShowStatic(ui.AuthView())
	return a.screen.Run(ctx, a.commander)
}

// Close releases everything New acquired. It is safe on a partly built App.
func (a *App) Close() {
	if a.stopIdentities != nil {
		a.stopIdentities()
	}
	if a.subscriptions != nil {
		a.subscriptions.SignOut()
	}
	if a.docStore != nil {
		if err := a.docStore.Close(); err != nil {
			log.Errorf("close document store: %s", err)
		}
	}
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.metricsServer.Shutdown(ctx)
	}
	if a.otelShutdown != nil {
		a.otelShutdown()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	}
}

func newRedisClient(ctx context.Context, cfg *config.Config, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: password,
		DB:       0, // use default DB
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func newDocStore(ctx context.Context, cfg *config.Config, secrets *config.Secrets, rdb *redis.Client) (store.DocumentStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warnln("using the in-memory document store, nothing survives a restart")
		return memstore.New(), nil
	case config.BackendRedis:
		return redisstore.New(rdb), nil
	case config.BackendFirestore:
		client, err := fsstore.NewClient(ctx, cfg.FirestoreProjectID, secrets.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		return fsstore.New(client), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

// newAnalyzer returns nil when there is no API key, analysis is then off.
func newAnalyzer(
	ctx context.Context,
	cfg *config.Config,
	secrets *config.Secrets,
	rdb *redis.Client,
	metricsManager *metrics.Manager,
) *ai.Analyzer {
	if secrets.GeminiAPIKey == "" {
		log.Warnln("GEMINI_API_KEY not set, AI analysis disabled")
		return nil
	}
	generator, err := ai.NewGeminiGenerator(ctx, secrets.GeminiAPIKey, cfg.AIModel)
	if err != nil {
		log.Errorf("gemini generator: %s", err)
		return nil
	}

	params := ai.AnalyzerParams{
		Generator:          generator,
		CacheSizeMegabytes: cfg.AICacheSizeMB,
		RequestsPerMinute:  cfg.AIRequestsPerMinute,
		MetricsManager:     metricsManager,
	}
	if rdb != nil {
		params.RateLimiter = redis_rate.NewLimiter(rdb)
	}
	return ai.NewAnalyzer(params)
}
