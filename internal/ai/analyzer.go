package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/stats"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoWorkouts  = errors.New("no workouts in the last 30 days")
	ErrRateLimited = errors.New("too many analysis requests")
)

const (
	analysisWindow      = 30 * 24 * time.Hour
	analysisCacheExpire = 6 * 60 * 60 // seconds
	rateLimitKeyPrefix  = "gymtracker||ai||"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

type AnalyzerParams struct {
	Generator          Generator
	CacheSizeMegabytes int
	// RateLimiter is optional, requests are not limited without one.
	RateLimiter       RequestRateLimiter
	RequestsPerMinute int
	MetricsManager    *metrics.Manager
}

// Analyzer turns the last 30 days of workouts into a progress analysis.
// Answers are cached by prompt, so asking again without new workouts does
// not call the generator.
type Analyzer struct {
	generator         Generator
	cache             *freecache.Cache
	rateLimiter       RequestRateLimiter
	requestsPerMinute int
	metricsManager    *metrics.Manager
	now               func() time.Time
}

func NewAnalyzer(params AnalyzerParams) *Analyzer {
	megabyte := 1024 * 1024
	return &Analyzer{
		generator:         params.Generator,
		cache:             freecache.NewCache(params.CacheSizeMegabytes * megabyte),
		rateLimiter:       params.RateLimiter,
		requestsPerMinute: params.RequestsPerMinute,
		metricsManager:    params.MetricsManager,
		now:               time.Now,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, userID string, workouts []fitness.Workout) (string, error) {
	recent := stats.WorkoutsSince(workouts, a.now().Add(-analysisWindow))
	if len(recent) == 0 {
		a.metricsManager.CounterAIRequests.WithLabelValues("no_workouts").Inc()
		return "", ErrNoWorkouts
	}

	userPrompt := BuildPrompt(recent)
	cacheKey := promptKey(userID, userPrompt)
	if cached, err := a.cache.Get(cacheKey); err == nil {
		log.Debugf("ai: analysis for [%s] found in cache", userID)
		a.metricsManager.CounterAIRequests.WithLabelValues("cached").Inc()
		return string(cached), nil
	}

	if a.rateLimiter != nil {
		res, err := a.rateLimiter.Allow(ctx, rateLimitKeyPrefix+userID, redis_rate.PerMinute(a.requestsPerMinute))
		if err != nil {
			a.metricsManager.CounterAIRequests.WithLabelValues("error").Inc()
			return "", fmt.Errorf("rate limit: %w", err)
		}
		if res.Allowed == 0 {
			a.metricsManager.CounterAIRequests.WithLabelValues("limited").Inc()
			log.Warnf("ai: [%s] rate limited, retry after %s", userID, res.RetryAfter)
			return "", ErrRateLimited
		}
	}

	start := time.Now()
	text, err := a.generator.Generate(ctx, SystemPrompt, userPrompt)
	a.metricsManager.HistAIRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		a.metricsManager.CounterAIRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("generate analysis: %w", err)
	}
	a.metricsManager.CounterAIRequests.WithLabelValues("ok").Inc()

	if err := a.cache.Set(cacheKey, []byte(text), analysisCacheExpire); err != nil {
		log.Errorf("ai: cache analysis for [%s]: %s", userID, err)
	}
	return text, nil
}

func promptKey(userID, prompt string) []byte {
	sum := sha256.Sum256([]byte(userID + "\n" + prompt))
	return []byte(hex.EncodeToString(sum[:]))
}
