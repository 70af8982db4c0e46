package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// Server exposes /metrics and /health, so a scraper can follow a running client.
type Server struct {
	httpServer *http.Server
	manager    *Manager
}

func NewServer(host, port string, reg *prometheus.Registry, manager *Manager) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(host, port),
			Handler:           NewRouter(reg),
			ReadHeaderTimeout: 10 * time.Second,
		},
		manager: manager,
	}
}

func NewRouter(reg *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("metrics-router"))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

func (s *Server) Serve() {
	go func() {
		log.Debugf(" > metrics listening on: [%s]", s.httpServer.Addr)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server, listen and serve: %s", err)
		}
	}()
	s.manager.GaugeLifeSignal.Set(1)
}

func (s *Server) Shutdown(ctx context.Context) {
	s.manager.GaugeLifeSignal.Set(0)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
	}
	log.Debugln("metrics server shut down")
}
