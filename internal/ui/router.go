package ui

import (
	"sync"
	"time"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/state"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// RenderFunc renders a page from a state snapshot. It must not mutate anything.
type RenderFunc func(v state.View) string

// Display receives every rendered page.
type Display interface {
	Show(page Page, content string)
}

// Router keeps track of the active page and re-renders it on navigation, on
// pushes the page depends on and on explicit redraws. Renders never overlap.
type Router struct {
	state          *state.State
	display        Display
	renderers      map[Page]RenderFunc
	metricsManager *metrics.Manager
	now            func() time.Time

	mutex  sync.Mutex
	active Page
}

func NewRouter(
	st *state.State,
	display Display,
	renderers map[Page]RenderFunc,
	metricsManager *metrics.Manager,
) *Router {
	return &Router{
		state:          st,
		display:        display,
		renderers:      renderers,
		metricsManager: metricsManager,
		now:            time.Now,
		active:         PageDashboard,
	}
}

// Navigate makes page the active page and renders it. Unknown pages are
// ignored and false is returned.
func (r *Router) Navigate(page Page) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.renderers[page]; !ok {
		log.Debugf("router: unknown page [%s]", page)
		return false
	}
	r.active = page
	r.renderLocked()
	return true
}

// Refresh re-renders the active page if it depends on the collection.
func (r *Router) Refresh(collection fitness.Collection) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.active.DependsOn(collection) {
		return
	}
	r.renderLocked()
}

// Redraw re-renders the active page unconditionally.
func (r *Router) Redraw() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.renderLocked()
}

func (r *Router) Active() Page {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.active
}

func (r *Router) renderLocked() {
	render, ok := r.renderers[r.active]
	if !ok {
		return
	}

	view := r.state.Snapshot()
	view.Now = r.now()
	content := render(view)

	r.metricsManager.CounterRenders.WithLabelValues(r.active.String()).Inc()
	r.display.Show(r.active, content)
}
