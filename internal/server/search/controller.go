// Package search drives the interactive, debounced file search: keystrokes
// arrive one at a time, only the most recent one is executed after a quiet
// period, and results from superseded queries are discarded.
//
// A Controller is stateful and session-scoped. The HTTP list endpoint stays
// stateless; a UI adapter (a websocket session, a terminal frontend) is
// expected to construct one Controller per connected principal and feed it
// keystrokes.
package search

import (
	"context"
	"sync"
	"time"

	"github.com/avoronov/storebox/internal/filex"
	"github.com/avoronov/storebox/internal/logging"
	"github.com/avoronov/storebox/internal/server/models"
	"github.com/avoronov/storebox/internal/server/repositories/files"
)

// State is the controller's observable phase.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateQuerying
	StateDisplaying
	StateError
)

const (
	defaultDebounceDelay  = 300 * time.Millisecond
	defaultMinQueryLength = 2
)

// Lister runs an access-scoped file listing. *services.FileService
// satisfies it.
type Lister interface {
	List(ctx context.Context, principal models.Principal, opts files.ListOptions) ([]*models.EnrichedFile, error)
}

// Route is the category-scoped view a selected result navigates to,
// pre-seeded with the search text that found it.
type Route struct {
	View  string
	Query string
}

// Config tunes the controller. Zero values fall back to the defaults
// (300ms debounce, 2-character minimum).
type Config struct {
	DebounceDelay  time.Duration
	MinQueryLength int
}

// Controller is a per-session search state machine. Every keystroke bumps a
// monotonic generation; timer firings and query completions carrying a
// stale generation are discarded, which makes the last keystroke always
// win regardless of completion order.
type Controller struct {
	lister    Lister
	principal models.Principal
	logger    logging.Logger

	delay     time.Duration
	minLength int

	// afterFunc is a seam so tests can fire timers deterministically.
	afterFunc func(d time.Duration, f func()) *time.Timer

	mu      sync.Mutex
	gen     uint64
	state   State
	pending string
	results []*models.EnrichedFile
	route   *Route
}

func NewController(lister Lister, principal models.Principal, logger logging.Logger, cfg Config) *Controller {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = defaultDebounceDelay
	}
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = defaultMinQueryLength
	}
	return &Controller{
		lister:    lister,
		principal: principal,
		logger:    logger.With("module", "search_controller"),
		delay:     cfg.DebounceDelay,
		minLength: cfg.MinQueryLength,
		afterFunc: time.AfterFunc,
	}
}

// Input registers a keystroke. It supersedes any pending debounce timer and
// any in-flight query. Text below the minimum length clears the display and
// the navigation state immediately, without querying.
func (c *Controller) Input(ctx context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.pending = text

	if len(text) < c.minLength {
		c.state = StateIdle
		c.results = nil
		c.route = nil
		return
	}

	c.state = StateDebouncing
	gen := c.gen
	c.afterFunc(c.delay, func() {
		c.debounceExpired(ctx, gen)
	})
}

// debounceExpired runs when a debounce timer fires. A timer whose
// generation has been superseded does nothing.
func (c *Controller) debounceExpired(ctx context.Context, gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = StateQuerying
	text := c.pending
	c.mu.Unlock()

	results, err := c.lister.List(ctx, c.principal, files.ListOptions{Search: text})
	c.queryCompleted(ctx, gen, results, err)
}

// queryCompleted applies a query result unless a newer keystroke has
// superseded it, so a slow response can never overwrite a fresher display.
func (c *Controller) queryCompleted(ctx context.Context, gen uint64, results []*models.EnrichedFile, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}

	if err != nil {
		// Degrades to an empty panel; the failure does not surface further.
		c.logger.Warn(ctx, "search query failed", "op", "search", "error", err)
		c.state = StateError
		c.results = nil
		return
	}

	c.state = StateDisplaying
	c.results = results
}

// Select picks a displayed result: the panel is cleared and the returned
// route points at the category view seeded with the current search text.
// Video and audio share the combined media view; other categories route to
// their pluralized name.
func (c *Controller) Select(file *models.EnrichedFile) Route {
	c.mu.Lock()
	defer c.mu.Unlock()

	query := c.pending
	c.results = nil
	c.state = StateIdle

	view := string(file.Type) + "s"
	if file.Type == filex.CategoryVideo || file.Type == filex.CategoryAudio {
		view = "media"
	}

	route := Route{View: view, Query: query}
	c.route = &route
	return route
}

// State returns the controller's current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Results returns the currently displayed sequence, nil when the panel is
// closed.
func (c *Controller) Results() []*models.EnrichedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// CurrentRoute returns the navigation state left by the last selection, nil
// when none (or after a sub-threshold input cleared it).
func (c *Controller) CurrentRoute() *Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.route
}
