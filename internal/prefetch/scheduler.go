// Package prefetch runs rate searches in the background while a user is still
// editing search parameters, so the results page can often skip its own fetch.
package prefetch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_bff/internal/domain"
	"hotel_bff/internal/search"
)

type Trigger int

const (
	// TriggerLocation is a destination pick, usually the user's last step.
	TriggerLocation Trigger = iota
	// TriggerEdit is a date or occupancy change.
	TriggerEdit
)

type State int

const (
	Idle State = iota
	Debouncing
	Pending
	Cached
)

func (s State) String() string {
	switch s {
	case Debouncing:
		return "debouncing"
	case Pending:
		return "pending"
	case Cached:
		return "cached"
	default:
		return "idle"
	}
}

type Fetcher interface {
	Fetch(ctx context.Context, p search.ResultsQueryParams) (*domain.RateSearchResult, error)
}

type Options struct {
	LocationDelay time.Duration
	EditDelay     time.Duration
}

var DefaultOptions = Options{LocationDelay: 500 * time.Millisecond, EditDelay: 1500 * time.Millisecond}

type entry struct {
	sig  string
	data *domain.RateSearchResult
}

// Scheduler owns one debounce timer and at most one in-flight request.
// Use one per search session and call Cancel when the session ends.
type Scheduler struct {
	fetch Fetcher
	opts  Options

	mu         sync.Mutex
	state      State
	current    search.ResultsQueryParams
	timer      *time.Timer
	timerGen   uint64
	reqGen     uint64
	lastIssued string
	abort      context.CancelFunc
	cached     *entry
}

func NewScheduler(f Fetcher, opts Options) *Scheduler {
	if opts.LocationDelay <= 0 {
		opts.LocationDelay = DefaultOptions.LocationDelay
	}
	if opts.EditDelay <= 0 {
		opts.EditDelay = DefaultOptions.EditDelay
	}
	return &Scheduler{fetch: f, opts: opts}
}

// Update records the latest params and restarts the debounce timer.
func (s *Scheduler) Update(p search.ResultsQueryParams, t Trigger) {
	delay := s.opts.EditDelay
	if t == TriggerLocation {
		delay = s.opts.LocationDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.state = Debouncing
	s.timer = time.AfterFunc(delay, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen {
		return // superseded by a later Update or Cancel
	}
	s.timer = nil

	sig := s.current.Signature()
	if sig == s.lastIssued {
		s.state = s.settled()
		return
	}

	if s.abort != nil {
		s.abort()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.abort = cancel
	s.reqGen++
	s.lastIssued = sig
	s.state = Pending
	go s.run(ctx, cancel, s.reqGen, s.current, sig)
}

func (s *Scheduler) run(ctx context.Context, cancel context.CancelFunc, gen uint64, p search.ResultsQueryParams, sig string) {
	defer cancel()
	data, err := s.fetch.Fetch(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.reqGen {
		return // aborted or replaced
	}
	s.abort = nil
	if err != nil {
		// allow the same params to be retried on the next fire
		s.lastIssued = ""
		if ctx.Err() == nil {
			log.Debug().Err(err).Msg("background search failed")
		}
	} else if s.current.Signature() == sig {
		s.cached = &entry{sig: sig, data: data}
	} else {
		log.Debug().Msg("background search result discarded: params moved on")
	}
	if s.state == Pending {
		s.state = s.settled()
	}
}

// settled is the resting state once nothing is queued. Caller holds mu.
func (s *Scheduler) settled() State {
	if s.abort != nil {
		return Pending
	}
	if s.cached != nil && s.cached.sig == s.current.Signature() {
		return Cached
	}
	return Idle
}

// Result returns the cached payload when p has exactly the cached signature.
// The payload is unfiltered; callers narrow it with p.Apply.
func (s *Scheduler) Result(p search.ResultsQueryParams) *domain.RateSearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil || s.cached.sig != p.Signature() {
		return nil
	}
	return s.cached.data
}

// Cancel stops the timer and aborts the in-flight request. The cache is kept.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	if s.abort != nil {
		s.abort()
		s.abort = nil
		s.reqGen++
		s.lastIssued = ""
	}
	s.state = Idle
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
