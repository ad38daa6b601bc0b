package completion

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/logger"
)

// DefaultDebounce is the quiet period before a property's options are fetched.
const DefaultDebounce = 300 * time.Millisecond

// Loader fetches provider-backed options into an OptionsCache. Loads are
// debounced per property, and at most one fetch per property is in flight:
// a fetch that fires while another is pending joins it instead of starting.
type Loader struct {
	cache    *OptionsCache
	debounce time.Duration
	notify   func(property string)

	flight singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timers  map[string]*schedule
	pending int
	closed  bool
}

type schedule struct {
	timer *time.Timer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d >= 0 {
			l.debounce = d
		}
	}
}

// WithNotify registers a callback run whenever a property's loading state or
// cached options change. It is called from a loader goroutine.
func WithNotify(fn func(property string)) LoaderOption {
	return func(l *Loader) { l.notify = fn }
}

// NewLoader creates a loader writing into cache. Fetches receive a context
// derived from ctx, which is cancelled by Close.
func NewLoader(ctx context.Context, cache *OptionsCache, opts ...LoaderOption) *Loader {
	if cache == nil {
		cache = NewOptionsCache()
	}
	l := &Loader{
		cache:    cache,
		debounce: DefaultDebounce,
		timers:   make(map[string]*schedule),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	return l
}

// Cache returns the cache the loader writes into.
func (l *Loader) Cache() *OptionsCache { return l.cache }

// Load schedules a fetch of prop's options for search. A cached search is
// ignored; a pending schedule for the same property is replaced.
func (l *Loader) Load(prop filter.Property, search string) {
	if !prop.IsFetched() {
		return
	}
	if _, ok := l.cache.Get(prop.Name, search); ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if prev, ok := l.timers[prop.Name]; ok && prev.timer.Stop() {
		l.pending--
	}
	l.pending++
	s := &schedule{}
	s.timer = time.AfterFunc(l.debounce, func() {
		l.fetch(prop, search)
		l.done(prop.Name, s)
	})
	l.timers[prop.Name] = s
}

func (l *Loader) done(property string, s *schedule) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending--
	if l.timers[property] == s {
		delete(l.timers, property)
	}
}

// Idle reports whether no fetch is scheduled or running.
func (l *Loader) Idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending == 0
}

func (l *Loader) fetch(prop filter.Property, search string) {
	if l.ctx.Err() != nil {
		return
	}
	lgr := logger.FromContext(l.ctx).WithValues("property", prop.Name, "search", search)

	_, err, shared := l.flight.Do(prop.Name, func() (any, error) {
		l.cache.setLoading(prop.Name, true)
		l.changed(prop.Name)
		defer l.cache.setLoading(prop.Name, false)

		lgr.V(1).Info("fetching options")
		opts, err := l.call(prop, search)
		if err != nil {
			l.cache.Fail(prop.Name, err)
			return nil, err
		}
		l.cache.Put(prop.Name, search, opts)
		return opts, nil
	})
	if shared {
		lgr.V(1).Info("joined in-flight options fetch")
	}
	if err != nil {
		lgr.Error(err, "options fetch failed")
	}
	l.changed(prop.Name)
}

func (l *Loader) call(prop filter.Property, search string) ([]filter.Option, error) {
	switch fn := prop.Options.(type) {
	case filter.AsyncOptions:
		return fn(l.ctx, search)
	case filter.SyncOptions:
		return fn(search), nil
	}
	return nil, nil
}

func (l *Loader) changed(property string) {
	if l.notify != nil {
		l.notify(property)
	}
}

// Close stops pending schedules and cancels in-flight fetches.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for name, s := range l.timers {
		if s.timer.Stop() {
			l.pending--
		}
		delete(l.timers, name)
	}
	l.cancel()
}
