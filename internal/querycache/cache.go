package querycache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime    = 30 * time.Second
	DefaultGCTime       = 5 * time.Minute
	DefaultFetchTimeout = 30 * time.Second
)

var ErrClosed = errors.New("query cache closed")

// Fetcher performs the read for one key. It runs on the cache's own
// context, bounded by FetchTimeout, not on the caller's.
type Fetcher func(ctx context.Context) (any, error)

type Listener func(Snapshot)

type Options struct {
	// StaleTime is how long a successful result counts as fresh. Negative
	// means results are stale as soon as they land.
	StaleTime time.Duration
	// GCTime is how long an entry with no subscribers is kept. Negative
	// disables collection.
	GCTime       time.Duration
	FetchTimeout time.Duration
	Registerer   prometheus.Registerer
	Logger       *slog.Logger
}

type subscription struct {
	fn     Listener
	active atomic.Bool
}

type entry struct {
	key       Key
	data      any
	hasData   bool
	status    Status
	err       error
	fetchedAt time.Time

	// gen changes on creation and on every invalidation. A result is only
	// applied if it was fetched for the entry's current gen.
	gen         uint64
	fetchGen    uint64
	invalidated bool
	fetcher     Fetcher

	subs    map[uint64]*subscription
	gcTimer *time.Timer
}

type delivery struct {
	sub  *subscription
	snap Snapshot
}

// Cache is a keyed read-through cache with in-flight request sharing,
// explicit invalidation and last-invalidation-wins result ordering.
type Cache struct {
	staleTime    time.Duration
	gcTime       time.Duration
	fetchTimeout time.Duration
	logger       *slog.Logger
	metrics      *cacheMetrics
	now          func() time.Time
	afterFetch   func(Key)

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu      sync.Mutex
	entries map[Key]*entry
	gen     uint64
	nextSub uint64
	closed  bool

	qmu   sync.Mutex
	queue []delivery
	wake  chan struct{}
	done  chan struct{}
}

func New(opts Options) *Cache {
	if opts.StaleTime == 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.GCTime == 0 {
		opts.GCTime = DefaultGCTime
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		staleTime:    opts.StaleTime,
		gcTime:       opts.GCTime,
		fetchTimeout: opts.FetchTimeout,
		logger:       opts.Logger,
		metrics:      newCacheMetrics(opts.Registerer),
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		entries:      make(map[Key]*entry),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	go c.dispatch()
	return c
}

// Query returns the current snapshot for key without blocking. When the
// entry is not fresh and no fetch for its current generation is running,
// one is started with fetcher.
func (c *Cache) Query(key Key, fetcher Fetcher) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	if fetcher != nil {
		e.fetcher = fetcher
	}
	if c.freshLocked(e) {
		c.metrics.hits.Inc()
		return c.snapshotLocked(e)
	}
	c.metrics.misses.Inc()
	if !c.closed && e.fetchGen != e.gen && e.fetcher != nil {
		c.startFetchLocked(e)
	}
	return c.snapshotLocked(e)
}

// Fetch blocks until key holds a result for its current generation and
// returns it. Concurrent callers share one in-flight request. If the key is
// invalidated while the request is running, the result is dropped and the
// read is repeated.
func (c *Cache) Fetch(ctx context.Context, key Key, fetcher Fetcher) (any, error) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrClosed
		}
		e := c.entryLocked(key)
		if fetcher != nil {
			e.fetcher = fetcher
		}
		if c.freshLocked(e) {
			data := e.data
			c.metrics.hits.Inc()
			c.mu.Unlock()
			return data, nil
		}
		c.metrics.misses.Inc()
		gen := e.gen
		ch := c.startFetchLocked(e)
		c.mu.Unlock()

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		c.mu.Lock()
		current, ok := c.entries[key]
		superseded := ok && current == e && current.gen != gen
		c.mu.Unlock()
		if !superseded {
			return res.Val, res.Err
		}
	}
}

// Get returns the snapshot for key, if the cache holds an entry for it.
func (c *Cache) Get(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	return c.snapshotLocked(e), true
}

// Subscribe registers listener for every change to key. Listeners run on
// the cache's dispatch goroutine in the order the changes happened. After
// unsubscribe, no change that happens later is delivered.
func (c *Cache) Subscribe(key Key, listener Listener) (unsubscribe func()) {
	sub := &subscription{fn: listener}
	sub.active.Store(true)

	c.mu.Lock()
	e := c.entryLocked(key)
	c.nextSub++
	id := c.nextSub
	e.subs[id] = sub
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			c.mu.Lock()
			defer c.mu.Unlock()
			if current, ok := c.entries[key]; ok && current == e {
				delete(e.subs, id)
				if len(e.subs) == 0 {
					c.scheduleGCLocked(e)
				}
			}
		})
	}
}

// Watch subscribes listener to key and issues a Query for it.
func (c *Cache) Watch(key Key, fetcher Fetcher, listener Listener) (Snapshot, func()) {
	unsubscribe := c.Subscribe(key, listener)
	return c.Query(key, fetcher), unsubscribe
}

// Invalidate marks keys stale. Keys built with AllOf match every key of
// their resource. Entries that still have subscribers are refetched at
// once; the rest are refetched on their next read.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if !matchesAny(keys, e.key) {
			continue
		}
		c.gen++
		e.gen = c.gen
		e.invalidated = true
		c.metrics.invalidations.Inc()
		if !c.closed && len(e.subs) > 0 && e.fetcher != nil {
			c.startFetchLocked(e)
		}
		c.notifyLocked(e)
	}
}

func (c *Cache) InvalidateResource(resource string) {
	c.Invalidate(AllOf(resource))
}

// Mutate runs fn and, only if it succeeds, invalidates affected.
func (c *Cache) Mutate(ctx context.Context, fn func(ctx context.Context) error, affected ...Key) error {
	if err := fn(ctx); err != nil {
		return err
	}
	c.Invalidate(affected...)
	return nil
}

// Clear drops every entry and detaches every subscriber. Results of fetches
// still in flight are discarded.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		for _, sub := range e.subs {
			sub.active.Store(false)
		}
		if e.gcTimer != nil {
			e.gcTimer.Stop()
		}
		delete(c.entries, key)
	}
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close cancels in-flight fetches and stops notification delivery.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, e := range c.entries {
		if e.gcTimer != nil {
			e.gcTimer.Stop()
		}
	}
	c.mu.Unlock()
	c.cancel()
	<-c.done
}

func (c *Cache) entryLocked(key Key) *entry {
	if e, ok := c.entries[key]; ok {
		return e
	}
	c.gen++
	e := &entry{key: key, gen: c.gen, subs: make(map[uint64]*subscription)}
	c.entries[key] = e
	c.scheduleGCLocked(e)
	return e
}

func (c *Cache) freshLocked(e *entry) bool {
	if e.status != StatusSuccess || e.invalidated {
		return false
	}
	if c.staleTime < 0 {
		return false
	}
	return c.now().Sub(e.fetchedAt) < c.staleTime
}

func (c *Cache) snapshotLocked(e *entry) Snapshot {
	return Snapshot{
		Key:       e.key,
		Data:      e.data,
		HasData:   e.hasData,
		Status:    e.status,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
		Stale:     !c.freshLocked(e),
		Fetching:  e.fetchGen != 0 && e.fetchGen == e.gen,
	}
}

// startFetchLocked starts, or joins, the fetch for e's current generation.
func (c *Cache) startFetchLocked(e *entry) <-chan singleflight.Result {
	key, gen, fetcher := e.key, e.gen, e.fetcher
	if fetcher == nil {
		ch := make(chan singleflight.Result, 1)
		ch <- singleflight.Result{Err: fmt.Errorf("query %s: no fetcher", key)}
		return ch
	}
	if e.fetchGen != gen {
		e.fetchGen = gen
		if e.status == StatusIdle {
			e.status = StatusLoading
		}
		c.metrics.fetches.Inc()
		c.notifyLocked(e)
	}

	// DoChan runs fn on its own goroutine, so holding c.mu here is safe.
	return c.group.DoChan(flightKey(key, gen), func() (any, error) {
		ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
		defer cancel()
		v, err := fetcher(ctx)
		c.apply(key, gen, v, err)
		if c.afterFetch != nil {
			c.afterFetch(key)
		}
		return v, err
	})
}

func flightKey(key Key, gen uint64) string {
	return key.String() + "@" + strconv.FormatUint(gen, 10)
}

func (c *Cache) apply(key Key, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The call stays registered until fn returns. Forget it now so a read
	// arriving in between starts a new fetch instead of joining one whose
	// result was already applied.
	c.group.Forget(flightKey(key, gen))

	e, ok := c.entries[key]
	if !ok || e.gen != gen {
		c.metrics.discarded.Inc()
		c.logger.Debug("query result discarded", "key", key.String(), "gen", gen)
		if ok && e.fetchGen == gen {
			e.fetchGen = 0
			if !c.closed && len(e.subs) > 0 && e.fetcher != nil {
				c.startFetchLocked(e)
			}
		}
		return
	}

	e.fetchGen = 0
	if err != nil {
		c.metrics.errors.Inc()
		c.logger.Warn("query fetch failed", "key", key.String(), "err", err)
		e.status = StatusError
		e.err = err
	} else {
		e.data = v
		e.hasData = true
		e.status = StatusSuccess
		e.err = nil
		e.fetchedAt = c.now()
		e.invalidated = false
	}
	c.notifyLocked(e)
	if len(e.subs) == 0 {
		c.scheduleGCLocked(e)
	}
}

func (c *Cache) scheduleGCLocked(e *entry) {
	if c.gcTime < 0 || c.closed {
		return
	}
	if e.gcTimer != nil {
		e.gcTimer.Stop()
	}
	e.gcTimer = time.AfterFunc(c.gcTime, func() { c.collect(e) })
}

func (c *Cache) collect(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.entries[e.key]
	if !ok || current != e || len(e.subs) > 0 {
		return
	}
	if e.fetchGen != 0 {
		c.scheduleGCLocked(e)
		return
	}
	delete(c.entries, e.key)
}

func (c *Cache) notifyLocked(e *entry) {
	if len(e.subs) == 0 {
		return
	}
	snap := c.snapshotLocked(e)
	c.qmu.Lock()
	for _, sub := range e.subs {
		c.queue = append(c.queue, delivery{sub: sub, snap: snap})
	}
	c.qmu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Cache) dispatch() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
		}
		for {
			c.qmu.Lock()
			batch := c.queue
			c.queue = nil
			c.qmu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, d := range batch {
				if d.sub.active.Load() {
					d.sub.fn(d.snap)
				}
			}
		}
	}
}

func matchesAny(keys []Key, key Key) bool {
	for _, k := range keys {
		if k.matches(key) {
			return true
		}
	}
	return false
}
