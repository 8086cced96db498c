// Package coordinator turns change events into serialized, debounced
// veracity recomputations. All work for one target lands on one lane, so
// two recomputations of the same target never interleave.
package coordinator

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/veracity-backend/internal/events"
	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

// Recomputer is the slice of the veracity service the coordinator drives.
type Recomputer interface {
	Recompute(ctx context.Context, ref types.TargetRef, reason types.ChangeReason, triggeredByKind string, triggeredByID *uuid.UUID) (*types.VeracityScore, error)
}

// TargetLister resolves which targets a source's evidence touches, for the
// credibility-change cascade.
type TargetLister interface {
	TargetsForSource(ctx context.Context, sourceID uuid.UUID) ([]types.TargetRef, error)
}

type TargetListerFunc func(ctx context.Context, sourceID uuid.UUID) ([]types.TargetRef, error)

func (f TargetListerFunc) TargetsForSource(ctx context.Context, sourceID uuid.UUID) ([]types.TargetRef, error) {
	return f(ctx, sourceID)
}

type Config struct {
	Workers      int
	Debounce     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	LaneBuffer   int
	// RequeueInterval is how often targets whose recomputation exhausted
	// its retries are fed back through the normal pipeline.
	RequeueInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Debounce <= 0 {
		c.Debounce = 150 * time.Millisecond
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	if c.LaneBuffer <= 0 {
		c.LaneBuffer = 64
	}
	if c.RequeueInterval <= 0 {
		c.RequeueInterval = time.Minute
	}
	return c
}

type task struct {
	ref             types.TargetRef
	reason          types.ChangeReason
	triggeredByKind string
	triggeredByID   *uuid.UUID
}

type Coordinator struct {
	log        *logger.Logger
	cfg        Config
	recomputer Recomputer
	targets    TargetLister
	bus        events.Bus

	cascades singleflight.Group

	mu          sync.Mutex
	pending     map[string]*task
	lanes       []chan task
	closed      bool
	deadLetters map[string]task
}

func New(baseLog *logger.Logger, cfg Config, recomputer Recomputer, targets TargetLister, bus events.Bus) *Coordinator {
	cfg = cfg.withDefaults()
	lanes := make([]chan task, cfg.Workers)
	for i := range lanes {
		lanes[i] = make(chan task, cfg.LaneBuffer)
	}
	return &Coordinator{
		log:         baseLog.With("component", "coordinator"),
		cfg:         cfg,
		recomputer:  recomputer,
		targets:     targets,
		bus:         bus,
		pending:     make(map[string]*task),
		lanes:       lanes,
		deadLetters: make(map[string]task),
	}
}

// Run starts the lane workers and the event forwarder and blocks until ctx
// is cancelled and all workers have drained.
func (c *Coordinator) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range c.lanes {
		lane := c.lanes[i]
		g.Go(func() error {
			c.runLane(gctx, lane)
			return nil
		})
	}
	if c.bus != nil {
		if err := c.bus.StartForwarder(gctx, c.Handle); err != nil {
			return err
		}
	}
	g.Go(func() error {
		ticker := time.NewTicker(c.cfg.RequeueInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				c.requeueDeadLetters()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		// Lanes are never closed; workers exit on ctx so a late flush
		// timer can still send without racing a close.
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		return nil
	})
	return g.Wait()
}

// Handle routes one change event. Safe to call from multiple goroutines.
func (c *Coordinator) Handle(ev events.ChangeEvent) {
	switch ev.Kind {
	case events.SourceCredibilityChanged:
		go c.cascadeSource(ev.SourceID)
	default:
		if err := ev.Target.Validate(); err != nil {
			c.log.Warn("Dropping event with invalid target", "kind", ev.Kind, "error", err)
			return
		}
		entityID := ev.EntityID
		c.mark(task{
			ref:             ev.Target,
			reason:          ev.Reason,
			triggeredByKind: triggerKind(ev.Kind),
			triggeredByID:   &entityID,
		})
	}
}

func triggerKind(kind events.Kind) string {
	switch kind {
	case events.EvidenceChanged:
		return "evidence"
	case events.ChallengeCreated, events.ChallengeResolved:
		return "challenge"
	case events.SourceCredibilityChanged:
		return "source"
	}
	return string(kind)
}

// cascadeSource fans a credibility change out to every target the source's
// evidence touches. Concurrent cascades for the same source collapse into
// one lookup.
func (c *Coordinator) cascadeSource(sourceID uuid.UUID) {
	refs, err, _ := c.cascades.Do(sourceID.String(), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return c.targets.TargetsForSource(ctx, sourceID)
	})
	if err != nil {
		c.log.Warn("Source cascade lookup failed", "source_id", sourceID, "error", err)
		return
	}
	id := sourceID
	for _, ref := range refs.([]types.TargetRef) {
		c.mark(task{
			ref:             ref,
			reason:          types.ReasonSourceCredibilityUpdated,
			triggeredByKind: "source",
			triggeredByID:   &id,
		})
	}
}

// mark records a dirty target. The first mark in a debounce window arms the
// flush timer; later marks just replace the pending trigger, so a burst of
// changes produces a single recomputation.
func (c *Coordinator) mark(t task) {
	key := t.ref.Key()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if existing, ok := c.pending[key]; ok {
		existing.reason = t.reason
		existing.triggeredByKind = t.triggeredByKind
		existing.triggeredByID = t.triggeredByID
		return
	}
	entry := t
	c.pending[key] = &entry
	time.AfterFunc(c.cfg.Debounce, func() { c.flush(key) })
}

func (c *Coordinator) flush(key string) {
	c.mu.Lock()
	entry, ok := c.pending[key]
	if ok {
		delete(c.pending, key)
	}
	closed := c.closed
	c.mu.Unlock()
	if !ok || closed {
		return
	}

	h := fnv.New32a()
	h.Write([]byte(key))
	lane := c.lanes[int(h.Sum32())%len(c.lanes)]
	select {
	case lane <- *entry:
	default:
		// Lane is saturated; re-arm instead of blocking the timer goroutine.
		c.mu.Lock()
		if !c.closed {
			c.pending[key] = entry
			time.AfterFunc(c.cfg.Debounce, func() { c.flush(key) })
		}
		c.mu.Unlock()
	}
}

func (c *Coordinator) runLane(ctx context.Context, lane chan task) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-lane:
			c.recomputeWithRetry(ctx, t)
		}
	}
}

func (c *Coordinator) recomputeWithRetry(ctx context.Context, t task) {
	backoff := c.cfg.RetryBackoff
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return
		}
		_, err := c.recomputer.Recompute(ctx, t.ref, t.reason, t.triggeredByKind, t.triggeredByID)
		if err == nil {
			c.mu.Lock()
			delete(c.deadLetters, t.ref.Key())
			c.mu.Unlock()
			return
		}
		lastErr = err
		if attempt < c.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	c.mu.Lock()
	c.deadLetters[t.ref.Key()] = t
	stuck := len(c.deadLetters)
	c.mu.Unlock()
	c.log.Error("Recomputation failed after retries",
		"target", t.ref.String(),
		"reason", t.reason,
		"attempts", c.cfg.MaxRetries,
		"stuck_targets", stuck,
		"error", lastErr,
	)
}

// DeadLetterCount reports how many targets are stuck after exhausting
// their recomputation retries.
func (c *Coordinator) DeadLetterCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deadLetters)
}

// requeueDeadLetters feeds every stuck target back through the normal
// mark/flush pipeline.
func (c *Coordinator) requeueDeadLetters() {
	c.mu.Lock()
	if len(c.deadLetters) == 0 {
		c.mu.Unlock()
		return
	}
	stuck := make([]task, 0, len(c.deadLetters))
	for _, t := range c.deadLetters {
		stuck = append(stuck, t)
	}
	c.mu.Unlock()

	c.log.Warn("Requeueing stuck recomputations", "count", len(stuck))
	for _, t := range stuck {
		c.mark(t)
	}
}
