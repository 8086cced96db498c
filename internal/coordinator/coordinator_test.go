package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/events"
	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

type stubRecomputer struct {
	mu      sync.Mutex
	calls   []types.TargetRef
	reasons []types.ChangeReason
	failN   int
	active  map[string]bool
	overlap bool
	done    chan struct{}
}

func newStubRecomputer(expect int) *stubRecomputer {
	return &stubRecomputer{
		active: make(map[string]bool),
		done:   make(chan struct{}, expect),
	}
}

func (s *stubRecomputer) Recompute(ctx context.Context, ref types.TargetRef, reason types.ChangeReason, kind string, id *uuid.UUID) (*types.VeracityScore, error) {
	s.mu.Lock()
	if s.active[ref.Key()] {
		s.overlap = true
	}
	s.active[ref.Key()] = true
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.active[ref.Key()] = false
	if s.failN > 0 {
		s.failN--
		s.mu.Unlock()
		return nil, errors.New("transient")
	}
	s.calls = append(s.calls, ref)
	s.reasons = append(s.reasons, reason)
	s.mu.Unlock()

	select {
	case s.done <- struct{}{}:
	default:
	}
	return &types.VeracityScore{TargetKind: ref.Kind, TargetID: ref.ID}, nil
}

func (s *stubRecomputer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-deadline:
			t.Fatalf("timed out waiting for %d recomputations, got %d", n, i)
		}
	}
}

func startCoordinator(t *testing.T, c *Coordinator) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()
	return cancel
}

func TestHandleDebouncesBurstsPerTarget(t *testing.T) {
	rec := newStubRecomputer(1)
	c := New(logger.NewNop(), Config{Debounce: 50 * time.Millisecond}, rec, nil, nil)
	cancel := startCoordinator(t, c)
	defer cancel()

	ref := types.NodeRef(uuid.New())
	for i := 0; i < 10; i++ {
		c.Handle(events.ChangeEvent{
			Kind:     events.EvidenceChanged,
			Target:   ref,
			EntityID: uuid.New(),
			Reason:   types.ReasonNewEvidence,
		})
	}

	waitFor(t, rec.done, 1)
	time.Sleep(100 * time.Millisecond)
	if got := rec.callCount(); got != 1 {
		t.Fatalf("expected burst to collapse to 1 recomputation, got %d", got)
	}
}

func TestHandleKeepsLatestReasonInWindow(t *testing.T) {
	rec := newStubRecomputer(1)
	c := New(logger.NewNop(), Config{Debounce: 50 * time.Millisecond}, rec, nil, nil)
	cancel := startCoordinator(t, c)
	defer cancel()

	ref := types.NodeRef(uuid.New())
	c.Handle(events.ChangeEvent{Kind: events.EvidenceChanged, Target: ref, Reason: types.ReasonNewEvidence})
	c.Handle(events.ChangeEvent{Kind: events.ChallengeResolved, Target: ref, Reason: types.ReasonChallengeResolved})

	waitFor(t, rec.done, 1)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.reasons) != 1 || rec.reasons[0] != types.ReasonChallengeResolved {
		t.Fatalf("expected latest reason to win, got %v", rec.reasons)
	}
}

func TestSameTargetNeverRecomputesConcurrently(t *testing.T) {
	rec := newStubRecomputer(5)
	c := New(logger.NewNop(), Config{Workers: 8, Debounce: 5 * time.Millisecond}, rec, nil, nil)
	cancel := startCoordinator(t, c)
	defer cancel()

	ref := types.NodeRef(uuid.New())
	for i := 0; i < 5; i++ {
		c.Handle(events.ChangeEvent{Kind: events.EvidenceChanged, Target: ref, Reason: types.ReasonNewEvidence})
		waitFor(t, rec.done, 1)
	}

	rec.mu.Lock()
	overlap := rec.overlap
	rec.mu.Unlock()
	if overlap {
		t.Fatal("observed overlapping recomputations for the same target")
	}
}

func TestDistinctTargetsRunIndependently(t *testing.T) {
	rec := newStubRecomputer(3)
	c := New(logger.NewNop(), Config{Workers: 4, Debounce: 5 * time.Millisecond}, rec, nil, nil)
	cancel := startCoordinator(t, c)
	defer cancel()

	for i := 0; i < 3; i++ {
		c.Handle(events.ChangeEvent{Kind: events.EvidenceChanged, Target: types.NodeRef(uuid.New()), Reason: types.ReasonNewEvidence})
	}
	waitFor(t, rec.done, 3)
	if got := rec.callCount(); got != 3 {
		t.Fatalf("expected 3 recomputations, got %d", got)
	}
}

func TestRetriesTransientFailures(t *testing.T) {
	rec := newStubRecomputer(1)
	rec.failN = 2
	c := New(logger.NewNop(), Config{Debounce: 5 * time.Millisecond, RetryBackoff: time.Millisecond}, rec, nil, nil)
	cancel := startCoordinator(t, c)
	defer cancel()

	c.Handle(events.ChangeEvent{Kind: events.EvidenceChanged, Target: types.NodeRef(uuid.New()), Reason: types.ReasonNewEvidence})
	waitFor(t, rec.done, 1)
	if got := rec.callCount(); got != 1 {
		t.Fatalf("expected a success after retries, got %d successes", got)
	}
}

func TestSourceCascadeMarksEveryTarget(t *testing.T) {
	rec := newStubRecomputer(2)
	refs := []types.TargetRef{types.NodeRef(uuid.New()), types.EdgeRef(uuid.New())}
	lister := TargetListerFunc(func(ctx context.Context, sourceID uuid.UUID) ([]types.TargetRef, error) {
		return refs, nil
	})
	c := New(logger.NewNop(), Config{Debounce: 5 * time.Millisecond}, rec, lister, nil)
	cancel := startCoordinator(t, c)
	defer cancel()

	c.Handle(events.ChangeEvent{
		Kind:     events.SourceCredibilityChanged,
		SourceID: uuid.New(),
		Reason:   types.ReasonSourceCredibilityUpdated,
	})

	waitFor(t, rec.done, 2)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	seen := make(map[string]bool)
	for _, ref := range rec.calls {
		seen[ref.Key()] = true
	}
	for _, ref := range refs {
		if !seen[ref.Key()] {
			t.Fatalf("cascade missed target %s", ref)
		}
	}
	for _, reason := range rec.reasons {
		if reason != types.ReasonSourceCredibilityUpdated {
			t.Fatalf("expected source credibility reason, got %s", reason)
		}
	}
}

func TestShutdownDuringFlushDoesNotPanic(t *testing.T) {
	for i := 0; i < 50; i++ {
		rec := newStubRecomputer(1)
		c := New(logger.NewNop(), Config{Workers: 2, Debounce: time.Millisecond}, rec, nil, nil)
		ctx, cancel := context.WithCancel(context.Background())
		runDone := make(chan struct{})
		go func() {
			defer close(runDone)
			_ = c.Run(ctx)
		}()

		for j := 0; j < 50; j++ {
			c.Handle(events.ChangeEvent{
				Kind:   events.EvidenceChanged,
				Target: types.NodeRef(uuid.New()),
				Reason: types.ReasonNewEvidence,
			})
		}
		// Cancel while flush timers are mid-flight so late sends land
		// after shutdown.
		time.Sleep(time.Duration(i%3) * time.Millisecond)
		cancel()

		select {
		case <-runDone:
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancellation")
		}
	}
	// Give any straggler timers a chance to fire before the test exits.
	time.Sleep(10 * time.Millisecond)
}

func TestExhaustedRetriesGoToDeadLetterAndRequeue(t *testing.T) {
	rec := newStubRecomputer(1)
	rec.failN = 1
	c := New(logger.NewNop(), Config{
		Debounce:        time.Millisecond,
		MaxRetries:      1,
		RetryBackoff:    time.Millisecond,
		RequeueInterval: 20 * time.Millisecond,
	}, rec, nil, nil)
	cancel := startCoordinator(t, c)
	defer cancel()

	c.Handle(events.ChangeEvent{Kind: events.EvidenceChanged, Target: types.NodeRef(uuid.New()), Reason: types.ReasonNewEvidence})

	deadline := time.After(2 * time.Second)
	for c.DeadLetterCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("exhausted recomputation never reached the dead-letter set")
		case <-time.After(time.Millisecond):
		}
	}

	// The requeue ticker feeds it back; the stub now succeeds.
	waitFor(t, rec.done, 1)
	for c.DeadLetterCount() != 0 {
		select {
		case <-deadline:
			t.Fatalf("dead letter not cleared after successful requeue, count=%d", c.DeadLetterCount())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestBusEventsReachRecomputer(t *testing.T) {
	rec := newStubRecomputer(1)
	bus := events.NewMemoryBus(8)
	c := New(logger.NewNop(), Config{Debounce: 5 * time.Millisecond}, rec, nil, bus)
	cancel := startCoordinator(t, c)
	defer cancel()

	time.Sleep(10 * time.Millisecond)
	err := bus.Publish(context.Background(), events.ChangeEvent{
		Kind:   events.EvidenceChanged,
		Target: types.NodeRef(uuid.New()),
		Reason: types.ReasonNewEvidence,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitFor(t, rec.done, 1)
}
