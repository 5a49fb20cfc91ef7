package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oukeidos/dbdesk/internal/apperrors"
	"github.com/oukeidos/dbdesk/internal/status"
)

type fakeActions struct {
	startErr error
	starts   int
	stops    int
	// seenAtStop records the controller status when Stop was invoked.
	seenAtStop []status.Status
	ctrl       *Controller
	onStop     func()
}

func (f *fakeActions) Start(context.Context) error {
	f.starts++
	return f.startErr
}

func (f *fakeActions) Stop(context.Context) {
	f.stops++
	if f.ctrl != nil {
		f.seenAtStop = append(f.seenAtStop, f.ctrl.Current())
	}
	if hook := f.onStop; hook != nil {
		f.onStop = nil
		hook()
	}
}

type recordingObserver struct {
	seen []status.Status
}

func (r *recordingObserver) StatusChanged(s status.Status) {
	r.seen = append(r.seen, s)
}

func (r *recordingObserver) last() status.Status {
	return r.seen[len(r.seen)-1]
}

func newTestController(t *testing.T, actions *fakeActions) (*Controller, *ManualScheduler, *recordingObserver, *[]error) {
	t.Helper()
	sched := &ManualScheduler{}
	obs := &recordingObserver{}
	var reported []error
	c := New(actions, sched, ReporterFunc(func(err error) { reported = append(reported, err) }), obs)
	actions.ctrl = c
	return c, sched, obs, &reported
}

func TestNew_RendersStopped(t *testing.T) {
	c, _, obs, _ := newTestController(t, &fakeActions{})
	if c.Current() != status.Stopped {
		t.Fatalf("Current() = %s, want STOPPED", c.Current())
	}
	if len(obs.seen) != 1 || obs.seen[0] != status.Stopped {
		t.Fatalf("initial notification = %v, want [STOPPED]", obs.seen)
	}
}

func TestRequestStart_Success(t *testing.T) {
	actions := &fakeActions{}
	c, _, obs, reported := newTestController(t, actions)

	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("RequestStart() error = %v", err)
	}
	if c.Current() != status.Started {
		t.Fatalf("Current() = %s, want STARTED", c.Current())
	}
	if obs.last() != status.Started {
		t.Fatalf("observer last = %s, want STARTED", obs.last())
	}
	if actions.starts != 1 {
		t.Fatalf("starts = %d, want 1", actions.starts)
	}
	if len(*reported) != 0 {
		t.Fatalf("unexpected reports: %v", *reported)
	}
}

func TestRequestStart_FailureStaysStopped(t *testing.T) {
	cause := errors.New("port 7687 in use")
	actions := &fakeActions{startErr: cause}
	c, _, obs, reported := newTestController(t, actions)

	err := c.RequestStart(context.Background())
	if !apperrors.Is(err, apperrors.KindStartFailure) {
		t.Fatalf("RequestStart() error = %v, want start failure", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped")
	}
	if c.Current() != status.Stopped {
		t.Fatalf("Current() = %s, want STOPPED", c.Current())
	}
	if len(obs.seen) != 1 {
		t.Fatalf("observer saw %v, want only the initial round", obs.seen)
	}
	if len(*reported) != 1 {
		t.Fatalf("reported %d errors, want 1", len(*reported))
	}

	// The user may retry after remediation.
	actions.startErr = nil
	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("retry RequestStart() error = %v", err)
	}
	if c.Current() != status.Started {
		t.Fatalf("Current() = %s, want STARTED after retry", c.Current())
	}
}

func TestRequestStop_RendersStoppingBeforeStop(t *testing.T) {
	actions := &fakeActions{}
	c, sched, obs, _ := newTestController(t, actions)
	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("RequestStart() error = %v", err)
	}

	if err := c.RequestStop(context.Background()); err != nil {
		t.Fatalf("RequestStop() error = %v", err)
	}
	if c.Current() != status.Stopping {
		t.Fatalf("Current() = %s, want STOPPING", c.Current())
	}
	if obs.last() != status.Stopping {
		t.Fatalf("observer last = %s, want STOPPING", obs.last())
	}
	if actions.stops != 0 {
		t.Fatalf("stop ran before the deferred continuation")
	}
	if sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", sched.Pending())
	}

	sched.RunPending()
	if c.Current() != status.Stopped {
		t.Fatalf("Current() = %s, want STOPPED", c.Current())
	}
	if actions.stops != 1 {
		t.Fatalf("stops = %d, want 1", actions.stops)
	}
	if len(actions.seenAtStop) != 1 || actions.seenAtStop[0] != status.Stopping {
		t.Fatalf("status during stop = %v, want [STOPPING]", actions.seenAtStop)
	}
	want := []status.Status{status.Stopped, status.Started, status.Stopping, status.Stopped}
	if len(obs.seen) != len(want) {
		t.Fatalf("observer saw %v, want %v", obs.seen, want)
	}
	for i := range want {
		if obs.seen[i] != want[i] {
			t.Fatalf("observer saw %v, want %v", obs.seen, want)
		}
	}
}

func TestRejectedRequestsAreNoOps(t *testing.T) {
	actions := &fakeActions{}
	c, sched, obs, _ := newTestController(t, actions)

	if err := c.RequestStop(context.Background()); !errors.Is(err, ErrTransitionRejected) {
		t.Fatalf("stop while STOPPED error = %v, want rejected", err)
	}
	if c.Current() != status.Stopped || sched.Pending() != 0 {
		t.Fatalf("stop while STOPPED changed state")
	}

	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("RequestStart() error = %v", err)
	}
	if err := c.RequestStart(context.Background()); !errors.Is(err, ErrTransitionRejected) {
		t.Fatalf("start while STARTED error = %v, want rejected", err)
	}
	if actions.starts != 1 {
		t.Fatalf("starts = %d, want 1", actions.starts)
	}

	if err := c.RequestStop(context.Background()); err != nil {
		t.Fatalf("RequestStop() error = %v", err)
	}
	if err := c.RequestStart(context.Background()); !errors.Is(err, ErrTransitionRejected) {
		t.Fatalf("start while STOPPING error = %v, want rejected", err)
	}
	if err := c.RequestStop(context.Background()); !errors.Is(err, ErrTransitionRejected) {
		t.Fatalf("stop while STOPPING error = %v, want rejected", err)
	}
	if c.Current() != status.Stopping || sched.Pending() != 1 {
		t.Fatalf("requests during STOPPING changed state: %s pending=%d", c.Current(), sched.Pending())
	}
	n := len(obs.seen)
	sched.RunPending()
	if len(obs.seen) != n+1 {
		t.Fatalf("expected exactly one more notification round")
	}
}

func TestOnlyValidEdgesAreObserved(t *testing.T) {
	actions := &fakeActions{}
	c, sched, obs, _ := newTestController(t, actions)
	ctx := context.Background()

	ops := []func(){
		func() { _ = c.RequestStart(ctx) },
		func() { _ = c.RequestStop(ctx) },
		func() { sched.RunPending() },
	}
	// Deterministic pseudo-random walk across operations.
	seed := uint32(7)
	for i := 0; i < 200; i++ {
		seed = seed*1664525 + 1013904223
		ops[seed%uint32(len(ops))]()
	}
	sched.RunPending()

	for i := 1; i < len(obs.seen); i++ {
		if !status.CanTransition(obs.seen[i-1], obs.seen[i]) {
			t.Fatalf("observed invalid edge %s -> %s at %d", obs.seen[i-1], obs.seen[i], i)
		}
	}
	if obs.last() != c.Current() {
		t.Fatalf("observer last = %s, current = %s", obs.last(), c.Current())
	}
}

func TestRequestDuringNotificationIsRejected(t *testing.T) {
	actions := &fakeActions{}
	sched := &ManualScheduler{}
	var c *Controller
	var nested error
	reentrant := ObserverFunc(func(s status.Status) {
		if s == status.Started && c != nil {
			nested = c.RequestStop(context.Background())
		}
	})
	c = New(actions, sched, nil, reentrant)

	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("RequestStart() error = %v", err)
	}
	if !errors.Is(nested, ErrTransitionRejected) {
		t.Fatalf("nested request error = %v, want rejected", nested)
	}
	if c.Current() != status.Started {
		t.Fatalf("Current() = %s, want STARTED", c.Current())
	}
}

func TestShutdown(t *testing.T) {
	t.Run("started", func(t *testing.T) {
		actions := &fakeActions{}
		c, _, obs, _ := newTestController(t, actions)
		_ = c.RequestStart(context.Background())
		c.Shutdown(context.Background())
		if c.Current() != status.Stopped || actions.stops != 1 {
			t.Fatalf("Shutdown() status=%s stops=%d", c.Current(), actions.stops)
		}
		if obs.last() != status.Stopped {
			t.Fatalf("observer last = %s", obs.last())
		}
	})

	t.Run("stopping with pending continuation", func(t *testing.T) {
		actions := &fakeActions{}
		c, sched, _, _ := newTestController(t, actions)
		_ = c.RequestStart(context.Background())
		_ = c.RequestStop(context.Background())
		c.Shutdown(context.Background())
		sched.RunPending()
		if c.Current() != status.Stopped {
			t.Fatalf("Current() = %s, want STOPPED", c.Current())
		}
		if actions.stops != 1 {
			t.Fatalf("stops = %d, want 1", actions.stops)
		}
	})

	t.Run("stopped", func(t *testing.T) {
		actions := &fakeActions{}
		c, _, _, _ := newTestController(t, actions)
		c.Shutdown(context.Background())
		if actions.stops != 0 {
			t.Fatalf("stop invoked while already stopped")
		}
	})
}

func TestStopIgnoresCancelledContext(t *testing.T) {
	actions := &fakeActions{}
	c, sched, _, _ := newTestController(t, actions)
	_ = c.RequestStart(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	_ = c.RequestStop(ctx)
	cancel()
	sched.RunPending()
	if actions.stops != 1 || c.Current() != status.Stopped {
		t.Fatalf("stop must run to completion after cancellation")
	}
}

func TestShutdownDuringDeferredStop(t *testing.T) {
	actions := &fakeActions{}
	c, sched, obs, _ := newTestController(t, actions)
	_ = c.RequestStart(context.Background())
	_ = c.RequestStop(context.Background())

	// Shutdown arrives while the continuation is inside Stop.
	actions.onStop = func() { c.Shutdown(context.Background()) }
	sched.RunPending()

	if c.Current() != status.Stopped {
		t.Fatalf("Current() = %s, want STOPPED", c.Current())
	}
	stopped := 0
	for _, s := range obs.seen[1:] {
		if s == status.Stopped {
			stopped++
		}
	}
	if stopped != 1 {
		t.Fatalf("STOPPED rendered %d times after start, seen = %v", stopped, obs.seen)
	}
}

// gatedActions blocks Start until release is closed.
type gatedActions struct {
	entered chan struct{}
	release chan struct{}
	starts  atomic.Int32
	stops   atomic.Int32
}

func newGatedActions() *gatedActions {
	return &gatedActions{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedActions) Start(context.Context) error {
	g.starts.Add(1)
	g.entered <- struct{}{}
	<-g.release
	return nil
}

func (g *gatedActions) Stop(context.Context) { g.stops.Add(1) }

func waitEntered(t *testing.T, g *gatedActions) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("start action never ran")
	}
}

func TestShutdownDuringStartStopsDatabase(t *testing.T) {
	actions := newGatedActions()
	obs := &lockedRecorder{}
	c := New(actions, &ManualScheduler{}, nil, obs)

	startErr := make(chan error, 1)
	go func() { startErr <- c.RequestStart(context.Background()) }()
	waitEntered(t, actions)

	shutdownDone := make(chan struct{})
	go func() {
		c.Shutdown(context.Background())
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		t.Fatal("Shutdown returned while the start was still running")
	case <-time.After(50 * time.Millisecond):
	}
	close(actions.release)

	select {
	case <-shutdownDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return after the start finished")
	}
	if err := <-startErr; !errors.Is(err, ErrShuttingDown) {
		t.Fatalf("RequestStart() error = %v, want ErrShuttingDown", err)
	}
	if c.Current() != status.Stopped {
		t.Fatalf("Current() = %s, want STOPPED", c.Current())
	}
	if got := actions.stops.Load(); got != 1 {
		t.Fatalf("stops = %d, want 1", got)
	}
	for _, s := range obs.snapshot() {
		if s == status.Started {
			t.Fatalf("STARTED rendered after shutdown: %v", obs.snapshot())
		}
	}
	if err := c.RequestStart(context.Background()); !errors.Is(err, ErrTransitionRejected) {
		t.Fatalf("RequestStart() after shutdown error = %v, want rejected", err)
	}
}

func TestConcurrentStartIsRejected(t *testing.T) {
	actions := newGatedActions()
	var reported atomic.Int32
	c := New(actions, &ManualScheduler{}, ReporterFunc(func(error) { reported.Add(1) }))

	first := make(chan error, 1)
	go func() { first <- c.RequestStart(context.Background()) }()
	waitEntered(t, actions)

	if !c.Starting() {
		t.Fatal("Starting() = false while the start action runs")
	}
	if err := c.RequestStart(context.Background()); !errors.Is(err, ErrTransitionRejected) {
		t.Fatalf("second RequestStart() error = %v, want rejected", err)
	}
	if err := c.RequestStop(context.Background()); !errors.Is(err, ErrTransitionRejected) {
		t.Fatalf("RequestStop() during start error = %v, want rejected", err)
	}
	close(actions.release)

	if err := <-first; err != nil {
		t.Fatalf("first RequestStart() error = %v", err)
	}
	if got := actions.starts.Load(); got != 1 {
		t.Fatalf("starts = %d, want 1", got)
	}
	if c.Starting() {
		t.Fatal("Starting() = true after the start returned")
	}
	if reported.Load() != 0 {
		t.Fatalf("rejected start was reported to the user")
	}
	if c.Current() != status.Started {
		t.Fatalf("Current() = %s, want STARTED", c.Current())
	}
}

type lockedRecorder struct {
	mu   sync.Mutex
	seen []status.Status
}

func (r *lockedRecorder) StatusChanged(s status.Status) {
	r.mu.Lock()
	r.seen = append(r.seen, s)
	r.mu.Unlock()
}

func (r *lockedRecorder) snapshot() []status.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]status.Status(nil), r.seen...)
}
