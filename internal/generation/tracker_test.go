package generation

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"artcreator/internal/domain"
)

type runnerFunc func(ctx context.Context, req Request, report func(Progress)) (*Result, error)

func (f runnerFunc) Run(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
	return f(ctx, req, report)
}

func TestTrackerRunsAndRecordsResult(t *testing.T) {
	tracker := NewTracker(runnerFunc(func(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
		report(ProgressFor(StepGenerating))
		return &Result{GenerationID: req.GenerationID, Prompt: req.Prompt}, nil
	}), TrackerOptions{Logger: zerolog.Nop(), NewID: func() string { return "gen-1" }})

	gen, err := tracker.Start(Request{UserID: "u-1", Prompt: "cat"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if gen.ID != "gen-1" || gen.Status != StatusQueued {
		t.Fatalf("gen = %+v", gen)
	}
	tracker.Wait()

	got, ok := tracker.Get("gen-1")
	if !ok {
		t.Fatal("generation not found")
	}
	if got.Status != StatusSucceeded || got.Result == nil || got.Result.GenerationID != "gen-1" {
		t.Fatalf("got = %+v", got)
	}
	if got.Progress.Percent != 60 || got.FinishedAt == nil {
		t.Fatalf("progress = %+v", got.Progress)
	}
	if _, busy := tracker.Active("u-1"); busy {
		t.Fatal("user should be free after completion")
	}
}

func TestTrackerOneInFlightPerUser(t *testing.T) {
	release := make(chan struct{})
	var ids atomic.Int32
	tracker := NewTracker(runnerFunc(func(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
		<-release
		return &Result{}, nil
	}), TrackerOptions{Logger: zerolog.Nop(), NewID: func() string {
		return string(rune('a' + ids.Add(1)))
	}})

	if _, err := tracker.Start(Request{UserID: "u-1", Prompt: "cat"}); err != nil {
		t.Fatalf("first Start returned error: %v", err)
	}
	if _, err := tracker.Start(Request{UserID: "u-1", Prompt: "dog"}); !errors.Is(err, domain.ErrGenerationInFlight) {
		t.Fatalf("err = %v, want ErrGenerationInFlight", err)
	}
	if _, err := tracker.Start(Request{UserID: "u-2", Prompt: "dog"}); err != nil {
		t.Fatalf("other user Start returned error: %v", err)
	}
	close(release)
	tracker.Wait()
	if _, err := tracker.Start(Request{UserID: "u-1", Prompt: "again"}); err != nil {
		t.Fatalf("Start after completion returned error: %v", err)
	}
	tracker.Wait()
}

func TestTrackerClassifiesErrors(t *testing.T) {
	cases := []struct {
		err  error
		want Status
	}{
		{&domain.RejectionError{Suggestions: "no"}, StatusRejected},
		{domain.ErrGenerationFailed, StatusFailed},
	}
	for _, tc := range cases {
		tracker := NewTracker(runnerFunc(func(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
			return nil, tc.err
		}), TrackerOptions{Logger: zerolog.Nop(), NewID: func() string { return "g" }})
		if _, err := tracker.Start(Request{UserID: "u", Prompt: "x"}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		tracker.Wait()
		got, _ := tracker.Get("g")
		if got.Status != tc.want || !errors.Is(got.Err, tc.err) {
			t.Fatalf("status = %s err = %v, want %s", got.Status, got.Err, tc.want)
		}
	}
}

func TestTrackerPrunesExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var current atomic.Pointer[time.Time]
	current.Store(&now)
	tracker := NewTracker(runnerFunc(func(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
		return &Result{}, nil
	}), TrackerOptions{
		Logger: zerolog.Nop(),
		TTL:    time.Minute,
		Now:    func() time.Time { return *current.Load() },
		NewID:  func() string { return "old" },
	})
	if _, err := tracker.Start(Request{UserID: "u", Prompt: "x"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	tracker.Wait()
	if _, ok := tracker.Get("old"); !ok {
		t.Fatal("generation should still be available")
	}
	later := now.Add(2 * time.Minute)
	current.Store(&later)
	if _, ok := tracker.Get("old"); ok {
		t.Fatal("generation should have been pruned")
	}
}

func TestTrackerTimeoutCancelsRun(t *testing.T) {
	tracker := NewTracker(runnerFunc(func(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), TrackerOptions{Logger: zerolog.Nop(), Timeout: 10 * time.Millisecond, NewID: func() string { return "slow" }})
	if _, err := tracker.Start(Request{UserID: "u", Prompt: "x"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	tracker.Wait()
	got, _ := tracker.Get("slow")
	if got.Status != StatusFailed || !errors.Is(got.Err, context.DeadlineExceeded) {
		t.Fatalf("got = %+v", got)
	}
}

func TestTrackerShutdownRefusesNewWork(t *testing.T) {
	tracker := NewTracker(runnerFunc(func(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
		return &Result{}, nil
	}), TrackerOptions{Logger: zerolog.Nop()})
	if err := tracker.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if _, err := tracker.Start(Request{UserID: "u", Prompt: "x"}); err == nil {
		t.Fatal("expected error after shutdown")
	}
}

func TestTrackerShutdownWaitsForEveryAcceptedStart(t *testing.T) {
	var finished atomic.Int32
	tracker := NewTracker(runnerFunc(func(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
		finished.Add(1)
		return &Result{}, nil
	}), TrackerOptions{Logger: zerolog.Nop()})

	var accepted atomic.Int32
	var callers sync.WaitGroup
	for i := 0; i < 50; i++ {
		callers.Add(1)
		go func(i int) {
			defer callers.Done()
			if _, err := tracker.Start(Request{UserID: "u-" + strconv.Itoa(i), Prompt: "x"}); err == nil {
				accepted.Add(1)
			}
		}(i)
	}
	if err := tracker.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	atShutdown := finished.Load()
	callers.Wait()
	if atShutdown != accepted.Load() {
		t.Fatalf("%d runs finished before Shutdown returned, %d starts accepted", atShutdown, accepted.Load())
	}
	if _, err := tracker.Start(Request{UserID: "late", Prompt: "x"}); err == nil {
		t.Fatal("expected error after shutdown")
	}
}
