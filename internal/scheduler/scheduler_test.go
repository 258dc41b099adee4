package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mock implementations ---

type CountingJob struct {
	name  string
	calls atomic.Int32
}

func (j *CountingJob) Name() string { return j.name }

func (j *CountingJob) Run(_ context.Context) error {
	j.calls.Add(1)
	return nil
}

type ErrorJob struct {
	calls atomic.Int32
}

func (j *ErrorJob) Name() string { return "failing" }

func (j *ErrorJob) Run(_ context.Context) error {
	j.calls.Add(1)
	return errors.New("job failed")
}

// OrderRecordingJob appends its id to recorder.order on each Run call.
type OrderRecordingJob struct {
	id       string
	recorder *orderRecorder
}

type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (j *OrderRecordingJob) Name() string { return j.id }

func (j *OrderRecordingJob) Run(_ context.Context) error {
	j.recorder.mu.Lock()
	j.recorder.order = append(j.recorder.order, j.id)
	j.recorder.mu.Unlock()
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Tests ---

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s := NewScheduler([]Job{&CountingJob{name: "a"}}, 1*time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

func TestRun_JobsCalledEachTick(t *testing.T) {
	job := &CountingJob{name: "a"}

	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler([]Job{job}, 100*time.Millisecond, discardLogger())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// Allow time for at least two full passes (run → sleep interval → run).
	time.Sleep(250 * time.Millisecond)
	cancel()
	<-done

	if got := job.calls.Load(); got < 2 {
		t.Errorf("job calls = %d, want >= 2", got)
	}
}

func TestRunOnce_ErrorDoesNotStopOthers(t *testing.T) {
	failing := &ErrorJob{}
	healthy := &CountingJob{name: "healthy"}

	s := NewScheduler([]Job{failing, healthy}, time.Hour, discardLogger())
	s.RunOnce(context.Background())

	if got := failing.calls.Load(); got != 1 {
		t.Errorf("failing job calls = %d, want 1", got)
	}
	if got := healthy.calls.Load(); got != 1 {
		t.Errorf("healthy job calls = %d, want 1", got)
	}
}

func TestRunOnce_OrderPreserved(t *testing.T) {
	rec := &orderRecorder{}
	jobs := []Job{
		&OrderRecordingJob{id: "snapshot", recorder: rec},
		&OrderRecordingJob{id: "purge", recorder: rec},
		&OrderRecordingJob{id: "reload", recorder: rec},
	}

	NewScheduler(jobs, time.Hour, discardLogger()).RunOnce(context.Background())

	want := []string{"snapshot", "purge", "reload"}
	if len(rec.order) != len(want) {
		t.Fatalf("order = %v, want %v", rec.order, want)
	}
	for i := range want {
		if rec.order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, rec.order[i], want[i])
		}
	}
}

func TestRunOnce_CancelledContextSkipsJobs(t *testing.T) {
	job := &CountingJob{name: "a"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewScheduler([]Job{job}, time.Hour, discardLogger()).RunOnce(ctx)

	if got := job.calls.Load(); got != 0 {
		t.Errorf("job calls = %d, want 0", got)
	}
}
