package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"timed-quiz-service/internal/domain"
)

func TestSchedulerWritesInSubmissionOrder(t *testing.T) {
	writer := &recordingWriter{}
	scheduler := NewScheduler(writer, 0, time.Second)

	for i := 1; i <= 5; i++ {
		scheduler.Schedule(domain.UserRecord{ID: "u1", Correct: i})
	}
	flush(t, scheduler)

	updates := writer.updatesFor("u1")
	if len(updates) != 5 {
		t.Fatalf("expected 5 updates, got %d", len(updates))
	}
	for i, rec := range updates {
		if rec.Correct != i+1 {
			t.Fatalf("update %d carried correct=%d, writes out of order", i, rec.Correct)
		}
	}
}

func TestSchedulerWaitsForDelay(t *testing.T) {
	writer := &recordingWriter{}
	fire := make(chan time.Time)
	requested := make(chan time.Duration, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scheduler := NewSchedulerWithClock(writer, 2*time.Second, time.Second,
		func() time.Time { return now },
		func(d time.Duration) <-chan time.Time {
			requested <- d
			return fire
		})

	scheduler.Schedule(domain.UserRecord{ID: "u1", Correct: 1})

	select {
	case d := <-requested:
		if d != 2*time.Second {
			t.Fatalf("expected 2s delay, got %v", d)
		}
	case <-time.After(time.Second):
		t.Fatalf("scheduler never waited")
	}
	if got := len(writer.updatesFor("u1")); got != 0 {
		t.Fatalf("write ran before delay elapsed")
	}

	fire <- now
	flush(t, scheduler)
	if got := len(writer.updatesFor("u1")); got != 1 {
		t.Fatalf("expected 1 write after delay, got %d", got)
	}
}

func TestSchedulerCreatesRecordWithoutIdentity(t *testing.T) {
	writer := &recordingWriter{}
	fire := make(chan time.Time)
	scheduler := NewSchedulerWithClock(writer, time.Second, time.Second, time.Now,
		func(time.Duration) <-chan time.Time { return fire })

	// Both writes are queued before the first one runs.
	scheduler.Schedule(domain.UserRecord{FirstName: "Ada", Correct: 1})
	scheduler.Schedule(domain.UserRecord{FirstName: "Ada", Correct: 2})
	close(fire)
	flush(t, scheduler)

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if len(writer.creates) != 1 {
		t.Fatalf("expected one create, got %d", len(writer.creates))
	}
	if len(writer.updates) != 1 || writer.updates[0].ID != "created-1" || writer.updates[0].Correct != 2 {
		t.Fatalf("expected follow-up update on created identity, got %+v", writer.updates)
	}
}

func TestSchedulerDropsFailedWrites(t *testing.T) {
	writer := &recordingWriter{failUpdates: 1}
	scheduler := NewScheduler(writer, 0, time.Second)

	scheduler.Schedule(domain.UserRecord{ID: "u1", Correct: 1})
	scheduler.Schedule(domain.UserRecord{ID: "u1", Correct: 2})
	flush(t, scheduler)

	updates := writer.updatesFor("u1")
	if len(updates) != 1 || updates[0].Correct != 2 {
		t.Fatalf("expected only the second write to land, got %+v", updates)
	}
}

func TestSchedulerSnapshotsRecord(t *testing.T) {
	writer := &recordingWriter{}
	fire := make(chan time.Time)
	scheduler := NewSchedulerWithClock(writer, time.Second, time.Second, time.Now,
		func(time.Duration) <-chan time.Time { return fire })

	rec := domain.UserRecord{ID: "u1", Answers: []domain.AnswerEntry{{Question: "q1"}}}
	scheduler.Schedule(rec)
	rec.Answers[0].Question = "mutated"

	close(fire)
	flush(t, scheduler)
	updates := writer.updatesFor("u1")
	if len(updates) != 1 || updates[0].Answers[0].Question != "q1" {
		t.Fatalf("scheduled write must use the snapshot, got %+v", updates)
	}
}

func TestSchedulerRefusesWritesAfterStop(t *testing.T) {
	writer := &recordingWriter{}
	scheduler := NewScheduler(writer, 0, time.Second)

	if !scheduler.Schedule(domain.UserRecord{ID: "u1", Correct: 1}) {
		t.Fatalf("expected write accepted before stop")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := scheduler.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if scheduler.Schedule(domain.UserRecord{ID: "u1", Correct: 2}) {
		t.Fatalf("expected write refused after stop")
	}
	flush(t, scheduler)
	updates := writer.updatesFor("u1")
	if len(updates) != 1 || updates[0].Correct != 1 {
		t.Fatalf("expected only the write queued before stop, got %+v", updates)
	}
}

func flush(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

type recordingWriter struct {
	mu          sync.Mutex
	creates     []domain.UserRecord
	updates     []domain.UserRecord
	failUpdates int
}

func (w *recordingWriter) Create(_ context.Context, rec domain.UserRecord) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.creates = append(w.creates, rec)
	return "created-1", nil
}

func (w *recordingWriter) Update(_ context.Context, id string, rec domain.UserRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failUpdates > 0 {
		w.failUpdates--
		return errors.New("store unavailable")
	}
	rec.ID = id
	w.updates = append(w.updates, rec)
	return nil
}

func (w *recordingWriter) updatesFor(id string) []domain.UserRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []domain.UserRecord
	for _, rec := range w.updates {
		if rec.ID == id {
			out = append(out, rec)
		}
	}
	return out
}
