package app

import (
	"context"
	"log"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"
)

// DefaultPersistDelay is how long a scheduled write waits before it runs.
const DefaultPersistDelay = 2 * time.Second

// RecordWriter is the write side of the user record store.
type RecordWriter interface {
	Create(ctx context.Context, rec domain.UserRecord) (string, error)
	Update(ctx context.Context, id string, rec domain.UserRecord) error
}

// Scheduler performs delayed, fire-and-forget writes of user records.
// Writes for one identity run on a single worker in submission order, so a
// newer snapshot can never be overwritten by an older one.
type Scheduler struct {
	writer  RecordWriter
	delay   time.Duration
	timeout time.Duration
	now     func() time.Time
	after   func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	queues map[string]*writeQueue
	closed bool
	wg     sync.WaitGroup
}

type pendingWrite struct {
	due    time.Time
	record domain.UserRecord
}

type writeQueue struct {
	pending []pendingWrite
}

// NewScheduler builds a scheduler; timeout bounds each individual write.
func NewScheduler(writer RecordWriter, delay, timeout time.Duration) *Scheduler {
	return NewSchedulerWithClock(writer, delay, timeout, time.Now, time.After)
}

// NewSchedulerWithClock allows tests to control time.
func NewSchedulerWithClock(writer RecordWriter, delay, timeout time.Duration, now func() time.Time, after func(time.Duration) <-chan time.Time) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Scheduler{
		writer:  writer,
		delay:   delay,
		timeout: timeout,
		now:     now,
		after:   after,
		queues:  make(map[string]*writeQueue),
	}
}

// Schedule queues a snapshot of rec to be written after the configured delay.
// It reports false and drops the write once the scheduler is stopped.
func (s *Scheduler) Schedule(rec domain.UserRecord) bool {
	job := pendingWrite{due: s.now().Add(s.delay), record: rec.Clone()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Printf("persist: scheduler stopped, dropping write for record %s", rec.ID)
		return false
	}
	if q, ok := s.queues[rec.ID]; ok {
		q.pending = append(q.pending, job)
		return true
	}
	q := &writeQueue{pending: []pendingWrite{job}}
	s.queues[rec.ID] = q
	s.wg.Add(1)
	go s.drain(rec.ID, q)
	return true
}

// Stop refuses further writes and waits for the queued ones like Flush.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Flush(ctx)
}

// Flush blocks until every queued write has run or ctx is done.
// Pending writes are never cancelled; on ctx expiry they keep running in the background.
func (s *Scheduler) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) drain(key string, q *writeQueue) {
	defer s.wg.Done()

	assigned := key
	for {
		s.mu.Lock()
		if len(q.pending) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		s.mu.Unlock()

		if wait := job.due.Sub(s.now()); wait > 0 {
			<-s.after(wait)
		}
		if job.record.ID == "" && assigned != "" {
			job.record.ID = assigned
		}
		if id := s.write(job.record); id != "" {
			assigned = id
		}
	}
}

// write creates the record when it has no identity yet and updates it otherwise.
// It returns the identity the record ended up with, or "" if a create failed.
func (s *Scheduler) write(rec domain.UserRecord) string {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if rec.ID == "" {
		id, err := s.writer.Create(ctx, rec)
		if err != nil {
			log.Printf("persist: create record for %s %s failed: %v", rec.FirstName, rec.LastName, err)
			return ""
		}
		log.Printf("persist: created record %s", id)
		return id
	}
	if err := s.writer.Update(ctx, rec.ID, rec); err != nil {
		log.Printf("persist: update record %s failed: %v", rec.ID, err)
	}
	return rec.ID
}
