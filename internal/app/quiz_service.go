package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"timed-quiz-service/internal/domain"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session Session) error
	Get(sessionID string) (Session, bool)
	Delete(sessionID string)
}

// QuestionRepository loads question content (from cache/backing store).
type QuestionRepository interface {
	Categories(ctx context.Context) ([]string, error)
	Questions(ctx context.Context, category string) ([]domain.Question, error)
}

// UserRepository is the user record store.
type UserRepository interface {
	RecordWriter
	FindByName(ctx context.Context, firstName, lastName string) (domain.UserRecord, bool, error)
}

// DefaultFinishedRetention is how long a finished session stays readable.
const DefaultFinishedRetention = 10 * time.Minute

// Options tune session timing. Zero values fall back to defaults, except
// TickInterval where zero disables the countdown driver.
type Options struct {
	QuestionTime int
	TickInterval time.Duration
	// FinishedRetention delays the removal of finished sessions.
	FinishedRetention time.Duration
	Rand              *rand.Rand
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionRepository
	users     UserRepository
	scheduler *Scheduler
	opts      Options
	now       func() time.Time

	mu          sync.Mutex
	rnd         *rand.Rand
	subscribers map[string]map[chan domain.SessionView]struct{}
	discards    map[string]*time.Timer

	countdowns sync.WaitGroup
	closing    chan struct{}
	closeOnce  sync.Once
}

func NewQuizService(sessions SessionRepository, questions QuestionRepository, users UserRepository, scheduler *Scheduler, opts Options) *QuizService {
	if opts.QuestionTime <= 0 {
		opts.QuestionTime = DefaultQuestionTime
	}
	if opts.FinishedRetention <= 0 {
		opts.FinishedRetention = DefaultFinishedRetention
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuizService{
		sessions:    sessions,
		questions:   questions,
		users:       users,
		scheduler:   scheduler,
		opts:        opts,
		now:         time.Now,
		rnd:         rnd,
		subscribers: make(map[string]map[chan domain.SessionView]struct{}),
		discards:    make(map[string]*time.Timer),
		closing:     make(chan struct{}),
	}
}

// Categories lists the distinct question categories.
func (s *QuizService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.questions.Categories(ctx)
	if err != nil {
		log.Printf("load categories: %v", err)
		return nil, err
	}
	return categories, nil
}

// Start creates the user record and begins a new session on its first question.
func (s *QuizService) Start(ctx context.Context, req domain.StartRequest) (domain.SessionView, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Category = strings.TrimSpace(req.Category)
	if err := ValidateStart(req); err != nil {
		return domain.SessionView{}, err
	}

	questions, err := s.questions.Questions(ctx, req.Category)
	if err != nil {
		log.Printf("load questions for %q: %v", req.Category, err)
		return domain.SessionView{}, err
	}
	if len(questions) == 0 {
		return domain.SessionView{}, domain.ErrNoQuestions
	}

	if _, found, err := s.users.FindByName(ctx, req.FirstName, req.LastName); err != nil {
		return domain.SessionView{}, fmt.Errorf("find user: %w", err)
	} else if found {
		return domain.SessionView{}, domain.ErrDuplicateIdentity
	}

	now := s.now()
	record := domain.UserRecord{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Category:  req.Category,
		Answers:   []domain.AnswerEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	// The initial write is synchronous so every later write has an identity.
	id, err := s.users.Create(ctx, record)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return domain.SessionView{}, err
		}
		return domain.SessionView{}, fmt.Errorf("create user: %w", err)
	}
	record.ID = id

	s.mu.Lock()
	shuffled := Shuffle(questions, s.rnd)
	session, _, err := Apply(Session{ID: uuid.NewString()}, Start{
		Record:       record,
		Questions:    shuffled,
		QuestionTime: s.opts.QuestionTime,
	})
	if err == nil {
		err = s.sessions.Put(session)
	}
	s.mu.Unlock()
	if err != nil {
		return domain.SessionView{}, err
	}

	s.startCountdown(session.ID)
	return session.View(), nil
}

// Answer submits a choice for the session's current question.
func (s *QuizService) Answer(_ context.Context, sessionID, choice string) (domain.SessionView, error) {
	return s.apply(sessionID, Answer{Choice: choice})
}

// Tick advances the session's countdown by one second.
func (s *QuizService) Tick(_ context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(sessionID, Tick{})
}

// Get returns the current view of a session.
func (s *QuizService) Get(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.View(), nil
}

// Subscribe returns a channel that receives view updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionView, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch := make(chan domain.SessionView, 8)
	subs, ok := s.subscribers[sessionID]
	if !ok {
		subs = make(map[chan domain.SessionView]struct{})
		s.subscribers[sessionID] = subs
	}
	subs[ch] = struct{}{}
	ch <- session.View()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.subscribers, sessionID)
			}
		}
	}
	return ch, cancel, nil
}

// Discard drops a finished session from the store. Active sessions and
// sessions with live subscribers are kept. Scheduled writes for its record still run.
func (s *QuizService) Discard(_ context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discardLocked(sessionID)
}

func (s *QuizService) discardLocked(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || !session.Finished {
		return
	}
	if len(s.subscribers[sessionID]) > 0 {
		return
	}
	s.sessions.Delete(sessionID)
	if timer, ok := s.discards[sessionID]; ok {
		timer.Stop()
		delete(s.discards, sessionID)
	}
}

// scheduleDiscardLocked removes a finished session once the retention passes,
// so sessions driven only over REST do not accumulate.
func (s *QuizService) scheduleDiscardLocked(sessionID string) {
	if _, ok := s.discards[sessionID]; ok {
		return
	}
	s.discards[sessionID] = time.AfterFunc(s.opts.FinishedRetention, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.discards, sessionID)
		s.discardLocked(sessionID)
	})
}

// Close stops all countdowns and waits for pending record writes.
func (s *QuizService) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })
	s.countdowns.Wait()

	s.mu.Lock()
	for id, timer := range s.discards {
		timer.Stop()
		delete(s.discards, id)
	}
	s.mu.Unlock()
	return s.scheduler.Stop(ctx)
}

func (s *QuizService) apply(sessionID string, ev Event) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	if _, isTick := ev.(Tick); isTick && session.Finished {
		return session.View(), nil
	}

	next, out, err := Apply(session, ev)
	if err != nil {
		return session.View(), err
	}
	if err := s.sessions.Put(next); err != nil {
		return session.View(), fmt.Errorf("save session: %w", err)
	}
	for _, rec := range out.Persist {
		s.scheduler.Schedule(rec)
	}
	if out.Finished {
		s.scheduleDiscardLocked(sessionID)
	}
	return s.broadcastLocked(next), nil
}

func (s *QuizService) broadcastLocked(session Session) domain.SessionView {
	view := session.View()
	for ch := range s.subscribers[session.ID] {
		select {
		case ch <- view:
		default:
			// Drop the oldest pending view so a slow client never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}
