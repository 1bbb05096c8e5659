package app

import (
	"slices"
	"strings"

	"timed-quiz-service/internal/domain"
)

// DefaultQuestionTime is the per-question budget in seconds.
const DefaultQuestionTime = 30

// Phase names the coarse state of a session.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
)

// Session is an immutable snapshot of one quiz attempt. Transitions never
// modify a Session in place; Apply returns the next value.
type Session struct {
	ID           string            `json:"id"`
	Category     string            `json:"category"`
	Questions    []domain.Question `json:"questions"`
	CurrentIndex int               `json:"currentIndex"`
	TimeLeft     int               `json:"timeLeft"`
	QuestionTime int               `json:"questionTime"`
	Started      bool              `json:"started"`
	Finished     bool              `json:"finished"`
	Record       domain.UserRecord `json:"record"`
	Verdict      string            `json:"verdict"`
}

// Phase derives the current phase from the started/finished flags.
func (s Session) Phase() Phase {
	switch {
	case s.Finished:
		return PhaseFinished
	case s.Started:
		return PhaseActive
	default:
		return PhaseSetup
	}
}

// Outcome reports the side effects a transition asks the caller to perform.
type Outcome struct {
	// Persist holds record snapshots to hand to the persistence scheduler, in order.
	Persist []domain.UserRecord
	// Finished is set when this transition ended the session.
	Finished bool
}

// Event is an input to the session state machine.
type Event interface {
	apply(s Session) (Session, Outcome, error)
}

// Start moves a session from setup to the first question.
type Start struct {
	Record       domain.UserRecord
	Questions    []domain.Question
	QuestionTime int
}

// Answer submits a choice for the current question.
type Answer struct {
	Choice string
}

// Tick is one second of countdown.
type Tick struct{}

// Apply runs ev against s and returns the next session value.
// On error the returned session is s unchanged.
func Apply(s Session, ev Event) (Session, Outcome, error) {
	next, out, err := ev.apply(s)
	if err != nil {
		return s, Outcome{}, err
	}
	return next, out, nil
}

// ValidateStart checks the setup-screen fields.
func ValidateStart(req domain.StartRequest) error {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return domain.ErrNameRequired
	}
	if strings.TrimSpace(req.Category) == "" {
		return domain.ErrCategoryRequired
	}
	return nil
}

func (e Start) apply(s Session) (Session, Outcome, error) {
	if s.Started {
		return s, Outcome{}, domain.ErrSessionStarted
	}
	err := ValidateStart(domain.StartRequest{
		FirstName: e.Record.FirstName,
		LastName:  e.Record.LastName,
		Category:  e.Record.Category,
	})
	if err != nil {
		return s, Outcome{}, err
	}
	if len(e.Questions) == 0 {
		return s, Outcome{}, domain.ErrNoQuestions
	}

	budget := e.QuestionTime
	if budget <= 0 {
		budget = DefaultQuestionTime
	}
	s.Category = e.Record.Category
	s.Questions = e.Questions
	s.CurrentIndex = 0
	s.QuestionTime = budget
	s.TimeLeft = budget
	s.Started = true
	s.Finished = false
	s.Record = e.Record
	s.Verdict = ""
	return s, Outcome{}, nil
}

func (e Answer) apply(s Session) (Session, Outcome, error) {
	if err := s.requireActive(); err != nil {
		return s, Outcome{}, err
	}
	q := s.Questions[s.CurrentIndex]
	if !q.HasChoice(e.Choice) {
		return s, Outcome{}, domain.ErrChoiceNotFound
	}
	correct := e.Choice == q.CorrectAnswer

	// Clip forces append to copy so earlier snapshots keep their own log.
	s.Record.Answers = append(slices.Clip(s.Record.Answers), domain.AnswerEntry{
		Question:      q.Prompt,
		GivenAnswer:   e.Choice,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     correct,
	})
	return s.resolve(correct)
}

func (Tick) apply(s Session) (Session, Outcome, error) {
	if s.Finished {
		return s, Outcome{}, nil
	}
	if !s.Started {
		return s, Outcome{}, domain.ErrSessionNotStarted
	}
	s.TimeLeft--
	if s.TimeLeft > 0 {
		return s, Outcome{}, nil
	}
	// Timeout scores as incorrect but leaves no entry in the answer log.
	return s.resolve(false)
}

func (s Session) requireActive() error {
	if !s.Started {
		return domain.ErrSessionNotStarted
	}
	if s.Finished {
		return domain.ErrSessionFinished
	}
	return nil
}

// resolve scores the current question and advances or finishes.
func (s Session) resolve(correct bool) (Session, Outcome, error) {
	if correct {
		s.Record.Correct++
	} else {
		s.Record.Incorrect++
	}
	out := Outcome{Persist: []domain.UserRecord{s.Record}}

	if s.CurrentIndex >= len(s.Questions)-1 {
		s.CurrentIndex = len(s.Questions)
		s.Finished = true
		s.TimeLeft = 0
		s.Record.Result = DetermineResult(len(s.Questions), s.Record.Correct)
		s.Verdict = Verdict(s.Record.Result)
		out.Persist = append(out.Persist, s.Record)
		out.Finished = true
		return s, out, nil
	}

	s.CurrentIndex++
	s.TimeLeft = s.QuestionTime
	return s, out, nil
}

// View projects the session for clients.
func (s Session) View() domain.SessionView {
	view := domain.SessionView{
		SessionID:      s.ID,
		Phase:          string(s.Phase()),
		Category:       s.Category,
		TotalQuestions: len(s.Questions),
		CurrentIndex:   s.CurrentIndex,
		TimeLeft:       s.TimeLeft,
		Correct:        s.Record.Correct,
		Incorrect:      s.Record.Incorrect,
		Result:         s.Record.Result,
		Verdict:        s.Verdict,
	}
	if s.Started && !s.Finished && s.CurrentIndex < len(s.Questions) {
		q := s.Questions[s.CurrentIndex]
		view.Question = &domain.QuestionView{
			Number:  s.CurrentIndex + 1,
			Prompt:  q.Prompt,
			Choices: q.Choices,
		}
	}
	return view
}
