package domain

import "time"

// Question is a multiple-choice question with exactly one correct choice.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Category      string   `json:"category" yaml:"category"`
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Choices       []string `json:"choices" yaml:"choices"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
}

// HasChoice reports whether choice is one of the question's options.
func (q Question) HasChoice(choice string) bool {
	for _, c := range q.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

// Result is the final label stored on a user record.
type Result string

const (
	ResultUnset  Result = ""
	ResultPassed Result = "passed"
	ResultFailed Result = "failed"
)

// AnswerEntry is one explicitly answered question in a user's log.
type AnswerEntry struct {
	Question      string `json:"question"`
	GivenAnswer   string `json:"givenAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// UserRecord is the persisted state of one quiz-taker.
type UserRecord struct {
	ID        string        `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Category  string        `json:"category"`
	Correct   int           `json:"correct"`
	Incorrect int           `json:"incorrect"`
	Result    Result        `json:"result"`
	Answers   []AnswerEntry `json:"answers"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with r.
func (r UserRecord) Clone() UserRecord {
	out := r
	if r.Answers != nil {
		out.Answers = make([]AnswerEntry, len(r.Answers))
		copy(out.Answers, r.Answers)
	}
	return out
}

// StartRequest carries what a quiz-taker submits on the setup screen.
type StartRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Category  string `json:"category"`
}

// QuestionView is the client-facing form of a question; it omits the answer.
type QuestionView struct {
	Number  int      `json:"number"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
}

// SessionView is a snapshot of a session pushed to clients.
type SessionView struct {
	SessionID      string        `json:"sessionId"`
	Phase          string        `json:"phase"`
	Category       string        `json:"category"`
	TotalQuestions int           `json:"totalQuestions"`
	CurrentIndex   int           `json:"currentIndex"`
	TimeLeft       int           `json:"timeLeft"`
	Question       *QuestionView `json:"question,omitempty"`
	Correct        int           `json:"correct"`
	Incorrect      int           `json:"incorrect"`
	Result         Result        `json:"result,omitempty"`
	Verdict        string        `json:"verdict,omitempty"`
}
