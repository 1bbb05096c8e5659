package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
	"timed-quiz-service/internal/domain"
)

// QuestionRow is the questions table. Choices are stored as JSON.
type QuestionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID            string   `bun:"id,pk"`
	Category      string   `bun:"category,notnull"`
	Prompt        string   `bun:"prompt,notnull"`
	Choices       []string `bun:"choices,notnull"`
	CorrectAnswer string   `bun:"correct_answer,notnull"`
}

func (r QuestionRow) toDomain() domain.Question {
	return domain.Question{
		ID:            r.ID,
		Category:      r.Category,
		Prompt:        r.Prompt,
		Choices:       r.Choices,
		CorrectAnswer: r.CorrectAnswer,
	}
}

// UserRow is the user_records table; (first_name, last_name) carries a unique index.
type UserRow struct {
	bun.BaseModel `bun:"table:user_records,alias:u"`

	ID        string               `bun:"id,pk"`
	FirstName string               `bun:"first_name,notnull"`
	LastName  string               `bun:"last_name,notnull"`
	Category  string               `bun:"category,notnull"`
	Correct   int                  `bun:"correct,notnull"`
	Incorrect int                  `bun:"incorrect,notnull"`
	Result    string               `bun:"result,notnull"`
	Answers   []domain.AnswerEntry `bun:"answers,notnull"`
	CreatedAt time.Time            `bun:"created_at,notnull"`
	UpdatedAt time.Time            `bun:"updated_at,notnull"`
}

func newUserRow(rec domain.UserRecord) *UserRow {
	answers := rec.Answers
	if answers == nil {
		answers = []domain.AnswerEntry{}
	}
	return &UserRow{
		ID:        rec.ID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Category:  rec.Category,
		Correct:   rec.Correct,
		Incorrect: rec.Incorrect,
		Result:    string(rec.Result),
		Answers:   answers,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func (r UserRow) toDomain() domain.UserRecord {
	return domain.UserRecord{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Category:  r.Category,
		Correct:   r.Correct,
		Incorrect: r.Incorrect,
		Result:    domain.Result(r.Result),
		Answers:   r.Answers,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
