package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"timed-quiz-service/internal/domain"
)

// QuestionStore reads and seeds the questions table.
type QuestionStore struct {
	db *bun.DB
}

func NewQuestionStore(db *bun.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) LoadCategories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	err := s.db.NewSelect().
		Model((*QuestionRow)(nil)).
		Column("category").
		Distinct().
		Order("category ASC").
		Scan(ctx, &categories)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return categories, nil
}

func (s *QuestionStore) LoadQuestions(ctx context.Context, category string) ([]domain.Question, error) {
	var rows []QuestionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("category = ?", category).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.toDomain())
	}
	return questions, nil
}

// Insert upserts questions by ID; questions without an ID get a fresh one.
func (s *QuestionStore) Insert(ctx context.Context, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	rows := make([]QuestionRow, 0, len(questions))
	for _, q := range questions {
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, QuestionRow{
			ID:            id,
			Category:      q.Category,
			Prompt:        q.Prompt,
			Choices:       q.Choices,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("category = EXCLUDED.category").
		Set("prompt = EXCLUDED.prompt").
		Set("choices = EXCLUDED.choices").
		Set("correct_answer = EXCLUDED.correct_answer").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}
