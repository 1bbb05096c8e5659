package memory

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
	"timed-quiz-service/internal/domain"
)

// StaticQuestionLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

// questionFile is the YAML layout accepted by LoadQuestionFile.
type questionFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// LoadQuestionFile reads questions from a YAML file.
func LoadQuestionFile(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file questionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, q := range file.Questions {
		if q.ID == "" {
			file.Questions[i].ID = fmt.Sprintf("%s-%d", q.Category, i+1)
		}
		if !q.HasChoice(q.CorrectAnswer) {
			return nil, fmt.Errorf("question %d (%q): correct answer is not one of the choices", i+1, q.Prompt)
		}
	}
	return file.Questions, nil
}

func (l *StaticQuestionLoader) LoadCategories(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, q := range l.questions {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		categories = append(categories, q.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, category string) ([]domain.Question, error) {
	questions := make([]domain.Question, 0)
	for _, q := range l.questions {
		if q.Category == category {
			questions = append(questions, q)
		}
	}
	return questions, nil
}
