package sqlstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/uptrace/bun"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/sqlstore"
	"timed-quiz-service/internal/infra/sqlstore/migrations"
)

func TestUserStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := sqlstore.NewUserStore(openTestDB(t))

	id, err := store.Create(ctx, domain.UserRecord{FirstName: "Ada", LastName: "Lovelace", Category: "math"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rec, found, err := store.FindByName(ctx, "Ada", "Lovelace")
	if err != nil || !found {
		t.Fatalf("find: found=%v err=%v", found, err)
	}
	if rec.ID != id || rec.Result != domain.ResultUnset || len(rec.Answers) != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}

	rec.Correct = 28
	rec.Incorrect = 22
	rec.Result = domain.ResultPassed
	rec.Answers = []domain.AnswerEntry{{Question: "q1", GivenAnswer: "4", CorrectAnswer: "4", IsCorrect: true}}
	if err := store.Update(ctx, id, rec); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Correct != 28 || got.Incorrect != 22 || got.Result != domain.ResultPassed {
		t.Fatalf("unexpected stored score %+v", got)
	}
	if len(got.Answers) != 1 || !got.Answers[0].IsCorrect || got.Answers[0].GivenAnswer != "4" {
		t.Fatalf("unexpected answer log %+v", got.Answers)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("created_at changed on update: %v -> %v", rec.CreatedAt, got.CreatedAt)
	}
}

func TestUserStoreRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	store := sqlstore.NewUserStore(openTestDB(t))

	rec := domain.UserRecord{FirstName: "Ada", LastName: "Lovelace", Category: "math"}
	if _, err := store.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, rec); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected duplicate identity, got %v", err)
	}
}

func TestUserStoreMissingRecord(t *testing.T) {
	ctx := context.Background()
	store := sqlstore.NewUserStore(openTestDB(t))

	if _, found, err := store.FindByName(ctx, "No", "One"); err != nil || found {
		t.Fatalf("expected miss, found=%v err=%v", found, err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Update(ctx, "missing", domain.UserRecord{FirstName: "A", LastName: "B"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestQuestionStoreInsertAndLoad(t *testing.T) {
	ctx := context.Background()
	store := sqlstore.NewQuestionStore(openTestDB(t))

	questions := []domain.Question{
		{ID: "m2", Category: "math", Prompt: "3 * 3?", Choices: []string{"6", "9"}, CorrectAnswer: "9"},
		{ID: "m1", Category: "math", Prompt: "2 + 2?", Choices: []string{"3", "4"}, CorrectAnswer: "4"},
		{ID: "g1", Category: "go", Prompt: "Zero map?", Choices: []string{"nil", "{}"}, CorrectAnswer: "nil"},
	}
	if err := store.Insert(ctx, questions); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// Re-seeding updates rows in place.
	questions[1].Prompt = "What is 2 + 2?"
	if err := store.Insert(ctx, questions); err != nil {
		t.Fatalf("reinsert: %v", err)
	}

	categories, err := store.LoadCategories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "go" || categories[1] != "math" {
		t.Fatalf("unexpected categories %v", categories)
	}

	math, err := store.LoadQuestions(ctx, "math")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(math) != 2 || math[0].ID != "m1" || math[0].Prompt != "What is 2 + 2?" {
		t.Fatalf("unexpected questions %+v", math)
	}
	if len(math[1].Choices) != 2 || math[1].Choices[1] != "9" {
		t.Fatalf("choices not round-tripped: %+v", math[1])
	}

	none, err := store.LoadQuestions(ctx, "history")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty category, got %v (%v)", none, err)
	}
}

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := migrations.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
