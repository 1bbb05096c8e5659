package memory

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadQuestionFile(t *testing.T) {
	path := writeFile(t, `questions:
  - category: go
    prompt: "Which keyword starts a goroutine?"
    choices: ["go", "async", "spawn"]
    correctAnswer: go
  - id: custom
    category: go
    prompt: "Which type is a channel?"
    choices: ["chan int", "[]int"]
    correctAnswer: chan int
`)
	questions, err := LoadQuestionFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].ID != "go-1" {
		t.Fatalf("expected generated id, got %q", questions[0].ID)
	}
	if questions[1].ID != "custom" || questions[1].CorrectAnswer != "chan int" {
		t.Fatalf("unexpected second question %+v", questions[1])
	}
}

func TestLoadQuestionFileRejectsUnknownAnswer(t *testing.T) {
	path := writeFile(t, `questions:
  - category: go
    prompt: "Pick one"
    choices: ["a", "b"]
    correctAnswer: c
`)
	if _, err := LoadQuestionFile(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}
