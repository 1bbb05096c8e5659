package domain

import "errors"

var (
	// ErrDuplicateIdentity is returned when a record with the same first and last name exists.
	ErrDuplicateIdentity = errors.New("a user with this first and last name already exists")
	// ErrNameRequired is returned when first or last name is blank.
	ErrNameRequired = errors.New("first and last name are required")
	// ErrCategoryRequired is returned when no category was selected.
	ErrCategoryRequired = errors.New("category is required")
	// ErrNoQuestions indicates the selected category has no questions.
	ErrNoQuestions = errors.New("no questions in category")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotStarted is returned for events that need an active session.
	ErrSessionNotStarted = errors.New("quiz session not started")
	// ErrSessionStarted is returned when starting a session twice.
	ErrSessionStarted = errors.New("quiz session already started")
	// ErrSessionFinished is returned for answers after the last question.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrChoiceNotFound indicates a submitted choice is not an option of the current question.
	ErrChoiceNotFound = errors.New("choice not found")
	// ErrUserNotFound indicates an update targeted an unknown record identity.
	ErrUserNotFound = errors.New("user record not found")
)
