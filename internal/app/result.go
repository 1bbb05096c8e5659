package app

import "timed-quiz-service/internal/domain"

const (
	verdictPassed = "Congratulations! You passed the test."
	verdictFailed = "Unfortunately, you did not pass the test."
)

// passMarks maps a quiz length to the minimum correct answers needed to pass.
// Lengths missing from the table always fail.
var passMarks = map[int]int{
	50: 28,
	30: 18,
}

// DetermineResult applies the pass threshold for a quiz of total questions.
func DetermineResult(total, correct int) domain.Result {
	mark, ok := passMarks[total]
	if ok && correct >= mark {
		return domain.ResultPassed
	}
	return domain.ResultFailed
}

// Verdict returns the message shown when a session finishes.
func Verdict(result domain.Result) string {
	if result == domain.ResultPassed {
		return verdictPassed
	}
	return verdictFailed
}
