package app

import (
	"context"
	"errors"
	"log"
	"time"

	"timed-quiz-service/internal/domain"
)

// startCountdown ticks the session once per TickInterval until it finishes
// or the service closes.
func (s *QuizService) startCountdown(sessionID string) {
	if s.opts.TickInterval <= 0 {
		return
	}
	s.countdowns.Add(1)
	go func() {
		defer s.countdowns.Done()
		ticker := time.NewTicker(s.opts.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.closing:
				return
			case <-ticker.C:
				view, err := s.Tick(context.Background(), sessionID)
				if err != nil {
					if !errors.Is(err, domain.ErrSessionNotFound) {
						log.Printf("countdown for session %s stopped: %v", sessionID, err)
					}
					return
				}
				if view.Phase == string(PhaseFinished) {
					return
				}
			}
		}
	}()
}
