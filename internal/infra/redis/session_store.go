package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"timed-quiz-service/internal/app"
)

// SessionStore is a Redis implementation of app.SessionRepository.
// Each session is one JSON value that expires ttl after its last change, so
// abandoned sessions clean themselves up.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *SessionStore) Put(session app.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(context.Background(), s.key(session.ID), data, s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (app.Session, bool) {
	data, err := s.client.Get(context.Background(), s.key(sessionID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("redis: get session %s: %v", sessionID, err)
		}
		return app.Session{}, false
	}
	var session app.Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Printf("redis: decode session %s: %v", sessionID, err)
		return app.Session{}, false
	}
	return session, true
}

func (s *SessionStore) Delete(sessionID string) {
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
