package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"timed-quiz-service/internal/domain"
)

// QuestionLoader fetches question content from a backing store.
type QuestionLoader interface {
	LoadCategories(ctx context.Context) ([]string, error)
	LoadQuestions(ctx context.Context, category string) ([]domain.Question, error)
}

// QuestionRepository caches question content in Redis and falls back to a loader on cache miss.
// Categories are stored as:        SADD quiz:categories {category}...
// Questions are stored as JSON:    SET  quiz:questions:{category} [...]
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) Categories(ctx context.Context) ([]string, error) {
	key := categoriesKey()
	if cached, err := r.client.SMembers(ctx, key).Result(); err == nil && len(cached) > 0 {
		sort.Strings(cached)
		return cached, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, err := r.client.SMembers(ctx, key).Result(); err == nil && len(cached) > 0 {
			sort.Strings(cached)
			return cached, nil
		}
		categories, err := r.loader.LoadCategories(ctx)
		if err != nil {
			return nil, err
		}
		if len(categories) > 0 {
			members := make([]interface{}, len(categories))
			for i, c := range categories {
				members[i] = c
			}
			pipe := r.client.Pipeline()
			pipe.SAdd(ctx, key, members...)
			if ttl := r.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			_, _ = pipe.Exec(ctx)
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (r *QuestionRepository) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	key := questionsKey(category)
	if questions, ok := r.cached(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if questions, ok := r.cached(ctx, key); ok {
			return questions, nil
		}
		questions, err := r.loader.LoadQuestions(ctx, category)
		if err != nil {
			return nil, err
		}
		if len(questions) > 0 {
			if data, err := json.Marshal(questions); err == nil {
				_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
			}
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// cached reads a question list; decode errors are treated as a miss.
func (r *QuestionRepository) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil on a miss; connection errors fall through to the loader too
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func categoriesKey() string {
	return "quiz:categories"
}

func questionsKey(category string) string {
	return "quiz:questions:" + category
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
