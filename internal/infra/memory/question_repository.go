package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"timed-quiz-service/internal/domain"
)

// QuestionLoader fetches question content from a backing store.
type QuestionLoader interface {
	LoadCategories(ctx context.Context) ([]string, error)
	LoadQuestions(ctx context.Context, category string) ([]domain.Question, error)
}

// categoriesKey is the cache slot for the category list; no real category is empty.
const categoriesKey = ""

// QuestionRepository caches categories and questions with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedEntry
}

type cachedEntry struct {
	categories []string
	questions  []domain.Question
	expiresAt  time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedEntry),
	}
}

func (r *QuestionRepository) Categories(ctx context.Context) ([]string, error) {
	entry, err := r.load(ctx, categoriesKey, func() (cachedEntry, error) {
		categories, err := r.loader.LoadCategories(ctx)
		return cachedEntry{categories: categories}, err
	})
	if err != nil {
		return nil, err
	}
	return entry.categories, nil
}

func (r *QuestionRepository) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	if category == categoriesKey {
		return nil, domain.ErrCategoryRequired
	}
	entry, err := r.load(ctx, category, func() (cachedEntry, error) {
		questions, err := r.loader.LoadQuestions(ctx, category)
		return cachedEntry{questions: questions}, err
	})
	if err != nil {
		return nil, err
	}
	return entry.questions, nil
}

func (r *QuestionRepository) load(ctx context.Context, key string, fetch func() (cachedEntry, error)) (cachedEntry, error) {
	if entry, ok := r.lookup(key); ok {
		return entry, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if entry, ok := r.lookup(key); ok {
			return entry, nil
		}
		entry, err := fetch()
		if err != nil {
			return cachedEntry{}, err
		}
		entry.expiresAt = r.clock().Add(r.ttlWithJitter())

		r.mu.Lock()
		r.cache[key] = entry
		r.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return cachedEntry{}, err
	}
	return result.(cachedEntry), nil
}

func (r *QuestionRepository) lookup(key string) (cachedEntry, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return cachedEntry{}, false
	}
	return entry, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
