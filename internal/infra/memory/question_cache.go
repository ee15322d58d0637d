package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"peer-challenge-service/internal/domain"
)

// QuestionCache caches candidate pools per filter with TTL to avoid
// repeated bank hits when the same configuration is popular. Lookups for
// a cold filter collapse onto a single backing query.
type QuestionCache struct {
	source questionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedPool
}

type cachedPool struct {
	pool      []domain.BankQuestion
	expiresAt time.Time
}

type questionSource interface {
	SelectQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.BankQuestion, error)
}

func NewQuestionCache(source questionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPool),
	}
}

func (c *QuestionCache) SelectQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.BankQuestion, error) {
	key := filterKey(filter)
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return copyPool(entry.pool), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.pool, nil
		}
		c.mu.RUnlock()

		pool, err := c.source.SelectQuestions(ctx, filter)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = cachedPool{pool: pool, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return copyPool(result.([]domain.BankQuestion)), nil
}

func filterKey(f domain.QuestionFilter) string {
	return fmt.Sprintf("%s|%s|%s|%s", f.Subject, f.Lesson, f.ExamFilter, f.Difficulty)
}

func copyPool(pool []domain.BankQuestion) []domain.BankQuestion {
	out := make([]domain.BankQuestion, len(pool))
	copy(out, pool)
	return out
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
