package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultLoginAttempts = 5
	defaultLoginWindow   = 15 * time.Minute
	throttleCacheSize    = 10000
)

// loginThrottle считает неудачные входы по имени пользователя.
// Счётчик живёт window с момента последней неудачи.
type loginThrottle struct {
	mu       sync.Mutex // Get+Add в Fail должны идти одним шагом
	failures *expirable.LRU[string, int]
	limit    int
}

func newLoginThrottle(limit int, window time.Duration) *loginThrottle {
	return &loginThrottle{
		failures: expirable.NewLRU[string, int](throttleCacheSize, nil, window),
		limit:    limit,
	}
}

func (t *loginThrottle) Blocked(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.failures.Get(username)
	return ok && n >= t.limit
}

func (t *loginThrottle) Fail(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.failures.Get(username)
	t.failures.Add(username, n+1)
}

func (t *loginThrottle) Reset(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures.Remove(username)
}
