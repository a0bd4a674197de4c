package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginThrottle_ConcurrentFailures(t *testing.T) {
	th := newLoginThrottle(5, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			th.Fail("alice")
		}()
	}
	wg.Wait()

	n, ok := th.failures.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, 200, n)
	assert.True(t, th.Blocked("alice"))
	assert.False(t, th.Blocked("bob"))

	th.Reset("alice")
	assert.False(t, th.Blocked("alice"))
}

func TestLoginThrottle_BlocksAtLimit(t *testing.T) {
	th := newLoginThrottle(3, time.Minute)
	for i := 0; i < 2; i++ {
		th.Fail("alice")
	}
	assert.False(t, th.Blocked("alice"))
	th.Fail("alice")
	assert.True(t, th.Blocked("alice"))
}
