package corepool

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"corepool-exporter/internal/components/chrono"
	"corepool-exporter/internal/components/telemetry"
	"corepool-exporter/internal/corepool/corepooltest"
)

const (
	testUsername = "farmer@example.com"
	testPassword = "hunter2"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeTimer fires immediately and remembers every delay it was asked to wait.
type fakeTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{c: make(chan time.Time, 1)}
}

func (t *fakeTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	t.c <- testNow
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time {
	return t.c
}

func (t *fakeTimer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.waits...)
}

// sequentialIdentity hands out "test-agent/1", "test-agent/2", ...
func sequentialIdentity() func() map[string]string {
	var mu sync.Mutex
	n := 0
	return func() map[string]string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return map[string]string{
			"User-Agent":      fmt.Sprintf("test-agent/%d", n),
			"Accept":          "text/html",
			"Accept-Language": "en-US,en;q=0.9",
		}
	}
}

func newTestFactory(pool *corepooltest.FakePool, policy RetryPolicy, tel telemetry.API) ClientFactory {
	return NewClientFactory(
		pool.URL(),
		ClientOptions{Timeout: 5 * time.Second},
		policy,
		chrono.FixedTime{At: testNow},
		tel,
	).WithIdentity(sequentialIdentity())
}

// memoryStore is a SessionStore that keeps everything in memory.
type memoryStore struct {
	client  *ClientState
	cookies CookieJar

	clientSaves int
	cookieSaves int
}

func (s *memoryStore) LoadClient() (ClientState, error) {
	if s.client == nil {
		return ClientState{}, ErrNotFound
	}
	return *s.client, nil
}

func (s *memoryStore) SaveClient(state ClientState) error {
	s.clientSaves++
	s.client = &state
	return nil
}

func (s *memoryStore) LoadCookies() (CookieJar, error) {
	if s.cookies == nil {
		return nil, ErrNotFound
	}
	return s.cookies, nil
}

func (s *memoryStore) SaveCookies(jar CookieJar) error {
	s.cookieSaves++
	s.cookies = jar
	return nil
}

func newTestPool(t *testing.T) *corepooltest.FakePool {
	return corepooltest.NewFakePool(t, testUsername, testPassword)
}
