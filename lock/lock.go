// Package lock serialises approvals for the same employee. RedisLock is used
// when several server instances share a database; LocalLock otherwise.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Locker is a try-lock with expiry. Lock returns ok == false and a nil error
// when the key is already held. The returned token identifies this holder;
// Unlock only releases the key while it is still held under that token, so a
// holder that outlived its ttl cannot release someone else's lock.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

func newToken() string { return uuid.NewString() }

type localEntry struct {
	token   string
	expires time.Time
}

// LocalLock is an in-process Locker.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]localEntry
	now  func() time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]localEntry), now: time.Now}
}

func (l *LocalLock) Lock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return "", false, nil
	}
	token := newToken()
	l.held[key] = localEntry{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *LocalLock) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.held[key]; ok && e.token == token {
		delete(l.held, key)
	}
	return nil
}
