package realtime

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu       sync.Mutex
	written  []any
	writeErr error
	closed   bool
}

func (f *fakeSession) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeSession) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) messages() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.written...)
}

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterAndIsOnline(t *testing.T) {
	hub := newTestHub()
	require.False(t, hub.IsOnline("u1"))

	id := hub.Register("u1", &fakeSession{})
	require.NotEmpty(t, id)
	assert.True(t, hub.IsOnline("u1"))
	assert.Equal(t, 1, hub.Online())
}

func TestSecondSessionEvictsFirstAsPushTarget(t *testing.T) {
	hub := newTestHub()
	first := &fakeSession{}
	second := &fakeSession{}

	hub.Register("u1", first)
	hub.Register("u1", second)

	require.True(t, hub.Push("u1", "hello"))
	assert.Empty(t, first.messages(), "evicted session must not receive pushes")
	assert.Equal(t, []any{"hello"}, second.messages())
}

func TestUnregisterOnlyDropsCurrentSession(t *testing.T) {
	hub := newTestHub()
	oldID := hub.Register("u1", &fakeSession{})
	newID := hub.Register("u1", &fakeSession{})

	// the stale connection closing late must not evict its replacement
	hub.Unregister("u1", oldID)
	assert.True(t, hub.IsOnline("u1"))

	hub.Unregister("u1", newID)
	assert.False(t, hub.IsOnline("u1"))
}

func TestPushOfflineIsNotAnError(t *testing.T) {
	hub := newTestHub()
	assert.False(t, hub.Push("nobody", "hello"))
}

func TestPushSwallowsWriteErrors(t *testing.T) {
	hub := newTestHub()
	hub.Register("u1", &fakeSession{writeErr: errors.New("stale handle")})

	// a broken socket is logged, never propagated
	assert.False(t, hub.Push("u1", "hello"))
	assert.True(t, hub.IsOnline("u1"))
}

func TestBroadcastReachesAllSessions(t *testing.T) {
	hub := newTestHub()
	a := &fakeSession{}
	b := &fakeSession{}
	broken := &fakeSession{writeErr: errors.New("gone")}
	hub.Register("a", a)
	hub.Register("b", b)
	hub.Register("c", broken)

	hub.Broadcast("announcement")

	assert.Equal(t, []any{"announcement"}, a.messages())
	assert.Equal(t, []any{"announcement"}, b.messages())
	assert.Empty(t, broken.messages())
}

func TestConcurrentRegisterAndPush(t *testing.T) {
	hub := newTestHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Register("u1", &fakeSession{})
		}()
		go func() {
			defer wg.Done()
			hub.Push("u1", "x")
		}()
	}
	wg.Wait()
	assert.True(t, hub.IsOnline("u1"))
}
