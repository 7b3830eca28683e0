package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SementesSocial/internal/domain"
)

type fakeAPI struct {
	mu        sync.Mutex
	announced []string
	queries   int
	online    []string
	queryErr  error
}

func (f *fakeAPI) AnnounceOnline(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announced = append(f.announced, userID)
	return nil
}

func (f *fakeAPI) OnlineUsers(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return append([]string{}, f.online...), nil
}

func (f *fakeAPI) set(online []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = online
	f.queryErr = err
}

func (f *fakeAPI) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.announced), f.queries
}

var actor = domain.Actor{ID: "u1", Nome: "Ana"}

func TestRefreshReplacesSnapshot(t *testing.T) {
	api := &fakeAPI{}
	tr := NewTracker(api, actor, time.Hour, nil)

	var notified [][]string
	tr.OnChange = func(online []string) { notified = append(notified, online) }

	api.set([]string{"u2", "u3"}, nil)
	require.NoError(t, tr.Refresh(context.Background()))
	assert.Equal(t, []string{"u2", "u3"}, tr.Online())
	assert.True(t, tr.IsOnline("u2"))

	api.set([]string{"u4"}, nil)
	require.NoError(t, tr.Refresh(context.Background()))
	assert.Equal(t, []string{"u4"}, tr.Online())
	assert.False(t, tr.IsOnline("u2"))
	assert.True(t, tr.IsOnline("u4"))

	assert.Len(t, notified, 2)
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	api := &fakeAPI{}
	tr := NewTracker(api, actor, time.Hour, nil)

	api.set([]string{"u2"}, nil)
	require.NoError(t, tr.Refresh(context.Background()))

	api.set(nil, errors.New("503"))
	assert.Error(t, tr.Refresh(context.Background()))
	assert.Equal(t, []string{"u2"}, tr.Online())
	assert.True(t, tr.IsOnline("u2"))
}

func TestEmptyQueryClearsSnapshot(t *testing.T) {
	api := &fakeAPI{}
	tr := NewTracker(api, actor, time.Hour, nil)

	api.set([]string{"u2"}, nil)
	require.NoError(t, tr.Refresh(context.Background()))
	api.set(nil, nil)
	require.NoError(t, tr.Refresh(context.Background()))

	assert.NotNil(t, tr.Online())
	assert.Empty(t, tr.Online())
}

func TestStartFiresImmediately(t *testing.T) {
	api := &fakeAPI{online: []string{"u7"}}
	tr := NewTracker(api, actor, time.Hour, nil)

	tr.Start(context.Background())
	defer tr.Stop()

	assert.Eventually(t, func() bool {
		a, q := api.counts()
		return a == 1 && q == 1
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return tr.IsOnline("u7") }, time.Second, 5*time.Millisecond)

	api.mu.Lock()
	assert.Equal(t, []string{"u1"}, api.announced)
	api.mu.Unlock()
}

func TestStopTearsDownLoops(t *testing.T) {
	api := &fakeAPI{}
	tr := NewTracker(api, actor, 5*time.Millisecond, nil)

	tr.Start(context.Background())
	assert.Eventually(t, func() bool {
		a, q := api.counts()
		return a >= 3 && q >= 3
	}, time.Second, time.Millisecond)

	tr.Stop()
	a1, q1 := api.counts()
	time.Sleep(30 * time.Millisecond)
	a2, q2 := api.counts()
	assert.Equal(t, a1, a2)
	assert.Equal(t, q1, q2)

	assert.NotPanics(t, tr.Stop)
}

func TestStopWithoutStart(t *testing.T) {
	tr := NewTracker(&fakeAPI{}, actor, 0, nil)
	assert.NotPanics(t, tr.Stop)
	assert.Equal(t, DefaultInterval, tr.interval)
}

func TestParentCancelStopsLoops(t *testing.T) {
	api := &fakeAPI{}
	tr := NewTracker(api, actor, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	tr.Start(ctx)
	cancel()
	tr.Stop()

	a1, q1 := api.counts()
	time.Sleep(20 * time.Millisecond)
	a2, q2 := api.counts()
	assert.Equal(t, a1, a2)
	assert.Equal(t, q1, q2)
}
