package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	hosts []string
}

func (r *recorder) observe(host string, _ time.Duration) {
	r.mu.Lock()
	r.hosts = append(r.hosts, host)
	r.mu.Unlock()
}

func newTestLimiter(rps float64) (*Limiter, *recorder) {
	l := New(Config{DefaultRPS: rps, DefaultBurst: 1})
	rec := &recorder{}
	l.observe = rec.observe
	return l, rec
}

func TestLimiterSpacesSameHost(t *testing.T) {
	t.Parallel()

	l, rec := newTestLimiter(10)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://webawards.com.au/winners/2019/"))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://webawards.com.au/winners/2018/"))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, []string{"webawards.com.au"}, rec.hosts)
}

func TestLimiterIndependentHosts(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(1)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://webawards.com.au/winners/"))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://web.archive.org/web/2014/"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiterUnlimited(t *testing.T) {
	t.Parallel()

	l, rec := newTestLimiter(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(context.Background(), "https://webawards.com.au/"))
	}
	assert.Empty(t, rec.hosts)
}

func TestLimiterCanceled(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(0.001)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Wait(ctx, "https://webawards.com.au/"))
	cancel()
	require.Error(t, l.Wait(ctx, "https://webawards.com.au/"))
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "webawards.com.au", hostOf("https://webawards.com.au/about/"))
	assert.Equal(t, "unknown", hostOf("not a url"))
	assert.Equal(t, "unknown", hostOf("http://%"))
}
