package offline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeNetwork answers from a fixed table and counts calls.
type fakeNetwork struct {
	mu      sync.Mutex
	pages   map[string]*Response
	down    bool
	calls   int
	failing map[string]bool
}

func newFakeNetwork() *fakeNetwork {
	n := &fakeNetwork{pages: make(map[string]*Response), failing: make(map[string]bool)}
	for _, p := range DefaultManifest() {
		n.pages[p] = &Response{URL: p, Status: http.StatusOK, Body: []byte("asset " + p), Type: TypeBasic}
	}
	return n
}

func (n *fakeNetwork) Fetch(_ context.Context, r *http.Request) (*Response, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++

	if n.down || n.failing[r.URL.Path] {
		return nil, errors.New("network unreachable")
	}
	if resp, ok := n.pages[RequestKey(r)]; ok {
		return resp.Clone(), nil
	}
	return &Response{URL: RequestKey(r), Status: http.StatusNotFound, Type: TypeBasic}, nil
}

func (n *fakeNetwork) setDown(down bool) {
	n.mu.Lock()
	n.down = down
	n.mu.Unlock()
}

func (n *fakeNetwork) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func htmlRequest(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("Accept", "text/html,application/xhtml+xml")
	return r
}

func installedWorker(t *testing.T) (*Worker, *MemoryCacheStorage, *fakeNetwork) {
	t.Helper()
	caches := NewMemoryCacheStorage()
	net := newFakeNetwork()
	w := NewWorker(Config{}, caches, net, nil, zap.NewNop())
	require.NoError(t, w.Install(context.Background()))
	return w, caches, net
}

func TestWorker_InstallCachesManifestAndActivates(t *testing.T) {
	ctx := context.Background()
	w, caches, _ := installedWorker(t)

	assert.Equal(t, StateActivated, w.State())

	names, err := caches.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultVersion}, names)

	cache, err := caches.Open(ctx, DefaultVersion)
	require.NoError(t, err)
	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, DefaultManifest(), keys)
}

func TestWorker_InstallIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	caches := NewMemoryCacheStorage()
	net := newFakeNetwork()
	net.failing["/static/js/app.js"] = true

	w := NewWorker(Config{}, caches, net, nil, zap.NewNop())
	err := w.Install(ctx)

	require.ErrorIs(t, err, ErrInstallFailed)
	assert.Equal(t, StateRedundant, w.State())

	_, ok, err := caches.Match(ctx, "/index.html")
	require.NoError(t, err)
	assert.False(t, ok, "nothing is cached when one asset fails")

	_, _, err = w.Fetch(ctx, htmlRequest("/index.html"))
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestWorker_InstallRejectsNon200(t *testing.T) {
	net := newFakeNetwork()
	delete(net.pages, "/manifest.json")

	w := NewWorker(Config{}, NewMemoryCacheStorage(), net, nil, zap.NewNop())
	err := w.Install(context.Background())

	require.ErrorIs(t, err, ErrInstallFailed)
	assert.Contains(t, err.Error(), "status 404")
}

func TestWorker_ActivateDropsOldCaches(t *testing.T) {
	ctx := context.Background()
	caches := NewMemoryCacheStorage()
	old, err := caches.Open(ctx, "spark-v0")
	require.NoError(t, err)
	require.NoError(t, old.Put(ctx, "/index.html", &Response{Status: 200, Body: []byte("stale"), Type: TypeBasic}))

	clients := NewClients()
	id, ok := clients.Register(uuid.NewString())
	require.True(t, ok)

	w := NewWorker(Config{}, caches, newFakeNetwork(), clients, zap.NewNop())
	require.NoError(t, w.Install(ctx))

	names, err := caches.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultVersion}, names)
	assert.Equal(t, DefaultVersion, clients.Controller(id))

	resp, src, err := w.Fetch(ctx, htmlRequest("/index.html"))
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, "asset /index.html", string(resp.Body))
}

func TestWorker_LifecycleOrder(t *testing.T) {
	ctx := context.Background()
	w := NewWorker(Config{}, NewMemoryCacheStorage(), newFakeNetwork(), nil, zap.NewNop())

	assert.Equal(t, StateParsed, w.State())
	assert.Error(t, w.Activate(ctx), "cannot activate before install")

	require.NoError(t, w.Install(ctx))
	assert.Error(t, w.Install(ctx), "install runs once")
}

func TestWorker_CachedEntryAndOfflineFallback(t *testing.T) {
	ctx := context.Background()
	w, caches, net := installedWorker(t)

	before := net.callCount()
	resp, src, err := w.Fetch(ctx, htmlRequest("/index.html"))
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, "asset /index.html", string(resp.Body))
	assert.Equal(t, before, net.callCount(), "cache hit must not touch the network")

	net.setDown(true)
	resp, src, err = w.Fetch(ctx, htmlRequest("/static/notes.html"))
	require.NoError(t, err)
	assert.Equal(t, SourceOffline, src)
	assert.Equal(t, "asset /index.html", string(resp.Body))

	_, _, err = w.Fetch(ctx, httptest.NewRequest(http.MethodGet, "/static/img/logo.png", nil))
	assert.ErrorIs(t, err, ErrNoResponse)

	_, err = caches.Delete(ctx, DefaultVersion)
	require.NoError(t, err)
	_, _, err = w.Fetch(ctx, htmlRequest("/index.html"))
	assert.ErrorIs(t, err, ErrNoResponse, "no offline page once the cache is gone")
}

func TestWorker_MissIsCachedOnlyWhenValid(t *testing.T) {
	ctx := context.Background()
	w, caches, net := installedWorker(t)

	net.pages["/static/extra.css"] = &Response{Status: http.StatusOK, Body: []byte("body{}"), Type: TypeBasic}
	net.pages["/static/cdn.css"] = &Response{Status: http.StatusOK, Body: []byte("cdn"), Type: TypeCORS}

	_, src, err := w.Fetch(ctx, httptest.NewRequest(http.MethodGet, "/static/extra.css", nil))
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)

	calls := net.callCount()
	_, src, err = w.Fetch(ctx, httptest.NewRequest(http.MethodGet, "/static/extra.css", nil))
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, calls, net.callCount())

	resp, src, err := w.Fetch(ctx, httptest.NewRequest(http.MethodGet, "/static/missing.css", nil))
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	_, _, err = w.Fetch(ctx, httptest.NewRequest(http.MethodGet, "/static/cdn.css", nil))
	require.NoError(t, err)

	for _, key := range []string{"/static/missing.css", "/static/cdn.css"} {
		_, ok, err := caches.Match(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestWorker_ConcurrentFetches(t *testing.T) {
	ctx := context.Background()
	w, _, net := installedWorker(t)
	net.pages["/static/shared.js"] = &Response{Status: http.StatusOK, Body: []byte("shared"), Type: TypeBasic}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _, err := w.Fetch(ctx, httptest.NewRequest(http.MethodGet, "/static/shared.js", nil))
			assert.NoError(t, err)
			assert.Equal(t, "shared", string(resp.Body))
		}()
	}
	wg.Wait()
}

func TestWorker_InScope(t *testing.T) {
	w := NewWorker(Config{}, NewMemoryCacheStorage(), newFakeNetwork(), nil, zap.NewNop())

	assert.True(t, w.InScope("/index.html"))
	assert.True(t, w.InScope("/manifest.json"))
	assert.True(t, w.InScope("/static/anything.txt"))
	assert.False(t, w.InScope("/"))
	assert.False(t, w.InScope("/memos/1"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "activated", StateActivated.String())
	assert.Equal(t, "redundant", StateRedundant.String())
	assert.Equal(t, "state(42)", State(42).String())
}
