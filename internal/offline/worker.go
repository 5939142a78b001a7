package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrNoResponse    = errors.New("offline: no response")
	ErrNotActive     = errors.New("offline: worker not active")
	ErrInstallFailed = errors.New("offline: install failed")
)

const (
	DefaultVersion     = "spark-v1"
	DefaultOfflinePage = "/index.html"
)

// DefaultManifest is the asset list pre-cached on install.
func DefaultManifest() []string {
	return []string{
		"/index.html",
		"/manifest.json",
		"/static/css/style.css",
		"/static/js/app.js",
		"/static/icons/icon-192x192.svg",
		"/static/icons/icon-512x512.svg",
	}
}

type State int

const (
	StateParsed State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActivated
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	case StateRedundant:
		return "redundant"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Config struct {
	Version       string
	Manifest      []string
	OfflinePage   string
	ScopePrefixes []string
}

func (c Config) withDefaults() Config {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Manifest == nil {
		c.Manifest = DefaultManifest()
	}
	if c.OfflinePage == "" {
		c.OfflinePage = DefaultOfflinePage
	}
	if c.ScopePrefixes == nil {
		c.ScopePrefixes = []string{"/static/"}
	}
	return c
}

// Worker owns one cache version. Lifecycle calls are serialized; Fetch may
// run concurrently once the worker is activated.
type Worker struct {
	cfg     Config
	caches  CacheStorage
	net     Network
	clients *Clients
	log     *zap.Logger

	mu    sync.RWMutex
	state State
}

func NewWorker(cfg Config, caches CacheStorage, net Network, clients *Clients, log *zap.Logger) *Worker {
	if clients == nil {
		clients = NewClients()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		cfg:     cfg.withDefaults(),
		caches:  caches,
		net:     net,
		clients: clients,
		log:     log.Named("offline"),
	}
}

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) Version() string  { return w.cfg.Version }
func (w *Worker) Clients() *Clients { return w.clients }

// InScope reports whether path is an asset the worker answers for.
func (w *Worker) InScope(path string) bool {
	if slices.Contains(w.cfg.Manifest, path) {
		return true
	}
	for _, p := range w.cfg.ScopePrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Install fetches the whole manifest and stores it under the worker's
// version. Nothing is stored unless every entry comes back 200; on failure
// the worker becomes redundant. A successful install activates at once.
func (w *Worker) Install(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateParsed {
		st := w.state
		w.mu.Unlock()
		return fmt.Errorf("offline: install in state %s", st)
	}
	w.state = StateInstalling
	w.mu.Unlock()

	w.log.Info("installing", zap.String("version", w.cfg.Version), zap.Int("assets", len(w.cfg.Manifest)))

	fetched, err := w.fetchManifest(ctx)
	if err == nil {
		err = w.storeAll(ctx, fetched)
	}
	if err != nil {
		w.setState(StateRedundant)
		w.log.Error("install failed", zap.String("version", w.cfg.Version), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}

	w.setState(StateInstalled)
	w.log.Info("installed", zap.String("version", w.cfg.Version))
	return w.Activate(ctx)
}

func (w *Worker) fetchManifest(ctx context.Context) (map[string]*Response, error) {
	fetched := make(map[string]*Response, len(w.cfg.Manifest))
	for _, path := range w.cfg.Manifest {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		resp, err := w.net.Fetch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if resp.Status != http.StatusOK {
			return nil, fmt.Errorf("%s: status %d", path, resp.Status)
		}
		fetched[path] = resp
	}
	return fetched, nil
}

func (w *Worker) storeAll(ctx context.Context, fetched map[string]*Response) error {
	cache, err := w.caches.Open(ctx, w.cfg.Version)
	if err != nil {
		return err
	}
	for _, path := range w.cfg.Manifest {
		if err := cache.Put(ctx, path, fetched[path]); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// Activate drops every cache except the worker's own version and claims all
// registered clients.
func (w *Worker) Activate(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateInstalled {
		st := w.state
		w.mu.Unlock()
		return fmt.Errorf("offline: activate in state %s", st)
	}
	w.state = StateActivating
	w.mu.Unlock()

	names, err := w.caches.Keys(ctx)
	if err != nil {
		w.setState(StateInstalled)
		return fmt.Errorf("offline: list caches: %w", err)
	}
	for _, name := range names {
		if name == w.cfg.Version {
			continue
		}
		if _, err := w.caches.Delete(ctx, name); err != nil {
			w.setState(StateInstalled)
			return fmt.Errorf("offline: delete cache %s: %w", name, err)
		}
		w.log.Info("deleted old cache", zap.String("cache", name))
	}

	claimed := w.clients.Claim(w.cfg.Version)
	w.setState(StateActivated)
	w.log.Info("activated", zap.String("version", w.cfg.Version), zap.Int("claimed", claimed))
	return nil
}

// Fetch answers r cache-first. It returns ErrNotActive before activation,
// leaving the caller to go to the network itself, and ErrNoResponse when
// there is nothing to serve.
func (w *Worker) Fetch(ctx context.Context, r *http.Request) (*Response, Source, error) {
	if w.State() != StateActivated {
		return nil, SourceNone, ErrNotActive
	}

	key := RequestKey(r)
	in := FetchInputs{Request: r}

	cached, ok, err := w.caches.Match(ctx, key)
	if err != nil {
		w.log.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		in.Cached = cached
	} else {
		in.Network, in.NetworkErr = w.net.Fetch(ctx, r)
		if in.NetworkErr != nil && AcceptsHTML(r) {
			if page, ok, _ := w.caches.Match(ctx, w.cfg.OfflinePage); ok {
				in.OfflinePage = page
			}
		}
	}

	d := Decide(in)
	fetchTotal.WithLabelValues(string(d.Source)).Inc()

	if d.CacheWrite != nil {
		if err := w.put(ctx, key, d.CacheWrite); err != nil {
			w.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	switch d.Source {
	case SourceCache:
		w.log.Debug("served from cache", zap.String("key", key))
	case SourceNetwork:
		w.log.Debug("served from network", zap.String("key", key), zap.Int("status", d.Response.Status))
	case SourceOffline:
		w.log.Info("network failed, served offline page", zap.String("key", key), zap.Error(in.NetworkErr))
	}

	if d.Response == nil {
		if in.NetworkErr != nil {
			return nil, SourceNone, fmt.Errorf("%w: %v", ErrNoResponse, in.NetworkErr)
		}
		return nil, SourceNone, ErrNoResponse
	}
	return d.Response, d.Source, nil
}

func (w *Worker) put(ctx context.Context, key string, resp *Response) error {
	cache, err := w.caches.Open(ctx, w.cfg.Version)
	if err != nil {
		return err
	}
	return cache.Put(ctx, key, resp)
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}
