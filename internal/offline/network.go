package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Network performs a request against the asset origin. An error means the
// network was unreachable; any HTTP status, including 5xx, is a response.
type Network interface {
	Fetch(ctx context.Context, r *http.Request) (*Response, error)
}

// HandlerNetwork serves requests from an in-process handler, typically the
// embedded static file server.
type HandlerNetwork struct {
	Handler http.Handler
}

func (n HandlerNetwork) Fetch(ctx context.Context, r *http.Request) (*Response, error) {
	req := r.Clone(ctx)
	req.Body = http.NoBody
	rec := newRecorder()
	n.Handler.ServeHTTP(rec, req)

	return &Response{
		URL:    RequestKey(r),
		Status: rec.status,
		Header: rec.header,
		Body:   rec.body.Bytes(),
		Type:   TypeBasic,
	}, nil
}

type recorder struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

func (r *recorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(b)
}

// HTTPNetwork fetches assets from a remote origin. Transport failures trip a
// circuit breaker; while it is open every fetch fails fast.
type HTTPNetwork struct {
	origin *url.URL
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	self   string
}

// NewHTTPNetwork targets origin. self is the host the app is served from;
// responses from any other host are typed cors and never cached.
func NewHTTPNetwork(origin, self string, log *zap.Logger) (*HTTPNetwork, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("offline: parse asset origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("offline: asset origin %q is not absolute", origin)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "asset-origin",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	if self == "" {
		self = u.Host
	}
	return &HTTPNetwork{
		origin: u,
		client: &http.Client{Timeout: 10 * time.Second},
		cb:     cb,
		self:   self,
	}, nil
}

func (n *HTTPNetwork) Fetch(ctx context.Context, r *http.Request) (*Response, error) {
	target := n.origin.ResolveReference(&url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery})

	out, err := n.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return nil, err
		}
		if accept := r.Header.Get("Accept"); accept != "" {
			req.Header.Set("Accept", accept)
		}

		res, err := n.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}

		typ := TypeBasic
		if res.Request != nil && res.Request.URL.Host != n.self {
			typ = TypeCORS
		}
		return &Response{
			URL:    RequestKey(r),
			Status: res.StatusCode,
			Header: res.Header.Clone(),
			Body:   body,
			Type:   typ,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("offline: fetch %s: %w", target, err)
	}
	return out.(*Response), nil
}
