// Package offline is a cache-first layer for static assets. A Worker
// pre-caches a fixed manifest, drops caches of older versions and then
// answers asset requests from the cache before trying the network.
package offline

import (
	"net/http"
	"slices"
	"strings"
)

// ResponseType mirrors the Fetch response types. Only basic (same-origin)
// responses are cached.
type ResponseType string

const (
	TypeBasic  ResponseType = "basic"
	TypeCORS   ResponseType = "cors"
	TypeOpaque ResponseType = "opaque"
)

// Response is a fully buffered HTTP response.
type Response struct {
	URL    string       `json:"url"`
	Status int          `json:"status"`
	Header http.Header  `json:"header"`
	Body   []byte       `json:"body"`
	Type   ResponseType `json:"type"`
}

func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Header = make(http.Header, len(r.Header))
	for k, v := range r.Header {
		c.Header[k] = slices.Clone(v)
	}
	c.Body = slices.Clone(r.Body)
	return &c
}

// Cacheable reports whether r may be stored: status 200 and same-origin.
func (r *Response) Cacheable() bool {
	return r != nil && r.Status == http.StatusOK && r.Type == TypeBasic
}

// Serve copies r onto w.
func (r *Response) Serve(w http.ResponseWriter) error {
	h := w.Header()
	for k, v := range r.Header {
		h[k] = slices.Clone(v)
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(r.Body)
	return err
}

// RequestKey is the cache key of a request: path plus query.
func RequestKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}

// AcceptsHTML reports whether the request asks for an HTML document.
func AcceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
