package offline

import "net/http"

// Source names where a served response came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
	SourceOffline Source = "offline"
	SourceNone    Source = "none"
)

// FetchInputs is everything a fetch decision depends on. Network and
// NetworkErr are ignored when Cached is set.
type FetchInputs struct {
	Request     *http.Request
	Cached      *Response
	Network     *Response
	NetworkErr  error
	OfflinePage *Response
}

// Decision is the outcome of one fetch. CacheWrite, when set, must be stored
// under the request key before or after serving Response.
type Decision struct {
	Response   *Response
	CacheWrite *Response
	Source     Source
}

// Decide applies cache-first with network fallback:
//
//   - a cache hit is served as is;
//   - a network 200 of type basic is served and written to the cache;
//   - any other network response is served without caching;
//   - a network failure on an HTML request serves the offline page;
//   - otherwise there is nothing to serve.
func Decide(in FetchInputs) Decision {
	if in.Cached != nil {
		return Decision{Response: in.Cached, Source: SourceCache}
	}

	if in.NetworkErr == nil && in.Network != nil {
		d := Decision{Response: in.Network, Source: SourceNetwork}
		if in.Network.Cacheable() {
			d.CacheWrite = in.Network.Clone()
		}
		return d
	}

	if in.Request != nil && AcceptsHTML(in.Request) && in.OfflinePage != nil {
		return Decision{Response: in.OfflinePage, Source: SourceOffline}
	}
	return Decision{Source: SourceNone}
}
