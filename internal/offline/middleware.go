package offline

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const (
	ClientCookie = "spark_client"
	SourceHeader = "X-Spark-Cache"
)

// Middleware routes in-scope GET requests through w. Other requests, and
// every request before activation, go to next untouched.
func Middleware(w *Worker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || !w.InScope(r.URL.Path) {
				next.ServeHTTP(rw, r)
				return
			}

			var raw string
			if c, err := r.Cookie(ClientCookie); err == nil {
				raw = c.Value
			}
			if _, ok := w.Clients().Register(raw); !ok {
				http.SetCookie(rw, &http.Cookie{
					Name:     ClientCookie,
					Value:    w.Clients().Mint().String(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			resp, src, err := w.Fetch(r.Context(), r)
			switch {
			case errors.Is(err, ErrNotActive):
				next.ServeHTTP(rw, r)
				return
			case err != nil:
				w.log.Warn("no response", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(rw, http.StatusText(http.StatusGatewayTimeout), http.StatusGatewayTimeout)
				return
			}

			rw.Header().Set(SourceHeader, string(src))
			if err := resp.Serve(rw); err != nil {
				w.log.Debug("write response", zap.String("path", r.URL.Path), zap.Error(err))
			}
		})
	}
}
