package web

import (
	"bytes"
	"io/fs"
	"net/http"
	"path"
	"time"
)

// Assets serves the embedded asset tree: index.html and manifest.json at the
// root and everything under /static/. index.html is served as a file, not
// redirected to /, so it can be cached as the offline page.
func Assets(fsys fs.FS) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /index.html", serveFile(fsys, "index.html"))
	mux.HandleFunc("GET /manifest.json", serveFile(fsys, "manifest.json"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(fsys))))
	return mux
}

func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		var mod time.Time
		if info, err := fs.Stat(fsys, name); err == nil {
			mod = info.ModTime()
		}
		if path.Ext(name) == ".json" {
			w.Header().Set("Content-Type", "application/manifest+json")
		}
		http.ServeContent(w, r, name, mod, bytes.NewReader(b))
	}
}
