package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/easycodehow/spark/internal/offline"
	"github.com/easycodehow/spark/internal/ui"
)

// Routes bundles what the router serves besides the memo handlers.
type Routes struct {
	Assets http.Handler
	Worker *offline.Worker
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

func NewRouter(h *Handler, rt Routes, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(log))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Static assets, cache-first
	r.Group(func(r chi.Router) {
		if rt.Worker != nil {
			r.Use(offline.Middleware(rt.Worker))
		}
		r.Handle("/index.html", rt.Assets)
		r.Handle("/manifest.json", rt.Assets)
		r.Handle("/static/*", rt.Assets)
	})

	// Memo page
	r.Get("/", h.HomePage)
	r.Get("/search", h.SearchPage)
	r.Post("/memos", h.SaveMemo)
	r.Get("/memos/{id}", h.OpenMemo)
	r.Post("/draft/star", h.ToggleDraftStar)
	r.Post("/draft/attach", h.AttachImage)
	r.Post("/detail/close", h.Command(ui.CloseDetail{}))
	r.Post("/detail/edit", h.Command(ui.Edit{}))
	r.Post("/detail/delete", h.DeleteMemo)
	r.Post("/detail/copy", h.Command(ui.Copy{}))
	r.Post("/detail/share", h.Command(ui.Share{}))
	r.Post("/filter/important", h.Command(ui.ToggleImportantFilter{}))
	r.Post("/prefs/dark", h.Command(ui.ToggleDarkMode{}))
	r.Post("/prefs/font", h.SetFontSize)
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// REST API
	r.Route("/api/memos", func(r chi.Router) {
		r.Get("/", h.ListMemos)
		r.Post("/", h.CreateMemo)
		r.Get("/export", h.ExportMemos)
		r.Post("/import", h.ImportMemos)
		r.Get("/{id}", h.GetMemo)
		r.Put("/{id}", h.UpdateMemo)
		r.Delete("/{id}", h.DeleteMemoAPI)
	})

	if rt.MCP != nil {
		r.Handle("/mcp", rt.MCP)
	}

	return r
}
