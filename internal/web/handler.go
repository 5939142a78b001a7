// Package web serves the memo page, the JSON API and the static assets.
package web

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/easycodehow/spark/internal/memos"
	"github.com/easycodehow/spark/internal/ui"
	"github.com/easycodehow/spark/views/models"
	"github.com/easycodehow/spark/views/pages"
)

const maxImportBytes = 10 << 20

type Handler struct {
	ctrl  *ui.Controller
	store *memos.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewHandler(ctrl *ui.Controller, store *memos.Store, log *zap.Logger) *Handler {
	return &Handler{ctrl: ctrl, store: store, log: log, now: time.Now}
}

// --- Page handlers ---

// HomePage handles GET /
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r)
}

// OpenMemo handles GET /memos/{id}
func (h *Handler) OpenMemo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, found := h.store.Get(id); !found {
		http.NotFound(w, r)
		return
	}
	if !h.dispatch(w, r, ui.OpenDetail{ID: id}) {
		return
	}
	h.render(w, r)
}

// SearchPage handles GET /search
func (h *Handler) SearchPage(w http.ResponseWriter, r *http.Request) {
	if !h.dispatch(w, r, ui.Search{Keyword: r.URL.Query().Get("q")}) {
		return
	}
	h.render(w, r)
}

// SaveMemo handles POST /memos
func (h *Handler) SaveMemo(w http.ResponseWriter, r *http.Request) {
	h.withDraft(w, r, ui.Save{})
}

// ToggleDraftStar handles POST /draft/star
func (h *Handler) ToggleDraftStar(w http.ResponseWriter, r *http.Request) {
	h.withDraft(w, r, ui.ToggleStar{})
}

// AttachImage handles POST /draft/attach
func (h *Handler) AttachImage(w http.ResponseWriter, r *http.Request) {
	h.withDraft(w, r, ui.AttachImage{})
}

// withDraft stores the posted draft before running cmd, so text typed since
// the last render is not lost.
func (h *Handler) withDraft(w http.ResponseWriter, r *http.Request, cmd ui.Command) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	draft := ui.SetDraft{
		Content:   r.PostForm.Get("content"),
		Important: r.PostForm.Get("important") == "true",
	}
	if !h.dispatch(w, r, draft) || !h.dispatch(w, r, cmd) {
		return
	}
	h.redirectHome(w, r)
}

// Command returns a handler that runs a form-less command and redirects home.
func (h *Handler) Command(cmd ui.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.dispatch(w, r, cmd) {
			h.redirectHome(w, r)
		}
	}
}

// DeleteMemo handles POST /detail/delete
func (h *Handler) DeleteMemo(w http.ResponseWriter, r *http.Request) {
	confirmed := r.FormValue("confirm") == "true"
	if h.dispatch(w, r, ui.Delete{Confirmed: confirmed}) {
		h.redirectHome(w, r)
	}
}

// SetFontSize handles POST /prefs/font
func (h *Handler) SetFontSize(w http.ResponseWriter, r *http.Request) {
	if h.dispatch(w, r, ui.SetFontSize{Size: r.FormValue("size")}) {
		h.redirectHome(w, r)
	}
}

// Export handles GET /export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	effects, err := h.ctrl.Dispatch(r.Context(), ui.Export{Now: h.now()})
	if err != nil {
		h.log.Error("failed to export memos", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	for _, e := range effects {
		if d, ok := e.(ui.Download); ok {
			h.download(w, d)
			return
		}
	}
	h.redirectHome(w, r)
}

// Import handles POST /import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var data []byte
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		h.log.Warn("import without file", zap.Error(err))
	} else {
		defer file.Close()
		if data, err = io.ReadAll(file); err != nil {
			h.log.Warn("failed to read import file", zap.Error(err))
		}
	}

	// unreadable uploads reach the controller as empty data and surface as
	// an import failure message
	if h.dispatch(w, r, ui.Import{Data: data}) {
		h.redirectHome(w, r)
	}
}

// --- Helper methods ---

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, cmd ui.Command) bool {
	if _, err := h.ctrl.Dispatch(r.Context(), cmd); err != nil {
		// the controller has already put the failure into the flash message
		h.redirectHome(w, r)
		return false
	}
	return true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.MemoPage(toPageView(h.ctrl.View())).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render page", zap.Error(err))
	}
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) download(w http.ResponseWriter, d ui.Download) {
	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(d.Data); err != nil {
		h.log.Debug("export write failed", zap.Error(err))
	}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

// --- View model converters ---

func toPageView(v ui.View) models.ListPageView {
	cards := make([]models.MemoCardView, len(v.Cards))
	for i, c := range v.Cards {
		cards[i] = models.MemoCardView{
			ID:          strconv.FormatInt(c.ID, 10),
			Title:       c.Title,
			Date:        c.Date,
			Important:   c.Important,
			Preview:     c.Preview,
			ShowPreview: c.ShowPreview,
		}
	}

	pv := models.ListPageView{
		Cards: cards,
		Draft: models.DraftView{
			Content:   v.Draft.Content,
			Important: v.Draft.Important,
			Editing:   v.Editing,
		},
		Keyword:       v.Keyword,
		ImportantOnly: v.ImportantOnly,
		DarkMode:      v.Prefs.DarkMode,
		FontSize:      string(v.Prefs.FontSize),
		Flash:         v.Flash,
		Prompt:        v.Prompt,
		EmptyText:     ui.EmptyListText,
	}
	if d := v.Detail; d != nil {
		pv.Detail = &models.MemoDetailView{
			ID:        strconv.FormatInt(d.ID, 10),
			HTML:      d.HTML,
			Date:      d.Date,
			Important: d.Important,
		}
	}
	return pv
}
