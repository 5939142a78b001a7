package components

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/easycodehow/spark/views/models"
)

var esc = templ.EscapeString[string]

func write(w io.Writer, parts ...string) error {
	_, err := io.WriteString(w, strings.Join(parts, ""))
	return err
}

func active(on bool) string {
	if on {
		return " active"
	}
	return ""
}

// Flash shows the last alert, if any
func Flash(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if msg == "" {
			return nil
		}
		return write(w, `<div class="flash" role="alert">`, esc(msg), `</div>`)
	})
}

// ConfirmDelete asks before the open memo is deleted
func ConfirmDelete(prompt string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if prompt == "" {
			return nil
		}
		return write(w,
			`<div class="prompt" role="dialog"><p>`, esc(prompt), `</p>`,
			`<form method="post" action="/detail/delete"><input type="hidden" name="confirm" value="true">`,
			`<button type="submit" class="danger">Delete</button></form>`,
			`<a class="button" href="/">Cancel</a></div>`)
	})
}

// Menu holds display preferences and backup actions
func Menu(v models.ListPageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		dark := "Dark mode"
		if v.DarkMode {
			dark = "Light mode"
		}
		if err := write(w,
			`<details id="menu" class="menu"><summary id="menuBtn">Menu</summary>`,
			`<form method="post" action="/prefs/dark"><button id="darkModeBtn" type="submit">`, dark, `</button></form>`,
			`<form method="post" action="/prefs/font"><select id="fontSizeSelect" name="size">`); err != nil {
			return err
		}
		for _, size := range []string{"small", "medium", "large"} {
			selected := ""
			if size == v.FontSize {
				selected = " selected"
			}
			if err := write(w, `<option value="`, size, `"`, selected, `>`, size, `</option>`); err != nil {
				return err
			}
		}
		return write(w,
			`</select><button type="submit">Apply</button></form>`,
			`<a id="exportBtn" class="button" href="/export">Export</a>`,
			`<form method="post" action="/import" enctype="multipart/form-data">`,
			`<input type="file" name="file" accept=".json,application/json">`,
			`<button id="importBtn" type="submit">Import</button></form>`,
			`</details>`)
	})
}

// DraftForm is the text entry for new and edited memos
func DraftForm(d models.DraftView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		label := "Save"
		if d.Editing {
			label = "Update"
		}
		important := "false"
		if d.Important {
			important = "true"
		}
		return write(w,
			`<form class="draft" method="post" action="/memos">`,
			`<textarea id="memoInput" name="content" placeholder="Write a memo...">`, esc(d.Content), `</textarea>`,
			`<input type="hidden" name="important" value="`, important, `">`,
			`<div class="draft-actions">`,
			`<button id="starBtn" class="star`, active(d.Important), `" type="submit" formaction="/draft/star" title="Mark important">&#9733;</button>`,
			`<button id="cameraBtn" type="submit" formaction="/draft/attach" title="Attach image">&#128247;</button>`,
			`<button id="saveBtn" type="submit">`, label, `</button>`,
			`</div></form>`)
	})
}

// SearchBar filters the list by keyword and by star
func SearchBar(keyword string, importantOnly bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w,
			`<div class="search-bar"><form method="get" action="/search">`,
			`<input id="searchInput" type="search" name="q" value="`, esc(keyword), `" placeholder="Search memos">`,
			`<button id="searchBtn" type="submit">Search</button></form>`,
			`<form method="post" action="/filter/important">`,
			`<button id="starFilterBtn" class="star`, active(importantOnly), `" type="submit" title="Important only">&#9733;</button>`,
			`</form></div>`)
	})
}

// MemoCard renders one memo of the list
func MemoCard(c models.MemoCardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := "memo-card"
		star := ""
		if c.Important {
			class += " important"
			star = `<span class="star active">&#9733;</span> `
		}
		if err := write(w,
			`<a class="`, class, `" href="/memos/`, c.ID, `">`,
			`<div class="memo-card-title">`, star, esc(c.Title), `</div>`,
			`<div class="memo-card-date">`, esc(c.Date), `</div>`); err != nil {
			return err
		}
		if c.ShowPreview {
			if err := write(w, `<div class="memo-card-preview">`, esc(c.Preview), `</div>`); err != nil {
				return err
			}
		}
		return write(w, `</a>`)
	})
}

// MemoCardList renders the list or its placeholder
func MemoCardList(cards []models.MemoCardView, emptyText string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<section id="memoList" class="memo-list">`); err != nil {
			return err
		}
		if len(cards) == 0 {
			if err := write(w, `<p class="empty">`, esc(emptyText), `</p>`); err != nil {
				return err
			}
		}
		for _, c := range cards {
			if err := MemoCard(c).Render(ctx, w); err != nil {
				return err
			}
		}
		return write(w, `</section>`)
	})
}

// DetailPanel shows the open memo and its actions
func DetailPanel(d *models.MemoDetailView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if d == nil {
			return nil
		}
		star := ""
		if d.Important {
			star = `<span class="star active">&#9733;</span>`
		}
		if err := write(w,
			`<section id="detailView" class="detail-view active">`,
			`<form method="post" action="/detail/close"><button id="backBtn" type="submit">Back</button></form>`,
			star,
			`<div id="detailDate" class="detail-date">`, esc(d.Date), `</div>`,
			`<article id="detailContent" class="detail-content">`); err != nil {
			return err
		}
		if err := templ.Raw(d.HTML).Render(ctx, w); err != nil {
			return err
		}
		return write(w,
			`</article><div class="detail-actions">`,
			`<form method="post" action="/detail/edit"><button id="editBtn" type="submit">Edit</button></form>`,
			`<form method="post" action="/detail/share"><button id="shareBtn" type="submit">Share</button></form>`,
			`<form method="post" action="/detail/copy"><button id="copyBtn" type="submit">Copy</button></form>`,
			`<form method="post" action="/detail/delete"><button id="deleteBtn" class="danger" type="submit">Delete</button></form>`,
			`</div></section>`)
	})
}
