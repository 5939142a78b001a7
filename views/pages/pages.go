package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/easycodehow/spark/views/components"
	"github.com/easycodehow/spark/views/models"
)

const head = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
	`<meta name="viewport" content="width=device-width, initial-scale=1">` +
	`<meta name="theme-color" content="#ff9f1c">` +
	`<title>SPARK</title>` +
	`<link rel="manifest" href="/manifest.json">` +
	`<link rel="icon" href="/static/icons/icon-192x192.svg" type="image/svg+xml">` +
	`<link rel="stylesheet" href="/static/css/style.css">` +
	`</head>`

// MemoPage is the whole memo screen
func MemoPage(v models.ListPageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, head+`<body class="`+templ.EscapeString(v.BodyClass())+`">`+
			`<header class="app-header"><h1>SPARK</h1>`); err != nil {
			return err
		}

		parts := []templ.Component{
			components.Menu(v),
			templ.Raw(`</header><main>`),
			components.Flash(v.Flash),
			components.ConfirmDelete(v.Prompt),
			components.DraftForm(v.Draft),
			components.SearchBar(v.Keyword, v.ImportantOnly),
			components.MemoCardList(v.Cards, v.EmptyText),
			components.DetailPanel(v.Detail),
		}
		for _, c := range parts {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</main><script src="/static/js/app.js" defer></script></body></html>`)
		return err
	})
}
