package ui

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders memo content for the detail panel. Raw HTML in content
// is omitted and single line breaks are kept.
type Markdown struct {
	md goldmark.Markdown
}

func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps())),
	}
}

// Render converts content to HTML, falling back to escaped text on error.
func (m *Markdown) Render(content string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(content), &buf); err != nil {
		return "<p>" + html.EscapeString(content) + "</p>"
	}
	return buf.String()
}
