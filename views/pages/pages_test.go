package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easycodehow/spark/views/models"
)

func render(t *testing.T, v models.ListPageView) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, MemoPage(v).Render(context.Background(), &buf))
	return buf.String()
}

func TestMemoPage_EmptyList(t *testing.T) {
	html := render(t, models.ListPageView{FontSize: "medium", EmptyText: "No memos yet"})

	assert.Contains(t, html, `<body class="font-medium">`)
	assert.Contains(t, html, "No memos yet")
	assert.NotContains(t, html, "detailView")
	assert.NotContains(t, html, `role="alert"`)
}

func TestMemoPage_CardsAreEscaped(t *testing.T) {
	html := render(t, models.ListPageView{
		FontSize: "large",
		DarkMode: true,
		Cards: []models.MemoCardView{
			{ID: "2", Title: "<b>hi</b>", Date: "2024. 1. 2.", Important: true},
			{ID: "1", Title: "Line one", Preview: "Line one\nLine two", ShowPreview: true},
		},
		Flash: "Imported 2 memos.",
	})

	assert.Contains(t, html, `class="font-large dark-mode"`)
	assert.Contains(t, html, "&lt;b&gt;hi&lt;/b&gt;")
	assert.NotContains(t, html, "<b>hi</b>")
	assert.Contains(t, html, `href="/memos/2"`)
	assert.Contains(t, html, `class="memo-card important"`)
	assert.Contains(t, html, `class="memo-card-preview"`)
	assert.Contains(t, html, "Imported 2 memos.")
	assert.NotContains(t, html, "No memos yet")
}

func TestMemoPage_DetailAndPrompt(t *testing.T) {
	html := render(t, models.ListPageView{
		FontSize: "small",
		Draft:    models.DraftView{Content: "draft & more", Important: true, Editing: true},
		Detail:   &models.MemoDetailView{ID: "5", HTML: "<p><strong>x</strong></p>", Date: "2024. 3. 1."},
		Prompt:   "Delete this memo?",
	})

	assert.Contains(t, html, "<p><strong>x</strong></p>", "detail HTML is trusted")
	assert.Contains(t, html, "draft &amp; more")
	assert.Contains(t, html, ">Update</button>")
	assert.Contains(t, html, `class="star active"`)
	assert.Contains(t, html, `name="confirm" value="true"`)
}
