package ui

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easycodehow/spark/internal/memos"
)

func TestCardTitle(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"Buy milk", "Buy milk"},
		{"Line one\nLine two", "Line one"},
		{"\nsecond line only", UntitledTitle},
		{"", UntitledTitle},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CardTitle(tt.content), "content %q", tt.content)
	}
}

func TestHasPreview(t *testing.T) {
	assert.False(t, HasPreview("short"))
	assert.False(t, HasPreview(strings.Repeat("a", 50)))
	assert.True(t, HasPreview(strings.Repeat("a", 51)))
	assert.True(t, HasPreview("a\nb"))
	// counted in characters, not bytes
	assert.False(t, HasPreview(strings.Repeat("메", 50)))
}

func TestFiltered(t *testing.T) {
	all := []memos.Memo{
		{ID: 3, Content: "Milk run", IsImportant: true},
		{ID: 2, Content: "bread", IsImportant: true},
		{ID: 1, Content: "more MILK", IsImportant: false},
	}

	ids := func(list []memos.Memo) []int64 {
		out := make([]int64, len(list))
		for i, m := range list {
			out[i] = m.ID
		}
		return out
	}

	assert.Equal(t, []int64{3, 2, 1}, ids(Filtered(all, "", false)))
	assert.Equal(t, []int64{3, 2}, ids(Filtered(all, "", true)))
	assert.Equal(t, []int64{3, 1}, ids(Filtered(all, "milk", false)))
	assert.Equal(t, []int64{3}, ids(Filtered(all, "milk", true)))
}

func TestBuildView_SingleShortMemo(t *testing.T) {
	store := newStore(t)
	_, err := store.Create(context.Background(), "Buy milk", false)
	require.NoError(t, err)

	v := BuildView(State{}, store.All(), NewMarkdown())

	require.Len(t, v.Cards, 1)
	assert.Equal(t, "Buy milk", v.Cards[0].Title)
	assert.False(t, v.Cards[0].ShowPreview)
	assert.False(t, v.Empty())
}

func TestBuildView_MultiLineMemoHasPreview(t *testing.T) {
	store := newStore(t)
	content := "Line one\nLine two and more text here"
	_, err := store.Create(context.Background(), content, false)
	require.NoError(t, err)

	v := BuildView(State{}, store.All(), NewMarkdown())

	require.Len(t, v.Cards, 1)
	assert.Equal(t, "Line one", v.Cards[0].Title)
	assert.True(t, v.Cards[0].ShowPreview)
	assert.Equal(t, content, v.Cards[0].Preview)
}

func TestBuildView_ImportantFilter(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	_, err := store.Create(ctx, "A", true)
	require.NoError(t, err)
	_, err = store.Create(ctx, "B", false)
	require.NoError(t, err)

	v := BuildView(State{ImportantOnly: true}, store.All(), NewMarkdown())

	require.Len(t, v.Cards, 1)
	assert.Equal(t, "A", v.Cards[0].Title)
	assert.True(t, v.Cards[0].Important)
}

func TestBuildView_EmptyAndDetail(t *testing.T) {
	v := BuildView(State{}, nil, NewMarkdown())
	assert.True(t, v.Empty())
	assert.Nil(t, v.Detail)

	m := memos.Memo{ID: 1, Content: "**bold**\n<script>alert(1)</script>", Date: "2024. 1. 1."}
	v = BuildView(State{Detail: Detail{Open: true, Memo: m}, EditingID: 4}, []memos.Memo{m}, NewMarkdown())

	require.NotNil(t, v.Detail)
	assert.True(t, v.Editing)
	assert.Contains(t, v.Detail.HTML, "<strong>bold</strong>")
	assert.NotContains(t, v.Detail.HTML, "<script>")
}
