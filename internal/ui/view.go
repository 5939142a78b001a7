package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/easycodehow/spark/internal/memos"
)

const (
	UntitledTitle = "Untitled"
	EmptyListText = "No memos yet"

	previewMinRunes = 50
)

// Card is one entry of the memo list.
type Card struct {
	ID          int64
	Title       string
	Date        string
	Important   bool
	Preview     string
	ShowPreview bool
}

// DetailView is the open memo, with content rendered to HTML.
type DetailView struct {
	ID        int64
	Content   string
	HTML      string
	Date      string
	Important bool
}

// View is what the memo screen shows for a given State.
type View struct {
	Cards         []Card
	Draft         Draft
	Editing       bool
	Keyword       string
	ImportantOnly bool
	Prefs         Preferences
	Flash         string
	Prompt        string
	Detail        *DetailView
}

// Empty reports whether the list placeholder should be shown.
func (v View) Empty() bool { return len(v.Cards) == 0 }

// Filtered applies the search keyword and the starred filter to all. It is
// recomputed on every call.
func Filtered(all []memos.Memo, keyword string, importantOnly bool) []memos.Memo {
	out := all
	if keyword != "" {
		out = memos.SearchIn(out, keyword)
	}
	if importantOnly {
		out = memos.ImportantOf(out)
	}
	return out
}

// CardTitle is the first line of content, or UntitledTitle when it is empty.
func CardTitle(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	if first == "" {
		return UntitledTitle
	}
	return first
}

// HasPreview reports whether the card shows the full content under the
// title: more than one line, or more than 50 characters.
func HasPreview(content string) bool {
	return strings.Contains(content, "\n") || utf8.RuneCountInString(content) > previewMinRunes
}

func NewCard(m memos.Memo) Card {
	c := Card{
		ID:        m.ID,
		Title:     CardTitle(m.Content),
		Date:      m.Date,
		Important: m.IsImportant,
	}
	if HasPreview(m.Content) {
		c.ShowPreview = true
		c.Preview = m.Content
	}
	return c
}

// BuildView derives the screen for st from the full collection.
func BuildView(st State, all []memos.Memo, md *Markdown) View {
	list := Filtered(all, st.Keyword, st.ImportantOnly)
	cards := make([]Card, len(list))
	for i, m := range list {
		cards[i] = NewCard(m)
	}

	v := View{
		Cards:         cards,
		Draft:         st.Draft,
		Editing:       st.EditingID != 0,
		Keyword:       st.Keyword,
		ImportantOnly: st.ImportantOnly,
		Prefs:         st.Prefs,
		Flash:         st.Flash,
		Prompt:        st.Prompt,
	}

	if st.Detail.Open {
		m := st.Detail.Memo
		v.Detail = &DetailView{
			ID:        m.ID,
			Content:   m.Content,
			HTML:      md.Render(m.Content),
			Date:      m.Date,
			Important: m.IsImportant,
		}
	}
	return v
}
