package models

// MemoCardView represents one memo in the list
type MemoCardView struct {
	ID          string
	Title       string
	Date        string
	Important   bool
	Preview     string
	ShowPreview bool
}

// MemoDetailView represents the open memo, with content already rendered
type MemoDetailView struct {
	ID        string
	HTML      string
	Date      string
	Important bool
}

// DraftView represents the text entry
type DraftView struct {
	Content   string
	Important bool
	Editing   bool
}

// ListPageView is everything the memo page renders
type ListPageView struct {
	Cards         []MemoCardView
	Draft         DraftView
	Keyword       string
	ImportantOnly bool
	DarkMode      bool
	FontSize      string
	Flash         string
	Prompt        string
	Detail        *MemoDetailView
	EmptyText     string
}

// BodyClass is the class list of the page body
func (v ListPageView) BodyClass() string {
	class := "font-" + v.FontSize
	if v.DarkMode {
		class += " dark-mode"
	}
	return class
}
