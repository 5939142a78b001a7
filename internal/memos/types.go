package memos

import (
	"errors"
	"strings"
)

var (
	ErrEmptyContent    = errors.New("memo content is required")
	ErrNotSequence     = errors.New("memo data must be a JSON array")
	ErrCorruptSnapshot = errors.New("stored memo snapshot is corrupt")
)

// DefaultDateLayout renders dates the way ko-KR toLocaleDateString does.
const DefaultDateLayout = "2006. 1. 2."

// Memo is a single user note. ID and Date are fixed at creation.
type Memo struct {
	ID          int64  `json:"id"`
	Content     string `json:"content"`
	IsImportant bool   `json:"isImportant"`
	Date        string `json:"date"` // display only, not parseable
}

// Matches reports whether content contains keyword, ignoring case.
func (m Memo) Matches(keyword string) bool {
	return strings.Contains(strings.ToLower(m.Content), strings.ToLower(keyword))
}

// SearchIn returns the memos of list whose content contains keyword,
// ignoring case. An empty keyword matches every memo.
func SearchIn(list []Memo, keyword string) []Memo {
	out := make([]Memo, 0, len(list))
	for _, m := range list {
		if m.Matches(keyword) {
			out = append(out, m)
		}
	}
	return out
}

// ImportantOf returns the starred memos of list, preserving order.
func ImportantOf(list []Memo) []Memo {
	out := make([]Memo, 0, len(list))
	for _, m := range list {
		if m.IsImportant {
			out = append(out, m)
		}
	}
	return out
}
