// Package ui holds the application state of the memo screen and the command
// dispatcher that turns user intents into store calls and side effects.
package ui

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/easycodehow/spark/internal/memos"
	"github.com/easycodehow/spark/internal/storage"
)

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

var validate = validator.New()

// Preferences are the only part of State that is persisted.
type Preferences struct {
	DarkMode bool
	FontSize FontSize
}

func DefaultPreferences() Preferences {
	return Preferences{FontSize: FontMedium}
}

// ValidFontSize reports whether s names a supported font size.
func ValidFontSize(s string) bool {
	return validate.Var(s, "required,oneof=small medium large") == nil
}

// LoadPreferences reads the stored preferences, falling back to defaults for
// missing or unknown values.
func LoadPreferences(ctx context.Context, kv storage.Storage) (Preferences, error) {
	p := DefaultPreferences()

	dark, ok, err := kv.Get(ctx, storage.KeyDarkMode)
	if err != nil {
		return p, fmt.Errorf("load dark mode: %w", err)
	}
	if ok {
		p.DarkMode = dark == "true"
	}

	size, ok, err := kv.Get(ctx, storage.KeyFontSize)
	if err != nil {
		return p, fmt.Errorf("load font size: %w", err)
	}
	if ok && ValidFontSize(size) {
		p.FontSize = FontSize(size)
	}
	return p, nil
}

// Draft is the text entry: a new memo, or the memo named by State.EditingID.
type Draft struct {
	Content   string
	Important bool
}

// Detail is the detail panel. When Open, Memo is the snapshot taken when it
// was opened.
type Detail struct {
	Open bool
	Memo memos.Memo
}

// State is everything the memo screen knows besides the memos themselves.
type State struct {
	Draft         Draft
	EditingID     int64 // 0 means the draft creates a new memo
	Detail        Detail
	Keyword       string
	ImportantOnly bool
	Prefs         Preferences

	// Flash and Prompt carry the last alert and pending confirmation.
	Flash  string
	Prompt string
}

func NewState(prefs Preferences) State {
	return State{Prefs: prefs}
}
