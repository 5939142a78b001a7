// Package storage provides the durable string key-value store that backs
// memos and display preferences.
package storage

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyMemos    = "sparkMemos"
	KeyDarkMode = "darkMode"
	KeyFontSize = "fontSize"
)

// ErrCorrupt reports that persisted data could not be decoded and was set
// aside. The store that returns it is still usable and starts empty.
var ErrCorrupt = errors.New("storage file is corrupt")

// Storage is a string-keyed, string-valued store. A missing key is reported
// through the boolean result of Get, not as an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
