package memos

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ParseSnapshot decodes a serialized memo sequence. Anything other than a
// JSON array at the top level fails with ErrNotSequence.
func ParseSnapshot(data []byte) ([]Memo, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode memos: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotSequence
	}

	var list []Memo
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("decode memos: %w", err)
	}
	return list, nil
}

// MarshalExport renders list as pretty-printed JSON.
func MarshalExport(list []Memo) ([]byte, error) {
	if list == nil {
		list = []Memo{}
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode memos: %w", err)
	}
	return b, nil
}

// ExportFilename names an export file after the UTC date of now.
func ExportFilename(now time.Time) string {
	return "spark-memos-" + now.UTC().Format("2006-01-02") + ".json"
}
