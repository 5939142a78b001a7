package memos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{name: "empty array", input: "[]", want: 0},
		{name: "array with whitespace", input: "  \n[{\"id\":1,\"content\":\"a\"}]\n", want: 1},
		{name: "object", input: `{"id":1}`, wantErr: ErrNotSequence},
		{name: "null", input: "null", wantErr: ErrNotSequence},
		{name: "string", input: `"memos"`, wantErr: ErrNotSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSnapshot([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseSnapshot([]byte("[{oops"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotSequence)
	})
}

func TestParseSnapshot_ReadsBrowserExport(t *testing.T) {
	data := `[
  {
    "id": 1709971200000,
    "content": "Buy milk",
    "isImportant": true,
    "date": "2024. 3. 9."
  }
]`
	got, err := ParseSnapshot([]byte(data))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Memo{ID: 1709971200000, Content: "Buy milk", IsImportant: true, Date: "2024. 3. 9."}, got[0])
}

func TestMarshalExport(t *testing.T) {
	b, err := MarshalExport(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	b, err = MarshalExport([]Memo{{ID: 1, Content: "a"}})
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  {\n    \"id\": 1,")
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "spark-memos-2024-12-31.json", ExportFilename(now))
}
