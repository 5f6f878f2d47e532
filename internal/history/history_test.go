package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbud/internal/domain"
)

func result(pairs ...[2]string) *domain.QueryResult {
	var res domain.QueryResult
	for _, p := range pairs {
		res.Add(p[0], p[1])
	}
	return &res
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	return entries
}

func TestLog_SaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chat_history.json")
	l := NewLog()
	l.Append("side effects of Paracetamol", result([2]string{"Side Effects", "Nausea"}))

	require.NoError(t, l.SaveTo(path))

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "side effects of Paracetamol", entries[0].Query)
	assert.Equal(t, "Nausea", entries[0].Response["Side Effects"])
}

func TestLog_SaveTo_NoDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	l := NewLog()
	l.Append("q1", result([2]string{"Message", "m1"}))
	require.NoError(t, l.SaveTo(path))

	// Saving again without new entries must not duplicate.
	require.NoError(t, l.SaveTo(path))
	assert.Len(t, readEntries(t, path), 1)

	l.Append("q2", result([2]string{"Message", "m2"}))
	require.NoError(t, l.SaveTo(path))

	entries := readEntries(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "q2", entries[1].Query)
}

func TestLog_SaveTo_MergesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")

	first := NewLog()
	first.Append("old query", result([2]string{"Message", "old"}))
	require.NoError(t, first.SaveTo(path))

	second := NewLog()
	second.Append("new query", result([2]string{"Message", "new"}))
	require.NoError(t, second.SaveTo(path))

	entries := readEntries(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "old query", entries[0].Query)
	assert.Equal(t, "new query", entries[1].Query)
}

func TestLog_Entries(t *testing.T) {
	l := NewLog()
	assert.Empty(t, l.Entries())
	l.Append("q", result([2]string{"Message", "m"}))
	assert.Len(t, l.Entries(), 1)
}
