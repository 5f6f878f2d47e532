package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"medbud/internal/domain"
)

// Entry is one conversation turn: the user's query and the rendered response.
type Entry struct {
	Query    string            `json:"query"`
	Response map[string]string `json:"response"`
}

// Log is an append-only in-memory conversation log that can be merged into a
// JSON file on disk.
type Log struct {
	entries []Entry
	saved   int
}

// NewLog creates an empty conversation log.
func NewLog() *Log { return &Log{} }

// Append records a query and its result.
func (l *Log) Append(query string, res *domain.QueryResult) {
	response := make(map[string]string, len(res.Pairs))
	for _, p := range res.Pairs {
		response[p.Label] = p.Value
	}
	l.entries = append(l.entries, Entry{Query: query, Response: response})
}

// Entries returns all recorded entries in order.
func (l *Log) Entries() []Entry { return l.entries }

// SaveTo appends entries not yet persisted to the JSON file at path, merging
// with whatever the file already holds and creating directories as needed.
func (l *Log) SaveTo(path string) error {
	if l.saved == len(l.entries) {
		return nil
	}
	existing, err := load(path)
	if err != nil {
		return err
	}
	existing = append(existing, l.entries[l.saved:]...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(existing, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	l.saved = len(l.entries)
	return nil
}

func load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
