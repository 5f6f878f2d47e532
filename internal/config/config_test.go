package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbud/internal/domain"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tfidf", cfg.Encoder.Type)
	assert.Equal(t, 0.5, cfg.Chat.AcceptThreshold)
	assert.Equal(t, 70.0, cfg.Chat.FuzzyThreshold)
	assert.Equal(t, 10, cfg.Chat.QueryTimeoutSecs)
	assert.Equal(t, "compute", cfg.Catalog.Source)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medbud.yaml")
	content := `
encoder:
  type: tfidf
catalog:
  csv_path: data/meds.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/meds.csv", cfg.Catalog.CSVPath)
	assert.Equal(t, "files", cfg.Catalog.Source)
	assert.Equal(t, 0.5, cfg.Chat.AcceptThreshold)
	assert.Equal(t, "logs/chat_history.json", cfg.History.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "medbud.yaml")
	cfg := defaultConfig()
	cfg.Catalog.CSVPath = "elsewhere.csv"
	cfg.Chat.FuzzyThreshold = 80

	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere.csv", got.Catalog.CSVPath)
	assert.Equal(t, 80.0, got.Chat.FuzzyThreshold)
}

func TestEmbeddingFiles_Paths(t *testing.T) {
	cfg := defaultConfig()
	paths := cfg.Catalog.Embeddings.Paths()
	require.Len(t, paths, 5)
	assert.Equal(t, "embeddings/embeddings_product_name.npy", paths[domain.FieldProductName])
	assert.Equal(t, "embeddings/embeddings_side_effects.npy", paths[domain.FieldSideEffects])
}

func TestLoad_OpenAIDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medbud.yaml")
	content := `
encoder:
  type: openai
  openai:
    model: nomic-embed-text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Encoder.OpenAI)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Encoder.OpenAI.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Encoder.OpenAI.APIKeyEnv)
	assert.Equal(t, "nomic-embed-text", cfg.Encoder.OpenAI.Model)
	assert.Equal(t, 30, cfg.Encoder.OpenAI.TimeoutSecs)
}
