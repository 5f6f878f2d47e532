package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"medbud/internal/domain"
)

// OpenAIEncoderConfig holds configuration for the OpenAI-compatible encoder.
type OpenAIEncoderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EncoderConfig selects and configures the query encoder implementation.
type EncoderConfig struct {
	Type   string               `yaml:"type"`
	OpenAI *OpenAIEncoderConfig `yaml:"openai,omitempty"`
}

// EmbeddingFiles holds the paths of the five per-field embedding arrays.
type EmbeddingFiles struct {
	ProductName      string `yaml:"product_name"`
	SaltComposition  string `yaml:"salt_composition"`
	MedicineDesc     string `yaml:"medicine_desc"`
	SideEffects      string `yaml:"side_effects"`
	DrugInteractions string `yaml:"drug_interactions"`
}

// Paths returns the configured file per catalog field.
func (f EmbeddingFiles) Paths() map[domain.Field]string {
	return map[domain.Field]string{
		domain.FieldProductName:      f.ProductName,
		domain.FieldSaltComposition:  f.SaltComposition,
		domain.FieldMedicineDesc:     f.MedicineDesc,
		domain.FieldSideEffects:      f.SideEffects,
		domain.FieldDrugInteractions: f.DrugInteractions,
	}
}

// CatalogConfig locates the catalog CSV and its embedding arrays.
// Source selects where the matrices come from: "files" reads the precomputed
// .npy arrays, "compute" encodes the catalog at startup with the configured
// encoder.
type CatalogConfig struct {
	CSVPath    string         `yaml:"csv_path"`
	Source     string         `yaml:"source"`
	Embeddings EmbeddingFiles `yaml:"embeddings"`
}

// ChatConfig holds the confidence gate thresholds and per-query timeout.
type ChatConfig struct {
	AcceptThreshold  float64 `yaml:"accept_threshold"`
	FuzzyThreshold   float64 `yaml:"fuzzy_threshold"`
	QueryTimeoutSecs int     `yaml:"query_timeout_secs"`
}

// HistoryConfig locates the conversation log file.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Encoder EncoderConfig `yaml:"encoder"`
	Catalog CatalogConfig `yaml:"catalog"`
	Chat    ChatConfig    `yaml:"chat"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./medbud.yaml first, then ~/.config/medbud/config.yaml.
// If neither exists, it writes defaults to ~/.config/medbud/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "medbud.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "medbud", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Encoder: EncoderConfig{Type: "tfidf"},
		Catalog: CatalogConfig{
			CSVPath: "medicine_data.csv",
			Source:  "compute",
			Embeddings: EmbeddingFiles{
				ProductName:      "embeddings/embeddings_product_name.npy",
				SaltComposition:  "embeddings/embeddings_salt_composition.npy",
				MedicineDesc:     "embeddings/embeddings_medicine_desc.npy",
				SideEffects:      "embeddings/embeddings_side_effects.npy",
				DrugInteractions: "embeddings/embeddings_drug_interactions.npy",
			},
		},
		Chat:    ChatConfig{AcceptThreshold: 0.5, FuzzyThreshold: 70, QueryTimeoutSecs: 10},
		History: HistoryConfig{Path: "logs/chat_history.json"},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = "files"
	}
	if cfg.Chat.AcceptThreshold == 0 {
		cfg.Chat.AcceptThreshold = 0.5
	}
	if cfg.Chat.FuzzyThreshold == 0 {
		cfg.Chat.FuzzyThreshold = 70
	}
	if cfg.Chat.QueryTimeoutSecs == 0 {
		cfg.Chat.QueryTimeoutSecs = 10
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "logs/chat_history.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Encoder.Type == "openai" && cfg.Encoder.OpenAI != nil {
		if cfg.Encoder.OpenAI.BaseURL == "" {
			cfg.Encoder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Encoder.OpenAI.APIKeyEnv == "" {
			cfg.Encoder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Encoder.OpenAI.Model == "" {
			cfg.Encoder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Encoder.OpenAI.TimeoutSecs == 0 {
			cfg.Encoder.OpenAI.TimeoutSecs = 30
		}
	}
}
