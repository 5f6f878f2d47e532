package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"medbud/internal/catalog"
	"medbud/internal/chat"
	"medbud/internal/config"
	"medbud/internal/domain"
	"medbud/internal/encoder/openai"
	"medbud/internal/encoder/tfidf"
	"medbud/internal/history"
	"medbud/internal/intent"
	"medbud/internal/logging"
	"medbud/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/medbud/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, "medbud", os.Stderr)

	// Assemble components
	var enc domain.Encoder
	switch cfg.Encoder.Type {
	case "tfidf", "":
		enc = tfidf.NewEncoder()
	case "openai":
		if cfg.Encoder.OpenAI == nil {
			log.Fatalf("openai encoder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Encoder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Encoder.OpenAI.APIKeyEnv,
			Model:     cfg.Encoder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Encoder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai encoder init failed: %v", err)
		}
		enc = client
	default:
		log.Fatalf("unknown encoder: %s", cfg.Encoder.Type)
	}

	store, err := catalog.Load(cfg.Catalog.CSVPath)
	if err != nil {
		log.Fatalf("catalog load failed: %v", err)
	}

	corpus := make([]string, 0, store.Len()*len(domain.Fields()))
	for i := 0; i < store.Len(); i++ {
		rec := store.RecordAt(i)
		for _, field := range domain.Fields() {
			corpus = append(corpus, rec.Value(field))
		}
	}
	if err := enc.Prepare(corpus); err != nil {
		log.Fatalf("encoder prepare failed: %v", err)
	}

	switch cfg.Catalog.Source {
	case "files":
		if err := store.LoadEmbeddings(cfg.Catalog.Embeddings.Paths()); err != nil {
			log.Fatalf("embeddings load failed: %v", err)
		}
	case "compute", "":
		if err := store.BuildEmbeddings(context.Background(), enc); err != nil {
			log.Fatalf("embeddings build failed: %v", err)
		}
	default:
		log.Fatalf("unknown embeddings source: %s", cfg.Catalog.Source)
	}

	logger.Info().
		Int("records", store.Len()).
		Str("encoder", enc.Name()).
		Str("source", cfg.Catalog.Source).
		Msg("catalog ready")

	svc := chat.New(store, enc, intent.NewClassifier(), chat.Config{
		AcceptThreshold: cfg.Chat.AcceptThreshold,
		FuzzyThreshold:  cfg.Chat.FuzzyThreshold,
		QueryTimeout:    time.Duration(cfg.Chat.QueryTimeoutSecs) * time.Second,
	}, logger)

	m := tui.New(svc, history.NewLog(), cfg.History.Path)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
