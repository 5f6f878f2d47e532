package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medbud/internal/catalog"
	"medbud/internal/domain"
	"medbud/internal/fuzzy"
	"medbud/internal/intent"
	"medbud/internal/rank"
)

// ProcessingError wraps an unexpected per-query failure caught at the
// orchestration boundary. It does not affect subsequent queries.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("chat: %s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// User-facing message templates.
const (
	outOfContextMessage = "The question is out of context. I'm just a medicine chatbot. I have information about specific tablets, their descriptions, and side effects."
	suggestionMessage   = "Would you like to know more about a specific tablet? If so, please specify the tablet name."
	dosageMessage       = "Please consult a healthcare professional for dosage information."
	alternativesMessage = "For alternative medications, please consult a healthcare professional."
)

// Config holds the confidence gate thresholds and the per-query timeout.
type Config struct {
	// AcceptThreshold is the minimum vector score accepted directly (>=).
	AcceptThreshold float64
	// FuzzyThreshold is the ratio a fallback match must exceed (strictly >).
	FuzzyThreshold float64
	// QueryTimeout bounds a single Answer call.
	QueryTimeout time.Duration
}

// DefaultConfig returns the standard gate thresholds and timeout.
func DefaultConfig() Config {
	return Config{AcceptThreshold: 0.5, FuzzyThreshold: 70, QueryTimeout: 10 * time.Second}
}

// Service answers catalog questions: it ranks the query against the
// product-name embeddings, gates on confidence, falls back to lexical
// matching on weak scores, and exposes the matched record's fields according
// to the query intent.
type Service struct {
	store   *catalog.Store
	enc     domain.Encoder
	intents *intent.Classifier
	cfg     Config
	log     zerolog.Logger
}

// New creates a chat service. All collaborators are injected; the service
// keeps no per-query state.
func New(store *catalog.Store, enc domain.Encoder, intents *intent.Classifier, cfg Config, log zerolog.Logger) *Service {
	if cfg.AcceptThreshold == 0 {
		cfg.AcceptThreshold = 0.5
	}
	if cfg.FuzzyThreshold == 0 {
		cfg.FuzzyThreshold = 70
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	return &Service{store: store, enc: enc, intents: intents, cfg: cfg, log: log}
}

// Answer resolves a single query. A weak match yields a successful
// low-confidence response carrying only a message and a suggestion; only
// unexpected failures (encode, rank, timeout) return a *ProcessingError.
func (s *Service) Answer(ctx context.Context, query string) (*domain.QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	vec, err := s.enc.Encode(ctx, query)
	if err != nil {
		return nil, &ProcessingError{Op: "encode query", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ProcessingError{Op: "encode query", Err: err}
	}
	// Intent-specific fields are resolved from the matched record below;
	// matching itself only ever ranks against the product-name matrix.
	idx, score, err := rank.Best(vec, s.store.Matrix(domain.FieldProductName))
	if err != nil {
		return nil, &ProcessingError{Op: "rank query", Err: err}
	}
	elapsed := time.Since(start).Seconds()

	res := &domain.QueryResult{ResponseTime: elapsed}
	record := s.store.RecordAt(idx)
	confidence := score

	if score < s.cfg.AcceptThreshold {
		name, ratio := fuzzy.Match(query, s.store.ProductNames())
		if ratio > s.cfg.FuzzyThreshold {
			if rec, ok := s.store.ByName(name); ok {
				record = rec
			}
			res.Add("Message", fmt.Sprintf("Did you mean %s? Here's the information:", name))
			confidence = ratio / 100
		} else {
			res.Add("Message", outOfContextMessage)
			res.Add("Suggestion", suggestionMessage)
			res.Confidence = confidence
			s.log.Debug().Str("query", query).Float64("score", score).Float64("ratio", ratio).Msg("query rejected as out of domain")
			return res, nil
		}
	}

	qIntent := s.intents.Classify(query)
	populate(res, record, qIntent)
	res.Confidence = confidence

	s.log.Debug().
		Str("query", query).
		Str("product", record.ProductName).
		Str("intent", string(qIntent)).
		Float64("confidence", confidence).
		Float64("elapsed_secs", elapsed).
		Msg("query answered")
	return res, nil
}

// RandomFact returns the five fields of a uniformly random catalog record.
func (s *Service) RandomFact() domain.QueryResult {
	rec := s.store.Sample()
	var res domain.QueryResult
	res.Add("Product Name", rec.ProductName)
	res.Add("Description", rec.MedicineDesc)
	res.Add("Side Effects", rec.SideEffects)
	res.Add("Drug Interactions", rec.DrugInteractions)
	res.Add("Salt Composition", rec.SaltComposition)
	return res
}

func populate(res *domain.QueryResult, rec domain.ProductRecord, qIntent domain.Intent) {
	switch qIntent {
	case domain.IntentSideEffects:
		res.Add("Side Effects", rec.SideEffects)
	case domain.IntentSaltComposition:
		res.Add("Salt Composition", rec.SaltComposition)
	case domain.IntentDrugInteractions:
		res.Add("Drug Interactions", rec.DrugInteractions)
	case domain.IntentMedicineDesc:
		res.Add("Medicine Description", rec.MedicineDesc)
	case domain.IntentDosage:
		res.Add("Dosage", dosageMessage)
	case domain.IntentUses:
		res.Add("Uses", firstSentence(rec.MedicineDesc))
	case domain.IntentBrandGeneric:
		res.Add("Brand/Generic", fmt.Sprintf("%s is a brand name. For generic alternatives, please consult a pharmacist.", rec.ProductName))
	case domain.IntentAlternatives:
		res.Add("Alternatives", alternativesMessage)
	default:
		res.Add("Product Name", rec.ProductName)
		res.Add("Medicine Description", rec.MedicineDesc)
		res.Add("Side Effects", rec.SideEffects)
		res.Add("Drug Interactions", rec.DrugInteractions)
	}
}

// firstSentence returns the substring preceding the first '.', or the whole
// string when it contains none.
func firstSentence(s string) string {
	if before, _, ok := strings.Cut(s, "."); ok {
		return before
	}
	return s
}
