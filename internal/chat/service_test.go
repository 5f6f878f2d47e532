package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbud/internal/catalog"
	"medbud/internal/intent"
)

const testCSV = `product_name,salt_composition,medicine_desc,side_effects,drug_interactions
Paracetamol,Acetaminophen 500mg,Paracetamol relieves pain. Take with food.,Nausea,Alcohol increases liver risk
Ibuprofen,Ibuprofen 400mg,Reduces inflammation and fever,Stomach upset,Avoid with aspirin
Abcdefgxyz,Placebo,Placebo tablet,None,None
`

// stubEncoder returns fixed vectors for known texts and a zero vector
// otherwise, so rankings in tests are exact.
type stubEncoder struct {
	dim     int
	vectors map[string][]float64
	block   bool
}

func (e *stubEncoder) Name() string                  { return "stub" }
func (e *stubEncoder) Prepare(corpus []string) error { return nil }
func (e *stubEncoder) Dimension() int                { return e.dim }

func (e *stubEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if v, ok := e.vectors[text]; ok {
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	}
	return make([]float64, e.dim), nil
}

func newTestEncoder() *stubEncoder {
	return &stubEncoder{
		dim: 4,
		vectors: map[string][]float64{
			"Paracetamol": {0, 0, 0, 1},
			"Ibuprofen":   {0, 1, 1, 0},

			"what are the side effects of Paracetamol": {0, 0, 0, 1},
			"what is Paracetamol used for":             {0, 0, 0, 1},
			"what is Ibuprofen used for":               {0, 1, 1, 0},
			"what is the dosage of Paracetamol":        {0, 0, 0, 1},
			"is Paracetamol a brand name":              {0, 0, 0, 1},
			"are there substitutes for Paracetamol":    {0, 0, 0, 1},
			"what is the composition of Paracetamol":   {0, 0, 0, 1},
			"drug interactions of Paracetamol":         {0, 0, 0, 1},
			"description of Paracetamol":               {0, 0, 0, 1},
			"tell me something":                        {1, 1, 0, 0},
		},
	}
}

func newTestService(t *testing.T, enc *stubEncoder, cfg Config) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "medicine_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	store, err := catalog.Load(path)
	require.NoError(t, err)
	require.NoError(t, store.BuildEmbeddings(context.Background(), enc))
	return New(store, enc, intent.NewClassifier(), cfg, zerolog.Nop())
}

func TestAnswer_SideEffects(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	res, err := s.Answer(context.Background(), "what are the side effects of Paracetamol")
	require.NoError(t, err)

	require.Len(t, res.Pairs, 1)
	v, ok := res.Get("Side Effects")
	require.True(t, ok)
	assert.Equal(t, "Nausea", v)
	assert.GreaterOrEqual(t, res.Confidence, 0.5)
	assert.GreaterOrEqual(t, res.ResponseTime, 0.0)
}

func TestAnswer_FieldIntents(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	tests := []struct {
		query string
		label string
		value string
	}{
		{"what is the composition of Paracetamol", "Salt Composition", "Acetaminophen 500mg"},
		{"drug interactions of Paracetamol", "Drug Interactions", "Alcohol increases liver risk"},
		{"description of Paracetamol", "Medicine Description", "Paracetamol relieves pain. Take with food."},
		{"what is the dosage of Paracetamol", "Dosage", "Please consult a healthcare professional for dosage information."},
		{"is Paracetamol a brand name", "Brand/Generic", "Paracetamol is a brand name. For generic alternatives, please consult a pharmacist."},
		{"are there substitutes for Paracetamol", "Alternatives", "For alternative medications, please consult a healthcare professional."},
	}
	for _, tt := range tests {
		res, err := s.Answer(context.Background(), tt.query)
		require.NoError(t, err, "query %q", tt.query)
		v, ok := res.Get(tt.label)
		require.True(t, ok, "query %q missing %q", tt.query, tt.label)
		assert.Equal(t, tt.value, v, "query %q", tt.query)
	}
}

func TestAnswer_UsesFirstSentence(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	res, err := s.Answer(context.Background(), "what is Paracetamol used for")
	require.NoError(t, err)
	v, ok := res.Get("Uses")
	require.True(t, ok)
	assert.Equal(t, "Paracetamol relieves pain", v)
}

func TestAnswer_UsesWholeStringWithoutPeriod(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	res, err := s.Answer(context.Background(), "what is Ibuprofen used for")
	require.NoError(t, err)
	v, ok := res.Get("Uses")
	require.True(t, ok)
	assert.Equal(t, "Reduces inflammation and fever", v)
}

func TestAnswer_GeneralExposesExactlyFourFields(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	res, err := s.Answer(context.Background(), "tell me something")
	require.NoError(t, err)

	require.Len(t, res.Pairs, 4)
	assert.Equal(t, "Product Name", res.Pairs[0].Label)
	assert.Equal(t, "Medicine Description", res.Pairs[1].Label)
	assert.Equal(t, "Side Effects", res.Pairs[2].Label)
	assert.Equal(t, "Drug Interactions", res.Pairs[3].Label)
	assert.Equal(t, "Ibuprofen", res.Pairs[0].Value)
}

func TestAnswer_GateAcceptsExactThreshold(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	// "tell me something" scores exactly 0.5 against Ibuprofen's name vector.
	res, err := s.Answer(context.Background(), "tell me something")
	require.NoError(t, err)

	assert.Equal(t, 0.5, res.Confidence)
	_, rejected := res.Get("Suggestion")
	assert.False(t, rejected)
}

func TestAnswer_FuzzyFallbackAccepts(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	res, err := s.Answer(context.Background(), "paracetamole")
	require.NoError(t, err)

	msg, ok := res.Get("Message")
	require.True(t, ok)
	assert.Equal(t, "Did you mean Paracetamol? Here's the information:", msg)
	// Message plus the four general fields of the fuzzy-matched record.
	require.Len(t, res.Pairs, 5)
	name, _ := res.Get("Product Name")
	assert.Equal(t, "Paracetamol", name)
	assert.InDelta(t, 0.9167, res.Confidence, 0.001)
}

func TestAnswer_FuzzyBoundaryRejectsExactSeventy(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	// Ratio against "Abcdefgxyz" is exactly 70; the fallback requires > 70.
	res, err := s.Answer(context.Background(), "abcdefghij")
	require.NoError(t, err)

	require.Len(t, res.Pairs, 2)
	_, ok := res.Get("Message")
	assert.True(t, ok)
	_, ok = res.Get("Suggestion")
	assert.True(t, ok)
}

func TestAnswer_OutOfDomain(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	res, err := s.Answer(context.Background(), "what is the weather today")
	require.NoError(t, err)

	require.Len(t, res.Pairs, 2)
	msg, ok := res.Get("Message")
	require.True(t, ok)
	assert.Contains(t, msg, "out of context")
	sug, ok := res.Get("Suggestion")
	require.True(t, ok)
	assert.Contains(t, sug, "specify the tablet name")
	// Confidence carries the weak vector score, not the fuzzy ratio.
	assert.Equal(t, 0.0, res.Confidence)
}

func TestAnswer_Timeout(t *testing.T) {
	enc := newTestEncoder()
	s := newTestService(t, enc, Config{QueryTimeout: 50 * time.Millisecond})
	enc.block = true

	_, err := s.Answer(context.Background(), "what are the side effects of Paracetamol")
	var perr *ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAnswer_CanceledContext(t *testing.T) {
	enc := newTestEncoder()
	s := newTestService(t, enc, DefaultConfig())
	enc.block = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Answer(ctx, "anything")
	var perr *ProcessingError
	assert.ErrorAs(t, err, &perr)
}

func TestRandomFact(t *testing.T) {
	s := newTestService(t, newTestEncoder(), DefaultConfig())

	for i := 0; i < 20; i++ {
		res := s.RandomFact()
		require.Len(t, res.Pairs, 5)
		name, ok := res.Get("Product Name")
		require.True(t, ok)
		assert.Contains(t, []string{"Paracetamol", "Ibuprofen", "Abcdefgxyz"}, name)
	}
}
