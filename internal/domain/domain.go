package domain

import "context"

// Field identifies one of the textual columns of the medicine catalog.
type Field string

const (
	FieldProductName      Field = "product_name"
	FieldSaltComposition  Field = "salt_composition"
	FieldMedicineDesc     Field = "medicine_desc"
	FieldSideEffects      Field = "side_effects"
	FieldDrugInteractions Field = "drug_interactions"
)

// Fields returns all catalog fields in their canonical column order.
func Fields() []Field {
	return []Field{
		FieldProductName,
		FieldSaltComposition,
		FieldMedicineDesc,
		FieldSideEffects,
		FieldDrugInteractions,
	}
}

// ProductRecord is one row of the medicine catalog. Records are immutable
// after load and owned by the catalog store.
type ProductRecord struct {
	ProductName      string
	SaltComposition  string
	MedicineDesc     string
	SideEffects      string
	DrugInteractions string
}

// Value returns the record's value for the given field.
func (r ProductRecord) Value(f Field) string {
	switch f {
	case FieldProductName:
		return r.ProductName
	case FieldSaltComposition:
		return r.SaltComposition
	case FieldMedicineDesc:
		return r.MedicineDesc
	case FieldSideEffects:
		return r.SideEffects
	case FieldDrugInteractions:
		return r.DrugInteractions
	}
	return ""
}

// Intent is the closed set of question categories a query can resolve to.
type Intent string

const (
	IntentSideEffects      Intent = "side_effects"
	IntentSaltComposition  Intent = "salt_composition"
	IntentDrugInteractions Intent = "drug_interactions"
	IntentMedicineDesc     Intent = "medicine_desc"
	IntentDosage           Intent = "dosage"
	IntentUses             Intent = "uses"
	IntentBrandGeneric     Intent = "brand_generic"
	IntentAlternatives     Intent = "alternatives"
	IntentGeneral          Intent = "general"
)

// Pair is one rendered label/value line of an answer.
type Pair struct {
	Label string
	Value string
}

// QueryResult is the transient outcome of a single query: ordered label/value
// pairs plus confidence in [0,1] and the encode+rank latency in seconds.
type QueryResult struct {
	Pairs        []Pair
	Confidence   float64
	ResponseTime float64
}

// Add appends a label/value pair preserving presentation order.
func (r *QueryResult) Add(label, value string) {
	r.Pairs = append(r.Pairs, Pair{Label: label, Value: value})
}

// Get returns the value for a label, if present.
func (r *QueryResult) Get(label string) (string, bool) {
	for _, p := range r.Pairs {
		if p.Label == label {
			return p.Value, true
		}
	}
	return "", false
}

// Encoder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Encoder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Encode(ctx context.Context, text string) ([]float64, error)
}
