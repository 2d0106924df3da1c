package ml

import "fmt"

// SchemaSource records how the expected feature order was derived.
type SchemaSource string

const (
	// SchemaDeclared means the artifact listed its feature names.
	SchemaDeclared SchemaSource = "declared"
	// SchemaPositional means only a count was declared and the order is a
	// prefix of the canonical field order. The artifact cannot confirm it.
	SchemaPositional SchemaSource = "positional"
)

// ExpectedOrder derives the ordered feature names the artifact expects.
// Explicit names win; a bare count k takes the first k canonical names
// unless strict is set. Anything else is ErrSchemaUndetermined.
func ExpectedOrder(a *Artifact, canonical []string, strict bool) ([]string, SchemaSource, error) {
	if a == nil {
		return nil, "", ErrNotLoaded
	}

	if len(a.FeatureNames) > 0 {
		order := make([]string, len(a.FeatureNames))
		copy(order, a.FeatureNames)
		return order, SchemaDeclared, nil
	}

	if a.FeatureCount == nil {
		return nil, "", fmt.Errorf("%w: artifact declares neither feature names nor a feature count", ErrSchemaUndetermined)
	}
	if strict {
		return nil, "", fmt.Errorf("%w: artifact declares only a feature count (%d) and strict schema is enabled",
			ErrSchemaUndetermined, *a.FeatureCount)
	}

	k := *a.FeatureCount
	if k < 1 || k > len(canonical) {
		return nil, "", fmt.Errorf("%w: feature count %d outside 1..%d", ErrSchemaUndetermined, k, len(canonical))
	}
	order := make([]string, k)
	copy(order, canonical[:k])
	return order, SchemaPositional, nil
}
