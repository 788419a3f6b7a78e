package silver

// DriftKind classifies a divergence between delivered data and the
// provider's contract.
type DriftKind string

const (
	// DriftMissingField marks a required field absent after mapping.
	// The record is rejected.
	DriftMissingField DriftKind = "missing_field"
	// DriftUnexpectedField marks a delivered field the contract does not
	// declare. The field is dropped; the record is still accepted.
	DriftUnexpectedField DriftKind = "unexpected_field"
	// DriftTypeMismatch marks a value that cannot be coerced to its
	// declared type. The record is rejected.
	DriftTypeMismatch DriftKind = "type_mismatch"
)

// Drift is one observed contract divergence with enough lineage to find
// the offending row.
type Drift struct {
	Kind       DriftKind
	Provider   string
	BatchID    string
	SourceFile string
	RowIndex   int
	Field      string
	Detail     string
}

func (d Drift) rejects() bool {
	return d.Kind == DriftMissingField || d.Kind == DriftTypeMismatch
}
