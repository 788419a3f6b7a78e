package contracts

// FieldType enumerates the value types a contract can declare.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldFloat  FieldType = "float"
)

// Transform names accepted in mapping declarations.
const (
	TransformTrim       = "trim"
	TransformCollapseWS = "collapse_ws"
	TransformLower      = "lower"
	TransformTitleCase  = "title_case"
)

var knownTransforms = map[string]struct{}{
	TransformTrim:       {},
	TransformCollapseWS: {},
	TransformLower:      {},
	TransformTitleCase:  {},
}

// FieldSpec declares one field of a provider contract.
type FieldSpec struct {
	Name     string    `yaml:"name"`
	Type     FieldType `yaml:"type"`
	Required bool      `yaml:"required"`
	// Key marks an explicit provider-supplied movie key field. At most
	// one field per contract may carry it; without one the movie key is
	// derived from title and year.
	Key bool `yaml:"key"`
}

// Contract is the declared schema for one provider's silver records.
type Contract struct {
	Provider string
	Fields   []FieldSpec

	byName map[string]FieldSpec
	key    string
}

// Field returns the spec for a declared field name.
func (c Contract) Field(name string) (FieldSpec, bool) {
	spec, ok := c.byName[name]
	return spec, ok
}

// KeyField returns the explicit movie-key field, if the contract declares one.
func (c Contract) KeyField() (FieldSpec, bool) {
	if c.key == "" {
		return FieldSpec{}, false
	}
	return c.byName[c.key], true
}

// FieldMap declares one source -> target projection of a provider mapping.
type FieldMap struct {
	Source     string   `yaml:"source"`
	Target     string   `yaml:"target"`
	Transforms []string `yaml:"transforms"`
}

// Mapping is the ordered projection list for one provider.
type Mapping struct {
	Provider string
	Fields   []FieldMap
}

// TargetFor returns the mapping entry that produces the given target field.
func (m Mapping) TargetFor(target string) (FieldMap, bool) {
	for _, fm := range m.Fields {
		if fm.Target == target {
			return fm, true
		}
	}
	return FieldMap{}, false
}
