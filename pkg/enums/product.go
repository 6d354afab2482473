package enums

import "fmt"

// BaseType discriminates the top-level product of an ownership tree from
// its bundled components.
type BaseType string

const (
	BaseTypeRoot    BaseType = "root"
	BaseTypeBundled BaseType = "bundled"
	BaseTypeSimple  BaseType = "simple"
)

var validBaseTypes = []BaseType{
	BaseTypeRoot,
	BaseTypeBundled,
	BaseTypeSimple,
}

// String implements fmt.Stringer.
func (b BaseType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BaseType.
func (b BaseType) IsValid() bool {
	for _, candidate := range validBaseTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBaseType converts raw input into a BaseType.
func ParseBaseType(value string) (BaseType, error) {
	for _, candidate := range validBaseTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid base type %q", value)
}

// RelationshipType labels an edge between two products. Only the root and
// bundled types carry tree semantics; other caller-defined labels pass
// through untouched, so there is no closed value set to validate against.
type RelationshipType string

const (
	RelationshipTypeRoot    RelationshipType = "root"
	RelationshipTypeBundled RelationshipType = "bundled"
)

// String implements fmt.Stringer.
func (r RelationshipType) String() string {
	return string(r)
}
