package models

// Pattern is a recognised sub-type of string values.
type Pattern string

const (
	PatternNone          Pattern = ""
	PatternDate          Pattern = "date"
	PatternDateTime      Pattern = "date-time"
	PatternEmail         Pattern = "email"
	PatternIdentifier    Pattern = "identifier"
	PatternNumericString Pattern = "numeric-string"
)

// SchemaKind is the structural variant of a SchemaNode.
type SchemaKind int

const (
	SchemaScalar SchemaKind = iota
	SchemaObject
	SchemaArray
)

// Scalar type names used by SchemaNode.Type.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeDecimal = "decimal"
	TypeString  = "string"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Property is a named child of an object schema node.
type Property struct {
	Name string
	Node *SchemaNode
}

// SchemaNode describes the shape of every value observed at one path.
type SchemaNode struct {
	Kind SchemaKind
	// Type is one of the Type* constants. Mixed scalar types and mixed
	// structures degrade to TypeString.
	Type    string
	Pattern Pattern
	// Nullable is set when at least one observed value was an explicit null.
	Nullable bool
	// Observed lists the distinct non-null types seen, in first-seen order.
	// More than one entry means the node was widened.
	Observed []string
	// Samples is the number of sibling instances the node was built from,
	// including instances where the value was missing.
	Samples int

	// Statistics, only populated when Detailed is set.
	Detailed    bool
	NullRate    float64
	UniqueCount int
	Example     *Value

	// Object nodes.
	Properties []Property
	Required   []string

	// Array nodes.
	Items          *SchemaNode
	ObservedLength int
}

// Property returns the child node for name.
func (n *SchemaNode) Property(name string) (*SchemaNode, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is present in every observed instance.
func (n *SchemaNode) IsRequired(name string) bool {
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Ambiguous reports whether more than one non-null type was observed.
func (n *SchemaNode) Ambiguous() bool {
	return len(n.Observed) > 1
}
