// Package schema renders inferred SchemaNode trees as JSON Schema documents
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/mcncl/jsontab/internal/analyzer"
	"github.com/mcncl/jsontab/internal/models"
)

// DefaultTitle is used when Build is given an empty title
const DefaultTitle = "Inferred schema"

// formats maps patterns onto the standard "format" keyword. Patterns missing
// here are expressed with the "pattern" keyword instead.
var formats = map[models.Pattern]string{
	models.PatternDate:     "date",
	models.PatternDateTime: "date-time",
	models.PatternEmail:    "email",
}

// Build converts an inferred node into a JSON Schema (draft 2020-12) document
func Build(node *models.SchemaNode, title string) *jsonschema.Schema {
	if title == "" {
		title = DefaultTitle
	}
	root := convert(node)
	root.Version = jsonschema.Version
	root.Title = title
	return root
}

// Marshal encodes a document as indented JSON
func Marshal(s *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return data, nil
}

// TypeName maps an inferred type onto its JSON Schema name
func TypeName(t string) string {
	if t == models.TypeDecimal {
		return "number"
	}
	return t
}

func convert(node *models.SchemaNode) *jsonschema.Schema {
	if node == nil {
		return &jsonschema.Schema{}
	}

	s := &jsonschema.Schema{Type: TypeName(node.Type)}

	switch node.Kind {
	case models.SchemaObject:
		s.Properties = jsonschema.NewProperties()
		for _, p := range node.Properties {
			s.Properties.Set(p.Name, convert(p.Node))
		}
		if len(node.Required) > 0 {
			s.Required = append([]string(nil), node.Required...)
		}
	case models.SchemaArray:
		if node.Items != nil {
			s.Items = convert(node.Items)
		}
	default:
		if format, ok := formats[node.Pattern]; ok {
			s.Format = format
		} else if expr, ok := analyzer.PatternExpression(node.Pattern); ok {
			s.Pattern = expr
		}
	}

	if node.Detailed && node.Example != nil {
		example := node.Example.Interface()
		s.Examples = []any{example}
		s.Extras = map[string]any{"example": example}
	}

	description := Describe(node)
	if !node.Nullable || node.Type == models.TypeNull {
		s.Description = description
		return s
	}

	// Explicit nulls were seen next to a concrete type.
	return &jsonschema.Schema{
		AnyOf:       []*jsonschema.Schema{s, {Type: "null"}},
		Description: description,
	}
}

// Describe summarises what was observed at a node: the widened types, the
// longest array instance and, in detailed mode, the statistics.
func Describe(node *models.SchemaNode) string {
	var parts []string
	if node.Ambiguous() {
		parts = append(parts, "observed types: "+strings.Join(node.Observed, ", "))
	}
	if node.Pattern != models.PatternNone {
		if _, ok := formats[node.Pattern]; !ok {
			parts = append(parts, "pattern: "+string(node.Pattern))
		}
	}
	if node.Kind == models.SchemaArray {
		parts = append(parts, fmt.Sprintf("longest observed length: %d", node.ObservedLength))
	}
	if node.Detailed {
		parts = append(parts,
			fmt.Sprintf("null rate: %.1f%%", node.NullRate*100),
			fmt.Sprintf("unique values: %d", node.UniqueCount),
		)
	}
	return strings.Join(parts, "; ")
}
