package generator

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsontab/internal/config"
	apperrors "github.com/mcncl/jsontab/internal/errors"
	"github.com/mcncl/jsontab/internal/models"
	"github.com/mcncl/jsontab/internal/schema"
)

// Supported output formats
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Generator renders inferred schemas in one of the supported formats
type Generator struct {
	title string
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{title: schema.DefaultTitle}
}

// NewGeneratorWithConfig creates a Generator using the configured title
func NewGeneratorWithConfig(cfg *config.Config) *Generator {
	g := NewGenerator()
	if cfg.Schema.Title != "" {
		g.title = cfg.Schema.Title
	}
	return g
}

// WithTitle overrides the document title and returns the Generator
func (g *Generator) WithTitle(title string) *Generator {
	if title != "" {
		g.title = title
	}
	return g
}

// Generate renders node in the given format
func (g *Generator) Generate(node *models.SchemaNode, format string) (string, error) {
	slog.Debug("rendering schema", "format", format)

	switch format {
	case FormatJSON, "":
		data, err := schema.Marshal(schema.Build(node, g.title))
		if err != nil {
			return "", apperrors.NewSchemaError("failed to render JSON schema", err)
		}
		return string(data) + "\n", nil
	case FormatYAML:
		return g.generateYAML(node)
	case FormatMarkdown:
		return g.generateMarkdown(node), nil
	case FormatText:
		return g.generateText(node), nil
	default:
		return "", apperrors.NewSchemaError(fmt.Sprintf("cannot render schema as %q", format), apperrors.ErrUnsupportedFormat)
	}
}

// generateYAML re-encodes the JSON Schema document through a yaml.v3 node
// tree, which keeps property order intact.
func (g *Generator) generateYAML(node *models.SchemaNode) (string, error) {
	data, err := schema.Marshal(schema.Build(node, g.title))
	if err != nil {
		return "", apperrors.NewSchemaError("failed to render YAML schema", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", apperrors.NewSchemaError("failed to convert schema to YAML", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", apperrors.NewSchemaError("failed to encode YAML schema", err)
	}
	if err := enc.Close(); err != nil {
		return "", apperrors.NewSchemaError("failed to encode YAML schema", err)
	}
	return buf.String(), nil
}

// blockStyle drops the flow and quoting styles inherited from JSON; the
// encoder re-quotes scalars that need it.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func (g *Generator) generateMarkdown(node *models.SchemaNode) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", g.title)
	fmt.Fprintf(&buf, "Root: `%s`", TypeLabel(node))
	if notes := annotations(node, nil); len(notes) > 0 {
		fmt.Fprintf(&buf, " (%s)", strings.Join(notes, ", "))
	}
	buf.WriteString("\n")

	children := childrenOf(node)
	if len(children) > 0 {
		buf.WriteString("\n")
	}
	for _, c := range children {
		writeMarkdown(&buf, c, 0)
	}
	return buf.String()
}

func writeMarkdown(buf *bytes.Buffer, c child, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(buf, "%s- **%s** `%s`", indent, escapeMarkdown(c.name), TypeLabel(c.node))
	if notes := annotations(c.node, c.required); len(notes) > 0 {
		fmt.Fprintf(buf, " (%s)", strings.Join(notes, ", "))
	}
	buf.WriteString("\n")
	for _, grandchild := range childrenOf(c.node) {
		writeMarkdown(buf, grandchild, depth+1)
	}
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`").Replace(s)
}

func (g *Generator) generateText(node *models.SchemaNode) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s: %s", g.title, TypeLabel(node))
	if notes := annotations(node, nil); len(notes) > 0 {
		fmt.Fprintf(&buf, " (%s)", strings.Join(notes, ", "))
	}
	buf.WriteString("\n")
	writeText(&buf, node, "")
	return buf.String()
}

func writeText(buf *bytes.Buffer, node *models.SchemaNode, prefix string) {
	children := childrenOf(node)
	for i, c := range children {
		connector, next := "├── ", "│   "
		if i == len(children)-1 {
			connector, next = "└── ", "    "
		}
		fmt.Fprintf(buf, "%s%s%s: %s", prefix, connector, c.name, TypeLabel(c.node))
		if notes := annotations(c.node, c.required); len(notes) > 0 {
			fmt.Fprintf(buf, " (%s)", strings.Join(notes, ", "))
		}
		buf.WriteString("\n")
		writeText(buf, c.node, prefix+next)
	}
}

// child is one nested entry of an outline: an object property, or the item
// node of an array shown as "[]".
type child struct {
	name     string
	node     *models.SchemaNode
	required *bool
}

func childrenOf(node *models.SchemaNode) []child {
	switch node.Kind {
	case models.SchemaObject:
		out := make([]child, 0, len(node.Properties))
		for _, p := range node.Properties {
			req := node.IsRequired(p.Name)
			out = append(out, child{name: p.Name, node: p.Node, required: &req})
		}
		return out
	case models.SchemaArray:
		// Object items are listed directly; scalar items are already in the label.
		if node.Items != nil && node.Items.Kind != models.SchemaScalar {
			return childrenOf(node.Items)
		}
	}
	return nil
}

// TypeLabel is the compact type shown in outlines, e.g. "array<object>" or
// "integer?" for a nullable integer.
func TypeLabel(node *models.SchemaNode) string {
	label := node.Type
	if node.Kind == models.SchemaArray {
		item := "any"
		if node.Items != nil {
			item = TypeLabel(node.Items)
		}
		label = "array<" + item + ">"
	}
	if node.Nullable && node.Type != models.TypeNull {
		label += "?"
	}
	return label
}

func annotations(node *models.SchemaNode, required *bool) []string {
	var notes []string
	if required != nil {
		if *required {
			notes = append(notes, "required")
		} else {
			notes = append(notes, "optional")
		}
	}
	if node.Pattern != models.PatternNone {
		notes = append(notes, "pattern: "+string(node.Pattern))
	}
	if node.Ambiguous() {
		notes = append(notes, "observed: "+strings.Join(node.Observed, "|"))
	}
	if node.Kind == models.SchemaArray {
		notes = append(notes, fmt.Sprintf("longest: %d", node.ObservedLength))
	}
	if node.Detailed {
		notes = append(notes,
			fmt.Sprintf("null: %.1f%%", node.NullRate*100),
			fmt.Sprintf("unique: %d", node.UniqueCount),
		)
		if node.Example != nil {
			notes = append(notes, "example: "+node.Example.Text())
		}
	}
	return notes
}

// Generate renders node with a default Generator
func Generate(node *models.SchemaNode, format string) (string, error) {
	return NewGenerator().Generate(node, format)
}
