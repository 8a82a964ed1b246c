package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/jsontab/internal/analyzer"
	"github.com/mcncl/jsontab/internal/models"
)

// StructureDepth is how many container levels the structure summary expands.
const StructureDepth = 2

// Structure writes a short summary of v: the keys and value types of objects,
// and the item types and first item's shape for arrays.
func (f *Formatter) Structure(w io.Writer, v models.Value) error {
	var sb strings.Builder
	sb.WriteString("\nJSON Structure Analysis:\n")
	sb.WriteString(strings.Repeat("-", 30) + "\n")
	writeStructure(&sb, v, 0)
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return wrapRender(err)
}

func writeStructure(sb *strings.Builder, v models.Value, level int) {
	prefix := strings.Repeat("    ", level)
	expand := level+1 < StructureDepth

	switch v.Kind {
	case models.Object:
		printer.Fprintf(sb, "%sObject (%s):\n", prefix, plural(len(v.Members), "key"))
		for _, m := range v.Members {
			fmt.Fprintf(sb, "%s  - %s: %s\n", prefix, m.Key, analyzer.TypeOf(m.Value))
			if expand && !m.Value.Kind.IsScalar() {
				writeStructure(sb, m.Value, level+1)
			}
		}
	case models.Array:
		fmt.Fprintf(sb, "%sArray (%s):\n", prefix, plural(len(v.Items), "item"))
		if len(v.Items) == 0 {
			return
		}
		var types []string
		seen := make(map[string]bool)
		for _, item := range v.Items {
			if t := analyzer.TypeOf(item); !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
		fmt.Fprintf(sb, "%s  Item types: %s\n", prefix, strings.Join(types, ", "))
		if first := v.Items[0]; expand && !first.Kind.IsScalar() {
			fmt.Fprintf(sb, "%s  Sample item structure:\n", prefix)
			writeStructure(sb, first, level+1)
		}
	default:
		fmt.Fprintf(sb, "%sValue: %s\n", prefix, analyzer.TypeOf(v))
	}
}
