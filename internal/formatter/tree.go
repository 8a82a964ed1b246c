package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/jsontab/internal/models"
)

// HierarchyBanner heads the hierarchical display.
const HierarchyBanner = "JSON Structure Display:"

// IndexHeader names the row-number column of nested tables.
const IndexHeader = "Index"

// Hierarchy writes the tree with box connectors. Arrays of objects are drawn
// as indented tables with a leading Index column.
func (f *Formatter) Hierarchy(w io.Writer, root *models.TreeNode) error {
	banner := strings.Repeat("=", 60)
	if _, err := fmt.Fprintf(w, "\n%s\n%s\n", HierarchyBanner, banner); err != nil {
		return wrapRender(err)
	}
	if err := f.writeNode(w, root, ""); err != nil {
		return wrapRender(err)
	}
	_, err := fmt.Fprintln(w, banner)
	return wrapRender(err)
}

func (f *Formatter) writeNode(w io.Writer, node *models.TreeNode, prefix string) error {
	switch node.Kind {
	case models.TreeObject:
		if _, err := fmt.Fprintf(w, "%s┌─ %s\n", prefix, containerLabel(node)); err != nil {
			return err
		}
		for i, child := range node.Children {
			connector := "├─"
			if i == len(node.Children)-1 {
				connector = "└─"
			}
			if err := f.writeChild(w, child, prefix, connector, child.Key); err != nil {
				return err
			}
		}
		return nil

	case models.TreeTable:
		if _, err := fmt.Fprintf(w, "%s└─ Table:\n", prefix); err != nil {
			return err
		}
		index := IndexHeader
		return newGrid(node.Table, &index).render(w, f.style, f.maxWidth, prefix+"   ")

	case models.TreeArray:
		if _, err := fmt.Fprintf(w, "%s└─ %s\n", prefix, containerLabel(node)); err != nil {
			return err
		}
		for i, child := range node.Children {
			connector := "├─"
			if i == len(node.Children)-1 {
				connector = "└─"
			}
			if err := f.writeChild(w, child, prefix+"   ", connector, "["+child.Key+"]"); err != nil {
				return err
			}
		}
		return nil

	default:
		_, err := fmt.Fprintf(w, "%s└─ %s\n", prefix, scalarText(node.Value, f.maxWidth))
		return err
	}
}

// writeChild prints one connector line; containers continue below it,
// indented by one level.
func (f *Formatter) writeChild(w io.Writer, child *models.TreeNode, prefix, connector, label string) error {
	if child.Kind == models.TreeScalar {
		_, err := fmt.Fprintf(w, "%s%s %s: %s\n", prefix, connector, label, scalarText(child.Value, f.maxWidth))
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%s %s: %s\n", prefix, connector, label, containerLabel(child)); err != nil {
		return err
	}
	return f.writeNode(w, child, prefix+"    ")
}

func containerLabel(node *models.TreeNode) string {
	if node.Kind == models.TreeObject {
		return "Object (" + plural(node.Size, "key") + ")"
	}
	return "Array (" + plural(node.Size, "item") + ")"
}

func plural(n int, noun string) string {
	s := printer.Sprintf("%d %s", n, noun)
	if n != 1 {
		s += "s"
	}
	return s
}

// scalarText shows nulls as "null" so they are distinguishable from empty strings.
func scalarText(v models.Value, maxWidth int) string {
	if v.IsNull() {
		return "null"
	}
	return truncate(escapeLine(v.Text()), maxWidth)
}
