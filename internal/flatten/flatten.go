// Package flatten turns parsed JSON values into flat path/value records,
// rectangular tables and hierarchical display trees.
//
// Paths join object keys and array indexes with a single separator, so
// {"a": {"b": [10, 20]}} flattens to a.b.0 = 10 and a.b.1 = 20. A scalar at
// the root has no path of its own and is stored under ValueColumn.
package flatten

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/jsontab/internal/models"
)

// ValueColumn is the column name used for scalars that have no path, such as
// a scalar root or a scalar element of a root array.
const ValueColumn = "value"

// DefaultSeparator joins path segments unless configured otherwise.
const DefaultSeparator = "."

// KeyCase selects how object keys are rewritten when they become path segments.
type KeyCase string

const (
	KeyCaseOriginal   KeyCase = "original"
	KeyCaseSnake      KeyCase = "snake"
	KeyCaseCamel      KeyCase = "camel"
	KeyCaseLowerCamel KeyCase = "lower_camel"
	KeyCaseKebab      KeyCase = "kebab"
)

// ParseKeyCase validates a key case name. The empty string means original.
func ParseKeyCase(s string) (KeyCase, error) {
	switch KeyCase(s) {
	case "", KeyCaseOriginal:
		return KeyCaseOriginal, nil
	case KeyCaseSnake, KeyCaseCamel, KeyCaseLowerCamel, KeyCaseKebab:
		return KeyCase(s), nil
	default:
		return "", fmt.Errorf("unknown key case %q", s)
	}
}

func (k KeyCase) apply(key string) string {
	switch k {
	case KeyCaseSnake:
		return strcase.ToSnake(key)
	case KeyCaseCamel:
		return strcase.ToCamel(key)
	case KeyCaseLowerCamel:
		return strcase.ToLowerCamel(key)
	case KeyCaseKebab:
		return strcase.ToKebab(key)
	default:
		return key
	}
}

// Options controls path naming.
type Options struct {
	Separator string
	KeyCase   KeyCase
	// KeepEmpty emits a null cell for empty objects and arrays below the
	// root instead of dropping them.
	KeepEmpty bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Separator: DefaultSeparator,
		KeyCase:   KeyCaseOriginal,
	}
}

// Flattener flattens JSON values. It holds no per-call state and may be
// reused.
type Flattener struct {
	opts Options
	// warned records keys already reported as key case collisions.
	warned sync.Map
}

// New creates a Flattener. An empty separator falls back to DefaultSeparator.
func New(opts Options) *Flattener {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.KeyCase == "" {
		opts.KeyCase = KeyCaseOriginal
	}
	return &Flattener{opts: opts}
}

// Options returns the effective options.
func (f *Flattener) Options() Options { return f.opts }

func (f *Flattener) join(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + f.opts.Separator + segment
}

// memberKeys returns the path segment for each member of an object. Key case
// rewriting never merges two keys: members whose key is unchanged by the
// rewrite keep it, and a member whose rewritten key is already taken falls
// back to its original key, suffixed with _2, _3 and so on if that is taken
// too.
func (f *Flattener) memberKeys(members []models.Member) []string {
	keys := make([]string, len(members))
	if f.opts.KeyCase == KeyCaseOriginal {
		for i, m := range members {
			keys[i] = m.Key
		}
		return keys
	}

	cased := make([]string, len(members))
	taken := make(map[string]bool, len(members))
	for i, m := range members {
		cased[i] = f.opts.KeyCase.apply(m.Key)
		if cased[i] == m.Key {
			keys[i] = m.Key
			taken[m.Key] = true
		}
	}
	for i, m := range members {
		if cased[i] == m.Key {
			continue
		}
		key := cased[i]
		if taken[key] {
			key = m.Key
			for n := 2; taken[key]; n++ {
				key = m.Key + "_" + strconv.Itoa(n)
			}
			if _, seen := f.warned.LoadOrStore(m.Key, struct{}{}); !seen {
				slog.Warn("key case collision, keeping original key", "key", m.Key, "cased", cased[i], "using", key)
			}
		}
		keys[i] = key
		taken[key] = true
	}
	return keys
}

type frame struct {
	path  string
	value models.Value
	depth int
}

// Flatten maps every leaf reachable from v to its path below prefix. Object
// members are visited in document order and array items by index, so the
// resulting row is ordered the same way the leaves appear in the document.
func (f *Flattener) Flatten(v models.Value, prefix string) models.FlatRow {
	row := models.FlatRow{}
	stack := []frame{{path: prefix, value: v}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch top.value.Kind {
		case models.Object:
			if len(top.value.Members) == 0 {
				if f.opts.KeepEmpty && top.depth > 0 {
					row = append(row, models.Cell{Path: top.path, Value: models.NullValue()})
				}
				continue
			}
			keys := f.memberKeys(top.value.Members)
			// Pushed in reverse so the first member is popped first.
			for i := len(top.value.Members) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					path:  f.join(top.path, keys[i]),
					value: top.value.Members[i].Value,
					depth: top.depth + 1,
				})
			}
		case models.Array:
			if len(top.value.Items) == 0 {
				if f.opts.KeepEmpty && top.depth > 0 {
					row = append(row, models.Cell{Path: top.path, Value: models.NullValue()})
				}
				continue
			}
			for i := len(top.value.Items) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					path:  f.join(top.path, strconv.Itoa(i)),
					value: top.value.Items[i],
					depth: top.depth + 1,
				})
			}
		default:
			path := top.path
			if path == "" {
				path = ValueColumn
			}
			row = append(row, models.Cell{Path: path, Value: top.value})
		}
	}
	return row
}

// Records applies the top-level dispatch: each element of a root array is its
// own record, any other root is a single record.
func (f *Flattener) Records(root models.Value) []models.FlatRow {
	if root.Kind == models.Array {
		rows := make([]models.FlatRow, len(root.Items))
		for i, item := range root.Items {
			rows[i] = f.Flatten(item, "")
		}
		return rows
	}
	return []models.FlatRow{f.Flatten(root, "")}
}

// Table flattens each root and unions the records into one table. Columns
// appear in first-seen order and cells absent from a record are null.
func (f *Flattener) Table(roots ...models.Value) *models.Table {
	table := models.NewTable()
	for _, root := range roots {
		for _, row := range f.Records(root) {
			table.Append(row)
		}
	}
	slog.Debug("flattened table", "rows", table.NumRows(), "columns", table.NumColumns())
	return table
}

// Flatten flattens v with the default options.
func Flatten(v models.Value) models.FlatRow {
	return New(DefaultOptions()).Flatten(v, "")
}

// Table builds a table from roots with the default options.
func Table(roots ...models.Value) *models.Table {
	return New(DefaultOptions()).Table(roots...)
}
