package analyzer

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/mcncl/jsontab/internal/config"
	"github.com/mcncl/jsontab/internal/models"
)

// Analyzer infers a SchemaNode tree from one or more JSON samples.
type Analyzer struct {
	// detailed enables null rate, uniqueness and example statistics.
	detailed bool
	// patterns memoises string classification across the whole run.
	patterns *patternCache
}

// NewAnalyzer creates an Analyzer that infers types and patterns only.
func NewAnalyzer() *Analyzer {
	return &Analyzer{patterns: newPatternCache(DefaultPatternCacheSize)}
}

// NewAnalyzerWithConfig creates an Analyzer from configuration settings.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{
		detailed: cfg.Schema.Detailed,
		patterns: newPatternCache(cfg.Schema.PatternCacheSize),
	}
}

// Detailed toggles statistics collection and returns the Analyzer.
func (a *Analyzer) Detailed(on bool) *Analyzer {
	a.detailed = on
	return a
}

// Infer builds the schema of values, treating every value as an instance of
// the same logical document.
func (a *Analyzer) Infer(values ...models.Value) *models.SchemaNode {
	node := a.build(values, len(values))
	slog.Debug("inferred schema", "samples", len(values), "detailed", a.detailed, "type", node.Type)
	return node
}

// Infer is a convenience wrapper around a fresh Analyzer.
func Infer(values []models.Value, detailed bool) *models.SchemaNode {
	return NewAnalyzer().Detailed(detailed).Infer(values...)
}

// TypeOf classifies a single value: null, boolean, integer, decimal, string,
// object or array. Decimals without a fractional part count as integers.
func TypeOf(v models.Value) string {
	switch v.Kind {
	case models.Null:
		return models.TypeNull
	case models.Bool:
		return models.TypeBoolean
	case models.Integer:
		return models.TypeInteger
	case models.Decimal:
		if isWhole(v.Float) {
			return models.TypeInteger
		}
		return models.TypeDecimal
	case models.String:
		return models.TypeString
	case models.Object:
		return models.TypeObject
	default:
		return models.TypeArray
	}
}

func isWhole(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Trunc(f) == f
}

// MergeTypes returns the narrowest type covering all of types. Integer and
// decimal widen to decimal; any other combination widens to string.
func MergeTypes(types []string) string {
	switch len(types) {
	case 0:
		return models.TypeNull
	case 1:
		return types[0]
	}
	numeric := true
	for _, t := range types {
		if t != models.TypeInteger && t != models.TypeDecimal {
			numeric = false
			break
		}
	}
	if numeric {
		return models.TypeDecimal
	}
	return models.TypeString
}

// accumulator folds the statistics of one path across its sibling instances.
type accumulator struct {
	count    int
	nulls    int
	distinct map[string]struct{}
	example  *models.Value
	types    []string
	seen     map[string]bool
	patterns map[models.Pattern]bool
	strings  int
}

func newAccumulator() *accumulator {
	return &accumulator{
		distinct: make(map[string]struct{}),
		seen:     make(map[string]bool),
		patterns: make(map[models.Pattern]bool),
	}
}

func (acc *accumulator) add(v models.Value, classify func(string) models.Pattern) {
	acc.count++
	if v.IsNull() {
		acc.nulls++
		return
	}

	t := TypeOf(v)
	if !acc.seen[t] {
		acc.seen[t] = true
		acc.types = append(acc.types, t)
	}

	if v.Kind.IsScalar() {
		acc.distinct[distinctKey(v)] = struct{}{}
		if acc.example == nil {
			example := v
			acc.example = &example
		}
	}
	if v.Kind == models.String {
		acc.strings++
		acc.patterns[classify(v.Str)] = true
	}
}

// distinctKey identifies a scalar for unique counting. Numbers are keyed by
// value, so 10 and 10.0 count once.
func distinctKey(v models.Value) string {
	switch v.Kind {
	case models.Integer:
		return strconv.FormatInt(v.Int, 10)
	case models.Decimal:
		if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
			return v.Str
		}
		if v.Float == math.Trunc(v.Float) && math.Abs(v.Float) < 1<<63 {
			return strconv.FormatInt(int64(v.Float), 10)
		}
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.JSON()
	}
}

// pattern returns the pattern shared by every string seen, if any.
func (acc *accumulator) pattern() models.Pattern {
	if acc.strings == 0 || len(acc.patterns) != 1 {
		return models.PatternNone
	}
	for p := range acc.patterns {
		return p
	}
	return models.PatternNone
}

// build infers the node for values, which are the instances present at one
// path. samples counts all sibling instances, so samples-len(values) of them
// were missing the path altogether.
func (a *Analyzer) build(values []models.Value, samples int) *models.SchemaNode {
	acc := newAccumulator()
	var objects, arrays []models.Value
	for _, v := range values {
		acc.add(v, a.patterns.classify)
		switch v.Kind {
		case models.Object:
			objects = append(objects, v)
		case models.Array:
			arrays = append(arrays, v)
		}
	}

	node := &models.SchemaNode{
		Kind:     models.SchemaScalar,
		Samples:  samples,
		Nullable: acc.nulls > 0,
		Observed: acc.types,
		Detailed: a.detailed,
	}

	nonNull := acc.count - acc.nulls
	switch {
	case nonNull == 0:
		node.Type = models.TypeNull
	case len(objects) == nonNull:
		a.buildObject(node, objects)
	case len(arrays) == nonNull:
		a.buildArray(node, arrays)
	case len(objects) == 0 && len(arrays) == 0:
		node.Type = MergeTypes(acc.types)
		if node.Type == models.TypeString && len(acc.types) == 1 {
			node.Pattern = acc.pattern()
		}
	default:
		// Containers mixed with scalars or with each other.
		node.Type = models.TypeString
	}

	if a.detailed && samples > 0 {
		missing := samples - acc.count
		node.NullRate = float64(acc.nulls+missing) / float64(samples)
		node.UniqueCount = len(acc.distinct)
		node.Example = acc.example
	}
	return node
}

func (a *Analyzer) buildObject(node *models.SchemaNode, objects []models.Value) {
	node.Kind = models.SchemaObject
	node.Type = models.TypeObject

	var names []string
	present := make(map[string][]models.Value)
	for _, obj := range objects {
		for _, m := range obj.Members {
			if _, ok := present[m.Key]; !ok {
				names = append(names, m.Key)
			}
			present[m.Key] = append(present[m.Key], m.Value)
		}
	}

	node.Properties = make([]models.Property, 0, len(names))
	node.Required = make([]string, 0, len(names))
	for _, name := range names {
		vals := present[name]
		node.Properties = append(node.Properties, models.Property{
			Name: name,
			Node: a.build(vals, len(objects)),
		})
		if len(vals) == len(objects) {
			node.Required = append(node.Required, name)
		}
	}
}

func (a *Analyzer) buildArray(node *models.SchemaNode, arrays []models.Value) {
	node.Kind = models.SchemaArray
	node.Type = models.TypeArray

	var items []models.Value
	for _, arr := range arrays {
		if len(arr.Items) > node.ObservedLength {
			node.ObservedLength = len(arr.Items)
		}
		items = append(items, arr.Items...)
	}
	if len(items) > 0 {
		node.Items = a.build(items, len(items))
	}
}
