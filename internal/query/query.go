// Package query applies a jq expression to a parsed document before it is
// flattened or analysed.
package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/itchyny/gojq"

	apperrors "github.com/mcncl/jsontab/internal/errors"
	"github.com/mcncl/jsontab/internal/models"
)

// Selector is a compiled jq expression.
type Selector struct {
	expr string
	code *gojq.Code
}

// Compile parses and compiles expr.
func Compile(expr string) (*Selector, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		msg := fmt.Sprintf("cannot parse %q", expr)
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			msg = fmt.Sprintf("cannot parse %q at offset %d", expr, parseErr.Offset)
		}
		return nil, apperrors.NewQueryError(msg, fmt.Errorf("%w: %v", apperrors.ErrInvalidQuery, err))
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, apperrors.NewQueryError(fmt.Sprintf("cannot compile %q", expr), fmt.Errorf("%w: %v", apperrors.ErrInvalidQuery, err))
	}
	return &Selector{expr: expr, code: code}, nil
}

// String returns the source expression.
func (s *Selector) String() string { return s.expr }

// Select runs the expression against root. A single result is returned as
// is; several results are collected into an array, and no results yield an
// empty array. Object keys that already existed in root keep their original
// order, new keys follow in sorted order.
func (s *Selector) Select(ctx context.Context, root models.Value) (models.Value, error) {
	order := keyOrder(root)

	var results []models.Value
	iter := s.code.RunWithContext(ctx, toAny(root))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return models.Value{}, apperrors.NewQueryError(fmt.Sprintf("%q failed", s.expr), err)
		}
		results = append(results, fromAny(v, order))
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return models.ArrayValue(results...), nil
}

// Select compiles expr and applies it to root.
func Select(ctx context.Context, expr string, root models.Value) (models.Value, error) {
	s, err := Compile(expr)
	if err != nil {
		return models.Value{}, err
	}
	return s.Select(ctx, root)
}

// toAny converts a value into the types gojq operates on. gojq has no int64
// support, so integers become int.
func toAny(v models.Value) any {
	switch v.Kind {
	case models.Bool:
		return v.Bool
	case models.Integer:
		if v.Int >= math.MinInt && v.Int <= math.MaxInt {
			return int(v.Int)
		}
		return new(big.Int).SetInt64(v.Int)
	case models.Decimal:
		return v.Float
	case models.String:
		return v.Str
	case models.Object:
		m := make(map[string]any, len(v.Members))
		for _, member := range v.Members {
			m[member.Key] = toAny(member.Value)
		}
		return m
	case models.Array:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = toAny(item)
		}
		return items
	default:
		return nil
	}
}

// keyOrder numbers every object key of root in first-seen order.
func keyOrder(root models.Value) map[string]int {
	order := make(map[string]int)
	stack := []models.Value{root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v.Kind {
		case models.Object:
			for _, m := range v.Members {
				if _, ok := order[m.Key]; !ok {
					order[m.Key] = len(order)
				}
			}
			for i := len(v.Members) - 1; i >= 0; i-- {
				stack = append(stack, v.Members[i].Value)
			}
		case models.Array:
			for i := len(v.Items) - 1; i >= 0; i-- {
				stack = append(stack, v.Items[i])
			}
		}
	}
	return order
}

func fromAny(v any, order map[string]int) models.Value {
	switch val := v.(type) {
	case nil:
		return models.NullValue()
	case bool:
		return models.BoolValue(val)
	case int:
		return models.IntValue(int64(val))
	case float64:
		return models.DecimalValue(val)
	case *big.Int:
		if val.IsInt64() {
			return models.IntValue(val.Int64())
		}
		f, _ := new(big.Float).SetInt(val).Float64()
		d := models.DecimalValue(f)
		d.Str = val.String()
		return d
	case string:
		return models.StringValue(val)
	case []any:
		items := make([]models.Value, len(val))
		for i, item := range val {
			items[i] = fromAny(item, order)
		}
		return models.ArrayValue(items...)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			oi, iok := order[keys[i]]
			oj, jok := order[keys[j]]
			switch {
			case iok && jok:
				return oi < oj
			case iok != jok:
				return iok
			default:
				return keys[i] < keys[j]
			}
		})
		members := make([]models.Member, len(keys))
		for i, k := range keys {
			members[i] = models.Member{Key: k, Value: fromAny(val[k], order)}
		}
		return models.ObjectValue(members...)
	default:
		// gojq only produces the types above.
		return models.StringValue(fmt.Sprint(val))
	}
}
