package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mcncl/jsontab/internal/errors"
	"github.com/mcncl/jsontab/internal/models"
	"github.com/mcncl/jsontab/internal/parser"
)

const receiptJSON = `{"Type":"IR","WODetail":[{"QtyReceived":10,"StorerKey":"CUSTOMER","Sku":"978129244860"},{"QtyReceived":15,"StorerKey":"CUSTOMER","Sku":"978129243103"}]}`

func mustParse(t *testing.T, s string) models.Value {
	t.Helper()
	v, err := parser.ParseString(s)
	require.NoError(t, err)
	return v
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"identity", ".", receiptJSON},
		{"field", ".Type", `"IR"`},
		{"single array", ".WODetail", `[{"QtyReceived":10,"StorerKey":"CUSTOMER","Sku":"978129244860"},{"QtyReceived":15,"StorerKey":"CUSTOMER","Sku":"978129243103"}]`},
		{"many results collect", ".WODetail[].QtyReceived", `[10,15]`},
		{"no results", ".WODetail[] | select(.QtyReceived > 100)", `[]`},
		{"arithmetic keeps integers", "[.WODetail[].QtyReceived] | add", `25`},
		{"missing field", ".Nope", `null`},
	}

	root := mustParse(t, receiptJSON)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(context.Background(), tt.expr, root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.JSON())
		})
	}
}

func TestSelect_PreservesKeyOrder(t *testing.T) {
	root := mustParse(t, `{"zeta": 1, "alpha": {"mid": 2, "beta": 3}}`)

	got, err := Select(context.Background(), `.alpha + {"new": 4, "aaa": 5, "zeta": 6}`, root)
	require.NoError(t, err)

	// Known keys in document order, then new keys sorted.
	assert.Equal(t, `{"zeta":6,"mid":2,"beta":3,"aaa":5,"new":4}`, got.JSON())
}

func TestSelect_NumbersRoundTrip(t *testing.T) {
	root := mustParse(t, `{"i": 9007199254740993, "d": 2.5, "neg": -3}`)

	got, err := Select(context.Background(), ".", root)
	require.NoError(t, err)

	i, _ := got.Get("i")
	assert.Equal(t, models.Integer, i.Kind)
	assert.Equal(t, int64(9007199254740993), i.Int)

	d, _ := got.Get("d")
	assert.Equal(t, models.Decimal, d.Kind)
	assert.Equal(t, 2.5, d.Float)

	neg, _ := got.Get("neg")
	assert.Equal(t, int64(-3), neg.Int)
}

func TestCompile_InvalidExpression(t *testing.T) {
	_, err := Compile(".WODetail[")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidQuery))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeQuery, appErr.Type)
	assert.Contains(t, appErr.Message, ".WODetail[")
}

func TestCompile_UnknownFunction(t *testing.T) {
	_, err := Compile("nosuchfunction")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidQuery))
}

func TestSelect_RuntimeError(t *testing.T) {
	_, err := Select(context.Background(), ".Type[]", mustParse(t, receiptJSON))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeQuery, appErr.Type)
	assert.False(t, errors.Is(err, apperrors.ErrInvalidQuery))
}

func TestSelect_HaltWithoutValueStops(t *testing.T) {
	got, err := Select(context.Background(), "1, halt, 2", mustParse(t, `null`))
	require.NoError(t, err)
	assert.Equal(t, "1", got.JSON())
}

func TestSelect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Select(ctx, "range(1000000)", mustParse(t, `null`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelector_String(t *testing.T) {
	s, err := Compile(".a")
	require.NoError(t, err)
	assert.Equal(t, ".a", s.String())
}
