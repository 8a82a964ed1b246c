package analyzer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcncl/jsontab/internal/models"
)

func TestClassifyString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  models.Pattern
	}{
		{"US date", "11/18/2022", models.PatternDate},
		{"US date without padding", "1/2/2023", models.PatternDate},
		{"ISO date", "2022-11-18", models.PatternDate},
		{"US date-time", "11/18/2022 14:37:31", models.PatternDateTime},
		{"US date-time without seconds", "11/18/2022 14:37", models.PatternDateTime},
		{"RFC 3339", "2022-11-18T14:37:31Z", models.PatternDateTime},
		{"RFC 3339 with offset and fraction", "2022-11-18T14:37:31.250+02:00", models.PatternDateTime},
		{"ISO date-time", "2022-11-18 14:37:31", models.PatternDateTime},
		{"invalid month", "13/18/2022", models.PatternNone},
		{"email", "ops@example.com", models.PatternEmail},
		{"upper-case email", "A@B.CO", models.PatternEmail},
		{"email without domain dot", "ops@localhost", models.PatternNone},
		{"identifier", "CUSTOMER", models.PatternIdentifier},
		{"identifier with digits", "ML3PL-PP129", models.PatternIdentifier},
		{"identifier with underscore", "PO_IR", models.PatternIdentifier},
		{"digits only", "000001675", models.PatternNumericString},
		{"long digits", "978129244860", models.PatternNumericString},
		{"signed number", "-42", models.PatternNone},
		{"mixed case", "Customer", models.PatternNone},
		{"plain text", "hello world", models.PatternNone},
		{"empty", "", models.PatternNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyString(tt.input))
		})
	}
}

func TestPatternCache_Classify(t *testing.T) {
	cache := newPatternCache(8)

	first := cache.classify("A@B.CO")
	second := cache.classify("A@B.CO")
	assert.Equal(t, models.PatternEmail, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())

	assert.Equal(t, models.PatternDate, cache.classify("2022-11-18"))
	assert.Equal(t, 2, cache.Len())
}

func TestPatternCache_IsBounded(t *testing.T) {
	cache := newPatternCache(8)
	for i := 0; i < 20; i++ {
		assert.Equal(t, models.PatternIdentifier, cache.classify(fmt.Sprintf("SKU%d", i)))
	}
	assert.Equal(t, 8, cache.Len())

	// Evicted entries are classified again with the same answer.
	assert.Equal(t, models.PatternIdentifier, cache.classify("SKU0"))
}

func TestNewPatternCache_DefaultSize(t *testing.T) {
	cache := newPatternCache(0)
	assert.Equal(t, models.PatternNumericString, cache.classify("12345"))
	assert.Equal(t, 1, cache.Len())
}
