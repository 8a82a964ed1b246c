package analyzer

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mcncl/jsontab/internal/models"
)

// DefaultPatternCacheSize bounds the memo of classified strings.
const DefaultPatternCacheSize = 4096

// Regex patterns for string sub-types, checked in priority order.
var (
	// 11/18/2022 and 2022-11-18
	usDateRegex  = regexp.MustCompile(`^(0?[1-9]|1[0-2])/(0?[1-9]|[12]\d|3[01])/\d{4}$`)
	isoDateRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)

	// 11/18/2022 14:37:31, 2022-11-18T14:37:31Z and 2022-11-18 14:37:31
	usDateTimeRegex  = regexp.MustCompile(`^(0?[1-9]|1[0-2])/(0?[1-9]|[12]\d|3[01])/\d{4} ([01]?\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)
	rfc3339Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)
	isoDateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)

	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)

	// Upper-case tokens such as CUSTOMER, AVL or ML3PL-PP129. At least one
	// letter is required so digit-only strings stay numeric strings.
	identifierRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]*$`)
	hasLetterRegex  = regexp.MustCompile(`[A-Z]`)

	numericStringRegex = regexp.MustCompile(`^\d+$`)
)

// Expressions that describe each pattern in schema documents.
var patternExpressions = map[models.Pattern]string{
	models.PatternIdentifier:    identifierRegex.String(),
	models.PatternNumericString: numericStringRegex.String(),
}

// PatternExpression returns the regular expression that values of p match,
// for patterns that have no standard format name.
func PatternExpression(p models.Pattern) (string, bool) {
	expr, ok := patternExpressions[p]
	return expr, ok
}

// ClassifyString returns the first pattern s matches: date, date-time, email,
// identifier, numeric string, or none.
func ClassifyString(s string) models.Pattern {
	switch {
	case usDateRegex.MatchString(s), isoDateRegex.MatchString(s):
		return models.PatternDate
	case usDateTimeRegex.MatchString(s), rfc3339Regex.MatchString(s), isoDateTimeRegex.MatchString(s):
		return models.PatternDateTime
	case emailRegex.MatchString(s):
		return models.PatternEmail
	case identifierRegex.MatchString(s) && hasLetterRegex.MatchString(s):
		return models.PatternIdentifier
	case numericStringRegex.MatchString(s):
		return models.PatternNumericString
	default:
		return models.PatternNone
	}
}

// patternCache memoises ClassifyString; documents tend to repeat the same
// codes and keys many times.
type patternCache struct {
	cache *lru.Cache[string, models.Pattern]
}

func newPatternCache(size int) *patternCache {
	if size <= 0 {
		size = DefaultPatternCacheSize
	}
	c, err := lru.New[string, models.Pattern](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &patternCache{cache: c}
}

func (p *patternCache) classify(s string) models.Pattern {
	if pattern, ok := p.cache.Get(s); ok {
		return pattern
	}
	pattern := ClassifyString(s)
	p.cache.Add(s, pattern)
	return pattern
}

// Len returns how many distinct strings are memoised.
func (p *patternCache) Len() int {
	return p.cache.Len()
}
