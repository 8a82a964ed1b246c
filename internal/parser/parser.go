package parser

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"golang.org/x/sync/errgroup"

	"github.com/mcncl/jsontab/internal/errors"
	"github.com/mcncl/jsontab/internal/models"
)

// maxConcurrentFiles bounds how many files ParseFiles reads at once.
const maxConcurrentFiles = 8

// Parse decodes a single JSON value from reader, keeping object members in
// document order.
func Parse(reader io.Reader) (models.Value, error) {
	dec := jsontext.NewDecoder(reader,
		jsontext.AllowDuplicateNames(true),
		jsontext.AllowInvalidUTF8(true),
	)

	root, err := decodeValue(dec)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Value{}, wrapSyntaxError(err)
	}

	// Anything but EOF after the first value means trailing data.
	if _, err := dec.ReadValue(); err == nil {
		return models.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.Value{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	return root, nil
}

func wrapSyntaxError(err error) error {
	var syntaxError *jsontext.SyntacticError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.ByteOffset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// decodeValue reads the next complete value from dec.
func decodeValue(dec *jsontext.Decoder) (models.Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return models.Value{}, err
	}

	switch tok.Kind() {
	case 'n':
		return models.NullValue(), nil
	case 't', 'f':
		return models.BoolValue(tok.Bool()), nil
	case '"':
		return models.StringValue(tok.String()), nil
	case '0':
		return parseNumber(tok.String()), nil
	case '{':
		return decodeObject(dec)
	case '[':
		return decodeArray(dec)
	default:
		return models.Value{}, fmt.Errorf("unexpected token %q", tok.Kind())
	}
}

// decodeObject reads members up to the closing brace. A repeated key keeps its
// first position and takes the last value.
func decodeObject(dec *jsontext.Decoder) (models.Value, error) {
	members := make([]models.Member, 0)
	seen := make(map[string]int)
	for dec.PeekKind() != '}' {
		keyTok, err := dec.ReadToken()
		if err != nil {
			return models.Value{}, err
		}
		key := keyTok.String()
		val, err := decodeValue(dec)
		if err != nil {
			return models.Value{}, err
		}
		if i, dup := seen[key]; dup {
			members[i].Value = val
			continue
		}
		seen[key] = len(members)
		members = append(members, models.Member{Key: key, Value: val})
	}
	if _, err := dec.ReadToken(); err != nil { // '}'
		return models.Value{}, err
	}
	return models.ObjectValue(members...), nil
}

func decodeArray(dec *jsontext.Decoder) (models.Value, error) {
	items := make([]models.Value, 0)
	for dec.PeekKind() != ']' {
		item, err := decodeValue(dec)
		if err != nil {
			return models.Value{}, err
		}
		items = append(items, item)
	}
	if _, err := dec.ReadToken(); err != nil { // ']'
		return models.Value{}, err
	}
	return models.ArrayValue(items...), nil
}

// parseNumber keeps integer literals that fit in int64 as Integer and
// everything else as Decimal. The literal text is preserved for display and
// stands in for literals that overflow float64.
func parseNumber(literal string) models.Value {
	if !strings.ContainsAny(literal, ".eE") {
		if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return models.Value{Kind: models.Integer, Int: i, Str: literal}
		}
	}
	f, _ := strconv.ParseFloat(literal, 64)
	return models.Value{Kind: models.Decimal, Float: f, Str: literal}
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseBytes parses JSON from a byte slice
func ParseBytes(data []byte) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewInputError("input is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(bytes.NewReader(data))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Value{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Value{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	v, err := Parse(file)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			appErr.Message = fmt.Sprintf("%s: %s", filePath, appErr.Message)
		}
		return models.Value{}, err
	}
	return v, nil
}

// ParseFiles reads several files concurrently. Documents are returned in the
// order of paths; the first failure cancels the remaining reads.
func ParseFiles(ctx context.Context, paths []string) ([]models.Document, error) {
	docs := make([]models.Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			root, err := ParseFile(path)
			if err != nil {
				return err
			}
			docs[i] = models.Document{Source: path, Root: root}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
