package config

import (
	"encoding/json"
	stderrors "errors"
	"regexp"
	"strconv"

	"github.com/vango-dev/signalstate/internal/errors"
)

// jsonError converts a decoding error into E101, located at the offending
// byte when the decoder reports one.
func jsonError(path string, data []byte, err error) error {
	e := errors.New("E101").
		Wrap(err).
		WithSuggestion("Check that " + path + " is valid JSON")

	var offset int64 = -1
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntax):
		offset = syntax.Offset
	case stderrors.As(err, &typ):
		offset = typ.Offset
	}
	if offset >= 0 {
		line, col := lineCol(data, offset)
		e.WithLocation(path, line, col)
	}
	return e
}

// lineCol converts a byte offset into a 1-based line and column.
func lineCol(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// yamlError converts a decoding error into E102. yaml.v3 reports positions
// only in its messages.
func yamlError(path string, err error) error {
	e := errors.New("E102").
		Wrap(err).
		WithSuggestion("Check that " + path + " is valid YAML")

	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			e.WithLocation(path, line, 0)
		}
	}
	return e
}
