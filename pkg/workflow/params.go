package workflow

import (
	"fmt"
	"strconv"
	"strings"

	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// Params are string-typed parameters given to a task.
//
// Blank values are treated as not given.
type Params map[string]string

// Variables are values which a task sets as its output.
type Variables map[string]any

// ParameterError tells a parameter of a task is malformed.
type ParameterError struct {
	Message string
}

func (e ParameterError) Error() string {
	return e.Message
}

func (e ParameterError) Unwrap() error {
	return domerr.ErrValidation
}

// String returns the trimmed value of the parameter.
func (p Params) String(name string) string {
	return strings.TrimSpace(p[name])
}

// Int parses the parameter as an integer.
//
// label is the name of the parameter in error messages.
//
// Returns
//
// - *int: nil if the parameter is not given.
//
// - error: ParameterError when the value is not an integer,
// or when required parameter is not given.
func (p Params) Int(name string, label string, required bool) (*int, error) {
	v := p.String(name)
	if v == "" {
		if required {
			return nil, ParameterError{Message: fmt.Sprintf("%q must be specified.", label)}
		}
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, ParameterError{Message: fmt.Sprintf("%q must be a valid integer value.", label)}
	}
	return &i, nil
}

// Bool parses the parameter as "true" or "false" (case insensitive).
//
// When the parameter is not given, def is returned.
func (p Params) Bool(name string, label string, def bool) (bool, error) {
	v := p.String(name)
	switch {
	case v == "":
		return def, nil
	case strings.EqualFold(v, "true"):
		return true, nil
	case strings.EqualFold(v, "false"):
		return false, nil
	default:
		return false, ParameterError{
			Message: fmt.Sprintf(`%q must be a valid boolean value of "true" or "false".`, label),
		}
	}
}

const (
	// Delimiter separates values in a list parameter.
	Delimiter = '|'

	// Escape makes the next character literal in a list parameter.
	Escape = '\\'
)

// List splits the parameter by Delimiter.
//
// "\|" is read as a literal "|", and "\\" as a literal "\".
// Each item is trimmed. Returns nil if the parameter is not given.
func (p Params) List(name string) []string {
	v := p.String(name)
	if v == "" {
		return nil
	}

	items := []string{}
	item := new(strings.Builder)
	escaped := false
	for _, r := range v {
		switch {
		case escaped:
			item.WriteRune(r)
			escaped = false
		case r == Escape:
			escaped = true
		case r == Delimiter:
			items = append(items, strings.TrimSpace(item.String()))
			item.Reset()
		default:
			item.WriteRune(r)
		}
	}
	if escaped {
		item.WriteRune(Escape)
	}
	items = append(items, strings.TrimSpace(item.String()))
	return items
}
