package metadata

import (
	"errors"
	"strings"
)

// Reduction folds the per-tool values of a multi-tool attribute into one
// representative value. A non-nil error means no representative exists; the
// per-tool list itself stays valid.
type Reduction func(values []any) (any, error)

var errValuesDiffer = errors.New("per-tool values differ")

// SameOrNothing yields the common value when every tool agrees, and fails
// otherwise.
func SameOrNothing(values []any) (any, error) {
	for _, v := range values[1:] {
		if v != values[0] {
			return nil, errValuesDiffer
		}
	}
	return values[0], nil
}

// SumFloats yields the arithmetic sum of the per-tool values. Used for
// accumulative attributes such as filament usage and cost; it always
// succeeds.
func SumFloats(values []any) (any, error) {
	var total float64
	for _, v := range values {
		total += v.(float64)
	}
	return total, nil
}

// MultiTool describes how to parse an attribute that carries one delimited
// value per tool in a multi-material print.
type MultiTool struct {
	Separator string
	Convert   Converter
	Reduce    Reduction
}

// Parse splits raw on the declared separator and converts every element.
// When any element fails conversion the whole attribute is discarded and ok
// is false. Otherwise elements holds the typed per-tool values and single
// holds the reduced representative, or nil when the reduction failed.
func (m MultiTool) Parse(raw string) (elements []any, single any, ok bool) {
	parts := strings.Split(raw, m.Separator)
	elements = make([]any, 0, len(parts))
	for _, part := range parts {
		v, err := m.Convert(part)
		if err != nil {
			return nil, nil, false
		}
		elements = append(elements, v)
	}
	if v, err := m.Reduce(elements); err == nil {
		single = v
	}
	return elements, single, true
}
