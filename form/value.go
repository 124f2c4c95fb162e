package form

import (
	"net/url"

	"github.com/reoring/formpath"
)

// Value returns the submitted value of the input named name, mapped through
// transform. initial is returned when the input was not submitted. A nil
// transform requires V to be string; otherwise initial is returned.
func Value[V any](values url.Values, name string, transform func(string) V, initial V) V {
	raw, ok := values[name]
	if !ok || len(raw) == 0 {
		return initial
	}
	if transform != nil {
		return transform(raw[0])
	}
	if v, ok := any(raw[0]).(V); ok {
		return v
	}
	return initial
}

// FieldValue is Value for the input addressed by c.
func FieldValue[V any](values url.Values, c formpath.FieldChain, transform func(string) V, initial V) V {
	return Value(values, c.Name(), transform, initial)
}

// Value returns the latest submitted text of the input addressed by c, or
// "" when it was not submitted.
func (f *Form[T]) Value(c formpath.FieldChain) string {
	return Value[string](f.Values(), c.Name(), nil, "")
}
