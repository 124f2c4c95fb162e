package dsl

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/internal/ir"
)

// TypedSchema parses with an object schema and decodes the result into T.
type TypedSchema[T any] struct {
	inner *ObjectSchema
}

// Bind ties an object schema to struct type T. Struct fields are matched by
// their form tag, falling back to a case-insensitive field name match; tag
// structs with form tags so formpath.FieldPath yields the same keys.
func Bind[T any](s *ObjectSchema) *TypedSchema[T] {
	return &TypedSchema[T]{inner: s}
}

// Builder is satisfied by Object() and by the step returned from Field, so a
// chain can be bound without a trailing Required or Optional.
type Builder interface {
	MustBuild() *ObjectSchema
}

// MustBind builds b and binds it to T, panicking on builder errors.
func MustBind[T any](b Builder) *TypedSchema[T] {
	return Bind[T](b.MustBuild())
}

func (t *TypedSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	var out T
	m, err := t.inner.Parse(ctx, v)
	if err != nil {
		return out, err
	}
	if err := decodeInto(m, &out); err != nil {
		return out, formpath.Issues{{Code: formpath.CodeParseError, Message: err.Error(), Cause: err}}
	}
	return out, nil
}

func (t *TypedSchema[T]) ParseAny(ctx context.Context, v any) (any, error) { return t.Parse(ctx, v) }
func (t *TypedSchema[T]) Shape() ir.Schema                                { return t.inner.Shape() }

func decodeInto(src map[string]any, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return fmt.Errorf("dsl: decoder: %w", err)
	}
	return dec.Decode(src)
}
