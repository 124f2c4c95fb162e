package dsl

import (
	"context"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/internal/ir"
)

// Node is the type-erased form of a schema, accepted by Object().Field. Every
// schema in this package implements it; wrap other formpath.Schema values
// with SchemaOf.
type Node interface {
	ParseAny(ctx context.Context, v any) (any, error)
	Shape() ir.Schema
}

// AnyAdapter adapts a formpath.Schema[T] to Node.
type AnyAdapter struct {
	parse func(context.Context, any) (any, error)
	shape ir.Schema
	orig  any
}

// SchemaOf wraps s so it can be used as an object field. The shape is taken
// from s when it is a Node, and is opaque otherwise.
func SchemaOf[T any](s formpath.Schema[T]) AnyAdapter {
	ad := AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) },
		shape: ir.Any,
		orig:  s,
	}
	if n, ok := any(s).(Node); ok {
		ad.shape = n.Shape()
	}
	return ad
}

func (ad AnyAdapter) ParseAny(ctx context.Context, v any) (any, error) { return ad.parse(ctx, v) }
func (ad AnyAdapter) Shape() ir.Schema                                { return ad.shape }

// Orig returns the wrapped schema.
func (ad AnyAdapter) Orig() any { return ad.orig }

// TransformSchema parses with an inner schema and maps the result.
type TransformSchema[In, Out any] struct {
	inner formpath.Schema[In]
	fn    func(context.Context, In) (Out, error)
}

// Transform returns a schema that parses with s and then applies fn. An error
// from fn becomes a custom issue at the value's own path carrying the error
// text as message; fn may also return formpath.Issues directly.
func Transform[In, Out any](s formpath.Schema[In], fn func(context.Context, In) (Out, error)) *TransformSchema[In, Out] {
	return &TransformSchema[In, Out]{inner: s, fn: fn}
}

func (t *TransformSchema[In, Out]) Parse(ctx context.Context, v any) (Out, error) {
	var zero Out
	in, err := t.inner.Parse(ctx, v)
	if err != nil {
		return zero, err
	}
	out, err := t.fn(ctx, in)
	if err != nil {
		if iss, ok := formpath.AsIssues(err); ok {
			return zero, iss
		}
		return zero, formpath.Issues{{Code: formpath.CodeCustom, Message: err.Error(), Cause: err}}
	}
	return out, nil
}

func (t *TransformSchema[In, Out]) ParseAny(ctx context.Context, v any) (any, error) {
	return t.Parse(ctx, v)
}

func (t *TransformSchema[In, Out]) Shape() ir.Schema {
	if n, ok := any(t.inner).(Node); ok {
		return n.Shape()
	}
	return ir.Any
}

// CustomSchema runs a user function as a schema.
type CustomSchema[T any] struct {
	fn    func(context.Context, any) (T, error)
	shape ir.Schema
}

// Custom returns a schema backed by fn. Errors that are not formpath.Issues
// become a custom issue at the value's own path.
func Custom[T any](fn func(ctx context.Context, v any) (T, error)) *CustomSchema[T] {
	return &CustomSchema[T]{fn: fn, shape: ir.Any}
}

// As sets the IR primitive name reported by Shape ("string", "int", ...).
func (c *CustomSchema[T]) As(primitive string) *CustomSchema[T] {
	c.shape = &ir.Primitive{Name: primitive}
	return c
}

func (c *CustomSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	out, err := c.fn(ctx, v)
	if err != nil {
		if iss, ok := formpath.AsIssues(err); ok {
			return out, iss
		}
		return out, formpath.Issues{{Code: formpath.CodeCustom, Message: err.Error(), Cause: err}}
	}
	return out, nil
}

func (c *CustomSchema[T]) ParseAny(ctx context.Context, v any) (any, error) { return c.Parse(ctx, v) }
func (c *CustomSchema[T]) Shape() ir.Schema                                { return c.shape }
