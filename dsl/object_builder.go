package dsl

import (
	"context"
	"fmt"

	"github.com/reoring/formpath"
)

// RefineFunc performs cross-field validation on an object that passed its
// field checks. Issues recorded through issues are relative to the object:
// issues.Add records at the object itself, issues.Field("pw2").Add at a child.
type RefineFunc func(ctx context.Context, v map[string]any, issues *formpath.CustomIssues)

type objField struct {
	name     string
	node     Node
	optional bool
}

type objectBuilder struct {
	fields  []objField
	refines []RefineFunc
	errs    []error
}

type fieldStep struct {
	b   *objectBuilder
	idx int
}

// Object creates a new object builder. Fields are required unless marked
// Optional; keys not declared are dropped (forms carry extra inputs such as
// CSRF tokens and submit buttons).
func Object() *objectBuilder {
	return &objectBuilder{}
}

// Field registers a field. name must satisfy formpath.ValidKey.
func (b *objectBuilder) Field(name string, n Node) *fieldStep {
	if !formpath.ValidKey(name) {
		b.errs = append(b.errs, fmt.Errorf("dsl: field %q: %w", name, ErrInvalidKey))
	}
	for _, f := range b.fields {
		if f.name == name {
			b.errs = append(b.errs, fmt.Errorf("dsl: field %q: %w", name, ErrDuplicateField))
		}
	}
	b.fields = append(b.fields, objField{name: name, node: n})
	return &fieldStep{b: b, idx: len(b.fields) - 1}
}

// Refine adds an object-level refine function. It runs after every field
// parsed successfully.
func (b *objectBuilder) Refine(fn RefineFunc) *objectBuilder {
	if fn == nil {
		return b
	}
	b.refines = append(b.refines, fn)
	return b
}

// Build validates the builder and returns the schema.
func (b *objectBuilder) Build() (*ObjectSchema, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	return &ObjectSchema{
		fields:  append([]objField(nil), b.fields...),
		refines: append([]RefineFunc(nil), b.refines...),
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() *ObjectSchema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Optional marks the current field as optional: when absent it is omitted
// from the output instead of being parsed from nil.
func (f *fieldStep) Optional() *objectBuilder {
	f.b.fields[f.idx].optional = true
	return f.b
}

// Required is the default; it exists for symmetry at call sites.
func (f *fieldStep) Required() *objectBuilder {
	f.b.fields[f.idx].optional = false
	return f.b
}

func (f *fieldStep) Field(name string, n Node) *fieldStep { return f.b.Field(name, n) }
func (f *fieldStep) Refine(fn RefineFunc) *objectBuilder  { return f.b.Refine(fn) }
func (f *fieldStep) Build() (*ObjectSchema, error)        { return f.b.Build() }
func (f *fieldStep) MustBuild() *ObjectSchema             { return f.b.MustBuild() }
