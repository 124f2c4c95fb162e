package dsl

import (
	"context"
	"errors"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/internal/ir"
)

var (
	// ErrInvalidKey is returned by Build for a field name that would break
	// the form name encoding.
	ErrInvalidKey = errors.New("key contains reserved characters or is empty")
	// ErrDuplicateField is returned by Build when a field is declared twice.
	ErrDuplicateField = errors.New("duplicate field")
)

// ObjectSchema validates a nested value tree (map[string]any).
type ObjectSchema struct {
	fields  []objField
	refines []RefineFunc
}

var _ formpath.Schema[map[string]any] = (*ObjectSchema)(nil)

// issuesFromErr converts an error into Issues, wrapping non-Issues with CodeParseError.
func issuesFromErr(err error) formpath.Issues {
	if err == nil {
		return nil
	}
	if iss, ok := formpath.AsIssues(err); ok {
		return iss
	}
	return formpath.Issues{{Code: formpath.CodeParseError, Message: err.Error(), Cause: err}}
}

func (o *ObjectSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	var src map[string]any
	switch t := v.(type) {
	case nil:
		// An object with no submitted fields decodes to nothing at all.
		src = map[string]any{}
	case map[string]any:
		src = t
	default:
		return nil, rootIssue(formpath.CodeInvalidType, map[string]any{"expected": "object"}, "expected object")
	}

	out := make(map[string]any, len(o.fields))
	var iss formpath.Issues
	for _, f := range o.fields {
		val, exists := src[f.name]
		if !exists && f.optional {
			continue
		}
		parsed, err := f.node.ParseAny(ctx, val)
		if err != nil {
			iss = formpath.AppendIssues(iss, issuesFromErr(err).Rebase(formpath.Path{formpath.Key(f.name)})...)
			if formpath.IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		out[f.name] = parsed
	}
	if len(iss) > 0 {
		return nil, iss
	}

	if len(o.refines) > 0 {
		custom := formpath.NewCustomIssues()
		for _, fn := range o.refines {
			fn(ctx, out, custom)
			if custom.HasIssues() && formpath.IsFailFast(ctx) {
				break
			}
		}
		if custom.HasIssues() {
			return nil, custom.ToArray()
		}
	}
	return out, nil
}

func (o *ObjectSchema) ParseAny(ctx context.Context, v any) (any, error) { return o.Parse(ctx, v) }

// Shape returns the object's IR node with fields in declaration order.
func (o *ObjectSchema) Shape() ir.Schema {
	obj := &ir.Object{Required: map[string]struct{}{}}
	for _, f := range o.fields {
		obj.Fields = append(obj.Fields, ir.Field{Name: f.name, Schema: f.node.Shape()})
		if !f.optional {
			obj.Required[f.name] = struct{}{}
		}
	}
	return obj
}
