package dsl

import (
	"context"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/internal/ir"
)

// ArraySchema validates repeated inputs (names with [i] suffixes, or the same
// name submitted several times).
type ArraySchema[E any] struct {
	elem   formpath.Schema[E]
	minLen int
	maxLen int
}

// Array returns an array schema with the given element schema.
func Array[E any](elem formpath.Schema[E]) *ArraySchema[E] {
	return &ArraySchema[E]{elem: elem, minLen: -1, maxLen: -1}
}

// Min sets the minimum length.
func (a *ArraySchema[E]) Min(n int) *ArraySchema[E] { a.minLen = n; return a }

// Max sets the maximum length.
func (a *ArraySchema[E]) Max(n int) *ArraySchema[E] { a.maxLen = n; return a }

// Parse accepts []any, []E, nil (no element submitted) or a single scalar (a
// repeated input submitted once).
func (a *ArraySchema[E]) Parse(ctx context.Context, v any) ([]E, error) {
	var src []any
	switch t := v.(type) {
	case nil:
	case []any:
		src = t
	case []E:
		src = make([]any, len(t))
		for i := range t {
			src[i] = t[i]
		}
	case map[string]any:
		return nil, rootIssue(formpath.CodeInvalidType, map[string]any{"expected": "array"}, "expected array")
	default:
		src = []any{t}
	}

	res := make([]E, 0, len(src))
	var iss formpath.Issues
	for i := range src {
		ev, err := a.elem.Parse(ctx, src[i])
		if err != nil {
			child, ok := formpath.AsIssues(err)
			if !ok {
				child = formpath.Issues{{Code: formpath.CodeParseError, Message: err.Error(), Cause: err}}
			}
			iss = formpath.AppendIssues(iss, child.Rebase(formpath.Path{formpath.Index(i)})...)
			if formpath.IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		res = append(res, ev)
	}
	if a.minLen >= 0 && len(src) < a.minLen {
		iss = formpath.AppendIssues(iss, rootIssue(formpath.CodeTooSmall, map[string]any{"minimum": a.minLen, "type": "array", "inclusive": true}, "")...)
	}
	if a.maxLen >= 0 && len(src) > a.maxLen {
		iss = formpath.AppendIssues(iss, rootIssue(formpath.CodeTooBig, map[string]any{"maximum": a.maxLen, "type": "array", "inclusive": true}, "")...)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return res, nil
}

func (a *ArraySchema[E]) ParseAny(ctx context.Context, v any) (any, error) { return a.Parse(ctx, v) }

func (a *ArraySchema[E]) Shape() ir.Schema {
	item := ir.Any
	if n, ok := any(a.elem).(Node); ok {
		item = n.Shape()
	}
	return &ir.Array{Item: item}
}
