package formpath

import (
	"context"
	"errors"
)

// Schema is the contract consumed from a validation engine. Parse transforms
// an unknown input (usually the nested tree decoded from a form) into T and
// returns Issues when the input is invalid.
type Schema[T any] interface {
	Parse(ctx context.Context, v any) (T, error)
}

// SchemaFunc adapts a plain function to Schema.
type SchemaFunc[T any] func(ctx context.Context, v any) (T, error)

// Parse calls f.
func (f SchemaFunc[T]) Parse(ctx context.Context, v any) (T, error) { return f(ctx, v) }

// Result is the outcome of SafeParse: Data on success, Issues otherwise.
type Result[T any] struct {
	Success bool
	Data    T
	Issues  Issues
}

// Err returns the issues as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	return r.Issues
}

// ErrNilSchema is reported (as a parse_error issue cause) when SafeParse is
// given a nil schema.
var ErrNilSchema = errors.New("formpath: nil schema")

// SafeParse parses v with s and never returns an error: failures are folded
// into Result.Issues. Errors that are not Issues become a single root-level
// parse_error issue carrying the error as Cause.
func SafeParse[T any](ctx context.Context, s Schema[T], v any) Result[T] {
	if s == nil {
		return Result[T]{Issues: Issues{{Code: CodeParseError, Message: ErrNilSchema.Error(), Cause: ErrNilSchema}}}
	}
	val, err := s.Parse(ctx, v)
	if err == nil {
		return Result[T]{Success: true, Data: val}
	}
	if iss, ok := AsIssues(err); ok && len(iss) > 0 {
		return Result[T]{Issues: iss}
	}
	return Result[T]{Issues: Issues{{Code: CodeParseError, Message: err.Error(), Cause: err}}}
}

// Is returns true if v conforms to the schema s.
func Is[T any](ctx context.Context, s Schema[T], v any) bool {
	return SafeParse(ctx, s, v).Success
}

// ---- Parse-time context options ----

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
)

// WithFailFast returns a child context that asks schema implementations to
// stop at the first issue.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current parse should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}
