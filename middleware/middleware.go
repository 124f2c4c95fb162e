// Package middleware holds the framework-independent part of the HTTP
// integrations in the gin and echo subpackages.
package middleware

import (
	"context"
	"net/http"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/formdata"
)

// ctxKeyResult is a typed context key for storing Result[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyResult[T any] struct{}

// ContextWithResult attaches a Result[T] to the context.
func ContextWithResult[T any](ctx context.Context, res formpath.Result[T]) context.Context {
	return context.WithValue(ctx, ctxKeyResult[T]{}, res)
}

// ResultFromContext retrieves a Result[T] from context.
func ResultFromContext[T any](ctx context.Context) (formpath.Result[T], bool) {
	v, ok := ctx.Value(ctxKeyResult[T]{}).(formpath.Result[T])
	return v, ok
}

// Config is the resolved middleware configuration.
type Config struct {
	// RejectInvalid answers invalid submissions with 400 and ErrorPayload
	// instead of passing them on to the handler, which would normally render
	// the form again with its errors.
	RejectInvalid bool
	DecodeOptions []formdata.Option
}

// Option configures the middleware.
type Option func(*Config)

// RejectInvalid sets Config.RejectInvalid.
func RejectInvalid() Option { return func(c *Config) { c.RejectInvalid = true } }

// WithDecodeOptions passes options to formdata.Decode.
func WithDecodeOptions(opts ...formdata.Option) Option {
	return func(c *Config) { c.DecodeOptions = append(c.DecodeOptions, opts...) }
}

// NewConfig applies opts.
func NewConfig(opts ...Option) Config {
	var c Config
	for _, o := range opts {
		o(&c)
	}
	return c
}

// ValidateRequest reads the submitted values of r and parses them with s.
// Request body errors become a root-level parse_error issue.
func ValidateRequest[T any](r *http.Request, ns string, s formpath.Schema[T], cfg Config) formpath.Result[T] {
	values, err := formdata.FromRequest(r)
	if err != nil {
		return formpath.Result[T]{Issues: formpath.Issues{{Code: formpath.CodeParseError, Message: err.Error(), Cause: err}}}
	}
	return formdata.ParseForm(r.Context(), ns, s, values, cfg.DecodeOptions...)
}

// ErrorPayload shapes Issues for JSON responses. "fields" maps each encoded
// input name to its first message so a client can flag inputs without
// re-encoding paths; root-level issues are listed under "form".
func ErrorPayload(ns string, issues formpath.Issues) map[string]any {
	fields := map[string]string{}
	var root []string
	for _, it := range issues {
		if it.Path.IsRoot() {
			root = append(root, it.Message)
			continue
		}
		name := formpath.EncodeName(ns, it.Path)
		if _, dup := fields[name]; !dup {
			fields[name] = it.Message
		}
	}
	payload := map[string]any{"issues": issues, "fields": fields}
	if len(root) > 0 {
		payload["form"] = root
	}
	return payload
}
