// Package form ties a namespace, a schema and a bound submission together:
// the server-side counterpart of a client form binder.
//
//	f := form.New[Signup]("signup", schema, form.WithLogger(log))
//	f.Bind(form.RequestSource(r))
//	res, err := f.HandleSubmit(ctx, func(ctx context.Context, s form.ValidSubmit[Signup]) error {
//	    return store.Create(ctx, s.Data)
//	})
//	// render with f.Fields() and f.Errors()
package form

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/formdata"
)

// ErrNoSource is reported when a form is validated before Bind.
var ErrNoSource = errors.New("form: no source bound")

// Source yields the submitted values of a form.
type Source interface {
	Values() (url.Values, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (url.Values, error)

// Values calls f.
func (f SourceFunc) Values() (url.Values, error) { return f() }

// RequestSource reads the values of r with formdata.FromRequest.
func RequestSource(r *http.Request) Source {
	return SourceFunc(func() (url.Values, error) { return formdata.FromRequest(r) })
}

// ValuesSource returns v as is.
func ValuesSource(v url.Values) Source {
	return SourceFunc(func() (url.Values, error) { return v, nil })
}

// ValidSubmit is passed to the submit callback when validation succeeds.
type ValidSubmit[T any] struct {
	Data   T
	Values url.Values
}

// SubmitFunc handles a valid submission.
type SubmitFunc[T any] func(ctx context.Context, s ValidSubmit[T]) error

type settings struct {
	logger     zerolog.Logger
	custom     formpath.Issues
	decodeOpts []formdata.Option
	onValid    any
}

// Option configures a Form.
type Option func(*settings)

// WithLogger sets the logger used for validation events. The default
// discards them.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithCustomIssues adds issues that Errors reports alongside validation
// issues (server-side checks such as "email already registered").
func WithCustomIssues(iss formpath.Issues) Option {
	return func(s *settings) { s.custom = append(s.custom, iss...) }
}

// WithDecodeOptions passes options to formdata.Decode.
func WithDecodeOptions(opts ...formdata.Option) Option {
	return func(s *settings) { s.decodeOpts = append(s.decodeOpts, opts...) }
}

// WithOnValidSubmit sets the default callback of HandleSubmit. It is ignored
// by a Form whose data type is not T.
func WithOnValidSubmit[T any](fn SubmitFunc[T]) Option {
	return func(s *settings) { s.onValid = fn }
}

// Form is one form instance. It is safe for concurrent use, though a Form is
// normally scoped to a single request.
type Form[T any] struct {
	ns      string
	schema  formpath.Schema[T]
	log     zerolog.Logger
	custom  formpath.Issues
	decode  []formdata.Option
	onValid SubmitFunc[T]

	mu         sync.RWMutex
	src        Source
	values     url.Values
	validation *formpath.Result[T]
	submitted  bool
}

// New creates a form for namespace ns. An empty ns is replaced by a random
// "form-<uuid>" namespace.
func New[T any](ns string, schema formpath.Schema[T], opts ...Option) *Form[T] {
	s := settings{logger: zerolog.Nop()}
	for _, o := range opts {
		o(&s)
	}
	if ns == "" {
		ns = "form-" + uuid.NewString()
	}
	f := &Form[T]{
		ns:     ns,
		schema: schema,
		log:    s.logger.With().Str("form", ns).Logger(),
		custom: s.custom,
		decode: s.decodeOpts,
	}
	if fn, ok := s.onValid.(SubmitFunc[T]); ok {
		f.onValid = fn
	}
	return f
}

// Namespace returns the form's namespace.
func (f *Form[T]) Namespace() string { return f.ns }

// Fields returns the root FieldChain of the form.
func (f *Form[T]) Fields() formpath.FieldChain { return formpath.Fields(f.ns) }

// Errors returns an ErrorChain over the latest validation issues followed by
// the custom issues. It must be derived again after each validation.
func (f *Form[T]) Errors() formpath.ErrorChain {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var iss formpath.Issues
	if f.validation != nil && !f.validation.Success {
		iss = append(iss, f.validation.Issues...)
	}
	iss = append(iss, f.custom...)
	return formpath.Errors(iss)
}

// CustomIssues returns a copy of the custom issues.
func (f *Form[T]) CustomIssues() formpath.Issues {
	return append(formpath.Issues(nil), f.custom...)
}

// Validation returns the latest result; ok is false before the first
// validation.
func (f *Form[T]) Validation() (formpath.Result[T], bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.validation == nil {
		return formpath.Result[T]{}, false
	}
	return *f.validation, true
}

// Values returns the values read by the latest validation.
func (f *Form[T]) Values() url.Values {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values
}

// Submitted reports whether HandleSubmit has been called.
func (f *Form[T]) Submitted() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitted
}

// Bind replaces the bound source. The submitted state is kept.
func (f *Form[T]) Bind(src Source) {
	f.mu.Lock()
	f.src = src
	f.mu.Unlock()
}

// Validate reads the bound source and validates it. Reading or decoding
// failures are reported as a root-level parse_error issue.
func (f *Form[T]) Validate(ctx context.Context) formpath.Result[T] {
	f.mu.RLock()
	src := f.src
	f.mu.RUnlock()

	var (
		values url.Values
		res    formpath.Result[T]
	)
	if src == nil {
		res = parseError[T](ErrNoSource)
	} else if v, err := src.Values(); err != nil {
		res = parseError[T](err)
	} else {
		values = v
		res = formdata.ParseForm(ctx, f.ns, f.schema, v, f.decode...)
	}

	f.mu.Lock()
	f.values = values
	f.validation = &res
	f.mu.Unlock()

	f.log.Debug().
		Bool("success", res.Success).
		Int("issues", len(res.Issues)).
		Msg("form validated")
	return res
}

func parseError[T any](err error) formpath.Result[T] {
	return formpath.Result[T]{Issues: formpath.Issues{{Code: formpath.CodeParseError, Message: err.Error(), Cause: err}}}
}

// HandleChange re-validates on an input change, but only until the form has
// been submitted once; ran is false when validation was skipped.
func (f *Form[T]) HandleChange(ctx context.Context) (res formpath.Result[T], ran bool) {
	if f.Submitted() {
		res, _ = f.Validation()
		return res, false
	}
	return f.Validate(ctx), true
}

// HandleSubmit marks the form submitted and validates it. On success onValid
// (or the WithOnValidSubmit callback when onValid is nil) receives the data;
// its error is returned.
func (f *Form[T]) HandleSubmit(ctx context.Context, onValid SubmitFunc[T]) (formpath.Result[T], error) {
	f.mu.Lock()
	f.submitted = true
	f.mu.Unlock()

	res := f.Validate(ctx)
	if !res.Success {
		f.log.Info().Int("issues", len(res.Issues)).Msg("submit rejected")
		return res, nil
	}
	if onValid == nil {
		onValid = f.onValid
	}
	if onValid == nil {
		return res, nil
	}
	if err := onValid(ctx, ValidSubmit[T]{Data: res.Data, Values: f.Values()}); err != nil {
		f.log.Error().Err(err).Msg("submit handler failed")
		return res, err
	}
	return res, nil
}
