// Package formdata rebuilds the nested value tree of a form submission from
// its flat name/value pairs, inverting formpath.EncodeName.
//
//	signup.todos[0].task=write  ->  {"todos": [{"task": "write"}]}
//
// Leaves are strings; a name submitted several times becomes []any of
// strings. Array holes (todos[0] and todos[2] without todos[1]) are kept as
// nil so element positions, and therefore issue paths, stay aligned with the
// submitted names.
package formdata

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"sort"

	"github.com/reoring/formpath"
)

var (
	// ErrShapeConflict is returned when two names disagree about the shape of
	// a value (a.b=1 and a[0]=2, or a=1 and a.b=2).
	ErrShapeConflict = errors.New("formdata: conflicting field shapes")
	// ErrIndexTooLarge is returned for an array index above the configured
	// maximum.
	ErrIndexTooLarge = errors.New("formdata: array index too large")
)

// DefaultMaxIndex bounds array indices so a crafted name cannot allocate an
// arbitrarily large slice.
const DefaultMaxIndex = 1000

// DefaultMaxMemory is the multipart memory limit used by FromRequest.
const DefaultMaxMemory = 32 << 20

type config struct {
	strict   bool
	maxIndex int
}

// Option configures decoding.
type Option func(*config)

// Strict makes names inside the namespace that cannot be placed in the tree
// an error instead of being skipped: malformed names, names starting with an
// index and indices above the maximum. Shape conflicts are errors either way.
func Strict() Option { return func(c *config) { c.strict = true } }

// MaxIndex overrides DefaultMaxIndex.
func MaxIndex(n int) Option { return func(c *config) { c.maxIndex = n } }

// Decode builds the value tree for namespace ns. Names outside the namespace
// are ignored so several forms, CSRF tokens and submit buttons can share one
// request.
func Decode(ns string, values url.Values, opts ...Option) (map[string]any, error) {
	cfg := config{maxIndex: DefaultMaxIndex}
	for _, o := range opts {
		o(&cfg)
	}

	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)

	root := map[string]any{}
	for _, name := range names {
		p, err := formpath.DecodeName(ns, name)
		if err != nil {
			if errors.Is(err, formpath.ErrNamespaceMismatch) || !cfg.strict {
				continue
			}
			return nil, err
		}
		if p.IsRoot() {
			continue
		}
		if p[0].IsIndex() {
			if !cfg.strict {
				continue
			}
			return nil, fmt.Errorf("%w: %q starts with an index", ErrShapeConflict, name)
		}
		if _, err := insert(root, p, leaf(values[name]), cfg.maxIndex); err != nil {
			if errors.Is(err, ErrIndexTooLarge) && !cfg.strict {
				continue
			}
			return nil, fmt.Errorf("%q: %w", name, err)
		}
	}
	return root, nil
}

func leaf(vals []string) any {
	switch len(vals) {
	case 0:
		return ""
	case 1:
		return vals[0]
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// insert places val at p below container and returns the (possibly new)
// container.
func insert(container any, p formpath.Path, val any, maxIndex int) (any, error) {
	if len(p) == 0 {
		if container != nil {
			return nil, ErrShapeConflict
		}
		return val, nil
	}
	seg := p[0]
	if !seg.IsIndex() {
		m, ok := container.(map[string]any)
		if container == nil {
			m, ok = map[string]any{}, true
		}
		if !ok {
			return nil, ErrShapeConflict
		}
		child, err := insert(m[seg.Name()], p[1:], val, maxIndex)
		if err != nil {
			return nil, err
		}
		m[seg.Name()] = child
		return m, nil
	}

	i := seg.Pos()
	if i < 0 || i > maxIndex {
		return nil, fmt.Errorf("%w: %d", ErrIndexTooLarge, i)
	}
	s, ok := container.([]any)
	if container == nil {
		ok = true
	}
	if !ok {
		return nil, ErrShapeConflict
	}
	for len(s) <= i {
		s = append(s, nil)
	}
	child, err := insert(s[i], p[1:], val, maxIndex)
	if err != nil {
		return nil, err
	}
	s[i] = child
	return s, nil
}

// ParseForm decodes values for namespace ns and runs the result through
// schema. Decoding failures are reported as a root-level parse_error issue.
func ParseForm[T any](ctx context.Context, ns string, schema formpath.Schema[T], values url.Values, opts ...Option) formpath.Result[T] {
	tree, err := Decode(ns, values, opts...)
	if err != nil {
		return formpath.Result[T]{Issues: formpath.Issues{{Code: formpath.CodeParseError, Message: err.Error(), Cause: err}}}
	}
	return formpath.SafeParse(ctx, schema, tree)
}

// FromRequest returns the submitted values of r: the query for GET and HEAD,
// the parsed body (urlencoded or multipart) otherwise. File parts are not
// included.
func FromRequest(r *http.Request) (url.Values, error) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return r.URL.Query(), nil
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
			return nil, fmt.Errorf("formdata: parse multipart: %w", err)
		}
		return r.PostForm, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("formdata: parse form: %w", err)
	}
	return r.PostForm, nil
}
