package formpath

// Renderable is implemented by UI bindings that know how to present an issue
// (an error message component, a template). ErrorChain hands the matching
// issue over instead of treating the value as a plain result.
type Renderable interface {
	RenderIssue(Issue) any
}

// RenderFunc adapts a function to Renderable.
type RenderFunc func(Issue) any

// RenderIssue calls f.
func (f RenderFunc) RenderIssue(it Issue) any { return f(it) }

type boolMarker struct{}

// BoolMarker makes ErrorChain.Call return a bool instead of the issue.
var BoolMarker = boolMarker{}

// ErrorChain mirrors FieldChain navigation and resolves to the issue whose
// path equals the chain's path exactly. Parent paths do not see child issues,
// which keeps root-level refinement issues apart from field issues.
//
// An ErrorChain is bound to one issue list; after re-validation derive a new
// chain from the new list.
type ErrorChain struct {
	issues Issues
	path   Path
}

// Errors returns the root ErrorChain over issues.
func Errors(issues Issues) ErrorChain { return ErrorChain{issues: issues} }

// Field descends into the named property.
func (e ErrorChain) Field(name string) ErrorChain {
	return ErrorChain{issues: e.issues, path: e.path.Field(name)}
}

// Index descends into the i-th array element; i must be non-negative.
func (e ErrorChain) Index(i int) ErrorChain {
	return ErrorChain{issues: e.issues, path: e.path.Index(i)}
}

// At descends along every segment of p.
func (e ErrorChain) At(p Path) ErrorChain {
	return ErrorChain{issues: e.issues, path: e.path.Concat(p)}
}

// Path returns a copy of the current path.
func (e ErrorChain) Path() Path { return e.path.clone() }

// Issue returns the first issue at exactly this path.
func (e ErrorChain) Issue() (Issue, bool) { return e.issues.First(e.path) }

// Lookup returns the matching issue or nil.
func (e ErrorChain) Lookup() *Issue {
	it, ok := e.Issue()
	if !ok {
		return nil
	}
	return &it
}

// Has reports whether an issue exists at this path.
func (e ErrorChain) Has() bool {
	_, ok := e.Issue()
	return ok
}

// Message returns the matching issue's message, or "".
func (e ErrorChain) Message() string {
	it, _ := e.Issue()
	return it.Message
}

// Class returns class when the field is in error and "" otherwise.
func (e ErrorChain) Class(class string) string {
	if e.Has() {
		return class
	}
	return ""
}

// Render binds r to the matching issue. It returns nil when there is none.
func (e ErrorChain) Render(r Renderable) any {
	it, ok := e.Issue()
	if !ok || r == nil {
		return nil
	}
	return r.RenderIssue(it)
}

// All returns every issue at exactly this path.
func (e ErrorChain) All() Issues { return e.issues.At(e.path) }

// Within returns the issues at this path and below it.
func (e ErrorChain) Within() Issues { return e.issues.Under(e.path) }

// Call is the untyped terminal:
//
//	nil               -> *Issue, or nil
//	BoolMarker        -> bool
//	int               -> ErrorChain at that index
//	Renderable        -> r.RenderIssue(issue), or nil
//	func(Issue) any   -> fn(issue), or nil
//	any other value   -> the value itself, or nil
func (e ErrorChain) Call(arg any) any {
	switch v := arg.(type) {
	case nil:
		if p := e.Lookup(); p != nil {
			return p
		}
		return nil
	case boolMarker:
		return e.Has()
	case int:
		return e.Index(v)
	case Renderable:
		return e.Render(v)
	case func(Issue) any:
		if it, ok := e.Issue(); ok {
			return v(it)
		}
		return nil
	}
	if e.Has() {
		return arg
	}
	return nil
}

// MapIssue calls fn with the matching issue. ok is false, and fn is not
// called, when there is none.
func MapIssue[R any](e ErrorChain, fn func(Issue) R) (R, bool) {
	it, ok := e.Issue()
	if !ok {
		var zero R
		return zero, false
	}
	return fn(it), true
}

// Or returns v when an issue exists at e's path.
func Or[T any](e ErrorChain, v T) (T, bool) {
	if e.Has() {
		return v, true
	}
	var zero T
	return zero, false
}
