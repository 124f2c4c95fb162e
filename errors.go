package formpath

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	CodeParseError    = "parse_error"
	// CodeCustom marks issues recorded through a custom issue chain or an
	// object refinement.
	CodeCustom = "custom"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    Path
	Code    string // One of the codes listed above, or an engine-specific code.
	Message string
	// Params carries structured parameters (e.g., {"minimum":2}) for i18n and
	// custom renderers.
	Params map[string]any
	Hint   string // Optional: remediation hints, format names, etc.
	Cause  error  // Optional: underlying error.
	// Rule optionally records the rule or tag that produced this issue.
	Rule string
}

// Name returns the display name of the issue's path.
func (it Issue) Name() string { return DisplayName(it.Path) }

type issueWire struct {
	Path    Path           `json:"path"`
	Name    string         `json:"name"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
	Hint    string         `json:"hint,omitempty"`
	Rule    string         `json:"rule,omitempty"`
}

// MarshalJSON writes the path as a segment array alongside its display name.
// Cause is not serialized.
func (it Issue) MarshalJSON() ([]byte, error) {
	p := it.Path
	if p == nil {
		p = Path{}
	}
	return json.Marshal(issueWire{
		Path:    p,
		Name:    it.Name(),
		Code:    it.Code,
		Message: it.Message,
		Params:  it.Params,
		Hint:    it.Hint,
		Rule:    it.Rule,
	})
}

// UnmarshalJSON reads the form written by MarshalJSON; name is ignored.
func (it *Issue) UnmarshalJSON(data []byte) error {
	var w issueWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*it = Issue{Path: w.Path, Code: w.Code, Message: w.Message, Params: w.Params, Hint: w.Hint, Rule: w.Rule}
	return nil
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. too_small at todos[1].task
		name := it.Name()
		if name == "" {
			name = "(root)"
		}
		fmt.Fprintf(b, "%s at %s", it.Code, name)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// First returns the first issue whose path equals p. Duplicates are not an
// error; the earliest entry wins.
func (iss Issues) First(p Path) (Issue, bool) {
	for _, it := range iss {
		if Equal(it.Path, p) {
			return it, true
		}
	}
	return Issue{}, false
}

// At returns every issue whose path equals p, in list order.
func (iss Issues) At(p Path) Issues {
	var out Issues
	for _, it := range iss {
		if Equal(it.Path, p) {
			out = append(out, it)
		}
	}
	return out
}

// Under returns every issue located at p or below it.
func (iss Issues) Under(p Path) Issues {
	var out Issues
	for _, it := range iss {
		if it.Path.HasPrefix(p) {
			out = append(out, it)
		}
	}
	return out
}

// Rebase returns a copy with prefix prepended to every path. Used when a
// nested schema reports issues relative to itself.
func (iss Issues) Rebase(prefix Path) Issues {
	if len(iss) == 0 {
		return nil
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Path = prefix.Concat(it.Path)
		out[i] = it
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p Path, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.clone(), Code: code, Message: msg, Params: params}
}
