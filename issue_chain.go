package formpath

import (
	"fmt"
	"maps"
	"sync"

	json "github.com/goccy/go-json"
)

// Accumulator is the append-only issue list shared by every node of one
// custom issue chain.
type Accumulator struct {
	mu     sync.Mutex
	issues Issues
}

func (a *Accumulator) add(it Issue) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.issues = append(a.issues, it)
	a.mu.Unlock()
}

func (a *Accumulator) snapshot() Issues {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.issues) == 0 {
		return Issues{}
	}
	out := make(Issues, len(a.issues))
	for i, it := range a.issues {
		out[i] = detach(it)
	}
	return out
}

// detach copies the path and params of it so the copy shares no mutable
// state with the accumulator.
func detach(it Issue) Issue {
	it.Path = append(Path(nil), it.Path...)
	it.Params = maps.Clone(it.Params)
	return it
}

func (a *Accumulator) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.issues)
}

// IssueChain records custom issues at the path it was navigated to. Every
// node derived from one CustomIssues root appends to the same Accumulator.
// The zero IssueChain is detached and records nothing.
type IssueChain struct {
	acc  *Accumulator
	path Path
}

// Field descends into the named property.
func (c IssueChain) Field(name string) IssueChain {
	return IssueChain{acc: c.acc, path: c.path.Field(name)}
}

// Index descends into the i-th array element; i must be non-negative.
func (c IssueChain) Index(i int) IssueChain {
	return IssueChain{acc: c.acc, path: c.path.Index(i)}
}

// At descends along every segment of p.
func (c IssueChain) At(p Path) IssueChain {
	return IssueChain{acc: c.acc, path: c.path.Concat(p)}
}

// Path returns a copy of the current path.
func (c IssueChain) Path() Path { return c.path.clone() }

// Add records a custom issue at the current path and returns it. Multiple
// params maps are merged left to right.
func (c IssueChain) Add(message string, params ...map[string]any) Issue {
	merged := map[string]any{}
	for _, p := range params {
		for k, v := range p {
			merged[k] = v
		}
	}
	return c.Record(Issue{Code: CodeCustom, Message: message, Params: merged})
}

// Record appends it with its path taken relative to the current path. An
// empty code becomes CodeCustom. The stored issue and the returned one are
// independent copies: changing either's Params leaves the other untouched.
func (c IssueChain) Record(it Issue) Issue {
	it.Path = c.path.Concat(it.Path)
	if it.Code == "" {
		it.Code = CodeCustom
	}
	c.acc.add(detach(it))
	return detach(it)
}

// Addf is Add with a formatted message and no params.
func (c IssueChain) Addf(format string, args ...any) Issue {
	return c.Add(fmt.Sprintf(format, args...))
}

// CustomIssues is the root of a custom issue chain. The accessors HasIssues,
// ToArray and Len exist only here, so they can never shadow a field name.
type CustomIssues struct {
	IssueChain
}

// NewCustomIssues starts a chain with a fresh, empty accumulator.
func NewCustomIssues() *CustomIssues {
	return &CustomIssues{IssueChain{acc: &Accumulator{}}}
}

// ContinueCustomIssues starts a chain whose accumulator is pre-filled with a
// copy of issues.
func ContinueCustomIssues(issues Issues) *CustomIssues {
	ci := NewCustomIssues()
	for _, it := range issues {
		ci.acc.issues = append(ci.acc.issues, detach(it))
	}
	return ci
}

// HasIssues reports whether any issue was recorded.
func (ci *CustomIssues) HasIssues() bool { return ci.acc.len() > 0 }

// Len returns the number of recorded issues.
func (ci *CustomIssues) Len() int { return ci.acc.len() }

// ToArray returns a copy of the recorded issues in insertion order.
func (ci *CustomIssues) ToArray() Issues { return ci.acc.snapshot() }

// MarshalJSON serializes the recorded issues as a JSON array.
func (ci *CustomIssues) MarshalJSON() ([]byte, error) {
	return json.Marshal(ci.acc.snapshot())
}
