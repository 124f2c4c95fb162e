package formpath

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Segment is a single hop in a Path: either a property key or an array index.
type Segment struct {
	key   string
	index int
	isIdx bool
}

// Key returns a property-name segment.
func Key(name string) Segment { return Segment{key: name} }

// Index returns an array-index segment. i must be non-negative; a negative
// index has no form or pointer encoding that decodes back to it.
func Index(i int) Segment { return Segment{index: i, isIdx: true} }

// IsIndex reports whether the segment is an array index.
func (s Segment) IsIndex() bool { return s.isIdx }

// Name returns the property name ("" for index segments).
func (s Segment) Name() string { return s.key }

// Pos returns the array index (0 for key segments; check IsIndex first).
func (s Segment) Pos() int { return s.index }

// Equal compares kind and value. A key segment never equals an index segment,
// even when the key is "0".
func (s Segment) Equal(o Segment) bool {
	if s.isIdx != o.isIdx {
		return false
	}
	if s.isIdx {
		return s.index == o.index
	}
	return s.key == o.key
}

func (s Segment) String() string {
	if s.isIdx {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// Path is an ordered sequence of segments locating a value inside a nested
// schema. Treat it as immutable: every builder method returns a fresh copy.
type Path []Segment

// Root returns the empty path.
func Root() Path { return nil }

// PathOf builds a Path from string (key) and int (index) parts, the shape
// validation engines usually report. A float64 part becomes an index only
// when it is a non-negative whole number (JSON decoders report indices that
// way); any other float is kept as a key in its shortest decimal form, as are
// values of other types (formatted with %v). Int parts must be non-negative,
// as for Index.
func PathOf(parts ...any) Path {
	if len(parts) == 0 {
		return nil
	}
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case Segment:
			p = append(p, v)
		case string:
			p = append(p, Key(v))
		case int:
			p = append(p, Index(v))
		case int64:
			p = append(p, Index(int(v)))
		case float64:
			if v >= 0 && v == math.Trunc(v) && v <= math.MaxInt32 {
				p = append(p, Index(int(v)))
			} else {
				p = append(p, Key(strconv.FormatFloat(v, 'g', -1, 64)))
			}
		default:
			p = append(p, Key(fmt.Sprint(v)))
		}
	}
	return p
}

// Append returns a new Path with seg appended. The receiver's backing array is
// never shared with the result.
func (p Path) Append(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Field appends a key segment.
func (p Path) Field(name string) Path { return p.Append(Key(name)) }

// Index appends an index segment. i must be non-negative.
func (p Path) Index(i int) Path { return p.Append(Index(i)) }

// Concat appends every segment of q.
func (p Path) Concat(q Path) Path {
	if len(q) == 0 {
		return p.clone()
	}
	out := make(Path, len(p), len(p)+len(q))
	copy(out, p)
	return append(out, q...)
}

func (p Path) clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p) }

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Last returns the final segment; ok is false at the root.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Parent drops the final segment. The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].clone()
}

// Equal reports segment-wise equality.
func (p Path) Equal(q Path) bool { return Equal(p, q) }

// HasPrefix reports whether q is a (non-strict) prefix of p.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	return Equal(p[:len(q)], q)
}

// Equal reports whether a and b have the same length and pairwise equal
// segments.
func Equal(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// String returns the display name (see DisplayName).
func (p Path) String() string { return DisplayName(p) }

// Pointer renders the path as an RFC 6901 JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		if s.isIdx {
			b.WriteString(strconv.Itoa(s.index))
			continue
		}
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.key, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// ParsePointer parses a JSON Pointer. A pointer carries no type information,
// so all-digit tokens become index segments and everything else becomes a
// key.
func ParsePointer(ptr string) Path {
	if ptr == "" || ptr == "/" {
		return nil
	}
	var p Path
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if n, err := strconv.Atoi(tok); err == nil && n >= 0 && isDigits(tok) {
			p = append(p, Index(n))
			continue
		}
		p = append(p, Key(strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")))
	}
	return p
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Parts returns the path as a []any of strings and ints.
func (p Path) Parts() []any {
	out := make([]any, len(p))
	for i, s := range p {
		if s.isIdx {
			out[i] = s.index
		} else {
			out[i] = s.key
		}
	}
	return out
}

// MarshalJSON encodes the path as an array of strings and numbers, e.g.
// ["strings",1].
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Parts())
}

// UnmarshalJSON accepts the array form produced by MarshalJSON. Numbers become
// index segments.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out := make(Path, 0, len(raw))
	for _, r := range raw {
		switch v := r.(type) {
		case string:
			out = append(out, Key(v))
		case json.Number:
			n, err := strconv.Atoi(v.String())
			if err != nil {
				return fmt.Errorf("formpath: invalid index %q: %w", v.String(), err)
			}
			out = append(out, Index(n))
		default:
			return fmt.Errorf("formpath: invalid path segment %v", r)
		}
	}
	if len(out) == 0 {
		out = nil
	}
	*p = out
	return nil
}
