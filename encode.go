package formpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Characters with structural meaning in encoded names. Keys must not contain
// them; this is a naming precondition and is not checked when encoding.
const (
	nameDelim = '.'
	idDelim   = ':'
	openIdx   = '['
	closeIdx  = ']'
)

var (
	// ErrMalformedName indicates an encoded name that no Path encodes to.
	ErrMalformedName = errors.New("formpath: malformed field name")
	// ErrNamespaceMismatch indicates an encoded name outside the expected
	// namespace.
	ErrNamespaceMismatch = errors.New("formpath: namespace mismatch")
)

// ValidKey reports whether name can be used as a key segment without breaking
// the name encoding.
func ValidKey(name string) bool {
	return name != "" && !strings.ContainsAny(name, ".[]:")
}

func isReserved(c byte) bool {
	return c == nameDelim || c == openIdx || c == closeIdx || c == idDelim
}

// DisplayName renders p without a namespace: keys are joined with "." and each
// index is a bracket suffix on the preceding segment ("todos[2].task",
// "grid[1][0]"). The root renders as "".
func DisplayName(p Path) string {
	if len(p) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for i, s := range p {
		if s.isIdx {
			b.WriteByte(openIdx)
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(closeIdx)
			continue
		}
		if i > 0 {
			b.WriteByte(nameDelim)
		}
		b.WriteString(s.key)
	}
	return b.String()
}

func qualify(ns string, sep byte, display string) string {
	switch {
	case ns == "":
		return display
	case display == "":
		return ns
	case sep == nameDelim && display[0] == openIdx:
		return ns + display
	default:
		return ns + string(sep) + display
	}
}

// EncodeName returns the form field name for p inside namespace ns, e.g.
// "signup.todos[2].task". With an empty namespace it equals DisplayName.
func EncodeName(ns string, p Path) string {
	return qualify(ns, nameDelim, DisplayName(p))
}

// EncodeID returns the DOM id for p inside namespace ns, e.g.
// "signup:todos[2].task". The namespace is always followed by ':', also
// before a leading index ("signup:[0].a"), so an id never equals the
// matching name. Distinct paths yield distinct ids for a fixed namespace as
// long as keys satisfy ValidKey.
func EncodeID(ns string, p Path) string {
	return qualify(ns, idDelim, DisplayName(p))
}

// DecodeName is the inverse of EncodeName.
func DecodeName(ns, name string) (Path, error) {
	rest, err := stripNamespace(ns, nameDelim, name)
	if err != nil {
		return nil, err
	}
	return DecodeDisplayName(rest)
}

// DecodeID is the inverse of EncodeID.
func DecodeID(ns, id string) (Path, error) {
	rest, err := stripNamespace(ns, idDelim, id)
	if err != nil {
		return nil, err
	}
	return DecodeDisplayName(rest)
}

func stripNamespace(ns string, sep byte, s string) (string, error) {
	if ns == "" {
		return s, nil
	}
	if !strings.HasPrefix(s, ns) {
		return "", fmt.Errorf("%w: %q is not in %q", ErrNamespaceMismatch, s, ns)
	}
	rest := s[len(ns):]
	switch {
	case rest == "":
		return "", nil
	case rest[0] == sep:
		return rest[1:], nil
	case sep == nameDelim && rest[0] == openIdx:
		return rest, nil
	}
	return "", fmt.Errorf("%w: %q is not in %q", ErrNamespaceMismatch, s, ns)
}

const (
	stStart = iota
	stAfterSegment
	stNeedKey
)

// DecodeDisplayName parses a namespace-free name produced by DisplayName.
func DecodeDisplayName(s string) (Path, error) {
	var p Path
	state := stStart
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == openIdx && state != stNeedKey:
			end := strings.IndexByte(s[i:], closeIdx)
			if end < 0 {
				return nil, malformed(s, "unclosed bracket")
			}
			num := s[i+1 : i+end]
			if !isDigits(num) {
				return nil, malformed(s, "non-numeric index")
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return nil, malformed(s, err.Error())
			}
			p = append(p, Index(n))
			i += end + 1
			state = stAfterSegment
		case c == nameDelim && state == stAfterSegment:
			i++
			state = stNeedKey
		case !isReserved(c) && state != stAfterSegment:
			j := i
			for j < len(s) && !isReserved(s[j]) {
				j++
			}
			p = append(p, Key(s[i:j]))
			i = j
			state = stAfterSegment
		default:
			return nil, malformed(s, fmt.Sprintf("unexpected %q at %d", c, i))
		}
	}
	if state == stNeedKey {
		return nil, malformed(s, "trailing delimiter")
	}
	return p, nil
}

func malformed(s, why string) error {
	return fmt.Errorf("%w: %q: %s", ErrMalformedName, s, why)
}

// Encoder bundles the encoding functions for one namespace.
type Encoder struct {
	Namespace string
}

// Name is EncodeName(e.Namespace, p).
func (e Encoder) Name(p Path) string { return EncodeName(e.Namespace, p) }

// ID is EncodeID(e.Namespace, p).
func (e Encoder) ID(p Path) string { return EncodeID(e.Namespace, p) }

// Decode is DecodeName(e.Namespace, name).
func (e Encoder) Decode(name string) (Path, error) { return DecodeName(e.Namespace, name) }
