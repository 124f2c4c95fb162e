package formpath

import (
	"reflect"
	"strings"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's key segment.
// Priority: form tag name > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		v, ok := sf.Tag.Lookup(tag)
		if !ok || v == "" {
			continue
		}
		if v == "-" {
			return "-"
		}
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		if v != "" {
			return v
		}
	}
	return sf.Name
}
