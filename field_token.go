package formpath

import (
	"reflect"
)

const _maxPathDepth = 32

// FieldPath resolves the Path of a (possibly nested) struct field of T from a
// selector, e.g.
//
//	FieldPath(func(s *Signup) *string { return &s.Address.Street })
//
// yields ["address", "street"] under the ResolveStructKey rule. Renaming or
// removing the field breaks the build instead of silently producing a stale
// name. Only non-pointer struct fields are descended; array elements are
// reached by appending Index segments to the result.
//
// FieldPath panics when the selector does not return the address of a field
// of T.
func FieldPath[T any, F any](selector func(*T) *F) Path {
	if selector == nil {
		panic("formpath.FieldPath: selector must not be nil")
	}
	var zero T
	target := reflect.ValueOf(selector(&zero)).Pointer()
	ft := reflect.TypeOf((*F)(nil)).Elem()
	p, ok := findFieldPath(reflect.ValueOf(&zero).Elem(), target, ft, 0)
	if !ok || len(p) == 0 {
		panic("formpath.FieldPath: selector must return the address of an exported field of T")
	}
	return p
}

// findFieldPath matches on address and type: a struct shares its address with
// its first field.
func findFieldPath(v reflect.Value, target uintptr, ft reflect.Type, depth int) (Path, bool) {
	if depth > _maxPathDepth {
		return nil, false
	}
	t := v.Type()
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := v.Field(i)
		name := ResolveStructKey(sf)
		if name == "-" {
			continue
		}
		if fv.CanAddr() && fv.Addr().Pointer() == target && fv.Type() == ft {
			return Path{Key(name)}, true
		}
		// Recurse into nested structs only (skip pointers for safety)
		if fv.Kind() == reflect.Struct {
			if rest, ok := findFieldPath(fv, target, ft, depth+1); ok {
				return append(Path{Key(name)}, rest...), true
			}
		}
	}
	return nil, false
}
