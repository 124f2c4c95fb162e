// Package rules provides reusable cross-field refinements for dsl objects.
// A Rule has the shape of dsl.RefineFunc and reports through the custom
// issue chain, so issues land on the field they are about:
//
//	dsl.Object().
//	    Field("plan", dsl.Enum("free", "pro")).
//	    Field("company", dsl.String()).Optional().
//	    Field("items", dsl.Array(item)).
//	    Refine(rules.If("/plan", rules.Eq, "pro").Then(rules.Required("/company"))).
//	    Refine(rules.UniqueBy("/items", "sku"))
//
// Paths are JSON Pointers over the parsed value using form keys.
package rules

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/formpath"
)

// Rule records issues about v into issues. It is assignable to
// dsl.RefineFunc.
type Rule = func(ctx context.Context, v map[string]any, issues *formpath.CustomIssues)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path formpath.Path
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that compares the value at path with want.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: pointer(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against v. A missing value never matches.
func (c Conditional) Holds(v any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(v) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAt(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then runs rules, in order, when the condition holds.
func (c Conditional) Then(rules ...Rule) Rule {
	all := And(rules...)
	return func(ctx context.Context, v map[string]any, issues *formpath.CustomIssues) {
		if c.Holds(v) {
			all(ctx, v, issues)
		}
	}
}

// Required reports every path whose value is missing, nil or "".
func Required(paths ...string) Rule {
	ps := make([]formpath.Path, len(paths))
	for i, p := range paths {
		ps[i] = pointer(p)
	}
	return func(ctx context.Context, v map[string]any, issues *formpath.CustomIssues) {
		for _, p := range ps {
			cur, ok := valueAt(v, p)
			if ok && cur != nil && cur != "" {
				continue
			}
			issues.Record(formpath.Issue{Path: p, Code: formpath.CodeRequired, Rule: "required", Message: "required"})
			if formpath.IsFailFast(ctx) {
				return
			}
		}
	}
}

// Equal reports an issue at b when the values at a and b differ, as in a
// password confirmation.
func Equal(a, b, message string) Rule {
	pa, pb := pointer(a), pointer(b)
	return func(_ context.Context, v map[string]any, issues *formpath.CustomIssues) {
		x, _ := valueAt(v, pa)
		y, _ := valueAt(v, pb)
		if !reflect.DeepEqual(x, y) {
			issues.Record(formpath.Issue{Path: pb, Rule: "equal", Message: message,
				Params: map[string]any{"other": formpath.DisplayName(pa)}})
		}
	}
}

// AtLeastOne ensures the collection at collectionPath has at least 1 element.
func AtLeastOne(collectionPath string) Rule {
	p := pointer(collectionPath)
	return func(_ context.Context, v map[string]any, issues *formpath.CustomIssues) {
		val, ok := valueAt(v, p)
		if !ok {
			return
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if rv.Len() == 0 {
				issues.Record(formpath.Issue{Path: p, Code: formpath.CodeTooSmall, Rule: "at_least_one",
					Message: "at least 1 item is required", Params: map[string]any{"minimum": 1}})
			}
		default:
			// not a collection; left to the field schema
		}
	}
}

// UniqueBy ensures elements in a collection have unique key values.
// collectionPath is a pointer to an array (e.g. "/items"); keyPath is
// relative to each element (e.g. "sku"). Duplicates are reported on the
// key of every later element.
func UniqueBy(collectionPath, keyPath string) Rule {
	cp := pointer(collectionPath)
	kp := pointer(keyPath)
	return func(ctx context.Context, v map[string]any, issues *formpath.CustomIssues) {
		val, ok := valueAt(v, cp)
		if !ok {
			return
		}
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return
		}
		seen := map[string]int{}
		for i := 0; i < rv.Len(); i++ {
			kv, ok := valueAt(rv.Index(i).Interface(), kp)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			j, dup := seen[key]
			if !dup {
				seen[key] = i
				continue
			}
			issues.Record(formpath.Issue{
				Path:    cp.Index(i).Concat(kp),
				Rule:    "unique",
				Message: "duplicate value",
				Params:  map[string]any{"first": j, "dup": i, "key": key},
			})
			if formpath.IsFailFast(ctx) {
				return
			}
		}
	}
}

// And runs every rule. Under fail-fast it stops after the first rule that
// records an issue.
func And(rules ...Rule) Rule {
	return func(ctx context.Context, v map[string]any, issues *formpath.CustomIssues) {
		for _, r := range rules {
			if r == nil {
				continue
			}
			before := issues.Len()
			r(ctx, v, issues)
			if issues.Len() > before && formpath.IsFailFast(ctx) {
				return
			}
		}
	}
}

// Or succeeds if any rule records no issue. When all fail, the issues of the
// branch with the fewest issues are recorded.
func Or(rules ...Rule) Rule {
	return func(ctx context.Context, v map[string]any, issues *formpath.CustomIssues) {
		var best formpath.Issues
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			scratch := formpath.NewCustomIssues()
			r(ctx, v, scratch)
			if !scratch.HasIssues() {
				return
			}
			if iss := scratch.ToArray(); !bestSet || len(iss) < len(best) {
				best, bestSet = iss, true
			}
		}
		for _, it := range best {
			issues.Record(it)
		}
	}
}

// ------- helpers -------

// pointer accepts "/a/0/b" as well as "a/0/b".
func pointer(p string) formpath.Path {
	if p != "" && p[0] != '/' {
		p = "/" + p
	}
	return formpath.ParsePointer(p)
}

// valueAt navigates maps, structs (by form key) and slices.
func valueAt(v any, p formpath.Path) (any, bool) {
	cur := reflect.ValueOf(v)
	for _, seg := range p {
		for cur.IsValid() && (cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Struct:
			if seg.IsIndex() {
				return nil, false
			}
			found := false
			rt := cur.Type()
			for i := 0; i < rt.NumField(); i++ {
				sf := rt.Field(i)
				if sf.IsExported() && formpath.ResolveStructKey(sf) == seg.Name() {
					cur = cur.Field(i)
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			key := seg.Name()
			if seg.IsIndex() {
				key = fmt.Sprint(seg.Pos())
			}
			mv := cur.MapIndex(reflect.ValueOf(key).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			if !seg.IsIndex() || seg.Pos() >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(seg.Pos())
		default:
			return nil, false
		}
	}
	for cur.IsValid() && (cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) {
		if cur.IsNil() {
			return nil, false
		}
		cur = cur.Elem()
	}
	if !cur.IsValid() {
		return nil, false
	}
	return cur.Interface(), true
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

func compareOrdered(cur any, op Op, want any) bool {
	c := reflect.ValueOf(cur)
	w := reflect.ValueOf(want)
	var cmp int
	switch {
	case isIntLike(c.Kind()) && isIntLike(w.Kind()):
		a, b := toInt64(c), toInt64(w)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	case isNumber(c.Kind()) && isNumber(w.Kind()):
		cmp = sign(toFloat64(c) - toFloat64(w))
	case c.Kind() == reflect.String && w.Kind() == reflect.String:
		cmp = strings.Compare(c.String(), w.String())
	default:
		return false
	}
	switch op {
	case Lt:
		return cmp < 0
	case Le:
		return cmp <= 0
	case Gt:
		return cmp > 0
	case Ge:
		return cmp >= 0
	}
	return false
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	}
	return 0
}

func isIntLike(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func isNumber(k reflect.Kind) bool {
	return isIntLike(k) || k == reflect.Float32 || k == reflect.Float64
}

func toInt64(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	default:
		return 0
	}
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	default:
		return float64(toInt64(v))
	}
}
