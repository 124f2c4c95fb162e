// Package gen renders typed accessors over the path chains from IR object
// shapes. For an object Signup it emits SignupFields, SignupErrors and
// SignupIssues whose methods mirror the object's keys, taking an index
// parameter on array hops:
//
//	NewSignupFields("signup").Todos(2).Task().Name() // "signup.todos[2].task"
package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/internal/ir"
)

// ErrEmptyFile is returned when there is nothing to render.
var ErrEmptyFile = errors.New("gen: no types to render")

// Type is one root object to generate accessors for.
type Type struct {
	Name  string
	Shape *ir.Object
}

// File describes one generated file.
type File struct {
	Package string
	Types   []Type
}

type family struct {
	Suffix    string // type name suffix: Fields, Errors, Issues
	ChainType string // formpath chain type of the accessors
}

var families = []family{
	{"Fields", "formpath.FieldChain"},
	{"Errors", "formpath.ErrorChain"},
	{"Issues", "formpath.IssueChain"},
}

type accessor struct {
	Method  string
	Key     string
	Indices int    // array hops after the key
	Returns string // wrapper base name, "" for the raw chain
}

type wrapper struct {
	Base      string
	Root      bool
	Accessors []accessor
}

type view struct {
	Package  string
	Families []family
	Wrappers []wrapper
}

// RenderFile renders f as gofmt-formatted Go source.
func RenderFile(f File) ([]byte, error) {
	if len(f.Types) == 0 {
		return nil, ErrEmptyFile
	}
	if f.Package == "" {
		f.Package = "main"
	}
	wrappers, err := collect(f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, view{Package: f.Package, Families: families, Wrappers: wrappers}); err != nil {
		return nil, fmt.Errorf("gen: execute template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: format: %w", err)
	}
	return src, nil
}

func collect(f File) ([]wrapper, error) {
	c := collector{seen: map[string]bool{}}
	for _, t := range f.Types {
		if t.Shape == nil {
			return nil, fmt.Errorf("gen: type %s: nil shape", t.Name)
		}
		if err := c.object(exportName(t.Name), t.Shape, true); err != nil {
			return nil, err
		}
	}
	return c.out, nil
}

type collector struct {
	seen map[string]bool
	out  []wrapper
}

func (c *collector) object(base string, obj *ir.Object, root bool) error {
	if c.seen[base] {
		if root {
			c.markRoot(base)
		}
		return nil
	}
	c.seen[base] = true
	idx := len(c.out)
	c.out = append(c.out, wrapper{Base: base, Root: root})

	methods := map[string]string{}
	var acc []accessor
	for _, fd := range obj.Fields {
		if !formpath.ValidKey(fd.Name) {
			return fmt.Errorf("gen: %s: key %q cannot be encoded in a form name", base, fd.Name)
		}
		m := fd.GoName
		if m == "" {
			m = exportName(fd.Name)
		}
		if m == "Chain" {
			m = "ChainField"
		}
		if prev, dup := methods[m]; dup {
			return fmt.Errorf("gen: %s: keys %q and %q both map to method %s", base, prev, fd.Name, m)
		}
		methods[m] = fd.Name

		a := accessor{Method: m, Key: fd.Name}
		s := fd.Schema
		for {
			arr, ok := s.(*ir.Array)
			if !ok {
				break
			}
			a.Indices++
			s = arr.Item
		}
		if o, ok := s.(*ir.Object); ok {
			child := base + m
			if a.Indices > 0 {
				child += "Item"
			}
			if o.Name != "" {
				child = exportName(o.Name)
			}
			a.Returns = child
			if err := c.object(child, o, false); err != nil {
				return err
			}
		}
		acc = append(acc, a)
	}
	c.out[idx].Accessors = acc
	return nil
}

func (c *collector) markRoot(base string) {
	for i := range c.out {
		if c.out[i].Base == base {
			c.out[i].Root = true
		}
	}
}

// exportName turns a form key into an exported Go identifier:
// "listName" -> "ListName", "list_name" -> "ListName", "2fa" -> "X2fa".
func exportName(key string) string {
	var b strings.Builder
	upper := true
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	s := b.String()
	if s == "" || !unicode.IsLetter([]rune(s)[0]) {
		s = "X" + s
	}
	return s
}

func params(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("i%d int", i)
	}
	return strings.Join(ps, ", ")
}

func hops(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, ".Index(i%d)", i)
	}
	return b.String()
}

// Names returns the sorted wrapper type names f would declare.
func Names(f File) ([]string, error) {
	wrappers, err := collect(f)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, w := range wrappers {
		for _, fam := range families {
			out = append(out, w.Base+fam.Suffix)
		}
	}
	sort.Strings(out)
	return out, nil
}

var fileTmpl = template.Must(template.New("file").Funcs(template.FuncMap{
	"params": params,
	"hops":   hops,
}).Parse(`// Code generated by formpath gen. DO NOT EDIT.

package {{.Package}}

import "github.com/reoring/formpath"
{{range $w := .Wrappers}}{{range $f := $.Families}}
// {{$w.Base}}{{$f.Suffix}} navigates {{$w.Base}} with a {{$f.ChainType}}.
type {{$w.Base}}{{$f.Suffix}} struct{ c {{$f.ChainType}} }
{{if $w.Root}}{{if eq $f.Suffix "Fields"}}
// New{{$w.Base}}Fields returns the field accessors of {{$w.Base}} in namespace ns.
func New{{$w.Base}}Fields(ns string) {{$w.Base}}Fields { return {{$w.Base}}Fields{c: formpath.Fields(ns)} }
{{else if eq $f.Suffix "Errors"}}
// New{{$w.Base}}Errors returns the error accessors of {{$w.Base}} over issues.
func New{{$w.Base}}Errors(issues formpath.Issues) {{$w.Base}}Errors { return {{$w.Base}}Errors{c: formpath.Errors(issues)} }
{{else}}
// New{{$w.Base}}Issues returns the custom issue accessors of {{$w.Base}} recording into ci.
func New{{$w.Base}}Issues(ci *formpath.CustomIssues) {{$w.Base}}Issues { return {{$w.Base}}Issues{c: ci.IssueChain} }
{{end}}{{end}}
// Chain returns the underlying chain.
func (x {{$w.Base}}{{$f.Suffix}}) Chain() {{$f.ChainType}} { return x.c }
{{range $a := $w.Accessors}}
// {{$a.Method}} addresses {{printf "%q" $a.Key}}.
func (x {{$w.Base}}{{$f.Suffix}}) {{$a.Method}}({{params $a.Indices}}) {{if $a.Returns}}{{$a.Returns}}{{$f.Suffix}}{{else}}{{$f.ChainType}}{{end}} {
	{{if $a.Returns}}return {{$a.Returns}}{{$f.Suffix}}{c: x.c.Field({{printf "%q" $a.Key}}){{hops $a.Indices}}}{{else}}return x.c.Field({{printf "%q" $a.Key}}){{hops $a.Indices}}{{end}}
}
{{end}}{{end}}{{end}}`))
