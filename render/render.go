// Package render binds the path chains to html/template.
//
//	{{$f := .Fields}}{{$e := .Errors}}
//	{{with field $f "email"}}
//	  <input id="{{id .}}" name="{{name .}}" class="{{errclass (err $e .) "is-invalid"}}">
//	  {{render (err $e .) $.ErrorTmpl}}
//	{{end}}
//	{{range $i, $t := .Todos}}
//	  <input name="{{name (field (at (field $f "todos") $i) "task")}}">
//	{{end}}
//
// "at" is used for array hops since "index" is a built-in template function.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/reoring/formpath"
)

// FuncMap returns the chain helpers:
//
//	field c name       FieldChain or ErrorChain descended into name
//	at c i             FieldChain or ErrorChain descended into index i
//	name f / id f      encoded name and id of a FieldChain
//	err e f            the ErrorChain at f's path
//	errclass e class   class when e has an issue, "" otherwise
//	errmsg e           the issue message, or ""
//	render e r         e.Render(r), or "" when e has no issue
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"field":    field,
		"at":       at,
		"name":     func(f formpath.FieldChain) string { return f.Name() },
		"id":       func(f formpath.FieldChain) string { return f.ID() },
		"err":      func(e formpath.ErrorChain, f formpath.FieldChain) formpath.ErrorChain { return e.At(f.Path()) },
		"errclass": func(e formpath.ErrorChain, class string) string { return e.Class(class) },
		"errmsg":   func(e formpath.ErrorChain) string { return e.Message() },
		"render":   renderIssue,
	}
}

func renderIssue(e formpath.ErrorChain, r formpath.Renderable) any {
	if out := e.Render(r); out != nil {
		return out
	}
	return ""
}

func field(c any, name string) (any, error) {
	switch v := c.(type) {
	case formpath.FieldChain:
		return v.Field(name), nil
	case formpath.ErrorChain:
		return v.Field(name), nil
	}
	return nil, fmt.Errorf("render: field: unsupported chain %T", c)
}

func at(c any, i int) (any, error) {
	switch v := c.(type) {
	case formpath.FieldChain:
		return v.Index(i), nil
	case formpath.ErrorChain:
		return v.Index(i), nil
	}
	return nil, fmt.Errorf("render: at: unsupported chain %T", c)
}

// Template renders issues with a named template. The template receives the
// formpath.Issue as its data.
type Template struct {
	t    *template.Template
	name string
}

var _ formpath.Renderable = Template{}

// NewTemplate returns a Renderable executing the template name of t.
func NewTemplate(t *template.Template, name string) Template {
	return Template{t: t, name: name}
}

// RenderIssue executes the template. Execution errors render as an HTML
// comment so a broken error template does not break the page.
func (r Template) RenderIssue(it formpath.Issue) any {
	var b strings.Builder
	if err := r.t.ExecuteTemplate(&b, r.name, it); err != nil {
		return template.HTML("<!-- " + template.HTMLEscapeString(err.Error()) + " -->")
	}
	return template.HTML(b.String())
}
