// Package ir defines the minimal shape representation shared by the schema
// DSL and the accessor generator. This package is internal and not part of
// the public API.
package ir

// NodeKind identifies an IR node type.
type NodeKind int

const (
	NodePrimitive NodeKind = iota
	NodeArray
	NodeObject
)

// Schema is the root IR node interface.
type Schema interface {
	Kind() NodeKind
}

// Primitive represents a leaf value.
type Primitive struct {
	Name string // "string"|"bool"|"int"|"any"
}

func (p *Primitive) Kind() NodeKind { return NodePrimitive }

// Array represents an array of items.
type Array struct {
	Item Schema
}

func (a *Array) Kind() NodeKind { return NodeArray }

// Object represents an object with ordered fields.
type Object struct {
	// Name is the Go type name used by the generator ("" for anonymous
	// objects, which get a name derived from the parent).
	Name     string
	Fields   []Field
	Required map[string]struct{}
}

func (o *Object) Kind() NodeKind { return NodeObject }

// Field maps a key segment to a Schema.
type Field struct {
	Name   string // key segment (post-alias resolution)
	GoName string // optional: exported Go identifier for accessors
	Schema Schema
}

// Any is the shape of values the DSL cannot describe.
var Any Schema = &Primitive{Name: "any"}
