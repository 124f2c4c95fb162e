package formpath

// Tokens accepted by FieldChain.Call.
const (
	IDToken   = "id"
	NameToken = "name"
)

// FieldProps carries the encoded identifiers of one field.
type FieldProps struct {
	ID   string
	Name string
}

// FieldChain navigates a form's value shape and resolves to encoded field
// names and ids. The zero value is a root chain with an empty namespace.
//
// Navigation never fails: whether the path exists in the schema is only
// discovered when the submitted name is rejected by validation.
type FieldChain struct {
	ns   string
	path Path
}

// Fields returns the root FieldChain for namespace ns.
func Fields(ns string) FieldChain { return FieldChain{ns: ns} }

// Field descends into the named property.
func (c FieldChain) Field(name string) FieldChain {
	return FieldChain{ns: c.ns, path: c.path.Field(name)}
}

// Index descends into the i-th array element; i must be non-negative.
func (c FieldChain) Index(i int) FieldChain {
	return FieldChain{ns: c.ns, path: c.path.Index(i)}
}

// At descends along every segment of p.
func (c FieldChain) At(p Path) FieldChain {
	return FieldChain{ns: c.ns, path: c.path.Concat(p)}
}

// Namespace returns the chain's namespace.
func (c FieldChain) Namespace() string { return c.ns }

// Path returns a copy of the current path.
func (c FieldChain) Path() Path { return c.path.clone() }

// Name returns the encoded form field name.
func (c FieldChain) Name() string { return EncodeName(c.ns, c.path) }

// ID returns the encoded DOM id.
func (c FieldChain) ID() string { return EncodeID(c.ns, c.path) }

// DisplayName returns the namespace-free name used in diagnostics.
func (c FieldChain) DisplayName() string { return DisplayName(c.path) }

// Props returns both identifiers.
func (c FieldChain) Props() FieldProps { return FieldProps{ID: c.ID(), Name: c.Name()} }

// String returns the encoded name so a chain can be printed directly into
// markup.
func (c FieldChain) String() string { return c.Name() }

// FieldValue calls fn with the identifiers of c and returns its result
// verbatim.
func FieldValue[R any](c FieldChain, fn func(FieldProps) R) R {
	return fn(c.Props())
}

// Call is the untyped terminal:
//
//	nil or NameToken       -> encoded name (string)
//	IDToken                -> encoded id (string)
//	int                    -> FieldChain at that index
//	func(FieldProps) any   -> fn's result
//
// Any other argument resolves to the name.
func (c FieldChain) Call(arg any) any {
	switch v := arg.(type) {
	case nil:
		return c.Name()
	case int:
		return c.Index(v)
	case string:
		if v == IDToken {
			return c.ID()
		}
		return c.Name()
	case func(FieldProps) any:
		return v(c.Props())
	case func(FieldProps) string:
		return v(c.Props())
	}
	return c.Name()
}
