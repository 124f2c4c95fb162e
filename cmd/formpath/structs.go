package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/internal/gen"
	"github.com/reoring/formpath/internal/ir"
)

// structIndex holds the struct type declarations of one package directory.
type structIndex struct {
	pkg     string
	structs map[string]*ast.StructType
}

// loadStructs parses the non-test Go files of dir.
func loadStructs(dir string) (*structIndex, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return nil, err
	}
	idx := &structIndex{structs: map[string]*ast.StructType{}}
	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if idx.pkg == "" {
			idx.pkg = f.Name.Name
		}
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || ts.Name == nil {
					continue
				}
				if st, ok := ts.Type.(*ast.StructType); ok && st.Fields != nil {
					idx.structs[ts.Name.Name] = st
				}
			}
		}
	}
	if idx.pkg == "" {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}
	return idx, nil
}

// file builds the generator input for the named struct types.
func (idx *structIndex) file(pkg string, names []string) (gen.File, error) {
	if pkg == "" {
		pkg = idx.pkg
	}
	out := gen.File{Package: pkg}
	for _, name := range names {
		st, ok := idx.structs[name]
		if !ok {
			return gen.File{}, fmt.Errorf("struct type %s not found", name)
		}
		out.Types = append(out.Types, gen.Type{Name: name, Shape: idx.object(name, st, map[string]bool{})})
	}
	return out, nil
}

// object converts a struct to an object shape. Keys follow
// formpath.ResolveStructKey; unexported and embedded fields are skipped.
// A field without ",omitempty" is required.
func (idx *structIndex) object(name string, st *ast.StructType, stack map[string]bool) *ir.Object {
	if name != "" {
		stack[name] = true
		defer delete(stack, name)
	}
	obj := &ir.Object{Name: name, Required: map[string]struct{}{}}
	for _, fd := range st.Fields.List {
		var tag reflect.StructTag
		if fd.Tag != nil {
			tag = reflect.StructTag(strings.Trim(fd.Tag.Value, "`"))
		}
		for _, id := range fd.Names {
			if !id.IsExported() {
				continue
			}
			key := formpath.ResolveStructKey(reflect.StructField{Name: id.Name, Tag: tag})
			if key == "-" {
				continue
			}
			obj.Fields = append(obj.Fields, ir.Field{
				Name:   key,
				GoName: id.Name,
				Schema: idx.shape(fd.Type, stack),
			})
			if !omitEmpty(tag) {
				obj.Required[key] = struct{}{}
			}
		}
	}
	return obj
}

func (idx *structIndex) shape(expr ast.Expr, stack map[string]bool) ir.Schema {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return idx.shape(t.X, stack)
	case *ast.ArrayType:
		return &ir.Array{Item: idx.shape(t.Elt, stack)}
	case *ast.StructType:
		return idx.object("", t, stack)
	case *ast.Ident:
		switch t.Name {
		case "string":
			return &ir.Primitive{Name: "string"}
		case "bool":
			return &ir.Primitive{Name: "bool"}
		case "int", "int8", "int16", "int32", "int64",
			"uint", "uint8", "uint16", "uint32", "uint64":
			return &ir.Primitive{Name: "int"}
		}
		if st, ok := idx.structs[t.Name]; ok && !stack[t.Name] {
			return idx.object(t.Name, st, stack)
		}
	}
	return ir.Any
}

func omitEmpty(tag reflect.StructTag) bool {
	for _, key := range []string{"form", "json"} {
		v, ok := tag.Lookup(key)
		if !ok {
			continue
		}
		for _, opt := range strings.Split(v, ",")[1:] {
			if strings.TrimSpace(opt) == "omitempty" {
				return true
			}
		}
	}
	return false
}
