package formpath_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/formpath"
)

func TestEncodeName(t *testing.T) {
	cases := []struct {
		ns      string
		path    formpath.Path
		name    string
		id      string
		display string
	}{
		{"form", formpath.PathOf("thing"), "form.thing", "form:thing", "thing"},
		{"form", formpath.PathOf("strings", 1), "form.strings[1]", "form:strings[1]", "strings[1]"},
		{"form", formpath.PathOf("todos", 2, "task"), "form.todos[2].task", "form:todos[2].task", "todos[2].task"},
		{"form", formpath.PathOf("meta", "listName"), "form.meta.listName", "form:meta.listName", "meta.listName"},
		{"form", formpath.PathOf("grid", 1, 0), "form.grid[1][0]", "form:grid[1][0]", "grid[1][0]"},
		{"form", formpath.PathOf(0, "a"), "form[0].a", "form:[0].a", "[0].a"},
		{"form", formpath.Root(), "form", "form", ""},
		{"", formpath.PathOf("todos", 0), "todos[0]", "todos[0]", "todos[0]"},
	}
	for _, tc := range cases {
		if got := formpath.EncodeName(tc.ns, tc.path); got != tc.name {
			t.Fatalf("EncodeName(%q,%v)=%q want %q", tc.ns, tc.path.Parts(), got, tc.name)
		}
		if got := formpath.EncodeID(tc.ns, tc.path); got != tc.id {
			t.Fatalf("EncodeID(%q,%v)=%q want %q", tc.ns, tc.path.Parts(), got, tc.id)
		}
		if got := formpath.DisplayName(tc.path); got != tc.display {
			t.Fatalf("DisplayName(%v)=%q want %q", tc.path.Parts(), got, tc.display)
		}
	}
}

func TestDecodeName_RoundTrip(t *testing.T) {
	paths := []formpath.Path{
		formpath.Root(),
		formpath.PathOf("thing"),
		formpath.PathOf("strings", 0),
		formpath.PathOf("todos", 12, "task"),
		formpath.PathOf("grid", 1, 0, "cell"),
		formpath.PathOf("a", "b", "c"),
		formpath.PathOf(3),
	}
	for _, ns := range []string{"", "form", "my.form"} {
		for _, p := range paths {
			got, err := formpath.DecodeName(ns, formpath.EncodeName(ns, p))
			if err != nil {
				t.Fatalf("decode %q: %v", formpath.EncodeName(ns, p), err)
			}
			if d := cmp.Diff(p, got, pathCmp); d != "" {
				t.Fatalf("name round trip ns=%q (-want +got):\n%s", ns, d)
			}
			got, err = formpath.DecodeID(ns, formpath.EncodeID(ns, p))
			if err != nil {
				t.Fatalf("decode id %q: %v", formpath.EncodeID(ns, p), err)
			}
			if d := cmp.Diff(p, got, pathCmp); d != "" {
				t.Fatalf("id round trip ns=%q (-want +got):\n%s", ns, d)
			}
		}
	}
}

func TestEncodeID_LeadingIndex(t *testing.T) {
	p := formpath.PathOf(0, "a")
	name, id := formpath.EncodeName("form", p), formpath.EncodeID("form", p)
	if name == id {
		t.Fatalf("name and id collide: %q", id)
	}
	got, err := formpath.DecodeID("form", id)
	if err != nil {
		t.Fatalf("DecodeID(%q): %v", id, err)
	}
	if d := cmp.Diff(p, got, pathCmp); d != "" {
		t.Fatalf("id round trip (-want +got):\n%s", d)
	}
	if _, err := formpath.DecodeID("form", name); !errors.Is(err, formpath.ErrNamespaceMismatch) {
		t.Fatalf("DecodeID(%q) err=%v, want ErrNamespaceMismatch", name, err)
	}
}

func TestDecodeName_Errors(t *testing.T) {
	malformedNames := []string{
		"a..b", ".a", "a.", "a[", "a[x]", "a[0]b", "a.[0]", "a]", "a:b", "a[-1]",
	}
	for _, s := range malformedNames {
		if _, err := formpath.DecodeDisplayName(s); !errors.Is(err, formpath.ErrMalformedName) {
			t.Fatalf("DecodeDisplayName(%q) err=%v, want ErrMalformedName", s, err)
		}
	}
	for _, s := range []string{"other.thing", "formx.thing", "thing"} {
		if _, err := formpath.DecodeName("form", s); !errors.Is(err, formpath.ErrNamespaceMismatch) {
			t.Fatalf("DecodeName(form,%q) err=%v, want ErrNamespaceMismatch", s, err)
		}
	}
}

func TestValidKey(t *testing.T) {
	for _, k := range []string{"thing", "list_name", "a-b", "ÄÖ"} {
		if !formpath.ValidKey(k) {
			t.Fatalf("ValidKey(%q) = false", k)
		}
	}
	for _, k := range []string{"", "a.b", "a[0]", "a]", "ns:a"} {
		if formpath.ValidKey(k) {
			t.Fatalf("ValidKey(%q) = true", k)
		}
	}
}

func TestEncoder(t *testing.T) {
	enc := formpath.Encoder{Namespace: "signup"}
	p := formpath.PathOf("todos", 0, "task")
	if enc.Name(p) != "signup.todos[0].task" || enc.ID(p) != "signup:todos[0].task" {
		t.Fatalf("unexpected encoding %q %q", enc.Name(p), enc.ID(p))
	}
	back, err := enc.Decode(enc.Name(p))
	if err != nil || !back.Equal(p) {
		t.Fatalf("decode = %v, %v", back.Parts(), err)
	}
}
