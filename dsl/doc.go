// Package dsl provides a small schema DSL for form submissions.
//
// Schemas consume the nested value tree produced by the formdata package
// (map[string]any, []any and string leaves) and report formpath.Issues whose
// paths line up with formpath.FieldChain names, so formpath.ErrorChain can
// find them.
//
// Entry points
//   - Object(): object builder; chain Field/Optional/Refine then Build()/MustBuild().
//   - Array(elem): array schema (Min/Max); element issues are rebased under [i].
//   - String()/Enum()/Int()/Bool(): leaves with form-friendly coercion.
//   - Transform(s, fn): map a parsed value; errors become custom issues.
//   - Custom(fn): a schema backed by a plain function.
//   - SchemaOf(s): adapt any formpath.Schema[T] to a Node for Field.
//   - Bind[T](obj): decode the parsed object into struct T.
//
// Reusable refinements (conditional required, uniqueness, confirmation
// fields) live in the rules package.
//
// Example
//
//	signup := g.Object().
//	    Field("pw1", g.String().Min(8)).
//	    Field("pw2", g.String()).
//	    Refine(func(ctx context.Context, v map[string]any, issues *formpath.CustomIssues) {
//	        if v["pw1"] != v["pw2"] {
//	            issues.Add("passwords do not match")
//	        }
//	    }).
//	    MustBuild()
//
// Error model
//   - Field issues are reported at the field's path (["todos", 2, "task"]).
//   - Refine issues are reported relative to the refined object; an issue
//     added at the root object has the empty path.
//   - formpath.WithFailFast stops at the first issue.
package dsl
