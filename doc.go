// Package formpath binds a nested form value shape to HTML field names,
// validation issues and custom error annotations through path chains.
//
// Three chains share one traversal primitive, an ordered Path of property
// keys and array indices:
//
//   - FieldChain resolves to encoded field names and ids ("signup.todos[2].task").
//   - ErrorChain resolves to the Issue whose path equals the chain's path.
//   - IssueChain records custom Issues at the chain's path into a shared
//     accumulator owned by its CustomIssues root.
//
// A FieldChain and an ErrorChain navigated the same way hold equal paths, so
// once a submitted name is decoded back into a Path (see DecodeName and the
// formdata package) the issue a validation engine reports for it is found by
// the ErrorChain.
//
// Naming precondition: keys must satisfy ValidKey (no ".", "[", "]" or ":").
// It is not checked at encode time; a key breaking it makes decoding ambiguous.
// Indices must likewise be non-negative; a negative index encodes to a name
// that no decoder accepts.
//
// Typical usage:
//
//	fields := formpath.Fields("signup")
//	fields.Field("todos").Index(2).Field("task").Name() // "signup.todos[2].task"
//
//	res := formdata.ParseForm[Signup](ctx, "signup", schema, r.PostForm)
//	errs := formpath.Errors(res.Issues)
//	if it, ok := errs.Field("todos").Index(2).Field("task").Issue(); ok {
//	    log.Println(it.Code, it.Message)
//	}
//
//	custom := formpath.NewCustomIssues()
//	custom.Field("email").Add("already registered")
//	errs = formpath.Errors(append(res.Issues, custom.ToArray()...))
//
// Package layout: the chains and the Issue model live here; dsl/ and
// validate/ provide validation engines and rules/ reusable refinements,
// formdata/ decodes submissions, form/ ties a namespace, schema and bound
// input together, render/ integrates with html/template, middleware/gin and
// middleware/echo with the web frameworks. cmd/formpath holds the CLI and
// accessor generator.
package formpath
