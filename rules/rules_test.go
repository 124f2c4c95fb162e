package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formpath"
	g "github.com/reoring/formpath/dsl"
	"github.com/reoring/formpath/rules"
)

func orderSchema() *g.ObjectSchema {
	item := g.Object().
		Field("sku", g.String().Min(1)).
		Field("qty", g.Int().Min(1)).
		MustBuild()
	return g.Object().
		Field("plan", g.Enum("free", "pro")).
		Field("company", g.String()).Optional().
		Field("items", g.Array(item)).
		Refine(rules.If("/plan", rules.Eq, "pro").Then(rules.Required("/company"))).
		Refine(rules.AtLeastOne("/items")).
		Refine(rules.UniqueBy("/items", "sku")).
		MustBuild()
}

func parseIssues(t *testing.T, ctx context.Context, in map[string]any) formpath.Issues {
	t.Helper()
	_, err := orderSchema().Parse(ctx, in)
	if err == nil {
		return nil
	}
	iss, ok := formpath.AsIssues(err)
	require.True(t, ok, "expected issues, got %v", err)
	return iss
}

func TestRules_InObjectRefinement(t *testing.T) {
	ctx := context.Background()

	iss := parseIssues(t, ctx, map[string]any{
		"plan": "pro",
		"items": []any{
			map[string]any{"sku": "A", "qty": "1"},
			map[string]any{"sku": "B", "qty": "2"},
			map[string]any{"sku": "A", "qty": "3"},
		},
	})
	errs := formpath.Errors(iss)
	assert.Equal(t, formpath.CodeRequired, errs.Field("company").Lookup().Code)
	dup := errs.Field("items").Index(2).Field("sku").Lookup()
	require.NotNil(t, dup)
	assert.Equal(t, "unique", dup.Rule)
	assert.Equal(t, 0, dup.Params["first"])
	assert.False(t, errs.Field("items").Index(0).Field("sku").Has())

	assert.Empty(t, parseIssues(t, ctx, map[string]any{
		"plan":  "free",
		"items": []any{map[string]any{"sku": "A", "qty": "1"}},
	}))

	iss = parseIssues(t, ctx, map[string]any{"plan": "free", "items": []any{}})
	assert.Equal(t, "at_least_one", formpath.Errors(iss).Field("items").Lookup().Rule)
}

func TestRules_FailFast(t *testing.T) {
	ctx := formpath.WithFailFast(context.Background(), true)
	iss := parseIssues(t, ctx, map[string]any{
		"plan": "pro",
		"items": []any{
			map[string]any{"sku": "A", "qty": "1"},
			map[string]any{"sku": "A", "qty": "1"},
		},
	})
	require.Len(t, iss, 1)
	assert.Equal(t, "company", iss[0].Name())
}

func TestEqual(t *testing.T) {
	ci := formpath.NewCustomIssues()
	rules.Equal("/pw1", "/pw2", "passwords do not match")(context.Background(),
		map[string]any{"pw1": "secret", "pw2": "secreT"}, ci)
	require.Equal(t, 1, ci.Len())
	it := ci.ToArray()[0]
	assert.Equal(t, "pw2", it.Name())
	assert.Equal(t, formpath.CodeCustom, it.Code)
	assert.Equal(t, "pw1", it.Params["other"])
}

func TestRequired_IndexedPointer(t *testing.T) {
	// all-digit pointer tokens address array elements
	ci := formpath.NewCustomIssues()
	rules.Required("a/0/b")(context.Background(), map[string]any{"a": []any{map[string]any{"b": ""}}}, ci)
	require.Equal(t, 1, ci.Len())
	assert.True(t, formpath.PathOf("a", 0, "b").Equal(ci.ToArray()[0].Path))
}

func TestOr(t *testing.T) {
	ctx := context.Background()
	email := rules.Required("/email")
	phone := rules.Required("/phone")
	both := rules.And(rules.Required("/email"), rules.Required("/phone"))

	ci := formpath.NewCustomIssues()
	rules.Or(email, phone)(ctx, map[string]any{"phone": "123"}, ci)
	assert.False(t, ci.HasIssues())

	ci = formpath.NewCustomIssues()
	rules.Or(both, email)(ctx, map[string]any{}, ci)
	require.Equal(t, 1, ci.Len(), "the branch with the fewest issues wins")
	assert.Equal(t, "email", ci.ToArray()[0].Name())
}

func TestConditional_Holds(t *testing.T) {
	type order struct {
		Total int    `form:"total"`
		Tier  string `json:"tier"`
		Notes *string
	}
	v := order{Total: 120, Tier: "gold"}

	assert.True(t, rules.If("/total", rules.Gt, 100).Holds(v))
	assert.False(t, rules.If("/total", rules.Lt, 100).Holds(v))
	assert.True(t, rules.If("/total", rules.Ge, 100.5).Holds(v))
	assert.True(t, rules.If("tier", rules.Eq, "gold").And(rules.If("/total", rules.Le, 120)).Holds(v))
	assert.True(t, rules.If("tier", rules.Eq, "silver").Or(rules.If("/total", rules.Ne, 0)).Holds(v))
	assert.False(t, rules.If("/Notes", rules.Eq, nil).Holds(v), "a nil pointer is a missing value")
	assert.False(t, rules.If("/missing", rules.Ne, 1).Holds(v))
}
