package validate_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/formdata"
	"github.com/reoring/formpath/validate"
)

type todo struct {
	Task string `form:"task" validate:"required"`
	Done bool   `form:"done"`
}

type signup struct {
	Email   string   `form:"email" validate:"required,email"`
	Age     int      `form:"age" validate:"gte=18"`
	Strings []string `form:"strings" validate:"dive,min=2"`
	Todos   []todo   `form:"todos" validate:"dive"`
	Plan    string   `form:"plan" validate:"oneof=free pro"`
}

func TestStruct_Valid(t *testing.T) {
	values := url.Values{
		"signup.email":         {"a@example.com"},
		"signup.age":           {"20"},
		"signup.strings[0]":    {"ding"},
		"signup.todos[0].task": {"milk"},
		"signup.todos[0].done": {"on"},
		"signup.plan":          {"pro"},
	}
	res := formdata.ParseForm[signup](context.Background(), "signup", validate.Struct[signup](), values)
	require.True(t, res.Success, "issues: %v", res.Issues)
	assert.Equal(t, 20, res.Data.Age)
	assert.Equal(t, []string{"ding"}, res.Data.Strings)
	require.Len(t, res.Data.Todos, 1)
	assert.True(t, res.Data.Todos[0].Done)
}

func TestStruct_IssuePaths(t *testing.T) {
	fields := formpath.Fields("signup")
	values := url.Values{
		fields.Field("email").Name():                        {"not-an-email"},
		fields.Field("age").Name():                          {"17"},
		fields.Field("strings").Index(0).Name():             {"ding"},
		fields.Field("strings").Index(1).Name():             {"d"},
		fields.Field("todos").Index(0).Field("task").Name(): {""},
		fields.Field("plan").Name():                         {"gold"},
	}
	res := formdata.ParseForm[signup](context.Background(), "signup", validate.Struct[signup](), values)
	require.False(t, res.Success)

	errs := formpath.Errors(res.Issues)
	cases := []struct {
		at   formpath.ErrorChain
		code string
	}{
		{errs.Field("email"), formpath.CodeInvalidFormat},
		{errs.Field("age"), formpath.CodeTooSmall},
		{errs.Field("strings").Index(1), formpath.CodeTooSmall},
		{errs.Field("todos").Index(0).Field("task"), formpath.CodeRequired},
		{errs.Field("plan"), formpath.CodeInvalidEnum},
	}
	for _, tc := range cases {
		it, ok := tc.at.Issue()
		require.True(t, ok, "no issue at %v in %v", tc.at.Path().Parts(), res.Issues)
		assert.Equal(t, tc.code, it.Code)
		assert.NotEmpty(t, it.Message)
	}
	assert.False(t, errs.Field("strings").Index(0).Has())

	small, _ := errs.Field("age").Issue()
	assert.Equal(t, "18", small.Params["minimum"])
	assert.Equal(t, "gte", small.Rule)
}

func TestStruct_FailFastAndDecodeErrors(t *testing.T) {
	ctx := formpath.WithFailFast(context.Background(), true)
	_, err := validate.Struct[signup]().Parse(ctx, map[string]any{"age": "1"})
	iss, ok := formpath.AsIssues(err)
	require.True(t, ok)
	assert.Len(t, iss, 1)

	_, err = validate.Struct[signup]().Parse(context.Background(), map[string]any{"age": "old"})
	iss, ok = formpath.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, formpath.CodeParseError, iss[0].Code)
	assert.True(t, iss[0].Path.IsRoot())

	_, err = validate.Struct[string]().Parse(context.Background(), "x")
	assert.ErrorIs(t, err, validate.ErrNotStruct)
}

func TestStruct_CustomValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}))
	type counter struct {
		N int `form:"n" validate:"even"`
	}
	_, err := validate.Struct[counter](validate.WithValidator(v)).Parse(context.Background(), map[string]any{"n": "3"})
	iss, ok := formpath.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "even", iss[0].Code)
	assert.True(t, iss[0].Path.Equal(formpath.PathOf("n")))
}

func TestCodeForTag(t *testing.T) {
	assert.Equal(t, formpath.CodeRequired, validate.CodeForTag("required"))
	assert.Equal(t, formpath.CodeTooBig, validate.CodeForTag("lte"))
	assert.Equal(t, formpath.CodeInvalidFormat, validate.CodeForTag("url"))
	assert.Equal(t, "startswith", validate.CodeForTag("startswith"))
}

func TestDecode_Checkbox(t *testing.T) {
	var out todo
	require.NoError(t, validate.Decode(map[string]any{"task": "x", "done": "on"}, &out))
	assert.True(t, out.Done)
	require.NoError(t, validate.Decode(map[string]any{"done": "off"}, &out))
	assert.False(t, out.Done)
}
