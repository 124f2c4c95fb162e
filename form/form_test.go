package form_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reoring/formpath"
	g "github.com/reoring/formpath/dsl"
	"github.com/reoring/formpath/form"
)

type signup struct {
	Email string   `form:"email"`
	Pw1   string   `form:"pw1"`
	Pw2   string   `form:"pw2"`
	Tags  []string `form:"tags"`
}

func signupSchema() *g.TypedSchema[signup] {
	return g.MustBind[signup](g.Object().
		Field("email", g.String().Min(3)).
		Field("pw1", g.String().Min(4)).
		Field("pw2", g.String()).
		Field("tags", g.Array(g.String().Min(2))).Optional().
		Refine(func(_ context.Context, v map[string]any, issues *formpath.CustomIssues) {
			if v["pw1"] != v["pw2"] {
				issues.Add("passwords do not match")
			}
		}))
}

func TestForm_ValidateAndChains(t *testing.T) {
	f := form.New[signup]("signup", signupSchema())
	fields := f.Fields()

	if _, ok := f.Validation(); ok {
		t.Fatalf("no validation expected before Validate")
	}
	res := f.Validate(context.Background())
	if res.Success || !errors.Is(res.Issues[0].Cause, form.ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %+v", res)
	}

	f.Bind(form.ValuesSource(url.Values{
		fields.Field("email").Name():         {"a@b.c"},
		fields.Field("pw1").Name():           {"secret"},
		fields.Field("pw2").Name():           {"secret"},
		fields.Field("tags").Index(0).Name(): {"go"},
		fields.Field("tags").Index(1).Name(): {"x"},
	}))
	res = f.Validate(context.Background())
	if res.Success {
		t.Fatalf("expected failure")
	}
	errs := f.Errors()
	if !errs.Field("tags").Index(1).Has() || errs.Field("tags").Index(0).Has() {
		t.Fatalf("unexpected issues %v", res.Issues)
	}
	if errs.Has() {
		t.Fatalf("refinement must not run while fields are invalid")
	}
	if got := f.Value(fields.Field("email")); got != "a@b.c" {
		t.Fatalf("Value = %q", got)
	}

	f.Bind(form.ValuesSource(url.Values{
		"signup.email": {"a@b.c"},
		"signup.pw1":   {"secret"},
		"signup.pw2":   {"secreT"},
	}))
	f.Validate(context.Background())
	errs = f.Errors()
	if !errs.Has() || errs.Field("pw1").Has() || errs.Field("pw2").Has() {
		t.Fatalf("expected only the root refinement issue, got %v", errs.Within())
	}
}

func TestForm_CustomIssues(t *testing.T) {
	custom := formpath.NewCustomIssues()
	custom.Field("email").Add("already registered")
	f := form.New[signup]("signup", signupSchema(), form.WithCustomIssues(custom.ToArray()))

	// custom issues are visible before any validation
	if f.Errors().Field("email").Message() != "already registered" {
		t.Fatalf("custom issue missing")
	}
	f.Bind(form.ValuesSource(url.Values{"signup.email": {"a@b.c"}, "signup.pw1": {"secret"}, "signup.pw2": {"secret"}}))
	if res := f.Validate(context.Background()); !res.Success {
		t.Fatalf("unexpected issues %v", res.Issues)
	}
	if !f.Errors().Field("email").Has() {
		t.Fatalf("custom issue must survive a successful validation")
	}
	if len(f.CustomIssues()) != 1 {
		t.Fatalf("CustomIssues = %v", f.CustomIssues())
	}
}

func TestForm_ChangeThenSubmit(t *testing.T) {
	values := url.Values{"signup.email": {"a"}}
	f := form.New[signup]("signup", signupSchema())
	f.Bind(form.ValuesSource(values))

	if _, ran := f.HandleChange(context.Background()); !ran {
		t.Fatalf("change before submit must validate")
	}

	called := 0
	res, err := f.HandleSubmit(context.Background(), func(context.Context, form.ValidSubmit[signup]) error {
		called++
		return nil
	})
	if err != nil || res.Success || called != 0 {
		t.Fatalf("invalid submit: res=%+v err=%v called=%d", res, err, called)
	}
	if !f.Submitted() {
		t.Fatalf("expected submitted state")
	}

	// after the first submit, change events no longer re-validate
	values.Set("signup.email", "a@b.c")
	if prev, ran := f.HandleChange(context.Background()); ran || prev.Success {
		t.Fatalf("change after submit must not validate")
	}

	values.Set("signup.pw1", "secret")
	values.Set("signup.pw2", "secret")
	var got form.ValidSubmit[signup]
	res, err = f.HandleSubmit(context.Background(), func(_ context.Context, s form.ValidSubmit[signup]) error {
		got = s
		return nil
	})
	if err != nil || !res.Success {
		t.Fatalf("valid submit: res=%+v err=%v", res, err)
	}
	if got.Data.Email != "a@b.c" || got.Values.Get("signup.pw1") != "secret" {
		t.Fatalf("unexpected submit payload %+v", got)
	}
}

func TestForm_OnValidSubmitOptionAndLogging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	boom := errors.New("boom")

	f := form.New[signup]("", signupSchema(),
		form.WithLogger(log),
		form.WithOnValidSubmit[signup](func(context.Context, form.ValidSubmit[signup]) error { return boom }),
	)
	if !strings.HasPrefix(f.Namespace(), "form-") {
		t.Fatalf("unexpected generated namespace %q", f.Namespace())
	}
	ns := f.Namespace()
	f.Bind(form.ValuesSource(url.Values{ns + ".email": {"a@b.c"}, ns + ".pw1": {"secret"}, ns + ".pw2": {"secret"}}))
	if _, err := f.HandleSubmit(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("expected the option callback error, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"message":"form validated"`) || !strings.Contains(out, `"form":"`+ns+`"`) {
		t.Fatalf("unexpected log output %s", out)
	}
	if !strings.Contains(out, `"error":"boom"`) {
		t.Fatalf("handler failure not logged: %s", out)
	}
}

func TestForm_RequestSource(t *testing.T) {
	body := url.Values{"s.email": {"a@b.c"}, "s.pw1": {"secret"}, "s.pw2": {"secret"}}.Encode()
	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f := form.New[signup]("s", signupSchema())
	f.Bind(form.RequestSource(r))
	if res := f.Validate(context.Background()); !res.Success {
		t.Fatalf("unexpected issues %v", res.Issues)
	}
}

func TestValue(t *testing.T) {
	values := url.Values{"f.count": {"3"}, "f.name": {"x"}}
	atoi := func(s string) int { n, _ := strconv.Atoi(s); return n }

	if got := form.Value(values, "f.count", atoi, -1); got != 3 {
		t.Fatalf("Value = %d", got)
	}
	if got := form.Value(values, "f.missing", atoi, -1); got != -1 {
		t.Fatalf("missing value must yield the initial value, got %d", got)
	}
	if got := form.FieldValue[string](values, formpath.Fields("f").Field("name"), nil, ""); got != "x" {
		t.Fatalf("FieldValue = %q", got)
	}
}
