// Package validate adapts go-playground/validator struct tags to
// formpath.Schema, so a tagged struct can drive a form without the dsl
// package:
//
//	type Signup struct {
//	    Email   string   `form:"email" validate:"required,email"`
//	    Strings []string `form:"strings" validate:"dive,min=2"`
//	}
//
//	schema := validate.Struct[Signup]()
//	res := formdata.ParseForm[Signup](ctx, "signup", schema, values)
//
// Validator field errors are reported at the Path the form name of the
// offending input decodes to, so formpath.ErrorChain finds them.
package validate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/go-viper/mapstructure/v2"

	"github.com/reoring/formpath"
)

// ErrNotStruct is reported when the bound type is not a struct.
var ErrNotStruct = errors.New("validate: type parameter must be a struct")

type config struct {
	v     *validator.Validate
	trans ut.Translator
}

// Option configures a StructSchema.
type Option func(*config)

// WithValidator uses v instead of the shared instance. Field names are
// resolved with formpath.ResolveStructKey on v, and the English
// translations are registered on it.
func WithValidator(v *validator.Validate) Option {
	return func(c *config) { c.v = v }
}

var (
	shared     *validator.Validate
	sharedTr   ut.Translator
	sharedOnce sync.Once
)

func defaults() (*validator.Validate, ut.Translator) {
	sharedOnce.Do(func() {
		shared = validator.New(validator.WithRequiredStructEnabled())
		sharedTr = setup(shared)
	})
	return shared, sharedTr
}

func setup(v *validator.Validate) ut.Translator {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if k := formpath.ResolveStructKey(f); k != "-" {
			return k
		}
		return ""
	})
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	return trans
}

// StructSchema decodes the nested form value tree into T and validates it
// with struct tags.
type StructSchema[T any] struct {
	v     *validator.Validate
	trans ut.Translator
}

// Struct returns a schema for the struct type T.
func Struct[T any](opts ...Option) *StructSchema[T] {
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.v == nil {
		cfg.v, cfg.trans = defaults()
	} else {
		cfg.trans = setup(cfg.v)
	}
	return &StructSchema[T]{v: cfg.v, trans: cfg.trans}
}

var _ formpath.Schema[struct{}] = (*StructSchema[struct{}])(nil)

// Parse decodes v (map[string]any from formdata, or a T) and validates it.
func (s *StructSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	var out T
	if reflect.TypeOf((*T)(nil)).Elem().Kind() != reflect.Struct {
		return out, ErrNotStruct
	}
	switch t := v.(type) {
	case T:
		out = t
	case *T:
		if t != nil {
			out = *t
		}
	case nil:
	default:
		if err := Decode(v, &out); err != nil {
			return out, formpath.Issues{{Code: formpath.CodeParseError, Message: err.Error(), Cause: err}}
		}
	}

	err := s.v.StructCtx(ctx, out)
	if err == nil {
		return out, nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return out, err
	}
	iss := make(formpath.Issues, 0, len(ves))
	for _, fe := range ves {
		iss = append(iss, s.issue(fe))
		if formpath.IsFailFast(ctx) {
			break
		}
	}
	return out, iss
}

func (s *StructSchema[T]) issue(fe validator.FieldError) formpath.Issue {
	code := CodeForTag(fe.Tag())
	params := map[string]any{"tag": fe.Tag()}
	if p := fe.Param(); p != "" {
		params["param"] = p
		switch code {
		case formpath.CodeTooSmall:
			params["minimum"] = p
		case formpath.CodeTooBig:
			params["maximum"] = p
		}
	}
	return formpath.Issue{
		Path:    FieldErrorPath(fe),
		Code:    code,
		Message: fe.Translate(s.trans),
		Params:  params,
		Rule:    fe.Tag(),
	}
}

// FieldErrorPath converts the validator namespace of fe
// ("Signup.todos[2].task") into a Path by dropping the root struct name. A
// namespace that does not decode (map keys) falls back to the field name.
func FieldErrorPath(fe validator.FieldError) formpath.Path {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	} else {
		return formpath.Root()
	}
	p, err := formpath.DecodeDisplayName(ns)
	if err != nil {
		return formpath.PathOf(fe.Field())
	}
	return p
}

// CodeForTag maps a validator tag to an issue code.
func CodeForTag(tag string) string {
	switch tag {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		return formpath.CodeRequired
	case "min", "gte", "gt":
		return formpath.CodeTooSmall
	case "max", "lte", "lt":
		return formpath.CodeTooBig
	case "oneof":
		return formpath.CodeInvalidEnum
	case "email", "url", "uri", "uuid", "uuid4", "datetime", "e164", "hostname", "ip", "alphanum", "numeric":
		return formpath.CodeInvalidFormat
	case "eqfield", "nefield":
		return formpath.CodeCustom
	}
	return tag
}

// Decode copies the value tree src into the struct pointed to by dst. It
// matches keys with form tags, converts text leaves to the field types and
// accepts checkbox values ("on", "off") for bools.
func Decode(src any, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(checkboxHook, mapstructure.StringToTimeDurationHookFunc()),
		Result:           dst,
	})
	if err != nil {
		return fmt.Errorf("validate: decoder: %w", err)
	}
	if err := dec.Decode(src); err != nil {
		return fmt.Errorf("validate: decode: %w", err)
	}
	return nil
}

func checkboxHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String())) {
	case "on", "yes":
		return true, nil
	case "", "off", "no":
		return false, nil
	}
	return data, nil
}
