package i18n

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "minimum" or "expected"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// Catalog maps language -> code -> message template.
type Catalog map[string]map[string]string

var builtin = Catalog{
	"en": {
		"invalid_type":   "invalid type",
		"required":       "required",
		"too_small":      "must contain at least {minimum}",
		"too_big":        "must contain at most {maximum}",
		"pattern":        "does not match the expected pattern",
		"invalid_enum":   "invalid option",
		"invalid_format": "invalid format",
		"parse_error":    "parse error",
		"custom":         "invalid value",
	},
	"ja": {
		"invalid_type":   "型が不正です",
		"required":       "必須項目です",
		"too_small":      "{minimum} 以上にしてください",
		"too_big":        "{maximum} 以下にしてください",
		"pattern":        "形式が一致しません",
		"invalid_enum":   "不正な選択肢です",
		"invalid_format": "形式が不正です",
		"parse_error":    "解析エラー",
		"custom":         "不正な値です",
	},
}

// dictTranslator is the dictionary-based Translator.
type dictTranslator struct {
	lang     string
	catalog  Catalog
	fallback string
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := t.catalog[t.lang][code]
	if !ok {
		tmpl, ok = t.catalog[t.fallback][code]
	}
	if !ok {
		return code
	}
	return interpolate(tmpl, data)
}

func interpolate(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en", catalog: builtin, fallback: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang, catalog: builtin, fallback: "en"}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		SetLanguage("en")
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }

// Tf is T with params of any type, formatted with %v.
func Tf(code string, params map[string]any) string {
	if len(params) == 0 {
		return T(code, nil)
	}
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	return T(code, data)
}

// LoadYAML reads a catalog of the form
//
//	en:
//	  too_small: "at least {minimum}"
//	de:
//	  too_small: "mindestens {minimum}"
//
// and returns a Translator for lang. Codes missing from the loaded catalog
// fall back to the built-in messages for lang, then to English.
func LoadYAML(r io.Reader, lang string) (Translator, error) {
	var cat Catalog
	if err := yaml.NewDecoder(r).Decode(&cat); err != nil {
		return nil, fmt.Errorf("i18n: decode catalog: %w", err)
	}
	if _, ok := cat[lang]; !ok {
		return nil, fmt.Errorf("i18n: language %q not in catalog", lang)
	}
	merged := Catalog{}
	for l, msgs := range builtin {
		merged[l] = make(map[string]string, len(msgs))
		for c, m := range msgs {
			merged[l][c] = m
		}
	}
	for l, msgs := range cat {
		if merged[l] == nil {
			merged[l] = make(map[string]string, len(msgs))
		}
		for c, m := range msgs {
			merged[l][c] = m
		}
	}
	return dictTranslator{lang: lang, catalog: merged, fallback: "en"}, nil
}
