package dsl

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/i18n"
	"github.com/reoring/formpath/internal/ir"
)

func rootIssue(code string, params map[string]any, hint string) formpath.Issues {
	return formpath.Issues{{Code: code, Message: i18n.Tf(code, params), Params: params, Hint: hint}}
}

// ---- String ----

// StringSchema validates text inputs. Length is counted in runes.
type StringSchema struct {
	trim    bool
	minLen  int
	maxLen  int
	pattern *regexp.Regexp
	patMsg  string
}

// String returns a string schema with no constraints.
func String() *StringSchema { return &StringSchema{minLen: -1, maxLen: -1} }

// Min sets the minimum length (too_small).
func (s *StringSchema) Min(n int) *StringSchema { s.minLen = n; return s }

// Max sets the maximum length (too_big).
func (s *StringSchema) Max(n int) *StringSchema { s.maxLen = n; return s }

// NonEmpty is Min(1).
func (s *StringSchema) NonEmpty() *StringSchema { return s.Min(1) }

// Trim strips surrounding whitespace before the length checks.
func (s *StringSchema) Trim() *StringSchema { s.trim = true; return s }

// Pattern requires the value to match re. msg overrides the translated
// message when non-empty.
func (s *StringSchema) Pattern(re *regexp.Regexp, msg string) *StringSchema {
	s.pattern = re
	s.patMsg = msg
	return s
}

func (s *StringSchema) Parse(ctx context.Context, v any) (string, error) {
	if v == nil {
		return "", rootIssue(formpath.CodeRequired, nil, "value missing")
	}
	str, ok := v.(string)
	if !ok {
		return "", rootIssue(formpath.CodeInvalidType, map[string]any{"expected": "string"}, "expected string")
	}
	if s.trim {
		str = strings.TrimSpace(str)
	}
	var iss formpath.Issues
	n := utf8.RuneCountInString(str)
	if s.minLen >= 0 && n < s.minLen {
		iss = append(iss, rootIssue(formpath.CodeTooSmall, map[string]any{"minimum": s.minLen, "type": "string", "inclusive": true}, "")...)
	}
	if s.maxLen >= 0 && n > s.maxLen {
		iss = append(iss, rootIssue(formpath.CodeTooBig, map[string]any{"maximum": s.maxLen, "type": "string", "inclusive": true}, "")...)
	}
	if s.pattern != nil && !s.pattern.MatchString(str) {
		it := rootIssue(formpath.CodePattern, map[string]any{"pattern": s.pattern.String()}, "")
		if s.patMsg != "" {
			it[0].Message = s.patMsg
		}
		iss = append(iss, it...)
	}
	if len(iss) > 0 {
		if formpath.IsFailFast(ctx) {
			return "", iss[:1]
		}
		return "", iss
	}
	return str, nil
}

func (s *StringSchema) ParseAny(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) }
func (s *StringSchema) Shape() ir.Schema                                { return &ir.Primitive{Name: "string"} }

// ---- Enum ----

// EnumSchema accepts one of a fixed set of strings (select/radio inputs).
type EnumSchema struct {
	values []string
}

// Enum returns a schema accepting exactly the given values.
func Enum(values ...string) *EnumSchema { return &EnumSchema{values: append([]string(nil), values...)} }

func (e *EnumSchema) Parse(ctx context.Context, v any) (string, error) {
	if v == nil {
		return "", rootIssue(formpath.CodeRequired, nil, "value missing")
	}
	str, ok := v.(string)
	if !ok {
		return "", rootIssue(formpath.CodeInvalidType, map[string]any{"expected": "string"}, "expected string")
	}
	for _, allowed := range e.values {
		if str == allowed {
			return str, nil
		}
	}
	return "", rootIssue(formpath.CodeInvalidEnum, map[string]any{"options": strings.Join(e.values, ",")}, "")
}

func (e *EnumSchema) ParseAny(ctx context.Context, v any) (any, error) { return e.Parse(ctx, v) }
func (e *EnumSchema) Shape() ir.Schema                                { return &ir.Primitive{Name: "string"} }

// ---- Int ----

// IntSchema accepts integers and their decimal text form; form inputs always
// submit text.
type IntSchema struct {
	min, max       int64
	hasMin, hasMax bool
}

// Int returns an integer schema.
func Int() *IntSchema { return &IntSchema{} }

// Min sets the inclusive minimum (too_small).
func (s *IntSchema) Min(n int64) *IntSchema { s.min, s.hasMin = n, true; return s }

// Max sets the inclusive maximum (too_big).
func (s *IntSchema) Max(n int64) *IntSchema { s.max, s.hasMax = n, true; return s }

func (s *IntSchema) coerce(v any) (int64, formpath.Issues) {
	switch t := v.(type) {
	case nil:
		return 0, rootIssue(formpath.CodeRequired, nil, "value missing")
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, rootIssue(formpath.CodeInvalidType, map[string]any{"expected": "integer"}, "expected integer")
		}
		return int64(t), nil
	case string:
		txt := strings.TrimSpace(t)
		if txt == "" {
			return 0, rootIssue(formpath.CodeRequired, nil, "value missing")
		}
		n, err := strconv.ParseInt(txt, 10, 64)
		if err != nil {
			iss := rootIssue(formpath.CodeInvalidType, map[string]any{"expected": "integer"}, "expected integer")
			iss[0].Cause = err
			return 0, iss
		}
		return n, nil
	}
	return 0, rootIssue(formpath.CodeInvalidType, map[string]any{"expected": "integer"}, "expected integer")
}

func (s *IntSchema) Parse(ctx context.Context, v any) (int64, error) {
	n, iss := s.coerce(v)
	if len(iss) > 0 {
		return 0, iss
	}
	if s.hasMin && n < s.min {
		return 0, rootIssue(formpath.CodeTooSmall, map[string]any{"minimum": s.min, "type": "number", "inclusive": true}, "")
	}
	if s.hasMax && n > s.max {
		return 0, rootIssue(formpath.CodeTooBig, map[string]any{"maximum": s.max, "type": "number", "inclusive": true}, "")
	}
	return n, nil
}

func (s *IntSchema) ParseAny(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) }
func (s *IntSchema) Shape() ir.Schema                                { return &ir.Primitive{Name: "int"} }

// ---- Bool ----

// BoolSchema follows checkbox semantics: an unchecked box is not submitted,
// so a missing value is false.
type BoolSchema struct{}

// Bool returns a checkbox-style boolean schema.
func Bool() BoolSchema { return BoolSchema{} }

func (BoolSchema) Parse(ctx context.Context, v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "on", "true", "1", "yes":
			return true, nil
		case "", "off", "false", "0", "no":
			return false, nil
		}
	}
	return false, rootIssue(formpath.CodeInvalidType, map[string]any{"expected": "boolean"}, "expected boolean")
}

func (b BoolSchema) ParseAny(ctx context.Context, v any) (any, error) { return b.Parse(ctx, v) }
func (BoolSchema) Shape() ir.Schema                                  { return &ir.Primitive{Name: "bool"} }
