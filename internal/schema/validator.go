package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

const reasonRequired = "field required"

// Validate checks doc against every compiled rule and returns a new document
// with defaults filled in for absent fields. Fields not declared in the schema
// are passed through untouched. All failing fields are reported together in a
// *ValidationError. doc itself is never modified.
func (v *Validator) Validate(doc map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(doc)+len(v.rules))
	for k, val := range doc {
		out[k] = val
	}

	var failures []FieldError
	for _, r := range v.rules {
		val, present := doc[r.field]
		if !present {
			if r.hasDefault {
				out[r.field] = cloneValue(r.def)
				continue
			}
			failures = append(failures, FieldError{Field: r.field, Reason: reasonRequired})
			continue
		}
		// An explicit null default makes the field nullable.
		if val == nil && r.hasDefault && r.def == nil {
			continue
		}

		normalised, reason := r.check(val)
		if reason != "" {
			failures = append(failures, FieldError{Field: r.field, Reason: reason})
			continue
		}
		out[r.field] = normalised
	}

	if len(failures) > 0 {
		return nil, &ValidationError{Schema: v.name, Fields: failures}
	}
	return out, nil
}

// check returns the value to store and, on failure, a human readable reason.
func (r rule) check(val any) (any, string) {
	switch r.kind {
	case kindEnum:
		if !r.inEnum(val) {
			return nil, "must be one of: " + formatLiterals(r.enum)
		}
		return val, r.checkBounds(val)
	case kindString:
		s, ok := val.(string)
		if !ok {
			return nil, "expected string"
		}
		return s, r.checkLength(utf8.RuneCountInString(s))
	case kindInteger:
		n, ok := toInteger(val)
		if !ok {
			return nil, "expected integer"
		}
		return n, r.checkRange(float64(n))
	case kindFloat:
		f, ok := toFloat(val)
		if !ok {
			return nil, "expected float"
		}
		return f, r.checkRange(f)
	case kindBoolean:
		b, ok := val.(bool)
		if !ok {
			return nil, "expected boolean"
		}
		return b, ""
	case kindList:
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, "expected list"
		}
		return val, r.checkLength(rv.Len())
	case kindMapping:
		if reflect.ValueOf(val).Kind() != reflect.Map {
			return nil, "expected mapping"
		}
		return val, ""
	}
	return nil, fmt.Sprintf("unsupported rule kind %d", r.kind)
}

// checkBounds applies length or range bounds according to the runtime kind of val.
func (r rule) checkBounds(val any) string {
	if s, ok := val.(string); ok {
		return r.checkLength(utf8.RuneCountInString(s))
	}
	if f, ok := toFloat(val); ok {
		return r.checkRange(f)
	}
	return ""
}

func (r rule) checkLength(n int) string {
	if r.minLen != nil && n < *r.minLen {
		return fmt.Sprintf("shorter than min_length %d", *r.minLen)
	}
	if r.maxLen != nil && n > *r.maxLen {
		return fmt.Sprintf("longer than max_length %d", *r.maxLen)
	}
	return ""
}

func (r rule) checkRange(f float64) string {
	if r.ge != nil && f < *r.ge {
		return "below minimum " + formatNumber(*r.ge)
	}
	if r.le != nil && f > *r.le {
		return "exceeds maximum " + formatNumber(*r.le)
	}
	return ""
}

func (r rule) inEnum(val any) bool {
	for _, lit := range r.enum {
		if literalEqual(val, lit) {
			return true
		}
	}
	return false
}

// literalEqual compares scalars, treating numbers of different Go types as equal
// when they have the same value.
func literalEqual(a, b any) bool {
	if isBool(a) || isBool(b) {
		return a == b
	}
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	if okA || okB {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatLiterals(lits []any) string {
	parts := make([]string, len(lits))
	for i, l := range lits {
		if f, ok := l.(float64); ok {
			parts[i] = formatNumber(f)
			continue
		}
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ", ")
}

// cloneValue deep-copies JSON-shaped defaults so callers cannot mutate the compiled rule.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	}
	return v
}
