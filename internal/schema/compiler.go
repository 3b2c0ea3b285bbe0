package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

type ruleKind int

const (
	kindString ruleKind = iota
	kindInteger
	kindFloat
	kindBoolean
	kindList
	kindMapping
	kindEnum
)

var kindByType = map[FieldType]ruleKind{
	TypeString:  kindString,
	TypeInteger: kindInteger,
	TypeFloat:   kindFloat,
	TypeBoolean: kindBoolean,
	TypeList:    kindList,
	TypeMapping: kindMapping,
}

// rule is the compiled form of a FieldSpec. An enum replaces the type check
// with a membership check; bounds still apply to whatever kind the value has.
type rule struct {
	field      string
	kind       ruleKind
	enum       []any
	minLen     *int
	maxLen     *int
	ge         *float64
	le         *float64
	def        any
	hasDefault bool
}

// Validator checks documents against one compiled Definition.
// It is immutable and safe for concurrent use.
type Validator struct {
	name  string
	rules []rule
}

// Name returns the schema name the validator was compiled from.
func (v *Validator) Name() string { return v.name }

// Compile builds a Validator from def. It has no side effects: the same
// definition always yields an equivalent validator. Contradictory bounds are
// rejected here instead of surfacing as unsatisfiable rules at validation time.
func Compile(def *Definition) (*Validator, error) {
	v := &Validator{name: def.Name, rules: make([]rule, 0, len(def.Fields))}
	for _, f := range def.Fields {
		r, err := compileField(f)
		if err != nil {
			return nil, &ParseError{Name: def.Name, Err: err}
		}
		v.rules = append(v.rules, r)
	}
	return v, nil
}

func compileField(f Field) (rule, error) {
	s := f.Spec
	r := rule{
		field:      f.Name,
		kind:       kindByType[s.Type],
		minLen:     s.MinLength,
		maxLen:     s.MaxLength,
		ge:         s.GE,
		le:         s.LE,
		def:        s.Default,
		hasDefault: s.HasDefault,
	}
	if len(s.Enum) > 0 {
		r.kind = kindEnum
		r.enum = s.Enum
	}

	if r.minLen != nil && *r.minLen < 0 {
		return rule{}, fmt.Errorf("field %q: min_length must not be negative", f.Name)
	}
	if r.maxLen != nil && *r.maxLen < 0 {
		return rule{}, fmt.Errorf("field %q: max_length must not be negative", f.Name)
	}
	if r.minLen != nil && r.maxLen != nil && *r.minLen > *r.maxLen {
		return rule{}, fmt.Errorf("field %q: min_length %d exceeds max_length %d", f.Name, *r.minLen, *r.maxLen)
	}
	if r.ge != nil && r.le != nil && *r.ge > *r.le {
		return rule{}, fmt.Errorf("field %q: ge %s exceeds le %s", f.Name, formatNumber(*r.ge), formatNumber(*r.le))
	}

	// Defaults are stored as they would be after validation so filled-in
	// values have the same Go type as validated ones.
	if r.kind == kindInteger && r.def != nil {
		if n, ok := toInteger(r.def); ok {
			r.def = n
		}
	}
	return r, nil
}

// toInteger accepts any integral number, including whole floats as produced by
// JSON decoding and json.Number literals.
func toInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toInteger(f)
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInteger(float64(n))
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) || n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	if i, ok := toInteger(v); ok {
		return float64(i), true
	}
	return 0, false
}
