// Package schema loads declarative per-collection schema definitions,
// compiles them into validators and applies them to documents.
//
// A schema file is a YAML mapping from field name to field specification:
//
//	age:
//	  type: int
//	  ge: 0
//	  le: 120
//	status:
//	  type: str
//	  enum: [active, inactive]
//	  default: active
package schema

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType is the resolved value kind of a field.
type FieldType string

const (
	TypeString  FieldType = "str"
	TypeInteger FieldType = "int"
	TypeFloat   FieldType = "float"
	TypeBoolean FieldType = "bool"
	TypeList    FieldType = "list"
	TypeMapping FieldType = "dict"
)

var typeAliases = map[string]FieldType{
	"str":     TypeString,
	"string":  TypeString,
	"int":     TypeInteger,
	"integer": TypeInteger,
	"float":   TypeFloat,
	"number":  TypeFloat,
	"bool":    TypeBoolean,
	"boolean": TypeBoolean,
	"list":    TypeList,
	"array":   TypeList,
	"dict":    TypeMapping,
	"mapping": TypeMapping,
	"object":  TypeMapping,
}

// ResolveType maps a declared type name to a FieldType. Unknown or empty
// names resolve to TypeString.
func ResolveType(declared string) FieldType {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(declared))]; ok {
		return t
	}
	return TypeString
}

// FieldSpec is the declarative rule set of a single field.
type FieldSpec struct {
	Type       FieldType
	Enum       []any
	Title      string
	MinLength  *int
	MaxLength  *int
	GE         *float64
	LE         *float64
	Default    any
	HasDefault bool
}

// Field pairs a field name with its specification.
type Field struct {
	Name string
	Spec FieldSpec
}

// Definition is a parsed schema file. Fields keep the order they were declared in.
type Definition struct {
	Name   string
	Fields []Field
	// Raw is the JSON-compatible form of the file, as served back to clients.
	Raw map[string]any
}

// Parse decodes raw schema file content. Any syntactic or structural problem
// is reported as a *ParseError.
func Parse(name string, raw []byte) (*Definition, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &ParseError{Name: name, Err: errors.New("schema is empty")}
	}
	body := root.Content[0]
	if body.Kind != yaml.MappingNode {
		return nil, &ParseError{Name: name, Err: errors.New("schema must be a mapping of field name to field specification")}
	}

	var decoded any
	if err := body.Decode(&decoded); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	normalised, err := checkShape(decoded)
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}

	def := &Definition{Name: name, Raw: normalised}
	for i := 0; i+1 < len(body.Content); i += 2 {
		field := body.Content[i].Value
		spec, _ := normalised[field].(map[string]any)
		def.Fields = append(def.Fields, Field{Name: field, Spec: parseFieldSpec(spec)})
	}
	return def, nil
}

func parseFieldSpec(m map[string]any) FieldSpec {
	declared, _ := m["type"].(string)
	spec := FieldSpec{Type: ResolveType(declared)}
	spec.Title, _ = m["title"].(string)
	if e, ok := m["enum"].([]any); ok {
		spec.Enum = e
	}
	spec.MinLength = intPtr(m["min_length"])
	spec.MaxLength = intPtr(m["max_length"])
	spec.GE = floatPtr(m["ge"])
	spec.LE = floatPtr(m["le"])
	if v, ok := m["default"]; ok {
		spec.Default = v
		spec.HasDefault = true
	}
	return spec
}

func intPtr(v any) *int {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

func floatPtr(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
