package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// metaSchema describes the shape of a schema definition file. Semantic checks
// (conflicting bounds) are left to Compile.
const metaSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "type": {"type": "string"},
      "enum": {"type": "array", "minItems": 1},
      "title": {"type": "string"},
      "min_length": {"type": "integer", "minimum": 0},
      "max_length": {"type": "integer", "minimum": 0},
      "ge": {"type": "number"},
      "le": {"type": "number"}
    }
  }
}`

var definitionMeta = jsonschema.MustCompileString("docgate://schema-definition.json", metaSchema)

// checkShape validates decoded schema content against metaSchema and returns
// its JSON-normalised form.
func checkShape(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("schema is not representable as JSON: %w", err)
	}
	var normalised any
	if err := json.Unmarshal(b, &normalised); err != nil {
		return nil, err
	}

	if err := definitionMeta.Validate(normalised); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, errors.New(joinCauses(ve))
		}
		return nil, err
	}

	out, ok := normalised.(map[string]any)
	if !ok {
		return nil, errors.New("schema must be a mapping of field name to field specification")
	}
	return out, nil
}

func joinCauses(ve *jsonschema.ValidationError) string {
	return strings.Join(collectCauses(ve), "; ")
}

func collectCauses(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + ve.Message}
	}
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectCauses(cause)...)
	}
	return msgs
}
