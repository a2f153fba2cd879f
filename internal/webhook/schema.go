package webhook

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// envelopeSchema is the structural contract for inbound webhook bodies.
// It guards the shape only; field-level rules (required ids, recognized
// status values) belong to the normalizer so they produce the pipeline's
// own error taxonomy.
const envelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "entry": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "changes": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "value": {
                  "type": "object",
                  "properties": {
                    "messages": {"type": "array", "items": {"type": "object"}},
                    "statuses": {"type": "array", "items": {"type": "object"}}
                  }
                }
              },
              "required": ["value"]
            }
          }
        },
        "required": ["changes"]
      }
    }
  },
  "required": ["entry"]
}`

// Validator checks raw webhook bodies against the envelope schema before
// they are decoded into typed structs.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded envelope schema.
func NewValidator() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(envelopeSchema)))
	if err != nil {
		return nil, fmt.Errorf("parse envelope schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("envelope.json", doc); err != nil {
		return nil, fmt.Errorf("register envelope schema: %w", err)
	}

	schema, err := compiler.Compile("envelope.json")
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// Validate checks a raw JSON body against the envelope schema.
func (v *Validator) Validate(body []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return v.schema.Validate(inst)
}
