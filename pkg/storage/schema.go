package storage

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// definitionSchemaJSON only checks what scoring relies on: sections with items that carry a code.
// Everything else is optional and defaults to empty.
const definitionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["sections"],
  "properties": {
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "items"],
        "properties": {
          "id": { "type": "string" },
          "label": { "type": "string" },
          "items": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["code"],
              "properties": {
                "code": { "type": "string", "minLength": 1 },
                "priority": { "type": ["string", "null"] }
              }
            }
          }
        }
      }
    }
  }
}`

var definitionSchemaLoader = gojsonschema.NewStringLoader(definitionSchemaJSON)

// ValidateDefinition checks data against the minimal definition schema.
func ValidateDefinition(data []byte) error {
	result, err := gojsonschema.Validate(definitionSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate checklist definition: %w", err)
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return fmt.Errorf("invalid checklist definition: %s", strings.Join(issues, "; "))
}
