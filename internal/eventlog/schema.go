// internal/eventlog/schema.go
package eventlog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// inferenceRecordSchema is deliberately loose: it pins down the envelope
// the dashboard relies on while leaving the harness free to add fields.
const inferenceRecordSchema = `{
  "type": "object",
  "required": ["event_type"],
  "properties": {
    "event_type": {"type": "string", "enum": ["inference"]},
    "timestamp": {"type": "string"},
    "test_type": {"type": "string"},
    "category": {"type": "string"},
    "test_number": {"type": "integer"},
    "test_name": {"type": "string"},
    "test_result": {
      "type": "object",
      "properties": {
        "expected": {"type": "string"},
        "actual": {"type": "string"},
        "passed": {"type": "boolean"}
      }
    },
    "usage": {
      "type": "object",
      "properties": {
        "prompt_tokens": {"type": "integer"},
        "completion_tokens": {"type": "integer"},
        "total_tokens": {"type": "integer"}
      }
    },
    "metrics": {
      "type": "object",
      "properties": {
        "latency_ms": {"type": "number"},
        "cost_usd": {"type": "number"}
      }
    },
    "latency_ms": {"type": "number"},
    "cost_usd": {"type": "number"},
    "reasoning": {"type": "string"}
  }
}`

var recordSchemaLoader = gojsonschema.NewStringLoader(inferenceRecordSchema)

// ValidateInferenceRecord checks a raw inference line against the record
// schema. Used only in strict-ingest mode; a failure means the line is
// skipped, not that the parse aborts.
func ValidateInferenceRecord(raw []byte) error {
	result, err := gojsonschema.Validate(recordSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("record failed validation: %s", strings.Join(details, "; "))
}
