package aiquiz

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://ai-quiz.json"

// questionsSchemaJSON is the exact shape the prompt asks the model for. Output
// that validates against it decodes without any repair.
const questionsSchemaJSON = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["prompt", "choices", "answerIndex"],
        "properties": {
          "prompt": {"type": "string", "minLength": 1},
          "choices": {
            "type": "array",
            "minItems": 3,
            "maxItems": 3,
            "items": {"type": "string"}
          },
          "answerIndex": {"type": "integer", "minimum": 0, "maximum": 2},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`

var questionsSchema = compileSchema()

func compileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(questionsSchemaJSON))
	if err != nil {
		panic("aiquiz: parse schema: " + err.Error())
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		panic("aiquiz: add schema: " + err.Error())
	}
	return c.MustCompile(schemaURL)
}

// conforms reports whether v, a value produced by encoding/json, matches the
// requested output shape.
func conforms(v any) bool {
	return questionsSchema.Validate(v) == nil
}
