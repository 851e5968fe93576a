package field

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/starlane-io/starlane/internal/wave"
)

// PayloadBlock validates a Core's substance against a named JSON schema.
// Grounded on the teacher's internal/contract.jsonSchemaValidator
// (compiler.AddResource + compiler.Compile + schema.Validate), applied here
// to an in-memory wave Substance instead of an artifact file on disk.
type PayloadBlock struct {
	// Name identifies this block in validation error messages.
	Name string `yaml:"name"`
	// Schema is an inline JSON Schema document.
	Schema string `yaml:"schema"`
	// AllowEmpty permits SubstanceEmpty to pass without schema validation —
	// most GET-shaped routes have no body to validate on entry.
	AllowEmpty bool `yaml:"allow_empty"`
}

// Validate checks s against the block's schema. Map substances are
// validated by their native representation; Text substances are parsed as
// JSON first. Bin/Stub/Hyper/Location/Knock substances are never schema
// validated and always pass — those are structural payloads whose shape is
// fixed by the wave model itself, not by bind-config schemas.
func (b PayloadBlock) Validate(s wave.Substance) error {
	if s.IsEmpty() {
		if b.AllowEmpty {
			return nil
		}
		return &ValidationError{Block: b.Name, Msg: "substance is empty"}
	}

	var doc interface{}
	switch s.Kind {
	case wave.SubstanceMap:
		doc = substanceMapToJSON(s.Map)
	case wave.SubstanceText:
		if err := json.Unmarshal([]byte(s.Text), &doc); err != nil {
			return &ValidationError{Block: b.Name, Msg: "text substance is not valid JSON: " + err.Error()}
		}
	default:
		return nil
	}

	compiler := jsonschema.NewCompiler()
	var schemaDoc interface{}
	if err := json.Unmarshal([]byte(b.Schema), &schemaDoc); err != nil {
		return &ValidationError{Block: b.Name, Msg: "block schema is not valid JSON: " + err.Error()}
	}
	resourceURL := "block:" + b.Name
	if err := compiler.AddResource(resourceURL, schemaDoc); err != nil {
		return &ValidationError{Block: b.Name, Msg: "failed to register schema: " + err.Error()}
	}
	schema, err := compiler.Compile(resourceURL)
	if err != nil {
		return &ValidationError{Block: b.Name, Msg: "failed to compile schema: " + err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		return &ValidationError{Block: b.Name, Msg: err.Error()}
	}
	return nil
}

func substanceMapToJSON(m map[string]wave.Substance) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch v.Kind {
		case wave.SubstanceText:
			out[k] = v.Text
		case wave.SubstanceMap:
			out[k] = substanceMapToJSON(v.Map)
		case wave.SubstanceList:
			list := make([]interface{}, len(v.List))
			for i, item := range v.List {
				if item.Kind == wave.SubstanceMap {
					list[i] = substanceMapToJSON(item.Map)
				} else {
					list[i] = item.String()
				}
			}
			out[k] = list
		default:
			out[k] = v.String()
		}
	}
	return out
}

// ValidationError reports a PayloadBlock failure.
type ValidationError struct {
	Block string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field: payload block %q: %s", e.Block, e.Msg)
}
