package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrNoJSONObject is returned when text contains no {...} span.
var ErrNoJSONObject = errors.New("no JSON object found in completion")

// JSONObject returns the first balanced {...} span of text. Models often
// wrap JSON in prose or code fences, and sometimes add a second object;
// everything outside the first object is dropped. Braces inside JSON
// strings do not count toward the balance.
func JSONObject(text string) (string, bool) {
	for start := strings.Index(text, "{"); start != -1; {
		if end := closingBrace(text, start); end != -1 {
			return strings.TrimSpace(text[start : end+1]), true
		}
		next := strings.Index(text[start+1:], "{")
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", false
}

// closingBrace returns the index of the brace that closes the object
// opened at start, or -1 if it is never closed.
func closingBrace(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Validator checks extracted JSON against a compiled JSON Schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles schemaJSON under the given resource name.
func NewValidator(name string, schemaJSON []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Decode extracts the JSON object from text, validates it, and unmarshals
// it into out.
func (v *Validator) Decode(text string, out any) error {
	payload, ok := JSONObject(text)
	if !ok {
		return ErrNoJSONObject
	}

	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("validate JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}
