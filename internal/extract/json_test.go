package extract

import (
	"errors"
	"testing"
)

const testSchema = `{
  "type": "object",
  "required": ["name", "score"],
  "properties": {
    "name": {"type": "string"},
    "score": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

func TestJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around", `Sure! {"a":{"b":2}} Hope that helps.`, `{"a":{"b":2}}`, true},
		{"no braces", "nothing here", "", false},
		{"reversed braces", "} {", "", false},
		{"two objects", `{"a":1} or maybe {"a":2}`, `{"a":1}`, true},
		{"braces inside strings", `{"a":"}{"} trailing }`, `{"a":"}{"}`, true},
		{"escaped quote in string", `{"a":"say \"}\""}`, `{"a":"say \"}\""}`, true},
		{"unclosed then closed", `{ broken {"a":1}`, `{"a":1}`, true},
		{"never closed", `{"a":1`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := JSONObject(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("JSONObject() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestValidator_Decode(t *testing.T) {
	v, err := NewValidator("test.json", []byte(testSchema))
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}

	type doc struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}

	t.Run("valid", func(t *testing.T) {
		var d doc
		if err := v.Decode(`Result: {"name":"x","score":0.5}`, &d); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if d.Name != "x" || d.Score != 0.5 {
			t.Errorf("decoded = %+v", d)
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		var d doc
		if err := v.Decode(`{"name":"x","score":3}`, &d); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("missing object", func(t *testing.T) {
		var d doc
		if err := v.Decode("plain text", &d); !errors.Is(err, ErrNoJSONObject) {
			t.Fatalf("expected ErrNoJSONObject, got %v", err)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		var d doc
		if err := v.Decode(`{"name": }`, &d); err == nil {
			t.Fatal("expected parse error")
		}
	})
}
