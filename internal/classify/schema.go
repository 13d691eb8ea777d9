package classify

// ResponseSchema is the JSON schema for JSON-mode classification output.
var ResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"category": map[string]any{
			"type":        "string",
			"description": "One of the allowed categories",
		},
		"confidence": map[string]any{
			"type":        "string",
			"description": "Confidence label: high, medium or low",
		},
		"reasoning": map[string]any{
			"type":        "string",
			"description": "Short explanation for the category",
		},
	},
	"required": []string{"category", "confidence"},
}

// response is the decoded JSON-mode answer.
type response struct {
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}
