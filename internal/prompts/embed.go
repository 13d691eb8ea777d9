package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Embedded returns every prompt compiled into the binary.
func Embedded() []EmbeddedPrompt {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		// The directory is part of the binary; failure here is a build bug.
		panic(err)
	}

	prompts := make([]EmbeddedPrompt, 0, len(entries))
	for _, e := range entries {
		data, err := templateFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			panic(err)
		}
		text := string(data)
		prompts = append(prompts, EmbeddedPrompt{
			Key:       strings.TrimSuffix(e.Name(), ".tmpl"),
			Text:      text,
			Variables: ExtractVariables(text),
			Hash:      HashText(text),
		})
	}
	return prompts
}

// Structured renders the default analysis-report prompt.
func Structured(text, question string) (string, error) {
	return renderEmbedded(AnalysisKey, Data{Text: text, Question: question})
}

// Classification renders the default classification prompt with the
// three-line response format.
func Classification(text string, categories []string) (string, error) {
	format, err := renderEmbedded(ClassifyLinesKey, Data{Categories: categories})
	if err != nil {
		return "", err
	}
	return renderEmbedded(ClassifyTaskKey, Data{Text: text, Categories: categories, Format: format})
}

func renderEmbedded(key string, data Data) (string, error) {
	text, err := templateFS.ReadFile(path.Join("templates", key+".tmpl"))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return Render(key, string(text), data)
}
