// Package prompts provides the prompt templates used by every command,
// with embedded defaults and optional on-disk overrides.
//
// Templates are Go text/templates embedded from templates/<key>.tmpl.
// Resolution order for a key:
//  1. <override dir>/<key>.tmpl, if an override directory is configured
//  2. Embedded default
package prompts

import "strings"

// Prompt keys
const (
	AnalysisKey          = "analysis.structured"
	ClassifyTaskKey      = "classify.task"
	ClassifyLinesKey     = "classify.format.lines"
	ClassifyJSONKey      = "classify.format.json"
	StrategyBasicKey     = "strategy.basic"
	StrategyStructureKey = "strategy.structured"
	StrategyFewShotKey   = "strategy.few_shot"
)

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key       string   // Hierarchical key: classify.format.lines
	Text      string   // The prompt text (Go template)
	Variables []string // Extracted template variables
	Hash      string   // SHA256 hash of the text for change detection
}

// ResolvedPrompt is the template chosen for a key.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"text"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Hash       string   `json:"hash" yaml:"hash"`
	IsOverride bool     `json:"is_override" yaml:"is_override"`
	Path       string   `json:"path,omitempty" yaml:"path,omitempty"` // override file, if any
}

// Data is the template context shared by all prompts.
type Data struct {
	Text       string
	Question   string
	Categories []string
	Format     string // rendered response-format block
}

// CategoryList renders the categories as a comma-separated list.
func (d Data) CategoryList() string {
	return strings.Join(d.Categories, ", ")
}
