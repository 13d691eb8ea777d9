// Package strategy compares prompting strategies by running the same
// batch of texts through the classifier under each strategy's framing.
package strategy

import (
	"github.com/jackzampolin/tamer/internal/prompts"
)

// Strategy names, in the order they run.
const (
	Basic      = "basic"
	Structured = "structured"
	FewShot    = "few_shot"
)

// Strategy is a named prompt framing.
type Strategy struct {
	Name      string
	PromptKey string
}

// Defaults returns the built-in strategies in run order.
func Defaults() []Strategy {
	return []Strategy{
		{Name: Basic, PromptKey: prompts.StrategyBasicKey},
		{Name: Structured, PromptKey: prompts.StrategyStructureKey},
		{Name: FewShot, PromptKey: prompts.StrategyFewShotKey},
	}
}

// Names returns the names of the built-in strategies in run order.
func Names() []string {
	defaults := Defaults()
	names := make([]string, len(defaults))
	for i, s := range defaults {
		names[i] = s.Name
	}
	return names
}
