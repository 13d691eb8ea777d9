package strategy

import "github.com/jackzampolin/tamer/internal/classify"

// Outcome ties a classification back to the input it came from.
type Outcome struct {
	Index          int                      `json:"index" yaml:"index"`
	Text           string                   `json:"text" yaml:"text"`
	Classification *classify.Classification `json:"classification" yaml:"classification"`
}

// StrategyResult holds one strategy's outcomes in input order. Inputs
// whose classification failed are absent and counted in Dropped.
type StrategyResult struct {
	Name     string    `json:"name" yaml:"name"`
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
	Dropped  int       `json:"dropped" yaml:"dropped"`
}

// Results are the per-strategy results in run order.
type Results []StrategyResult

// ByName returns the result for a strategy.
func (r Results) ByName(name string) (StrategyResult, bool) {
	for _, s := range r {
		if s.Name == name {
			return s, true
		}
	}
	return StrategyResult{}, false
}

// Agreement reports, per input index, whether every strategy that
// classified it produced the same category.
func (r Results) Agreement() map[int]bool {
	seen := make(map[int]string)
	agree := make(map[int]bool)
	for _, s := range r {
		for _, o := range s.Outcomes {
			prev, ok := seen[o.Index]
			if !ok {
				seen[o.Index] = o.Classification.Category
				agree[o.Index] = true
				continue
			}
			if prev != o.Classification.Category {
				agree[o.Index] = false
			}
		}
	}
	return agree
}
