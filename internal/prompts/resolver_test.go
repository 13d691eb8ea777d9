package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolver_Embedded(t *testing.T) {
	r := NewResolver("", nil)

	for _, key := range []string{
		AnalysisKey, ClassifyTaskKey, ClassifyLinesKey, ClassifyJSONKey,
		StrategyBasicKey, StrategyStructureKey, StrategyFewShotKey,
	} {
		p, err := r.Resolve(key)
		if err != nil {
			t.Errorf("Resolve(%q) error = %v", key, err)
			continue
		}
		if p.IsOverride {
			t.Errorf("Resolve(%q) unexpectedly an override", key)
		}
		if p.Hash != HashText(p.Text) {
			t.Errorf("Resolve(%q) hash mismatch", key)
		}
	}

	if _, err := r.Resolve("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolver_Override(t *testing.T) {
	dir := t.TempDir()
	override := "Label {{.Text}} as {{.CategoryList}}"
	if err := os.WriteFile(filepath.Join(dir, StrategyBasicKey+".tmpl"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir, nil)
	p, err := r.Resolve(StrategyBasicKey)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !p.IsOverride || p.Text != override {
		t.Errorf("expected override, got %+v", p)
	}

	got, err := r.Render(StrategyBasicKey, Data{Text: "x", Categories: []string{"A"}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "Label x as A" {
		t.Errorf("Render() = %q", got)
	}

	// Keys without an override file still use the embedded default.
	p, err = r.Resolve(StrategyFewShotKey)
	if err != nil || p.IsOverride {
		t.Errorf("few_shot should not be overridden: %+v, %v", p, err)
	}
}

func TestResolver_List(t *testing.T) {
	r := NewResolver("", nil)
	list, err := r.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != len(Embedded()) {
		t.Fatalf("List() = %d prompts, want %d", len(list), len(Embedded()))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Key >= list[i].Key {
			t.Errorf("List() not sorted at %d: %q >= %q", i, list[i-1].Key, list[i].Key)
		}
	}
}

func TestResolver_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	r := NewResolver(dir, nil)

	path, err := r.Export(StrategyFewShotKey, false)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Now classify this text") {
		t.Errorf("exported text = %q", data)
	}

	if _, err := r.Export(StrategyFewShotKey, false); err == nil {
		t.Error("second export without force should fail")
	}
	if _, err := r.Export(StrategyFewShotKey, true); err != nil {
		t.Errorf("forced export error = %v", err)
	}

	p, _ := r.Resolve(StrategyFewShotKey)
	if !p.IsOverride {
		t.Error("exported prompt should now resolve as an override")
	}

	if _, err := NewResolver("", nil).Export(StrategyFewShotKey, false); err == nil {
		t.Error("export without a directory should fail")
	}
}
