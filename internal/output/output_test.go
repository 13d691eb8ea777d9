package output

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type sample struct {
	Category   string  `json:"category" yaml:"category"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"yaml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestTo(t *testing.T) {
	data := sample{Category: "Negative", Confidence: 0.9}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := To(&buf, FormatJSON, data); err != nil {
			t.Fatal(err)
		}
		var got sample
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil || got != data {
			t.Errorf("json output %q: %v", buf.String(), err)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := To(&buf, FormatYAML, data); err != nil {
			t.Fatal(err)
		}
		var got sample
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil || got != data {
			t.Errorf("yaml output %q: %v", buf.String(), err)
		}
	})

	t.Run("text is not structured", func(t *testing.T) {
		if err := To(io.Discard, FormatText, data); err == nil {
			t.Error("expected error")
		}
	})
}

func TestPrinter(t *testing.T) {
	t.Run("text mode calls renderer", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatText)
		p.Textf("header %d\n", 1)
		err := p.Print(sample{}, func(w io.Writer) error {
			_, err := io.WriteString(w, "rendered\n")
			return err
		})
		if err != nil {
			t.Fatal(err)
		}
		if buf.String() != "header 1\nrendered\n" {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("structured mode skips text", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatJSON)
		p.Textf("header\n")
		err := p.Print(sample{Category: "Positive"}, func(io.Writer) error {
			t.Error("text renderer should not run")
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `"category": "Positive"`) || strings.Contains(buf.String(), "header") {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestTable(t *testing.T) {
	out := Table(
		[]string{"Strategy", "Category", "Confidence"},
		[][]string{{"basic", "Positive", "0.90"}, {"few_shot"}},
		[]Align{AlignLeft, AlignLeft, AlignRight},
		false,
	)
	for _, want := range []string{"STRATEGY", "basic", "Positive", "0.90", "few_shot"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "╭") {
		t.Error("plain style should not use rounded corners")
	}

	if Table(nil, nil, nil, true) != "" {
		t.Error("no headers should render nothing")
	}
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("buffer is not a terminal")
	}
}
