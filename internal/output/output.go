// Package output renders command results as human-readable text or as
// structured YAML/JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, yaml or json)", s)
	}
}

// IsStructured returns true if the format is JSON or YAML.
func (f Format) IsStructured() bool {
	return f == FormatJSON || f == FormatYAML
}

// To writes data to the given writer in a structured format.
func To(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("format %s is not structured", format)
	}
}

// Printer writes command results to one writer in one format.
type Printer struct {
	w      io.Writer
	format Format
	tty    bool
}

// NewPrinter creates a printer. Tables use box-drawing characters only
// when w is a terminal.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format, tty: IsTerminal(w)}
}

// Format returns the printer's format.
func (p *Printer) Format() Format {
	return p.format
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Print encodes data in structured modes, and calls text otherwise.
func (p *Printer) Print(data any, text func(w io.Writer) error) error {
	if p.format.IsStructured() {
		return To(p.w, p.format, data)
	}
	return text(p.w)
}

// Textf writes a formatted line in text mode only.
func (p *Printer) Textf(format string, args ...any) {
	if p.format.IsStructured() {
		return
	}
	fmt.Fprintf(p.w, format, args...)
}

// Table renders rows for this printer's writer.
func (p *Printer) Table(headers []string, rows [][]string, aligns []Align) string {
	return Table(headers, rows, aligns, p.tty)
}
