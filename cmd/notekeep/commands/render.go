package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var formats = []string{formatText, formatJSON, formatYAML}

func validateFormat(format string) error {
	if slices.Contains(formats, format) {
		return nil
	}
	return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "output must be text, json or yaml"), "output", format)
}

// render writes v in the selected structured format, or the result of text
// for the text format.
func render(w io.Writer, format string, v any, text func() string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return zerr.Wrap(err, "failed to encode output")
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return zerr.Wrap(err, "failed to encode output")
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, text())
		return err
	}
}
