package cmdutil

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Format mode constants for --format flag parsing.
const (
	ModeDefault  = ""
	ModeJSON     = "json"
	ModeYAML     = "yaml"
	ModeTemplate = "template"
)

// Format is a parsed format specification from the --format flag.
type Format struct {
	mode     string
	template string
}

// ParseFormat parses a raw --format flag value into a Format.
//
// Recognized inputs:
//   - ""               → ModeDefault
//   - "json"           → ModeJSON
//   - "yaml"           → ModeYAML
//   - "{{.Analysis}}"  → ModeTemplate (contains "{{")
//   - anything else    → FlagError
func ParseFormat(raw string) (Format, error) {
	switch {
	case raw == "":
		return Format{mode: ModeDefault}, nil
	case raw == "json":
		return Format{mode: ModeJSON}, nil
	case raw == "yaml":
		return Format{mode: ModeYAML}, nil
	case strings.Contains(raw, "{{"):
		return Format{mode: ModeTemplate, template: raw}, nil
	default:
		return Format{}, FlagErrorf("invalid format string: %q", raw)
	}
}

// IsDefault reports whether the format is the default human output.
func (f Format) IsDefault() bool { return f.mode == ModeDefault }

// IsJSON reports whether the format is JSON output.
func (f Format) IsJSON() bool { return f.mode == ModeJSON }

// IsYAML reports whether the format is YAML output.
func (f Format) IsYAML() bool { return f.mode == ModeYAML }

// IsTemplate reports whether the format uses a Go template.
func (f Format) IsTemplate() bool { return f.mode == ModeTemplate }

// Template returns the Go template string, or "" if not a template format.
func (f Format) Template() string { return f.template }

// FormatFlags holds parsed state for the --format and --json flags.
type FormatFlags struct {
	Format Format
}

// IsJSON reports whether the format is JSON output.
func (ff *FormatFlags) IsJSON() bool { return ff.Format.IsJSON() }

// IsDefault reports whether the format is the default human output.
func (ff *FormatFlags) IsDefault() bool { return ff.Format.IsDefault() }

// Write renders item in the selected format. Default output is delegated to
// human so each command keeps control of its plain rendering.
func (ff *FormatFlags) Write(w io.Writer, item any, human func() error) error {
	switch {
	case ff.Format.IsJSON():
		return WriteJSON(w, item)
	case ff.Format.IsYAML():
		return WriteYAML(w, item)
	case ff.Format.IsTemplate():
		return ExecuteTemplate(w, ff.Format, []any{item})
	default:
		return human()
	}
}

// AddFormatFlags registers --format and --json on the command and chains
// PreRunE validation for mutual exclusivity.
//
// The returned FormatFlags is populated during PreRunE; commands read it
// in RunE after flag parsing is complete.
func AddFormatFlags(cmd *cobra.Command) *FormatFlags {
	ff := &FormatFlags{}

	cmd.Flags().String("format", "", `Output format: "json", "yaml", or a Go template`)
	cmd.Flags().Bool("json", false, "Output as JSON (shorthand for --format json)")

	existingPreRunE := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if existingPreRunE != nil {
			if err := existingPreRunE(cmd, args); err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("json") && cmd.Flags().Changed("format") {
			return FlagErrorf("--format and --json are mutually exclusive")
		}

		jsonFlag, _ := cmd.Flags().GetBool("json")
		if jsonFlag {
			ff.Format = Format{mode: ModeJSON}
			return nil
		}

		formatRaw, _ := cmd.Flags().GetString("format")
		parsed, err := ParseFormat(formatRaw)
		if err != nil {
			return err
		}
		ff.Format = parsed
		return nil
	}

	return ff
}

// WriteYAML encodes data as YAML with two-space indentation.
func WriteYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}
