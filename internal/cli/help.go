package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/ui/pretty"
)

// HelpStyles contains Lipgloss styles for command help.
type HelpStyles struct {
	Command lipgloss.Style
	Heading lipgloss.Style
	Name    lipgloss.Style
	Flag    lipgloss.Style
	Dim     lipgloss.Style
}

// NewHelpStyles derives help styles from the output styles, so help and
// command output share one palette.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	s := pretty.NewStyles(colorEnabled)
	return &HelpStyles{
		Command: s.Bold,
		Heading: s.TableHeader,
		Name:    s.Kind,
		Flag:    s.Range,
		Dim:     s.Dim,
	}
}

// HelpFormatter renders styled help for Cobra commands. Color is resolved
// when help is printed, after flags have been parsed.
type HelpFormatter struct {
	colorMode *string
}

// NewHelpFormatter returns a formatter reading the color mode from colorMode.
func NewHelpFormatter(colorMode *string) *HelpFormatter {
	return &HelpFormatter{colorMode: colorMode}
}

func (h *HelpFormatter) styles(w io.Writer) *HelpStyles {
	mode := "auto"
	if h.colorMode != nil && *h.colorMode != "" {
		mode = *h.colorMode
	}
	return NewHelpStyles(pretty.IsColorEnabled(mode, w))
}

func (h *HelpFormatter) funcs(s *HelpStyles) template.FuncMap {
	return template.FuncMap{
		"command": s.Command.Render,
		"heading": s.Heading.Render,
		"name":    s.Name.Render,
		"dim":     s.Dim.Render,
		"flags":   func(set flagUsager) string { return styleFlags(s, set.FlagUsages()) },
		"rpad":    func(str string, n int) string { return str + strings.Repeat(" ", max(n-len(str), 0)) },
		"join":    strings.Join,
		"trim":    func(str string) string { return strings.TrimRight(str, " \t\n") },
	}
}

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}
{{- if gt (len .Aliases) 0}}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}
{{- end}}
{{- if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}
{{- end}}
{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ name (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}
{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ trim . }}

{{end}}` + usageTemplate

type flagUsager interface {
	FlagUsages() string
}

// styleFlags colors the flag names in pflag's usage block. Pflag separates
// names from descriptions with at least two spaces.
func styleFlags(s *HelpStyles, usages string) string {
	lines := strings.Split(strings.TrimSuffix(usages, "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		gap := strings.Index(trimmed, "  ")
		if trimmed == "" || gap < 0 {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		names, rest := trimmed[:gap], trimmed[gap:]

		var b strings.Builder
		for j, token := range strings.Fields(names) {
			if j > 0 {
				b.WriteByte(' ')
			}
			if strings.HasPrefix(token, "-") {
				b.WriteString(s.Flag.Render(strings.TrimSuffix(token, ",")))
				if strings.HasSuffix(token, ",") {
					b.WriteByte(',')
				}
			} else {
				b.WriteString(s.Dim.Render(token))
			}
		}
		lines[i] = indent + b.String() + rest
	}
	return strings.Join(lines, "\n")
}

// ApplyToCommand installs the styled help and usage functions on cmd. Cobra
// inherits them in subcommands.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	execute := func(name, text string, command *cobra.Command) error {
		w := command.OutOrStdout()
		tmpl, err := template.New(name).Funcs(h.funcs(h.styles(w))).Parse(text)
		if err != nil {
			return fmt.Errorf("parse %s template: %w", name, err)
		}
		return tmpl.Execute(w, command)
	}

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		return execute("usage", usageTemplate, command)
	})
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := execute("help", helpTemplate, command); err != nil {
			command.PrintErrln(err)
		}
	})
}
