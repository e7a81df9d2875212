// Package docs generates Markdown and man page documentation for the
// gitmerge command tree.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// GenMarkdownTree writes one Markdown file per visible command in the tree
// rooted at cmd. Files are named after the command path joined with "_".
func GenMarkdownTree(cmd *cobra.Command, dir string) error {
	for _, c := range visibleCommands(cmd) {
		if err := GenMarkdownTree(c, dir); err != nil {
			return err
		}
	}

	filename := filepath.Join(dir, markdownFilename(cmd.CommandPath()))
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer f.Close()

	return GenMarkdown(cmd, f)
}

// GenMarkdown renders the Markdown page for a single command.
func GenMarkdown(cmd *cobra.Command, w io.Writer) error {
	cmd.InitDefaultHelpFlag()

	buf := new(bytes.Buffer)
	name := cmd.CommandPath()

	buf.WriteString("## " + name + "\n\n")
	if cmd.Short != "" {
		buf.WriteString(cmd.Short + "\n\n")
	}

	if cmd.Runnable() {
		buf.WriteString("### Synopsis\n\n")
		if cmd.Long != "" {
			buf.WriteString(cmd.Long + "\n\n")
		}
		buf.WriteString("```\n" + cmd.UseLine() + "\n```\n\n")
	} else if cmd.Long != "" {
		buf.WriteString(cmd.Long + "\n\n")
	}

	if cmd.Example != "" {
		buf.WriteString("### Examples\n\n")
		buf.WriteString("```\n" + cmd.Example + "\n```\n\n")
	}

	if subs := visibleCommands(cmd); len(subs) > 0 {
		buf.WriteString("### Subcommands\n\n")
		for _, c := range subs {
			fmt.Fprintf(buf, "* [%s](%s) - %s\n", c.CommandPath(), markdownFilename(c.CommandPath()), c.Short)
		}
		buf.WriteString("\n")
	}

	if flags := cmd.NonInheritedFlags(); flags.HasAvailableFlags() {
		buf.WriteString("### Options\n\n```\n" + flags.FlagUsages() + "```\n\n")
	}
	if flags := cmd.InheritedFlags(); flags.HasAvailableFlags() {
		buf.WriteString("### Options inherited from parent commands\n\n```\n" + flags.FlagUsages() + "```\n\n")
	}

	if env := cmd.Annotations[EnvironmentAnnotation]; env != "" {
		buf.WriteString("### Environment\n\n```\n" + strings.TrimSpace(env) + "\n```\n\n")
	}

	if cmd.HasParent() {
		parent := cmd.Parent()
		buf.WriteString("### See also\n\n")
		fmt.Fprintf(buf, "* [%s](%s) - %s\n", parent.CommandPath(), markdownFilename(parent.CommandPath()), parent.Short)
	}

	_, err := buf.WriteTo(w)
	return err
}

func markdownFilename(cmdPath string) string {
	return strings.ReplaceAll(cmdPath, " ", "_") + ".md"
}

// visibleCommands returns the non-hidden subcommands of cmd sorted by name,
// excluding cobra's generated help and completion commands.
func visibleCommands(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
