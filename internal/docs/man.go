package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvironmentAnnotation is the cobra annotation key whose value is rendered
// as an ENVIRONMENT section. Each line is "NAME  description".
const EnvironmentAnnotation = "docs:environment"

// GenManHeader contains man page metadata
type GenManHeader struct {
	Section string
	Date    *time.Time
	Source  string
	Manual  string
}

// defaultManHeader is used when GenManTree is not given a header.
func defaultManHeader() *GenManHeader {
	return &GenManHeader{
		Section: "1",
		Source:  "gitmerge",
		Manual:  "gitmerge Manual",
	}
}

// GenManTree writes one man page per visible command in the tree rooted at
// cmd. Pages are named after the command path joined with "-".
func GenManTree(cmd *cobra.Command, dir string, header *GenManHeader) error {
	if header == nil {
		header = defaultManHeader()
	}
	if header.Section == "" {
		header.Section = "1"
	}

	for _, c := range visibleCommands(cmd) {
		if err := GenManTree(c, dir, header); err != nil {
			return err
		}
	}

	filename := filepath.Join(dir, manFilename(cmd, header.Section))
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer f.Close()

	return GenMan(cmd, header, f)
}

// GenMan renders the man page for a single command.
func GenMan(cmd *cobra.Command, header *GenManHeader, w io.Writer) error {
	if header == nil {
		header = defaultManHeader()
	}
	_, err := w.Write(md2man.Render(manMarkdown(cmd, header)))
	return err
}

func manMarkdown(cmd *cobra.Command, header *GenManHeader) []byte {
	cmd.InitDefaultHelpFlag()

	buf := new(bytes.Buffer)
	name := cmd.CommandPath()

	date := ""
	if header.Date != nil {
		date = header.Date.Format("Jan 2006")
	}
	fmt.Fprintf(buf, "%% %s(%s) %s | %s\n\n",
		strings.ToUpper(strings.ReplaceAll(name, " ", "-")), header.Section, date, header.Manual)

	buf.WriteString("# NAME\n")
	fmt.Fprintf(buf, "%s \\- %s\n\n", name, cmd.Short)

	buf.WriteString("# SYNOPSIS\n")
	if cmd.Runnable() {
		fmt.Fprintf(buf, "**%s**\n\n", cmd.UseLine())
	} else {
		fmt.Fprintf(buf, "**%s** COMMAND\n\n", name)
	}

	if cmd.Long != "" {
		buf.WriteString("# DESCRIPTION\n")
		buf.WriteString(cmd.Long + "\n\n")
	}

	if subs := visibleCommands(cmd); len(subs) > 0 {
		buf.WriteString("# COMMANDS\n")
		for _, c := range subs {
			fmt.Fprintf(buf, "**%s**\n: %s\n\n", c.Name(), c.Short)
		}
	}

	local, inherited := cmd.NonInheritedFlags(), cmd.InheritedFlags()
	if local.HasAvailableFlags() || inherited.HasAvailableFlags() {
		buf.WriteString("# OPTIONS\n")
		manFlags(buf, local)
		manFlags(buf, inherited)
	}

	if env := cmd.Annotations[EnvironmentAnnotation]; env != "" {
		buf.WriteString("# ENVIRONMENT\n")
		for _, line := range strings.Split(strings.TrimSpace(env), "\n") {
			envName, desc, _ := strings.Cut(strings.TrimSpace(line), " ")
			fmt.Fprintf(buf, "**%s**\n: %s\n\n", envName, strings.TrimSpace(desc))
		}
	}

	if cmd.Example != "" {
		buf.WriteString("# EXAMPLES\n")
		buf.WriteString("```\n" + cmd.Example + "\n```\n\n")
	}

	if cmd.HasParent() {
		buf.WriteString("# SEE ALSO\n")
		parent := cmd.Parent()
		fmt.Fprintf(buf, "**%s(%s)**\n", strings.ReplaceAll(parent.CommandPath(), " ", "-"), header.Section)
	}

	return buf.Bytes()
}

func manFlags(buf *bytes.Buffer, flags *pflag.FlagSet) {
	var list []*pflag.Flag
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			list = append(list, f)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	for _, f := range list {
		if f.Shorthand != "" {
			fmt.Fprintf(buf, "**-%s**, **--%s**", f.Shorthand, f.Name)
		} else {
			fmt.Fprintf(buf, "**--%s**", f.Name)
		}
		if t := f.Value.Type(); t != "bool" {
			fmt.Fprintf(buf, " <%s>", t)
		}
		buf.WriteString("\n: " + f.Usage)
		switch f.DefValue {
		case "", "false", "0", "[]":
		default:
			fmt.Fprintf(buf, " (default: %s)", f.DefValue)
		}
		buf.WriteString("\n\n")
	}
}

func manFilename(cmd *cobra.Command, section string) string {
	return strings.ReplaceAll(cmd.CommandPath(), " ", "-") + "." + section
}
