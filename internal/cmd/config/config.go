// Package config provides the config command and its subcommands.
package config

import (
	"github.com/schmitthub/gitmerge/internal/cmd/config/check"
	initcmd "github.com/schmitthub/gitmerge/internal/cmd/config/init"
	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
		Long:  `Commands for creating and validating gitmerge.yaml.`,
	}

	cmd.AddCommand(initcmd.NewCmdInit(f, nil))
	cmd.AddCommand(check.NewCmdCheck(f, nil))

	return cmd
}
