package cmdutil

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArgsCmd() *cobra.Command {
	root := &cobra.Command{Use: "gitmerge"}
	child := &cobra.Command{Use: "analyze REV", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)
	return child
}

func TestNoArgs(t *testing.T) {
	cmd := newArgsCmd()
	assert.NoError(t, NoArgs(cmd, nil))

	err := NoArgs(cmd, []string{"extra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gitmerge: 'gitmerge analyze' accepts no arguments")
}

func TestRequiresMinArgs(t *testing.T) {
	cmd := newArgsCmd()
	validate := RequiresMinArgs(1)
	assert.NoError(t, validate(cmd, []string{"feature"}))
	assert.NoError(t, validate(cmd, []string{"a", "b"}))

	err := validate(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 argument")
}

func TestExactArgs(t *testing.T) {
	cmd := newArgsCmd()
	validate := ExactArgs(2)
	assert.NoError(t, validate(cmd, []string{"a", "b"}))

	err := validate(cmd, []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires 2 arguments")
}
