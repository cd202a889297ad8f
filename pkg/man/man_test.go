package man

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManCmd(t *testing.T) {
	cmd := NewManCmd()

	assert.Equal(t, "man", cmd.Use)
	assert.True(t, cmd.Hidden)
	assert.NotNil(t, cmd.RunE)
}

func TestManCmdOutput(t *testing.T) {
	root := &cobra.Command{
		Use:   "csv2spotify",
		Short: "Sync a CSV track list to Spotify playlists",
	}
	manCmd := NewManCmd()
	root.AddCommand(manCmd)

	var buf bytes.Buffer
	manCmd.SetOut(&buf)

	require.NoError(t, manCmd.RunE(manCmd, []string{}))
	assert.Contains(t, buf.String(), "csv2spotify")
}
