package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "signalcore", cmd.Use)
	assert.Contains(t, cmd.Long, "trust circles")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "poll", "derive", "resolve", "signals", "recognitions"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "signalcore.yaml", configFlag.DefValue)
}

func TestSignalsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	signalsCmd, _, err := cmd.Find([]string{"signals"})
	require.NoError(t, err)

	typeFlag := signalsCmd.Flags().Lookup("type")
	require.NotNil(t, typeFlag)

	actorFlag := signalsCmd.Flags().Lookup("actor")
	require.NotNil(t, actorFlag)

	roleFlag := signalsCmd.Flags().Lookup("role")
	require.NotNil(t, roleFlag)
	assert.Equal(t, "either", roleFlag.DefValue)
}

func TestRecognitionsAddCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	addCmd, _, err := cmd.Find([]string{"recognitions", "add"})
	require.NoError(t, err)

	for _, name := range []string{"label", "emoji", "lens", "from", "to", "note"} {
		require.NotNil(t, addCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "derive", "0.0.1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
