package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd_RegistersExpectedFlags(t *testing.T) {
	for _, name := range []string{
		"config", "seed", "arrival-rate", "service-rate",
		"queue-capacity", "server-capacity", "warm-up-hours", "run-hours", "log",
	} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "flag %q must be registered", name)
	}
}

func TestRunCmd_DefaultLogLevel_IsInfo(t *testing.T) {
	flag := runCmd.Flags().Lookup("log")

	require.NotNil(t, flag)
	assert.Equal(t, "info", flag.DefValue)
}

func TestRootCmd_HasRunSubcommand(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "run" {
			found = true
		}
	}
	assert.True(t, found, "root command must register run as a subcommand")
}

func TestResolveTandemConfig_NoConfigPath_BuildsFromFlags(t *testing.T) {
	runConfigPath = ""
	runArrivalRate = 4
	runServiceRate = 5
	runQueueCapacity = 0
	runServerCapacity = 1
	runWarmUpHours = 100
	runRunHours = 1000
	runLogLevel = "warn"

	tandemCfg, level, err := resolveTandemConfig()

	require.NoError(t, err)
	assert.Equal(t, "warn", level)
	assert.Equal(t, 4.0, tandemCfg.ArrivalRatePerHour)
	require.Len(t, tandemCfg.Stages, 1)
	assert.Equal(t, 1, tandemCfg.Stages[0].ServerCapacity)
}

func TestResolveTandemConfig_MissingConfigFile_IsError(t *testing.T) {
	runConfigPath = "/nonexistent/path/does-not-exist.yaml"
	defer func() { runConfigPath = "" }()

	_, _, err := resolveTandemConfig()

	assert.Error(t, err)
}
