package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_Build_ConstructsSandboxWithID(t *testing.T) {
	sandbox, counters, err := NewBuilder(SandboxConfig{ID: "root", Seed: 7}).Build()

	require.NoError(t, err)
	require.Equal(t, "root", sandbox.ID())
	require.Equal(t, int64(7), sandbox.Seed())
	require.Nil(t, sandbox.Logger())
	require.Empty(t, counters)
}

func TestBuilder_WithLogging_AttachesLogger(t *testing.T) {
	sandbox, _, err := NewBuilder(SandboxConfig{ID: "root"}).
		WithLogging(LoggingConfig{Level: "debug"}).
		Build()

	require.NoError(t, err)
	require.NotNil(t, sandbox.Logger())
}

func TestBuilder_WithLogging_InvalidLevel_IsError(t *testing.T) {
	_, _, err := NewBuilder(SandboxConfig{ID: "root"}).
		WithLogging(LoggingConfig{Level: "not-a-level"}).
		Build()

	require.Error(t, err)
}

func TestBuilder_WithHourCounters_RegistersNamedCounters(t *testing.T) {
	_, counters, err := NewBuilder(SandboxConfig{ID: "root"}).
		WithHourCounters("queueing", "serving").
		Build()

	require.NoError(t, err)
	require.Contains(t, counters, "queueing")
	require.Contains(t, counters, "serving")
	require.Len(t, counters, 2)
}
