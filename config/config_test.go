package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_FullNetworkConfig(t *testing.T) {
	data := []byte(`
sandbox:
  id: mm1
  seed: 42
logging:
  level: debug
  format: json
tandem:
  arrival_rate_per_hour: 4
  warm_up_hours: 1000
  run_hours: 20000
  stages:
    - queue_capacity: 0
      server_capacity: 1
      service_rate_per_hour: 5
`)

	cfg, err := Parse(data)

	require.NoError(t, err)
	require.Equal(t, "mm1", cfg.Sandbox.ID)
	require.Equal(t, int64(42), cfg.Sandbox.Seed)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, 4.0, cfg.Tandem.ArrivalRatePerHour)
	require.Len(t, cfg.Tandem.Stages, 1)
	require.Equal(t, 1, cfg.Tandem.Stages[0].ServerCapacity)
}

func TestParse_UnknownField_IsError(t *testing.T) {
	data := []byte(`
sandbox:
  id: x
  seeed: 1
`)

	_, err := Parse(data)

	require.Error(t, err)
}

func TestParse_EmptyDocument_YieldsZeroValues(t *testing.T) {
	cfg, err := Parse([]byte(``))

	require.NoError(t, err)
	require.Equal(t, "", cfg.Sandbox.ID)
	require.Equal(t, int64(0), cfg.Sandbox.Seed)
}

func TestLoad_MissingFile_IsError(t *testing.T) {
	_, err := Load("/nonexistent/path/does-not-exist.yaml")

	require.Error(t, err)
}

func TestTandemConfig_DurationConversions(t *testing.T) {
	tc := TandemConfig{WarmUpHours: 1.5, RunHours: 2}

	require.Equal(t, 90*time.Minute, tc.WarmUpDuration())
	require.Equal(t, 2*time.Hour, tc.RunDuration())
}
