package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripd/internal/rib"
)

const validConfig = `
router-id 1
input-ports 6001, 6002
outputs 6010-1-2, 6020-5-3
timers 5, 30, 20
`

func TestParseValidConfig(t *testing.T) {
	cfg, err := parse(strings.NewReader(validConfig))
	require.NoError(t, err)

	assert.EqualValues(t, 1, cfg.RouterID)
	assert.Equal(t, []int{6001, 6002}, cfg.InputPorts)
	assert.Equal(t, []rib.Neighbor{
		{ID: 2, OutboundPort: 6010, LinkMetric: 1},
		{ID: 3, OutboundPort: 6020, LinkMetric: 5},
	}, cfg.Neighbors)
	assert.Equal(t, 5, cfg.Timers.Scheduled)
	assert.Equal(t, 30, cfg.Timers.Timeout)
	assert.Equal(t, 20, cfg.Timers.Garbage)
}

func TestRouterIDOutOfRange(t *testing.T) {
	cfg := strings.Replace(validConfig, "router-id 1", "router-id 70000", 1)
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
}

func TestRouterIDTooSmall(t *testing.T) {
	cfg := strings.Replace(validConfig, "router-id 1", "router-id 0", 1)
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}

func TestInputPortOutOfRange(t *testing.T) {
	cfg := strings.Replace(validConfig, "6001, 6002", "80, 6002", 1)
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}

func TestOutputPortOutOfRange(t *testing.T) {
	cfg := strings.Replace(validConfig, "6010-1-2", "80-1-2", 1)
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}

func TestOutputNeighborIDOutOfRange(t *testing.T) {
	cfg := strings.Replace(validConfig, "6010-1-2", "6010-1-70000", 1)
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}

func TestOutputNegativeMetricRejected(t *testing.T) {
	cfg := strings.Replace(validConfig, "6010-1-2", "6010--1-2", 1)
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}

func TestTimeoutRatioEnforced(t *testing.T) {
	cfg := strings.Replace(validConfig, "timers 5, 30, 20", "timers 5, 25, 20", 1)
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}

func TestGarbageRatioEnforced(t *testing.T) {
	cfg := strings.Replace(validConfig, "timers 5, 30, 20", "timers 5, 30, 15", 1)
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}

func TestMissingDirectiveIsFatal(t *testing.T) {
	cfg := "router-id 1\ninput-ports 6001\n"
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}

func TestDirectivesOutOfOrderAreRejected(t *testing.T) {
	cfg := `
input-ports 6001
router-id 1
outputs 6010-1-2
timers 5, 30, 20
`
	_, err := parse(strings.NewReader(cfg))
	require.Error(t, err)
}
