package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

const sample = `
input:
  uri: mongodb://localhost:27017
  commands:
    db: traffic
    col: scenario_1
output:
  file: out.json
control:
  step:
    start: 0
    total: 3600
    interval: 0.5
  timing:
    min_green: 3
    max_green: 10
    yellow: 2
  controller: fixed
  fixed_duration: 4
sensor:
  seed: 7
  arrival_probability: 0.25
  hold_steps: 2
`

func TestParse(t *testing.T) {
	c, err := config.Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "traffic", c.Input.Commands.GetDb())
	assert.Equal(t, "scenario_1", c.Input.Commands.GetColl())
	assert.False(t, c.Input.Commands.Empty())
	assert.Equal(t, "out.json", c.Output.File)
	assert.Equal(t, int32(3600), c.Control.Step.Total)
	assert.Equal(t, 0.5, c.Control.Step.Interval)
	assert.Equal(t, uint64(7), c.Sensor.Seed)
	assert.Equal(t, uint8(2), c.Sensor.HoldSteps)

	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, entity.Timing{MinGreen: 3, MaxGreen: 10, Yellow: 2}, rc.Timing)

	ctrl, err := rc.NewController()
	require.NoError(t, err)
	assert.IsType(t, &trafficlight.FixedCycle{}, ctrl)
}

func TestParseUnknownField(t *testing.T) {
	_, err := config.Parse([]byte("control:\n  unknown: 1\n"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	c, err := config.Parse([]byte("control:\n  step:\n    total: 10\n"))
	require.NoError(t, err)
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultTiming(), rc.Timing)
	assert.Equal(t, config.ControllerAdaptive, rc.C.Controller)
	ctrl, err := rc.NewController()
	require.NoError(t, err)
	assert.Equal(t, trafficlight.Adaptive{}, ctrl)
	assert.True(t, c.Input.Commands.Empty())
}

func TestRuntimeConfigValidation(t *testing.T) {
	for name, mutate := range map[string]func(*config.Config){
		"zero yellow": func(c *config.Config) {
			c.Control.Timing = &config.ControlTiming{MinGreen: 2, MaxGreen: 8, Yellow: 0}
		},
		"min above max": func(c *config.Config) {
			c.Control.Timing = &config.ControlTiming{MinGreen: 9, MaxGreen: 8, Yellow: 1}
		},
		"negative interval": func(c *config.Config) { c.Control.Step.Interval = -1 },
		"negative total":    func(c *config.Config) { c.Control.Step.Total = -1 },
		"unknown controller": func(c *config.Config) {
			c.Control.Controller = "max-pressure"
		},
		"bad probability": func(c *config.Config) { c.Sensor.ArrivalProbability = 1.5 },
	} {
		c := config.Default()
		mutate(&c)
		_, err := config.NewRuntimeConfig(c)
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	c, err := config.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	c, err = config.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, config.ControllerFixed, c.Control.Controller)

	c, err = config.Load("", base64.StdEncoding.EncodeToString([]byte(sample)))
	require.NoError(t, err)
	assert.Equal(t, uint8(4), c.Control.FixedDuration)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yml"), "")
	assert.Error(t, err)
	_, err = config.Load("", "!!not base64!!")
	assert.Error(t, err)
}
