package input_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/input"
)

func TestGenerateDeterministic(t *testing.T) {
	a, err := input.Generate(input.GenConfig{Name: "chaos", Steps: 50, Seed: 42})
	require.NoError(t, err)
	b, err := input.Generate(input.GenConfig{Name: "chaos", Steps: 50, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := input.Generate(input.GenConfig{Name: "chaos", Steps: 50, Seed: 43})
	require.NoError(t, err)
	assert.NotEqual(t, a.Commands, c.Commands)
}

func TestGenerateShape(t *testing.T) {
	for _, name := range input.ProfileNames() {
		s, err := input.Generate(input.GenConfig{Name: name, Steps: 100, Seed: 1})
		require.NoError(t, err, name)
		assert.Equal(t, 100, s.StepCount(), name)
		assert.Equal(t, input.CommandStep, s.Commands[len(s.Commands)-1].Type, name)

		ids := map[string]struct{}{}
		for _, c := range s.Commands {
			if c.Type != input.CommandAddVehicle {
				continue
			}
			_, dup := ids[c.VehicleID]
			assert.False(t, dup, "duplicated id %s", c.VehicleID)
			ids[c.VehicleID] = struct{}{}
			assert.Less(t, len(c.VehicleID), entity.MaxVehicleIDLen)
			start, end := entity.ParseRoad(c.StartRoad), entity.ParseRoad(c.EndRoad)
			assert.True(t, start.Valid())
			assert.True(t, end.Valid())
			assert.NotEqual(t, start, end)
		}
	}
}

func TestGenerateCustomProfile(t *testing.T) {
	s, err := input.Generate(input.GenConfig{
		Name:  "left-only",
		Steps: 10,
		Profile: func(int) input.Rates {
			return input.Rates{input.PoolNSLeft: 2}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 20, s.VehicleCount())
	assert.Equal(t, input.AddVehicle("nl_00001", s.Commands[0].StartRoad, s.Commands[0].EndRoad), s.Commands[0])
	for _, c := range s.Commands {
		if c.Type == input.CommandAddVehicle {
			assert.Contains(t, []string{"north", "south"}, c.StartRoad)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	_, err := input.Generate(input.GenConfig{Name: "unknown", Steps: 10})
	assert.Error(t, err)
	_, err = input.Generate(input.GenConfig{Name: "uniform", Steps: 0})
	assert.Error(t, err)
}
