package road_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/road"
)

var roads = []entity.RoadDir{entity.RoadNorth, entity.RoadSouth, entity.RoadEast, entity.RoadWest}

func TestMovementTypeUTurnInvalid(t *testing.T) {
	for _, r := range roads {
		assert.Equal(t, entity.MoveInvalid, road.MovementType(r, r), "u-turn from %v", r)
	}
}

func TestMovementTypeDistinctRoadsValid(t *testing.T) {
	for _, s := range roads {
		for _, e := range roads {
			if s == e {
				continue
			}
			assert.NotEqual(t, entity.MoveInvalid, road.MovementType(s, e), "%v -> %v", s, e)
		}
	}
}

func TestMovementTypeSentinel(t *testing.T) {
	for _, r := range roads {
		assert.Equal(t, entity.MoveInvalid, road.MovementType(r, entity.RoadNone))
		assert.Equal(t, entity.MoveInvalid, road.MovementType(entity.RoadNone, r))
	}
	assert.Equal(t, entity.MoveInvalid, road.MovementType(entity.RoadNone, entity.RoadNone))
	assert.Equal(t, entity.MoveInvalid, road.MovementType(entity.RoadDir(17), entity.RoadNorth))
}

func TestMovementTypeTable(t *testing.T) {
	cases := []struct {
		start, end entity.RoadDir
		want       entity.MovementType
	}{
		{entity.RoadNorth, entity.RoadSouth, entity.MoveStraight},
		{entity.RoadNorth, entity.RoadEast, entity.MoveLeft},
		{entity.RoadNorth, entity.RoadWest, entity.MoveRight},
		{entity.RoadSouth, entity.RoadNorth, entity.MoveStraight},
		{entity.RoadSouth, entity.RoadEast, entity.MoveRight},
		{entity.RoadSouth, entity.RoadWest, entity.MoveLeft},
		{entity.RoadEast, entity.RoadWest, entity.MoveStraight},
		{entity.RoadEast, entity.RoadNorth, entity.MoveRight},
		{entity.RoadEast, entity.RoadSouth, entity.MoveLeft},
		{entity.RoadWest, entity.RoadEast, entity.MoveStraight},
		{entity.RoadWest, entity.RoadNorth, entity.MoveLeft},
		{entity.RoadWest, entity.RoadSouth, entity.MoveRight},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, road.MovementType(c.start, c.end), "%v -> %v", c.start, c.end)
	}
}

func TestLaneForMovement(t *testing.T) {
	l, ok := road.LaneForMovement(entity.MoveLeft)
	assert.True(t, ok)
	assert.Equal(t, entity.LaneLeft, l)
	l, ok = road.LaneForMovement(entity.MoveStraight)
	assert.True(t, ok)
	assert.Equal(t, entity.LaneStraight, l)
	l, ok = road.LaneForMovement(entity.MoveRight)
	assert.True(t, ok)
	assert.Equal(t, entity.LaneRight, l)
	_, ok = road.LaneForMovement(entity.MoveInvalid)
	assert.False(t, ok)
}

func TestRoadRouting(t *testing.T) {
	r := &road.Road{}
	require.True(t, r.Enqueue(entity.Vehicle{ID: "s", Movement: entity.MoveStraight}))
	require.True(t, r.Enqueue(entity.Vehicle{ID: "r", Movement: entity.MoveRight}))
	require.True(t, r.Enqueue(entity.Vehicle{ID: "l", Movement: entity.MoveLeft}))
	require.True(t, r.Enqueue(entity.Vehicle{ID: "l2", Movement: entity.MoveLeft}))
	assert.False(t, r.Enqueue(entity.Vehicle{ID: "x", Movement: entity.MoveInvalid}))

	assert.Equal(t, uint8(2), r.LaneCount(entity.LaneLeft))
	assert.Equal(t, uint8(1), r.LaneCount(entity.LaneStraight))
	assert.Equal(t, uint8(1), r.LaneCount(entity.LaneRight))
	assert.Equal(t, 4, r.TotalCount())

	v, ok := r.PeekLane(entity.LaneLeft)
	require.True(t, ok)
	assert.Equal(t, "l", v.ID)
	v, ok = r.DequeueLane(entity.LaneLeft)
	require.True(t, ok)
	assert.Equal(t, "l", v.ID)
	assert.Equal(t, 3, r.TotalCount())
}

func TestRoadLaneFull(t *testing.T) {
	r := &road.Road{}
	for i := 0; i < entity.MaxVehiclesPerLane; i++ {
		require.True(t, r.Enqueue(entity.Vehicle{ID: fmt.Sprint(i), Movement: entity.MoveRight}))
	}
	assert.False(t, r.Enqueue(entity.Vehicle{ID: "full", Movement: entity.MoveRight}))
	// 其他车道不受影响
	assert.True(t, r.Enqueue(entity.Vehicle{ID: "other", Movement: entity.MoveStraight}))
	assert.Equal(t, entity.MaxVehiclesPerLane+1, r.TotalCount())
}

func TestRoadInvalidLane(t *testing.T) {
	r := &road.Road{}
	_, ok := r.DequeueLane(entity.Lane(3))
	assert.False(t, ok)
	_, ok = r.PeekLane(entity.Lane(3))
	assert.False(t, ok)
	assert.Equal(t, uint8(0), r.LaneCount(entity.Lane(3)))
	assert.False(t, r.EnqueueLane(entity.Lane(3), entity.Vehicle{ID: "x"}))
}

func TestRoadInit(t *testing.T) {
	r := &road.Road{}
	r.Enqueue(entity.Vehicle{ID: "a", Movement: entity.MoveLeft})
	r.Enqueue(entity.Vehicle{ID: "b", Movement: entity.MoveStraight})
	r.Init()
	assert.Equal(t, 0, r.TotalCount())
}
