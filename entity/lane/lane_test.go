package lane_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
)

func vehicle(id string, step uint32) entity.Vehicle {
	return entity.Vehicle{ID: id, EndRoad: entity.RoadSouth, Movement: entity.MoveStraight, EnqueueStep: step}
}

func TestQueueInit(t *testing.T) {
	q := &lane.Queue{}
	assert.True(t, q.IsEmpty())
	assert.False(t, q.IsFull())
	assert.Equal(t, uint8(0), q.Len())

	_, ok := q.Dequeue()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
}

func TestQueueFIFO(t *testing.T) {
	q := &lane.Queue{}
	for i := 0; i < 10; i++ {
		require.True(t, q.Enqueue(vehicle(fmt.Sprintf("v%d", i), uint32(i))))
	}
	assert.Equal(t, uint8(10), q.Len())

	for i := 0; i < 10; i++ {
		front, ok := q.Peek()
		require.True(t, ok)
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, front, v)
		assert.Equal(t, fmt.Sprintf("v%d", i), v.ID)
		assert.Equal(t, uint32(i), v.EnqueueStep)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueueCapacity(t *testing.T) {
	q := &lane.Queue{}
	for i := 0; i < entity.MaxVehiclesPerLane; i++ {
		require.True(t, q.Enqueue(vehicle(fmt.Sprintf("v%d", i), 0)))
	}
	assert.True(t, q.IsFull())

	// 满队列拒绝入队且内容不变
	assert.False(t, q.Enqueue(vehicle("overflow", 0)))
	assert.Equal(t, uint8(entity.MaxVehiclesPerLane), q.Len())
	front, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "v0", front.ID)

	for i := 0; i < entity.MaxVehiclesPerLane; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("v%d", i), v.ID)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueueWrapAround(t *testing.T) {
	q := &lane.Queue{}
	next, expect := 0, 0
	// 多轮入队出队，使head/tail多次越过缓冲区末尾
	for round := 0; round < 5; round++ {
		for i := 0; i < entity.MaxVehiclesPerLane-3; i++ {
			require.True(t, q.Enqueue(vehicle(fmt.Sprintf("v%d", next), 0)))
			next++
		}
		for i := 0; i < entity.MaxVehiclesPerLane-3; i++ {
			v, ok := q.Dequeue()
			require.True(t, ok)
			assert.Equal(t, fmt.Sprintf("v%d", expect), v.ID)
			expect++
		}
	}
	assert.True(t, q.IsEmpty())
}

func TestQueuePeekIsIdempotent(t *testing.T) {
	q := &lane.Queue{}
	q.Enqueue(vehicle("a", 1))
	q.Enqueue(vehicle("b", 2))
	for i := 0; i < 5; i++ {
		v, ok := q.Peek()
		require.True(t, ok)
		assert.Equal(t, "a", v.ID)
		assert.Equal(t, uint8(2), q.Len())
	}
}

func TestQueueInitResets(t *testing.T) {
	q := &lane.Queue{}
	q.Enqueue(vehicle("a", 1))
	q.Init()
	assert.True(t, q.IsEmpty())
	assert.True(t, q.Enqueue(vehicle("b", 1)))
	v, _ := q.Peek()
	assert.Equal(t, "b", v.ID)
}

func TestQueueDoesNotAllocate(t *testing.T) {
	q := &lane.Queue{}
	v := vehicle("a", 1)
	allocs := testing.AllocsPerRun(100, func() {
		q.Enqueue(v)
		q.Peek()
		q.Dequeue()
	})
	assert.Zero(t, allocs)
}
