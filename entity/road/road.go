package road

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
)

// movementTable 转向查找表，按[起点][终点]索引，假定右侧通行
//
//	from north: south=直行 east=左转 west=右转
//	from south: north=直行 east=右转 west=左转
//	from east : west=直行  north=右转 south=左转
//	from west : east=直行  north=左转 south=右转
var movementTable = [entity.RoadCount][entity.RoadCount]entity.MovementType{
	entity.RoadNorth: {entity.MoveInvalid, entity.MoveStraight, entity.MoveLeft, entity.MoveRight},
	entity.RoadSouth: {entity.MoveStraight, entity.MoveInvalid, entity.MoveRight, entity.MoveLeft},
	entity.RoadEast:  {entity.MoveRight, entity.MoveLeft, entity.MoveInvalid, entity.MoveStraight},
	entity.RoadWest:  {entity.MoveLeft, entity.MoveRight, entity.MoveStraight, entity.MoveInvalid},
}

// MovementType 计算车辆转向
// 功能：根据起点道路和终点道路查表得到转向类型
// 参数：start-起点道路，end-终点道路
// 返回：转向类型；掉头或任一参数为RoadNone（及越界值）时返回MoveInvalid
func MovementType(start, end entity.RoadDir) entity.MovementType {
	if !start.Valid() || !end.Valid() || start == end {
		return entity.MoveInvalid
	}
	return movementTable[start][end]
}

// LaneForMovement 转向类型对应的车道
// 返回：车道编号，MoveInvalid时返回false
func LaneForMovement(m entity.MovementType) (entity.Lane, bool) {
	switch m {
	case entity.MoveLeft:
		return entity.LaneLeft, true
	case entity.MoveStraight:
		return entity.LaneStraight, true
	case entity.MoveRight:
		return entity.LaneRight, true
	default:
		return entity.LaneLeft, false
	}
}

// Road 道路实体
// 功能：一条进口道的三条车道队列，按entity.Lane索引
// 说明：车辆所在车道完全由其转向类型决定，进入后不再改变
type Road struct {
	lanes [entity.LanesPerRoad]lane.Queue
}

// Init 清空所有车道
func (r *Road) Init() {
	for i := range r.lanes {
		r.lanes[i].Init()
	}
}

// Enqueue 车辆入队
// 功能：按车辆预先计算的转向类型路由到对应车道
// 返回：转向非法或车道已满时返回false，道路状态不变
func (r *Road) Enqueue(v entity.Vehicle) bool {
	l, ok := LaneForMovement(v.Movement)
	if !ok {
		return false
	}
	return r.lanes[l].Enqueue(v)
}

// EnqueueLane 按车道编号直接入队（传感器路径）
func (r *Road) EnqueueLane(l entity.Lane, v entity.Vehicle) bool {
	if !l.Valid() {
		return false
	}
	return r.lanes[l].Enqueue(v)
}

// DequeueLane 指定车道队首车辆出队
func (r *Road) DequeueLane(l entity.Lane) (entity.Vehicle, bool) {
	if !l.Valid() {
		return entity.Vehicle{}, false
	}
	return r.lanes[l].Dequeue()
}

// PeekLane 查看指定车道队首车辆
func (r *Road) PeekLane(l entity.Lane) (entity.Vehicle, bool) {
	if !l.Valid() {
		return entity.Vehicle{}, false
	}
	return r.lanes[l].Peek()
}

// LaneCount 指定车道排队车辆数
func (r *Road) LaneCount(l entity.Lane) uint8 {
	if !l.Valid() {
		return 0
	}
	return r.lanes[l].Len()
}

// TotalCount 道路排队车辆总数
func (r *Road) TotalCount() int {
	total := 0
	for i := range r.lanes {
		total += int(r.lanes[i].Len())
	}
	return total
}
