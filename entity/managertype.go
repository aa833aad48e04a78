package entity

// 依赖倒置：控制器只通过以下只读接口访问路口状态

// entity/road/road.go的依赖倒置
type IRoad interface {
	LaneCount(lane Lane) uint8          // 车道排队车辆数
	PeekLane(lane Lane) (Vehicle, bool) // 车道队首车辆（不出队）
	TotalCount() int                    // 道路排队车辆总数
}

// entity/junction/junction.go的依赖倒置
type IIntersection interface {
	Road(dir RoadDir) IRoad // 获取道路的只读视图
	StepCount() uint32      // 当前仿真步
	CurrentPhase() Phase    // 当前相位
	Timing() Timing         // 配时参数
}
