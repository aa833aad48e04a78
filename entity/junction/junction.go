package junction

import (
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/road"
)

// laneMovement 传感器路径：车道编号反推标准转向类型
var laneMovement = [entity.LanesPerRoad]entity.MovementType{
	entity.LaneLeft:     entity.MoveLeft,
	entity.LaneStraight: entity.MoveStraight,
	entity.LaneRight:    entity.MoveRight,
}

// emptyRoad 非法道路编号的只读占位
var emptyRoad road.Road

// Departures 单步离开路口的车辆，定长存储
type Departures struct {
	vehicles [entity.MaxDeparturesPerStep]entity.Vehicle
	count    int
}

func (d *Departures) add(v entity.Vehicle) {
	d.vehicles[d.count] = v
	d.count++
}

// Len 离开车辆数
func (d *Departures) Len() int {
	return d.count
}

// At 第i辆离开的车辆
func (d *Departures) At(i int) entity.Vehicle {
	return d.vehicles[i]
}

// Vehicles 离开车辆列表（引用内部数组，不分配内存）
func (d *Departures) Vehicles() []entity.Vehicle {
	return d.vehicles[:d.count]
}

// IDs 离开车辆ID列表
func (d *Departures) IDs() []string {
	return lo.Map(d.Vehicles(), func(v entity.Vehicle, _ int) string {
		return v.ID
	})
}

// Contains 判断指定车辆是否在本步离开
func (d *Departures) Contains(id string) bool {
	return lo.ContainsBy(d.Vehicles(), func(v entity.Vehicle) bool {
		return v.ID == id
	})
}

// String 空格分隔的车辆ID，即行协议中step命令的输出
func (d *Departures) String() string {
	return strings.Join(d.IDs(), " ")
}

// Intersection 四路交叉口
// 功能：持有4条道路、4个信号灯以及相位与步数记录，每次Step执行一个离散仿真步
// 说明：
//   - 自包含的值类型，直接拷贝结构体即可复制整个仿真状态
//   - 单写者：所有AddVehicle与Step调用必须由调用方串行化，内部不加锁
//   - 任意时刻处于GREEN/GREEN_ARROW的信号灯恰好属于当前相位放行的道路
type Intersection struct {
	roads               [entity.RoadCount]road.Road
	lights              [entity.RoadCount]trafficlight.Light
	currentPhase        entity.Phase
	phaseStepsRemaining uint8
	stepCount           uint32

	timing     entity.Timing
	controller IController
}

// New 创建路口
// 参数：timing-配时参数，controller-相位控制器（nil表示自适应控制器）
// 返回：已初始化的路口，所有信号灯为红灯，步数为0
func New(timing entity.Timing, controller IController) *Intersection {
	if controller == nil {
		controller = trafficlight.Adaptive{}
	}
	j := &Intersection{
		timing:     timing,
		controller: controller,
	}
	j.Init()
	return j
}

// Init 重置路口
// 功能：清空所有车道，信号灯全部置红，相位回到NS且剩余步数为0，步数清零
func (j *Intersection) Init() {
	for i := range j.roads {
		j.roads[i].Init()
		j.lights[i].Init(j.timing.Yellow)
	}
	j.currentPhase = entity.PhaseNS
	j.phaseStepsRemaining = 0
	j.stepCount = 0
}

// AddVehicle 车辆进入路口
// 功能：计算转向，构造车辆（记录当前步数）并加入起点道路对应车道
// 参数：start-起点道路，end-终点道路，id-车辆ID（超长部分截断）
// 返回：掉头、非法道路或车道已满时返回false，状态不变
func (j *Intersection) AddVehicle(start, end entity.RoadDir, id string) bool {
	mv := road.MovementType(start, end)
	if mv == entity.MoveInvalid {
		return false
	}
	return j.roads[start].Enqueue(entity.Vehicle{
		ID:          entity.BoundedID(id),
		EndRoad:     end,
		Movement:    mv,
		EnqueueStep: j.stepCount,
	})
}

// AddVehicleByLane 按车道编号加入车辆（传感器路径）
// 功能：传感器只知道车道不知道终点，终点记为RoadNone；之后的逻辑不再读取终点
// 返回：道路或车道编号非法、车道已满时返回false
func (j *Intersection) AddVehicleByLane(r entity.RoadDir, l entity.Lane, id string) bool {
	if !r.Valid() || !l.Valid() {
		return false
	}
	return j.roads[r].EnqueueLane(l, entity.Vehicle{
		ID:          entity.BoundedID(id),
		EndRoad:     entity.RoadNone,
		Movement:    laneMovement[l],
		EnqueueStep: j.stepCount,
	})
}

// applyPhase 激活相位：点亮相位内道路的信号灯并更新相位记录
// 说明：相位之间没有单独的黄灯步，上一相位的信号灯按各自的倒计时独立进入黄灯
func (j *Intersection) applyPhase(d entity.PhaseDecision) {
	info := d.Phase.Info()
	for i := 0; i < info.RoadCount; i++ {
		light := &j.lights[info.Roads[i]]
		if info.IsArrow {
			light.SetGreenArrow(d.Duration)
		} else {
			light.SetGreen(d.Duration)
		}
	}
	j.currentPhase = d.Phase
	j.phaseStepsRemaining = d.Duration
}

// Step 执行一个仿真步
// 功能：按固定顺序推进路口状态
// 返回：本步离开路口的车辆
// 算法说明：
// 1. 当前相位剩余步数为0时，询问控制器并立即激活新相位
// 2. 对当前相位放行且信号灯可通行的道路，每条放行车道的队首车辆离开
// 3. 所有信号灯推进一步（绿灯到期变黄，黄灯到期变红）
// 4. 相位剩余步数非0则减1，全局步数加1
// 说明：第2步在第3步之前检查灯色，刚激活的相位在同一步即可放行车辆
func (j *Intersection) Step() Departures {
	var out Departures

	// 1. 相位切换
	if j.phaseStepsRemaining == 0 {
		j.applyPhase(j.controller.NextPhase(j))
	}

	// 2. 放行
	info := j.currentPhase.Info()
	for i := 0; i < info.RoadCount; i++ {
		dir := info.Roads[i]
		if !j.lights[dir].IsGreen() {
			continue
		}
		for _, l := range info.ServedLanes() {
			if v, ok := j.roads[dir].DequeueLane(l); ok {
				out.add(v)
			}
		}
	}

	// 3. 信号灯
	for i := range j.lights {
		j.lights[i].Tick()
	}

	// 4. 计数
	if j.phaseStepsRemaining > 0 {
		j.phaseStepsRemaining--
	}
	j.stepCount++
	return out
}

// Road 道路只读视图（实现entity.IIntersection）
func (j *Intersection) Road(dir entity.RoadDir) entity.IRoad {
	if !dir.Valid() {
		return &emptyRoad
	}
	return &j.roads[dir]
}

// StepCount 当前仿真步
func (j *Intersection) StepCount() uint32 {
	return j.stepCount
}

// CurrentPhase 当前相位
func (j *Intersection) CurrentPhase() entity.Phase {
	return j.currentPhase
}

// PhaseStepsRemaining 当前相位剩余步数
func (j *Intersection) PhaseStepsRemaining() uint8 {
	return j.phaseStepsRemaining
}

// Timing 配时参数
func (j *Intersection) Timing() entity.Timing {
	return j.timing
}

// LightState 道路信号灯状态，非法道路视为红灯
func (j *Intersection) LightState(dir entity.RoadDir) entity.LightState {
	if !dir.Valid() {
		return entity.LightRed
	}
	return j.lights[dir].State()
}

// LightStepsRemaining 道路信号灯当前状态剩余步数
func (j *Intersection) LightStepsRemaining(dir entity.RoadDir) uint8 {
	if !dir.Valid() {
		return 0
	}
	return j.lights[dir].StepsRemaining()
}

// TotalWaiting 所有道路、所有车道的排队车辆总数
func (j *Intersection) TotalWaiting() int {
	total := 0
	for i := range j.roads {
		total += j.roads[i].TotalCount()
	}
	return total
}

// RoadState 单条道路的状态快照
type RoadState struct {
	Direction           entity.RoadDir
	Light               entity.LightState
	LightStepsRemaining uint8
	Lanes               [entity.LanesPerRoad]int // 按entity.Lane索引的排队车辆数
}

// State 路口状态快照
type State struct {
	StepCount           uint32
	CurrentPhase        entity.Phase
	PhaseStepsRemaining uint8
	TotalWaiting        int
	Roads               [entity.RoadCount]RoadState
	Scores              [entity.PhaseCount]uint64 // 各相位当前得分
}

// Snapshot 生成只读状态快照
func (j *Intersection) Snapshot() State {
	s := State{
		StepCount:           j.stepCount,
		CurrentPhase:        j.currentPhase,
		PhaseStepsRemaining: j.phaseStepsRemaining,
		TotalWaiting:        j.TotalWaiting(),
		Scores:              trafficlight.Scores(j),
	}
	for i := range j.roads {
		dir := entity.RoadDir(i)
		rs := RoadState{
			Direction:           dir,
			Light:               j.lights[i].State(),
			LightStepsRemaining: j.lights[i].StepsRemaining(),
		}
		for l := entity.Lane(0); l < entity.LanesPerRoad; l++ {
			rs.Lanes[l] = int(j.roads[i].LaneCount(l))
		}
		s.Roads[i] = rs
	}
	return s
}

var _ entity.IIntersection = (*Intersection)(nil)
