package entity

import (
	"fmt"
	"unicode/utf8"
)

// 编译期配置
// 所有容量均为固定值，核心逻辑只使用定长数组，不做动态内存分配
const (
	LanesPerRoad         = 3                    // 每条道路的车道数（左转|直行|右转）
	MaxVehiclesPerLane   = 64                   // 单车道最大排队车辆数
	MaxVehicleIDLen      = 32                   // 车辆ID最大长度（含结束符，实际可用31字节）
	RoadCount            = 4                    // 路口道路数（N、S、E、W）
	PhaseCount           = 6                    // 相位数
	MaxRoadsPerPhase     = 2                    // 单个相位最多放行的道路数
	MaxDeparturesPerStep = MaxRoadsPerPhase * 2 // 单步最多离开的车辆数：2条道路 x 2条车道（直行+右转）

	MinGreenSteps = 2 // 最短绿灯步数
	MaxGreenSteps = 8 // 最长绿灯步数
	YellowSteps   = 1 // 黄灯步数
)

// RoadDir 道路方向
type RoadDir uint8

const (
	RoadNorth RoadDir = 0
	RoadSouth RoadDir = 1
	RoadEast  RoadDir = 2
	RoadWest  RoadDir = 3
	RoadNone  RoadDir = 4 // 哨兵值：未知道路/单道路相位的占位
)

var roadNames = [...]string{"north", "south", "east", "west"}

// ParseRoad 将道路名解析为RoadDir
// 功能：识别north|south|east|west，其余输入一律返回RoadNone
func ParseRoad(s string) RoadDir {
	for i, name := range roadNames {
		if s == name {
			return RoadDir(i)
		}
	}
	return RoadNone
}

// Valid 判断是否为真实存在的道路（非哨兵）
func (r RoadDir) Valid() bool {
	return r < RoadNone
}

func (r RoadDir) String() string {
	if r.Valid() {
		return roadNames[r]
	}
	return "none"
}

// MovementType 车辆转向类型，在车辆进入时由(起点道路, 终点道路)计算一次，之后不再改变
type MovementType uint8

const (
	MoveStraight MovementType = 0
	MoveRight    MovementType = 1
	MoveLeft     MovementType = 2
	MoveInvalid  MovementType = 3 // 掉头或非法道路
)

func (m MovementType) String() string {
	switch m {
	case MoveStraight:
		return "straight"
	case MoveRight:
		return "right"
	case MoveLeft:
		return "left"
	default:
		return "invalid"
	}
}

// Lane 道路内的车道编号
//
//	LaneLeft     左转专用，箭头相位放行
//	LaneStraight 直行，主相位放行
//	LaneRight    右转，主相位放行（右转不与对向车流冲突）
type Lane uint8

const (
	LaneLeft     Lane = 0
	LaneStraight Lane = 1
	LaneRight    Lane = 2
)

var laneNames = [...]string{"left", "straight", "right"}

// Valid 判断车道编号是否合法
func (l Lane) Valid() bool {
	return l < LanesPerRoad
}

func (l Lane) String() string {
	if l.Valid() {
		return laneNames[l]
	}
	return "unknown"
}

// Vehicle 车辆
// 说明：值类型，同一时刻只存在于一个车道队列的槽位中，离开时被拷贝出队列
type Vehicle struct {
	ID          string       // 车辆ID，最长MaxVehicleIDLen-1字节
	EndRoad     RoadDir      // 终点道路，传感器进入的车辆为RoadNone
	Movement    MovementType // 转向类型
	EnqueueStep uint32       // 进入队列时的仿真步
}

// BoundedID 将ID截断到MaxVehicleIDLen-1字节
// 说明：截断只做切片，不分配内存；截断点落在多字节字符中间时退回到该字符起始处
func BoundedID(id string) string {
	if len(id) < MaxVehicleIDLen {
		return id
	}
	n := MaxVehicleIDLen - 1
	for n > 0 && !utf8.RuneStart(id[n]) {
		n--
	}
	return id[:n]
}

// LightState 信号灯显示状态
type LightState uint8

const (
	LightRed        LightState = 0
	LightYellow     LightState = 1
	LightGreen      LightState = 2
	LightGreenArrow LightState = 3 // 保护左转
)

func (s LightState) String() string {
	switch s {
	case LightRed:
		return "RED"
	case LightYellow:
		return "YELLOW"
	case LightGreen:
		return "GREEN"
	case LightGreenArrow:
		return "GREEN_ARROW"
	default:
		return "UNKNOWN"
	}
}

// Phase 相位
//
//	PhaseNS/PhaseEW 两条对向道路的直行+右转车道
//	Phase*Arrow     单条道路的左转车道
type Phase uint8

const (
	PhaseNS     Phase = 0
	PhaseEW     Phase = 1
	PhaseNArrow Phase = 2
	PhaseSArrow Phase = 3
	PhaseEArrow Phase = 4
	PhaseWArrow Phase = 5
)

var phaseNames = [...]string{"NS", "EW", "N_ARROW", "S_ARROW", "E_ARROW", "W_ARROW"}

func (p Phase) String() string {
	if p < PhaseCount {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// PhaseInfo 相位元数据
type PhaseInfo struct {
	Roads     [MaxRoadsPerPhase]RoadDir // 放行的道路，未使用的位置为RoadNone
	RoadCount int                       // 放行道路数（1或2）
	IsArrow   bool                      // true：只放行左转车道；false：放行直行+右转车道
}

var (
	mainLanes  = [...]Lane{LaneStraight, LaneRight}
	arrowLanes = [...]Lane{LaneLeft}
)

// ServedLanes 相位放行的车道
// 说明：返回包级只读数组的切片，不分配内存，调用方不得修改
func (i PhaseInfo) ServedLanes() []Lane {
	if i.IsArrow {
		return arrowLanes[:]
	}
	return mainLanes[:]
}

// Serves 判断相位是否放行指定道路
func (i PhaseInfo) Serves(road RoadDir) bool {
	for r := 0; r < i.RoadCount; r++ {
		if i.Roads[r] == road {
			return true
		}
	}
	return false
}

// PhaseTable 静态相位表，只读
// 供驱动循环直接映射到物理输出，无需重复推导
var PhaseTable = [PhaseCount]PhaseInfo{
	PhaseNS:     {Roads: [MaxRoadsPerPhase]RoadDir{RoadNorth, RoadSouth}, RoadCount: 2, IsArrow: false},
	PhaseEW:     {Roads: [MaxRoadsPerPhase]RoadDir{RoadEast, RoadWest}, RoadCount: 2, IsArrow: false},
	PhaseNArrow: {Roads: [MaxRoadsPerPhase]RoadDir{RoadNorth, RoadNone}, RoadCount: 1, IsArrow: true},
	PhaseSArrow: {Roads: [MaxRoadsPerPhase]RoadDir{RoadSouth, RoadNone}, RoadCount: 1, IsArrow: true},
	PhaseEArrow: {Roads: [MaxRoadsPerPhase]RoadDir{RoadEast, RoadNone}, RoadCount: 1, IsArrow: true},
	PhaseWArrow: {Roads: [MaxRoadsPerPhase]RoadDir{RoadWest, RoadNone}, RoadCount: 1, IsArrow: true},
}

// Info 查询相位元数据
func (p Phase) Info() PhaseInfo {
	return PhaseTable[p]
}

// PhaseDecision 控制器输出：下一相位及其绿灯步数
type PhaseDecision struct {
	Phase    Phase
	Duration uint8
}

// Timing 信号配时参数
type Timing struct {
	MinGreen uint8 // 最短绿灯步数
	MaxGreen uint8 // 最长绿灯步数
	Yellow   uint8 // 黄灯步数
}

// DefaultTiming 默认配时
func DefaultTiming() Timing {
	return Timing{
		MinGreen: MinGreenSteps,
		MaxGreen: MaxGreenSteps,
		Yellow:   YellowSteps,
	}
}

// Validate 检查配时参数是否合法
func (t Timing) Validate() error {
	if t.Yellow == 0 {
		return fmt.Errorf("yellow steps must be positive")
	}
	if t.MinGreen == 0 {
		return fmt.Errorf("min green steps must be positive")
	}
	if t.MinGreen > t.MaxGreen {
		return fmt.Errorf("min green steps %d > max green steps %d", t.MinGreen, t.MaxGreen)
	}
	return nil
}
