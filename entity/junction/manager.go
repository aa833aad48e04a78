package junction

import (
	"errors"
	"sync"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/road"
)

var (
	ErrInvalidRoad = errors.New("invalid road")
	ErrUTurn       = errors.New("u-turns are not allowed")
	ErrLaneFull    = errors.New("lane is full")
)

// Manager 路口管理器
// 功能：为一个Intersection提供并发安全的访问入口（RPC等多协程调用方），并记录日志
// 说明：Intersection本身假定单写者，串行化由Manager的互斥锁完成
type Manager struct {
	mu sync.Mutex

	inter    *Intersection
	departed uint64 // 累计离开车辆数
}

// NewManager 创建路口管理器实例
// 参数：timing-配时参数，controller-相位控制器（nil表示自适应控制器）
// 返回：新创建的路口管理器实例
func NewManager(timing entity.Timing, controller IController) *Manager {
	return &Manager{
		inter: New(timing, controller),
	}
}

// AddVehicle 车辆进入路口
// 功能：在核心布尔结果的基础上区分拒绝原因
// 返回：非法道路返回ErrInvalidRoad，掉头返回ErrUTurn，车道已满返回ErrLaneFull
func (m *Manager) AddVehicle(start, end entity.RoadDir, id string) error {
	if !start.Valid() || !end.Valid() {
		return ErrInvalidRoad
	}
	if start == end {
		return ErrUTurn
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inter.AddVehicle(start, end, id) {
		l, _ := road.LaneForMovement(road.MovementType(start, end))
		log.Debugf("reject vehicle %s: %v lane of %v is full", id, l, start)
		return ErrLaneFull
	}
	log.Debugf("step %d: vehicle %s enters %v -> %v", m.inter.StepCount(), id, start, end)
	return nil
}

// Step 执行一步
// 返回：离开车辆ID列表、执行后的步数
func (m *Manager) Step() ([]string, uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dep := m.inter.Step()
	m.departed += uint64(dep.Len())
	log.Debugf("step %d: phase %v, departed [%s]", m.inter.StepCount(), m.inter.CurrentPhase(), dep.String())
	return dep.IDs(), m.inter.StepCount()
}

// Drive 在同一临界区内完成车辆进入、执行一步与状态输出
// 功能：供驱动循环使用，保证与RPC调用互斥
// 参数：admit-执行一步前调用（加入车辆），publish-执行一步后调用（输出信号灯等），均可为nil
// 返回：离开车辆ID列表、执行后的步数
func (m *Manager) Drive(admit, publish func(j *Intersection)) ([]string, uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if admit != nil {
		admit(m.inter)
	}
	dep := m.inter.Step()
	m.departed += uint64(dep.Len())
	if publish != nil {
		publish(m.inter)
	}
	return dep.IDs(), m.inter.StepCount()
}

// State 当前状态快照
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inter.Snapshot()
}

// Departed 累计离开车辆数
func (m *Manager) Departed() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.departed
}

// Reset 重置为初始状态
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inter.Init()
	m.departed = 0
	log.Infof("intersection reset")
}
