// Package hal 传感器与信号灯输出的实现
// 驱动循环只依赖entity.IHal，本包提供模拟实现与日志包装
package hal

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

// Simulated 模拟传感器
// 功能：每条车道在每步以固定概率有车到达，到达后传感器保持高电平若干步
// 说明：
//   - 高电平结束后至少保持一步低电平，保证每次到达都能被上升沿检测到
//   - 记录最近一次输出的信号灯状态，供测试与状态展示读取
type Simulated struct {
	engine      *randengine.Engine
	probability float64
	hold        uint8

	high     [entity.RoadCount][entity.LanesPerRoad]uint8 // 剩余高电平步数
	lights   [entity.RoadCount]entity.LightState
	arrivals uint64
}

// NewSimulated 创建模拟传感器
// 参数：seed-随机数种子，probability-每步每车道到达概率，hold-高电平保持步数（0视为1）
func NewSimulated(seed uint64, probability float64, hold uint8) *Simulated {
	if hold == 0 {
		hold = 1
	}
	return &Simulated{
		engine:      randengine.New(seed),
		probability: probability,
		hold:        hold,
	}
}

// Advance 推进一步传感器状态
func (s *Simulated) Advance() {
	for r := range s.high {
		for l := range s.high[r] {
			if s.high[r][l] > 0 {
				s.high[r][l]--
			} else if s.engine.PTrue(s.probability) {
				s.high[r][l] = s.hold
				s.arrivals++
			}
		}
	}
}

// Trigger 强制指定车道的传感器进入高电平（人工注入车辆）
// 返回：传感器已处于高电平或编号非法时返回false
func (s *Simulated) Trigger(road entity.RoadDir, lane entity.Lane) bool {
	if !road.Valid() || !lane.Valid() || s.high[road][lane] > 0 {
		return false
	}
	s.high[road][lane] = s.hold
	s.arrivals++
	return true
}

// SenseLane 实现entity.IHal
func (s *Simulated) SenseLane(road entity.RoadDir, lane entity.Lane) bool {
	if !road.Valid() || !lane.Valid() {
		return false
	}
	return s.high[road][lane] > 0
}

// SetLight 实现entity.IHal
func (s *Simulated) SetLight(road entity.RoadDir, state entity.LightState) {
	if road.Valid() {
		s.lights[road] = state
	}
}

// Light 最近一次输出的信号灯状态
func (s *Simulated) Light(road entity.RoadDir) entity.LightState {
	if !road.Valid() {
		return entity.LightRed
	}
	return s.lights[road]
}

// Arrivals 累计到达车辆数（上升沿数）
func (s *Simulated) Arrivals() uint64 {
	return s.arrivals
}

var _ entity.IHal = (*Simulated)(nil)
