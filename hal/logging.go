package hal

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// Logging 记录信号灯变化的包装
// 功能：传感器读取直接转发；信号灯只在状态变化时写日志，重复输出同一状态不产生日志
type Logging struct {
	inner entity.IHal

	last  [entity.RoadCount]entity.LightState
	known [entity.RoadCount]bool
}

// NewLogging 包装一个HAL
func NewLogging(inner entity.IHal) *Logging {
	return &Logging{inner: inner}
}

// SenseLane 实现entity.IHal
func (h *Logging) SenseLane(road entity.RoadDir, lane entity.Lane) bool {
	return h.inner.SenseLane(road, lane)
}

// SetLight 实现entity.IHal
func (h *Logging) SetLight(road entity.RoadDir, state entity.LightState) {
	if road.Valid() {
		if !h.known[road] || h.last[road] != state {
			log.Infof("light %v: %v", road, state)
		}
		h.last[road] = state
		h.known[road] = true
	}
	h.inner.SetLight(road, state)
}

// Advance 转发给被包装的HAL（如果支持）
func (h *Logging) Advance() {
	if a, ok := h.inner.(interface{ Advance() }); ok {
		a.Advance()
	}
}

var _ entity.IHal = (*Logging)(nil)
