package trafficlight

import (
	"fmt"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// DefaultCycle 固定配时的默认相位顺序
var DefaultCycle = []entity.Phase{
	entity.PhaseNS, entity.PhaseNArrow, entity.PhaseSArrow,
	entity.PhaseEW, entity.PhaseEArrow, entity.PhaseWArrow,
}

// FixedCycle 固定相位控制器
// 功能：按预设的相位顺序和固定时长轮转，不读取排队情况，用作自适应控制的对照
type FixedCycle struct {
	phases   []entity.Phase
	duration uint8
}

// NewFixedCycle 创建固定相位控制器
// 参数：phases-相位顺序（为空时使用DefaultCycle），duration-每个相位的绿灯步数
// 返回：控制器实例；相位编号非法或时长为0时返回错误
func NewFixedCycle(phases []entity.Phase, duration uint8) (*FixedCycle, error) {
	if len(phases) == 0 {
		phases = DefaultCycle
	}
	for _, p := range phases {
		if p >= entity.PhaseCount {
			return nil, fmt.Errorf("invalid phase %d in fixed cycle", p)
		}
	}
	if duration == 0 {
		return nil, fmt.Errorf("fixed cycle duration must be positive")
	}
	return &FixedCycle{
		phases:   append([]entity.Phase(nil), phases...),
		duration: duration,
	}, nil
}

// NextPhase 实现junction.IController
// 说明：第0步从序列第一个相位开始；当前相位不在序列中时同样回到第一个相位
func (c *FixedCycle) NextPhase(j entity.IIntersection) entity.PhaseDecision {
	next := c.phases[0]
	if j.StepCount() > 0 {
		for i, p := range c.phases {
			if p == j.CurrentPhase() {
				next = c.phases[(i+1)%len(c.phases)]
				break
			}
		}
	}
	return entity.PhaseDecision{Phase: next, Duration: c.duration}
}
