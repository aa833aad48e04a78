package trafficlight

import "github.com/tsinghua-fib-lab/intersection-sim/entity"

// Light 单条道路的信号灯状态机
// 功能：RED -> GREEN|GREEN_ARROW -> YELLOW -> RED，记录当前状态的剩余步数
// 说明：RED没有倒计时（剩余步数为0并保持为0，直到被重新激活）
type Light struct {
	state          entity.LightState
	stepsRemaining uint8
	yellowSteps    uint8
}

// Init 初始化为红灯
// 参数：yellowSteps-黄灯持续步数，为0时按1处理
func (l *Light) Init(yellowSteps uint8) {
	if yellowSteps == 0 {
		yellowSteps = 1
	}
	l.state = entity.LightRed
	l.stepsRemaining = 0
	l.yellowSteps = yellowSteps
}

// SetGreen 激活绿灯（直行+右转）
// 返回：信号灯已处于可通行状态时拒绝激活并返回false
func (l *Light) SetGreen(duration uint8) bool {
	return l.activate(entity.LightGreen, duration)
}

// SetGreenArrow 激活左转箭头绿灯
// 返回：信号灯已处于可通行状态时拒绝激活并返回false
func (l *Light) SetGreenArrow(duration uint8) bool {
	return l.activate(entity.LightGreenArrow, duration)
}

// activate 从RED或YELLOW进入绿灯状态
// 说明：同一相位连续被选中时，上一轮绿灯恰好在该步进入黄灯，允许直接恢复为绿灯
func (l *Light) activate(state entity.LightState, duration uint8) bool {
	if l.IsGreen() {
		return false
	}
	if duration == 0 {
		duration = 1
	}
	l.state = state
	l.stepsRemaining = duration
	return true
}

// Tick 推进一步
// 功能：RED不变；GREEN/GREEN_ARROW倒计时结束后进入YELLOW；YELLOW倒计时结束后进入RED
func (l *Light) Tick() {
	if l.state == entity.LightRed {
		return
	}
	if l.stepsRemaining > 0 {
		l.stepsRemaining--
	}
	if l.stepsRemaining > 0 {
		return
	}
	switch l.state {
	case entity.LightGreen, entity.LightGreenArrow:
		l.state = entity.LightYellow
		l.stepsRemaining = l.yellowSteps
		if l.stepsRemaining == 0 {
			l.stepsRemaining = 1
		}
	case entity.LightYellow:
		l.state = entity.LightRed
	}
}

// State 当前显示状态
func (l *Light) State() entity.LightState {
	return l.state
}

// StepsRemaining 当前状态剩余步数
func (l *Light) StepsRemaining() uint8 {
	return l.stepsRemaining
}

// IsGreen GREEN与GREEN_ARROW均视为可通行
func (l *Light) IsGreen() bool {
	return l.state == entity.LightGreen || l.state == entity.LightGreenArrow
}

func (l *Light) IsYellow() bool {
	return l.state == entity.LightYellow
}

func (l *Light) IsRed() bool {
	return l.state == entity.LightRed
}
