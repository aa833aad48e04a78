// 自适应相位控制器
// 不按固定顺序切换相位，而是在每个相位结束后计算所有相位的得分，选取得分最高的相位
package trafficlight

import "github.com/tsinghua-fib-lab/intersection-sim/entity"

// Adaptive 自适应相位控制器
// 功能：得分 = Σ 车道排队数 * (1 + 队首车辆等待步数)
// 说明：等待项为乘法，车辆少但队首等待很久的车道可以压过车辆多但刚到达的车道，避免饥饿
type Adaptive struct{}

// NextPhase 实现junction.IController
func (Adaptive) NextPhase(j entity.IIntersection) entity.PhaseDecision {
	return NextPhase(j)
}

// laneScore 单条车道的得分，空车道为0
func laneScore(r entity.IRoad, l entity.Lane, step uint32) uint64 {
	count := r.LaneCount(l)
	if count == 0 {
		return 0
	}
	wait := uint64(0)
	if front, ok := r.PeekLane(l); ok && step > front.EnqueueStep {
		wait = uint64(step - front.EnqueueStep)
	}
	return uint64(count) * (1 + wait)
}

// PhaseScore 计算相位得分
// 功能：累加相位放行的所有(道路, 车道)的得分；主相位计算直行+右转，箭头相位只计算左转
// 参数：j-路口只读视图，p-候选相位
// 返回：相位得分
func PhaseScore(j entity.IIntersection, p entity.Phase) uint64 {
	info := p.Info()
	step := j.StepCount()
	score := uint64(0)
	for i := 0; i < info.RoadCount; i++ {
		r := j.Road(info.Roads[i])
		for _, l := range info.ServedLanes() {
			score += laneScore(r, l, step)
		}
	}
	return score
}

// Scores 计算全部相位的得分，用于观测与调试
func Scores(j entity.IIntersection) [entity.PhaseCount]uint64 {
	var scores [entity.PhaseCount]uint64
	for p := entity.Phase(0); p < entity.PhaseCount; p++ {
		scores[p] = PhaseScore(j, p)
	}
	return scores
}

// PhaseVehicleCount 相位放行车道内的车辆总数（不加权），用于计算绿灯时长
func PhaseVehicleCount(j entity.IIntersection, p entity.Phase) int {
	info := p.Info()
	total := 0
	for i := 0; i < info.RoadCount; i++ {
		r := j.Road(info.Roads[i])
		for _, l := range info.ServedLanes() {
			total += int(r.LaneCount(l))
		}
	}
	return total
}

// ClampDuration 将车辆数限制到[MinGreen, MaxGreen]
func ClampDuration(count int, t entity.Timing) uint8 {
	switch {
	case count < int(t.MinGreen):
		return t.MinGreen
	case count > int(t.MaxGreen):
		return t.MaxGreen
	default:
		return uint8(count)
	}
}

// NextPhase 选择下一相位
// 功能：纯函数，不修改路口状态，可随时调用
// 算法说明：
// 1. 以当前相位的得分作为初始最优
// 2. 依次计算6个相位的得分，只有严格大于当前最优时才替换（平局时当前相位胜出，抑制来回切换）
// 3. 路口全空时保持当前相位
// 4. 绿灯时长 = 所选相位放行车道内的车辆数，限制在[MinGreen, MaxGreen]
func NextPhase(j entity.IIntersection) entity.PhaseDecision {
	best := j.CurrentPhase()
	bestScore := PhaseScore(j, best)
	for p := entity.Phase(0); p < entity.PhaseCount; p++ {
		if score := PhaseScore(j, p); score > bestScore {
			best, bestScore = p, score
		}
	}
	return entity.PhaseDecision{
		Phase:    best,
		Duration: ClampDuration(PhaseVehicleCount(j, best), j.Timing()),
	}
}
