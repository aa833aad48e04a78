package junction

import "github.com/tsinghua-fib-lab/intersection-sim/entity"

// 依赖倒置，表达路口对相位控制算法的接口需求

// IController 相位控制器接口
// 说明：实现必须是只读的，不得修改路口状态；每次当前相位结束时被调用一次
type IController interface {
	NextPhase(j entity.IIntersection) entity.PhaseDecision
}
