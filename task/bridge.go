package task

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/input"
)

// RunScenario 批量执行场景
// 功能：按顺序执行addVehicle/step命令，每个step产生一条StepStatus；未知命令忽略
// 参数：j-路口实例（调用方负责初始化），s-场景
// 返回：逐步输出，StepStatuses条数等于step命令数
func RunScenario(j *junction.Intersection, s *input.Scenario) *input.Output {
	out := &input.Output{StepStatuses: make([]input.StepStatus, 0, s.StepCount())}
	rejected := 0
	for _, c := range s.Commands {
		switch c.Type {
		case input.CommandAddVehicle:
			if !j.AddVehicle(entity.ParseRoad(c.StartRoad), entity.ParseRoad(c.EndRoad), c.VehicleID) {
				rejected++
			}
		case input.CommandStep:
			dep := j.Step()
			out.StepStatuses = append(out.StepStatuses, input.StepStatus{LeftVehicles: dep.IDs()})
		}
	}
	if rejected > 0 {
		log.Warnf("scenario %s: %d vehicles rejected (invalid road, u-turn or full lane)", s.Name, rejected)
	}
	log.Infof("scenario %s: %d steps, %d vehicles still waiting", s.Name, len(out.StepStatuses), j.TotalWaiting())
	return out
}
