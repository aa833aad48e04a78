package entity

// IHal 硬件抽象层
// 功能：驱动循环对运行环境的全部需求，每步对每条道路调用一次
// 说明：不同目标平台只需替换该接口的实现
type IHal interface {
	// SenseLane 读取车道检测器：当前是否有车辆停在该车道
	// 驱动循环自行做上升沿检测，连续多步为true不会重复计数
	SenseLane(road RoadDir, lane Lane) bool
	// SetLight 设置道路的物理信号灯
	// 要求幂等，且同一时刻只点亮一种状态
	SetLight(road RoadDir, state LightState)
}
