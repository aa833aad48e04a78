package clock

import (
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// Clock 仿真时钟
// 功能：记录驱动循环的步数与对应的仿真时间
// 说明：路口核心只使用整数步数，时钟只在外层把步数映射到时间，用于定时驱动与日志
type Clock struct {
	DT         float64 // 每步的时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)；END<=START表示不限

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Step 推进一步
func (c *Clock) Step() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Done 是否已到达结束步
func (c *Clock) Done() bool {
	return c.END_STEP > c.START_STEP && c.InternalStep >= c.END_STEP
}

// Elapsed 已执行的步数
func (c *Clock) Elapsed() int32 {
	return c.InternalStep - c.START_STEP
}

// Interval 每步的实际时间间隔，用于驱动循环的定时器
// 说明：DT<=0时返回0，表示不等待、尽快推进
func (c *Clock) Interval() time.Duration {
	if c.DT <= 0 {
		return 0
	}
	return time.Duration(c.DT * float64(time.Second))
}

// String 获取时钟的字符串表示（HH:MM:SS）
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
