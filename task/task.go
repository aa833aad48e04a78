package task

import (
	"context"
	"flag"
	"net/http"
	"strconv"
	"time"

	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/input"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// advancer 需要按步推进内部状态的HAL（如模拟传感器）
type advancer interface {
	Advance()
}

// Context 驱动循环上下文
// 功能：持有时钟、路口管理器与HAL，按固定间隔执行：读取传感器 → 上升沿加入车辆 → 执行一步 → 输出信号灯
// 说明：路口实例由Context显式持有，不使用全局变量；RPC访问通过Manager互斥
type Context struct {
	// 时钟
	clock        *clock.Clock
	clockService *clock.Service

	// 路口管理器
	manager *junction.Manager
	// 传感器与信号灯输出
	hal entity.IHal

	// 上一步的传感器读数，用于上升沿检测
	prevSense [entity.RoadCount][entity.LanesPerRoad]bool
	// 传感器车辆计数，车辆ID为v<计数>
	vehicleCounter uint64

	// 运行时配置
	runtimeConfig *config.RuntimeConfig

	// 逐步记录的离开车辆（record为true时）
	record   bool
	statuses []input.StepStatus
}

// NewContext 创建驱动循环上下文
// 参数：rc-运行时配置，hal-传感器与信号灯输出
// 返回：上下文；相位控制器创建失败时返回错误
func NewContext(rc *config.RuntimeConfig, hal entity.IHal) (*Context, error) {
	controller, err := rc.NewController()
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		clock:         clock.New(rc.C.Step),
		clockService:  &clock.Service{},
		manager:       junction.NewManager(rc.Timing, controller),
		hal:           hal,
		runtimeConfig: rc,
	}
	ctx.clockService.Publish(ctx.clock)
	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Manager() *junction.Manager {
	return ctx.manager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Register 注册路口与时钟RPC服务
func (ctx *Context) Register(mux *http.ServeMux) {
	ctx.manager.Register(mux)
	ctx.clockService.Register(mux)
}

// Record 开启逐步记录离开车辆
func (ctx *Context) Record() {
	ctx.record = true
}

// Output 已记录的逐步输出
func (ctx *Context) Output() *input.Output {
	return &input.Output{StepStatuses: ctx.statuses}
}

// Tick 执行一个驱动步
// 返回：本步离开车辆ID
// 算法说明：
// 1. 模拟传感器推进一步（如果HAL支持）
// 2. 读取12个车道传感器，只在低→高的上升沿加入一辆车（ID为v<计数>），持续高电平不重复计数
// 3. 路口执行一步
// 4. 把4条道路的信号灯状态输出到HAL
func (ctx *Context) Tick() []string {
	if a, ok := ctx.hal.(advancer); ok {
		a.Advance()
	}
	ids, step := ctx.manager.Drive(ctx.admit, ctx.publish)

	ctx.clock.Step()
	ctx.clockService.Publish(ctx.clock)
	if ctx.record {
		ctx.statuses = append(ctx.statuses, input.StepStatus{LeftVehicles: ids})
	}
	if *heartBeatInterval > 0 && step%uint32(*heartBeatInterval) == 0 {
		s := ctx.manager.State()
		log.Infof(
			"STEP: %d(%v) phase=%v waiting=%d departed=%d",
			step, ctx.clock, s.CurrentPhase, s.TotalWaiting, ctx.manager.Departed(),
		)
	}
	return ids
}

func (ctx *Context) admit(j *junction.Intersection) {
	for r := entity.RoadDir(0); r < entity.RoadCount; r++ {
		for l := entity.Lane(0); l < entity.LanesPerRoad; l++ {
			now := ctx.hal.SenseLane(r, l)
			if now && !ctx.prevSense[r][l] {
				ctx.vehicleCounter++
				id := "v" + strconv.FormatUint(ctx.vehicleCounter, 10)
				if !j.AddVehicleByLane(r, l, id) {
					log.Warnf("drop vehicle %s: %v lane of %v is full", id, l, r)
				}
			}
			ctx.prevSense[r][l] = now
		}
	}
}

func (ctx *Context) publish(j *junction.Intersection) {
	for r := entity.RoadDir(0); r < entity.RoadCount; r++ {
		ctx.hal.SetLight(r, j.LightState(r))
	}
}

// Run 按时钟间隔运行驱动循环，直到到达结束步或goctx被取消
// 说明：间隔为0时不等待，尽快执行
func (ctx *Context) Run(goctx context.Context) error {
	var tick <-chan time.Time
	if interval := ctx.clock.Interval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	log.Infof("engine start at step %d, interval %v", ctx.clock.InternalStep, ctx.clock.Interval())
	for !ctx.clock.Done() {
		if tick != nil {
			select {
			case <-goctx.Done():
				return goctx.Err()
			case <-tick:
			}
		} else if err := goctx.Err(); err != nil {
			return err
		}
		ctx.Tick()
	}
	log.Infof("engine complete after %d steps, %d vehicles departed", ctx.clock.Elapsed(), ctx.manager.Departed())
	return nil
}
