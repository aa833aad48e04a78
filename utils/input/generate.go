package input

import (
	"fmt"
	"math"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

// Pool 车流类别
type Pool int

const (
	PoolNSStraight Pool = iota
	PoolEWStraight
	PoolNSLeft
	PoolEWLeft
	PoolNSRight
	PoolEWRight
	PoolCount
)

// poolMoves 每个类别包含的(起点, 终点)组合
var poolMoves = [PoolCount][][2]string{
	PoolNSStraight: {{"north", "south"}, {"south", "north"}},
	PoolEWStraight: {{"east", "west"}, {"west", "east"}},
	PoolNSLeft:     {{"north", "east"}, {"south", "west"}},
	PoolEWLeft:     {{"east", "south"}, {"west", "north"}},
	PoolNSRight:    {{"north", "west"}, {"south", "east"}},
	PoolEWRight:    {{"east", "north"}, {"west", "south"}},
}

var poolTags = [PoolCount]string{"ns", "ew", "nl", "el", "nr", "er"}

// Rates 各类别每步的期望到达车辆数
type Rates [PoolCount]float64

// Profile 到达率随步数变化的曲线
type Profile func(step int) Rates

// Profiles 内置的到达率曲线
var Profiles = map[string]Profile{
	// 各方向平稳到达
	"uniform": func(int) Rates {
		return Rates{0.5, 0.5, 0.15, 0.15, 0.2, 0.2}
	},
	// 前半程南北向通勤为主，后半程东西向为主，左转车辆零星到达
	"rush": func(step int) Rates {
		if step%300 < 150 {
			return Rates{3, 1.0 / 8, 2.0 / 20, 1.0 / 35, 0, 0}
		}
		return Rates{1.0 / 6, 3, 1.0 / 30, 2.0 / 18, 1.0 / 50, 1.0 / 50}
	},
	// 总到达率按正弦波动，每类车流均分，并持续注入左转车辆
	"chaos": func(step int) Rates {
		total := math.Max(1, math.Round(3+3*math.Sin(float64(step)*math.Pi/40)))
		each := total / float64(PoolCount)
		return Rates{each, each, each + 0.1, each + 0.1, each, each}
	},
	// 直行车流持续饱和，左转车辆必须依靠等待时间获得放行
	"left-siege": func(int) Rates {
		return Rates{2, 2, 0.3, 0.3, 1.0 / 17, 1.0 / 17}
	},
}

// ProfileNames 内置曲线名称（排序后）
func ProfileNames() []string {
	names := lo.Keys(Profiles)
	slices.Sort(names)
	return names
}

// GenConfig 场景生成参数
type GenConfig struct {
	Name    string // 场景名，同时决定使用的内置曲线
	Steps   int    // 步数
	Seed    uint64 // 随机数种子
	Profile Profile
}

type arrival struct {
	pool  Pool
	start string
	end   string
}

// Generate 生成随机场景
// 功能：同一组参数（含种子）总是生成完全相同的命令序列
// 算法说明：
// 1. 对每一步、每个类别，按期望到达数取整数部分，小数部分以伯努利试验决定是否多到达1辆
// 2. 每辆车在所在步内取随机到达时刻，以到达时刻为优先级加入优先队列
// 3. 按到达时刻依次弹出，生成addVehicle命令；每步结束追加step命令
func Generate(cfg GenConfig) (*Scenario, error) {
	profile := cfg.Profile
	if profile == nil {
		var ok bool
		if profile, ok = Profiles[cfg.Name]; !ok {
			return nil, errors.Errorf("unknown profile %q, available: %v", cfg.Name, ProfileNames())
		}
	}
	if cfg.Steps <= 0 {
		return nil, errors.Errorf("steps must be positive, got %d", cfg.Steps)
	}

	e := randengine.New(cfg.Seed)
	q := container.NewPriorityQueue[arrival]()
	for step := 0; step < cfg.Steps; step++ {
		rates := profile(step)
		for p, rate := range rates {
			if rate <= 0 {
				continue
			}
			n := int(rate)
			if e.PTrue(rate - float64(n)) {
				n++
			}
			moves := poolMoves[p]
			for k := 0; k < n; k++ {
				m := moves[e.Intn(len(moves))]
				q.Push(arrival{pool: Pool(p), start: m[0], end: m[1]}, float64(step)+e.Float64())
			}
		}
	}
	q.Heapify()

	cmds := make([]Command, 0, q.Len()+cfg.Steps)
	counter := 0
	for step := 0; step < cfg.Steps; step++ {
		for q.Len() > 0 && q.FirstPriority() < float64(step+1) {
			a, _ := q.HeapPop()
			counter++
			cmds = append(cmds, AddVehicle(fmt.Sprintf("%s_%05d", poolTags[a.pool], counter), a.start, a.end))
		}
		cmds = append(cmds, Step())
	}
	s := &Scenario{
		Name:     cfg.Name,
		Commands: cmds,
	}
	s.Description = fmt.Sprintf("%d steps, %d vehicles, seed %d", s.StepCount(), s.VehicleCount(), cfg.Seed)
	log.Infof("generated scenario %s: %s", s.Name, s.Description)
	return s, nil
}
