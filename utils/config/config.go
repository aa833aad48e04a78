package config

import (
	"encoding/base64"
	"os"

	"github.com/pkg/errors"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction/trafficlight"
	"gopkg.in/yaml.v2"
)

// Default 默认配置
// 说明：未指定配置文件时使用（repl、tcp、gen模式）
func Default() Config {
	return Config{
		Control: Control{
			Step:       ControlStep{Start: 0, Total: 0, Interval: 1},
			Controller: ControllerAdaptive,
		},
		Sensor: Sensor{
			Seed:               1,
			ArrivalProbability: 0.1,
			HoldSteps:          1,
		},
	}
}

// Parse 解析YAML配置
// 说明：使用UnmarshalStrict，未知字段视为错误
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "config file load err")
	}
	return c, nil
}

// Load 读取配置
// 参数：path-配置文件路径，data-Base64编码的配置内容（path为空时使用）
// 返回：配置；两者都为空时返回默认配置
func Load(path, data string) (Config, error) {
	var file []byte
	var err error
	switch {
	case path != "":
		if file, err = os.ReadFile(path); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
	case data != "":
		if file, err = base64.StdEncoding.DecodeString(data); err != nil {
			return Config{}, errors.Wrap(err, "decode config data")
		}
	default:
		return Default(), nil
	}
	return Parse(file)
}

// RuntimeConfig 运行时配置
// 功能：由YAML配置派生出已校验的配时参数与相位控制器
type RuntimeConfig struct {
	All    Config        // 全部配置
	C      Control       // 全局控制配置
	Timing entity.Timing // 已校验的配时参数
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值并校验配时、步长与传感器参数
// 返回：运行时配置；参数不合法时返回错误
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{
		All:    config,
		C:      config.Control,
		Timing: entity.DefaultTiming(),
	}
	if t := config.Control.Timing; t != nil {
		rc.Timing = entity.Timing{MinGreen: t.MinGreen, MaxGreen: t.MaxGreen, Yellow: t.Yellow}
	}
	if err := rc.Timing.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid control.timing")
	}
	if rc.C.Step.Interval < 0 {
		return nil, errors.Errorf("control.step.interval must be non-negative, got %v", rc.C.Step.Interval)
	}
	if rc.C.Step.Start < 0 || rc.C.Step.Total < 0 {
		return nil, errors.Errorf("control.step.start and control.step.total must be non-negative")
	}
	switch rc.C.Controller {
	case "":
		rc.C.Controller = ControllerAdaptive
	case ControllerAdaptive, ControllerFixed:
	default:
		return nil, errors.Errorf("unknown control.controller %q", rc.C.Controller)
	}
	if p := config.Sensor.ArrivalProbability; p < 0 || p > 1 {
		return nil, errors.Errorf("sensor.arrival_probability must be within [0, 1], got %v", p)
	}
	return rc, nil
}

// NewController 按配置创建相位控制器
// 说明：fixed模式未指定时长时使用MaxGreen
func (rc *RuntimeConfig) NewController() (junction.IController, error) {
	if rc.C.Controller != ControllerFixed {
		return trafficlight.Adaptive{}, nil
	}
	d := rc.C.FixedDuration
	if d == 0 {
		d = rc.Timing.MaxGreen
	}
	c, err := trafficlight.NewFixedCycle(nil, d)
	if err != nil {
		return nil, errors.Wrap(err, "create fixed controller")
	}
	return c, nil
}
