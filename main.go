package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/hal"
	"github.com/tsinghua-fib-lab/intersection-sim/task"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/input"
)

var (
	// 运行模式
	// repl：标准输入输出上的行协议
	// tcp：TCP上的行协议，每个连接一个独立路口
	// serve：Connect RPC服务 + 模拟传感器驱动循环
	// embedded：模拟传感器驱动循环
	// bridge：JSON场景 → JSON逐步输出
	// gen：生成随机场景
	mode = flag.String("mode", "repl", "run mode: repl tcp serve embedded bridge gen")
	// 监听地址（tcp、serve模式）
	listenAddr = flag.String("listen", ":51102", "listening address")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// bridge模式的场景文件，优先级高于配置文件中的input
	inputPath = flag.String("input", "", "scenario json path (bridge mode)")
	// 输出文件，为空则使用配置文件中的output.file，仍为空则写到标准输出
	outputPath = flag.String("output", "", "output json path (bridge, gen, embedded mode)")
	// gen模式参数
	genSteps   = flag.Int("steps", 300, "number of steps to generate (gen mode)")
	genSeed    = flag.Uint64("seed", 42, "random seed (gen mode)")
	genProfile = flag.String("profile", "chaos", "arrival profile (gen mode)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "intersection")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// 标准输出留给行协议与JSON输出
	logrus.SetOutput(os.Stderr)
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	c, err := config.Load(*configPath, *configData)
	if err != nil {
		log.Panicf("%v", err)
	}
	log.Debugf("%+v", c)
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("%v", err)
	}

	goctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output := *outputPath
	if output == "" {
		output = c.Output.File
	}

	switch *mode {
	case "repl":
		err = runRepl(rc)
	case "tcp":
		err = runTCP(goctx, rc)
	case "serve":
		err = runServe(goctx, rc)
	case "embedded":
		err = runEmbedded(goctx, rc, output)
	case "bridge":
		err = runBridge(goctx, rc, output)
	case "gen":
		err = runGen(output)
	default:
		log.Panicf("unknown mode %q", *mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Panicf("%s: %v", *mode, err)
	}
}

func runRepl(rc *config.RuntimeConfig) error {
	controller, err := rc.NewController()
	if err != nil {
		return err
	}
	it := task.NewInterpreter(junction.New(rc.Timing, controller), os.Stdout)
	return it.Serve(os.Stdin)
}

func runTCP(goctx context.Context, rc *config.RuntimeConfig) error {
	controller, err := rc.NewController()
	if err != nil {
		return err
	}
	l, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		return err
	}
	return task.NewLineServer(rc.Timing, controller).Serve(goctx, l)
}

func newEmbedded(rc *config.RuntimeConfig) (*task.Context, *hal.Simulated, error) {
	s := rc.All.Sensor
	sensors := hal.NewSimulated(s.Seed, s.ArrivalProbability, s.HoldSteps)
	t, err := task.NewContext(rc, hal.NewLogging(sensors))
	return t, sensors, err
}

func runServe(goctx context.Context, rc *config.RuntimeConfig) error {
	t, _, err := newEmbedded(rc)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	t.Register(mux)
	server := &http.Server{
		Addr:              *listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-goctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdown)
	}()
	go func() {
		if err := t.Run(goctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("engine: %v", err)
		}
	}()
	log.Infof("rpc listening on %s", *listenAddr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runEmbedded(goctx context.Context, rc *config.RuntimeConfig, output string) error {
	t, sensors, err := newEmbedded(rc)
	if err != nil {
		return err
	}
	if output != "" {
		t.Record()
	}
	runErr := t.Run(goctx)
	log.Infof("sensed %d arrivals, %d departed", sensors.Arrivals(), t.Manager().Departed())
	if output != "" {
		if err := input.WriteJSONFile(output, t.Output()); err != nil {
			return err
		}
	}
	return runErr
}

func runBridge(goctx context.Context, rc *config.RuntimeConfig, output string) error {
	s, err := input.LoadScenario(goctx, rc.All.Input, *inputPath)
	if err != nil {
		return err
	}
	controller, err := rc.NewController()
	if err != nil {
		return err
	}
	out := task.RunScenario(junction.New(rc.Timing, controller), s)
	return input.WriteJSONFile(output, out)
}

func runGen(output string) error {
	s, err := input.Generate(input.GenConfig{
		Name:  *genProfile,
		Steps: *genSteps,
		Seed:  *genSeed,
	})
	if err != nil {
		return err
	}
	return input.WriteJSONFile(output, s)
}
