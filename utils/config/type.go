package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 说明：File非空时优先从文件读取，否则从MongoDB的{db}.{col}读取
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// Empty 未配置任何数据来源
func (p InputPath) Empty() bool {
	return p.File == "" && (p.DB == "" || p.Col == "")
}

// Input 输入数据配置
type Input struct {
	URI      string    `yaml:"uri,omitempty"`      // MongoDB连接字符串
	Commands InputPath `yaml:"commands,omitempty"` // 命令序列（addVehicle/step）
}

// Output 输出配置
type Output struct {
	File string `yaml:"file,omitempty"` // 每步离开车辆的JSON输出路径，为空则写到标准输出
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数，0表示不限
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒），驱动循环按此间隔推进
}

// ControlTiming 信号配时（步数）
type ControlTiming struct {
	MinGreen uint8 `yaml:"min_green"`
	MaxGreen uint8 `yaml:"max_green"`
	Yellow   uint8 `yaml:"yellow"`
}

const (
	ControllerAdaptive = "adaptive" // 自适应相位控制
	ControllerFixed    = "fixed"    // 固定相位轮转
)

// Control 模拟器控制配置
type Control struct {
	Step          ControlStep    `yaml:"step"`
	Timing        *ControlTiming `yaml:"timing,omitempty"`         // 为空则使用默认配时
	Controller    string         `yaml:"controller,omitempty"`     // adaptive（默认）或fixed
	FixedDuration uint8          `yaml:"fixed_duration,omitempty"` // fixed模式下每个相位的绿灯步数
}

// Sensor 模拟传感器配置（embedded模式）
type Sensor struct {
	Seed               uint64  `yaml:"seed"`                // 随机数种子
	ArrivalProbability float64 `yaml:"arrival_probability"` // 每步每条车道有车到达的概率
	HoldSteps          uint8   `yaml:"hold_steps"`          // 到达后传感器保持高电平的步数
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input,omitempty"`  // 输入
	Output  Output  `yaml:"output,omitempty"` // 输出
	Control Control `yaml:"control"`          // 模拟过程控制
	Sensor  Sensor  `yaml:"sensor,omitempty"` // 模拟传感器
}
