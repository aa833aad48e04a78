package input

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CommandAddVehicle = "addVehicle"
	CommandStep       = "step"
)

// Command 场景中的单条命令
// 说明：MongoDB中的文档额外带有seq字段，按seq升序读取
type Command struct {
	Type      string `json:"type" bson:"type"`
	VehicleID string `json:"vehicleId,omitempty" bson:"vehicleId,omitempty"`
	StartRoad string `json:"startRoad,omitempty" bson:"startRoad,omitempty"`
	EndRoad   string `json:"endRoad,omitempty" bson:"endRoad,omitempty"`
	Seq       int64  `json:"-" bson:"seq"`
}

// AddVehicle 构造addVehicle命令
func AddVehicle(id, start, end string) Command {
	return Command{Type: CommandAddVehicle, VehicleID: id, StartRoad: start, EndRoad: end}
}

// Step 构造step命令
func Step() Command {
	return Command{Type: CommandStep}
}

// Scenario 命令序列
type Scenario struct {
	Name        string    `json:"_scenario,omitempty"`
	Description string    `json:"_description,omitempty"`
	Commands    []Command `json:"commands"`
}

// StepCount step命令数，即输出中应有的StepStatus条数
func (s *Scenario) StepCount() int {
	return lo.CountBy(s.Commands, func(c Command) bool {
		return c.Type == CommandStep
	})
}

// VehicleCount addVehicle命令数
func (s *Scenario) VehicleCount() int {
	return lo.CountBy(s.Commands, func(c Command) bool {
		return c.Type == CommandAddVehicle
	})
}

// StepStatus 单步输出
type StepStatus struct {
	LeftVehicles []string `json:"leftVehicles"`
}

// Output 批量运行的输出
type Output struct {
	StepStatuses []StepStatus `json:"stepStatuses"`
}

// ReadScenario 从JSON读取场景
func ReadScenario(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	return &s, nil
}

// LoadScenarioFile 从JSON文件读取场景
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open scenario %s", path)
	}
	defer f.Close()
	return ReadScenario(f)
}

// LoadScenarioMongo 从MongoDB集合读取场景
// 功能：读取{db}.{col}中的全部命令文档，按seq升序排列
func LoadScenarioMongo(ctx context.Context, uri string, path config.InputPath) (*Scenario, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}
	defer client.Disconnect(context.Background())

	coll := client.Database(path.GetDb()).Collection(path.GetColl())
	log.Infof("start fetching from %s.%s", path.GetDb(), path.GetColl())
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, errors.Wrapf(err, "find in %s.%s", path.GetDb(), path.GetColl())
	}
	var commands []Command
	if err := cursor.All(ctx, &commands); err != nil {
		return nil, errors.Wrapf(err, "decode %s.%s", path.GetDb(), path.GetColl())
	}
	log.Infof("finish fetching %d commands from %s.%s", len(commands), path.GetDb(), path.GetColl())
	return &Scenario{Name: path.GetDb() + "." + path.GetColl(), Commands: commands}, nil
}

// LoadScenario 按配置读取场景
// 说明：file优先，其次MongoDB；override非空时忽略配置直接读取该文件
func LoadScenario(ctx context.Context, in config.Input, override string) (*Scenario, error) {
	switch {
	case override != "":
		return LoadScenarioFile(override)
	case in.Commands.File != "":
		return LoadScenarioFile(in.Commands.File)
	case !in.Commands.Empty():
		if in.URI == "" {
			return nil, errors.New("input.uri is required to load commands from mongodb")
		}
		return LoadScenarioMongo(ctx, in.URI, in.Commands)
	default:
		return nil, errors.New("no scenario input specified")
	}
}

// WriteJSON 以两格缩进写出JSON并以换行结尾
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encode json")
}

// WriteJSONFile 写出JSON文件，path为空时写到标准输出
func WriteJSONFile(path string, v any) error {
	if path == "" {
		return WriteJSON(os.Stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
