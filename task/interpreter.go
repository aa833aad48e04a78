package task

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
)

// Interpreter 行协议解释器
// 功能：
//   - addVehicle <id> <startRoad> <endRoad>：车辆进入，无输出
//   - step：执行一步，输出空格分隔的离开车辆ID并换行，立即刷新
//
// 说明：格式错误或未知的行直接忽略；非法道路名解析为RoadNone，加入失败但不报错
type Interpreter struct {
	inter *junction.Intersection
	w     *bufio.Writer
}

// NewInterpreter 创建解释器
// 参数：j-解释器独占的路口实例，w-输出
func NewInterpreter(j *junction.Intersection, w io.Writer) *Interpreter {
	return &Interpreter{inter: j, w: bufio.NewWriter(w)}
}

// Exec 执行一行命令
// 返回：只在写出失败时返回错误
func (it *Interpreter) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "addVehicle":
		if len(fields) < 4 {
			return nil
		}
		it.inter.AddVehicle(entity.ParseRoad(fields[2]), entity.ParseRoad(fields[3]), fields[1])
	case "step":
		dep := it.inter.Step()
		for i := 0; i < dep.Len(); i++ {
			if i > 0 {
				it.w.WriteByte(' ')
			}
			it.w.WriteString(dep.At(i).ID)
		}
		it.w.WriteByte('\n')
		return errors.Wrap(it.w.Flush(), "flush step output")
	}
	return nil
}

// Serve 逐行读取并执行，直到输入结束
func (it *Interpreter) Serve(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := it.Exec(scanner.Text()); err != nil {
			return err
		}
	}
	return errors.Wrap(scanner.Err(), "read commands")
}
