package junction

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	IntersectionServiceName = "city.traffic.v1.IntersectionService"

	AddVehicleProcedure = "/" + IntersectionServiceName + "/AddVehicle"
	StepProcedure       = "/" + IntersectionServiceName + "/Step"
	GetStateProcedure   = "/" + IntersectionServiceName + "/GetState"
	ResetProcedure      = "/" + IntersectionServiceName + "/Reset"
)

// Register 将路口服务注册到HTTP路由
// 功能：注册AddVehicle/Step/GetState/Reset四个Connect处理器
// 参数：mux-HTTP路由，opts-处理器选项
// 说明：消息使用structpb.Struct与emptypb.Empty，支持Connect、gRPC与gRPC-Web协议
func (m *Manager) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(AddVehicleProcedure, connect.NewUnaryHandler(AddVehicleProcedure, m.rpcAddVehicle, opts...))
	mux.Handle(StepProcedure, connect.NewUnaryHandler(StepProcedure, m.rpcStep, opts...))
	mux.Handle(GetStateProcedure, connect.NewUnaryHandler(GetStateProcedure, m.rpcGetState, opts...))
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, m.rpcReset, opts...))
}

// roadFromValue 解析道路字段，支持名称（"north"）与编号（0-3）两种形式
func roadFromValue(v *structpb.Value) entity.RoadDir {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return entity.ParseRoad(k.StringValue)
	case *structpb.Value_NumberValue:
		if k.NumberValue < 0 || k.NumberValue >= float64(entity.RoadNone) || k.NumberValue != float64(int(k.NumberValue)) {
			return entity.RoadNone
		}
		return entity.RoadDir(int(k.NumberValue))
	default:
		return entity.RoadNone
	}
}

// rpcAddVehicle RPC接口：车辆进入路口
// 功能：请求{vehicleId, startRoad, endRoad}，vehicleId为空时自动生成
// 返回：{ok, vehicleId}；非法道路、掉头、车道已满时返回InvalidArgument
func (m *Manager) rpcAddVehicle(
	ctx context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	fields := in.Msg.GetFields()
	id := fields["vehicleId"].GetStringValue()
	if id == "" {
		id = "car-" + uuid.NewString()[:8]
	}
	id = entity.BoundedID(id)
	start := roadFromValue(fields["startRoad"])
	end := roadFromValue(fields["endRoad"])
	if err := m.AddVehicle(start, end, id); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	res, err := structpb.NewStruct(map[string]any{
		"ok":        true,
		"vehicleId": id,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(res), nil
}

// rpcStep RPC接口：执行一步
// 返回：{leftVehicles, stepNumber}
func (m *Manager) rpcStep(
	ctx context.Context, in *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	ids, step := m.Step()
	res, err := structpb.NewStruct(map[string]any{
		"leftVehicles": lo.ToAnySlice(ids),
		"stepNumber":   int64(step),
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(res), nil
}

// StateToMap 将状态快照转换为通用map，供RPC与日志输出使用
func StateToMap(s State) map[string]any {
	roads := lo.Map(s.Roads[:], func(r RoadState, _ int) any {
		lanes := make(map[string]any, entity.LanesPerRoad)
		for l, n := range r.Lanes {
			lanes[entity.Lane(l).String()] = map[string]any{"queueLength": n}
		}
		return map[string]any{
			"direction": r.Direction.String(),
			"light": map[string]any{
				"state":          r.Light.String(),
				"stepsRemaining": int(r.LightStepsRemaining),
			},
			"lanes": lanes,
		}
	})
	scores := make(map[string]any, entity.PhaseCount)
	for p, score := range s.Scores {
		scores[entity.Phase(p).String()] = float64(score)
	}
	return map[string]any{
		"phaseScores":         scores,
		"stepCount":           int64(s.StepCount),
		"currentPhase":        s.CurrentPhase.String(),
		"phaseStepsRemaining": int(s.PhaseStepsRemaining),
		"totalWaiting":        s.TotalWaiting,
		"roads":               roads,
	}
}

// rpcGetState RPC接口：获取路口状态
func (m *Manager) rpcGetState(
	ctx context.Context, in *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	res, err := structpb.NewStruct(StateToMap(m.State()))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(res), nil
}

// rpcReset RPC接口：重置路口
func (m *Manager) rpcReset(
	ctx context.Context, in *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	m.Reset()
	res, err := structpb.NewStruct(map[string]any{"ok": true})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(res), nil
}
