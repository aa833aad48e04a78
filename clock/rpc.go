package clock

import (
	"context"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ClockServiceName = "city.clock.v1.ClockService"
	NowProcedure     = "/" + ClockServiceName + "/Now"
)

// Service 时钟RPC服务
// 说明：时钟由驱动循环单协程推进，RPC通过Publish发布的快照读取，避免数据竞争
type Service struct {
	mu   sync.RWMutex
	t    float64
	step int32
}

// Publish 发布当前时钟状态
func (s *Service) Publish(c *Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = c.T
	s.step = c.InternalStep
}

// Register 将ClockService注册到HTTP路由
func (s *Service) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(NowProcedure, connect.NewUnaryHandler(NowProcedure, s.Now, opts...))
}

// Now 获取当前仿真时间
// 返回：{t, step}
func (s *Service) Now(ctx context.Context, in *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	s.mu.RLock()
	t, step := s.t, s.step
	s.mu.RUnlock()
	res, err := structpb.NewStruct(map[string]any{
		"t":    t,
		"step": int64(step),
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(res), nil
}
