package task

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
)

// LineServer 通过TCP提供行协议
// 说明：每个连接拥有独立的路口实例，连接之间互不影响
type LineServer struct {
	timing     entity.Timing
	controller junction.IController

	wg sync.WaitGroup
}

// NewLineServer 创建行协议服务器
// 参数：timing-配时参数，controller-相位控制器（nil表示自适应）
func NewLineServer(timing entity.Timing, controller junction.IController) *LineServer {
	return &LineServer{timing: timing, controller: controller}
}

// Serve 接受连接直到goctx被取消或监听出错
// 说明：goctx取消后关闭监听与所有连接，等待会话结束后返回
func (s *LineServer) Serve(goctx context.Context, l net.Listener) error {
	goctx, cancel := context.WithCancel(goctx)
	defer cancel()
	go func() {
		<-goctx.Done()
		l.Close()
	}()
	log.Infof("line protocol listening on %v", l.Addr())
	for {
		conn, err := l.Accept()
		if err != nil {
			// 关闭所有会话后再等待
			cancel()
			s.wg.Wait()
			if goctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(goctx, conn)
		}()
	}
}

func (s *LineServer) handle(goctx context.Context, conn net.Conn) {
	session := uuid.NewString()
	log.Infof("session %s: connected from %v", session, conn.RemoteAddr())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-goctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	it := NewInterpreter(junction.New(s.timing, s.controller), conn)
	if err := it.Serve(conn); err != nil && goctx.Err() == nil {
		log.Warnf("session %s: %v", session, err)
	}
	conn.Close()
	log.Infof("session %s: closed", session)
}
