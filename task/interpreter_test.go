package task_test

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/task"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/input"
)

const canonical = `addVehicle A south north
addVehicle B north south
step
step
addVehicle C west south
addVehicle D west south
step
step
`

func TestInterpreterCanonical(t *testing.T) {
	var out strings.Builder
	it := task.NewInterpreter(junction.New(entity.DefaultTiming(), nil), &out)
	require.NoError(t, it.Serve(strings.NewReader(canonical)))
	assert.Equal(t, "B A\n\nC\nD\n", out.String())
}

func TestInterpreterIgnoresMalformed(t *testing.T) {
	var out strings.Builder
	j := junction.New(entity.DefaultTiming(), nil)
	it := task.NewInterpreter(j, &out)
	require.NoError(t, it.Serve(strings.NewReader(strings.Join([]string{
		"",
		"   ",
		"hello world",
		"addVehicle X",
		"addVehicle Y north",
		"addVehicle Z up north",
		"addVehicle U east east",
		"STEP",
		"addVehicle W   east   west   extra",
		"step",
	}, "\n"))))
	assert.Equal(t, "W\n", out.String())
	assert.Equal(t, uint32(1), j.StepCount())
	assert.Equal(t, 0, j.TotalWaiting())
}

func TestInterpreterEmptySteps(t *testing.T) {
	var out strings.Builder
	it := task.NewInterpreter(junction.New(entity.DefaultTiming(), nil), &out)
	for i := 0; i < 3; i++ {
		require.NoError(t, it.Exec("step"))
	}
	assert.Equal(t, "\n\n\n", out.String())
}

func TestRunScenario(t *testing.T) {
	s := &input.Scenario{Name: "canonical", Commands: []input.Command{
		input.AddVehicle("A", "south", "north"),
		input.AddVehicle("B", "north", "south"),
		input.Step(),
		input.Step(),
		input.AddVehicle("C", "west", "south"),
		input.AddVehicle("D", "west", "south"),
		input.AddVehicle("E", "west", "west"),
		{Type: "unknown"},
		input.Step(),
		input.Step(),
	}}
	out := task.RunScenario(junction.New(entity.DefaultTiming(), nil), s)
	require.Len(t, out.StepStatuses, 4)
	assert.Equal(t, []string{"B", "A"}, out.StepStatuses[0].LeftVehicles)
	assert.NotNil(t, out.StepStatuses[1].LeftVehicles)
	assert.Empty(t, out.StepStatuses[1].LeftVehicles)
	assert.Equal(t, []string{"C"}, out.StepStatuses[2].LeftVehicles)
	assert.Equal(t, []string{"D"}, out.StepStatuses[3].LeftVehicles)
}

func TestRunScenarioMatchesInterpreter(t *testing.T) {
	s, err := input.Generate(input.GenConfig{Name: "chaos", Steps: 80, Seed: 5})
	require.NoError(t, err)
	out := task.RunScenario(junction.New(entity.DefaultTiming(), nil), s)

	var lines strings.Builder
	for _, c := range s.Commands {
		if c.Type == input.CommandStep {
			lines.WriteString("step\n")
		} else {
			fmt.Fprintf(&lines, "addVehicle %s %s %s\n", c.VehicleID, c.StartRoad, c.EndRoad)
		}
	}
	var text strings.Builder
	it := task.NewInterpreter(junction.New(entity.DefaultTiming(), nil), &text)
	require.NoError(t, it.Serve(strings.NewReader(lines.String())))

	got := strings.Split(strings.TrimSuffix(text.String(), "\n"), "\n")
	require.Len(t, got, len(out.StepStatuses))
	for i, st := range out.StepStatuses {
		assert.Equal(t, strings.Join(st.LeftVehicles, " "), got[i], "step %d", i)
	}
}

func TestLineServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	goctx, cancel := context.WithCancel(context.Background())
	srv := task.NewLineServer(entity.DefaultTiming(), nil)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(goctx, l) }()

	// 两个连接各自拥有独立的路口
	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", l.Addr().String())
		require.NoError(t, err)
		_, err = conn.Write([]byte(canonical))
		require.NoError(t, err)
		r := bufio.NewReader(conn)
		for _, want := range []string{"B A\n", "\n", "C\n", "D\n"} {
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			line, err := r.ReadString('\n')
			require.NoError(t, err)
			assert.Equal(t, want, line)
		}
		if i == 0 {
			conn.Close()
		}
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

// brokenListener 第一个连接正常接受，之后的Accept在release关闭后返回错误
type brokenListener struct {
	net.Listener
	accepted int
	release  chan struct{}
}

func (l *brokenListener) Accept() (net.Conn, error) {
	if l.accepted == 0 {
		l.accepted++
		return l.Listener.Accept()
	}
	<-l.release
	return nil, errors.New("listener broken")
}

func TestLineServerAcceptErrorClosesSessions(t *testing.T) {
	inner, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer inner.Close()
	l := &brokenListener{Listener: inner, release: make(chan struct{})}

	srv := task.NewLineServer(entity.DefaultTiming(), nil)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(context.Background(), l) }()

	// 客户端保持连接不关闭
	conn, err := net.Dial("tcp", inner.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("step\n"))
	require.NoError(t, err)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "\n", line)

	close(l.release)
	select {
	case err := <-errCh:
		assert.ErrorContains(t, err, "listener broken")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not return after accept error")
	}
}
