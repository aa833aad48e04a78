package lane

import "github.com/tsinghua-fib-lab/intersection-sim/entity"

// Queue 单车道的定长环形队列
// 功能：按进入顺序保存车辆（FIFO），所有存储均内联在结构体中
// 说明：
//   - head  下一个出队位置
//   - tail  下一个入队位置
//   - count 当前车辆数，0 <= count <= MaxVehiclesPerLane
//
// 零值即为空队列，所有操作O(1)且不分配内存
type Queue struct {
	buf   [entity.MaxVehiclesPerLane]entity.Vehicle
	head  uint8
	tail  uint8
	count uint8
}

// Init 清空队列
func (q *Queue) Init() {
	q.head = 0
	q.tail = 0
	q.count = 0
}

// IsEmpty 队列是否为空
func (q *Queue) IsEmpty() bool {
	return q.count == 0
}

// IsFull 队列是否已满
func (q *Queue) IsFull() bool {
	return q.count >= entity.MaxVehiclesPerLane
}

// Len 当前排队车辆数
func (q *Queue) Len() uint8 {
	return q.count
}

// Enqueue 车辆入队
// 功能：将车辆拷贝到队尾槽位
// 参数：v-车辆
// 返回：队列已满时返回false，队列保持不变（不覆盖最早的车辆，也不扩容）
func (q *Queue) Enqueue(v entity.Vehicle) bool {
	if q.IsFull() {
		return false
	}
	q.buf[q.tail] = v
	q.tail = uint8((int(q.tail) + 1) % entity.MaxVehiclesPerLane)
	q.count++
	return true
}

// Dequeue 队首车辆出队
// 功能：拷贝出队首车辆并释放槽位
// 返回：出队车辆，队列为空时返回false
func (q *Queue) Dequeue() (entity.Vehicle, bool) {
	if q.IsEmpty() {
		return entity.Vehicle{}, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = entity.Vehicle{}
	q.head = uint8((int(q.head) + 1) % entity.MaxVehiclesPerLane)
	q.count--
	return v, true
}

// Peek 查看队首车辆（不出队）
func (q *Queue) Peek() (entity.Vehicle, bool) {
	if q.IsEmpty() {
		return entity.Vehicle{}, false
	}
	return q.buf[q.head], true
}
