package utils

import (
	"fmt"
	"sync"
	"time"
)

// id 布局，从高位到低位：41 位毫秒时间戳 | 5 位机房 | 5 位机器 | 12 位序列号
const (
	idEpochMs    int64 = 1577836800000 // 2020-01-01T00:00:00Z
	seqBits            = 12
	workerBits         = 5
	centerBits         = 5
	seqMask      int64 = 1<<seqBits - 1
	workerLimit  int64 = 1<<workerBits - 1
	centerLimit  int64 = 1<<centerBits - 1
	workerOffset       = seqBits
	centerOffset       = seqBits + workerBits
	timeOffset         = seqBits + workerBits + centerBits
)

// Snowflake 单进程内的 id 生成器，同一实例生成的 id 严格递增
type Snowflake struct {
	mu   sync.Mutex
	node int64 // 机房与机器号预先移位拼好
	last int64
	seq  int64
}

// IDParts 一个 id 拆开后的各段
type IDParts struct {
	UnixMilli    int64
	DatacenterID int64
	WorkerID     int64
	Sequence     int64
}

func NewSnowflake(workerID, datacenterID int64) (*Snowflake, error) {
	if workerID < 0 || workerID > workerLimit {
		return nil, fmt.Errorf("worker id %d not in [0, %d]", workerID, workerLimit)
	}
	if datacenterID < 0 || datacenterID > centerLimit {
		return nil, fmt.Errorf("datacenter id %d not in [0, %d]", datacenterID, centerLimit)
	}
	return &Snowflake{node: datacenterID<<centerOffset | workerID<<workerOffset}, nil
}

func (s *Snowflake) GenerateID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 时钟回拨时停在上一个毫秒里继续用序列号
	now := time.Now().UnixMilli()
	if now < s.last {
		now = s.last
	}
	switch {
	case now > s.last:
		s.seq = 0
	case s.seq < seqMask:
		s.seq++
	default:
		for now <= s.last {
			time.Sleep(50 * time.Microsecond)
			now = time.Now().UnixMilli()
		}
		s.seq = 0
	}
	s.last = now
	return (now-idEpochMs)<<timeOffset | s.node | s.seq
}

func ParseID(id int64) IDParts {
	return IDParts{
		UnixMilli:    id>>timeOffset + idEpochMs,
		DatacenterID: id >> centerOffset & centerLimit,
		WorkerID:     id >> workerOffset & workerLimit,
		Sequence:     id & seqMask,
	}
}

var (
	defaultNode *Snowflake
	nodeOnce    sync.Once
)

// InitSnowflake 只有第一次调用生效
func InitSnowflake(workerID, datacenterID int64) error {
	var err error
	nodeOnce.Do(func() {
		defaultNode, err = NewSnowflake(workerID, datacenterID)
	})
	return err
}

// NextID 未初始化时按 (1, 1) 初始化
func NextID() int64 {
	_ = InitSnowflake(1, 1)
	return defaultNode.GenerateID()
}
