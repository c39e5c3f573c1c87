// Package asynchook 在独立的 goroutine 里执行另一个 hook
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/beijian128/bytestream/frame/util"
)

// Hook 队列满时丢弃日志, 不阻塞调用方
type Hook struct {
	inner   logrus.Hook
	ch      chan *logrus.Entry
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewWithHook size 为队列长度
func NewWithHook(size int, inner logrus.Hook) *Hook {
	h := &Hook{
		inner: inner,
		ch:    make(chan *logrus.Entry, size),
		done:  make(chan struct{}),
	}
	util.SafeGo(h.run)
	return h
}

func (h *Hook) run() {
	defer close(h.done)
	for entry := range h.ch {
		// 失败时 inner 自己负责重连, 这里无处可报
		_ = h.inner.Fire(entry)
	}
}

// Levels logrus.Hook interface
func (h *Hook) Levels() []logrus.Level {
	return h.inner.Levels()
}

// Fire logrus.Hook interface. entry 会被复用, 这里入队的是拷贝.
func (h *Hook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}

	e := entry.Dup()
	e.Level = entry.Level
	e.Message = entry.Message
	e.Caller = entry.Caller

	select {
	case h.ch <- e:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// Dropped 队列满时丢弃的条数
func (h *Hook) Dropped() uint64 {
	return h.dropped.Load()
}

// Close 停止接收并等待队列中的日志写完
func (h *Hook) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.ch)
		h.mu.Unlock()
		<-h.done
	})
}
