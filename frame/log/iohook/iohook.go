// Package iohook 把 logrus 日志格式化后写到 io.Writer 的 hook
package iohook

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hook 同步写, 对 w 的写入串行化
type Hook struct {
	mu        sync.Mutex
	w         io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

// New 记录所有级别
func New(w io.Writer, formatter logrus.Formatter) *Hook {
	return NewWithLevels(w, formatter, logrus.AllLevels)
}

// NewWithLevels 只记录 levels 中的级别
func NewWithLevels(w io.Writer, formatter logrus.Formatter, levels []logrus.Level) *Hook {
	return &Hook{
		w:         w,
		formatter: formatter,
		levels:    levels,
	}
}

// Levels logrus.Hook interface
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire logrus.Hook interface
func (h *Hook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(b)
	return err
}
