// Package logstash 通过 TCP 把 json 日志发往 logstash, 写失败后在后台重连
package logstash

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/beijian128/bytestream/frame/util"
)

// ErrDisconnected 连接断开, 正在重连
var ErrDisconnected = errors.New("logstash: disconnected")

// 重连间隔
const (
	minRetryDelay = 100 * time.Millisecond
	maxRetryDelay = 10 * time.Second
)

// Hook logstash hook for logrus
type Hook struct {
	addr   string
	fields logrus.Fields
	levels []logrus.Level

	rw   sync.RWMutex
	conn net.Conn
	impl logrus.Hook // nil 表示正在重连

	redial chan struct{}
	closed atomic.Bool
}

// New 连接 addr 并创建 hook, fields 附加到每条日志上. fields 可以为 nil, 不会被修改.
func New(addr string, fields logrus.Fields) (*Hook, error) {
	own := make(logrus.Fields, len(fields))
	for k, v := range fields {
		own[k] = v
	}
	fields = own

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, errors.Wrapf(err, "dial logstash %s", addr)
	}

	h := &Hook{
		addr:   addr,
		fields: fields,
		levels: []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
			logrus.WarnLevel,
			logrus.InfoLevel,
		},
		conn:   conn,
		redial: make(chan struct{}, 1),
	}
	h.impl = logrustash.New(conn, logrustash.DefaultFormatter(fields))
	util.SafeGo(h.reconnectLoop)
	return h, nil
}

func (h *Hook) reconnectLoop() {
	for range h.redial {
		delay := minRetryDelay
		for {
			if h.closed.Load() {
				return
			}
			conn, err := net.DialTimeout("tcp", h.addr, 5*time.Second)
			if err == nil {
				h.rw.Lock()
				if h.closed.Load() {
					h.rw.Unlock()
					conn.Close()
					return
				}
				h.conn = conn
				h.impl = logrustash.New(conn, logrustash.DefaultFormatter(h.fields))
				h.rw.Unlock()
				break
			}
			time.Sleep(delay)
			if delay *= 2; delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}
	}
}

// Levels logrus.Hook interface
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire logrus.Hook interface. 重连期间的日志直接丢弃.
func (h *Hook) Fire(entry *logrus.Entry) error {
	h.rw.RLock()
	impl := h.impl
	h.rw.RUnlock()
	if impl == nil {
		return ErrDisconnected
	}

	if err := impl.Fire(entry); err != nil {
		h.disconnect(impl)
		return err
	}
	return nil
}

func (h *Hook) disconnect(failed logrus.Hook) {
	h.rw.Lock()
	defer h.rw.Unlock()
	// 并发失败时只处理一次
	if h.impl != failed {
		return
	}
	h.conn.Close()
	h.impl = nil
	if !h.closed.Load() {
		select {
		case h.redial <- struct{}{}:
		default:
		}
	}
}

// Connected 当前是否有可用连接
func (h *Hook) Connected() bool {
	h.rw.RLock()
	defer h.rw.RUnlock()
	return h.impl != nil
}

// Close 关闭连接, 停止重连
func (h *Hook) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	h.rw.Lock()
	defer h.rw.Unlock()
	close(h.redial)
	h.impl = nil
	return h.conn.Close()
}
