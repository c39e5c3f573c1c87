package log

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/beijian128/bytestream/frame/log/asynchook"
	"github.com/beijian128/bytestream/frame/log/iohook"
	"github.com/beijian128/bytestream/frame/log/logstash"
)

// 异步 hook 的队列长度
const asyncQueueSize = 4096

// NewFileLogHook 异步记录本地文件日志插件 for logrus
func NewFileLogHook(dir string, filename string, useJSONFormat bool, rotate bool, maxSize int) (hook logrus.Hook, close func(), err error) {
	if filename == "" {
		return nil, nil, errors.New("log file name is empty")
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, nil, errors.Wrapf(err, "create log dir %s", dir)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, nil, err
	}
	base := filepath.Join(dir, filename)

	var f io.WriteCloser

	switch {
	case rotate && maxSize > 0:
		f = &lumberjack.Logger{
			Filename:  base + ".log",
			MaxSize:   maxSize,
			LocalTime: true,
		}
	case rotate:
		f, err = rotatelogs.New(
			base+".%Y%m%d.log",
			rotatelogs.WithLinkName(base+".log"),
			rotatelogs.WithMaxAge(time.Hour*24*30),
			rotatelogs.WithRotationTime(time.Hour*24),
		)
		if err != nil {
			return nil, nil, errors.Wrap(err, "rotatelogs")
		}
	default:
		f, err = os.OpenFile(base+".log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
	}

	if useJSONFormat {
		hook = iohook.New(f, new(logrus.JSONFormatter))
	} else {
		hook = iohook.New(f, &logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	asyncHook := asynchook.NewWithHook(asyncQueueSize, hook)
	hook = asyncHook

	close = func() {
		asyncHook.Close()
		f.Close()
	}

	return hook, close, nil
}

// NewLogstashHook 异步输出 json 格式的日志到 logstash
func NewLogstashHook(addr string, typ string) (hook logrus.Hook, close func(), err error) {
	typ = strings.ToLower(typ)

	logstashHook, err := logstash.New(addr, logrus.Fields{"type": typ})
	if err != nil {
		return nil, nil, err
	}

	asyncHook := asynchook.NewWithHook(asyncQueueSize, logstashHook)
	hook = asyncHook

	close = func() {
		asyncHook.Close()
		logstashHook.Close()
	}

	return hook, close, nil
}
