package util

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Recover recover panic, 写入日志和 Stderr
func Recover() {
	if e := recover(); e != nil {
		logPanic(e, debug.Stack())
	}
}

// RecoverError recover panic 并把它转成 *err, 用于需要返回错误码的入口函数
func RecoverError(err *error) {
	if e := recover(); e != nil {
		logPanic(e, debug.Stack())
		if err != nil {
			*err = errors.Errorf("panic: %v", e)
		}
	}
}

func logPanic(e any, stack []byte) {
	logrus.WithFields(logrus.Fields{
		"err":   e,
		"stack": string(stack),
	}).Error("Recover")

	fmt.Fprintf(os.Stderr, "%v\n", e)
	os.Stderr.Write(stack)
}

// SafeGo go
func SafeGo(f func()) {
	if f != nil {
		go func() {
			defer Recover()
			f()
		}()
	}
}
