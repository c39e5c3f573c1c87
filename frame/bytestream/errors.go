package bytestream

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEndOfBuffer 剩余字节不足
	ErrEndOfBuffer = errors.New("bytestream: end of buffer")
	// ErrValueOutOfRange 写入的值超出了字段宽度
	ErrValueOutOfRange = errors.New("bytestream: value out of range")
)

// StringLengthError 字符串长度前缀非法 (< -1, 或超过 MaxStringLength)
type StringLengthError struct {
	Length int64
}

func (e *StringLengthError) Error() string {
	return fmt.Sprintf("bytestream: invalid string length %d", e.Length)
}

// InvalidStringError 字符串内容不是合法的 UTF-8
type InvalidStringError struct {
	Offset int    // 非法序列在字符串内的位置
	Detail string // 校验细节
}

func (e *InvalidStringError) Error() string {
	return "bytestream: invalid string: " + e.Detail
}

// IOError 底层读写 (zlib) 失败
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("bytestream: %s: %v", e.Op, e.Err)
}

// Unwrap ...
func (e *IOError) Unwrap() error {
	return e.Err
}
