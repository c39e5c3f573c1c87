package message

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNilValue 编码时遇到 nil 指针或 nil 接口
	ErrNilValue = errors.New("message: nil value")
	// ErrTrailingData Unmarshal 解码完成后仍有剩余字节
	ErrTrailingData = errors.New("message: trailing data")
	// ErrInvalidCount 序列个数为负数, 或超过剩余字节数
	ErrInvalidCount = errors.New("message: invalid count")
)

// UnknownDiscriminantError 枚举的判别值没有注册对应的变体
type UnknownDiscriminantError struct {
	Enum  string
	Value int64
}

func (e *UnknownDiscriminantError) Error() string {
	return fmt.Sprintf("message: unknown discriminant %d for enum %s", e.Value, e.Enum)
}

// UnsupportedTypeError 类型 (或字段选项) 无法映射到线上格式
type UnsupportedTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("message: unsupported type %v", e.Type)
	}
	return fmt.Sprintf("message: unsupported type %v: %s", e.Type, e.Reason)
}

// FieldError 编解码某个字段失败, Path 形如 Battle.Units[2].Owner
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("message: %s: %v", e.Path, e.Err)
}

// Unwrap ...
func (e *FieldError) Unwrap() error {
	return e.Err
}

// wrapField 把 seg 加到路径前面. seg 以 '[' 开头时不加点.
func wrapField(err error, seg string) error {
	if fe, ok := err.(*FieldError); ok {
		if strings.HasPrefix(fe.Path, "[") {
			fe.Path = seg + fe.Path
		} else {
			fe.Path = seg + "." + fe.Path
		}
		return fe
	}
	return &FieldError{Path: seg, Err: err}
}
