package logiclong

import (
	"fmt"
	"math"

	"github.com/beijian128/bytestream/frame/util"
)

// MaxHigh 使 tag 保持双射的 high 上限, high 是 tag 数值对 256 取模的部分
const MaxHigh = math.MaxUint8

// LogicLong 由两个 32 位无符号整数组成的实体标识, 有一个 base-14 的 tag 文本形式.
//
// tag 数值 = high + low*256, 所以只有 high <= MaxHigh 时 (high, low) 与 tag 一一对应.
// 值不可变, 可以直接用 == 比较, 零值等同于 New(0, 0).
type LogicLong struct {
	high uint32
	low  uint32
}

// New 由数值对创建
func New(high, low uint32) LogicLong {
	return LogicLong{high: high, low: low}
}

// FromInt64 由 Int64 的组合形式还原
func FromInt64(v int64) LogicLong {
	return New(uint32(uint64(v)>>32), uint32(v))
}

// Parse 解析 tag 文本, 输入会先被规范化
func Parse(tag string) (LogicLong, error) {
	high, low, err := ParseTag(tag)
	if err != nil {
		return LogicLong{}, err
	}
	return New(high, low), nil
}

// MustParse 同 Parse, 出错时 panic, 只用于常量 tag
func MustParse(tag string) LogicLong {
	l, err := Parse(tag)
	if err != nil {
		panic(err)
	}
	return l
}

// High ...
func (l LogicLong) High() uint32 { return l.high }

// Low ...
func (l LogicLong) Low() uint32 { return l.low }

// Tag 返回规范化的 tag, 如 "#2PP"
func (l LogicLong) Tag() string {
	return ToTag(l.high, l.low)
}

// String fmt.Stringer
func (l LogicLong) String() string {
	return l.Tag()
}

// GoString 调试输出同时带上数值对
func (l LogicLong) GoString() string {
	return fmt.Sprintf("logiclong.New(%d, %d) /* %s */", l.high, l.low, l.Tag())
}

// IsZero ...
func (l LogicLong) IsZero() bool {
	return l.high == 0 && l.low == 0
}

// Int64 high 在高 32 位, low 在低 32 位
func (l LogicLong) Int64() int64 {
	return int64(uint64(l.high)<<32 | uint64(l.low))
}

// Hash 用于分片/负载均衡的散列值
func (l LogicLong) Hash() uint64 {
	return util.Hash64(uint64(l.Int64()))
}

// Shard 映射到 [0, n), n <= 0 时返回 0
func (l LogicLong) Shard(n int) int {
	return util.Shard(uint64(l.Int64()), n)
}

// Equal 只比较数值对
func (l LogicLong) Equal(o LogicLong) bool {
	return l.high == o.high && l.low == o.low
}

// Compare 按 (high, low) 字典序比较, 返回 -1, 0, 1
func (l LogicLong) Compare(o LogicLong) int {
	switch {
	case l.high < o.high:
		return -1
	case l.high > o.high:
		return 1
	case l.low < o.low:
		return -1
	case l.low > o.low:
		return 1
	}
	return 0
}

// Less ...
func (l LogicLong) Less(o LogicLong) bool {
	return l.Compare(o) < 0
}

// Validate 检查 high 是否超出应用约定的上限
func (l LogicLong) Validate(maxHigh uint32) error {
	if l.high > maxHigh {
		return &OutOfBoundError{Component: "high", Value: uint64(l.high), Bound: uint64(maxHigh)}
	}
	return nil
}

// MarshalText encoding.TextMarshaler, 输出 tag
func (l LogicLong) MarshalText() ([]byte, error) {
	return []byte(l.Tag()), nil
}

// UnmarshalText encoding.TextUnmarshaler
func (l *LogicLong) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
