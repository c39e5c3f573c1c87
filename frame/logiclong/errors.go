package logiclong

import "fmt"

// InvalidTagError tag 中出现了字母表以外的字符 (或规范化后为空)
type InvalidTagError struct {
	Tag  string // 规范化之后的 tag
	Char rune   // 第一个非法字符, 空 tag 时为 0
}

func (e *InvalidTagError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("logiclong: invalid tag %q: no digits", e.Tag)
	}
	return fmt.Sprintf("logiclong: invalid tag %q: unexpected character %q", e.Tag, e.Char)
}

// OutOfBoundError 标识的某个分量超出了约定范围
type OutOfBoundError struct {
	Component string
	Value     uint64
	Bound     uint64
}

func (e *OutOfBoundError) Error() string {
	return fmt.Sprintf("logiclong: %s %d out of bound %d", e.Component, e.Value, e.Bound)
}
