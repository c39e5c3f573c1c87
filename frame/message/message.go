// Package message 复合消息的编解码约定.
//
// 结构体按字段声明顺序逐个编解码; 枚举 (一组实现同一接口的变体) 先写判别值, 再写所选变体的字段.
// 类型可以自己实现 Message, 否则由反射按字段形状生成编解码器, 字段形状可用 bytestream 标签调整:
//
//	type Hello struct {
//		Seq     int32  `bytestream:"vint"`
//		Name    string `bytestream:"ref"`
//		Payload string `bytestream:"compressed"`
//		Level   int16  `bytestream:"le"`
//		Exp     uint32 `bytestream:"int24"`
//		Items   []Item `bytestream:"count=uint8"`
//		Cache   []byte `bytestream:"-"`
//	}
package message

import (
	"math"
	"reflect"

	"github.com/pkg/errors"

	"github.com/beijian128/bytestream/frame/bytestream"
)

// Message 自己定义线上格式的类型
type Message interface {
	Encode(s *bytestream.ByteStream) error
	Decode(s *bytestream.ByteStream) error
}

// Encode 把 v 写到 s. v 实现了 Message 时直接调用, 否则按反射规则编码.
//
// 枚举变体单独传入时丢失了接口类型, 写不出判别值, 返回 *UnsupportedTypeError.
// 枚举值用 Enum.Encode 编码, 或者传接口变量的指针 (&cmd).
func Encode(s *bytestream.ByteStream, v any) error {
	if v != nil {
		if name, ok := variantEnum(reflect.TypeOf(v)); ok {
			return &UnsupportedTypeError{
				Type:   reflect.TypeOf(v),
				Reason: "variant of enum " + name + ": use Enum.Encode or pass a pointer to the interface value",
			}
		}
	}
	if m, ok := v.(Message); ok {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return ErrNilValue
		}
		return m.Encode(s)
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return ErrNilValue
	}
	c, err := codecOf(rv.Type())
	if err != nil {
		return err
	}
	return topLevel(rv.Type(), c.encode(s, rv))
}

// Decode 从 s 读出一个值存入 v, v 必须是非 nil 指针.
// 出错时 v 可能已被部分填充, 调用方应丢弃它.
func Decode(s *bytestream.ByteStream, v any) error {
	if m, ok := v.(Message); ok {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return ErrNilValue
		}
		return m.Decode(s)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &UnsupportedTypeError{Type: reflect.TypeOf(v), Reason: "decode target must be a non-nil pointer"}
	}
	elem := rv.Elem()
	c, err := codecOf(elem.Type())
	if err != nil {
		return err
	}
	return topLevel(elem.Type(), c.decode(s, elem))
}

func topLevel(t reflect.Type, err error) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if fe, ok := err.(*FieldError); ok && t.Name() != "" {
		return wrapField(fe, t.Name())
	}
	return err
}

// Marshal 编码到新的字节切片
func Marshal(v any, opts ...bytestream.Option) ([]byte, error) {
	s := bytestream.New(opts...)
	if err := Encode(s, v); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// Unmarshal 解码 data 到 v, data 必须恰好被完全消耗
func Unmarshal(data []byte, v any, opts ...bytestream.Option) error {
	s := bytestream.NewFromBuffer(data, opts...)
	if err := Decode(s, v); err != nil {
		return err
	}
	if s.Remaining() > 0 {
		return errors.Wrapf(ErrTrailingData, "%d bytes after %T", s.Remaining(), v)
	}
	return nil
}

// WriteSequence 写 [int32 大端个数][元素...], 供手写的 Message 使用
func WriteSequence[T any](s *bytestream.ByteStream, items []T, enc func(*bytestream.ByteStream, T) error) error {
	if len(items) > math.MaxInt32 {
		return errors.Wrapf(bytestream.ErrValueOutOfRange, "sequence length %d", len(items))
	}
	if err := s.WriteInt32(int32(len(items))); err != nil {
		return err
	}
	for i, item := range items {
		if err := enc(s, item); err != nil {
			return wrapField(err, indexSeg(i))
		}
	}
	return nil
}

// ReadSequence WriteSequence 的逆
func ReadSequence[T any](s *bytestream.ByteStream, dec func(*bytestream.ByteStream) (T, error)) ([]T, error) {
	n, err := s.ReadInt32()
	if err != nil {
		return nil, err
	}
	if err := checkCount(s, int64(n)); err != nil {
		return nil, err
	}
	items := make([]T, 0, n)
	for i := 0; i < int(n); i++ {
		item, err := dec(s)
		if err != nil {
			return nil, wrapField(err, indexSeg(i))
		}
		items = append(items, item)
	}
	return items, nil
}

// EncodeElem 与 WriteSequence 配合, 按 Encode 的规则写元素
func EncodeElem[T any](s *bytestream.ByteStream, v T) error {
	return Encode(s, v)
}

// DecodeElem 与 ReadSequence 配合, 按 Decode 的规则读元素
func DecodeElem[T any](s *bytestream.ByteStream) (T, error) {
	var v T
	err := Decode(s, &v)
	return v, err
}
