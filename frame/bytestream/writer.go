package bytestream

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/beijian128/bytestream/frame/logiclong"
)

// 写操作是读操作的逆. 内存写入本身不会失败, 返回的错误只来自取值范围和压缩.

// WriteByte io.ByteWriter
func (s *ByteStream) WriteByte(c byte) error {
	s.reserve(1)[0] = c
	return nil
}

// WriteBool true 写 1, false 写 0
func (s *ByteStream) WriteBool(v bool) error {
	if v {
		return s.WriteByte(1)
	}
	return s.WriteByte(0)
}

// WriteBoolValue true 时写入原始字节 raw, false 写 0
func (s *ByteStream) WriteBoolValue(raw byte, v bool) error {
	if v {
		return s.WriteByte(raw)
	}
	return s.WriteByte(0)
}

// WriteBytes 原样写入, 没有长度前缀
func (s *ByteStream) WriteBytes(p []byte) error {
	copy(s.reserve(len(p)), p)
	return nil
}

// WriteInt8 ...
func (s *ByteStream) WriteInt8(v int8) error {
	return s.WriteByte(byte(v))
}

// WriteUint8 ...
func (s *ByteStream) WriteUint8(v uint8) error {
	return s.WriteByte(v)
}

// WriteInt16 ...
func (s *ByteStream) WriteInt16(v int16) error {
	BigEndian.PutUint16(s.reserve(2), uint16(v))
	return nil
}

// WriteInt16LE ...
func (s *ByteStream) WriteInt16LE(v int16) error {
	LittleEndian.PutUint16(s.reserve(2), uint16(v))
	return nil
}

// WriteUint16 ...
func (s *ByteStream) WriteUint16(v uint16) error {
	BigEndian.PutUint16(s.reserve(2), v)
	return nil
}

// WriteUint16LE ...
func (s *ByteStream) WriteUint16LE(v uint16) error {
	LittleEndian.PutUint16(s.reserve(2), v)
	return nil
}

const (
	minInt24  = -1 << 23
	maxInt24  = 1<<23 - 1
	maxUint24 = 1<<24 - 1
)

// WriteInt24 写 3 字节大端, v 必须在 [-2^23, 2^23) 内
func (s *ByteStream) WriteInt24(v int32) error {
	if v < minInt24 || v > maxInt24 {
		return errors.Wrapf(ErrValueOutOfRange, "int24 %d", v)
	}
	s.put24(uint32(v))
	return nil
}

// WriteUint24 v 必须小于 2^24
func (s *ByteStream) WriteUint24(v uint32) error {
	if v > maxUint24 {
		return errors.Wrapf(ErrValueOutOfRange, "uint24 %d", v)
	}
	s.put24(v)
	return nil
}

func (s *ByteStream) put24(v uint32) {
	p := s.reserve(3)
	p[0] = byte(v >> 16)
	p[1] = byte(v >> 8)
	p[2] = byte(v)
}

// WriteInt32 ...
func (s *ByteStream) WriteInt32(v int32) error {
	BigEndian.PutUint32(s.reserve(4), uint32(v))
	return nil
}

// WriteInt32LE ...
func (s *ByteStream) WriteInt32LE(v int32) error {
	LittleEndian.PutUint32(s.reserve(4), uint32(v))
	return nil
}

// WriteUint32 ...
func (s *ByteStream) WriteUint32(v uint32) error {
	BigEndian.PutUint32(s.reserve(4), v)
	return nil
}

// WriteUint32LE ...
func (s *ByteStream) WriteUint32LE(v uint32) error {
	LittleEndian.PutUint32(s.reserve(4), v)
	return nil
}

// WriteInt64 ...
func (s *ByteStream) WriteInt64(v int64) error {
	BigEndian.PutUint64(s.reserve(8), uint64(v))
	return nil
}

// WriteInt64LE ...
func (s *ByteStream) WriteInt64LE(v int64) error {
	LittleEndian.PutUint64(s.reserve(8), uint64(v))
	return nil
}

// WriteUint64 ...
func (s *ByteStream) WriteUint64(v uint64) error {
	BigEndian.PutUint64(s.reserve(8), v)
	return nil
}

// WriteUint64LE ...
func (s *ByteStream) WriteUint64LE(v uint64) error {
	LittleEndian.PutUint64(s.reserve(8), v)
	return nil
}

// WriteLong 同 WriteInt64
func (s *ByteStream) WriteLong(v int64) error {
	return s.WriteInt64(v)
}

// WriteULong 同 WriteUint64
func (s *ByteStream) WriteULong(v uint64) error {
	return s.WriteUint64(v)
}

// WriteString 写 [int32 长度][UTF-8 字节], 空串写长度 -1
func (s *ByteStream) WriteString(str string) error {
	return s.writeString(str, -1)
}

// WriteStringReference 同 WriteString, 但空串写长度 0
func (s *ByteStream) WriteStringReference(str string) error {
	return s.writeString(str, 0)
}

func (s *ByteStream) writeString(str string, emptyLength int32) error {
	if len(str) == 0 {
		return s.WriteInt32(emptyLength)
	}
	if len(str) > math.MaxInt32 {
		return errors.Wrapf(ErrValueOutOfRange, "string length %d", len(str))
	}
	s.WriteInt32(int32(len(str)))
	copy(s.reserve(len(str)), str)
	return nil
}

// WriteStringSize 写 [int32 size][str 的前 size 个字节]
func (s *ByteStream) WriteStringSize(size int, str string) error {
	if size < 0 || size > len(str) || size > math.MaxInt32 {
		return errors.Wrapf(ErrValueOutOfRange, "string size %d of %d bytes", size, len(str))
	}
	s.WriteInt32(int32(size))
	copy(s.reserve(size), str[:size])
	return nil
}

// WriteCompressedString 写 [int32 大端压缩长度][int32 小端原始长度][zlib 数据]
func (s *ByteStream) WriteCompressedString(str string) error {
	if len(str) > math.MaxInt32 {
		return errors.Wrapf(ErrValueOutOfRange, "string length %d", len(str))
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, s.compressionLevel)
	if err != nil {
		return &IOError{Op: "deflate", Err: err}
	}
	if _, err := zw.Write([]byte(str)); err != nil {
		return &IOError{Op: "deflate", Err: err}
	}
	if err := zw.Close(); err != nil {
		return &IOError{Op: "deflate", Err: err}
	}
	if buf.Len() > math.MaxInt32 {
		return errors.Wrapf(ErrValueOutOfRange, "compressed length %d", buf.Len())
	}

	head := s.reserve(8)
	binary.BigEndian.PutUint32(head, uint32(buf.Len()))
	binary.LittleEndian.PutUint32(head[4:], uint32(len(str)))
	copy(s.reserve(buf.Len()), buf.Bytes())
	return nil
}

// WriteLogicLong 写两个 4 字节大端整数: high, low
func (s *ByteStream) WriteLogicLong(l logiclong.LogicLong) error {
	p := s.reserve(8)
	BigEndian.PutUint32(p, l.High())
	BigEndian.PutUint32(p[4:], l.Low())
	return nil
}
