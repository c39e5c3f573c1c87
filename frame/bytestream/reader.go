package bytestream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"

	"github.com/beijian128/bytestream/frame/logiclong"
)

// 读出的整数默认为大端, 带 LE 后缀的为小端

func (s *ByteStream) u8() (uint8, error) {
	p, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (s *ByteStream) u16(order binary.ByteOrder) (uint16, error) {
	p, err := s.take(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(p), nil
}

func (s *ByteStream) u24() (uint32, error) {
	p, err := s.take(3)
	if err != nil {
		return 0, err
	}
	return uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2]), nil
}

func (s *ByteStream) u32(order binary.ByteOrder) (uint32, error) {
	p, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(p), nil
}

func (s *ByteStream) u64(order binary.ByteOrder) (uint64, error) {
	p, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return order.Uint64(p), nil
}

// ReadByte io.ByteReader
func (s *ByteStream) ReadByte() (byte, error) {
	off := s.offset
	v, err := s.u8()
	if err == nil {
		s.record(off, "Byte", v)
	}
	return v, err
}

// ReadBool 读一个字节, 大于 0 为 true. 同时返回原始字节, 它本身也可能携带信息.
func (s *ByteStream) ReadBool() (bool, byte, error) {
	off := s.offset
	v, err := s.u8()
	if err != nil {
		return false, 0, err
	}
	s.record(off, "Bool", v > 0)
	return v > 0, v, nil
}

// ReadBytes 读 n 个字节, 返回拷贝
func (s *ByteStream) ReadBytes(n int) ([]byte, error) {
	off := s.offset
	p, err := s.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	s.record(off, "Bytes", fmt.Sprintf("% x", out))
	return out, nil
}

// ReadInt8 ...
func (s *ByteStream) ReadInt8() (int8, error) {
	off := s.offset
	v, err := s.u8()
	if err == nil {
		s.record(off, "Int8", int8(v))
	}
	return int8(v), err
}

// ReadUint8 ...
func (s *ByteStream) ReadUint8() (uint8, error) {
	off := s.offset
	v, err := s.u8()
	if err == nil {
		s.record(off, "Uint8", v)
	}
	return v, err
}

// ReadInt16 ...
func (s *ByteStream) ReadInt16() (int16, error) {
	return s.readInt16(BigEndian, "Int16")
}

// ReadInt16LE ...
func (s *ByteStream) ReadInt16LE() (int16, error) {
	return s.readInt16(LittleEndian, "Int16LE")
}

func (s *ByteStream) readInt16(order binary.ByteOrder, kind string) (int16, error) {
	off := s.offset
	v, err := s.u16(order)
	if err == nil {
		s.record(off, kind, int16(v))
	}
	return int16(v), err
}

// ReadUint16 ...
func (s *ByteStream) ReadUint16() (uint16, error) {
	return s.readUint16(BigEndian, "Uint16")
}

// ReadUint16LE ...
func (s *ByteStream) ReadUint16LE() (uint16, error) {
	return s.readUint16(LittleEndian, "Uint16LE")
}

func (s *ByteStream) readUint16(order binary.ByteOrder, kind string) (uint16, error) {
	off := s.offset
	v, err := s.u16(order)
	if err == nil {
		s.record(off, kind, v)
	}
	return v, err
}

// ReadInt24 读 3 字节大端有符号整数, 符号位扩展到 int32
func (s *ByteStream) ReadInt24() (int32, error) {
	off := s.offset
	u, err := s.u24()
	if err != nil {
		return 0, err
	}
	v := int32(u<<8) >> 8
	s.record(off, "Int24", v)
	return v, nil
}

// ReadUint24 ...
func (s *ByteStream) ReadUint24() (uint32, error) {
	off := s.offset
	v, err := s.u24()
	if err == nil {
		s.record(off, "Uint24", v)
	}
	return v, err
}

// ReadInt32 ...
func (s *ByteStream) ReadInt32() (int32, error) {
	return s.readInt32(BigEndian, "Int32")
}

// ReadInt32LE ...
func (s *ByteStream) ReadInt32LE() (int32, error) {
	return s.readInt32(LittleEndian, "Int32LE")
}

func (s *ByteStream) readInt32(order binary.ByteOrder, kind string) (int32, error) {
	off := s.offset
	v, err := s.u32(order)
	if err == nil {
		s.record(off, kind, int32(v))
	}
	return int32(v), err
}

// ReadUint32 ...
func (s *ByteStream) ReadUint32() (uint32, error) {
	return s.readUint32(BigEndian, "Uint32")
}

// ReadUint32LE ...
func (s *ByteStream) ReadUint32LE() (uint32, error) {
	return s.readUint32(LittleEndian, "Uint32LE")
}

func (s *ByteStream) readUint32(order binary.ByteOrder, kind string) (uint32, error) {
	off := s.offset
	v, err := s.u32(order)
	if err == nil {
		s.record(off, kind, v)
	}
	return v, err
}

// ReadInt64 ...
func (s *ByteStream) ReadInt64() (int64, error) {
	return s.readInt64(BigEndian, "Int64")
}

// ReadInt64LE ...
func (s *ByteStream) ReadInt64LE() (int64, error) {
	return s.readInt64(LittleEndian, "Int64LE")
}

func (s *ByteStream) readInt64(order binary.ByteOrder, kind string) (int64, error) {
	off := s.offset
	v, err := s.u64(order)
	if err == nil {
		s.record(off, kind, int64(v))
	}
	return int64(v), err
}

// ReadUint64 ...
func (s *ByteStream) ReadUint64() (uint64, error) {
	return s.readUint64(BigEndian, "Uint64")
}

// ReadUint64LE ...
func (s *ByteStream) ReadUint64LE() (uint64, error) {
	return s.readUint64(LittleEndian, "Uint64LE")
}

func (s *ByteStream) readUint64(order binary.ByteOrder, kind string) (uint64, error) {
	off := s.offset
	v, err := s.u64(order)
	if err == nil {
		s.record(off, kind, v)
	}
	return v, err
}

// ReadLong 同 ReadInt64
func (s *ByteStream) ReadLong() (int64, error) {
	return s.ReadInt64()
}

// ReadULong 同 ReadUint64
func (s *ByteStream) ReadULong() (uint64, error) {
	return s.ReadUint64()
}

// ReadString 读 [int32 大端长度][UTF-8 字节]. 长度 0 或 -1 表示空串, 小于 -1 报错.
func (s *ByteStream) ReadString() (string, error) {
	return s.readString("String")
}

// ReadStringReference 读法与 ReadString 相同, 区别只在写入空串时
func (s *ByteStream) ReadStringReference() (string, error) {
	return s.readString("StringReference")
}

func (s *ByteStream) readString(kind string) (string, error) {
	off := s.offset
	length, err := s.u32(BigEndian)
	if err != nil {
		return "", err
	}
	str, err := s.stringBody(int32(length))
	if err != nil {
		return "", err
	}
	s.record(off, kind, str)
	return str, nil
}

func (s *ByteStream) stringBody(length int32) (string, error) {
	if length < -1 {
		return "", &StringLengthError{Length: int64(length)}
	}
	if length <= 0 {
		return "", nil
	}
	if s.maxStringLength > 0 && int(length) > s.maxStringLength {
		return "", &StringLengthError{Length: int64(length)}
	}
	p, err := s.take(int(length))
	if err != nil {
		return "", err
	}
	return decodeUTF8(p)
}

// ReadStringSize 读 size 个字节作为字符串, 没有长度前缀
func (s *ByteStream) ReadStringSize(size int) (string, error) {
	off := s.offset
	p, err := s.take(size)
	if err != nil {
		return "", err
	}
	str, err := decodeUTF8(p)
	if err != nil {
		return "", err
	}
	s.record(off, "StringSize", str)
	return str, nil
}

// ReadCompressedString 读 [int32 大端压缩长度][int32 小端原始长度][zlib 数据].
// 原始长度只记录不校验.
func (s *ByteStream) ReadCompressedString() (string, error) {
	off := s.offset
	compressedLen, err := s.u32(BigEndian)
	if err != nil {
		return "", err
	}
	if int32(compressedLen) < 0 {
		return "", &StringLengthError{Length: int64(int32(compressedLen))}
	}
	uncompressedLen, err := s.u32(LittleEndian)
	if err != nil {
		return "", err
	}
	payload, err := s.take(int(compressedLen))
	if err != nil {
		return "", err
	}

	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return "", &IOError{Op: "inflate", Err: err}
	}
	defer zr.Close()

	var r io.Reader = zr
	if s.maxStringLength > 0 {
		r = io.LimitReader(zr, int64(s.maxStringLength)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &IOError{Op: "inflate", Err: err}
	}
	if s.maxStringLength > 0 && len(data) > s.maxStringLength {
		return "", &StringLengthError{Length: int64(len(data))}
	}

	str, err := decodeUTF8(data)
	if err != nil {
		return "", err
	}
	s.record(off, "CompressedString", fmt.Sprintf("%s (declared %d bytes)", str, int32(uncompressedLen)))
	return str, nil
}

// ReadLogicLong 读两个 4 字节大端整数: high, low
func (s *ByteStream) ReadLogicLong() (logiclong.LogicLong, error) {
	off := s.offset
	high, err := s.u32(BigEndian)
	if err != nil {
		return logiclong.LogicLong{}, err
	}
	low, err := s.u32(BigEndian)
	if err != nil {
		return logiclong.LogicLong{}, err
	}
	l := logiclong.New(high, low)
	s.record(off, "LogicLong", l)
	return l, nil
}

func decodeUTF8(p []byte) (string, error) {
	if utf8.Valid(p) {
		return string(p), nil
	}
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size <= 1 {
			return "", &InvalidStringError{
				Offset: i,
				Detail: fmt.Sprintf("invalid utf-8 sequence at byte %d (0x%02x)", i, p[i]),
			}
		}
		i += size
	}
	return string(p), nil
}
