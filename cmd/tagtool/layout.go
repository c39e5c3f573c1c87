package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/beijian128/bytestream/frame/bytestream"
	"github.com/beijian128/bytestream/frame/logiclong"
)

// field 布局中的一个字段: 从流中读出, 或把文本参数写入流
type field struct {
	read  func(s *bytestream.ByteStream) error
	write func(s *bytestream.ByteStream, arg string) error
}

func readOnly[T any](f func(*bytestream.ByteStream) (T, error)) func(*bytestream.ByteStream) error {
	return func(s *bytestream.ByteStream) error {
		_, err := f(s)
		return err
	}
}

func intField[T int8 | int16 | int32 | int64](read func(*bytestream.ByteStream) (T, error), write func(*bytestream.ByteStream, T) error, bits int) field {
	return field{
		read: readOnly(read),
		write: func(s *bytestream.ByteStream, arg string) error {
			v, err := strconv.ParseInt(arg, 0, bits)
			if err != nil {
				return err
			}
			return write(s, T(v))
		},
	}
}

func uintField[T uint8 | uint16 | uint32 | uint64](read func(*bytestream.ByteStream) (T, error), write func(*bytestream.ByteStream, T) error, bits int) field {
	return field{
		read: readOnly(read),
		write: func(s *bytestream.ByteStream, arg string) error {
			v, err := strconv.ParseUint(arg, 0, bits)
			if err != nil {
				return err
			}
			return write(s, T(v))
		},
	}
}

func stringField(read func(*bytestream.ByteStream) (string, error), write func(*bytestream.ByteStream, string) error) field {
	return field{read: readOnly(read), write: write}
}

var fields = map[string]field{
	"int8":     intField((*bytestream.ByteStream).ReadInt8, (*bytestream.ByteStream).WriteInt8, 8),
	"uint8":    uintField((*bytestream.ByteStream).ReadUint8, (*bytestream.ByteStream).WriteUint8, 8),
	"int16":    intField((*bytestream.ByteStream).ReadInt16, (*bytestream.ByteStream).WriteInt16, 16),
	"int16le":  intField((*bytestream.ByteStream).ReadInt16LE, (*bytestream.ByteStream).WriteInt16LE, 16),
	"uint16":   uintField((*bytestream.ByteStream).ReadUint16, (*bytestream.ByteStream).WriteUint16, 16),
	"uint16le": uintField((*bytestream.ByteStream).ReadUint16LE, (*bytestream.ByteStream).WriteUint16LE, 16),
	"int24":    intField((*bytestream.ByteStream).ReadInt24, (*bytestream.ByteStream).WriteInt24, 24),
	"uint24":   uintField((*bytestream.ByteStream).ReadUint24, (*bytestream.ByteStream).WriteUint24, 24),
	"int32":    intField((*bytestream.ByteStream).ReadInt32, (*bytestream.ByteStream).WriteInt32, 32),
	"int32le":  intField((*bytestream.ByteStream).ReadInt32LE, (*bytestream.ByteStream).WriteInt32LE, 32),
	"uint32":   uintField((*bytestream.ByteStream).ReadUint32, (*bytestream.ByteStream).WriteUint32, 32),
	"uint32le": uintField((*bytestream.ByteStream).ReadUint32LE, (*bytestream.ByteStream).WriteUint32LE, 32),
	"int64":    intField((*bytestream.ByteStream).ReadInt64, (*bytestream.ByteStream).WriteInt64, 64),
	"int64le":  intField((*bytestream.ByteStream).ReadInt64LE, (*bytestream.ByteStream).WriteInt64LE, 64),
	"uint64":   uintField((*bytestream.ByteStream).ReadUint64, (*bytestream.ByteStream).WriteUint64, 64),
	"uint64le": uintField((*bytestream.ByteStream).ReadUint64LE, (*bytestream.ByteStream).WriteUint64LE, 64),
	"vint":     intField((*bytestream.ByteStream).ReadVInt, (*bytestream.ByteStream).WriteVInt, 32),

	"bool": {
		read: func(s *bytestream.ByteStream) error {
			_, _, err := s.ReadBool()
			return err
		},
		write: func(s *bytestream.ByteStream, arg string) error {
			v, err := strconv.ParseBool(arg)
			if err != nil {
				return err
			}
			return s.WriteBool(v)
		},
	},
	"string":     stringField((*bytestream.ByteStream).ReadString, (*bytestream.ByteStream).WriteString),
	"stringref":  stringField((*bytestream.ByteStream).ReadStringReference, (*bytestream.ByteStream).WriteStringReference),
	"compressed": stringField((*bytestream.ByteStream).ReadCompressedString, (*bytestream.ByteStream).WriteCompressedString),
	"logiclong": {
		read: readOnly((*bytestream.ByteStream).ReadLogicLong),
		write: func(s *bytestream.ByteStream, arg string) error {
			l, err := logiclong.Parse(arg)
			if err != nil {
				return err
			}
			return s.WriteLogicLong(l)
		},
	},
}

// parseLayout "vint,string,logiclong" -> 字段列表
func parseLayout(layout string) ([]field, error) {
	var out []field
	for _, name := range strings.Split(layout, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		f, ok := fields[name]
		if !ok {
			return nil, errors.Errorf("unknown field kind %q", name)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("empty layout")
	}
	return out, nil
}

func fieldKinds() []string {
	kinds := make([]string, 0, len(fields))
	for k := range fields {
		kinds = append(kinds, k)
	}
	return kinds
}
