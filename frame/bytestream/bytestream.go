package bytestream

import (
	"encoding/binary"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

var (
	// BigEndian 协议默认字节序
	BigEndian = binary.ByteOrder(binary.BigEndian)
	// LittleEndian ...
	LittleEndian = binary.ByteOrder(binary.LittleEndian)
)

// ByteStream 一段内存字节流加读写游标.
//
// 用 NewFromBuffer 创建的用于读, 用 New 创建的用于写. 写操作在游标处覆盖并按需扩展.
// 不支持并发访问, 每个在途消息使用自己的 ByteStream.
// 读写失败时游标停在一个有效但未指定的位置, 需要原子性的调用方自己用 Offset/SetOffset 回滚.
type ByteStream struct {
	buf    []byte
	offset int

	transcript       Transcript
	compressionLevel int
	maxStringLength  int
}

// Option ...
type Option func(*ByteStream)

// WithTranscript 解码时把每个字段记录到 t
func WithTranscript(t Transcript) Option {
	return func(s *ByteStream) {
		s.transcript = t
	}
}

// WithCompressionLevel 压缩字符串使用的 zlib 压缩级别
func WithCompressionLevel(level int) Option {
	return func(s *ByteStream) {
		s.compressionLevel = level
	}
}

// WithMaxStringLength 读字符串时允许的最大字节数, 0 表示不限制
func WithMaxStringLength(n int) Option {
	return func(s *ByteStream) {
		s.maxStringLength = n
	}
}

// New 创建一个空的 ByteStream, 用于写
func New(opts ...Option) *ByteStream {
	return newStream(nil, opts)
}

// NewFromBuffer 以 buffer 为内容创建 ByteStream, 用于读. 不拷贝 buffer.
func NewFromBuffer(buffer []byte, opts ...Option) *ByteStream {
	return newStream(buffer, opts)
}

func newStream(buffer []byte, opts []Option) *ByteStream {
	s := &ByteStream{
		buf:              buffer,
		compressionLevel: zlib.DefaultCompression,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Offset 当前游标位置
func (s *ByteStream) Offset() int {
	return s.offset
}

// SetOffset 移动游标, 用于快照/回滚. off 必须在 [0, Len()] 内.
func (s *ByteStream) SetOffset(off int) error {
	if off < 0 || off > len(s.buf) {
		return errors.Wrapf(ErrEndOfBuffer, "set offset %d, length %d", off, len(s.buf))
	}
	s.offset = off
	return nil
}

// Len 总字节数
func (s *ByteStream) Len() int {
	return len(s.buf)
}

// Remaining 游标之后还可读的字节数
func (s *ByteStream) Remaining() int {
	return len(s.buf) - s.offset
}

// Bytes 返回全部内容, 与 ByteStream 共享底层数组
func (s *ByteStream) Bytes() []byte {
	return s.buf
}

// Reset 清空内容, 保留已分配的空间
func (s *ByteStream) Reset() {
	s.buf = s.buf[:0]
	s.offset = 0
}

// SetTranscript nil 表示关闭记录
func (s *ByteStream) SetTranscript(t Transcript) {
	s.transcript = t
}

// Transcript ...
func (s *ByteStream) Transcript() Transcript {
	return s.transcript
}

// take 读出 n 个字节, 返回的切片指向底层数组
func (s *ByteStream) take(n int) ([]byte, error) {
	if n < 0 || n > len(s.buf)-s.offset {
		return nil, errors.Wrapf(ErrEndOfBuffer, "need %d bytes at offset %d, %d remaining", n, s.offset, len(s.buf)-s.offset)
	}
	p := s.buf[s.offset : s.offset+n]
	s.offset += n
	return p, nil
}

// reserve 在游标处留出 n 个字节用于写
func (s *ByteStream) reserve(n int) []byte {
	end := s.offset + n
	if end > len(s.buf) {
		if end > cap(s.buf) {
			newCap := 2 * cap(s.buf)
			if newCap < end {
				newCap = end
			}
			if newCap < 64 {
				newCap = 64
			}
			buf := make([]byte, end, newCap)
			copy(buf, s.buf)
			s.buf = buf
		} else {
			s.buf = s.buf[:end]
		}
	}
	p := s.buf[s.offset:end]
	s.offset = end
	return p
}

func (s *ByteStream) record(offset int, kind string, value any) {
	if s.transcript != nil {
		s.transcript.Record(offset, kind, value)
	}
}
