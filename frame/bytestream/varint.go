package bytestream

// 变长整数
//
//	首字节:   | cont | sign | 6 位 |
//	后续字节: | cont | 7 位        |   最多 4 个
//
// 值按补码存放, 解码时若累计不足 32 位且符号位为 1, 高位全部补 1.

const (
	// MaxVIntLen 一个变长整数最多占用的字节数
	MaxVIntLen = 5

	// OverlongVInt 第 5 个字节仍带继续标志时 ReadVInt 返回的值.
	// 它和合法编码的 -1 无法区分, 保留这一行为以兼容现有数据.
	OverlongVInt int32 = -1
)

// ReadVInt 读变长整数
func (s *ByteStream) ReadVInt() (int32, error) {
	off := s.offset
	v, err := s.readVInt()
	if err == nil {
		s.record(off, "VInt", v)
	}
	return v, err
}

func (s *ByteStream) readVInt() (int32, error) {
	b, err := s.u8()
	if err != nil {
		return 0, err
	}
	sign := b&0x40 != 0
	v := uint32(b & 0x3f)
	shift := uint(6)

	for i := 1; i < MaxVIntLen && b&0x80 != 0; i++ {
		if b, err = s.u8(); err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << shift
		shift += 7
	}

	if b&0x80 != 0 {
		return OverlongVInt, nil
	}
	if sign && shift < 32 {
		v |= 0xffffffff << shift
	}
	return int32(v), nil
}

// WriteVInt 写变长整数
func (s *ByteStream) WriteVInt(v int32) error {
	var buf [MaxVIntLen]byte
	n := putVInt(buf[:], v)
	copy(s.reserve(n), buf[:n])
	return nil
}

// VIntLen v 编码后的字节数
func VIntLen(v int32) int {
	folded := (v ^ (v >> 31)) >> 6
	n := 1
	for folded != 0 {
		folded >>= 7
		n++
	}
	return n
}

// AppendVInt 把 v 的编码追加到 dst
func AppendVInt(dst []byte, v int32) []byte {
	var buf [MaxVIntLen]byte
	n := putVInt(buf[:], v)
	return append(dst, buf[:n]...)
}

func putVInt(p []byte, v int32) int {
	// folded 只用来决定字节数, 非负数不变, 负数取反
	folded := (v ^ (v >> 31)) >> 6
	first := byte((v>>25)&0x40) | byte(v&0x3f)
	v >>= 6

	if folded == 0 {
		p[0] = first
		return 1
	}
	p[0] = first | 0x80

	n := 1
	for {
		folded >>= 7
		b := byte(v & 0x7f)
		v >>= 7
		if folded != 0 {
			p[n] = b | 0x80
			n++
			continue
		}
		p[n] = b
		return n + 1
	}
}
