package message

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/beijian128/bytestream/frame/bytestream"
	"github.com/beijian128/bytestream/frame/logiclong"
)

// codec 一种类型 (加上字段选项) 的编解码器.
// decode 的 v 必须可寻址.
type codec interface {
	encode(s *bytestream.ByteStream, v reflect.Value) error
	decode(s *bytestream.ByteStream, v reflect.Value) error
	describe(d *describer)
}

var (
	messageType   = reflect.TypeFor[Message]()
	logicLongType = reflect.TypeFor[logiclong.LogicLong]()
)

// 不带字段选项的编解码器按类型缓存
var (
	codecMutex sync.RWMutex
	codecs     = make(map[reflect.Type]codec)
)

func codecOf(t reflect.Type) (codec, error) {
	codecMutex.RLock()
	c, ok := codecs[t]
	codecMutex.RUnlock()
	if ok {
		return c, nil
	}

	codecMutex.Lock()
	defer codecMutex.Unlock()

	b := &builder{}
	c, err := b.build(t, fieldOptions{})
	if err != nil {
		// 构建失败时撤销这一轮加入缓存的半成品
		for _, added := range b.added {
			delete(codecs, added)
		}
		return nil, topLevel(t, err)
	}
	codecs[t] = c
	return c, nil
}

// builder 持有 codecMutex 写锁时使用
type builder struct {
	added []reflect.Type
}

func (b *builder) build(t reflect.Type, o fieldOptions) (codec, error) {
	if o.isZero() {
		if c, ok := codecs[t]; ok {
			return c, nil
		}
	}

	switch {
	case t == logicLongType:
		if err := o.only(t); err != nil {
			return nil, err
		}
		return logicLongCodec{}, nil

	case t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(messageType):
		if err := o.only(t); err != nil {
			return nil, err
		}
		c := &messageCodec{typ: t}
		b.cache(t, c)
		return c, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		if err := o.only(t); err != nil {
			return nil, err
		}
		return boolCodec{}, nil

	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return newIntCodec(t, o)

	case reflect.String:
		return newStringCodec(t, o)

	case reflect.Pointer:
		elem, err := b.build(t.Elem(), o)
		if err != nil {
			return nil, err
		}
		return &pointerCodec{elemType: t.Elem(), elem: elem}, nil

	case reflect.Slice:
		if o.count == countNone {
			return nil, &UnsupportedTypeError{Type: t, Reason: "count=none needs a fixed length array"}
		}
		if t.Elem().Kind() == reflect.Uint8 && o.elemOptions().isZero() {
			return &bytesCodec{count: o.count}, nil
		}
		elem, err := b.build(t.Elem(), o.elemOptions())
		if err != nil {
			return nil, err
		}
		return &sliceCodec{typ: t, count: o.count, elem: elem}, nil

	case reflect.Array:
		if o.count != countInt32 && o.count != countNone {
			return nil, &UnsupportedTypeError{Type: t, Reason: "arrays have no count prefix"}
		}
		elem, err := b.build(t.Elem(), o.elemOptions())
		if err != nil {
			return nil, err
		}
		return &arrayCodec{length: t.Len(), elem: elem}, nil

	case reflect.Struct:
		if err := o.only(t); err != nil {
			return nil, err
		}
		return b.buildStruct(t)

	case reflect.Interface:
		if err := o.only(t); err != nil {
			return nil, err
		}
		if e, ok := enumOf(t); ok {
			return e, nil
		}
		return nil, &UnsupportedTypeError{Type: t, Reason: "interface is not a registered enum"}
	}

	return nil, &UnsupportedTypeError{Type: t}
}

func (b *builder) cache(t reflect.Type, c codec) {
	codecs[t] = c
	b.added = append(b.added, t)
}

func (b *builder) buildStruct(t reflect.Type) (codec, error) {
	c := &structCodec{name: t.Name()}
	if c.name == "" {
		c.name = t.String()
	}
	// 先放进缓存, 递归类型 (经由指针或切片引用自身) 会直接拿到它
	b.cache(t, c)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup("bytestream")
		if ok && tag == "-" {
			continue
		}
		o, err := parseOptions(tag)
		if err != nil {
			return nil, wrapField(&UnsupportedTypeError{Type: f.Type, Reason: err.Error()}, f.Name)
		}
		fc, err := b.build(f.Type, o)
		if err != nil {
			return nil, wrapField(err, f.Name)
		}
		c.fields = append(c.fields, structField{index: i, name: f.Name, codec: fc})
	}
	return c, nil
}

type countKind uint8

const (
	countInt32 countKind = iota
	countVInt
	countUint8
	countUint16
	countNone
)

var countNames = map[string]countKind{
	"int32":  countInt32,
	"vint":   countVInt,
	"uint8":  countUint8,
	"uint16": countUint16,
	"none":   countNone,
}

// fieldOptions bytestream 标签, 逗号分隔
type fieldOptions struct {
	vint       bool
	int24      bool
	le         bool
	ref        bool
	compressed bool
	count      countKind
}

func parseOptions(tag string) (fieldOptions, error) {
	var o fieldOptions
	if tag == "" {
		return o, nil
	}
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "vint":
			o.vint = true
		case opt == "int24":
			o.int24 = true
		case opt == "le":
			o.le = true
		case opt == "ref":
			o.ref = true
		case opt == "compressed":
			o.compressed = true
		case strings.HasPrefix(opt, "count="):
			k, ok := countNames[strings.TrimPrefix(opt, "count=")]
			if !ok {
				return o, errors.Errorf("unknown count kind %q", opt)
			}
			o.count = k
		default:
			return o, errors.Errorf("unknown option %q", opt)
		}
	}
	if o.vint && (o.int24 || o.le) {
		return o, errors.New("vint excludes int24 and le")
	}
	if o.ref && o.compressed {
		return o, errors.New("ref excludes compressed")
	}
	return o, nil
}

func (o fieldOptions) isZero() bool {
	return o == fieldOptions{}
}

// elemOptions 切片和数组把除 count 以外的选项交给元素
func (o fieldOptions) elemOptions() fieldOptions {
	o.count = countInt32
	return o
}

// only 该类型不接受任何选项
func (o fieldOptions) only(t reflect.Type) error {
	if !o.isZero() {
		return &UnsupportedTypeError{Type: t, Reason: "field options not applicable"}
	}
	return nil
}

func writeCount(s *bytestream.ByteStream, k countKind, n int) error {
	switch k {
	case countVInt:
		if n > math.MaxInt32 {
			break
		}
		return s.WriteVInt(int32(n))
	case countUint8:
		if n > math.MaxUint8 {
			break
		}
		return s.WriteUint8(uint8(n))
	case countUint16:
		if n > math.MaxUint16 {
			break
		}
		return s.WriteUint16(uint16(n))
	default:
		if n > math.MaxInt32 {
			break
		}
		return s.WriteInt32(int32(n))
	}
	return errors.Wrapf(bytestream.ErrValueOutOfRange, "count %d", n)
}

func readCount(s *bytestream.ByteStream, k countKind) (int, error) {
	var n int64
	switch k {
	case countVInt:
		v, err := s.ReadVInt()
		if err != nil {
			return 0, err
		}
		n = int64(v)
	case countUint8:
		v, err := s.ReadUint8()
		if err != nil {
			return 0, err
		}
		n = int64(v)
	case countUint16:
		v, err := s.ReadUint16()
		if err != nil {
			return 0, err
		}
		n = int64(v)
	default:
		v, err := s.ReadInt32()
		if err != nil {
			return 0, err
		}
		n = int64(v)
	}
	if err := checkCount(s, n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// checkCount 每个元素至少占一个字节, 个数不可能超过剩余字节数
func checkCount(s *bytestream.ByteStream, n int64) error {
	if n < 0 || n > int64(s.Remaining()) {
		return errors.Wrapf(ErrInvalidCount, "count %d, %d bytes remaining", n, s.Remaining())
	}
	return nil
}

func indexSeg(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
