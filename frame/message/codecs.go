package message

import (
	"reflect"
	"strconv"

	"github.com/beijian128/bytestream/frame/bytestream"
	"github.com/beijian128/bytestream/frame/logiclong"
)

// ------------------------------------------------------------------------------

type boolCodec struct{}

func (boolCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	return s.WriteBool(v.Bool())
}

func (boolCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	b, _, err := s.ReadBool()
	if err != nil {
		return err
	}
	v.SetBool(b)
	return nil
}

func (boolCodec) describe(d *describer) { d.WriteString("Bool") }

// ------------------------------------------------------------------------------

type intWire uint8

const (
	wireFixed intWire = iota
	wireVInt
	wireInt24
)

type intCodec struct {
	kind reflect.Kind
	wire intWire
	le   bool
}

func newIntCodec(t reflect.Type, o fieldOptions) (codec, error) {
	if o.ref || o.compressed || o.count != countInt32 {
		return nil, &UnsupportedTypeError{Type: t, Reason: "string or sequence option on an integer"}
	}
	c := &intCodec{kind: t.Kind(), le: o.le}
	switch {
	case o.vint:
		if c.kind != reflect.Int32 {
			return nil, &UnsupportedTypeError{Type: t, Reason: "vint needs int32"}
		}
		c.wire = wireVInt
	case o.int24:
		if c.kind != reflect.Int32 && c.kind != reflect.Uint32 {
			return nil, &UnsupportedTypeError{Type: t, Reason: "int24 needs int32 or uint32"}
		}
		if o.le {
			return nil, &UnsupportedTypeError{Type: t, Reason: "int24 is big-endian only"}
		}
		c.wire = wireInt24
	case o.le && (c.kind == reflect.Int8 || c.kind == reflect.Uint8):
		return nil, &UnsupportedTypeError{Type: t, Reason: "le on a single byte"}
	}
	return c, nil
}

func (c *intCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	switch c.wire {
	case wireVInt:
		return s.WriteVInt(int32(v.Int()))
	case wireInt24:
		if c.kind == reflect.Int32 {
			return s.WriteInt24(int32(v.Int()))
		}
		return s.WriteUint24(uint32(v.Uint()))
	}

	switch c.kind {
	case reflect.Int8:
		return s.WriteInt8(int8(v.Int()))
	case reflect.Uint8:
		return s.WriteUint8(uint8(v.Uint()))
	case reflect.Int16:
		if c.le {
			return s.WriteInt16LE(int16(v.Int()))
		}
		return s.WriteInt16(int16(v.Int()))
	case reflect.Uint16:
		if c.le {
			return s.WriteUint16LE(uint16(v.Uint()))
		}
		return s.WriteUint16(uint16(v.Uint()))
	case reflect.Int32:
		if c.le {
			return s.WriteInt32LE(int32(v.Int()))
		}
		return s.WriteInt32(int32(v.Int()))
	case reflect.Uint32:
		if c.le {
			return s.WriteUint32LE(uint32(v.Uint()))
		}
		return s.WriteUint32(uint32(v.Uint()))
	case reflect.Int64:
		if c.le {
			return s.WriteInt64LE(v.Int())
		}
		return s.WriteInt64(v.Int())
	default:
		if c.le {
			return s.WriteUint64LE(v.Uint())
		}
		return s.WriteUint64(v.Uint())
	}
}

func (c *intCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	if c.kind >= reflect.Int8 && c.kind <= reflect.Int64 {
		n, err := c.readInt(s)
		if err != nil {
			return err
		}
		v.SetInt(n)
		return nil
	}
	n, err := c.readUint(s)
	if err != nil {
		return err
	}
	v.SetUint(n)
	return nil
}

func (c *intCodec) readInt(s *bytestream.ByteStream) (int64, error) {
	var (
		n   int64
		err error
	)
	switch {
	case c.wire == wireVInt:
		var x int32
		x, err = s.ReadVInt()
		n = int64(x)
	case c.wire == wireInt24:
		var x int32
		x, err = s.ReadInt24()
		n = int64(x)
	case c.kind == reflect.Int8:
		var x int8
		x, err = s.ReadInt8()
		n = int64(x)
	case c.kind == reflect.Int16:
		var x int16
		if c.le {
			x, err = s.ReadInt16LE()
		} else {
			x, err = s.ReadInt16()
		}
		n = int64(x)
	case c.kind == reflect.Int32:
		var x int32
		if c.le {
			x, err = s.ReadInt32LE()
		} else {
			x, err = s.ReadInt32()
		}
		n = int64(x)
	default:
		if c.le {
			n, err = s.ReadInt64LE()
		} else {
			n, err = s.ReadInt64()
		}
	}
	return n, err
}

func (c *intCodec) readUint(s *bytestream.ByteStream) (uint64, error) {
	var (
		n   uint64
		err error
	)
	switch {
	case c.wire == wireInt24:
		var x uint32
		x, err = s.ReadUint24()
		n = uint64(x)
	case c.kind == reflect.Uint8:
		var x uint8
		x, err = s.ReadUint8()
		n = uint64(x)
	case c.kind == reflect.Uint16:
		var x uint16
		if c.le {
			x, err = s.ReadUint16LE()
		} else {
			x, err = s.ReadUint16()
		}
		n = uint64(x)
	case c.kind == reflect.Uint32:
		var x uint32
		if c.le {
			x, err = s.ReadUint32LE()
		} else {
			x, err = s.ReadUint32()
		}
		n = uint64(x)
	default:
		if c.le {
			n, err = s.ReadUint64LE()
		} else {
			n, err = s.ReadUint64()
		}
	}
	return n, err
}

var intNames = map[reflect.Kind]string{
	reflect.Int8: "Int8", reflect.Uint8: "Uint8",
	reflect.Int16: "Int16", reflect.Uint16: "Uint16",
	reflect.Int32: "Int32", reflect.Uint32: "Uint32",
	reflect.Int64: "Int64", reflect.Uint64: "Uint64",
}

func (c *intCodec) describe(d *describer) {
	switch c.wire {
	case wireVInt:
		d.WriteString("VInt")
		return
	case wireInt24:
		if c.kind == reflect.Int32 {
			d.WriteString("Int24")
		} else {
			d.WriteString("Uint24")
		}
		return
	}
	d.WriteString(intNames[c.kind])
	if c.le {
		d.WriteString("LE")
	}
}

// ------------------------------------------------------------------------------

type stringWire uint8

const (
	wireString stringWire = iota
	wireStringReference
	wireCompressed
)

type stringCodec struct {
	wire stringWire
}

func newStringCodec(t reflect.Type, o fieldOptions) (codec, error) {
	if o.vint || o.int24 || o.le || o.count != countInt32 {
		return nil, &UnsupportedTypeError{Type: t, Reason: "integer or sequence option on a string"}
	}
	switch {
	case o.ref:
		return stringCodec{wire: wireStringReference}, nil
	case o.compressed:
		return stringCodec{wire: wireCompressed}, nil
	}
	return stringCodec{wire: wireString}, nil
}

func (c stringCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	switch c.wire {
	case wireStringReference:
		return s.WriteStringReference(v.String())
	case wireCompressed:
		return s.WriteCompressedString(v.String())
	}
	return s.WriteString(v.String())
}

func (c stringCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	var (
		str string
		err error
	)
	switch c.wire {
	case wireStringReference:
		str, err = s.ReadStringReference()
	case wireCompressed:
		str, err = s.ReadCompressedString()
	default:
		str, err = s.ReadString()
	}
	if err != nil {
		return err
	}
	v.SetString(str)
	return nil
}

func (c stringCodec) describe(d *describer) {
	switch c.wire {
	case wireStringReference:
		d.WriteString("StringReference")
	case wireCompressed:
		d.WriteString("CompressedString")
	default:
		d.WriteString("String")
	}
}

// ------------------------------------------------------------------------------

type logicLongCodec struct{}

func (logicLongCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	return s.WriteLogicLong(v.Interface().(logiclong.LogicLong))
}

func (logicLongCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	l, err := s.ReadLogicLong()
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(l))
	return nil
}

func (logicLongCodec) describe(d *describer) { d.WriteString("LogicLong") }

// ------------------------------------------------------------------------------

// messageCodec *T 实现了 Message
type messageCodec struct {
	typ reflect.Type
}

func (c *messageCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	if !v.CanAddr() {
		tmp := reflect.New(c.typ)
		tmp.Elem().Set(v)
		v = tmp.Elem()
	}
	return v.Addr().Interface().(Message).Encode(s)
}

func (c *messageCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	return v.Addr().Interface().(Message).Decode(s)
}

func (c *messageCodec) describe(d *describer) {
	d.WriteString(c.typ.Name())
	d.WriteString("(Message)")
}

// ------------------------------------------------------------------------------

// pointerCodec 指针不是可选值: 编码 nil 报错, 解码时按需分配
type pointerCodec struct {
	elemType reflect.Type
	elem     codec
}

func (c *pointerCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	if v.IsNil() {
		return ErrNilValue
	}
	return c.elem.encode(s, v.Elem())
}

func (c *pointerCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	if v.IsNil() {
		v.Set(reflect.New(c.elemType))
	}
	return c.elem.decode(s, v.Elem())
}

func (c *pointerCodec) describe(d *describer) {
	c.elem.describe(d)
}

// ------------------------------------------------------------------------------

type bytesCodec struct {
	count countKind
}

func (c *bytesCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	if err := writeCount(s, c.count, v.Len()); err != nil {
		return err
	}
	return s.WriteBytes(v.Bytes())
}

func (c *bytesCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	n, err := readCount(s, c.count)
	if err != nil {
		return err
	}
	if n == 0 {
		v.SetBytes(nil)
		return nil
	}
	p, err := s.ReadBytes(n)
	if err != nil {
		return err
	}
	v.SetBytes(p)
	return nil
}

func (c *bytesCodec) describe(d *describer) {
	d.WriteString("Bytes")
	d.writeCount(c.count)
}

// ------------------------------------------------------------------------------

type sliceCodec struct {
	typ   reflect.Type
	count countKind
	elem  codec
}

func (c *sliceCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	n := v.Len()
	if err := writeCount(s, c.count, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := c.elem.encode(s, v.Index(i)); err != nil {
			return wrapField(err, indexSeg(i))
		}
	}
	return nil
}

func (c *sliceCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	n, err := readCount(s, c.count)
	if err != nil {
		return err
	}
	if n == 0 {
		v.Set(reflect.Zero(c.typ))
		return nil
	}
	out := reflect.MakeSlice(c.typ, n, n)
	for i := 0; i < n; i++ {
		if err := c.elem.decode(s, out.Index(i)); err != nil {
			return wrapField(err, indexSeg(i))
		}
	}
	v.Set(out)
	return nil
}

func (c *sliceCodec) describe(d *describer) {
	d.WriteString("[")
	c.elem.describe(d)
	d.WriteString("]")
	d.writeCount(c.count)
}

// ------------------------------------------------------------------------------

type arrayCodec struct {
	length int
	elem   codec
}

func (c *arrayCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	for i := 0; i < c.length; i++ {
		if err := c.elem.encode(s, v.Index(i)); err != nil {
			return wrapField(err, indexSeg(i))
		}
	}
	return nil
}

func (c *arrayCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	for i := 0; i < c.length; i++ {
		if err := c.elem.decode(s, v.Index(i)); err != nil {
			return wrapField(err, indexSeg(i))
		}
	}
	return nil
}

func (c *arrayCodec) describe(d *describer) {
	d.WriteString("[" + strconv.Itoa(c.length) + "]")
	c.elem.describe(d)
}

// ------------------------------------------------------------------------------

type structField struct {
	index int
	name  string
	codec codec
}

// structCodec 字段按声明顺序编解码
type structCodec struct {
	name   string
	fields []structField
}

func (c *structCodec) encode(s *bytestream.ByteStream, v reflect.Value) error {
	for _, f := range c.fields {
		if err := f.codec.encode(s, v.Field(f.index)); err != nil {
			return wrapField(err, f.name)
		}
	}
	return nil
}

func (c *structCodec) decode(s *bytestream.ByteStream, v reflect.Value) error {
	for _, f := range c.fields {
		if err := f.codec.decode(s, v.Field(f.index)); err != nil {
			return wrapField(err, f.name)
		}
	}
	return nil
}

func (c *structCodec) describe(d *describer) {
	d.WriteString(c.name)
	if !d.enter(c) {
		return
	}
	d.WriteString("{")
	for i, f := range c.fields {
		if i > 0 {
			d.WriteString(" ")
		}
		d.WriteString(f.name + ":")
		f.codec.describe(d)
	}
	d.WriteString("}")
}
