package message

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/beijian128/bytestream/frame/bytestream"
)

// Repr 枚举判别值的宽度, 符号和字节序
type Repr struct {
	size   int
	signed bool
	le     bool
}

// 常用的判别值表示, 默认大端
var (
	U8  = Repr{size: 1}
	I8  = Repr{size: 1, signed: true}
	U16 = Repr{size: 2}
	I16 = Repr{size: 2, signed: true}
	U32 = Repr{size: 4}
	I32 = Repr{size: 4, signed: true}
)

// LittleEndian 返回小端版本
func (r Repr) LittleEndian() Repr {
	r.le = true
	return r
}

func (r Repr) String() string {
	name := "U"
	if r.signed {
		name = "I"
	}
	name += strconv.Itoa(r.size * 8)
	if r.le && r.size > 1 {
		name += "LE"
	}
	return name
}

func (r Repr) contains(d int64) bool {
	bits := uint(r.size * 8)
	if r.signed {
		return d >= -1<<(bits-1) && d <= 1<<(bits-1)-1
	}
	return d >= 0 && uint64(d) <= 1<<bits-1
}

func (r Repr) write(s *bytestream.ByteStream, d int64) error {
	switch {
	case r.size == 1:
		return s.WriteUint8(uint8(d))
	case r.size == 2 && r.le:
		return s.WriteUint16LE(uint16(d))
	case r.size == 2:
		return s.WriteUint16(uint16(d))
	case r.le:
		return s.WriteUint32LE(uint32(d))
	default:
		return s.WriteUint32(uint32(d))
	}
}

func (r Repr) read(s *bytestream.ByteStream) (int64, error) {
	switch r.size {
	case 1:
		if r.signed {
			v, err := s.ReadInt8()
			return int64(v), err
		}
		v, err := s.ReadUint8()
		return int64(v), err
	case 2:
		var (
			v   uint16
			err error
		)
		if r.le {
			v, err = s.ReadUint16LE()
		} else {
			v, err = s.ReadUint16()
		}
		if r.signed {
			return int64(int16(v)), err
		}
		return int64(v), err
	default:
		var (
			v   uint32
			err error
		)
		if r.le {
			v, err = s.ReadUint32LE()
		} else {
			v, err = s.ReadUint32()
		}
		if r.signed {
			return int64(int32(v)), err
		}
		return int64(v), err
	}
}

type variant[V any] struct {
	disc  int64
	typ   reflect.Type
	newFn func() V
}

// Enum 和类型: 接口 V 的一组具体实现, 线上格式为 [判别值][变体的字段...].
//
// 变体通常是指向结构体的指针, 无字段的变体用空结构体.
// 注册完成后并发只读是安全的.
type Enum[V any] struct {
	name string
	repr Repr

	mu     sync.RWMutex
	byDisc map[int64]*variant[V]
	byType map[reflect.Type]*variant[V]
}

// 接口类型 -> 枚举, 反射编解码器遇到接口类型的字段时查这里
var (
	enumMutex sync.RWMutex
	enums     = make(map[reflect.Type]codec)
	variants  = make(map[reflect.Type]string) // 变体类型 -> 所属枚举名
)

// NewEnum 定义接口 V 对应的枚举并登记, 同一个接口只能定义一次.
// 一般在包初始化时调用, 出错直接 panic.
func NewEnum[V any](repr Repr) *Enum[V] {
	t := reflect.TypeFor[V]()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("message: enum type %v must be an interface", t))
	}
	if repr.size != 1 && repr.size != 2 && repr.size != 4 {
		panic(fmt.Sprintf("message: enum %v has invalid repr", t))
	}

	e := &Enum[V]{
		name:   t.Name(),
		repr:   repr,
		byDisc: make(map[int64]*variant[V]),
		byType: make(map[reflect.Type]*variant[V]),
	}

	enumMutex.Lock()
	defer enumMutex.Unlock()
	if _, ok := enums[t]; ok {
		panic(fmt.Sprintf("message: enum %v is already defined", t))
	}
	enums[t] = e
	return e
}

// variantEnum t 登记为某个枚举的变体时返回该枚举名
func variantEnum(t reflect.Type) (string, bool) {
	enumMutex.RLock()
	defer enumMutex.RUnlock()
	name, ok := variants[t]
	return name, ok
}

func enumOf(t reflect.Type) (codec, bool) {
	enumMutex.RLock()
	defer enumMutex.RUnlock()
	e, ok := enums[t]
	return e, ok
}

// Register 登记判别值 disc 对应的变体, newFn 返回一个零值变体. 返回 e 以便链式调用.
func (e *Enum[V]) Register(disc int64, newFn func() V) *Enum[V] {
	if !e.repr.contains(disc) {
		panic(fmt.Sprintf("message: enum %s discriminant %d does not fit %v", e.name, disc, e.repr))
	}
	sample := reflect.ValueOf(newFn())
	if !sample.IsValid() || (sample.Kind() == reflect.Pointer && sample.IsNil()) {
		panic(fmt.Sprintf("message: enum %s variant %d constructor returns nil", e.name, disc))
	}
	typ := sample.Type()

	e.mu.Lock()
	defer e.mu.Unlock()
	if used, ok := e.byDisc[disc]; ok {
		panic(fmt.Sprintf("message: enum %s discriminant %d is already used by %v", e.name, disc, used.typ))
	}
	if used, ok := e.byType[typ]; ok {
		panic(fmt.Sprintf("message: enum %s variant %v is already registered as %d", e.name, typ, used.disc))
	}
	vr := &variant[V]{disc: disc, typ: typ, newFn: newFn}
	e.byDisc[disc] = vr
	e.byType[typ] = vr

	enumMutex.Lock()
	if _, ok := variants[typ]; !ok {
		variants[typ] = e.name
	}
	enumMutex.Unlock()
	return e
}

// Name ...
func (e *Enum[V]) Name() string {
	return e.name
}

// Discriminant v 对应的判别值
func (e *Enum[V]) Discriminant(v V) (int64, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	vr, ok := e.byType[rv.Type()]
	if !ok {
		return 0, false
	}
	return vr.disc, true
}

// Encode 写判别值, 然后按顺序写变体的字段
func (e *Enum[V]) Encode(s *bytestream.ByteStream, v V) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return ErrNilValue
	}
	e.mu.RLock()
	vr, ok := e.byType[rv.Type()]
	e.mu.RUnlock()
	if !ok {
		return &UnsupportedTypeError{Type: rv.Type(), Reason: "not a variant of enum " + e.name}
	}

	c, err := codecOf(vr.typ)
	if err != nil {
		return err
	}
	if err := e.repr.write(s, vr.disc); err != nil {
		return err
	}
	if err := c.encode(s, rv); err != nil {
		return wrapField(err, variantName(vr.typ))
	}
	return nil
}

// Decode 读判别值, 找到对应的变体再按顺序读字段. 未登记的判别值返回 *UnknownDiscriminantError.
func (e *Enum[V]) Decode(s *bytestream.ByteStream) (V, error) {
	var zero V
	disc, err := e.repr.read(s)
	if err != nil {
		return zero, err
	}
	e.mu.RLock()
	vr, ok := e.byDisc[disc]
	e.mu.RUnlock()
	if !ok {
		return zero, &UnknownDiscriminantError{Enum: e.name, Value: disc}
	}

	c, err := codecOf(vr.typ)
	if err != nil {
		return zero, err
	}
	v := vr.newFn()
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if err := c.decode(s, rv); err != nil {
			return zero, wrapField(err, variantName(vr.typ))
		}
		return v, nil
	}

	tmp := reflect.New(vr.typ).Elem()
	tmp.Set(rv)
	if err := c.decode(s, tmp); err != nil {
		return zero, wrapField(err, variantName(vr.typ))
	}
	return tmp.Interface().(V), nil
}

func (e *Enum[V]) encode(s *bytestream.ByteStream, v reflect.Value) error {
	if v.IsNil() {
		return ErrNilValue
	}
	return e.Encode(s, v.Interface().(V))
}

func (e *Enum[V]) decode(s *bytestream.ByteStream, v reflect.Value) error {
	x, err := e.Decode(s)
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(x))
	return nil
}

func (e *Enum[V]) describe(d *describer) {
	d.WriteString(e.name)
	if !d.enter(e) {
		return
	}

	e.mu.RLock()
	vrs := make([]*variant[V], 0, len(e.byDisc))
	for _, vr := range e.byDisc {
		vrs = append(vrs, vr)
	}
	e.mu.RUnlock()
	slices.SortFunc(vrs, func(a, b *variant[V]) int { return cmp.Compare(a.disc, b.disc) })

	d.WriteString("<" + e.repr.String() + ">{")
	for i, vr := range vrs {
		if i > 0 {
			d.WriteString(" ")
		}
		d.WriteString(strconv.FormatInt(vr.disc, 10) + ":")
		if c, err := codecOf(vr.typ); err != nil {
			d.WriteString("?")
		} else {
			c.describe(d)
		}
	}
	d.WriteString("}")
}

func variantName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "<variant>"
	}
	return t.Name()
}

// EncodeDiscriminant 手写 Message 时单独写判别值
func EncodeDiscriminant(s *bytestream.ByteStream, repr Repr, disc int64) error {
	if !repr.contains(disc) {
		return errors.Wrapf(bytestream.ErrValueOutOfRange, "discriminant %d as %v", disc, repr)
	}
	return repr.write(s, disc)
}

// DecodeDiscriminant 与 EncodeDiscriminant 对应
func DecodeDiscriminant(s *bytestream.ByteStream, repr Repr) (int64, error) {
	return repr.read(s)
}
