package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beijian128/bytestream/frame/bytestream"
	"github.com/beijian128/bytestream/frame/logiclong"
)

// Command 三个变体, 判别值为 8 位大端
type Command interface {
	isCommand()
}

type Idle struct{}

type Move struct {
	X, Y int16
}

type Chat struct {
	Channel uint8
	Text    string
}

func (Idle) isCommand()  {}
func (*Move) isCommand() {}
func (*Chat) isCommand() {}

var commands = NewEnum[Command](U8).
	Register(0, func() Command { return Idle{} }).
	Register(1, func() Command { return &Move{} }).
	Register(2, func() Command { return &Chat{} })

func TestEnumDecodeVariant(t *testing.T) {
	data := []byte{0x02, 0x07, 0x00, 0x00, 0x00, 0x02, 'h', 'i'}
	s := bytestream.NewFromBuffer(data)
	cmd, err := commands.Decode(s)
	require.NoError(t, err)
	assert.Equal(t, &Chat{Channel: 7, Text: "hi"}, cmd)
	assert.Equal(t, 0, s.Remaining())

	disc, ok := commands.Discriminant(cmd)
	assert.True(t, ok)
	assert.Equal(t, int64(2), disc)
}

func TestEnumUnknownDiscriminant(t *testing.T) {
	_, err := commands.Decode(bytestream.NewFromBuffer([]byte{0x05, 0x00}))
	var ude *UnknownDiscriminantError
	require.ErrorAs(t, err, &ude)
	assert.Equal(t, int64(5), ude.Value)
	assert.Equal(t, "Command", ude.Enum)
}

func TestEnumRoundTrip(t *testing.T) {
	tests := []struct {
		cmd  Command
		want []byte
	}{
		{Idle{}, []byte{0x00}},
		{&Move{X: 1, Y: -1}, []byte{0x01, 0x00, 0x01, 0xff, 0xff}},
		{&Chat{Text: ""}, []byte{0x02, 0x00, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, tt := range tests {
		s := bytestream.New()
		require.NoError(t, commands.Encode(s, tt.cmd))
		assert.Equal(t, tt.want, s.Bytes())

		got, err := commands.Decode(bytestream.NewFromBuffer(s.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, tt.cmd, got)
	}
}

func TestEnumEncodeErrors(t *testing.T) {
	s := bytestream.New()
	assert.ErrorIs(t, commands.Encode(s, nil), ErrNilValue)

	var m *Move
	assert.ErrorIs(t, commands.Encode(s, m), ErrNilValue)

	// 登记的是 Idle, 不是 *Idle
	var ut *UnsupportedTypeError
	assert.ErrorAs(t, commands.Encode(s, &Idle{}), &ut)
	assert.Equal(t, 0, s.Len())
}

func TestEncodeBareVariant(t *testing.T) {
	var cmd Command = &Move{X: 1}

	// 接口类型在 any 中丢失
	_, err := Marshal(cmd)
	var ut *UnsupportedTypeError
	require.ErrorAs(t, err, &ut)
	assert.Contains(t, ut.Reason, "enum Command")

	_, err = Marshal(Idle{})
	assert.ErrorAs(t, err, &ut)

	data, err := Marshal(&cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00, 0x01, 0x00, 0x00}, data)

	var back Command
	require.NoError(t, Unmarshal(data, &back))
	assert.Equal(t, cmd, back)
}

// Shape 小端 16 位判别值
type Shape interface {
	Area() int64
}

type Circle struct {
	R int32
}

type Rect struct {
	W, H int32
}

func (c Circle) Area() int64 { return 3 * int64(c.R) * int64(c.R) }
func (r Rect) Area() int64   { return int64(r.W) * int64(r.H) }

var shapes = NewEnum[Shape](U16.LittleEndian()).
	Register(0x0102, func() Shape { return Circle{} }).
	Register(0x0304, func() Shape { return Rect{} })

func TestEnumLittleEndian(t *testing.T) {
	s := bytestream.New()
	require.NoError(t, shapes.Encode(s, Rect{W: 2, H: 3}))
	// 判别值小端, 字段仍按各自类型 (大端)
	assert.Equal(t, []byte{0x04, 0x03, 0, 0, 0, 2, 0, 0, 0, 3}, s.Bytes())

	got, err := shapes.Decode(bytestream.NewFromBuffer(s.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Rect{W: 2, H: 3}, got)
	assert.Equal(t, int64(6), got.Area())

	_, err = shapes.Decode(bytestream.NewFromBuffer([]byte{0x01, 0x02}))
	var ude *UnknownDiscriminantError
	assert.ErrorAs(t, err, &ude)
	assert.Equal(t, int64(0x0201), ude.Value)
}

// Outcome 有符号判别值
type Outcome interface {
	outcome()
}

type Lost struct{}
type Won struct {
	Stars uint8
}

func (Lost) outcome() {}
func (Won) outcome()  {}

var outcomes = NewEnum[Outcome](I8).
	Register(-1, func() Outcome { return Lost{} }).
	Register(1, func() Outcome { return Won{} })

func TestEnumSignedRepr(t *testing.T) {
	data, err := Marshal(struct{ O Outcome }{Lost{}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, data)

	var out struct{ O Outcome }
	require.NoError(t, Unmarshal([]byte{0x01, 0x03}, &out))
	assert.Equal(t, Won{Stars: 3}, out.O)
}

// Order 枚举作为结构体字段
type Order struct {
	Unit logiclong.LogicLong
	Cmd  Command
	Then []Command `bytestream:"count=uint8"`
}

func TestEnumField(t *testing.T) {
	in := Order{
		Unit: logiclong.New(1, 2),
		Cmd:  &Move{X: 3, Y: 4},
		Then: []Command{Idle{}, &Chat{Channel: 1, Text: "go"}},
	}
	data, err := Marshal(in)
	require.NoError(t, err)

	var out Order
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)

	_, err = Marshal(Order{})
	assert.ErrorIs(t, err, ErrNilValue)

	// 变体字段出错时路径包含变体名
	err = Unmarshal(data[:len(data)-1], &out)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Order.Then[1].Chat.Text", fe.Path)
}

func TestEnumRegisterPanics(t *testing.T) {
	type local interface{ local() }
	e := NewEnum[local](U8)
	assert.Panics(t, func() { NewEnum[local](U8) })
	assert.Panics(t, func() { e.Register(256, func() local { return nil }) })
	assert.Panics(t, func() { e.Register(1, func() local { return nil }) })
	assert.Panics(t, func() { NewEnum[Idle](U8) })

	assert.Panics(t, func() { commands.Register(1, func() Command { return Idle{} }) })
	assert.Panics(t, func() { commands.Register(9, func() Command { return &Move{} }) })
}

func TestReprRange(t *testing.T) {
	assert.True(t, U8.contains(255))
	assert.False(t, U8.contains(-1))
	assert.True(t, I8.contains(-128))
	assert.False(t, I8.contains(128))
	assert.True(t, U32.contains(1<<32-1))
	assert.False(t, U32.contains(1<<32))
	assert.True(t, I32.contains(-1<<31))
	assert.Equal(t, "U16LE", U16.LittleEndian().String())
	assert.Equal(t, "I8", I8.LittleEndian().String())
}

func TestDiscriminantHelpers(t *testing.T) {
	s := bytestream.New()
	require.NoError(t, EncodeDiscriminant(s, I16, -2))
	assert.ErrorIs(t, EncodeDiscriminant(s, U8, 300), bytestream.ErrValueOutOfRange)
	assert.Equal(t, []byte{0xff, 0xfe}, s.Bytes())

	d, err := DecodeDiscriminant(bytestream.NewFromBuffer(s.Bytes()), I16)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), d)
}
