package bytestream

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beijian128/bytestream/frame/logiclong"
)

func encodeSample(t *testing.T) []byte {
	t.Helper()
	s := New()
	require.NoError(t, s.WriteInt32(7))
	require.NoError(t, s.WriteString("abc"))
	require.NoError(t, s.WriteVInt(-65))
	require.NoError(t, s.WriteBool(true))
	require.NoError(t, s.WriteLogicLong(logiclong.New(0, 1)))
	return s.Bytes()
}

func decodeSample(t *testing.T, s *ByteStream) {
	t.Helper()
	_, err := s.ReadInt32()
	require.NoError(t, err)
	_, err = s.ReadString()
	require.NoError(t, err)
	_, err = s.ReadVInt()
	require.NoError(t, err)
	_, _, err = s.ReadBool()
	require.NoError(t, err)
	_, err = s.ReadLogicLong()
	require.NoError(t, err)
}

func TestTextTranscript(t *testing.T) {
	var tr TextTranscript
	decodeSample(t, NewFromBuffer(encodeSample(t), WithTranscript(&tr)))

	want := "(Int32): 7\n" +
		"(String): abc\n" +
		"(VInt): -65\n" +
		"(Bool): true\n" +
		"(LogicLong): #2PP\n"
	assert.Equal(t, want, tr.String())

	tr.Reset()
	assert.Empty(t, tr.String())
}

func TestTranscriptFunc(t *testing.T) {
	var offsets []int
	var kinds []string
	s := NewFromBuffer(encodeSample(t))
	s.SetTranscript(TranscriptFunc(func(offset int, kind string, _ any) {
		offsets = append(offsets, offset)
		kinds = append(kinds, kind)
	}))
	decodeSample(t, s)

	assert.Equal(t, []int{0, 4, 11, 13, 14}, offsets)
	assert.Equal(t, []string{"Int32", "String", "VInt", "Bool", "LogicLong"}, kinds)
}

// 失败的读取不产生记录, 也不影响解码结果
func TestTranscriptFailedRead(t *testing.T) {
	var tr TextTranscript
	s := NewFromBuffer([]byte{0x00, 0x01}, WithTranscript(&tr))
	_, err := s.ReadInt32()
	assert.ErrorIs(t, err, ErrEndOfBuffer)
	assert.Empty(t, tr.String())

	s.SetTranscript(nil)
	assert.Nil(t, s.Transcript())
}

func TestLogrusTranscript(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	decodeSample(t, NewFromBuffer(encodeSample(t), WithTranscript(LogrusTranscript(logger))))

	entries := hook.AllEntries()
	require.Len(t, entries, 5)
	assert.Equal(t, logrus.TraceLevel, entries[0].Level)
	assert.Equal(t, "Int32", entries[0].Data["kind"])
	assert.Equal(t, int32(7), entries[0].Data["value"])
	assert.Equal(t, 4, entries[1].Data["offset"])
	assert.Equal(t, "abc", entries[1].Data["value"])

	// 级别不够时什么都不输出
	hook.Reset()
	logger.SetLevel(logrus.DebugLevel)
	decodeSample(t, NewFromBuffer(encodeSample(t), WithTranscript(LogrusTranscript(logger))))
	assert.Empty(t, hook.AllEntries())
}
