package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beijian128/bytestream/frame/logiclong"
)

const sampleHex = "ac 04 00 00 00 04 63 6c 61 6e 00 00 00 09 00 2f c5 70"

func runTool(t *testing.T, args ...string) (string, *test.Hook, error) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	var out bytes.Buffer
	err := run(args, &out, logger)
	return out.String(), hook, err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"tag", []string{"tag", "9", "3130736", "0", "1"}, "#QGL8UPGR\n#2PP\n"},
		{"tag zero", []string{"tag", "0", "0"}, "#0\n"},
		{"id", []string{"id", "#qgl8upgr", "2pp"}, "#QGL8UPGR 9 3130736\n#2PP 0 1\n"},
		{"fix", []string{"fix", "qgl8-upgr"}, "#QGL8UPGR true\n"},
		{"vint encode", []string{"vint", "encode", "300"}, "ac 04\n"},
		{"vint decode", []string{"vint", "decode", "ac04", "00"}, "300 0\n"},
		{"encode", []string{"encode", "--layout", "vint,string,logiclong", "300", "clan", "#QGL8UPGR"}, sampleHex + "\n"},
		{"decode", []string{"decode", "--layout", "vint, string, logiclong", sampleHex},
			"(VInt): 300\n(String): clan\n(LogicLong): #QGL8UPGR\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runTool(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestVIntNegative(t *testing.T) {
	encoded, _, err := runTool(t, "vint", "encode", "--", "-65", "-1")
	require.NoError(t, err)

	out, _, err := runTool(t, "vint", "decode", strings.TrimSpace(encoded))
	require.NoError(t, err)
	assert.Equal(t, "-65 -1\n", out)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"frobnicate"}},
		{"odd tag args", []string{"tag", "1"}},
		{"bad tag", []string{"id", "#XYZ"}},
		{"bad hex", []string{"vint", "decode", "zz"}},
		{"unknown kind", []string{"decode", "--layout", "vint,float", "00"}},
		{"empty layout", []string{"decode", "00"}},
		{"truncated", []string{"decode", "--layout", "int32", "00 01"}},
		{"value count", []string{"encode", "--layout", "int8,int8", "1"}},
		{"value range", []string{"encode", "--layout", "int8", "300"}},
		{"bad level", []string{"--level", "loud", "tag", "0", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runTool(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestHelp(t *testing.T) {
	out, _, err := runTool(t, "-h")
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, out, "usage: tagtool")
	assert.Contains(t, out, "logiclong")

	_, _, err = runTool(t)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestMaxHigh(t *testing.T) {
	_, _, err := runTool(t, "--max-high", "5", "tag", "9", "1")
	var bound *logiclong.OutOfBoundError
	require.ErrorAs(t, err, &bound)
	assert.Equal(t, uint64(5), bound.Bound)

	_, _, err = runTool(t, "--max-high", "256", "tag", "0", "0")
	assert.Error(t, err)
}

func TestRandom(t *testing.T) {
	a, _, err := runTool(t, "random", "--seed", "7", "-n", "5", "--max-high", "3")
	require.NoError(t, err)
	b, _, err := runTool(t, "random", "--seed", "7", "-n", "5", "--max-high", "3")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	lines := strings.Split(strings.TrimSpace(a), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		fields := strings.Fields(line)
		require.Len(t, fields, 3)
		l, err := logiclong.Parse(fields[0])
		require.NoError(t, err)
		assert.LessOrEqual(t, l.High(), uint32(3))
		assert.Equal(t, line, strings.Join([]string{l.Tag(), fields[1], fields[2]}, " "))
	}

	_, _, err = runTool(t, "random", "-n", "0")
	assert.Error(t, err)
}

func TestDecodeTrace(t *testing.T) {
	out, hook, err := runTool(t, "decode", "--trace", "--layout", "vint,string,logiclong,uint8", sampleHex+" ff 01")
	require.NoError(t, err)
	assert.Contains(t, out, "(Uint8): 255\n")

	var reads []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "bytestream read" {
			reads = append(reads, e)
		}
	}
	require.Len(t, reads, 4)
	assert.Equal(t, logrus.TraceLevel, reads[0].Level)
	assert.Equal(t, 0, reads[0].Data["offset"])
	assert.Equal(t, "String", reads[1].Data["kind"])

	// 多出的 1 字节
	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, 1, last.Data["remaining"])
}

func TestConfigFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "tagtool.yaml")
	data := "log:\n  level: debug\ncodec:\n  max_high: 10\n  max_string_length: 3\n"
	require.NoError(t, os.WriteFile(f, []byte(data), 0o644))

	_, hook, err := runTool(t, "-c", f, "tag", "11", "0")
	var bound *logiclong.OutOfBoundError
	assert.ErrorAs(t, err, &bound)
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "Run command", hook.AllEntries()[0].Message)

	// max_string_length 作用于解码
	_, _, err = runTool(t, "-c", f, "decode", "--layout", "string", "00 00 00 04 63 6c 61 6e")
	assert.Error(t, err)

	// 命令行覆盖配置
	out, _, err := runTool(t, "-c", f, "--max-high", "255", "tag", "11", "0")
	require.NoError(t, err)
	assert.Equal(t, "#C\n", out)
}
