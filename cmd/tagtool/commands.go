package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/beijian128/bytestream/config"
	"github.com/beijian128/bytestream/frame/bytestream"
	"github.com/beijian128/bytestream/frame/logiclong"
)

// tool 子命令共享的状态
type tool struct {
	out    io.Writer
	codec  config.CodecConfig
	layout string
	count  int
	seed   uint64
	trace  bool
	log    *logrus.Logger
}

type command struct {
	usage string
	run   func(t *tool, args []string) error
}

var commands = map[string]command{
	"tag":    {"tag <high> <low>...   数值对转 tag", (*tool).tag},
	"id":     {"id <tag>...           tag 转数值对", (*tool).id},
	"fix":    {"fix <tag>...          规范化 tag", (*tool).fix},
	"random": {"random [-n N]         生成随机标识", (*tool).random},
	"vint":   {"vint encode <n>... | vint decode <hex>", (*tool).vint},
	"decode": {"decode --layout L <hex>", (*tool).decode},
	"encode": {"encode --layout L <value>...", (*tool).encode},
}

func (t *tool) options(transcript bytestream.Transcript) []bytestream.Option {
	codec := t.codec
	if transcript != nil {
		codec.Transcript = true
	}
	return codec.Options(transcript)
}

func (t *tool) tag(args []string) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return errors.New("tag: expect <high> <low> pairs")
	}
	for i := 0; i < len(args); i += 2 {
		high, err := strconv.ParseUint(args[i], 0, 32)
		if err != nil {
			return errors.Wrapf(err, "high %q", args[i])
		}
		low, err := strconv.ParseUint(args[i+1], 0, 32)
		if err != nil {
			return errors.Wrapf(err, "low %q", args[i+1])
		}
		l := logiclong.New(uint32(high), uint32(low))
		if err := l.Validate(t.codec.MaxHigh); err != nil {
			return err
		}
		fmt.Fprintln(t.out, l.Tag())
	}
	return nil
}

func (t *tool) id(args []string) error {
	if len(args) == 0 {
		return errors.New("id: expect tags")
	}
	for _, arg := range args {
		l, err := logiclong.Parse(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(t.out, "%s %d %d\n", l.Tag(), l.High(), l.Low())
	}
	return nil
}

func (t *tool) fix(args []string) error {
	for _, arg := range args {
		fixed := logiclong.FixTag(arg)
		fmt.Fprintf(t.out, "%s %t\n", fixed, logiclong.IsValidTag(fixed))
	}
	return nil
}

func (t *tool) random(_ []string) error {
	if t.count <= 0 {
		return errors.Errorf("random: count %d", t.count)
	}
	next := logiclong.Random
	if t.seed != 0 {
		r := rand.New(rand.NewPCG(t.seed, t.seed))
		next = func(maxHigh uint32) logiclong.LogicLong {
			return logiclong.RandomWith(r, maxHigh)
		}
	}
	for range t.count {
		l := next(t.codec.MaxHigh)
		fmt.Fprintf(t.out, "%s %d %d\n", l.Tag(), l.High(), l.Low())
	}
	return nil
}

func (t *tool) vint(args []string) error {
	if len(args) < 2 {
		return errors.New("vint: expect encode <n>... or decode <hex>")
	}
	switch args[0] {
	case "encode":
		var p []byte
		for _, arg := range args[1:] {
			v, err := strconv.ParseInt(arg, 0, 32)
			if err != nil {
				return err
			}
			p = bytestream.AppendVInt(p, int32(v))
		}
		fmt.Fprintln(t.out, formatHex(p))
	case "decode":
		p, err := parseHex(args[1:])
		if err != nil {
			return err
		}
		s := bytestream.NewFromBuffer(p)
		var values []string
		for s.Remaining() > 0 {
			v, err := s.ReadVInt()
			if err != nil {
				return errors.Wrapf(err, "offset %d", s.Offset())
			}
			values = append(values, strconv.Itoa(int(v)))
		}
		fmt.Fprintln(t.out, strings.Join(values, " "))
	default:
		return errors.Errorf("vint: unknown action %q", args[0])
	}
	return nil
}

// decode 按布局解码并打印每个字段
func (t *tool) decode(args []string) error {
	layout, err := parseLayout(t.layout)
	if err != nil {
		return err
	}
	p, err := parseHex(args)
	if err != nil {
		return err
	}

	var text bytestream.TextTranscript
	var transcript bytestream.Transcript = &text
	if t.trace {
		trace := bytestream.LogrusTranscript(t.log)
		transcript = bytestream.TranscriptFunc(func(offset int, kind string, value any) {
			text.Record(offset, kind, value)
			trace.Record(offset, kind, value)
		})
	}

	s := bytestream.NewFromBuffer(p, t.options(transcript)...)
	for i, f := range layout {
		if err := f.read(s); err != nil {
			io.WriteString(t.out, text.String())
			return errors.Wrapf(err, "field %d at offset %d", i, s.Offset())
		}
	}
	io.WriteString(t.out, text.String())
	if s.Remaining() > 0 {
		t.log.WithField("remaining", s.Remaining()).Warn("Trailing bytes after layout")
	}
	return nil
}

// encode 按布局把参数写成字节
func (t *tool) encode(args []string) error {
	layout, err := parseLayout(t.layout)
	if err != nil {
		return err
	}
	if len(args) != len(layout) {
		return errors.Errorf("encode: layout has %d fields, got %d values", len(layout), len(args))
	}

	s := bytestream.New(t.options(nil)...)
	for i, f := range layout {
		if err := f.write(s, args[i]); err != nil {
			return errors.Wrapf(err, "field %d", i)
		}
	}
	fmt.Fprintln(t.out, formatHex(s.Bytes()))
	return nil
}

// parseHex 参数拼接后解析, 允许空格和 0x 前缀
func parseHex(args []string) ([]byte, error) {
	str := strings.Join(args, "")
	str = strings.TrimPrefix(strings.ToLower(str), "0x")
	str = strings.Join(strings.Fields(str), "")
	p, err := hex.DecodeString(str)
	if err != nil {
		return nil, errors.Wrap(err, "hex")
	}
	return p, nil
}

func formatHex(p []byte) string {
	parts := make([]string, len(p))
	for i, b := range p {
		parts[i] = hex.EncodeToString([]byte{b})
	}
	return strings.Join(parts, " ")
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	fmt.Fprintln(w, "usage: tagtool [flags] <command> [args]")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	kinds := fieldKinds()
	slices.Sort(kinds)
	fmt.Fprintf(w, "layout kinds: %s\n", strings.Join(kinds, ","))
}
