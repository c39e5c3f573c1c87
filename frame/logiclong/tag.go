package logiclong

import (
	"regexp"
	"strings"
)

// TagPrefix ...
const TagPrefix = "#"

// alphabet 顺序有意义, 下标即该位的数值
const alphabet = "0289PYLQGRJCUV"

const base = uint64(len(alphabet))

// maxTotal 拆分后 low 仍能放进 uint32 的最大 tag 数值
const maxTotal = uint64(1)<<40 - 1

var (
	nonTagChars = regexp.MustCompile(`[^A-Z0-9]+`)
	validTag    = regexp.MustCompile(`^#[` + alphabet + `]+$`)

	digitOf [256]int8
)

func init() {
	for i := range digitOf {
		digitOf[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		digitOf[alphabet[i]] = int8(i)
	}
}

// FixTag 规范化 tag: 转大写, 去掉 A-Z0-9 以外的字符, 字母 O 视为数字 0, 再加上 "#" 前缀.
// FixTag(FixTag(t)) == FixTag(t)
func FixTag(tag string) string {
	tag = strings.ToUpper(tag)
	tag = nonTagChars.ReplaceAllLiteralString(tag, "")
	tag = strings.ReplaceAll(tag, "O", "0")
	return TagPrefix + tag
}

// IsValidTag 只做格式检查, 不计算数值
func IsValidTag(tag string) bool {
	tag = strings.ReplaceAll(strings.ToUpper(tag), "O", "0")
	return validTag.MatchString(tag)
}

// ToTag 数值对转 tag, (0, 0) 得到 "#0"
func ToTag(high, low uint32) string {
	total := uint64(high) + uint64(low)<<8
	if total == 0 {
		return TagPrefix + alphabet[:1]
	}

	var digits [16]byte
	i := len(digits)
	for total != 0 {
		i--
		digits[i] = alphabet[total%base]
		total /= base
	}
	return TagPrefix + string(digits[i:])
}

// ParseTag tag 转数值对: high = total % 256, low = total / 256
func ParseTag(tag string) (high, low uint32, err error) {
	fixed := FixTag(tag)
	digits := fixed[len(TagPrefix):]
	if digits == "" {
		return 0, 0, &InvalidTagError{Tag: fixed}
	}

	var total uint64
	for i := 0; i < len(digits); i++ {
		d := digitOf[digits[i]]
		if d < 0 {
			return 0, 0, &InvalidTagError{Tag: fixed, Char: rune(digits[i])}
		}
		total = total*base + uint64(d)
		if total > maxTotal {
			return 0, 0, &OutOfBoundError{Component: "tag", Value: total, Bound: maxTotal}
		}
	}

	return uint32(total % 256), uint32(total / 256), nil
}
