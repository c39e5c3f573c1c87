package message

import (
	"reflect"
	"strings"
)

// describer 递归描述线上格式, 同一个结构体或枚举只展开一次
type describer struct {
	strings.Builder
	seen map[codec]bool
}

func (d *describer) enter(c codec) bool {
	if d.seen[c] {
		return false
	}
	if d.seen == nil {
		d.seen = make(map[codec]bool)
	}
	d.seen[c] = true
	return true
}

func (d *describer) writeCount(k countKind) {
	switch k {
	case countVInt:
		d.WriteString("(count VInt)")
	case countUint8:
		d.WriteString("(count Uint8)")
	case countUint16:
		d.WriteString("(count Uint16)")
	}
}

// Describe 描述 v 的类型在线上的字段布局, 例如
//
//	Hello{Seq:VInt Name:StringReference Owner:LogicLong Items:[Item{Id:Int32}](count Uint8)}
//
// v 可以是值, 指针或 reflect.Type. 类型无法编码时返回错误信息.
func Describe(v any) string {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	c, err := codecOf(t)
	if err != nil {
		return err.Error()
	}
	var d describer
	c.describe(&d)
	return d.String()
}
