package message

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"struct", Item{}, "Item{Id:Int32 Name:String}"},
		{"pointer", &Item{}, "Item{Id:Int32 Name:String}"},
		{"type", reflect.TypeFor[Team](), "Team{Name:String Members:[Item{Id:Int32 Name:String}]}"},
		{"options", Login{},
			"Login{Seq:VInt Name:StringReference Level:Int16LE Exp:Uint24 Owner:LogicLong " +
				"Tags:[String](count Uint8) Ok:Bool Data:Bytes}"},
		{"recursive", Node{}, "Node{Value:VInt Children:[Node]}"},
		{"message", Path{}, "Path{Start:Point(Message) Stops:[Point(Message)]}"},
		{"enum", reflect.TypeFor[Command](), "Command<U8>{0:Idle{} 1:Move{X:Int16 Y:Int16} 2:Chat{Channel:Uint8 Text:String}}"},
		{"enum field", Order{},
			"Order{Unit:LogicLong Cmd:Command<U8>{0:Idle{} 1:Move{X:Int16 Y:Int16} 2:Chat{Channel:Uint8 Text:String}} " +
				"Then:[Command](count Uint8)}"},
		{"little endian enum", reflect.TypeFor[Shape](), "Shape<U16LE>{258:Circle{R:Int32} 772:Rect{W:Int32 H:Int32}}"},
		{"array", [2]int64{}, "[2]Int64"},
		{"nil", nil, "<nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.v))
		})
	}
}

func TestDescribeUnsupported(t *testing.T) {
	assert.Contains(t, Describe(struct{ M map[string]string }{}), "unsupported type")
}
