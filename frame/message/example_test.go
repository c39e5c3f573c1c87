package message_test

import (
	"fmt"

	"github.com/beijian128/bytestream/frame/bytestream"
	"github.com/beijian128/bytestream/frame/logiclong"
	"github.com/beijian128/bytestream/frame/message"
)

type Reward interface {
	isReward()
}

type Gold struct {
	Amount int32 `bytestream:"vint"`
}

type Badge struct {
	Name string
}

func (*Gold) isReward()  {}
func (*Badge) isReward() {}

var rewards = message.NewEnum[Reward](message.U8).
	Register(1, func() Reward { return &Gold{} }).
	Register(2, func() Reward { return &Badge{} })

type ClanJoined struct {
	Clan    logiclong.LogicLong
	Members []string `bytestream:"count=uint8"`
	Reward  Reward
}

func ExampleMarshal() {
	data, _ := message.Marshal(ClanJoined{
		Clan:    logiclong.MustParse("#2PP"),
		Members: []string{"ann"},
		Reward:  &Gold{Amount: 100},
	})
	fmt.Printf("% x\n", data)

	var out ClanJoined
	_ = message.Unmarshal(data, &out)
	fmt.Println(out.Clan, out.Members, out.Reward.(*Gold).Amount)
	// Output:
	// 00 00 00 00 00 00 00 01 01 00 00 00 03 61 6e 6e 01 a4 01
	// #2PP [ann] 100
}

func ExampleEnum_Decode() {
	r, err := rewards.Decode(bytestream.NewFromBuffer([]byte{0x02, 0x00, 0x00, 0x00, 0x02, 'M', 'V'}))
	fmt.Printf("%#v %v\n", r, err)

	_, err = rewards.Decode(bytestream.NewFromBuffer([]byte{0x05}))
	fmt.Println(err)
	// Output:
	// &message_test.Badge{Name:"MV"} <nil>
	// message: unknown discriminant 5 for enum Reward
}

func ExampleDescribe() {
	fmt.Println(message.Describe(ClanJoined{}))
	// Output:
	// ClanJoined{Clan:LogicLong Members:[String](count Uint8) Reward:Reward<U8>{1:Gold{Amount:VInt} 2:Badge{Name:String}}}
}
