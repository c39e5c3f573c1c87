package logiclong

import (
	"math/rand/v2"
)

// Random 生成一个随机标识, high 落在 [0, maxHigh], low 取满 32 位.
// maxHigh 超过 MaxHigh 时按 MaxHigh 处理, 保证 tag 可逆.
func Random(maxHigh uint32) LogicLong {
	return randomFrom(rand.Uint32N, rand.Uint32, maxHigh)
}

// RandomWith 使用指定的随机源, 便于测试复现
func RandomWith(r *rand.Rand, maxHigh uint32) LogicLong {
	return randomFrom(r.Uint32N, r.Uint32, maxHigh)
}

func randomFrom(uint32n func(uint32) uint32, uint32fn func() uint32, maxHigh uint32) LogicLong {
	if maxHigh > MaxHigh {
		maxHigh = MaxHigh
	}
	return New(uint32n(maxHigh+1), uint32fn())
}
