package util

// Hash64 可逆的 64 位整数混淆 (splitmix64 finalizer)
func Hash64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x = x ^ (x >> 31)
	return x
}

// UnHash64 Hash64 的逆
func UnHash64(x uint64) uint64 {
	x = (x ^ (x >> 31) ^ (x >> 62)) * 0x319642b2d24d8ec3
	x = (x ^ (x >> 27) ^ (x >> 54)) * 0x96de1b173f119089
	x = x ^ (x >> 30) ^ (x >> 60)
	return x
}

// Shard 把 64 位 key 均匀映射到 [0, n)
func Shard(key uint64, n int) int {
	if n <= 0 {
		return 0
	}
	return int(Hash64(key) % uint64(n))
}
