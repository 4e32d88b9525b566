package utils

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// RandomInt63 生成一个安全的非负随机整数
func RandomInt63() int64 {
	var num uint64
	if err := binary.Read(rand.Reader, binary.BigEndian, &num); err != nil {
		panic("generate random int63 failed")
	}
	return int64(num >> 1)
}

// Jitter 返回 [0, max) 范围内的随机时长
func Jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(RandomInt63() % int64(max))
}
