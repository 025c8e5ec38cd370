package util

import (
	"crypto/rand"
	"math/big"
)

const base62Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SecureRandomString returns a base62 string of the given length drawn from crypto/rand
// SecureRandomString 使用 crypto/rand 生成指定长度的 base62 字符串
func SecureRandomString(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(base62Charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = base62Charset[n.Int64()]
	}
	return string(b), nil
}

// GetRandomString 生成指定长度的随机字符串，熵源不可用时 panic
func GetRandomString(length int) string {
	s, err := SecureRandomString(length)
	if err != nil {
		panic(err)
	}
	return s
}
