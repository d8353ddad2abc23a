package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"unsafe"
)

// BytesToString converts bytes slice to a string without extra allocation
func BytesToString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}

const randomStringAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a securely generated random string of the given size.
// It will return an error if the system's secure random
// number generator fails to function correctly, in which
// case the caller should not continue
func GenerateRandomString(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("invalid random string size: %d", size)
	}

	b := make([]byte, size)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(randomStringAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = randomStringAlphabet[n.Int64()]
	}

	return BytesToString(b), nil
}

// PathExists returns whether the given file or directory exists
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if isDir == stat.IsDir() {
		return true, nil
	}
	return false, fmt.Errorf("path %s exists, but is not a directory/file as requested", path)
}
