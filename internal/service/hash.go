package service

import (
	"crypto/md5"
	"encoding/hex"
)

// ContentHash returns the hex MD5 digest used for duplicate detection.
// MD5 keeps hash files compatible with earlier releases; it is not used
// for anything security sensitive.
func ContentHash(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}
