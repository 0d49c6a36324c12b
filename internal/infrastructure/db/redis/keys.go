package redis

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const keyPrefix = "portal:"

// digest hides raw cookie values and emails from anyone reading the keyspace.
func digest(s string) string {
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
