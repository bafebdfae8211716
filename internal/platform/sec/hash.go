// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// CodeDigest returns the keyed BLAKE2b-256 digest of a confirmation code.
//
// Codes are stored only in this form. A secret longer than the 64-byte
// BLAKE2b key limit is first reduced with an unkeyed hash.
func CodeDigest(secret, code string) string {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}

	// New256 only fails for keys above the limit, which was handled above.
	hasher, _ := blake2b.New256(key)
	hasher.Write([]byte(code))

	return hex.EncodeToString(hasher.Sum(nil))
}

// DigestEqual compares two digests in constant time.
func DigestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
