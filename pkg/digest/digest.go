// Package digest computes fixed-size content fingerprints used to verify
// that two byte sequences are identical without comparing them directly.
package digest

import (
	"crypto/md5"
	"encoding/hex"
)

// Size is the fingerprint length in bytes.
const Size = md5.Size

// Digest is a fixed-size content fingerprint. It is a change detector for
// cached bodies, not a security boundary.
type Digest [Size]byte

// Sum computes the fingerprint of data. Deterministic; the empty input is
// a valid input.
func Sum(data []byte) Digest {
	return Digest(md5.Sum(data))
}

// FromBytes reconstructs a Digest from its raw byte form.
// Returns false if b is not exactly Size bytes long.
func FromBytes(b []byte) (Digest, bool) {
	var d Digest
	if len(b) != Size {
		return d, false
	}
	copy(d[:], b)
	return d, true
}

// Bytes returns the raw digest bytes.
func (d Digest) Bytes() []byte {
	return d[:]
}

// String returns the digest as a lowercase hex string.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Equal reports whether two digests are identical.
func (d Digest) Equal(other Digest) bool {
	return d == other
}
