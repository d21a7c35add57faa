// Package pkcs1 proves RSASSA-PKCS1-v1_5 signature verification with a
// SHA-256 digest inside a circuit.
//
// The verifier raises the signature to the fixed public exponent by
// square-and-multiply over limb arithmetic, rebuilds the EMSA-PKCS1-v1_5
// encoding of the digest as limb constants around the digest bytes, and
// folds the limb-wise comparison of the two into a single boolean flag. The
// host-side [EncodePKCS1v15] produces the same encoding for witness
// preparation and tests.
package pkcs1

import (
	"errors"
	"fmt"
)

// PublicExponent is the fixed verification exponent (F4). The squaring
// schedule of the circuit is specialized to it.
const PublicExponent = 65537

// DigestInfoPrefixSHA256 is the DER encoding of the ASN.1 DigestInfo header
// for SHA-256 (RFC 8017, section 9.2).
var DigestInfoPrefixSHA256 = []byte{0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20}

// ErrModulusTooShort is returned when the modulus byte length leaves fewer
// than the eight padding bytes EMSA-PKCS1-v1_5 requires.
var ErrModulusTooShort = errors.New("pkcs1: modulus too short for EMSA-PKCS1-v1_5")

const hashLen = 32

// EncodePKCS1v15 returns the EMSA-PKCS1-v1_5 encoding of a SHA-256 digest
// for a k-byte modulus:
//
//	EM = 0x00 || 0x01 || PS || 0x00 || DigestInfo || digest
//
// with PS a run of 0xff bytes filling EM to k bytes.
func EncodePKCS1v15(k int, digest []byte) ([]byte, error) {
	if len(digest) != hashLen {
		return nil, fmt.Errorf("pkcs1: digest is %d bytes, expected %d", len(digest), hashLen)
	}
	tLen := len(DigestInfoPrefixSHA256) + hashLen
	if k < tLen+11 {
		return nil, ErrModulusTooShort
	}
	em := make([]byte, k)
	em[1] = 1
	for i := 2; i < k-tLen-1; i++ {
		em[i] = 0xff
	}
	copy(em[k-tLen:k-hashLen], DigestInfoPrefixSHA256)
	copy(em[k-hashLen:], digest)
	return em, nil
}
