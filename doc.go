// Package certsnark proves knowledge of a valid RSA PKCS#1 v1.5 signature
// over a SHA-256 hashed message, inside a zk-SNARK circuit.
//
// The public instance is the signer's 2048-bit modulus, split into 64-bit
// limbs, followed by the 32 digest bytes of the message. The signature and
// the message itself stay private: a proof convinces a verifier that the
// prover holds a message with the published digest and a signature on it
// that verifies under the published key, without revealing either.
//
// The circuit is built on gnark and composes the gadgets in this module:
// lookup-backed range checks, limb arithmetic wide enough for RSA, an
// in-circuit SHA-256, and the fixed-exponent PKCS#1 v1.5 check.
package certsnark

import (
	"github.com/blang/semver/v4"
)

// Version of the circuit layout. Bumped whenever a change alters the
// public-instance order or the constraint shape for fixed parameters, so
// persisted manifests can detect artifacts from an incompatible build.
var Version = semver.MustParse("0.1.0")
