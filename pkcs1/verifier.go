package pkcs1

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/certsnark/biguint"
)

// Verifier checks PKCS#1 v1.5 signatures over a fixed modulus size. One
// verifier serves one circuit synthesis.
type Verifier struct {
	api frontend.API
	f   *biguint.Field
	k   int
}

// NewVerifier returns a verifier for a modulus of modulusBytes bytes. The
// byte length must be compatible with the limb width and leave room for the
// mandatory padding run, otherwise a configuration error is returned.
func NewVerifier(api frontend.API, f *biguint.Field, modulusBytes int) (*Verifier, error) {
	if f == nil {
		return nil, errors.New("pkcs1: nil limb field")
	}
	if f.LimbBits()%8 != 0 {
		return nil, fmt.Errorf("pkcs1: limb width %d is not byte aligned", f.LimbBits())
	}
	if uint(modulusBytes*8)%f.LimbBits() != 0 {
		return nil, fmt.Errorf("pkcs1: modulus of %d bytes does not fill %d-bit limbs", modulusBytes, f.LimbBits())
	}
	if modulusBytes < len(DigestInfoPrefixSHA256)+hashLen+11 {
		return nil, fmt.Errorf("%w: %d bytes", ErrModulusTooShort, modulusBytes)
	}
	return &Verifier{api: api, f: f, k: modulusBytes}, nil
}

// Verify computes s^e mod n for the fixed exponent e = 65537 and compares
// it limb-wise against the EMSA-PKCS1-v1_5 encoding of the digest. It
// returns a boolean flag that is 1 iff every limb matches; the caller
// asserts the flag against the constant 1. The digest bytes must already be
// constrained to [0, 256).
//
// The exponent is 2^16 + 1, so the schedule is sixteen squarings and a
// final multiplication, fixed at compile time and independent of any
// witness value.
func (v *Verifier) Verify(n, s *biguint.Int, digest []frontend.Variable) frontend.Variable {
	if len(n.Limbs) != v.nbLimbs() {
		panic("pkcs1: modulus limb count does not match the configured byte length")
	}
	if len(digest) != hashLen {
		panic("pkcs1: digest must be 32 byte variables")
	}

	x := s
	for i := 0; i < 16; i++ {
		x = v.f.ModReduce(v.f.Mul(x, x), n)
	}
	x = v.f.ModReduce(v.f.Mul(x, s), n)

	em := v.encodedLimbs(digest)
	var flag frontend.Variable = 1
	for i := range em {
		flag = v.api.Mul(flag, v.api.IsZero(v.api.Sub(x.Limbs[i], em[i])))
	}
	return flag
}

func (v *Verifier) nbLimbs() int {
	return v.k * 8 / int(v.f.LimbBits())
}

// encodedLimbs packs the EMSA-PKCS1-v1_5 encoding into limbs, least
// significant first. Everything but the digest bytes is a compile-time
// constant, so only the limbs covering the digest cost constraints.
func (v *Verifier) encodedLimbs(digest []frontend.Variable) []frontend.Variable {
	skeleton, err := EncodePKCS1v15(v.k, make([]byte, hashLen))
	if err != nil {
		panic(err) // ruled out by the constructor
	}
	bpl := int(v.f.LimbBits()) / 8
	limbs := make([]frontend.Variable, v.nbLimbs())
	for j := range limbs {
		var constPart uint64
		var varTerms []frontend.Variable
		for t := 0; t < bpl; t++ {
			idx := v.k - 1 - j*bpl - t
			if idx >= v.k-hashLen {
				varTerms = append(varTerms, v.api.Mul(digest[idx-(v.k-hashLen)], int64(1)<<(8*t)))
				continue
			}
			constPart |= uint64(skeleton[idx]) << (8 * t)
		}
		if len(varTerms) == 0 {
			limbs[j] = constPart
			continue
		}
		acc := varTerms[0]
		for _, term := range varTerms[1:] {
			acc = v.api.Add(acc, term)
		}
		if constPart != 0 {
			acc = v.api.Add(acc, constPart)
		}
		limbs[j] = acc
	}
	return limbs
}
