package certsnark

import (
	"errors"
	"fmt"

	"github.com/consensys/certsnark/pkcs1"
)

var (
	// ErrInvalidParams is returned, wrapped with a cause, for parameter
	// combinations that cannot produce a sound circuit.
	ErrInvalidParams = errors.New("certsnark: invalid parameters")

	// ErrMessageTooLong is returned by witness preparation when the message
	// exceeds the length the parameters admit.
	ErrMessageTooLong = errors.New("certsnark: message too long")
)

// Params fixes the circuit shape. A Params value is passed explicitly to
// every constructor; the package keeps no mutable state. Two compilations
// with equal parameters and message length produce identical constraint
// systems.
type Params struct {
	// ModulusBits is the RSA key size in bits.
	ModulusBits int
	// LimbBits is the limb width of the in-circuit big integers. The
	// modulus and signature are encoded as ModulusBits/LimbBits limbs each.
	LimbBits int
	// Exponent is the RSA public exponent.
	Exponent int
	// MaxMsgLen bounds, in bytes, the message length a circuit may be
	// compiled for.
	MaxMsgLen int
	// RangeTableBits is the width of the shared range-check table. Zero
	// selects the width from the collected checks at synthesis time.
	RangeTableBits int
	// ByteTableBits is the operand width of the bitwise lookup tables
	// backing the hash gadget.
	ByteTableBits int
	// RowExponent caps every lookup table at 2^RowExponent rows.
	RowExponent int
}

// DefaultParams returns the production shape: RSA-2048 with e = 65537 over
// 64-bit limbs, messages up to 1280 bytes, 2^16-row lookup tables.
func DefaultParams() Params {
	return Params{
		ModulusBits:    2048,
		LimbBits:       64,
		Exponent:       65537,
		MaxMsgLen:      1280,
		RangeTableBits: 12,
		ByteTableBits:  8,
		RowExponent:    16,
	}
}

// Validate rejects parameter combinations the gadgets cannot express. It is
// called by every constructor in this package; callers composing gadgets
// directly should call it once up front.
func (p Params) Validate() error {
	if p.ModulusBits <= 0 || p.ModulusBits%8 != 0 {
		return fmt.Errorf("%w: modulus of %d bits is not byte aligned", ErrInvalidParams, p.ModulusBits)
	}
	if p.LimbBits < 8 || p.LimbBits > 64 || p.LimbBits%8 != 0 {
		return fmt.Errorf("%w: limb width %d outside the supported byte-aligned range [8, 64]", ErrInvalidParams, p.LimbBits)
	}
	if p.ModulusBits%p.LimbBits != 0 {
		return fmt.Errorf("%w: limb width %d does not divide %d modulus bits", ErrInvalidParams, p.LimbBits, p.ModulusBits)
	}
	if p.ModulusBits/8 < len(pkcs1.DigestInfoPrefixSHA256)+32+11 {
		return fmt.Errorf("%w: %d-bit modulus leaves no room for PKCS#1 v1.5 padding", ErrInvalidParams, p.ModulusBits)
	}
	if p.Exponent < 3 || (p.Exponent-1)&(p.Exponent-2) != 0 {
		return fmt.Errorf("%w: exponent %d is not of the form 2^k+1", ErrInvalidParams, p.Exponent)
	}
	if p.Exponent != pkcs1.PublicExponent {
		return fmt.Errorf("%w: exponent %d, the verifier schedule is fixed for %d", ErrInvalidParams, p.Exponent, pkcs1.PublicExponent)
	}
	if p.MaxMsgLen <= 0 {
		return fmt.Errorf("%w: non-positive maximum message length %d", ErrInvalidParams, p.MaxMsgLen)
	}
	if p.ByteTableBits != 8 {
		return fmt.Errorf("%w: the hash gadget requires 8-bit byte tables, got %d", ErrInvalidParams, p.ByteTableBits)
	}
	if p.RangeTableBits < 0 || p.RangeTableBits > p.RowExponent {
		return fmt.Errorf("%w: range table width %d over the 2^%d row budget", ErrInvalidParams, p.RangeTableBits, p.RowExponent)
	}
	if 2*p.ByteTableBits > p.RowExponent {
		return fmt.Errorf("%w: paired %d-bit byte tables need 2^%d rows, budget is 2^%d", ErrInvalidParams, p.ByteTableBits, 2*p.ByteTableBits, p.RowExponent)
	}
	return nil
}

// NbLimbs returns the limb count of the modulus and signature encodings.
func (p Params) NbLimbs() int { return p.ModulusBits / p.LimbBits }

// ModulusBytes returns the modulus length in bytes.
func (p Params) ModulusBytes() int { return p.ModulusBits / 8 }
