package biguint

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/certsnark/rangecheck"
)

// convHeadroom bounds the bit growth of a convolution column: it covers
// column counts up to 2^15 and the remainder added during reduction.
const convHeadroom = 16

// Field builds limb arithmetic on top of a shared range checker. One Field
// serves one circuit synthesis; it keeps no state besides its configuration.
type Field struct {
	api      frontend.API
	rc       *rangecheck.Checker
	limbBits uint
	maxBits  uint
}

// NewField returns a limb-arithmetic gadget for the given limb width. The
// width must leave enough field headroom for product columns and their
// carries, otherwise a configuration error is returned.
func NewField(api frontend.API, rc *rangecheck.Checker, limbBits uint) (*Field, error) {
	if rc == nil {
		return nil, errors.New("biguint: nil range checker")
	}
	if limbBits == 0 || limbBits > 64 {
		return nil, fmt.Errorf("biguint: limb width %d outside [1, 64]", limbBits)
	}
	fb := uint(api.Compiler().FieldBitLen())
	if 2*limbBits+convHeadroom+3 > fb {
		return nil, fmt.Errorf("biguint: limb width %d too wide for a %d-bit field", limbBits, fb)
	}
	return &Field{api: api, rc: rc, limbBits: limbBits, maxBits: fb - 3}, nil
}

// LimbBits returns the canonical limb width.
func (f *Field) LimbBits() uint { return f.limbBits }

// FromLimbs ingests witness limbs as a canonical value, range-checking every
// limb to the canonical width before it can be consumed.
func (f *Field) FromLimbs(limbs []frontend.Variable) *Int {
	if len(limbs) == 0 {
		panic("biguint: empty limb slice")
	}
	ls := make([]frontend.Variable, len(limbs))
	copy(ls, limbs)
	for i := range ls {
		f.rc.Check(ls[i], int(f.limbBits))
	}
	return &Int{Limbs: ls, bits: f.limbBits}
}

// Constant returns a canonical compile-time value over nbLimbs limbs.
func (f *Field) Constant(v *big.Int, nbLimbs int) (*Int, error) {
	ls, err := Decompose(v, nbLimbs, f.limbBits)
	if err != nil {
		return nil, err
	}
	limbs := make([]frontend.Variable, nbLimbs)
	for i := range limbs {
		limbs[i] = ls[i]
	}
	return &Int{Limbs: limbs, bits: f.limbBits}, nil
}

// Add returns a+b. The per-limb bound grows by one bit; operands whose bound
// would spill the native field are re-normalized first, so the sum can never
// wrap silently.
func (f *Field) Add(a, b *Int) *Int {
	a = f.renorm(a, 1)
	b = f.renorm(b, 1)
	n := max(len(a.Limbs), len(b.Limbs))
	limbs := make([]frontend.Variable, n)
	for i := 0; i < n; i++ {
		switch {
		case i < len(a.Limbs) && i < len(b.Limbs):
			limbs[i] = f.api.Add(a.Limbs[i], b.Limbs[i])
		case i < len(a.Limbs):
			limbs[i] = a.Limbs[i]
		default:
			limbs[i] = b.Limbs[i]
		}
	}
	return &Int{Limbs: limbs, bits: max(a.bits, b.bits) + 1}
}

// Mul returns a*b as a canonical value of combined limb length. The product
// is computed as the full limb-pair convolution; the canonical limbs are
// witnessed, range-checked and proven equal to the convolution columns by an
// exact carry chain.
func (f *Field) Mul(a, b *Int) *Int {
	if a.bits+b.bits+convHeadroom > f.maxBits {
		a = f.normalize(a)
		b = f.normalize(b)
	}
	cols := f.conv(a.Limbs, b.Limbs)
	colBits := a.bits + b.bits + uint(bits.Len(uint(min(len(a.Limbs), len(b.Limbs)))))
	nbOut := int((f.valueBits(a) + f.valueBits(b) + f.limbBits - 1) / f.limbBits)
	return f.normSeq(cols, colBits, nbOut)
}

// ModReduce returns a mod m. Quotient and remainder are witnessed; the
// circuit proves a = q*m + r with q sized so the identity cannot overflow,
// every q and r limb range-checked, and r < m established limb-wise from the
// most significant limb down.
func (f *Field) ModReduce(a, m *Int) *Int {
	if a.bits != f.limbBits {
		a = f.normalize(a)
	}
	if m.bits != f.limbBits {
		m = f.normalize(m)
	}
	qLen := len(a.Limbs) - len(m.Limbs) + 1
	if qLen < 1 {
		qLen = 1
	}
	hintIn := make([]frontend.Variable, 0, 3+len(a.Limbs)+len(m.Limbs))
	hintIn = append(hintIn, f.limbBits, len(a.Limbs), len(m.Limbs))
	hintIn = append(hintIn, a.Limbs...)
	hintIn = append(hintIn, m.Limbs...)
	out, err := f.api.Compiler().NewHint(QuoRemHint, qLen+len(m.Limbs), hintIn...)
	if err != nil {
		panic(fmt.Sprintf("biguint: quorem hint: %v", err))
	}
	q := out[:qLen]
	r := out[qLen:]
	for i := range out {
		f.rc.Check(out[i], int(f.limbBits))
	}
	cols := f.conv(q, m.Limbs)
	colBits := 2*f.limbBits + uint(bits.Len(uint(min(qLen, len(m.Limbs)))))
	for i := range r {
		cols[i] = f.api.Add(cols[i], r[i])
	}
	rem := &Int{Limbs: r, bits: f.limbBits}
	f.assertSeqEqual(cols, colBits+1, a.Limbs, a.bits)
	f.AssertLess(rem, m)
	return rem
}

// AssertEqual asserts a == b. Canonical operands of equal length compare
// limb-wise; otherwise the equality goes through the carry chain.
func (f *Field) AssertEqual(a, b *Int) {
	if a.bits == f.limbBits && b.bits == f.limbBits && len(a.Limbs) == len(b.Limbs) {
		for i := range a.Limbs {
			f.api.AssertIsEqual(a.Limbs[i], b.Limbs[i])
		}
		return
	}
	f.assertSeqEqual(a.Limbs, a.bits, b.Limbs, b.bits)
}

// AssertLess asserts r < m, walking limbs from the most significant down. A
// hinted per-limb verdict is certified by range-checking the corresponding
// difference, and an equality-prefix accumulator selects the first
// difference.
func (f *Field) AssertLess(r, m *Int) {
	if r.bits != f.limbBits || m.bits != f.limbBits {
		panic("biguint: comparison needs canonical operands")
	}
	n := max(len(r.Limbs), len(m.Limbs))
	limb := func(x *Int, i int) frontend.Variable {
		if i < len(x.Limbs) {
			return x.Limbs[i]
		}
		return 0
	}
	var strictly frontend.Variable = 0
	var eqPrefix frontend.Variable = 1
	for i := n - 1; i >= 0; i-- {
		ri, mi := limb(r, i), limb(m, i)
		d := f.api.Sub(mi, ri)
		lt, err := f.api.Compiler().NewHint(LessHint, 1, ri, mi)
		if err != nil {
			panic(fmt.Sprintf("biguint: less hint: %v", err))
		}
		f.api.AssertIsBoolean(lt[0])
		// m_i - r_i - 1 fits the limb width iff r_i < m_i; r_i - m_i fits
		// iff r_i >= m_i. Either way the hinted verdict is pinned.
		chk := f.api.Select(lt[0], f.api.Sub(d, 1), f.api.Neg(d))
		f.rc.Check(chk, int(f.limbBits))
		strictly = f.api.Add(strictly, f.api.Mul(eqPrefix, lt[0]))
		eqPrefix = f.api.Mul(eqPrefix, f.api.IsZero(d))
	}
	f.api.AssertIsEqual(strictly, 1)
}

// conv computes the schoolbook convolution columns of two limb sequences.
func (f *Field) conv(a, b []frontend.Variable) []frontend.Variable {
	res := make([]frontend.Variable, len(a)+len(b)-1)
	for i := range res {
		res[i] = 0
	}
	for i := range a {
		for j := range b {
			res[i+j] = f.api.MulAcc(res[i+j], a[i], b[j])
		}
	}
	return res
}

// valueBits bounds the bit length of the represented value.
func (f *Field) valueBits(x *Int) uint {
	n := uint(len(x.Limbs))
	if x.bits == f.limbBits {
		return n * f.limbBits
	}
	return (n-1)*f.limbBits + x.bits + 1
}

// renorm normalizes x when growing the per-limb bound by extra bits would
// exceed the safe bound.
func (f *Field) renorm(x *Int, extra uint) *Int {
	if x.bits+extra > f.maxBits {
		return f.normalize(x)
	}
	return x
}

func (f *Field) normalize(x *Int) *Int {
	nbOut := int((f.valueBits(x) + f.limbBits - 1) / f.limbBits)
	return f.normSeq(x.Limbs, x.bits, nbOut)
}

// normSeq witnesses the canonical form of a limb sequence, range-checks
// every canonical limb and proves the two sequences equal.
func (f *Field) normSeq(limbs []frontend.Variable, limbBound uint, nbOut int) *Int {
	hintIn := make([]frontend.Variable, 0, 2+len(limbs))
	hintIn = append(hintIn, f.limbBits, len(limbs))
	hintIn = append(hintIn, limbs...)
	out, err := f.api.Compiler().NewHint(NormalizeHint, nbOut, hintIn...)
	if err != nil {
		panic(fmt.Sprintf("biguint: normalize hint: %v", err))
	}
	for i := range out {
		f.rc.Check(out[i], int(f.limbBits))
	}
	f.assertSeqEqual(limbs, limbBound, out, f.limbBits)
	return &Int{Limbs: out, bits: f.limbBits}
}

// assertSeqEqual proves two limb sequences represent the same integer. l
// limbs are bounded by 2^lBits, r limbs by 2^rBits. The walk is least
// significant first with hinted signed carries; every carry is pinned by an
// offset range check and the final carry must vanish, which makes the
// equality exact over the integers, not merely modulo the field.
func (f *Field) assertSeqEqual(l []frontend.Variable, lBits uint, r []frontend.Variable, rBits uint) {
	w := f.limbBits
	n := max(len(l), len(r))
	M := max(lBits, rBits)
	if M < w {
		M = w
	}
	if M+3 > uint(f.api.Compiler().FieldBitLen()) {
		panic("biguint: limb bound too wide for the carry chain")
	}
	cb := M - w + 1
	hintIn := make([]frontend.Variable, 0, 3+len(l)+len(r))
	hintIn = append(hintIn, w, n, len(l))
	hintIn = append(hintIn, l...)
	hintIn = append(hintIn, r...)
	carries, err := f.api.Compiler().NewHint(CarriesHint, n, hintIn...)
	if err != nil {
		panic(fmt.Sprintf("biguint: carries hint: %v", err))
	}
	shift := new(big.Int).Lsh(big.NewInt(1), w)
	offset := new(big.Int).Lsh(big.NewInt(1), cb)
	var prev frontend.Variable = 0
	for i := 0; i < n; i++ {
		t := prev
		if i < len(l) {
			t = f.api.Add(t, l[i])
		}
		if i < len(r) {
			t = f.api.Sub(t, r[i])
		}
		f.api.AssertIsEqual(t, f.api.Mul(carries[i], shift))
		f.rc.Check(f.api.Add(carries[i], offset), int(cb)+1)
		prev = carries[i]
	}
	f.api.AssertIsEqual(prev, 0)
}
