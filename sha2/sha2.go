// Package sha2 computes SHA-256 digests inside a circuit.
//
// The hash state is kept byte-granular: a 32-bit word is four byte cells,
// and the bitwise operations of the compression function go through
// precomputed 8-bit lookup tables ([Tables]) instead of bit decomposition.
// Rotations and shifts relabel whole bytes and split the sub-byte remainder
// through the shared range checker; modular 32-bit addition is a native
// field sum followed by a witnessed byte/carry re-decomposition. Bytes known
// at compile time fold to constants and cost nothing.
//
// The message length is fixed per circuit compilation by the length of the
// slice handed to [Hasher.Sum]; the standard SHA-256 length padding is
// appended as compile-time constants.
package sha2

import (
	"encoding/binary"
	"errors"
	"math/bits"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/certsnark/rangecheck"
)

// Size is the digest length in bytes.
const Size = 32

var _K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

var _seed = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A, 0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// u8 is one byte of hash state: a compile-time constant, or a variable
// already constrained to [0, 256).
type u8 struct {
	v frontend.Variable // nil when constant
	c uint8
}

// u32 is a 32-bit word as four bytes, least significant first.
type u32 [4]u8

// Hasher computes fixed-length SHA-256 digests. All bitwise work goes
// through the tables and all freshly created byte cells through the range
// checker, so the caller must finalize the checker after the last Sum.
type Hasher struct {
	api frontend.API
	t   *Tables
	rc  *rangecheck.Checker
}

// New returns a hasher over loaded tables. Constructing a hasher before
// [Tables.Load] fails with [ErrTablesNotLoaded].
func New(api frontend.API, tables *Tables, rc *rangecheck.Checker) (*Hasher, error) {
	if tables == nil || !tables.loaded {
		return nil, ErrTablesNotLoaded
	}
	if rc == nil {
		return nil, errors.New("sha2: nil range checker")
	}
	return &Hasher{api: api, t: tables, rc: rc}, nil
}

// Sum returns the 32 digest bytes of msg, one byte per variable. Every
// message byte is range-checked to eight bits; every returned byte is within
// [0, 256) by construction.
func (h *Hasher) Sum(msg []frontend.Variable) []frontend.Variable {
	in := make([]u8, 0, len(msg)+72)
	for i := range msg {
		h.rc.Check(msg[i], 8)
		in = append(in, u8{v: msg[i]})
	}
	in = append(in, padding(len(msg))...)

	var state [8]u32
	for i := range state {
		state[i] = constWord(_seed[i])
	}
	for blk := 0; blk < len(in)/64; blk++ {
		state = permute(h, state, in[blk*64:(blk+1)*64])
	}

	out := make([]frontend.Variable, 0, 32)
	for i := range state {
		for j := 3; j >= 0; j-- {
			out = append(out, h.wire(state[i][j]))
		}
	}
	return out
}

// padding returns the standard SHA-256 length padding for a message of
// bytesLen bytes, as constant cells.
func padding(bytesLen int) []u8 {
	zeroPadLen := 55 - bytesLen%64
	if zeroPadLen < 0 {
		zeroPadLen += 64
	}
	pad := make([]u8, 0, 9+zeroPadLen)
	pad = append(pad, u8{c: 0x80})
	pad = append(pad, make([]u8, zeroPadLen)...)
	var lenbuf [8]byte
	binary.BigEndian.PutUint64(lenbuf[:], uint64(8*bytesLen))
	for i := range lenbuf {
		pad = append(pad, u8{c: lenbuf[i]})
	}
	return pad
}

// permute runs one compression round over a 64-byte block.
func permute(u *Hasher, currentHash [8]u32, p []u8) [8]u32 {
	var w [64]u32

	for i := 0; i < 16; i++ {
		w[i] = u32{p[4*i+3], p[4*i+2], p[4*i+1], p[4*i]}
	}

	for i := 16; i < 64; i++ {
		v1 := w[i-2]
		t1 := u.xor(
			u.rotr(v1, 17),
			u.rotr(v1, 19),
			u.shr(v1, 10),
		)
		v2 := w[i-15]
		t2 := u.xor(
			u.rotr(v2, 7),
			u.rotr(v2, 18),
			u.shr(v2, 3),
		)

		w[i] = u.add(t1, w[i-7], t2, w[i-16])
	}

	a, b, c, d, e, f, g, hh := currentHash[0], currentHash[1], currentHash[2], currentHash[3], currentHash[4], currentHash[5], currentHash[6], currentHash[7]

	for i := 0; i < 64; i++ {
		t1 := u.add(
			hh,
			u.xor(
				u.rotr(e, 6),
				u.rotr(e, 11),
				u.rotr(e, 25)),
			u.xor(
				u.and(e, f),
				u.and(
					u.not(e),
					g)),
			constWord(_K[i]),
			w[i],
		)
		t2 := u.add(
			u.xor(
				u.rotr(a, 2),
				u.rotr(a, 13),
				u.rotr(a, 22)),
			u.xor(
				u.and(a, b),
				u.and(a, c),
				u.and(b, c)),
		)

		hh = g
		g = f
		f = e
		e = u.add(d, t1)
		d = c
		c = b
		b = a
		a = u.add(t1, t2)
	}

	currentHash[0] = u.add(currentHash[0], a)
	currentHash[1] = u.add(currentHash[1], b)
	currentHash[2] = u.add(currentHash[2], c)
	currentHash[3] = u.add(currentHash[3], d)
	currentHash[4] = u.add(currentHash[4], e)
	currentHash[5] = u.add(currentHash[5], f)
	currentHash[6] = u.add(currentHash[6], g)
	currentHash[7] = u.add(currentHash[7], hh)

	return currentHash
}

func constWord(v uint32) u32 {
	return u32{{c: uint8(v)}, {c: uint8(v >> 8)}, {c: uint8(v >> 16)}, {c: uint8(v >> 24)}}
}

func isConst(w u32) bool {
	return w[0].v == nil && w[1].v == nil && w[2].v == nil && w[3].v == nil
}

func constValue(w u32) uint32 {
	return uint32(w[0].c) | uint32(w[1].c)<<8 | uint32(w[2].c)<<16 | uint32(w[3].c)<<24
}

// wire returns the byte as a circuit value.
func (h *Hasher) wire(x u8) frontend.Variable {
	if x.v == nil {
		return int(x.c)
	}
	return x.v
}

func (h *Hasher) xor8(x, y u8) u8 {
	if x.v == nil && y.v == nil {
		return u8{c: x.c ^ y.c}
	}
	if x.v == nil && x.c == 0 {
		return y
	}
	if y.v == nil && y.c == 0 {
		return x
	}
	return u8{v: h.t.queryXor(h.wire(x), h.wire(y))}
}

func (h *Hasher) and8(x, y u8) u8 {
	if x.v == nil && y.v == nil {
		return u8{c: x.c & y.c}
	}
	if x.v == nil {
		if x.c == 0 {
			return u8{}
		}
		if x.c == 0xff {
			return y
		}
	}
	if y.v == nil {
		if y.c == 0 {
			return u8{}
		}
		if y.c == 0xff {
			return x
		}
	}
	return u8{v: h.t.queryAnd(h.wire(x), h.wire(y))}
}

func (h *Hasher) not8(x u8) u8 {
	if x.v == nil {
		return u8{c: ^x.c}
	}
	return u8{v: h.api.Sub(255, x.v)}
}

func (h *Hasher) xor(a, b u32, rest ...u32) u32 {
	res := a
	for _, x := range append([]u32{b}, rest...) {
		for i := range res {
			res[i] = h.xor8(res[i], x[i])
		}
	}
	return res
}

func (h *Hasher) and(a, b u32, rest ...u32) u32 {
	res := a
	for _, x := range append([]u32{b}, rest...) {
		for i := range res {
			res[i] = h.and8(res[i], x[i])
		}
	}
	return res
}

func (h *Hasher) not(a u32) u32 {
	for i := range a {
		a[i] = h.not8(a[i])
	}
	return a
}

// rotr rotates the word right by r bits: whole bytes relabel, the sub-byte
// remainder splits every byte and glues neighbouring slices.
func (h *Hasher) rotr(w u32, r int) u32 {
	q, s := r/8, r%8
	var rot u32
	for i := range rot {
		rot[i] = w[(i+q)%4]
	}
	if s == 0 {
		return rot
	}
	var lo, hi [4]u8
	for i := range rot {
		lo[i], hi[i] = h.split(rot[i], uint(s))
	}
	var out u32
	for i := range out {
		out[i] = h.combine(hi[i], lo[(i+1)%4], uint(8-s))
	}
	return out
}

// shr shifts the word right by r bits, filling with zeros.
func (h *Hasher) shr(w u32, r int) u32 {
	q, s := r/8, r%8
	var sh u32
	for i := range sh {
		if i+q < 4 {
			sh[i] = w[i+q]
		}
	}
	if s == 0 {
		return sh
	}
	var out u32
	for i := range out {
		_, hi := h.split(sh[i], uint(s))
		if i+1 < 4 {
			lo, _ := h.split(sh[i+1], uint(s))
			out[i] = h.combine(hi, lo, uint(8-s))
		} else {
			out[i] = hi
		}
	}
	return out
}

// split cuts a byte at bit s into its low s bits and high 8-s bits, both
// range-checked.
func (h *Hasher) split(x u8, s uint) (lo, hi u8) {
	if x.v == nil {
		return u8{c: x.c & (1<<s - 1)}, u8{c: x.c >> s}
	}
	res, err := h.api.Compiler().NewHint(SplitHint, 2, s, x.v)
	if err != nil {
		panic(err)
	}
	h.rc.Check(res[0], int(s))
	h.rc.Check(res[1], int(8-s))
	h.api.AssertIsEqual(x.v, h.api.Add(res[0], h.api.Mul(res[1], 1<<s)))
	return u8{v: res[0]}, u8{v: res[1]}
}

// combine glues base and top into base + top*2^shift. The caller guarantees
// the slices do not overlap, so the result is again a byte.
func (h *Hasher) combine(base, top u8, shift uint) u8 {
	if base.v == nil && top.v == nil {
		return u8{c: base.c | top.c<<shift}
	}
	return u8{v: h.api.Add(h.wire(base), h.api.Mul(h.wire(top), 1<<shift))}
}

// add sums words modulo 2^32: one native field sum, then a witnessed
// byte/carry decomposition proven equal to it.
func (h *Hasher) add(a u32, rest ...u32) u32 {
	if len(rest) == 0 {
		return a
	}
	ws := append([]u32{a}, rest...)
	var constSum uint64
	var terms []frontend.Variable
	for _, w := range ws {
		if isConst(w) {
			constSum += uint64(constValue(w))
			continue
		}
		terms = append(terms, h.recompose(w))
	}
	if len(terms) == 0 {
		return constWord(uint32(constSum))
	}
	sum := terms[0]
	for _, t := range terms[1:] {
		sum = h.api.Add(sum, t)
	}
	if constSum > 0 {
		sum = h.api.Add(sum, constSum)
	}
	out, err := h.api.Compiler().NewHint(Word32Hint, 5, sum)
	if err != nil {
		panic(err)
	}
	for i := 0; i < 4; i++ {
		h.rc.Check(out[i], 8)
	}
	// each word is below 2^32, so the carry is below the word count
	h.rc.Check(out[4], bits.Len(uint(len(ws)-1)))
	recomposed := h.api.Add(out[0],
		h.api.Mul(out[1], 1<<8),
		h.api.Mul(out[2], 1<<16),
		h.api.Mul(out[3], 1<<24),
		h.api.Mul(out[4], int64(1)<<32),
	)
	h.api.AssertIsEqual(sum, recomposed)
	return u32{{v: out[0]}, {v: out[1]}, {v: out[2]}, {v: out[3]}}
}

func (h *Hasher) recompose(w u32) frontend.Variable {
	return h.api.Add(h.wire(w[0]),
		h.api.Mul(h.wire(w[1]), 1<<8),
		h.api.Mul(h.wire(w[2]), 1<<16),
		h.api.Mul(h.wire(w[3]), 1<<24),
	)
}
