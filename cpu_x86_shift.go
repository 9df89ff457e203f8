// cpu_x86_shift.go - Group 2 rotate/shift flag engine (C0, C1, D0-D3)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import "fmt"

// ShiftKind is the reg-field selector of the rotate/shift group.
type ShiftKind uint8

const (
	ShiftROL ShiftKind = iota
	ShiftROR
	ShiftRCL
	ShiftRCR
	ShiftSHL
	ShiftSHR
	ShiftSAL // encodes the same operation as SHL
	ShiftSAR
)

var shiftKindNames = [8]string{"ROL", "ROR", "RCL", "RCR", "SHL", "SHR", "SAL", "SAR"}

func (k ShiftKind) String() string {
	if k < 8 {
		return shiftKindNames[k]
	}
	return fmt.Sprintf("ShiftKind(%d)", uint8(k))
}

// throughCarry reports whether CF is part of the rotated value
func (k ShiftKind) throughCarry() bool {
	return k == ShiftRCL || k == ShiftRCR
}

// shiftFunc gets a count already normalized to 1..width (1..width-1 for
// everything but RCL/RCR).
type shiftFunc func(w Width, v uint32, n uint, f Flags) (uint32, Flags)

var shiftOps = [8]shiftFunc{
	ShiftROL: shiftRol,
	ShiftROR: shiftRor,
	ShiftRCL: shiftRcl,
	ShiftRCR: shiftRcr,
	ShiftSHL: shiftShl,
	ShiftSHR: shiftShr,
	ShiftSAL: shiftShl,
	ShiftSAR: shiftSar,
}

// normalizeCount reduces count modulo width+1 for the carry rotates and
// masks it to width-1 for everything else.
func normalizeCount(k ShiftKind, w Width, count uint8) uint {
	if k.throughCarry() {
		return uint(count) % (w.Bits() + 1)
	}
	return uint(count) & (w.Bits() - 1)
}

// RotateShift applies one rotate/shift group operation. A count that
// normalizes to zero returns v and f unchanged.
func RotateShift(k ShiftKind, w Width, v uint32, count uint8, f Flags) (uint32, Flags) {
	k &= 7
	n := normalizeCount(k, w, count)
	if n == 0 {
		return v, f
	}
	r, f := shiftOps[k](w, v&w.Mask(), n, f)
	return r, f.withResult(w, r)
}

// msb returns the sign bit of v at width w
func msb(w Width, v uint32) bool {
	return v&w.SignBit() != 0
}

// bitAt returns bit i of v
func bitAt(v uint32, i uint) bool {
	return (v>>i)&1 != 0
}

func shiftRol(w Width, v uint32, n uint, f Flags) (uint32, Flags) {
	bits := w.Bits()
	r := ((v << n) | (v >> (bits - n))) & w.Mask()

	cf := r&1 != 0
	f = f.With(FlagCF, cf)
	if n == 1 {
		f = f.With(FlagOF, msb(w, r) != cf)
	}
	return r, f
}

func shiftRor(w Width, v uint32, n uint, f Flags) (uint32, Flags) {
	bits := w.Bits()
	r := ((v >> n) | (v << (bits - n))) & w.Mask()

	cf := msb(w, r)
	f = f.With(FlagCF, cf)
	if n == 1 {
		f = f.With(FlagOF, cf != bitAt(r, bits-2))
	}
	return r, f
}

// rotateRing rotates the width+1 bit ring formed by CF:v. left selects
// the direction.
func rotateRing(w Width, v uint32, n uint, f Flags, left bool) (uint32, bool) {
	bits := w.Bits()
	ringBits := bits + 1
	ringMask := uint64(1)<<ringBits - 1

	ring := uint64(v) | uint64(f.bit(FlagCF))<<bits
	if left {
		ring = (ring<<n | ring>>(ringBits-n)) & ringMask
	} else {
		ring = (ring>>n | ring<<(ringBits-n)) & ringMask
	}
	return uint32(ring) & w.Mask(), (ring>>bits)&1 != 0
}

func shiftRcl(w Width, v uint32, n uint, f Flags) (uint32, Flags) {
	r, cf := rotateRing(w, v, n, f, true)
	f = f.With(FlagCF, cf)
	if n == 1 {
		f = f.With(FlagOF, msb(w, r) != cf)
	}
	return r, f
}

func shiftRcr(w Width, v uint32, n uint, f Flags) (uint32, Flags) {
	r, cf := rotateRing(w, v, n, f, false)
	f = f.With(FlagCF, cf)
	if n == 1 {
		f = f.With(FlagOF, cf != bitAt(r, w.Bits()-2))
	}
	return r, f
}

func shiftShl(w Width, v uint32, n uint, f Flags) (uint32, Flags) {
	r := (v << n) & w.Mask()

	cf := bitAt(v, w.Bits()-n)
	f = f.With(FlagCF, cf)
	if n == 1 {
		f = f.With(FlagOF, msb(w, r) != cf)
	}
	return r, f
}

func shiftShr(w Width, v uint32, n uint, f Flags) (uint32, Flags) {
	r := v >> n

	f = f.With(FlagCF, bitAt(v, n-1))
	if n == 1 {
		f = f.With(FlagOF, msb(w, v))
	}
	return r, f
}

func shiftSar(w Width, v uint32, n uint, f Flags) (uint32, Flags) {
	r := uint32(int32(w.signExtend(v))>>n) & w.Mask()

	// CF is bit 0 of the source for every count
	f = f.With(FlagCF, bitAt(v, 0))
	if n == 1 {
		f &^= FlagOF
	}
	return r, f
}
