// cpu_x86_muldiv.go - Group 3 unary, multiply and divide engine (F6, F7)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import "fmt"

// UnaryOp is the reg-field selector of the F6/F7 group.
type UnaryOp uint8

const (
	OpTEST  UnaryOp = iota
	OpTEST1         // undocumented alias of TEST
	OpNOT
	OpNEG
	OpMUL
	OpIMUL
	OpDIV
	OpIDIV
)

var unaryOpNames = [8]string{"TEST", "TEST", "NOT", "NEG", "MUL", "IMUL", "DIV", "IDIV"}

func (op UnaryOp) String() string {
	if op < 8 {
		return unaryOpNames[op]
	}
	return fmt.Sprintf("UnaryOp(%d)", uint8(op))
}

// Test ANDs the operands for flags only.
func Test(w Width, a, b uint32, f Flags) Flags {
	_, f = logic(w, a&b&w.Mask(), f)
	return f
}

// Not is a one's complement; no flags are affected.
func Not(w Width, v uint32) uint32 {
	return ^v & w.Mask()
}

// Neg is a two's complement negation, flagged as 0 - v.
func Neg(w Width, v uint32, f Flags) (uint32, Flags) {
	return subWithBorrow(w, 0, v&w.Mask(), 0, f)
}

// Multiply returns the double-width product of a and b split in halves.
// CF and OF are set when the high half is significant; SF, ZF, AF and PF
// are left unmodified.
func Multiply(w Width, a, b uint32, signed bool, f Flags) (lo, hi uint32, out Flags) {
	bits := w.Bits()
	var overflow bool
	if signed {
		p := int64(int32(w.signExtend(a&w.Mask()))) * int64(int32(w.signExtend(b&w.Mask())))
		lo = uint32(p) & w.Mask()
		hi = uint32(p>>bits) & w.Mask()
		overflow = p != int64(int32(w.signExtend(lo)))
	} else {
		p := uint64(a&w.Mask()) * uint64(b&w.Mask())
		lo = uint32(p) & w.Mask()
		hi = uint32(p>>bits) & w.Mask()
		overflow = hi != 0
	}
	f = f.With(FlagCF, overflow)
	f = f.With(FlagOF, overflow)
	return lo, hi, f
}

// Divide divides the double-width value hi:lo by divisor. ok is false for
// a zero divisor or a quotient that does not fit in w, the two #DE cases.
func Divide(w Width, hi, lo, divisor uint32, signed bool) (quot, rem uint32, ok bool) {
	bits := w.Bits()
	mask := w.Mask()
	divisor &= mask
	if divisor == 0 {
		return 0, 0, false
	}
	raw := uint64(hi&mask)<<bits | uint64(lo&mask)

	if !signed {
		q := raw / uint64(divisor)
		if q > uint64(mask) {
			return 0, 0, false
		}
		return uint32(q), uint32(raw % uint64(divisor)), true
	}

	var dividend int64
	switch w {
	case Width8:
		dividend = int64(int16(raw))
	case Width16:
		dividend = int64(int32(raw))
	default:
		dividend = int64(raw)
	}
	d := int64(int32(w.signExtend(divisor)))
	q := dividend / d
	r := dividend % d

	limit := int64(w.SignBit())
	if q >= limit || q < -limit {
		return 0, 0, false
	}
	return uint32(q) & mask, uint32(r) & mask, true
}
