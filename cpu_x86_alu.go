// cpu_x86_alu.go - Group 1 arithmetic/logic and INC/DEC flag engine
//
// Every function here is pure: it takes the operands and the incoming
// EFLAGS and returns the result together with the updated EFLAGS. Flags an
// operation does not define are carried through untouched.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import "fmt"

// ArithOp is the reg-field selector of the arithmetic group (80-83).
type ArithOp uint8

const (
	OpADD ArithOp = iota
	OpOR
	OpADC
	OpSBB
	OpAND
	OpSUB
	OpXOR
	OpCMP
)

var arithOpNames = [8]string{"ADD", "OR", "ADC", "SBB", "AND", "SUB", "XOR", "CMP"}

func (op ArithOp) String() string {
	if op < 8 {
		return arithOpNames[op]
	}
	return fmt.Sprintf("ArithOp(%d)", uint8(op))
}

type aluFunc func(w Width, dst, src uint32, f Flags) (uint32, Flags)

var aluOps = [8]aluFunc{
	OpADD: aluAdd,
	OpOR:  aluOr,
	OpADC: aluAdc,
	OpSBB: aluSbb,
	OpAND: aluAnd,
	OpSUB: aluSub,
	OpXOR: aluXor,
	OpCMP: aluSub,
}

// ArithLogic runs one arithmetic group operation at width w. writeBack is
// false only for CMP.
func ArithLogic(op ArithOp, w Width, dst, src uint32, f Flags) (result uint32, writeBack bool, out Flags) {
	result, out = aluOps[op&7](w, dst&w.Mask(), src&w.Mask(), f)
	return result, op&7 != OpCMP, out
}

// addWithCarry computes dst+src+carry and every flag it defines
func addWithCarry(w Width, dst, src, carry uint32, f Flags) (uint32, Flags) {
	sum := uint64(dst) + uint64(src) + uint64(carry)
	r := uint32(sum) & w.Mask()

	f = f.With(FlagCF, sum > uint64(w.Mask()))
	// Operands share a sign that the result does not
	f = f.With(FlagOF, ^(dst^src)&(dst^r)&w.SignBit() != 0)
	f = f.With(FlagAF, (dst^src^r)&0x10 != 0)
	return r, f.withResult(w, r)
}

// subWithBorrow computes dst-src-borrow and every flag it defines
func subWithBorrow(w Width, dst, src, borrow uint32, f Flags) (uint32, Flags) {
	r := (dst - src - borrow) & w.Mask()

	f = f.With(FlagCF, uint64(dst) < uint64(src)+uint64(borrow))
	// Operands differ in sign and the result sign differs from dst
	f = f.With(FlagOF, (dst^src)&(dst^r)&w.SignBit() != 0)
	f = f.With(FlagAF, (dst^src^r)&0x10 != 0)
	return r, f.withResult(w, r)
}

// logic clears CF and OF. AF is undefined for logical operations and is
// left as it was.
func logic(w Width, r uint32, f Flags) (uint32, Flags) {
	f &^= FlagCF | FlagOF
	return r, f.withResult(w, r)
}

func aluAdd(w Width, dst, src uint32, f Flags) (uint32, Flags) {
	return addWithCarry(w, dst, src, 0, f)
}

func aluAdc(w Width, dst, src uint32, f Flags) (uint32, Flags) {
	return addWithCarry(w, dst, src, f.bit(FlagCF), f)
}

func aluSub(w Width, dst, src uint32, f Flags) (uint32, Flags) {
	return subWithBorrow(w, dst, src, 0, f)
}

func aluSbb(w Width, dst, src uint32, f Flags) (uint32, Flags) {
	return subWithBorrow(w, dst, src, f.bit(FlagCF), f)
}

func aluOr(w Width, dst, src uint32, f Flags) (uint32, Flags) {
	return logic(w, dst|src, f)
}

func aluAnd(w Width, dst, src uint32, f Flags) (uint32, Flags) {
	return logic(w, dst&src, f)
}

func aluXor(w Width, dst, src uint32, f Flags) (uint32, Flags) {
	return logic(w, dst^src, f)
}

// -----------------------------------------------------------------------------
// INC/DEC
// -----------------------------------------------------------------------------

// IncDecOp is the reg-field selector of the FE group and the first two
// selectors of the FF group.
type IncDecOp uint8

const (
	OpINC IncDecOp = iota
	OpDEC
)

func (op IncDecOp) String() string {
	switch op {
	case OpINC:
		return "INC"
	case OpDEC:
		return "DEC"
	}
	return fmt.Sprintf("IncDecOp(%d)", uint8(op))
}

// IncDec increments or decrements v. CF is never modified.
func IncDec(op IncDecOp, w Width, v uint32, f Flags) (uint32, Flags) {
	v &= w.Mask()
	var r uint32
	if op == OpINC {
		r = (v + 1) & w.Mask()
		f = f.With(FlagOF, v == w.SignBit()-1)
	} else {
		r = (v - 1) & w.Mask()
		f = f.With(FlagOF, v == w.SignBit())
	}
	// AF tracks a zero low nibble in both directions
	f = f.With(FlagAF, r&0x0F == 0)
	return r, f.withResult(w, r)
}
