// cpu_x86_flags.go - EFLAGS bit set
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import "strings"

// Flags is the EFLAGS register.
type Flags uint32

// Flag bit positions
const (
	FlagCF Flags = 1 << 0  // Carry Flag
	FlagPF Flags = 1 << 2  // Parity Flag
	FlagAF Flags = 1 << 4  // Auxiliary Carry Flag
	FlagZF Flags = 1 << 6  // Zero Flag
	FlagSF Flags = 1 << 7  // Sign Flag
	FlagTF Flags = 1 << 8  // Trap Flag
	FlagIF Flags = 1 << 9  // Interrupt Enable Flag
	FlagDF Flags = 1 << 10 // Direction Flag
	FlagOF Flags = 1 << 11 // Overflow Flag

	// Bit 1 always reads as one
	flagsReserved Flags = 1 << 1

	// ArithFlags are the six status flags the group engines compute
	ArithFlags = FlagCF | FlagPF | FlagAF | FlagZF | FlagSF | FlagOF
)

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// With returns fl with f set or cleared.
func (fl Flags) With(f Flags, set bool) Flags {
	if set {
		return fl | f
	}
	return fl &^ f
}

// bit returns 1 if f is set, else 0
func (fl Flags) bit(f Flags) uint32 {
	if fl&f != 0 {
		return 1
	}
	return 0
}

// withResult recomputes ZF, SF and PF from a result of width w.
func (fl Flags) withResult(w Width, r uint32) Flags {
	fl = fl.With(FlagZF, r&w.Mask() == 0)
	fl = fl.With(FlagSF, r&w.SignBit() != 0)
	return fl.With(FlagPF, parity(byte(r)))
}

func (fl Flags) String() string {
	names := []struct {
		f    Flags
		name string
	}{
		{FlagOF, "OF"}, {FlagDF, "DF"}, {FlagIF, "IF"}, {FlagTF, "TF"},
		{FlagSF, "SF"}, {FlagZF, "ZF"}, {FlagAF, "AF"}, {FlagPF, "PF"}, {FlagCF, "CF"},
	}
	var sb strings.Builder
	for _, n := range names {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		if fl&n.f != 0 {
			sb.WriteString(n.name)
		} else {
			sb.WriteString(strings.ToLower(n.name))
		}
	}
	return sb.String()
}

// parity returns the parity of the low byte (true = even, false = odd)
func parity(v byte) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return (v & 1) == 0
}
