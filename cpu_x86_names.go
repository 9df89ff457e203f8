// cpu_x86_names.go - Register and flag lookup by name
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import "strings"

type regName struct {
	idx byte
	w   Width
}

var regNames = map[string]regName{
	"eax": {RegEAX, Width32}, "ecx": {RegECX, Width32}, "edx": {RegEDX, Width32}, "ebx": {RegEBX, Width32},
	"esp": {RegESP, Width32}, "ebp": {RegEBP, Width32}, "esi": {RegESI, Width32}, "edi": {RegEDI, Width32},
	"ax": {RegEAX, Width16}, "cx": {RegECX, Width16}, "dx": {RegEDX, Width16}, "bx": {RegEBX, Width16},
	"sp": {RegESP, Width16}, "bp": {RegEBP, Width16}, "si": {RegESI, Width16}, "di": {RegEDI, Width16},
	// 8-bit names use the Reg8 index map
	"al": {0, Width8}, "cl": {1, Width8}, "dl": {2, Width8}, "bl": {3, Width8},
	"ah": {4, Width8}, "ch": {5, Width8}, "dh": {6, Width8}, "bh": {7, Width8},
}

var flagNames = map[string]Flags{
	"cf": FlagCF, "pf": FlagPF, "af": FlagAF, "zf": FlagZF,
	"sf": FlagSF, "tf": FlagTF, "if": FlagIF, "df": FlagDF, "of": FlagOF,
}

// RegisterByName reads a general register, EIP or EFLAGS by its
// assembler name (case-insensitive).
func (c *CPU_X86) RegisterByName(name string) (uint32, bool) {
	name = strings.ToLower(name)
	switch name {
	case "eip":
		return c.EIP, true
	case "eflags", "flags":
		return uint32(c.Flags), true
	}
	r, ok := regNames[name]
	if !ok {
		return 0, false
	}
	return c.Reg(r.idx, r.w), true
}

// SetRegisterByName writes a register named as in RegisterByName.
func (c *CPU_X86) SetRegisterByName(name string, v uint32) bool {
	name = strings.ToLower(name)
	switch name {
	case "eip":
		c.EIP = v
		return true
	case "eflags", "flags":
		c.Flags = Flags(v) | flagsReserved
		return true
	}
	r, ok := regNames[name]
	if !ok {
		return false
	}
	c.SetReg(r.idx, r.w, v)
	return true
}

// FlagByName returns the EFLAGS bit for a two-letter flag name.
func FlagByName(name string) (Flags, bool) {
	f, ok := flagNames[strings.ToLower(name)]
	return f, ok
}
