// cpu_x86_test.go - Processor state unit tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import (
	"testing"
)

const testCodeBase = 0x1000

// newTestCPU returns a CPU over 1MB of flat memory with code loaded at
// testCodeBase and a usable stack at 0x8000.
func newTestCPU(code ...byte) (*CPU_X86, *FlatMemory) {
	mem := NewFlatMemory(1024 * 1024)
	cpu := NewCPU_X86(mem)
	mem.Load(testCodeBase, code)
	cpu.EIP = testCodeBase
	cpu.Regs[RegESP] = 0x8000
	return cpu, mem
}

// =============================================================================
// Register Access Tests
// =============================================================================

func TestX86_RegisterAccess(t *testing.T) {
	cpu, _ := newTestCPU()

	cpu.Regs[RegEAX] = 0x12345678
	if cpu.Reg16(RegEAX) != 0x5678 {
		t.Errorf("AX: got 0x%04X, want 0x5678", cpu.Reg16(RegEAX))
	}
	if cpu.Reg8(0) != 0x78 {
		t.Errorf("AL: got 0x%02X, want 0x78", cpu.Reg8(0))
	}
	if cpu.Reg8(4) != 0x56 {
		t.Errorf("AH: got 0x%02X, want 0x56", cpu.Reg8(4))
	}

	cpu.SetReg8(0, 0xAB)
	if cpu.Regs[RegEAX] != 0x123456AB {
		t.Errorf("SetReg8(AL): EAX got 0x%08X, want 0x123456AB", cpu.Regs[RegEAX])
	}

	cpu.SetReg8(4, 0xCD)
	if cpu.Regs[RegEAX] != 0x1234CDAB {
		t.Errorf("SetReg8(AH): EAX got 0x%08X, want 0x1234CDAB", cpu.Regs[RegEAX])
	}

	cpu.SetReg16(RegEAX, 0x9999)
	if cpu.Regs[RegEAX] != 0x12349999 {
		t.Errorf("SetReg16(AX): EAX got 0x%08X, want 0x12349999", cpu.Regs[RegEAX])
	}

	cpu.Regs[RegEBX] = 0xAABBCCDD
	if cpu.Reg32(3) != 0xAABBCCDD {
		t.Errorf("Reg32(3): got 0x%08X, want 0xAABBCCDD", cpu.Reg32(3))
	}
	if cpu.Reg16(3) != 0xCCDD {
		t.Errorf("Reg16(3): got 0x%04X, want 0xCCDD", cpu.Reg16(3))
	}
	if cpu.Reg8(3) != 0xDD { // BL
		t.Errorf("Reg8(3): got 0x%02X, want 0xDD", cpu.Reg8(3))
	}
	if cpu.Reg8(7) != 0xCC { // BH
		t.Errorf("Reg8(7): got 0x%02X, want 0xCC", cpu.Reg8(7))
	}
	if cpu.Reg(7, Width8) != 0xCC {
		t.Errorf("Reg(7, 8): got 0x%02X, want 0xCC", cpu.Reg(7, Width8))
	}
}

func TestX86_RegisterByName(t *testing.T) {
	cpu, _ := newTestCPU()

	if !cpu.SetRegisterByName("ECX", 0x11223344) {
		t.Fatal("SetRegisterByName(ECX) failed")
	}
	if v, _ := cpu.RegisterByName("cl"); v != 0x44 {
		t.Errorf("cl: got 0x%02X, want 0x44", v)
	}
	if v, _ := cpu.RegisterByName("ch"); v != 0x33 {
		t.Errorf("ch: got 0x%02X, want 0x33", v)
	}
	if v, _ := cpu.RegisterByName("cx"); v != 0x3344 {
		t.Errorf("cx: got 0x%04X, want 0x3344", v)
	}
	cpu.SetRegisterByName("dh", 0x7F)
	if cpu.Regs[RegEDX] != 0x7F00 {
		t.Errorf("EDX after dh=0x7F: got 0x%08X, want 0x00007F00", cpu.Regs[RegEDX])
	}
	if _, ok := cpu.RegisterByName("r8"); ok {
		t.Error("r8 should not resolve")
	}
	cpu.SetRegisterByName("eflags", 0)
	if cpu.Flags != flagsReserved {
		t.Errorf("eflags=0 should keep bit 1: got 0x%X", uint32(cpu.Flags))
	}
}

// =============================================================================
// Flag Tests
// =============================================================================

func TestX86_Flags(t *testing.T) {
	cpu, _ := newTestCPU()

	cpu.Flags = cpu.Flags.With(FlagCF, true)
	if !cpu.CF() {
		t.Error("CF should be set")
	}

	cpu.Flags = cpu.Flags.With(FlagZF, true)
	if !cpu.ZF() {
		t.Error("ZF should be set")
	}

	cpu.Flags = cpu.Flags.With(FlagCF, false)
	if cpu.CF() {
		t.Error("CF should be clear")
	}

	if !parity(0x00) {
		t.Error("parity(0x00) should be even")
	}
	if parity(0x01) {
		t.Error("parity(0x01) should be odd")
	}
	if !parity(0x03) { // Two bits set = even
		t.Error("parity(0x03) should be even")
	}
	if parity(0x80) {
		t.Error("parity(0x80) should be odd")
	}
}

func TestX86_FlagsString(t *testing.T) {
	f := FlagCF | FlagZF | flagsReserved
	if got, want := f.String(), "of df if tf sf ZF af pf CF"; got != want {
		t.Errorf("Flags.String: got %q, want %q", got, want)
	}
}

func TestX86_Reset(t *testing.T) {
	cpu, _ := newTestCPU()
	cpu.Regs[RegEAX] = 1
	cpu.Flags |= FlagOF
	cpu.Segs[SegDS].Limit = 0xFF
	_ = cpu.RaiseFault(ExceptionUD)

	cpu.Reset()
	if cpu.Regs[RegEAX] != 0 || cpu.EIP != 0 {
		t.Errorf("registers not cleared: EAX=0x%08X EIP=0x%08X", cpu.Regs[RegEAX], cpu.EIP)
	}
	if cpu.Flags != flagsReserved {
		t.Errorf("Flags: got 0x%X, want 0x2", uint32(cpu.Flags))
	}
	for i, s := range cpu.Segs {
		if s.Limit != 0xFFFFFFFF || !s.Size || s.Base != 0 {
			t.Errorf("segment %d not flat: %+v", i, s)
		}
	}
	if cpu.PendingFault() != nil {
		t.Error("pending fault should be cleared by Reset")
	}
}

func TestX86_SizeResolution(t *testing.T) {
	tests := []struct {
		name     string
		default_ bool
		opSize   bool
		addrSize bool
		wantW    Width
		wantA32  bool
	}{
		{"32-bit default", true, false, false, Width32, true},
		{"32-bit with 66", true, true, false, Width16, true},
		{"32-bit with 67", true, false, true, Width32, false},
		{"32-bit with 66 67", true, true, true, Width16, false},
		{"16-bit default", false, false, false, Width16, false},
		{"16-bit with 66", false, true, false, Width32, false},
		{"16-bit with 67", false, false, true, Width16, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU()
			cpu.Segs[SegCS].Size = tt.default_
			cpu.Prefix.OpSize = tt.opSize
			cpu.Prefix.AddrSize = tt.addrSize

			w, a32 := cpu.resolveSizes(false)
			if w != tt.wantW || a32 != tt.wantA32 {
				t.Errorf("got (%v, %v), want (%v, %v)", w, a32, tt.wantW, tt.wantA32)
			}
			if bw, _ := cpu.resolveSizes(true); bw != Width8 {
				t.Errorf("byte op width: got %v, want 8-bit", bw)
			}
		})
	}
}
