// cpu_x86_exception.go - Processor faults
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import (
	"errors"
	"fmt"
)

// Exception is a processor exception vector.
type Exception uint8

const (
	ExceptionDE Exception = 0  // Divide error
	ExceptionDB Exception = 1  // Debug
	ExceptionBP Exception = 3  // Breakpoint
	ExceptionOF Exception = 4  // Overflow
	ExceptionBR Exception = 5  // BOUND range exceeded
	ExceptionUD Exception = 6  // Invalid opcode
	ExceptionNM Exception = 7  // Device not available
	ExceptionDF Exception = 8  // Double fault
	ExceptionTS Exception = 10 // Invalid TSS
	ExceptionNP Exception = 11 // Segment not present
	ExceptionSS Exception = 12 // Stack-segment fault
	ExceptionGP Exception = 13 // General protection
	ExceptionPF Exception = 14 // Page fault
	ExceptionMF Exception = 16 // x87 floating-point error
	ExceptionAC Exception = 17 // Alignment check
)

var exceptionNames = map[Exception]string{
	ExceptionDE: "#DE",
	ExceptionDB: "#DB",
	ExceptionBP: "#BP",
	ExceptionOF: "#OF",
	ExceptionBR: "#BR",
	ExceptionUD: "#UD",
	ExceptionNM: "#NM",
	ExceptionDF: "#DF",
	ExceptionTS: "#TS",
	ExceptionNP: "#NP",
	ExceptionSS: "#SS",
	ExceptionGP: "#GP",
	ExceptionPF: "#PF",
	ExceptionMF: "#MF",
	ExceptionAC: "#AC",
}

func (e Exception) String() string {
	if s, ok := exceptionNames[e]; ok {
		return s
	}
	return fmt.Sprintf("#%d", uint8(e))
}

// hasErrorCode reports whether the vector pushes an error code
func (e Exception) hasErrorCode() bool {
	switch e {
	case ExceptionDF, ExceptionTS, ExceptionNP, ExceptionSS, ExceptionGP, ExceptionPF, ExceptionAC:
		return true
	}
	return false
}

// Fault is a processor exception raised while executing one instruction.
// The caller owns vectoring; the core only records and returns it.
type Fault struct {
	Vector       Exception
	ErrorCode    uint32
	HasErrorCode bool
	EIP          uint32 // first byte of the faulting instruction
	Opcode       byte
}

func (f *Fault) Error() string {
	if f.HasErrorCode {
		return fmt.Sprintf("x86 fault %s(0x%X) at EIP=0x%08X opcode 0x%02X", f.Vector, f.ErrorCode, f.EIP, f.Opcode)
	}
	return fmt.Sprintf("x86 fault %s at EIP=0x%08X opcode 0x%02X", f.Vector, f.EIP, f.Opcode)
}

// ErrOpcodeNotImplemented is returned by Step for opcodes outside the group set.
var ErrOpcodeNotImplemented = errors.New("opcode not implemented")

// RaiseFault records an exception on the CPU and returns it as an error.
// Exceptions that carry an error code get code 0.
func (c *CPU_X86) RaiseFault(e Exception) error {
	return c.RaiseFaultCode(e, 0)
}

// RaiseFaultCode records an exception with an explicit error code.
func (c *CPU_X86) RaiseFaultCode(e Exception, code uint32) error {
	f := &Fault{
		Vector:       e,
		ErrorCode:    code,
		HasErrorCode: e.hasErrorCode(),
		EIP:          c.start,
		Opcode:       c.opcode,
	}
	c.fault = f
	c.log.Debug("x86: exception", "vector", e.String(), "eip", fmt.Sprintf("0x%08X", c.start), "opcode", fmt.Sprintf("0x%02X", c.opcode))
	return f
}

// PendingFault returns the last recorded fault, or nil.
func (c *CPU_X86) PendingFault() *Fault {
	return c.fault
}

// ClearFault drops the recorded fault once the caller has vectored it.
func (c *CPU_X86) ClearFault() {
	c.fault = nil
}

// IsFault reports whether err is a processor fault with the given vector.
func IsFault(err error, e Exception) bool {
	var f *Fault
	return errors.As(err, &f) && f.Vector == e
}
