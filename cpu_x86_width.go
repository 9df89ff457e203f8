// cpu_x86_width.go - Operand width and operand/address size resolution
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import "fmt"

// Width is an operand width in bits.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
)

// Bits returns the width in bits
func (w Width) Bits() uint {
	return uint(w)
}

// Bytes returns the width in bytes
func (w Width) Bytes() uint32 {
	return uint32(w) / 8
}

// Mask returns the all-ones value for the width
func (w Width) Mask() uint32 {
	switch w {
	case Width8:
		return 0xFF
	case Width16:
		return 0xFFFF
	}
	return 0xFFFFFFFF
}

// SignBit returns the most significant bit for the width
func (w Width) SignBit() uint32 {
	return 1 << (w.Bits() - 1)
}

// signExtend widens v from w to 32 bits
func (w Width) signExtend(v uint32) uint32 {
	switch w {
	case Width8:
		return uint32(int32(int8(v)))
	case Width16:
		return uint32(int32(int16(v)))
	}
	return v
}

func (w Width) String() string {
	return fmt.Sprintf("%d-bit", uint8(w))
}

// operandSize32 returns the effective operand size: the code segment
// default, inverted by the 0x66 prefix.
func (c *CPU_X86) operandSize32() bool {
	size := c.Segs[SegCS].Size
	if c.Prefix.OpSize {
		size = !size
	}
	return size
}

// addressSize32 returns the effective address size: the code segment
// default, inverted by the 0x67 prefix.
func (c *CPU_X86) addressSize32() bool {
	size := c.Segs[SegCS].Size
	if c.Prefix.AddrSize {
		size = !size
	}
	return size
}

// operandWidth returns the 16/32-bit width selected for a "v" sized operand.
func (c *CPU_X86) operandWidth() Width {
	if c.operandSize32() {
		return Width32
	}
	return Width16
}

// resolveSizes returns the operand width for a v-sized group and the
// address size used to decode its ModR/M. Byte groups pass byteOp.
func (c *CPU_X86) resolveSizes(byteOp bool) (Width, bool) {
	if byteOp {
		return Width8, c.addressSize32()
	}
	return c.operandWidth(), c.addressSize32()
}
