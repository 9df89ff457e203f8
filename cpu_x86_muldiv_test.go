// cpu_x86_muldiv_test.go - Group 3 engine tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulDiv_TestAndNot(t *testing.T) {
	f := Test(Width8, 0xF0, 0x0F, FlagCF|FlagOF|FlagAF)
	assert.True(t, f.Has(FlagZF|FlagPF))
	assert.False(t, f.Has(FlagCF), "TEST clears CF")
	assert.False(t, f.Has(FlagOF), "TEST clears OF")
	assert.True(t, f.Has(FlagAF), "TEST leaves AF")

	f = Test(Width32, 0x80000000, 0xFFFFFFFF, 0)
	assert.True(t, f.Has(FlagSF))
	assert.False(t, f.Has(FlagZF))

	assert.Equal(t, uint32(0xF0), Not(Width8, 0x0F))
	assert.Equal(t, uint32(0x0000), Not(Width16, 0xFFFF))
	assert.Equal(t, uint32(0xEDCBA987), Not(Width32, 0x12345678))
}

func TestMulDiv_Neg(t *testing.T) {
	tests := []struct {
		name   string
		w      Width
		v      uint32
		want   uint32
		wantCF bool
		wantOF bool
	}{
		{"zero", Width8, 0x00, 0x00, false, false},
		{"one", Width8, 0x01, 0xFF, true, false},
		{"byte min", Width8, 0x80, 0x80, true, true},
		{"word min", Width16, 0x8000, 0x8000, true, true},
		{"dword", Width32, 0x00000005, 0xFFFFFFFB, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, f := Neg(tt.w, tt.v, flagsReserved)
			assert.Equal(t, tt.want, r)
			assert.Equal(t, tt.wantCF, f.Has(FlagCF), "CF")
			assert.Equal(t, tt.wantOF, f.Has(FlagOF), "OF")
			assert.Equal(t, tt.want == 0, f.Has(FlagZF), "ZF")
		})
	}
}

func TestMulDiv_Multiply(t *testing.T) {
	tests := []struct {
		name      string
		w         Width
		a, b      uint32
		signed    bool
		wantLo    uint32
		wantHi    uint32
		wantCarry bool
	}{
		{"MUL byte overflow", Width8, 0x80, 0x02, false, 0x00, 0x01, true},
		{"MUL byte fits", Width8, 0x0F, 0x0F, false, 0xE1, 0x00, false},
		{"MUL word", Width16, 0xFFFF, 0xFFFF, false, 0x0001, 0xFFFE, true},
		{"MUL dword", Width32, 0x10000, 0x10000, false, 0x00000000, 0x00000001, true},
		{"IMUL byte -1*-1", Width8, 0xFF, 0xFF, true, 0x01, 0x00, false},
		{"IMUL byte 64*2", Width8, 0x40, 0x02, true, 0x80, 0x00, true},
		{"IMUL word -2*3", Width16, 0xFFFE, 0x0003, true, 0xFFFA, 0xFFFF, false},
		{"IMUL dword max*2", Width32, 0x7FFFFFFF, 0x00000002, true, 0xFFFFFFFE, 0x00000000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := flagsReserved | FlagZF | FlagAF
			lo, hi, f := Multiply(tt.w, tt.a, tt.b, tt.signed, in)
			assert.Equal(t, tt.wantLo, lo, "low half")
			assert.Equal(t, tt.wantHi, hi, "high half")
			assert.Equal(t, tt.wantCarry, f.Has(FlagCF), "CF")
			assert.Equal(t, tt.wantCarry, f.Has(FlagOF), "OF")
			assert.Equal(t, in&^(FlagCF|FlagOF), f&^(FlagCF|FlagOF), "other flags unchanged")
		})
	}
}

func TestMulDiv_Divide(t *testing.T) {
	tests := []struct {
		name    string
		w       Width
		hi, lo  uint32
		divisor uint32
		signed  bool
		wantQ   uint32
		wantR   uint32
		wantOK  bool
	}{
		{"DIV byte", Width8, 0x01, 0x00, 0x02, false, 0x80, 0x00, true},
		{"DIV byte quotient overflow", Width8, 0x01, 0x00, 0x01, false, 0, 0, false},
		{"DIV by zero", Width16, 0, 10, 0, false, 0, 0, false},
		{"DIV word", Width16, 0x0000, 0x0007, 0x0002, false, 0x0003, 0x0001, true},
		{"DIV dword", Width32, 0x00000001, 0x00000000, 0x00000002, false, 0x80000000, 0, true},
		{"IDIV byte -7/2", Width8, 0xFF, 0xF9, 0x02, true, 0xFD, 0xFF, true},
		{"IDIV byte -128/1", Width8, 0xFF, 0x80, 0x01, true, 0x80, 0x00, true},
		{"IDIV byte -128/-1", Width8, 0xFF, 0x80, 0xFF, true, 0, 0, false},
		{"IDIV word 7/-2", Width16, 0x0000, 0x0007, 0xFFFE, true, 0xFFFD, 0x0001, true},
		{"IDIV dword -100/7", Width32, 0xFFFFFFFF, 0xFFFFFF9C, 7, true, 0xFFFFFFF2, 0xFFFFFFFE, true},
		{"IDIV by zero", Width32, 0, 1, 0, true, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, r, ok := Divide(tt.w, tt.hi, tt.lo, tt.divisor, tt.signed)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantQ, q, "quotient")
				assert.Equal(t, tt.wantR, r, "remainder")
			}
		})
	}
}

func TestMulDiv_OpNames(t *testing.T) {
	assert.Equal(t, "TEST", OpTEST1.String())
	assert.Equal(t, "IDIV", OpIDIV.String())
	assert.Equal(t, "UnaryOp(8)", UnaryOp(8).String())
}
