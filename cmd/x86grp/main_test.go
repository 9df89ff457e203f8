// main_test.go - x86grp command tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intuitionamiga/soft386"
)

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestExec_AddByte(t *testing.T) {
	out, _, err := runCmd(t, "exec", "--color", "never", "--code", "80 C0 01", "--reg", "eax=0xFF")
	require.NoError(t, err)
	assert.Contains(t, out, "executed 1 of 1")
	assert.Contains(t, out, "EAX=00000000")
	assert.Contains(t, out, "EIP=00001003")
	assert.Contains(t, out, "[of df if tf sf ZF AF PF CF]")
}

func TestExec_Sixteen(t *testing.T) {
	out, _, err := runCmd(t, "exec", "--color=never", "--bits", "16",
		"--code", "66 C1 E0 04", "--reg", "eax=0xFFFF1234")
	require.NoError(t, err)
	assert.Contains(t, out, "EAX=FFF12340")
	assert.Contains(t, out, "EIP=00001004")
}

func TestExec_MultipleSteps(t *testing.T) {
	out, _, err := runCmd(t, "exec", "--color=never", "--code", "FF C0 FF C0 FF C0", "--steps", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "executed 3 of 3")
	assert.Contains(t, out, "EAX=00000003")
}

func TestExec_Fault(t *testing.T) {
	out, errOut, err := runCmd(t, "exec", "--color=never", "--code", "FE D0")
	require.Error(t, err)
	assert.True(t, soft386.IsFault(err, soft386.ExceptionUD))
	assert.Contains(t, out, "executed 0 of 1")
	assert.Contains(t, out, "fault: #UD at 00001000")
	assert.Contains(t, errOut, "stopped:")
}

func TestExec_NotAGroupOpcode(t *testing.T) {
	_, _, err := runCmd(t, "exec", "--color=never", "--code", "90")
	assert.True(t, errors.Is(err, soft386.ErrOpcodeNotImplemented))
}

func TestExec_BadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad hex", []string{"exec", "--code", "8G"}},
		{"bad register", []string{"exec", "--code", "90", "--reg", "r8=1"}},
		{"missing value", []string{"exec", "--code", "90", "--reg", "eax"}},
		{"bad bits", []string{"exec", "--code", "90", "--bits", "64"}},
		{"bad colour", []string{"exec", "--code", "90", "--color", "sometimes"}},
		{"bad log level", []string{"exec", "--code", "90", "--log-level", "loud"}},
		{"no code", []string{"exec"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCmd(t, tt.args...)
			require.Error(t, err)
			assert.False(t, errors.Is(err, soft386.ErrOpcodeNotImplemented), "must fail before executing")
		})
	}
}

func TestExec_ColourAndWidth(t *testing.T) {
	out, _, err := runCmd(t, "exec", "--color=always", "--code", "80 C0 01", "--reg", "eax=0xFF")
	require.NoError(t, err)
	assert.Contains(t, out, ansiBold+"ZF"+ansiReset)

	var buf bytes.Buffer
	cpu := soft386.NewCPU_X86(soft386.NewFlatMemory(16))
	printState(&buf, cpu, false, 30)
	// two 13-column cells per line at width 30
	assert.Contains(t, buf.String(), "EAX=00000000 ECX=00000000\nEDX=")
}

func TestScript_Command(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ok.lua")
	require.NoError(t, os.WriteFile(file, []byte(`
		cpu.poke(0, {0x80, 0xC0, 0x01})
		cpu.set_reg("al", 0xFF)
		assert(cpu.step())
		print("al", cpu.reg("al"))
	`), 0644))

	out, _, err := runCmd(t, "script", file)
	require.NoError(t, err)
	assert.Equal(t, "al\t0\n", out)

	bad := filepath.Join(dir, "bad.lua")
	require.NoError(t, os.WriteFile(bad, []byte(`assert(false, "boom")`), 0644))
	_, _, err = runCmd(t, "script", file, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
