// script.go - Lua scenario scripting over an x86 group core
//
// A scenario script drives one CPU and its flat memory through the global
// "cpu" table:
//
//   cpu.reset()                 flat 32-bit state, memory cleared
//   cpu.bits(16|32)             code/stack segment default size
//   cpu.poke(addr, {b, ...})    store bytes (or a single byte)
//   cpu.peek(addr [, size])     load 1, 2 or 4 bytes little-endian
//   cpu.reg(name)               read eax..edi, ax..di, al..bh, eip, eflags
//   cpu.set_reg(name, value)
//   cpu.flag(name)              read cf, pf, af, zf, sf, of, ...
//   cpu.set_flag(name, bool)
//   cpu.flags()                 EFLAGS as text ("of df if tf sf ZF af pf CF")
//   cpu.step()                  true, or false plus the fault ("#UD")
//   cpu.run(n)                  instructions completed, and the error if any
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package script

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/intuitionamiga/soft386"
)

// Engine binds one Lua state to one CPU and its memory.
type Engine struct {
	L   *lua.LState
	cpu *soft386.CPU_X86
	mem *soft386.FlatMemory
	out io.Writer
	log *slog.Logger
}

// New creates an engine with memSize bytes of flat memory. print output
// goes to out.
func New(memSize int, out io.Writer) *Engine {
	mem := soft386.NewFlatMemory(memSize)
	e := &Engine{
		L:   lua.NewState(),
		cpu: soft386.NewCPU_X86(mem),
		mem: mem,
		out: out,
		log: slog.New(slog.DiscardHandler),
	}
	e.register()
	return e
}

// Close releases the Lua state.
func (e *Engine) Close() {
	e.L.Close()
}

// CPU returns the processor the scripts drive.
func (e *Engine) CPU() *soft386.CPU_X86 {
	return e.cpu
}

// Memory returns the flat memory behind the CPU.
func (e *Engine) Memory() *soft386.FlatMemory {
	return e.mem
}

// SetLogger sets the logger for the engine and its CPU.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	e.log = l
	e.cpu.SetLogger(l)
}

// RunString executes a Lua chunk.
func (e *Engine) RunString(src string) error {
	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// RunFile executes a Lua file.
func (e *Engine) RunFile(path string) error {
	e.log.Debug("script: running", "file", path)
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func (e *Engine) register() {
	tbl := e.L.NewTable()
	e.L.SetFuncs(tbl, map[string]lua.LGFunction{
		"reset":    e.luaReset,
		"bits":     e.luaBits,
		"poke":     e.luaPoke,
		"peek":     e.luaPeek,
		"reg":      e.luaReg,
		"set_reg":  e.luaSetReg,
		"flag":     e.luaFlag,
		"set_flag": e.luaSetFlag,
		"flags":    e.luaFlags,
		"step":     e.luaStep,
		"run":      e.luaRun,
	})
	e.L.SetGlobal("cpu", tbl)
	e.L.SetGlobal("print", e.L.NewFunction(e.luaPrint))
}

// -----------------------------------------------------------------------------
// Lua functions
// -----------------------------------------------------------------------------

func (e *Engine) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(e.out, strings.Join(parts, "\t"))
	return 0
}

func (e *Engine) luaReset(L *lua.LState) int {
	e.cpu.Reset()
	e.cpu.ClearFault()
	e.mem.Clear()
	return 0
}

func (e *Engine) luaBits(L *lua.LState) int {
	bits := L.CheckInt(1)
	if bits != 16 && bits != 32 {
		L.ArgError(1, "bits must be 16 or 32")
		return 0
	}
	e.cpu.SetDefaultSize(bits)
	return 0
}

func (e *Engine) luaPoke(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	switch v := L.CheckAny(2).(type) {
	case lua.LNumber:
		e.mem.Write(addr, byte(v))
	case *lua.LTable:
		for i := 1; i <= v.Len(); i++ {
			e.mem.Write(addr+uint32(i-1), byte(lua.LVAsNumber(v.RawGetInt(i))))
		}
	default:
		L.ArgError(2, "byte or table of bytes expected")
	}
	return 0
}

func (e *Engine) luaPeek(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	size := L.OptInt(2, 1)
	if size != 1 && size != 2 && size != 4 {
		L.ArgError(2, "size must be 1, 2 or 4")
		return 0
	}
	var v uint32
	for i := 0; i < size; i++ {
		v |= uint32(e.mem.Read(addr+uint32(i))) << (8 * i)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (e *Engine) luaReg(L *lua.LState) int {
	name := L.CheckString(1)
	v, ok := e.cpu.RegisterByName(name)
	if !ok {
		L.ArgError(1, "unknown register "+name)
		return 0
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (e *Engine) luaSetReg(L *lua.LState) int {
	name := L.CheckString(1)
	if !e.cpu.SetRegisterByName(name, uint32(L.CheckInt64(2))) {
		L.ArgError(1, "unknown register "+name)
	}
	return 0
}

func (e *Engine) luaFlag(L *lua.LState) int {
	f, ok := soft386.FlagByName(L.CheckString(1))
	if !ok {
		L.ArgError(1, "unknown flag")
		return 0
	}
	L.Push(lua.LBool(e.cpu.Flags.Has(f)))
	return 1
}

func (e *Engine) luaSetFlag(L *lua.LState) int {
	f, ok := soft386.FlagByName(L.CheckString(1))
	if !ok {
		L.ArgError(1, "unknown flag")
		return 0
	}
	e.cpu.Flags = e.cpu.Flags.With(f, L.CheckBool(2))
	return 0
}

func (e *Engine) luaFlags(L *lua.LState) int {
	L.Push(lua.LString(e.cpu.Flags.String()))
	return 1
}

func (e *Engine) luaStep(L *lua.LState) int {
	e.cpu.ClearFault()
	if err := e.cpu.Step(); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(describe(err)))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func (e *Engine) luaRun(L *lua.LState) int {
	e.cpu.ClearFault()
	n, err := e.cpu.Run(L.CheckInt(1))
	L.Push(lua.LNumber(n))
	if err != nil {
		L.Push(lua.LString(describe(err)))
		return 2
	}
	return 1
}

// describe renders a fault as its vector mnemonic and anything else as text
func describe(err error) string {
	var f *soft386.Fault
	if errors.As(err, &f) {
		return f.Vector.String()
	}
	return err.Error()
}
