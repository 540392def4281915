// Package cpu implements the NES's MOS 6502-derived CPU: the full official
// and documented-unofficial instruction set, interrupt sequencing, and the
// tick-per-bus-access discipline that keeps it cycle-synchronous with the
// PPU.
package cpu

import (
	"fmt"

	"github.com/ag99/nescore/internal/bitutil"
)

// AddressingMode names one of the 6502's operand-addressing forms.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteXForceTick // _abx: unconditional extra tick, used by RMW ops
	AbsoluteY
	AbsoluteYForceTick // _aby: unconditional extra tick, used by RMW ops
	Indirect
	IndexedIndirect          // (zp,X)
	IndirectIndexed          // (zp),Y
	IndirectIndexedForceTick // _izy: unconditional extra tick, used by RMW ops
)

const (
	stackBase   = 0x0100
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE

	flagN uint8 = 0x80
	flagV uint8 = 0x40
	flagR uint8 = 0x20 // always reads as 1; never stored separately
	flagB uint8 = 0x10
	flagD uint8 = 0x08
	flagI uint8 = 0x04
	flagZ uint8 = 0x02
	flagC uint8 = 0x01
)

// interruptKind distinguishes the four ways control can enter the
// interrupt-sequencing path: NMI, maskable IRQ, BRK (a software
// instruction that reuses the IRQ vector), and RESET.
type interruptKind int

const (
	kindNMI interruptKind = iota
	kindIRQ
	kindBRK
	kindReset
)

// Bus is everything the CPU needs from its owner. Every call ticks the
// PPU three dots before the access completes: the CPU never steps the
// PPU directly, it only ever goes through this interface, which keeps
// the CPU and PPU free of any reference to each other.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// UnknownOpcodeError reports a dispatch-table miss together with enough
// register state to diagnose it.
type UnknownOpcodeError struct {
	Opcode     uint8
	PC         uint16
	A, X, Y, S uint8
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("cpu: unknown opcode $%02X at PC=$%04X (A=$%02X X=$%02X Y=$%02X S=$%02X)",
		e.Opcode, e.PC, e.A, e.X, e.Y, e.S)
}

// CPU is the 6502-derived processor: registers, flags, 2 KiB of work RAM,
// and the interrupt control lines the PPU/mapper assert into.
type CPU struct {
	A, X, Y uint8
	S       uint8
	PC      uint16

	C, Z, I, D, V, N bool // status flags; the R bit is always 1, B never latches

	WRAM [0x0800]uint8

	// RemainingCycles is the signed CPU-cycle budget for the current
	// frame; RunFrame adds to it and every bus access decrements it.
	RemainingCycles int64

	// Control lines, driven by the PPU/mapper through the owning NES.
	NMILine bool
	IRQLine bool

	bus Bus
}

// New creates a CPU wired to bus. WRAM powers up filled with 0xFF, as on
// real hardware.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	for i := range c.WRAM {
		c.WRAM[i] = 0xFF
	}
	return c
}

// StatusByte packs the flags into the conventional 6502 P register
// layout, with the unused bit 5 always set.
func (c *CPU) StatusByte(breakBit bool) uint8 {
	return bitutil.Pack(c.N, c.V, true, breakBit, c.D, c.I, c.Z, c.C)
}

// SetStatusByte unpacks p into the flags. The B bit is never latched
// into CPU state; it only ever exists transiently on the stack.
func (c *CPU) SetStatusByte(p uint8) {
	c.N = p&flagN != 0
	c.V = p&flagV != 0
	c.D = p&flagD != 0
	c.I = p&flagI != 0
	c.Z = p&flagZ != 0
	c.C = p&flagC != 0
}

func (c *CPU) read(addr uint16) uint8 {
	c.RemainingCycles--
	return c.bus.Read(addr)
}

func (c *CPU) write(addr uint16, value uint8) {
	c.RemainingCycles--
	c.bus.Write(addr, value)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.read(addr)
	hi := c.read(addr + 1)
	return bitutil.Lo16(lo, hi)
}

// Power runs the RESET sequence, loading PC from the reset vector and
// wrapping S to 0xFD.
func (c *CPU) Power() {
	c.doInterrupt(kindReset)
}

// RunFrame adds cycles to the CPU's budget and executes instructions,
// servicing any pending NMI/IRQ ahead of each one, until the budget is
// exhausted.
func (c *CPU) RunFrame(cycles int64) {
	c.RemainingCycles += cycles
	for c.RemainingCycles > 0 {
		switch {
		case c.NMILine:
			c.doInterrupt(kindNMI)
		case c.IRQLine && !c.I:
			c.doInterrupt(kindIRQ)
		default:
			c.Step()
		}
	}
}

// Step fetches, decodes and executes a single instruction. It panics
// with an *UnknownOpcodeError if the opcode has no dispatch entry; hosts
// that want to recover should wrap their call to RunFrame in a recover().
func (c *CPU) Step() {
	opcode := c.read(c.PC)
	c.PC++

	entry := dispatch[opcode]
	if entry.exec == nil {
		panic(&UnknownOpcodeError{Opcode: opcode, PC: c.PC - 1, A: c.A, X: c.X, Y: c.Y, S: c.S})
	}
	entry.exec(c, entry.mode)
}

// doInterrupt implements the shared NMI, IRQ, BRK and RESET entry
// sequence: two internal ticks (one for BRK, which already spent one
// fetching the signature byte), the push of PC and status (skipped for
// RESET, which instead performs three discarded stack reads while S
// wraps down by three), then the vector fetch.
func (c *CPU) doInterrupt(kind interruptKind) {
	initialTicks := 2
	if kind == kindBRK {
		initialTicks = 1
	}
	for i := 0; i < initialTicks; i++ {
		c.read(c.PC) // dummy read, discarded
	}

	if kind == kindReset {
		for i := 0; i < 3; i++ {
			c.read(stackBase + uint16(c.S))
			c.S--
		}
	} else {
		c.push(uint8(c.PC >> 8))
		c.push(uint8(c.PC))
		c.push(c.StatusByte(kind == kindBRK))
	}

	c.I = true

	var vector uint16
	switch kind {
	case kindNMI:
		vector = nmiVector
	case kindReset:
		vector = resetVector
	default: // IRQ, BRK
		vector = irqVector
	}
	c.PC = c.read16(vector)

	if kind == kindNMI {
		c.NMILine = false
	}
}

// push writes value to the stack page and decrements S, wrapping modulo
// 256.
func (c *CPU) push(value uint8) {
	c.write(stackBase+uint16(c.S), value)
	c.S--
}

// pull performs the single-byte pull sequence: a dummy read of the
// current stack top (the real 6502's internal pre-increment cycle),
// then the increment and the actual read.
func (c *CPU) pull() uint8 {
	c.read(stackBase + uint16(c.S))
	c.S++
	return c.read(stackBase + uint16(c.S))
}

func (c *CPU) pullWord() uint16 {
	lo := c.pull()
	c.S++
	hi := c.read(stackBase + uint16(c.S))
	return bitutil.Lo16(lo, hi)
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

// State is a read-only snapshot of CPU register state, for debugging and
// host-side introspection.
type State struct {
	A, X, Y, S uint8
	PC         uint16
	P          uint8
}

// Snapshot returns the CPU's current register state.
func (c *CPU) Snapshot() State {
	return State{A: c.A, X: c.X, Y: c.Y, S: c.S, PC: c.PC, P: c.StatusByte(false)}
}
