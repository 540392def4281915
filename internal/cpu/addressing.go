package cpu

import "github.com/ag99/nescore/internal/bitutil"

// operand resolves the effective address (or, for Immediate, the PC of
// the operand byte itself) for mode, advancing PC and generating exactly
// the bus accesses real hardware performs — including the extra ticks
// for page-crossing indexed modes, which is what makes per-instruction
// cycle counts emerge from these helpers rather than a static table.
//
// The ForceTick variants of the indexed modes (AbsoluteXForceTick,
// AbsoluteYForceTick, IndirectIndexedForceTick) charge the page-cross
// tick unconditionally, which RMW instructions require even when the
// crossing didn't actually happen.
func (c *CPU) operand(mode AddressingMode) uint16 {
	switch mode {
	case Immediate, Relative:
		addr := c.PC
		c.PC++
		return addr

	case ZeroPage:
		addr := uint16(c.read(c.PC))
		c.PC++
		return addr

	case ZeroPageX:
		base := c.read(c.PC)
		c.PC++
		c.read(uint16(base)) // dummy read of unindexed address
		return uint16(base + c.X)

	case ZeroPageY:
		base := c.read(c.PC)
		c.PC++
		c.read(uint16(base))
		return uint16(base + c.Y)

	case Absolute:
		addr := c.read16(c.PC)
		c.PC += 2
		return addr

	case AbsoluteX, AbsoluteXForceTick:
		base := c.read16(c.PC)
		c.PC += 2
		addr := base + uint16(c.X)
		crossed := !bitutil.SamePage(base, addr)
		if crossed || mode == AbsoluteXForceTick {
			c.read((base & 0xFF00) | (addr & 0x00FF)) // dummy read at wrapped-low address
		}
		return addr

	case AbsoluteY, AbsoluteYForceTick:
		base := c.read16(c.PC)
		c.PC += 2
		addr := base + uint16(c.Y)
		crossed := !bitutil.SamePage(base, addr)
		if crossed || mode == AbsoluteYForceTick {
			c.read((base & 0xFF00) | (addr & 0x00FF))
		}
		return addr

	case Indirect:
		ptr := c.read16(c.PC)
		c.PC += 2
		return c.readBug16(ptr)

	case IndexedIndirect:
		zp := c.read(c.PC)
		c.PC++
		c.read(uint16(zp)) // dummy read of unindexed pointer
		ptr := zp + c.X
		return c.readBug16(uint16(ptr))

	case IndirectIndexed, IndirectIndexedForceTick:
		zp := c.read(c.PC)
		c.PC++
		base := c.readBug16(uint16(zp))
		addr := base + uint16(c.Y)
		crossed := !bitutil.SamePage(base, addr)
		if crossed || mode == IndirectIndexedForceTick {
			c.read((base & 0xFF00) | (addr & 0x00FF))
		}
		return addr

	default: // Implied, Accumulator
		return 0
	}
}

// readBug16 reproduces the 6502's page-wrap bug: a 16-bit pointer read
// never carries into the high byte, so a pointer at $xxFF wraps to
// $xx00 rather than $(xx+1)00.
func (c *CPU) readBug16(ptr uint16) uint16 {
	lo := c.read(ptr)
	hiAddr := (ptr & 0xFF00) | ((ptr + 1) & 0x00FF)
	hi := c.read(hiAddr)
	return bitutil.Lo16(lo, hi)
}

// load reads the operand value for a read-only instruction under mode.
// Immediate reads its own operand byte; Accumulator reads A directly
// with no bus access.
func (c *CPU) load(mode AddressingMode) uint8 {
	if mode == Accumulator {
		return c.A
	}
	return c.read(c.operand(mode))
}
