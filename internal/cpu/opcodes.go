package cpu

// opEntry is one row of the 256-entry dispatch table: the addressing
// mode to resolve and the function that executes the instruction body.
type opEntry struct {
	mode AddressingMode
	exec func(c *CPU, mode AddressingMode)
}

// dispatch is indexed directly by opcode byte — a flat jump table rather
// than reflection-based dispatch. Entries left zero-valued (exec == nil)
// are opcodes with no defined behaviour and trap in Step.
var dispatch [256]opEntry

func init() {
	// Load/store.
	set(0xA9, Immediate, lda)
	set(0xA5, ZeroPage, lda)
	set(0xB5, ZeroPageX, lda)
	set(0xAD, Absolute, lda)
	set(0xBD, AbsoluteX, lda)
	set(0xB9, AbsoluteY, lda)
	set(0xA1, IndexedIndirect, lda)
	set(0xB1, IndirectIndexed, lda)

	set(0xA2, Immediate, ldx)
	set(0xA6, ZeroPage, ldx)
	set(0xB6, ZeroPageY, ldx)
	set(0xAE, Absolute, ldx)
	set(0xBE, AbsoluteY, ldx)

	set(0xA0, Immediate, ldy)
	set(0xA4, ZeroPage, ldy)
	set(0xB4, ZeroPageX, ldy)
	set(0xAC, Absolute, ldy)
	set(0xBC, AbsoluteX, ldy)

	set(0x85, ZeroPage, sta)
	set(0x95, ZeroPageX, sta)
	set(0x8D, Absolute, sta)
	set(0x9D, AbsoluteXForceTick, sta)
	set(0x99, AbsoluteYForceTick, sta)
	set(0x81, IndexedIndirect, sta)
	set(0x91, IndirectIndexedForceTick, sta)

	set(0x86, ZeroPage, stx)
	set(0x96, ZeroPageY, stx)
	set(0x8E, Absolute, stx)

	set(0x84, ZeroPage, sty)
	set(0x94, ZeroPageX, sty)
	set(0x8C, Absolute, sty)

	// Transfers.
	set(0xAA, Implied, tax)
	set(0xA8, Implied, tay)
	set(0xBA, Implied, tsx)
	set(0x8A, Implied, txa)
	set(0x9A, Implied, txs)
	set(0x98, Implied, tya)

	// Stack.
	set(0x48, Implied, pha)
	set(0x08, Implied, php)
	set(0x68, Implied, pla)
	set(0x28, Implied, plp)

	// Arithmetic.
	set(0x69, Immediate, adc)
	set(0x65, ZeroPage, adc)
	set(0x75, ZeroPageX, adc)
	set(0x6D, Absolute, adc)
	set(0x7D, AbsoluteX, adc)
	set(0x79, AbsoluteY, adc)
	set(0x61, IndexedIndirect, adc)
	set(0x71, IndirectIndexed, adc)

	set(0xE9, Immediate, sbc)
	set(0xE5, ZeroPage, sbc)
	set(0xF5, ZeroPageX, sbc)
	set(0xED, Absolute, sbc)
	set(0xFD, AbsoluteX, sbc)
	set(0xF9, AbsoluteY, sbc)
	set(0xE1, IndexedIndirect, sbc)
	set(0xF1, IndirectIndexed, sbc)
	set(0xEB, Immediate, sbc) // unofficial USBC, identical to $E9

	// Comparisons.
	set(0xC9, Immediate, cmp)
	set(0xC5, ZeroPage, cmp)
	set(0xD5, ZeroPageX, cmp)
	set(0xCD, Absolute, cmp)
	set(0xDD, AbsoluteX, cmp)
	set(0xD9, AbsoluteY, cmp)
	set(0xC1, IndexedIndirect, cmp)
	set(0xD1, IndirectIndexed, cmp)

	set(0xE0, Immediate, cpx)
	set(0xE4, ZeroPage, cpx)
	set(0xEC, Absolute, cpx)

	set(0xC0, Immediate, cpy)
	set(0xC4, ZeroPage, cpy)
	set(0xCC, Absolute, cpy)

	// Logic.
	set(0x29, Immediate, and)
	set(0x25, ZeroPage, and)
	set(0x35, ZeroPageX, and)
	set(0x2D, Absolute, and)
	set(0x3D, AbsoluteX, and)
	set(0x39, AbsoluteY, and)
	set(0x21, IndexedIndirect, and)
	set(0x31, IndirectIndexed, and)

	set(0x09, Immediate, ora)
	set(0x05, ZeroPage, ora)
	set(0x15, ZeroPageX, ora)
	set(0x0D, Absolute, ora)
	set(0x1D, AbsoluteX, ora)
	set(0x19, AbsoluteY, ora)
	set(0x01, IndexedIndirect, ora)
	set(0x11, IndirectIndexed, ora)

	set(0x49, Immediate, eor)
	set(0x45, ZeroPage, eor)
	set(0x55, ZeroPageX, eor)
	set(0x4D, Absolute, eor)
	set(0x5D, AbsoluteX, eor)
	set(0x59, AbsoluteY, eor)
	set(0x41, IndexedIndirect, eor)
	set(0x51, IndirectIndexed, eor)

	set(0x24, ZeroPage, bit)
	set(0x2C, Absolute, bit)

	// Increments/decrements.
	set(0xE6, ZeroPage, inc)
	set(0xF6, ZeroPageX, inc)
	set(0xEE, Absolute, inc)
	set(0xFE, AbsoluteXForceTick, inc)

	set(0xC6, ZeroPage, dec)
	set(0xD6, ZeroPageX, dec)
	set(0xCE, Absolute, dec)
	set(0xDE, AbsoluteXForceTick, dec)

	set(0xE8, Implied, inx)
	set(0xC8, Implied, iny)
	set(0xCA, Implied, dex)
	set(0x88, Implied, dey)

	// Shifts/rotates.
	set(0x0A, Accumulator, asl)
	set(0x06, ZeroPage, asl)
	set(0x16, ZeroPageX, asl)
	set(0x0E, Absolute, asl)
	set(0x1E, AbsoluteXForceTick, asl)

	set(0x4A, Accumulator, lsr)
	set(0x46, ZeroPage, lsr)
	set(0x56, ZeroPageX, lsr)
	set(0x4E, Absolute, lsr)
	set(0x5E, AbsoluteXForceTick, lsr)

	set(0x2A, Accumulator, rol)
	set(0x26, ZeroPage, rol)
	set(0x36, ZeroPageX, rol)
	set(0x2E, Absolute, rol)
	set(0x3E, AbsoluteXForceTick, rol)

	set(0x6A, Accumulator, ror)
	set(0x66, ZeroPage, ror)
	set(0x76, ZeroPageX, ror)
	set(0x6E, Absolute, ror)
	set(0x7E, AbsoluteXForceTick, ror)

	// Flags.
	set(0x18, Implied, clc)
	set(0x38, Implied, sec)
	set(0x58, Implied, cli)
	set(0x78, Implied, sei)
	set(0xB8, Implied, clv)
	set(0xD8, Implied, cld)
	set(0xF8, Implied, sed)

	// Branches.
	set(0x10, Relative, bpl)
	set(0x30, Relative, bmi)
	set(0x50, Relative, bvc)
	set(0x70, Relative, bvs)
	set(0x90, Relative, bcc)
	set(0xB0, Relative, bcs)
	set(0xD0, Relative, bne)
	set(0xF0, Relative, beq)

	// Jumps/calls/returns.
	set(0x4C, Absolute, jmp)
	set(0x6C, Indirect, jmp)
	set(0x20, Absolute, jsr)
	set(0x60, Implied, rts)
	set(0x40, Implied, rti)
	set(0x00, Implied, brk)

	// Misc.
	set(0xEA, Implied, nop)

	// Unofficial combined read-modify-write + arithmetic ops.
	set(0x07, ZeroPage, slo)
	set(0x17, ZeroPageX, slo)
	set(0x0F, Absolute, slo)
	set(0x1F, AbsoluteXForceTick, slo)
	set(0x1B, AbsoluteYForceTick, slo)
	set(0x03, IndexedIndirect, slo)
	set(0x13, IndirectIndexedForceTick, slo)

	set(0x27, ZeroPage, rla)
	set(0x37, ZeroPageX, rla)
	set(0x2F, Absolute, rla)
	set(0x3F, AbsoluteXForceTick, rla)
	set(0x3B, AbsoluteYForceTick, rla)
	set(0x23, IndexedIndirect, rla)
	set(0x33, IndirectIndexedForceTick, rla)

	set(0x47, ZeroPage, sre)
	set(0x57, ZeroPageX, sre)
	set(0x4F, Absolute, sre)
	set(0x5F, AbsoluteXForceTick, sre)
	set(0x5B, AbsoluteYForceTick, sre)
	set(0x43, IndexedIndirect, sre)
	set(0x53, IndirectIndexedForceTick, sre)

	set(0x67, ZeroPage, rra)
	set(0x77, ZeroPageX, rra)
	set(0x6F, Absolute, rra)
	set(0x7F, AbsoluteXForceTick, rra)
	set(0x7B, AbsoluteYForceTick, rra)
	set(0x63, IndexedIndirect, rra)
	set(0x73, IndirectIndexedForceTick, rra)

	set(0x87, ZeroPage, sax)
	set(0x97, ZeroPageY, sax)
	set(0x8F, Absolute, sax)
	set(0x83, IndexedIndirect, sax)

	set(0xA7, ZeroPage, lax)
	set(0xB7, ZeroPageY, lax)
	set(0xAF, Absolute, lax)
	set(0xBF, AbsoluteY, lax)
	set(0xA3, IndexedIndirect, lax)
	set(0xB3, IndirectIndexed, lax)

	set(0xC7, ZeroPage, dcp)
	set(0xD7, ZeroPageX, dcp)
	set(0xCF, Absolute, dcp)
	set(0xDF, AbsoluteXForceTick, dcp)
	set(0xDB, AbsoluteYForceTick, dcp)
	set(0xC3, IndexedIndirect, dcp)
	set(0xD3, IndirectIndexedForceTick, dcp)

	set(0xE7, ZeroPage, isc)
	set(0xF7, ZeroPageX, isc)
	set(0xEF, Absolute, isc)
	set(0xFF, AbsoluteXForceTick, isc)
	set(0xFB, AbsoluteYForceTick, isc)
	set(0xE3, IndexedIndirect, isc)
	set(0xF3, IndirectIndexedForceTick, isc)

	// Unofficial NOPs: implied (1-byte), zero page/X (2-byte), absolute/X
	// (3-byte), and immediate — all discard their operand but must still
	// perform the matching bus accesses for correct timing.
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		set(op, Implied, nop)
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		set(op, Immediate, nopRead)
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		set(op, ZeroPage, nopRead)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		set(op, ZeroPageX, nopRead)
	}
	set(0x0C, Absolute, nopRead)
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		set(op, AbsoluteX, nopRead)
	}
}

func set(opcode uint8, mode AddressingMode, fn func(c *CPU, mode AddressingMode)) {
	dispatch[opcode] = opEntry{mode: mode, exec: fn}
}

// --- load/store ---

func lda(c *CPU, mode AddressingMode) { c.A = c.load(mode); c.setZN(c.A) }
func ldx(c *CPU, mode AddressingMode) { c.X = c.load(mode); c.setZN(c.X) }
func ldy(c *CPU, mode AddressingMode) { c.Y = c.load(mode); c.setZN(c.Y) }

func sta(c *CPU, mode AddressingMode) { c.write(c.operand(mode), c.A) }
func stx(c *CPU, mode AddressingMode) { c.write(c.operand(mode), c.X) }
func sty(c *CPU, mode AddressingMode) { c.write(c.operand(mode), c.Y) }

// --- transfers ---

func tax(c *CPU, _ AddressingMode) { c.read(c.PC); c.X = c.A; c.setZN(c.X) }
func tay(c *CPU, _ AddressingMode) { c.read(c.PC); c.Y = c.A; c.setZN(c.Y) }
func tsx(c *CPU, _ AddressingMode) { c.read(c.PC); c.X = c.S; c.setZN(c.X) }
func txa(c *CPU, _ AddressingMode) { c.read(c.PC); c.A = c.X; c.setZN(c.A) }
func txs(c *CPU, _ AddressingMode) { c.read(c.PC); c.S = c.X }
func tya(c *CPU, _ AddressingMode) { c.read(c.PC); c.A = c.Y; c.setZN(c.A) }

// --- stack ---

func pha(c *CPU, _ AddressingMode) { c.read(c.PC); c.push(c.A) }
func php(c *CPU, _ AddressingMode) { c.read(c.PC); c.push(c.StatusByte(true)) }
func pla(c *CPU, _ AddressingMode) { c.read(c.PC); c.A = c.pull(); c.setZN(c.A) }
func plp(c *CPU, _ AddressingMode) { c.read(c.PC); c.SetStatusByte(c.pull()) }

// --- arithmetic ---

func adc(c *CPU, mode AddressingMode) {
	v := c.load(mode)
	c.addWithCarry(v)
}

func sbc(c *CPU, mode AddressingMode) {
	v := c.load(mode)
	c.addWithCarry(v ^ 0xFF)
}

func (c *CPU) addWithCarry(v uint8) {
	carry := uint16(0)
	if c.C {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.C = sum > 0xFF
	c.V = (c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0
	c.A = result
	c.setZN(c.A)
}

func cmp(c *CPU, mode AddressingMode) { c.compare(c.A, c.load(mode)) }
func cpx(c *CPU, mode AddressingMode) { c.compare(c.X, c.load(mode)) }
func cpy(c *CPU, mode AddressingMode) { c.compare(c.Y, c.load(mode)) }

func (c *CPU) compare(reg, v uint8) {
	diff := reg - v
	c.C = reg >= v
	c.setZN(diff)
}

// --- logic ---

func and(c *CPU, mode AddressingMode) { c.A &= c.load(mode); c.setZN(c.A) }
func ora(c *CPU, mode AddressingMode) { c.A |= c.load(mode); c.setZN(c.A) }
func eor(c *CPU, mode AddressingMode) { c.A ^= c.load(mode); c.setZN(c.A) }

func bit(c *CPU, mode AddressingMode) {
	v := c.load(mode)
	c.Z = c.A&v == 0
	c.N = v&0x80 != 0
	c.V = v&0x40 != 0
}

// --- increments/decrements ---

func inc(c *CPU, mode AddressingMode) { c.rmw(mode, func(v uint8) uint8 { return v + 1 }) }
func dec(c *CPU, mode AddressingMode) { c.rmw(mode, func(v uint8) uint8 { return v - 1 }) }

func inx(c *CPU, _ AddressingMode) { c.read(c.PC); c.X++; c.setZN(c.X) }
func iny(c *CPU, _ AddressingMode) { c.read(c.PC); c.Y++; c.setZN(c.Y) }
func dex(c *CPU, _ AddressingMode) { c.read(c.PC); c.X--; c.setZN(c.X) }
func dey(c *CPU, _ AddressingMode) { c.read(c.PC); c.Y--; c.setZN(c.Y) }

// --- shifts/rotates ---

func asl(c *CPU, mode AddressingMode) {
	c.shift(mode, func(v uint8) (uint8, bool) { return v << 1, v&0x80 != 0 })
}

func lsr(c *CPU, mode AddressingMode) {
	c.shift(mode, func(v uint8) (uint8, bool) { return v >> 1, v&0x01 != 0 })
}

func rol(c *CPU, mode AddressingMode) {
	c.shift(mode, func(v uint8) (uint8, bool) {
		carryIn := uint8(0)
		if c.C {
			carryIn = 1
		}
		return v<<1 | carryIn, v&0x80 != 0
	})
}

func ror(c *CPU, mode AddressingMode) {
	c.shift(mode, func(v uint8) (uint8, bool) {
		carryIn := uint8(0)
		if c.C {
			carryIn = 0x80
		}
		return v>>1 | carryIn, v&0x01 != 0
	})
}

// shift applies fn (the new value and the outgoing carry) to the
// Accumulator or a memory operand via the standard read-dummyWrite-write
// RMW sequence.
func (c *CPU) shift(mode AddressingMode, fn func(uint8) (uint8, bool)) {
	if mode == Accumulator {
		c.read(c.PC) // dummy read, matches the 2-cycle implied form
		v, carry := fn(c.A)
		c.A = v
		c.C = carry
		c.setZN(c.A)
		return
	}
	c.rmwCarry(mode, fn)
}

// rmw performs the read-dummyWrite-write sequence for a plain (no
// carry-out) memory transform.
func (c *CPU) rmw(mode AddressingMode, fn func(uint8) uint8) {
	addr := c.operand(mode)
	v := c.read(addr)
	c.write(addr, v) // dummy write-back of the unmodified value
	v = fn(v)
	c.write(addr, v)
	c.setZN(v)
}

func (c *CPU) rmwCarry(mode AddressingMode, fn func(uint8) (uint8, bool)) {
	addr := c.operand(mode)
	v := c.read(addr)
	c.write(addr, v)
	newV, carry := fn(v)
	c.write(addr, newV)
	c.C = carry
	c.setZN(newV)
}

// --- flags ---

func clc(c *CPU, _ AddressingMode) { c.read(c.PC); c.C = false }
func sec(c *CPU, _ AddressingMode) { c.read(c.PC); c.C = true }
func cli(c *CPU, _ AddressingMode) { c.read(c.PC); c.I = false }
func sei(c *CPU, _ AddressingMode) { c.read(c.PC); c.I = true }
func clv(c *CPU, _ AddressingMode) { c.read(c.PC); c.V = false }
func cld(c *CPU, _ AddressingMode) { c.read(c.PC); c.D = false }
func sed(c *CPU, _ AddressingMode) { c.read(c.PC); c.D = true }

// --- branches ---

func bpl(c *CPU, mode AddressingMode) { c.branch(mode, !c.N) }
func bmi(c *CPU, mode AddressingMode) { c.branch(mode, c.N) }
func bvc(c *CPU, mode AddressingMode) { c.branch(mode, !c.V) }
func bvs(c *CPU, mode AddressingMode) { c.branch(mode, c.V) }
func bcc(c *CPU, mode AddressingMode) { c.branch(mode, !c.C) }
func bcs(c *CPU, mode AddressingMode) { c.branch(mode, c.C) }
func bne(c *CPU, mode AddressingMode) { c.branch(mode, !c.Z) }
func beq(c *CPU, mode AddressingMode) { c.branch(mode, c.Z) }

// branch reads the signed displacement unconditionally (every branch
// opcode is 2 bytes), then, if taken, spends one internal tick and a
// further one if the jump crosses a page boundary.
func (c *CPU) branch(mode AddressingMode, taken bool) {
	offsetAddr := c.operand(mode)
	offset := int8(c.read(offsetAddr))
	if !taken {
		return
	}
	c.read(c.PC) // internal tick for the taken branch
	target := uint16(int32(c.PC) + int32(offset))
	if target&0xFF00 != c.PC&0xFF00 {
		c.read((c.PC & 0xFF00) | (target & 0x00FF)) // page-cross penalty
	}
	c.PC = target
}

// --- jumps/calls/returns ---

func jmp(c *CPU, mode AddressingMode) { c.PC = c.operand(mode) }

func jsr(c *CPU, _ AddressingMode) {
	lo := c.read(c.PC)
	c.PC++
	c.read(stackBase + uint16(c.S)) // internal tick before the return address is pushed
	c.push(uint8(c.PC >> 8))
	c.push(uint8(c.PC))
	hi := c.read(c.PC)
	c.PC = uint16(lo) | uint16(hi)<<8
}

func rts(c *CPU, _ AddressingMode) {
	c.read(c.PC) // internal tick
	c.PC = c.pullWord()
	c.read(c.PC) // internal tick before resuming
	c.PC++
}

func rti(c *CPU, _ AddressingMode) {
	c.read(c.PC) // internal tick
	c.SetStatusByte(c.pull())
	c.PC = c.pullWord()
}

func brk(c *CPU, _ AddressingMode) {
	c.read(c.PC) // the padding byte real software conventionally skips
	c.PC++
	c.doInterrupt(kindBRK)
}

// --- misc ---

func nop(c *CPU, _ AddressingMode) { c.read(c.PC) }

// nopRead is an unofficial NOP whose addressing mode does perform a real
// bus read of its operand (for correct page-cross timing) but discards
// the result.
func nopRead(c *CPU, mode AddressingMode) { c.load(mode) }

// --- unofficial combined RMW+ALU opcodes ---

func slo(c *CPU, mode AddressingMode) {
	addr := c.operand(mode)
	v := c.read(addr)
	c.write(addr, v)
	c.C = v&0x80 != 0
	v <<= 1
	c.write(addr, v)
	c.A |= v
	c.setZN(c.A)
}

func rla(c *CPU, mode AddressingMode) {
	addr := c.operand(mode)
	v := c.read(addr)
	c.write(addr, v)
	carryIn := uint8(0)
	if c.C {
		carryIn = 1
	}
	c.C = v&0x80 != 0
	v = v<<1 | carryIn
	c.write(addr, v)
	c.A &= v
	c.setZN(c.A)
}

func sre(c *CPU, mode AddressingMode) {
	addr := c.operand(mode)
	v := c.read(addr)
	c.write(addr, v)
	c.C = v&0x01 != 0
	v >>= 1
	c.write(addr, v)
	c.A ^= v
	c.setZN(c.A)
}

func rra(c *CPU, mode AddressingMode) {
	addr := c.operand(mode)
	v := c.read(addr)
	c.write(addr, v)
	carryIn := uint8(0)
	if c.C {
		carryIn = 0x80
	}
	newCarry := v&0x01 != 0
	v = v>>1 | carryIn
	c.write(addr, v)
	c.C = newCarry
	c.addWithCarry(v)
}

func sax(c *CPU, mode AddressingMode) { c.write(c.operand(mode), c.A&c.X) }

func lax(c *CPU, mode AddressingMode) {
	v := c.load(mode)
	c.A = v
	c.X = v
	c.setZN(v)
}

func dcp(c *CPU, mode AddressingMode) {
	addr := c.operand(mode)
	v := c.read(addr)
	c.write(addr, v)
	v--
	c.write(addr, v)
	c.compare(c.A, v)
}

func isc(c *CPU, mode AddressingMode) {
	addr := c.operand(mode)
	v := c.read(addr)
	c.write(addr, v)
	v++
	c.write(addr, v)
	c.addWithCarry(v ^ 0xFF)
}
