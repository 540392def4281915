// Package apu implements a register-file stub of the NES Audio Processing
// Unit: enough bus behaviour for games to probe and write its registers
// without asserting anything about the produced samples. Audio synthesis
// itself is out of scope for the core (spec.md §1 Non-goals).
package apu

// APU holds the raw register file for $4000-$4013, $4015 and $4017. No
// channel state machine runs; reads/writes are direct byte storage, and
// the CPU bus returns open bus (0xFF) for the write-only/unmapped ranges
// per spec.md §4.5.
type APU struct {
	Pulse1        [4]uint8
	Pulse2        [4]uint8
	Triangle      [4]uint8
	Noise         [4]uint8
	DMC           [4]uint8
	Status        uint8
	FrameCounter  uint8
}

// New returns a freshly powered-on APU register file.
func New() *APU {
	return &APU{}
}

// Reset clears the register file, as happens on RESET.
func (a *APU) Reset() {
	*a = APU{}
}

// WriteRegister stores a byte written by the CPU to $4000-$4013 or $4015.
// This keeps the bus write side-effect-free; no channel actually reacts.
func (a *APU) WriteRegister(addr uint16, value uint8) {
	switch {
	case addr >= 0x4000 && addr <= 0x4003:
		a.Pulse1[addr-0x4000] = value
	case addr >= 0x4004 && addr <= 0x4007:
		a.Pulse2[addr-0x4004] = value
	case addr >= 0x4008 && addr <= 0x400B:
		a.Triangle[addr-0x4008] = value
	case addr >= 0x400C && addr <= 0x400F:
		a.Noise[addr-0x400C] = value
	case addr >= 0x4010 && addr <= 0x4013:
		a.DMC[addr-0x4010] = value
	case addr == 0x4015:
		a.Status = value
	}
}

// ReadStatus returns the byte last written to $4015. The CPU bus does not
// call it: a CPU read of $4015 returns open bus (0xFF).
func (a *APU) ReadStatus() uint8 {
	return a.Status
}

// WriteFrameCounter serves a CPU write to $4017. Real APU semantics
// (4-step/5-step sequencing, frame IRQ) are out of scope; the byte is
// stored so the bus access itself has no unintended side effect, per the
// "partial $4017 write" open question in spec.md §9.
func (a *APU) WriteFrameCounter(value uint8) {
	a.FrameCounter = value
}
