// Package nes wires the CPU, PPU, APU, cartridge and joypads into a single
// console: it owns every component and implements the CPU's Bus interface,
// ticking the PPU three dots for every CPU bus access so the two halves of
// the machine stay cycle-synchronous.
package nes

import (
	"github.com/ag99/nescore/internal/apu"
	"github.com/ag99/nescore/internal/cartridge"
	"github.com/ag99/nescore/internal/cpu"
	"github.com/ag99/nescore/internal/joypad"
	"github.com/ag99/nescore/internal/ppu"
)

// cyclesPerFrame is the NTSC CPU budget RunFrame hands to the CPU each
// call: 29780.5 CPU cycles per frame, rounded the way the reference
// timing documents it (an extra half-cycle is absorbed by the PPU's own
// dot-339 skip on odd frames).
const cyclesPerFrame = 29781

// NES is the top-level console: every component it owns talks only to
// NES itself or to a narrow interface NES hands it, never to each other
// directly.
type NES struct {
	CPU  *cpu.CPU
	PPU  *ppu.PPU
	APU  *apu.APU
	Cart *cartridge.Cartridge
	Pad  *joypad.Joypad
}

// New builds a console around an already-parsed cartridge and wires the
// PPU's NMI line back into the CPU.
func New(cart *cartridge.Cartridge) *NES {
	n := &NES{
		PPU:  ppu.New(cart),
		APU:  apu.New(),
		Cart: cart,
		Pad:  joypad.New(),
	}
	n.CPU = cpu.New(n)
	n.PPU.SetNMICallback(func() { n.CPU.NMILine = true })
	return n
}

// SetVideoSink registers the callback invoked with a completed 256x240
// frame at the start (dot 0) of every PPU scanline 240, the post-render line.
func (n *NES) SetVideoSink(cb func(ppu.Frame)) {
	n.PPU.SetVideoSink(cb)
}

// Power resets every component and runs the CPU's RESET sequence.
func (n *NES) Power() {
	n.PPU.Reset()
	n.APU.Reset()
	n.CPU.Power()
}

// RunFrame advances the machine by one NTSC video frame's worth of CPU
// cycles; the PPU advances implicitly as a side effect of every bus
// access the CPU makes along the way. The APU stub is not stepped.
func (n *NES) RunFrame() {
	n.CPU.RunFrame(cyclesPerFrame)
}

// CPUState returns a read-only snapshot of CPU registers.
func (n *NES) CPUState() cpu.State {
	return n.CPU.Snapshot()
}

// PPUState returns a read-only snapshot of PPU state.
func (n *NES) PPUState() ppu.State {
	return n.PPU.Snapshot()
}

// tick steps the PPU exactly three dots, the fixed CPU:PPU clock ratio
// on NTSC hardware. Every bus access goes through here, so the PPU is
// never more than a fraction of a CPU cycle out of sync with the CPU.
func (n *NES) tick() {
	n.PPU.Step()
	n.PPU.Step()
	n.PPU.Step()
}

// Read implements cpu.Bus: the full CPU memory map, $0000-$FFFF.
func (n *NES) Read(addr uint16) uint8 {
	n.tick()
	switch {
	case addr < 0x2000:
		return n.CPU.WRAM[addr&0x07FF]
	case addr < 0x4000:
		return n.PPU.ReadRegister(addr & 0x0007)
	case addr == 0x4016:
		return n.Pad.Read(0)
	case addr == 0x4017:
		return n.Pad.Read(1)
	case addr >= 0x4000 && addr <= 0x4013:
		return 0xFF // write-only APU registers: open bus
	case addr == 0x4015:
		return 0xFF // open bus; the stub never reports channel status
	case addr == 0x4014:
		return 0xFF // OAMDMA is write-only
	default:
		return n.Cart.ReadPRG(addr)
	}
}

// Write implements cpu.Bus: the full CPU memory map, $0000-$FFFF.
func (n *NES) Write(addr uint16, value uint8) {
	n.tick()
	switch {
	case addr < 0x2000:
		n.CPU.WRAM[addr&0x07FF] = value
	case addr < 0x4000:
		n.PPU.WriteRegister(addr&0x0007, value)
	case addr == 0x4014:
		n.oamDMA(value)
	case addr == 0x4016:
		n.Pad.WriteStrobe(value)
	case addr == 0x4017:
		n.APU.WriteFrameCounter(value)
	case addr >= 0x4000 && addr <= 0x4013:
		n.APU.WriteRegister(addr, value)
	case addr == 0x4015:
		n.APU.WriteRegister(addr, value)
	default:
		n.Cart.WritePRG(addr, value)
	}
}

// oamDMA copies 256 bytes from CPU page (value<<8) into OAM through
// $2004, one CPU read+write per byte. Real hardware halts the CPU for
// 513 or 514 cycles (one extra on an odd CPU cycle; this implementation
// fixes it at 513, as spec.md's open question permits). The stall never
// runs through cpu.CPU's own bus-access path (that would double-tick the
// PPU), so it charges CPU.RemainingCycles directly to keep run_frame's
// cycle budget honest.
func (n *NES) oamDMA(page uint8) {
	base := uint16(page) << 8
	n.tick()
	n.CPU.RemainingCycles--
	for i := 0; i < 256; i++ {
		b := n.Read(base + uint16(i))
		n.CPU.RemainingCycles--
		n.tick()
		n.CPU.RemainingCycles--
		n.PPU.WriteOAMByte(b)
	}
}
