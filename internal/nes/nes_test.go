package nes

import (
	"testing"

	"github.com/ag99/nescore/internal/cartridge"
	"github.com/ag99/nescore/internal/ppu"
)

// buildROM assembles a minimal one-bank NROM image with a controllable
// reset vector, for tests that need a real *cartridge.Cartridge behind
// the NES glue rather than exercising a package in isolation.
func buildROM(resetVector uint16) []byte {
	const prgSize = 16 * 1024
	const chrSize = 8 * 1024

	raw := make([]byte, 16+prgSize+chrSize)
	copy(raw[0:4], []byte{0x4E, 0x45, 0x53, 0x1A})
	raw[4] = 1 // one 16 KiB PRG bank
	raw[5] = 1 // one 8 KiB CHR bank

	prg := raw[16 : 16+prgSize]
	for i := range prg {
		prg[i] = 0xEA // NOP, so stray fetches never hit an unknown opcode
	}
	prg[0x3FFC] = uint8(resetVector)
	prg[0x3FFD] = uint8(resetVector >> 8)

	return raw
}

func newTestNES(t *testing.T) *NES {
	t.Helper()
	cart, err := cartridge.Parse(buildROM(0x8000))
	if err != nil {
		t.Fatalf("buildROM: parse failed: %v", err)
	}
	return New(cart)
}

func TestPowerLoadsResetVectorAndSetsStackPointer(t *testing.T) {
	n := newTestNES(t)
	n.Power()

	st := n.CPUState()
	if st.PC != 0x8000 {
		t.Fatalf("PC after power = %#04x, want 0x8000", st.PC)
	}
	if st.S != 0xFD {
		t.Fatalf("S after power = %#02x, want 0xFD", st.S)
	}
}

func TestRunFrameDeliversExactlyOneFrameCallback(t *testing.T) {
	n := newTestNES(t)
	n.Power()

	frames := 0
	var lastFrame ppu.Frame
	n.SetVideoSink(func(f ppu.Frame) {
		frames++
		lastFrame = f
	})

	n.RunFrame()

	if frames != 1 {
		t.Fatalf("video sink called %d times, want 1", frames)
	}
	if len(lastFrame) != 256*240 {
		t.Fatalf("frame buffer has %d pixels, want %d", len(lastFrame), 256*240)
	}
}

func TestWRAMMirrorsAcrossFourWindows(t *testing.T) {
	n := newTestNES(t)
	n.Power()

	n.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0800, 0x1000, 0x1800} {
		if got := n.Read(mirror); got != 0x42 {
			t.Fatalf("WRAM mirror at %#04x = %#02x, want 0x42", mirror, got)
		}
	}
}

func TestUnmappedAPUReadsReturnOpenBus(t *testing.T) {
	n := newTestNES(t)
	n.Power()

	for _, addr := range []uint16{0x4000, 0x4008, 0x4013, 0x4015, 0x4014} {
		if got := n.Read(addr); got != 0xFF {
			t.Fatalf("read %#04x = %#02x, want 0xFF (open bus)", addr, got)
		}
	}
}

func TestOAMDMACopies256BytesFromSourcePage(t *testing.T) {
	n := newTestNES(t)
	n.Power()

	for i := 0; i < 256; i++ {
		n.Write(0x0200+uint16(i), uint8(i))
	}

	n.Write(0x4014, 0x02)

	for i := 0; i < 256; i++ {
		n.PPU.WriteRegister(3, uint8(i)) // OAMADDR
		if got := n.PPU.ReadRegister(4); got != uint8(i) {
			t.Fatalf("OAM[%d] = %#02x, want %#02x", i, got, uint8(i))
		}
	}
}

func TestOAMDMAConsumesAroundFiveHundredThirteenCycles(t *testing.T) {
	n := newTestNES(t)
	n.Power()

	n.CPU.RemainingCycles = 1000
	before := n.CPU.RemainingCycles
	n.Write(0x4014, 0x02)
	spent := before - n.CPU.RemainingCycles
	if spent != 513 {
		t.Fatalf("OAM DMA spent %d cycles, want 513", spent)
	}
}

func TestJoypadStrobeAndShiftSequence(t *testing.T) {
	n := newTestNES(t)
	n.Power()
	n.Pad.SetButtons(0, 0x01) // A only

	n.Write(0x4016, 1)
	n.Write(0x4016, 0)

	want := []uint8{1, 0, 0, 0, 0, 0, 0, 0}
	for i, w := range want {
		got := n.Read(0x4016) & 1
		if got != w {
			t.Fatalf("bit %d of joypad read = %d, want %d", i, got, w)
		}
	}
	if got := n.Read(0x4016); got != 0x41 {
		t.Fatalf("joypad read past 8 bits = %#02x, want 0x41", got)
	}
}
