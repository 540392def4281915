package apu

import "testing"

func TestRegisterFileRoundTrip(t *testing.T) {
	a := New()
	a.WriteRegister(0x4000, 0x11)
	a.WriteRegister(0x4007, 0x22)
	a.WriteRegister(0x400F, 0x33)
	a.WriteRegister(0x4013, 0x44)
	a.WriteRegister(0x4015, 0x55)
	a.WriteFrameCounter(0x80)

	if a.Pulse1[0] != 0x11 {
		t.Fatalf("Pulse1[0] = %#x, want 0x11", a.Pulse1[0])
	}
	if a.Pulse2[3] != 0x22 {
		t.Fatalf("Pulse2[3] = %#x, want 0x22", a.Pulse2[3])
	}
	if a.Noise[3] != 0x33 {
		t.Fatalf("Noise[3] = %#x, want 0x33", a.Noise[3])
	}
	if a.DMC[3] != 0x44 {
		t.Fatalf("DMC[3] = %#x, want 0x44", a.DMC[3])
	}
	if a.ReadStatus() != 0x55 {
		t.Fatalf("ReadStatus() = %#x, want 0x55", a.ReadStatus())
	}
	if a.FrameCounter != 0x80 {
		t.Fatalf("FrameCounter = %#x, want 0x80", a.FrameCounter)
	}
}

func TestResetClearsRegisters(t *testing.T) {
	a := New()
	a.WriteRegister(0x4000, 0xFF)
	a.Reset()
	if a.Pulse1[0] != 0 {
		t.Fatalf("Pulse1[0] after reset = %#x, want 0", a.Pulse1[0])
	}
}
