package joypad

import "testing"

func TestStrobeLatchAndSequentialRead(t *testing.T) {
	j := New()
	j.SetButtons(0, uint8(A|Start|Right)) // bits 0, 3, 7

	j.WriteStrobe(1)
	j.WriteStrobe(0) // 1->0 transition latches buttons into the shift register

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 1}
	for i, w := range want {
		got := j.Read(0) & 1
		if got != w {
			t.Fatalf("read %d: got bit %d, want %d", i, got, w)
		}
	}

	// After the 8 buttons, further reads return the all-ones tail: 0x41.
	if got := j.Read(0); got != 0x41 {
		t.Fatalf("post-sequence read = 0x%02X, want 0x41", got)
	}
}

func TestStrobeHighReturnsLiveABitWithoutAdvancing(t *testing.T) {
	j := New()
	j.WriteStrobe(1)
	j.SetButtons(0, uint8(A))

	for i := 0; i < 3; i++ {
		if got := j.Read(0); got != 0x41 {
			t.Fatalf("read %d = 0x%02X, want 0x41", i, got)
		}
	}

	j.SetButtons(0, 0)
	if got := j.Read(0); got != 0x40 {
		t.Fatalf("read after clearing A = 0x%02X, want 0x40", got)
	}
}

func TestIndependentControllers(t *testing.T) {
	j := New()
	j.SetButtons(0, uint8(A))
	j.SetButtons(1, uint8(B))
	j.WriteStrobe(1)
	j.WriteStrobe(0)

	if got := j.Read(0) & 1; got != 1 {
		t.Fatalf("controller 0 bit0 = %d, want 1", got)
	}
	if got := j.Read(1) & 1; got != 0 {
		t.Fatalf("controller 1 bit0 = %d, want 0 (B is bit1)", got)
	}
}
