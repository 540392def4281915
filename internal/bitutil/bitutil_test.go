package bitutil

import "testing"

func TestBitReadsIndividualBits(t *testing.T) {
	if !Bit(0x80, 7) {
		t.Fatalf("bit 7 of 0x80 should be set")
	}
	if Bit(0x80, 0) {
		t.Fatalf("bit 0 of 0x80 should be clear")
	}
}

func TestBit16ReadsIndividualBits(t *testing.T) {
	if !Bit16(0x4000, 14) {
		t.Fatalf("bit 14 of 0x4000 should be set")
	}
	if Bit16(0x4000, 0) {
		t.Fatalf("bit 0 of 0x4000 should be clear")
	}
}

func TestPackMatchesStatusByteOrder(t *testing.T) {
	got := Pack(true, false, true, false, true, false, true, false)
	want := uint8(0xAA)
	if got != want {
		t.Fatalf("Pack(...) = %#02x, want %#02x", got, want)
	}
}

func TestLo16RoundTrips(t *testing.T) {
	got := Lo16(0x34, 0x12)
	if got != 0x1234 {
		t.Fatalf("Lo16(0x34, 0x12) = %#04x, want 0x1234", got)
	}
}

func TestSamePage(t *testing.T) {
	if !SamePage(0x12FE, 0x12FF) {
		t.Fatalf("0x12FE and 0x12FF should be the same page")
	}
	if SamePage(0x12FF, 0x1300) {
		t.Fatalf("0x12FF and 0x1300 should not be the same page")
	}
}
