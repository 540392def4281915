package ppu

// CartridgeInterface is the CHR access the PPU needs from the cartridge.
// The nametable mirroring mode comes from the optional MirroringSource
// interface; a cartridge without it is treated as vertically mirrored.
// The PPU holds this as a
// one-directional leaf reference; it never reaches back into the CPU or
// NES glue.
type CartridgeInterface interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
}

// MirroringSource is implemented by cartridges that report their
// nametable mirroring mode directly (mapper 0 hardwires it from the
// iNES header).
type MirroringSource interface {
	MirrorVertical() bool
}
