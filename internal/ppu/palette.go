package ppu

// nesRGB is the canonical 2C02 NTSC palette: 64 entries, each a packed
// 0xRRGGBB triple. Index 0x0D is the "black/sync" entry real hardware
// never actually outputs as a stable color; it is kept as plain black
// here, as are 0x1D and 0x3D, while 0x2D holds a dark gray.
var nesRGB = [64]uint32{
	0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
	0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
	0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
	0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
	0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
	0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
	0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
	0xE4E594, 0xCFF29B, 0xBEFBB3, 0xB8F8D8, 0xB8F8F8, 0x000000, 0x000000, 0x000000,
}

// RGB returns the (r, g, b) triple for a 6-bit NES palette index.
func RGB(index uint8) (r, g, b uint8) {
	packed := nesRGB[index&0x3F]
	return uint8(packed >> 16), uint8(packed >> 8), uint8(packed)
}
