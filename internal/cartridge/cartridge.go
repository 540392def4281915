// Package cartridge implements iNES ROM parsing and the mapper-0 (NROM)
// address mapping used by the NES core.
package cartridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	headerSize  = 16
	trainerSize = 512
	prgUnitSize = 16 * 1024 // PRG-ROM size granularity
	chrUnitSize = 8 * 1024  // CHR-ROM size granularity
	prgPageSize = 0x2000 // 8 KiB PRG banking window (prg_map)
	chrPageSize = 0x400  // 1 KiB CHR banking window (chr_map)
	prgWindows  = 4
	chrWindows  = 8
	prgBase     = 0x8000
)

// ErrInvalidHeader is returned when the supplied bytes are not a usable
// iNES image: bad magic, truncated file, or declared sizes that exceed
// the data actually present.
var ErrInvalidHeader = errors.New("cartridge: invalid iNES header")

var magic = [4]byte{0x4E, 0x45, 0x53, 0x1A} // "NES\x1A"

// Cartridge holds the parsed, immutable contents of a mapper-0 (NROM) ROM
// image: PRG/CHR ROM and the fixed bank windows that mapper 0 never
// rebinds after construction.
type Cartridge struct {
	Mapper   uint8
	Vertical bool // true: vertical mirroring, false: horizontal
	PRGROM   []uint8
	CHRROM   []uint8 // CHR RAM when the header declared zero CHR banks

	hasCHRRAM bool
	prgMap    [prgWindows]int // 8 KiB window base offsets into PRGROM
	chrMap    [chrWindows]int // 1 KiB window base offsets into CHRROM
}

// LoadFile reads and parses an iNES ROM image from disk.
func LoadFile(path string) (*Cartridge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load parses an iNES ROM image from r.
func Load(r io.Reader) (*Cartridge, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cartridge: read ROM: %w", err)
	}
	return Parse(raw)
}

// Parse parses an iNES ROM image already held in memory.
func Parse(raw []uint8) (*Cartridge, error) {
	if len(raw) < headerSize || !bytes.Equal(raw[0:4], magic[:]) {
		return nil, ErrInvalidHeader
	}

	prgUnits := raw[4]
	chrUnits := raw[5]
	flags6 := raw[6]
	flags7 := raw[7]

	vertical := flags6&0x01 != 0
	hasTrainer := flags6&0x04 != 0
	mapper := (flags7 & 0xF0) | (flags6 >> 4)

	offset := headerSize
	if hasTrainer {
		offset += trainerSize
	}

	prgSize := int(prgUnits) * prgUnitSize
	chrSize := int(chrUnits) * chrUnitSize

	if len(raw) < offset+prgSize+chrSize {
		return nil, fmt.Errorf("%w: declared PRG/CHR size exceeds file length", ErrInvalidHeader)
	}

	prg := make([]uint8, prgSize)
	copy(prg, raw[offset:offset+prgSize])
	offset += prgSize

	hasCHRRAM := chrSize == 0
	chrRAMSize := chrSize
	if hasCHRRAM {
		chrRAMSize = chrUnitSize // 8 KiB of CHR RAM when none is supplied
	}
	chr := make([]uint8, chrRAMSize)
	if !hasCHRRAM {
		copy(chr, raw[offset:offset+chrSize])
	}

	c := &Cartridge{
		Mapper:    mapper,
		Vertical:  vertical,
		PRGROM:    prg,
		CHRROM:    chr,
		hasCHRRAM: hasCHRRAM,
	}
	c.initMaps()
	return c, nil
}

// initMaps builds the fixed 8 KiB PRG and 1 KiB CHR banking windows.
// prg_map[i] == (0x2000*i) mod prg_size; chr_map[i] == (0x400*i) mod chr_size.
func (c *Cartridge) initMaps() {
	prgSize := len(c.PRGROM)
	for i := range c.prgMap {
		if prgSize == 0 {
			c.prgMap[i] = 0
			continue
		}
		c.prgMap[i] = (prgPageSize * i) % prgSize
	}

	chrSize := len(c.CHRROM)
	for i := range c.chrMap {
		if chrSize == 0 {
			c.chrMap[i] = 0
			continue
		}
		c.chrMap[i] = (chrPageSize * i) % chrSize
	}
}

// ReadPRG reads a byte from CPU address space. Addresses below $8000 read
// as open bus (0); $8000-$FFFF is mapped PRG ROM.
func (c *Cartridge) ReadPRG(addr uint16) uint8 {
	if addr < prgBase {
		return 0
	}
	if len(c.PRGROM) == 0 {
		return 0
	}
	rel := addr - prgBase
	window := c.prgMap[rel/prgPageSize]
	return c.PRGROM[window+int(rel%prgPageSize)]
}

// WritePRG is a no-op on mapper 0: PRG ROM is read-only, and there is no
// PRG-RAM window wired onto the bus below $8000.
func (c *Cartridge) WritePRG(addr uint16, value uint8) {
	// All writes below $8000 and into $8000-$FFFF are silently ignored.
}

// MirrorVertical reports the nametable mirroring mode declared by the
// iNES header's flags-6 bit 0.
func (c *Cartridge) MirrorVertical() bool {
	return c.Vertical
}

// ReadCHR reads a byte of pattern-table data at a 14-bit PPU address.
func (c *Cartridge) ReadCHR(addr uint16) uint8 {
	if len(c.CHRROM) == 0 {
		return 0
	}
	window := c.chrMap[addr/chrPageSize]
	return c.CHRROM[window+int(addr%chrPageSize)]
}

// WriteCHR writes pattern-table data when the cartridge supplies CHR RAM;
// it is a no-op against CHR ROM.
func (c *Cartridge) WriteCHR(addr uint16, value uint8) {
	if !c.hasCHRRAM || len(c.CHRROM) == 0 {
		return
	}
	window := c.chrMap[addr/chrPageSize]
	c.CHRROM[window+int(addr%chrPageSize)] = value
}
