// Package ppu implements the NES Picture Processing Unit (2C02): the
// dot/scanline state machine, loopy scroll addressing, background shift
// registers and sprite evaluation pipeline that produce one 256x240
// frame every 262 scanlines x 341 dots.
package ppu

import "github.com/ag99/nescore/internal/bitutil"

// Frame is one rendered picture: 256x240 24-bit RGB pixels, row-major.
type Frame [256 * 240][3]uint8

type spriteEntry struct {
	id   uint8 // original OAM index; 64 marks an empty slot
	y    uint8
	tile uint8
	attr uint8
	x    uint8
}

type imaginarySprite struct {
	id    uint8
	x     uint8
	attr  uint8
	dataL uint8
	dataH uint8
}

// PPU is the 2C02: CPU-visible registers, the loopy v/t/x/w scroll
// state, the background shift-register pipeline and sprite evaluation,
// and the PPU-side bus (nametable RAM, palette RAM, cartridge CHR).
type PPU struct {
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8

	v uint16 // current VRAM address
	t uint16 // temporary VRAM address / address latch
	x uint8  // fine X scroll
	w bool   // write toggle

	busLatch   uint8 // last byte placed on the CPU-side PPU bus
	readBuffer uint8 // PPUDATA read buffer

	vram       [0x800]uint8
	paletteRAM [32]uint8
	cart       CartridgeInterface

	scanline int
	cycle    int
	oddFrame bool

	oam          [256]uint8
	secondaryOAM [8]spriteEntry
	imaginary    [8]imaginarySprite

	// Background fetch pipeline.
	fetchAddr  uint16
	ntLatch    uint8
	atLatch    uint8 // 2-bit attribute value for the tile being fetched
	bgLowLatch uint8
	bgHighLatch uint8

	bgShiftL, bgShiftH uint16
	atShiftL, atShiftH uint8
	atLatchL, atLatchH bool

	frame     Frame
	videoSink func(Frame)
	nmiCallback func()
}

// New creates a PPU wired to cart, which it holds as a one-directional
// leaf reference: the PPU never reaches back through cart to the CPU or
// NES glue.
func New(cart CartridgeInterface) *PPU {
	p := &PPU{cart: cart}
	p.Reset()
	return p
}

// Reset restores power-on register state. PPUSTATUS powers up with bits
// 7/6/5 clear; real hardware's vblank flag happens to already be clear
// at this point in the boot sequence.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0
	p.v, p.t = 0, 0
	p.x = 0
	p.w = false
	p.busLatch = 0
	p.readBuffer = 0
	p.scanline = 0
	p.cycle = 0
	p.oddFrame = false
	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = spriteEntry{id: 64}
	}
	for i := range p.imaginary {
		p.imaginary[i] = imaginarySprite{id: 64}
	}
}

// SetNMICallback registers the function invoked when the PPU raises the
// CPU's NMI line at the start of vblank. This is the only channel
// through which the PPU reaches the CPU: a callback, never a pointer.
func (p *PPU) SetNMICallback(cb func()) {
	p.nmiCallback = cb
}

// SetVideoSink registers the function invoked with a completed frame at
// the start of the post-render scanline.
func (p *PPU) SetVideoSink(cb func(Frame)) {
	p.videoSink = cb
}

// WriteOAMByte is the OAM-DMA entry point: each of the 256 bytes DMA
// copies is delivered through the OAMDATA register path, exactly as
// real hardware's $4014 handler does, auto-incrementing OAMADDR.
func (p *PPU) WriteOAMByte(value uint8) {
	p.WriteRegister(4, value)
}

// ReadRegister serves a CPU read of one of the eight PPU registers,
// addressed mod 8 by the caller's decode ($2000-$2007 and their
// mirrors through $3FFF).
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr % 8 {
	case 2: // PPUSTATUS
		result := (p.busLatch & 0x1F) | p.ppuStatus
		p.ppuStatus &^= 0x80
		p.w = false
		p.busLatch = result
		return result
	case 4: // OAMDATA
		value := p.oam[p.oamAddr]
		p.busLatch = value
		return value
	case 7: // PPUDATA
		value := p.readPPUData()
		p.busLatch = value
		return value
	default: // write-only registers return open bus
		return p.busLatch
	}
}

// WriteRegister serves a CPU write to one of the eight PPU registers.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	p.busLatch = value
	switch addr % 8 {
	case 0: // PPUCTRL
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | (uint16(value&0x03) << 10)
	case 1: // PPUMASK
		p.ppuMask = value
	case 2: // PPUSTATUS: read-only
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		if !p.w {
			p.x = value & 0x07
			p.t = (p.t & 0xFFE0) | uint16(value>>3)
			p.w = true
		} else {
			p.t = (p.t & 0x8FFF) | (uint16(value&0x07) << 12)
			p.t = (p.t & 0xFC1F) | (uint16(value&0xF8) << 2)
			p.w = false
		}
	case 6: // PPUADDR
		if !p.w {
			p.t = (p.t & 0x80FF) | (uint16(value&0x3F) << 8)
			p.w = true
		} else {
			p.t = (p.t & 0xFF00) | uint16(value)
			p.v = p.t
			p.w = false
		}
	case 7: // PPUDATA
		p.writePPUData(value)
	}
}

func (p *PPU) readPPUData() uint8 {
	var data uint8
	if p.v <= 0x3EFF {
		data = p.readBuffer
		p.readBuffer = p.busRead(p.v)
	} else {
		data = p.busRead(p.v)
		p.readBuffer = data
	}
	p.incrementVRAMAddr()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	p.busWrite(p.v, value)
	p.incrementVRAMAddr()
}

func (p *PPU) incrementVRAMAddr() {
	if bitutil.Bit(p.ppuCtrl, 2) {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x3FFF
}

// --- PPU-side bus: CHR, nametable mirroring, palette RAM ---

func (p *PPU) mirrorNametable(addr uint16) uint16 {
	addr &= 0x0FFF
	vertical := true
	if m, ok := p.cart.(MirroringSource); ok {
		vertical = m.MirrorVertical()
	}
	if vertical {
		return addr % 0x800
	}
	return ((addr >> 1) & 0x400) + (addr % 0x400)
}

func palettePosition(addr uint16) uint16 {
	a := addr & 0x1F
	if a&0x13 == 0x10 {
		a &^= 0x10
	}
	return a
}

func (p *PPU) busRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.cart.ReadCHR(addr)
	case addr < 0x3F00:
		return p.vram[p.mirrorNametable(addr)]
	default:
		v := p.paletteRAM[palettePosition(addr)]
		if bitutil.Bit(p.ppuMask, 0) {
			v &= 0x30
		}
		return v
	}
}

func (p *PPU) busWrite(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.cart.WriteCHR(addr, value)
	case addr < 0x3F00:
		p.vram[p.mirrorNametable(addr)] = value
	default:
		p.paletteRAM[palettePosition(addr)] = value
	}
}

// --- dot-clock state machine ---

func (p *PPU) renderingEnabled() bool {
	return bitutil.Bit(p.ppuMask, 3) || bitutil.Bit(p.ppuMask, 4)
}

// Step advances the PPU by exactly one dot.
func (p *PPU) Step() {
	p.processDot()
	p.advanceDot()
}

func (p *PPU) advanceDot() {
	if p.scanline == 261 && p.cycle == 339 && p.renderingEnabled() && p.oddFrame {
		p.cycle = 0
		p.scanline = 0
		p.oddFrame = !p.oddFrame
		return
	}
	p.cycle++
	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > 261 {
			p.scanline = 0
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) processDot() {
	switch {
	case p.scanline >= 0 && p.scanline < 240:
		p.visibleOrPreDot(false)
	case p.scanline == 240:
		if p.cycle == 0 && p.videoSink != nil {
			p.videoSink(p.frame)
		}
	case p.scanline == 241:
		if p.cycle == 1 {
			p.ppuStatus |= 0x80
			if bitutil.Bit(p.ppuCtrl, 7) && p.nmiCallback != nil {
				p.nmiCallback()
			}
		}
	case p.scanline == 261:
		p.visibleOrPreDot(true)
	}
}

func (p *PPU) visibleOrPreDot(pre bool) {
	dot := p.cycle

	if dot == 1 {
		p.clearSecondaryOAM()
		if pre {
			p.ppuStatus &^= 0xE0 // clear vblank, sprite-0 hit, overflow
		}
	}

	if (dot >= 2 && dot <= 255) || (dot >= 322 && dot <= 337) {
		p.bgFetchStep(dot)
		p.renderPixel(dot)
		p.shiftRegisters()
	}

	switch dot {
	case 256:
		p.renderPixel(dot)
		p.shiftRegisters()
		p.bgHighLatch = p.busRead(p.fetchAddr)
		p.incrementY()
	case 257:
		p.renderPixel(dot)
		p.reloadShiftRegisters()
		p.copyX()
		p.evaluateSprites()
	case 321:
		p.loadSpritesForNextScanline()
	case 338, 340:
		p.fetchAddr = p.nametableAddress()
		p.busRead(p.fetchAddr)
	}

	if pre && dot >= 280 && dot <= 304 {
		p.copyY()
	}
}

func (p *PPU) bgFetchStep(dot int) {
	switch dot % 8 {
	case 1:
		p.reloadShiftRegisters()
		p.fetchAddr = p.nametableAddress()
	case 2:
		p.ntLatch = p.busRead(p.fetchAddr)
	case 3:
		p.fetchAddr = p.attributeAddress()
	case 4:
		at := p.busRead(p.fetchAddr)
		if (p.v>>5)&0x02 != 0 {
			at >>= 4
		}
		if p.v&0x02 != 0 {
			at >>= 2
		}
		p.atLatch = at & 0x03
	case 5:
		p.fetchAddr = p.backgroundPatternAddress()
	case 6:
		p.bgLowLatch = p.busRead(p.fetchAddr)
	case 7:
		p.fetchAddr += 8
	case 0:
		p.bgHighLatch = p.busRead(p.fetchAddr)
		p.incrementX()
	}
}

func (p *PPU) nametableAddress() uint16 {
	return 0x2000 | (p.v & 0x0FFF)
}

func (p *PPU) attributeAddress() uint16 {
	coarseY := (p.v >> 5) & 0x1F
	coarseX := p.v & 0x1F
	nt := (p.v >> 10) & 0x03
	return 0x23C0 | (nt << 10) | ((coarseY >> 2) << 3) | (coarseX >> 2)
}

func (p *PPU) backgroundPatternAddress() uint16 {
	bgTable := uint16(0)
	if bitutil.Bit(p.ppuCtrl, 4) {
		bgTable = 1
	}
	fineY := (p.v >> 12) & 0x07
	return uint16(p.ntLatch)*16 + fineY + bgTable*0x1000
}

func (p *PPU) reloadShiftRegisters() {
	p.bgShiftL = (p.bgShiftL & 0xFF00) | uint16(p.bgLowLatch)
	p.bgShiftH = (p.bgShiftH & 0xFF00) | uint16(p.bgHighLatch)
	p.atLatchL = p.atLatch&0x01 != 0
	p.atLatchH = p.atLatch&0x02 != 0
}

func (p *PPU) shiftRegisters() {
	p.bgShiftL <<= 1
	p.bgShiftH <<= 1
	var al, ah uint8
	if p.atLatchL {
		al = 1
	}
	if p.atLatchH {
		ah = 1
	}
	p.atShiftL = p.atShiftL<<1 | al
	p.atShiftH = p.atShiftH<<1 | ah
}

// --- loopy addressing ---

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

// --- sprite evaluation ---

func (p *PPU) spriteHeight() int {
	if bitutil.Bit(p.ppuCtrl, 5) {
		return 16
	}
	return 8
}

func (p *PPU) clearSecondaryOAM() {
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = spriteEntry{id: 64}
	}
}

// evaluateSprites scans primary OAM for sprites intersecting the
// scanline that follows the one currently being drawn.
func (p *PPU) evaluateSprites() {
	target := (p.scanline + 1) % 262
	height := p.spriteHeight()

	count := 0
	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4])
		row := target - y
		if row < 0 || row >= height {
			continue
		}
		if count >= 8 {
			p.ppuStatus |= 0x20
			break
		}
		p.secondaryOAM[count] = spriteEntry{
			id:   uint8(i),
			y:    p.oam[i*4],
			tile: p.oam[i*4+1],
			attr: p.oam[i*4+2],
			x:    p.oam[i*4+3],
		}
		count++
	}
	for k := count; k < 8; k++ {
		p.secondaryOAM[k] = spriteEntry{id: 64}
	}
}

// loadSpritesForNextScanline fetches pattern data for the 8 sprites
// selected by evaluateSprites into the imaginary sprite buffer.
func (p *PPU) loadSpritesForNextScanline() {
	target := (p.scanline + 1) % 262
	height := p.spriteHeight()

	for i, e := range p.secondaryOAM {
		if e.id == 64 {
			p.imaginary[i] = imaginarySprite{id: 64}
			continue
		}
		row := target - int(e.y)
		if e.attr&0x80 != 0 {
			row = height - 1 - row
		}

		var addr uint16
		if height == 16 {
			addr = uint16(e.tile&0x01)*0x1000 + uint16(e.tile&0xFE)*16
		} else {
			bgTable := uint16(0)
			if bitutil.Bit(p.ppuCtrl, 3) {
				bgTable = 1
			}
			addr = bgTable*0x1000 + uint16(e.tile)*16
		}
		addr += uint16(row) + uint16(row&8)

		p.imaginary[i] = imaginarySprite{
			id:    e.id,
			x:     e.x,
			attr:  e.attr,
			dataL: p.busRead(addr),
			dataH: p.busRead(addr + 8),
		}
	}
}

// --- pixel production ---

func (p *PPU) renderPixel(dot int) {
	if p.scanline >= 240 {
		return
	}
	x := dot - 2
	if x < 0 || x >= 256 {
		return
	}

	var bgColor uint8
	if bitutil.Bit(p.ppuMask, 3) {
		shift := uint(15 - p.x)
		bit0 := uint8(p.bgShiftL>>shift) & 1
		bit1 := uint8(p.bgShiftH>>shift) & 1
		bgColor = bit1<<1 | bit0
		if bgColor != 0 {
			attrShift := uint(7 - p.x)
			a0 := (p.atShiftL >> attrShift) & 1
			a1 := (p.atShiftH >> attrShift) & 1
			bgColor |= (a1<<1 | a0) << 2
		}
	}
	bgDisplay := bgColor
	if x < 8 && p.ppuMask&0x02 == 0 {
		bgDisplay = 0
	}

	var spriteColor uint8
	var spritePalette uint8
	var spritePriority bool
	var spriteIsZero bool
	if bitutil.Bit(p.ppuMask, 4) {
		for i := 7; i >= 0; i-- {
			sp := p.imaginary[i]
			if sp.id == 64 {
				continue
			}
			sprX := x - int(sp.x)
			if sprX < 0 || sprX >= 8 {
				continue
			}
			if sp.attr&0x40 != 0 {
				sprX ^= 7
			}
			bit0 := (sp.dataL >> uint(7-sprX)) & 1
			bit1 := (sp.dataH >> uint(7-sprX)) & 1
			idx := bit1<<1 | bit0
			if idx == 0 {
				continue
			}
			spriteColor = idx
			spritePalette = sp.attr & 0x03
			spritePriority = sp.attr&0x20 != 0
			spriteIsZero = sp.id == 0
		}
	}
	spriteDisplay := spriteColor
	if x < 8 && p.ppuMask&0x04 == 0 {
		spriteDisplay = 0
	}

	if spriteIsZero && bgColor != 0 && spriteColor != 0 && x != 255 && p.ppuMask&0x18 == 0x18 {
		p.ppuStatus |= 0x40
	}

	var paletteIdx uint8
	if spriteDisplay != 0 && (bgDisplay == 0 || !spritePriority) {
		paletteIdx = 0x10 | (spritePalette << 2) | spriteDisplay
	} else {
		paletteIdx = bgDisplay
	}

	colorByte := p.busRead(0x3F00 | uint16(paletteIdx))
	r, g, b := RGB(colorByte)
	p.frame[p.scanline*256+x] = [3]uint8{r, g, b}
}

// State is a read-only snapshot of PPU state for host/debug inspection.
type State struct {
	Scanline int
	Cycle    int
	V, T     uint16
	FineX    uint8
	Ctrl     uint8
	Mask     uint8
	Status   uint8
}

// Snapshot returns the current PPU state.
func (p *PPU) Snapshot() State {
	return State{
		Scanline: p.scanline,
		Cycle:    p.cycle,
		V:        p.v,
		T:        p.t,
		FineX:    p.x,
		Ctrl:     p.ppuCtrl,
		Mask:     p.ppuMask,
		Status:   p.ppuStatus,
	}
}
