// Command nescore is a thin ebiten frontend around internal/nes: it loads
// an iNES ROM, drives one emulated frame per Ebitengine update, and blits
// the PPU's output into a scaled window.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ag99/nescore/internal/cartridge"
	"github.com/ag99/nescore/internal/joypad"
	"github.com/ag99/nescore/internal/nes"
	"github.com/ag99/nescore/internal/ppu"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

func main() {
	romFile := flag.String("rom", "", "path to an iNES ROM file")
	scale := flag.Int("scale", 3, "window scale factor")
	flag.Parse()

	if *romFile == "" {
		log.Fatal("nescore: -rom is required")
	}

	cart, err := cartridge.LoadFile(*romFile)
	if err != nil {
		log.Fatalf("nescore: load ROM: %v", err)
	}
	if cart.Mapper != 0 {
		log.Fatalf("nescore: mapper %d unsupported, only NROM (mapper 0) is implemented", cart.Mapper)
	}

	console := nes.New(cart)
	console.Power()

	game := newGame(console)
	console.SetVideoSink(game.onFrame)

	ebiten.SetWindowTitle(fmt.Sprintf("nescore - %s", *romFile))
	ebiten.SetWindowSize(nesWidth*(*scale), nesHeight*(*scale))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("nescore: %v", err)
	}
}

// game implements ebiten.Game, driving the console one frame per Update
// and presenting its most recent video-sink callback in Draw.
type game struct {
	console *nes.NES
	image   *ebiten.Image
	pixels  []byte
}

func newGame(console *nes.NES) *game {
	return &game{
		console: console,
		image:   ebiten.NewImage(nesWidth, nesHeight),
		pixels:  make([]byte, nesWidth*nesHeight*4),
	}
}

var keymap = map[ebiten.Key]joypad.Button{
	ebiten.KeyArrowUp:    joypad.Up,
	ebiten.KeyArrowDown:  joypad.Down,
	ebiten.KeyArrowLeft:  joypad.Left,
	ebiten.KeyArrowRight: joypad.Right,
	ebiten.KeyZ:          joypad.A,
	ebiten.KeyX:          joypad.B,
	ebiten.KeyEnter:      joypad.Start,
	ebiten.KeySpace:      joypad.Select,
}

func (g *game) Update() error {
	for key, button := range keymap {
		g.console.Pad.SetButton(0, button, ebiten.IsKeyPressed(key))
	}
	g.runFrame()
	return nil
}

// runFrame recovers the *cpu.UnknownOpcodeError panic Step raises on a
// dispatch-table miss and reports it the same way a bad ROM is reported at
// startup, rather than letting it crash the process with a raw panic dump.
func (g *game) runFrame() {
	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("nescore: %v", r)
		}
	}()
	g.console.RunFrame()
}

// onFrame is wired as the PPU's video sink; it runs on the same
// goroutine as Update (RunFrame calls it synchronously), so writing
// directly into the reusable pixel buffer needs no locking.
func (g *game) onFrame(frame ppu.Frame) {
	for i, px := range frame {
		o := i * 4
		g.pixels[o] = px[0]
		g.pixels[o+1] = px[1]
		g.pixels[o+2] = px[2]
		g.pixels[o+3] = 0xFF
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.image.WritePixels(g.pixels)
	op := &ebiten.DrawImageOptions{}
	bounds := screen.Bounds()
	sx := float64(bounds.Dx()) / nesWidth
	sy := float64(bounds.Dy()) / nesHeight
	op.GeoM.Scale(sx, sy)
	screen.DrawImage(g.image, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
