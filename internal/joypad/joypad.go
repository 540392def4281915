// Package joypad implements the NES standard controller: a strobe-latched
// 8-bit shift register per pad, as addressed through $4016/$4017.
package joypad

// Button identifies one of the eight buttons packed into a controller's
// serial report, A at bit 0 through Right at bit 7.
type Button uint8

const (
	A Button = 1 << iota
	B
	Select
	Start
	Up
	Down
	Left
	Right
)

// Pad is a single NES controller: the host-writable instantaneous button
// state and the shift register the CPU reads serially.
type Pad struct {
	buttons uint8 // host-writable snapshot of currently-held buttons
	shift   uint8 // serial shift register read by the CPU
}

// Joypad owns both controller ports and the shared strobe line that $4016
// bit 0 drives.
type Joypad struct {
	Pads   [2]Pad
	strobe bool
}

// New returns a freshly powered-on Joypad with no buttons held.
func New() *Joypad {
	return &Joypad{}
}

// SetButton sets or clears a single button on the given controller (0 or 1).
// The host calls this between RunFrame calls. While the strobe is low it
// has no effect until the next strobe 1->0 transition latches it into the
// shift register; while the strobe is high it takes effect immediately.
func (j *Joypad) SetButton(controller int, b Button, pressed bool) {
	if controller < 0 || controller > 1 {
		return
	}
	if pressed {
		j.Pads[controller].buttons |= uint8(b)
	} else {
		j.Pads[controller].buttons &^= uint8(b)
	}
	if j.strobe {
		j.Pads[controller].shift = j.Pads[controller].buttons
	}
}

// SetButtons overwrites all eight buttons on a controller in one call.
func (j *Joypad) SetButtons(controller int, packed uint8) {
	if controller < 0 || controller > 1 {
		return
	}
	j.Pads[controller].buttons = packed
	if j.strobe {
		j.Pads[controller].shift = packed
	}
}

// WriteStrobe handles a CPU write to $4016 bit 0. On the 1->0 transition
// both pads latch their current button snapshot into the shift register.
func (j *Joypad) WriteStrobe(value uint8) {
	newStrobe := value&1 != 0
	if j.strobe && !newStrobe {
		j.Pads[0].shift = j.Pads[0].buttons
		j.Pads[1].shift = j.Pads[1].buttons
	}
	j.strobe = newStrobe
	if j.strobe {
		j.Pads[0].shift = j.Pads[0].buttons
		j.Pads[1].shift = j.Pads[1].buttons
	}
}

// Read serves a CPU read of $4016 (controller 0) or $4017 (controller 1).
// While strobed, every read returns the live A-button bit without
// advancing; otherwise the low bit of the shift register is returned and
// the register shifts right with ones feeding in from the top, so a
// fully-held controller reads as a string of 1s after the 8 buttons.
func (j *Joypad) Read(controller int) uint8 {
	if controller < 0 || controller > 1 {
		return 0x40
	}
	p := &j.Pads[controller]
	if j.strobe {
		return 0x40 | (p.buttons & 1)
	}
	bit := p.shift & 1
	p.shift = 0x80 | (p.shift >> 1)
	return 0x40 | bit
}
