package emu

import emucore "github.com/user-none/eblitui/api"

// Pad is the button snapshot of one controller. True means pressed.
type Pad struct {
	Up, Down, Left, Right bool
	A, B, C, Start        bool
	X, Y, Z, Mode         bool
}

// Host bitmask positions for the face buttons. Directions use the
// emucore.Button* positions.
const (
	ButtonA     = 4
	ButtonB     = 5
	ButtonC     = 6
	ButtonStart = 7
	ButtonX     = 8
	ButtonY     = 9
	ButtonZ     = 10
	ButtonMode  = 11
)

// PadFromMask unpacks a host button bitmask.
func PadFromMask(buttons uint32) Pad {
	bit := func(n int) bool { return buttons&(1<<n) != 0 }
	return Pad{
		Up:    bit(emucore.ButtonUp),
		Down:  bit(emucore.ButtonDown),
		Left:  bit(emucore.ButtonLeft),
		Right: bit(emucore.ButtonRight),
		A:     bit(ButtonA),
		B:     bit(ButtonB),
		C:     bit(ButtonC),
		Start: bit(ButtonStart),
		X:     bit(ButtonX),
		Y:     bit(ButtonY),
		Z:     bit(ButtonZ),
		Mode:  bit(ButtonMode),
	}
}

// Mask packs the pad back into the host bitmask form.
func (p Pad) Mask() uint32 {
	var m uint32
	set := func(n int, on bool) {
		if on {
			m |= 1 << n
		}
	}
	set(emucore.ButtonUp, p.Up)
	set(emucore.ButtonDown, p.Down)
	set(emucore.ButtonLeft, p.Left)
	set(emucore.ButtonRight, p.Right)
	set(ButtonA, p.A)
	set(ButtonB, p.B)
	set(ButtonC, p.C)
	set(ButtonStart, p.Start)
	set(ButtonX, p.X)
	set(ButtonY, p.Y)
	set(ButtonZ, p.Z)
	set(ButtonMode, p.Mode)
	return m
}

// lines returns the active-low pin levels for bits 5:0 given the pad's
// current multiplexer phase.
//
//	TH=1:           C, B, Right, Left, Down, Up
//	TH=0:           Start, A, 0, 0, Down, Up
//	TH=0 detect:    Start, A, 0, 0, 0, 0
//	TH=1 extended:  C, B, Mode, X, Y, Z
//	TH=0 end:       Start, A, 1, 1, 1, 1
func (p Pad) lines(phase padPhase) byte {
	var v byte = 0x3F
	clear := func(mask byte, pressed bool) {
		if pressed {
			v &^= mask
		}
	}
	switch phase {
	case phaseTHHigh:
		clear(0x01, p.Up)
		clear(0x02, p.Down)
		clear(0x04, p.Left)
		clear(0x08, p.Right)
		clear(0x10, p.B)
		clear(0x20, p.C)
	case phaseTHLow:
		v = 0x33
		clear(0x01, p.Up)
		clear(0x02, p.Down)
		clear(0x10, p.A)
		clear(0x20, p.Start)
	case phaseDetect:
		v = 0x30
		clear(0x10, p.A)
		clear(0x20, p.Start)
	case phaseExtended:
		clear(0x01, p.Z)
		clear(0x02, p.Y)
		clear(0x04, p.X)
		clear(0x08, p.Mode)
		clear(0x10, p.B)
		clear(0x20, p.C)
	case phaseEnd:
		clear(0x10, p.A)
		clear(0x20, p.Start)
	}
	return v
}
