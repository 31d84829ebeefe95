// Package cli runs the emulator in a plain Ebiten window without the
// full frontend UI.
package cli

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	emubridge "github.com/user-none/mdcore/bridge/ebiten"
	"github.com/user-none/mdcore/emu"
	"github.com/user-none/mdcore/ui"
)

// Runner drives the emulator on its own goroutine at the region's frame
// rate. The Ebiten thread polls input and draws the latest frame.
type Runner struct {
	emulator *emubridge.Emulator

	emuControl        *ui.EmuControl
	sharedInput       *ui.SharedInput
	sharedFramebuffer *ui.SharedFramebuffer
	emuDone           chan struct{}
}

// NewRunner starts the emulation goroutine for e.
func NewRunner(e *emubridge.Emulator) *Runner {
	r := &Runner{
		emulator:          e,
		emuControl:        ui.NewEmuControl(),
		sharedInput:       &ui.SharedInput{},
		sharedFramebuffer: ui.NewSharedFramebuffer(),
		emuDone:           make(chan struct{}),
	}
	e.SetFrameSink(r.sharedFramebuffer)

	go r.emulationLoop()
	return r
}

// Close stops the emulation goroutine and waits for it.
func (r *Runner) Close() {
	r.emuControl.Stop()
	<-r.emuDone
}

func (r *Runner) emulationLoop() {
	defer close(r.emuDone)

	ticker := time.NewTicker(time.Second / time.Duration(r.emulator.GetTiming().FPS))
	defer ticker.Stop()

	for r.emuControl.CheckPause() {
		r.emulator.SetPad(0, r.sharedInput.Read(0))
		r.emulator.SetPad(1, r.sharedInput.Read(1))

		if err := r.emulator.StepFrame(); err != nil {
			log.Printf("emulation stopped: %v", err)
			return
		}
		<-ticker.C
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}
	r.pollInput()
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	pixels, stride, height := r.sharedFramebuffer.Read()
	r.emulator.DrawFrame(screen, pixels, stride, height)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}

// keyboardPad reads player 1 from the keyboard: WASD or arrows, JKL for
// A/B/C, UIO for X/Y/Z, P for Mode and Enter for Start.
func keyboardPad() emu.Pad {
	key := ebiten.IsKeyPressed
	return emu.Pad{
		Up:    key(ebiten.KeyW) || key(ebiten.KeyArrowUp),
		Down:  key(ebiten.KeyS) || key(ebiten.KeyArrowDown),
		Left:  key(ebiten.KeyA) || key(ebiten.KeyArrowLeft),
		Right: key(ebiten.KeyD) || key(ebiten.KeyArrowRight),
		A:     key(ebiten.KeyJ),
		B:     key(ebiten.KeyK),
		C:     key(ebiten.KeyL),
		Start: key(ebiten.KeyEnter),
		X:     key(ebiten.KeyU),
		Y:     key(ebiten.KeyI),
		Z:     key(ebiten.KeyO),
		Mode:  key(ebiten.KeyP),
	}
}

// gamepadPad reads one standard-layout gamepad.
func gamepadPad(id ebiten.GamepadID) emu.Pad {
	btn := func(b ebiten.StandardGamepadButton) bool {
		return ebiten.IsStandardGamepadButtonPressed(id, b)
	}
	const deadzone = 0.5
	axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)

	return emu.Pad{
		Up:    btn(ebiten.StandardGamepadButtonLeftTop) || axisY < -deadzone,
		Down:  btn(ebiten.StandardGamepadButtonLeftBottom) || axisY > deadzone,
		Left:  btn(ebiten.StandardGamepadButtonLeftLeft) || axisX < -deadzone,
		Right: btn(ebiten.StandardGamepadButtonLeftRight) || axisX > deadzone,
		A:     btn(ebiten.StandardGamepadButtonRightBottom),
		B:     btn(ebiten.StandardGamepadButtonRightRight),
		C:     btn(ebiten.StandardGamepadButtonRightLeft),
		Start: btn(ebiten.StandardGamepadButtonCenterRight),
		X:     btn(ebiten.StandardGamepadButtonFrontTopLeft),
		Y:     btn(ebiten.StandardGamepadButtonFrontTopRight),
		Z:     btn(ebiten.StandardGamepadButtonRightTop),
		Mode:  btn(ebiten.StandardGamepadButtonCenterLeft),
	}
}

// mergePads presses a button when either pad presses it.
func mergePads(a, b emu.Pad) emu.Pad {
	return emu.PadFromMask(a.Mask() | b.Mask())
}

// pollInput maps the keyboard and the first gamepad to player 1 and the
// second gamepad to player 2.
func (r *Runner) pollInput() {
	p1, p2 := keyboardPad(), emu.Pad{}
	n := 0
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		switch n {
		case 0:
			p1 = mergePads(p1, gamepadPad(id))
		case 1:
			p2 = gamepadPad(id)
		}
		n++
	}
	r.sharedInput.Set(0, p1)
	r.sharedInput.Set(1, p2)
}
