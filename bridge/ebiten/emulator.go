// Package ebiten draws emulator frames with Ebiten.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/mdcore/emu"
)

// Emulator adds Ebiten drawing to emu.Emulator.
type Emulator struct {
	*emu.Emulator

	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

// NewEmulator loads rom and wraps the core.
func NewEmulator(rom []byte, region emu.Region) (*Emulator, error) {
	core, err := emu.NewEmulator(rom, region)
	if err != nil {
		return nil, err
	}
	return &Emulator{Emulator: core}, nil
}

// Layout implements ebiten.Game.
func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// fit scales a w x h picture to the largest size that fits the screen
// without changing its aspect ratio, centred.
func fit(screenW, screenH, w, h int) (scale, offsetX, offsetY float64) {
	scale = min(float64(screenW)/float64(w), float64(screenH)/float64(h))
	offsetX = (float64(screenW) - float64(w)*scale) / 2
	offsetY = (float64(screenH) - float64(h)*scale) / 2
	return scale, offsetX, offsetY
}

// DrawFrame draws height rows of ScreenWidth RGBA pixels to screen.
// The pixels come from the emulation goroutine's shared framebuffer.
func (e *Emulator) DrawFrame(screen *ebiten.Image, pixels []byte, stride, height int) {
	if height == 0 || stride != emu.ScreenWidth*4 || len(pixels) < stride*height {
		return
	}
	if e.offscreen == nil || e.offscreen.Bounds().Dy() != height {
		e.offscreen = ebiten.NewImage(emu.ScreenWidth, height)
	}
	e.offscreen.WritePixels(pixels[:stride*height])

	// Interlaced frames are twice as tall; draw them at the same size.
	logicalH := height
	if height > emu.MaxScreenHeight/2 {
		logicalH = height / 2
	}
	scale, ox, oy := fit(screen.Bounds().Dx(), screen.Bounds().Dy(), emu.ScreenWidth, logicalH)

	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale*float64(logicalH)/float64(height))
	e.drawOpts.GeoM.Translate(ox, oy)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(e.offscreen, &e.drawOpts)
}
