// Package ui holds the state shared between the Ebiten thread and the
// emulation goroutine.
package ui

import (
	"sync"

	"github.com/user-none/mdcore/emu"
)

// SharedInput holds controller state written by the Ebiten thread
// and read by the emulation goroutine.
type SharedInput struct {
	mu   sync.Mutex
	pads [2]emu.Pad
}

// Set stores the pad state for player 0 or 1.
func (si *SharedInput) Set(player int, p emu.Pad) {
	if player < 0 || player >= len(si.pads) {
		return
	}
	si.mu.Lock()
	si.pads[player] = p
	si.mu.Unlock()
}

// Read returns the current pad state for player 0 or 1.
func (si *SharedInput) Read(player int) emu.Pad {
	if player < 0 || player >= len(si.pads) {
		return emu.Pad{}
	}
	si.mu.Lock()
	defer si.mu.Unlock()
	return si.pads[player]
}

// SharedFramebuffer receives finished frames from the emulation
// goroutine and hands them to Ebiten's Draw. Frames are stretched to
// emu.ScreenWidth on the way in so Draw never sees native H32 rows.
type SharedFramebuffer struct {
	mu          sync.Mutex
	writePixels []byte // filled by PresentFrame under the lock
	readPixels  []byte // snapshot returned by Read
	height      int
	frames      uint64
}

var _ emu.FrameSink = (*SharedFramebuffer)(nil)

// NewSharedFramebuffer creates a framebuffer sized for the tallest frame.
func NewSharedFramebuffer() *SharedFramebuffer {
	return &SharedFramebuffer{
		writePixels: make([]byte, emu.ScreenWidth*emu.MaxScreenHeight*4),
		readPixels:  make([]byte, emu.ScreenWidth*emu.MaxScreenHeight*4),
	}
}

// Stride is the byte length of one row.
func (sf *SharedFramebuffer) Stride() int {
	return emu.ScreenWidth * 4
}

// PresentFrame implements emu.FrameSink.
func (sf *SharedFramebuffer) PresentFrame(f emu.Frame) {
	sf.mu.Lock()
	f.Height = min(f.Height, emu.MaxScreenHeight)
	f.StretchTo(sf.writePixels, sf.Stride())
	sf.height = f.Height
	sf.frames++
	sf.mu.Unlock()
}

// Read returns a snapshot of the latest frame that stays valid until
// the next Read.
func (sf *SharedFramebuffer) Read() (pixels []byte, stride, height int) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	n := sf.height * sf.Stride()
	copy(sf.readPixels[:n], sf.writePixels[:n])
	return sf.readPixels[:n], sf.Stride(), sf.height
}

// Frames returns how many frames have been presented.
func (sf *SharedFramebuffer) Frames() uint64 {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.frames
}

// EmuControl coordinates pause, resume and stop between the Ebiten
// thread and the emulation goroutine.
type EmuControl struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopped  bool
}

// NewEmuControl creates a running control.
func NewEmuControl() *EmuControl {
	ec := &EmuControl{}
	ec.cond = sync.NewCond(&ec.mu)
	return ec
}

// RequestPause asks the emulation goroutine to pause and blocks until
// it has.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.pauseReq = true
	for !ec.paused && !ec.stopped {
		ec.cond.Wait()
	}
}

// RequestResume lets a paused emulation goroutine continue.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// CheckPause is called by the emulation goroutine between frames. It
// blocks while a pause is requested and returns false once the
// goroutine should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	for ec.pauseReq && !ec.stopped {
		if !ec.paused {
			ec.paused = true
			ec.cond.Broadcast()
		}
		ec.cond.Wait()
	}
	ec.paused = false
	return !ec.stopped
}

// Stop signals the emulation goroutine to exit.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopped = true
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// ShouldRun reports whether the goroutine should continue running.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return !ec.stopped
}

// IsPaused reports whether the emulation goroutine is parked.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.paused
}
