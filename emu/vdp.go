package emu

import "image"

const (
	ScreenWidth         = 320
	DefaultScreenHeight = 224
	MaxScreenHeight     = 480
)

// BusReader provides word reads from the 68K bus for DMA transfers.
type BusReader interface {
	ReadWord(addr uint32) uint16
}

// Interrupt levels the VDP drives onto the 68K IPL pins.
const (
	levelHInt uint8 = 4
	levelVInt uint8 = 6
)

// cramChange records a CRAM write made during active display.
type cramChange struct {
	pixelX int
	addr   uint8 // even byte address, 0-126
	hi, lo uint8
}

// vsramChange records a VSRAM write made during active display.
type vsramChange struct {
	pixelX int
	addr   int // even byte address, 0-78
	hi, lo uint8
}

// VDP is the video display processor: 64KB VRAM, 64 colors of CRAM,
// 40 entries of VSRAM, 24 registers and the port protocol on top.
type VDP struct {
	vram  [0x10000]uint8
	cram  [128]uint8
	vsram [80]uint8

	regs [24]uint8

	// Port protocol
	phase      portPhase
	code       uint8  // CD5-CD0
	address    uint16 // 16-bit VRAM/CRAM/VSRAM address
	readBuffer uint16 // prefetched word for data port reads

	// Status flags
	vIntPending     bool
	hIntPending     bool
	spriteOverflow  bool
	spriteCollision bool
	vBlank          bool
	hBlank          bool
	dmaFillPending  bool
	dmaEndCycle     uint64 // cycle at which the running DMA completes
	dmaStallCycles  int    // 68K cycles owed to a 68K->VDP transfer

	// Counters
	vCounter    uint16
	hCounter    uint8
	currentLine int
	hIntCounter int
	oddField    bool

	isPAL bool
	bus   BusReader

	// Native-width frame, one row per output line.
	framebuffer *image.RGBA
	lineWidth   [MaxScreenHeight]uint16

	lineBufB   [ScreenWidth]layerPixel
	lineBufA   [ScreenWidth]layerPixel
	lineBufSpr [ScreenWidth]layerPixel

	// Mid-line palette and scroll writes, replayed at render time.
	cramSnapshot        [128]uint8
	cramChanges         []cramChange
	vsramSnapshot       [80]uint8
	vsramChanges        []vsramChange
	scanlineStartCycle  uint64
	scanlineTotalCycles int
}

// NewVDP creates a VDP in its power-on state.
func NewVDP(isPAL bool) *VDP {
	return &VDP{
		isPAL:       isPAL,
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, MaxScreenHeight)),
	}
}

// SetBus sets the bus used as the source of 68K DMA transfers.
func (v *VDP) SetBus(bus BusReader) {
	v.bus = bus
}

// DMAStallCycles returns and clears the 68K cycles owed to a 68K->VDP DMA.
func (v *VDP) DMAStallCycles() int {
	n := v.dmaStallCycles
	v.dmaStallCycles = 0
	return n
}

// InterruptLevel returns the level currently asserted: 6 for a pending
// and enabled V-int, 4 for a pending and enabled H-int, otherwise 0.
// Enabling an interrupt while it is pending asserts it at once.
func (v *VDP) InterruptLevel() uint8 {
	switch {
	case v.vIntPending && v.vIntEnabled():
		return levelVInt
	case v.hIntPending && v.hIntEnabled():
		return levelHInt
	}
	return 0
}

// AcknowledgeInterrupt clears the pending flag the 68K just took.
func (v *VDP) AcknowledgeInterrupt(level uint8) {
	switch level {
	case levelVInt:
		v.vIntPending = false
	case levelHInt:
		v.hIntPending = false
	}
}

// --- register helpers ---

func (v *VDP) displayEnabled() bool { return v.regs[1]&0x40 != 0 }
func (v *VDP) vIntEnabled() bool    { return v.regs[1]&0x20 != 0 }
func (v *VDP) dmaEnabled() bool     { return v.regs[1]&0x10 != 0 }
func (v *VDP) v30Mode() bool        { return v.regs[1]&0x08 != 0 }
func (v *VDP) hIntEnabled() bool    { return v.regs[0]&0x10 != 0 }
func (v *VDP) leftColumnBlank() bool {
	return v.regs[0]&0x20 != 0
}
func (v *VDP) h40Mode() bool             { return v.regs[12]&0x01 != 0 }
func (v *VDP) shadowHighlightMode() bool { return v.regs[12]&0x08 != 0 }
func (v *VDP) autoIncrement() uint16     { return uint16(v.regs[15]) }

func (v *VDP) backdropColor() (palette, index uint8) {
	return (v.regs[7] >> 4) & 0x03, v.regs[7] & 0x0F
}

// ActiveHeight returns 240 in V30 mode, else 224.
func (v *VDP) ActiveHeight() int {
	if v.v30Mode() {
		return 240
	}
	return 224
}

// ActiveWidth returns 320 in H40 mode, else 256.
func (v *VDP) ActiveWidth() int {
	return v.activeWidth()
}

func (v *VDP) activeWidth() int {
	if v.h40Mode() {
		return 320
	}
	return 256
}

// interlaceMode is reg 12 bits 2:1: 0 off, 1 normal, 3 double resolution.
func (v *VDP) interlaceMode() int {
	return int((v.regs[12] >> 1) & 0x03)
}

func (v *VDP) interlaceDoubleRes() bool {
	return v.interlaceMode() == 3
}

// tileSize is the tile size in bytes, doubled in double resolution.
func (v *VDP) tileSize() uint16 {
	if v.interlaceDoubleRes() {
		return 64
	}
	return 32
}

// tileRows is 8, or 16 in double resolution.
func (v *VDP) tileRows() int {
	if v.interlaceDoubleRes() {
		return 16
	}
	return 8
}

// tileRowShift is log2(tileRows).
func (v *VDP) tileRowShift() uint {
	if v.interlaceDoubleRes() {
		return 4
	}
	return 3
}

// RenderHeight is the number of framebuffer rows in use.
func (v *VDP) RenderHeight() int {
	if v.interlaceDoubleRes() {
		return v.ActiveHeight() * 2
	}
	return v.ActiveHeight()
}

// sourceRow maps a display line to the row sampled from planes and
// sprites. Double resolution interleaves the two fields.
func (v *VDP) sourceRow(line int) int {
	if v.interlaceDoubleRes() {
		return line*2 + boolToInt(v.oddField)
	}
	return line
}

func (v *VDP) writeRegister(reg, data uint8) {
	if int(reg) >= len(v.regs) {
		return
	}
	v.regs[reg] = data
}

// Register returns the value of VDP register n.
func (v *VDP) Register(n int) uint8 {
	if n < 0 || n >= len(v.regs) {
		return 0
	}
	return v.regs[n]
}

// --- scanline hooks ---

// BeginScanline prepares line for the CPU slice that starts at
// startCycle and lasts totalCycles 68K cycles.
func (v *VDP) BeginScanline(line int, startCycle uint64, totalCycles int) {
	v.currentLine = line
	v.vCounter = v.vCounterValue(line)
	v.hBlank = false
	if line == 0 {
		v.vBlank = false
	}

	v.cramSnapshot = v.cram
	v.cramChanges = v.cramChanges[:0]
	v.vsramSnapshot = v.vsram
	v.vsramChanges = v.vsramChanges[:0]
	v.scanlineStartCycle = startCycle
	v.scanlineTotalCycles = totalCycles
}

// SetHBlank sets the HBlank flag seen by the Z80 and by status reads
// without a cycle position.
func (v *VDP) SetHBlank(active bool) {
	v.hBlank = active
}

// EndScanline finishes line: visible lines are rendered, the H-int
// counter steps, and the first blanking line raises V-int.
func (v *VDP) EndScanline(line int) {
	active := v.ActiveHeight()
	if line < active {
		v.RenderScanline(line)
	}

	// The counter reloads from reg 10 on every blanking line and counts
	// down once per active line. Underflow raises H-int and reloads.
	if line < active {
		v.hIntCounter--
		if v.hIntCounter < 0 {
			v.hIntCounter = int(v.regs[10])
			v.hIntPending = true
		}
	} else {
		v.hIntCounter = int(v.regs[10])
	}

	if line == active-1 {
		v.vBlank = true
		v.vIntPending = true
		v.oddField = !v.oddField
	}
}

// EndFrame resets per-frame latches and returns the finished frame.
// The frame aliases the VDP framebuffer until the next line is drawn.
func (v *VDP) EndFrame() Frame {
	v.hIntPending = false
	v.hIntCounter = int(v.regs[10])
	return v.Frame()
}

// Frame describes the current framebuffer contents.
func (v *VDP) Frame() Frame {
	h := v.RenderHeight()
	return Frame{
		Pix:        v.framebuffer.Pix[:h*v.framebuffer.Stride],
		Stride:     v.framebuffer.Stride,
		Width:      v.activeWidth(),
		Height:     h,
		LineWidths: v.lineWidth[:h],
	}
}

// GetFramebuffer returns the raw native-width RGBA pixel data.
func (v *VDP) GetFramebuffer() []byte {
	return v.framebuffer.Pix
}

// GetStride returns the bytes per framebuffer row.
func (v *VDP) GetStride() int {
	return v.framebuffer.Stride
}

// Reset returns registers, port state and counters to power-on values.
// Memory contents survive, as on hardware.
func (v *VDP) Reset() {
	v.regs = [24]uint8{}
	v.phase = phaseFirstWord
	v.code, v.address, v.readBuffer = 0, 0, 0
	v.vIntPending, v.hIntPending = false, false
	v.spriteOverflow, v.spriteCollision = false, false
	v.vBlank, v.hBlank = false, false
	v.dmaFillPending = false
	v.dmaEndCycle, v.dmaStallCycles = 0, 0
	v.hIntCounter = 0
	v.oddField = false
}
