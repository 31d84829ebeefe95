package emu

import (
	"log"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/go-chip-z80"
	"github.com/user-none/mdcore/m68k"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.BatterySaver = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

// Flat address boundaries for ReadMemory.
const (
	mainRAMStart = 0x000000
	mainRAMEnd   = 0x00FFFF
	z80RAMStart  = 0x010000
	z80RAMEnd    = 0x011FFF
)

// SampleRate is the host audio rate GetAudioSamples is sized for.
const SampleRate = 48000

// Emulator owns the console and schedules it one scanline at a time.
type Emulator struct {
	cpu    *m68k.CPU
	z80    *z80.CPU
	z80Mem *Z80Memory
	bus    *GenesisBus
	vdp    *VDP
	io     *IO
	cart   *Cartridge

	region Region
	timing RegionTiming

	// Master clocks not yet converted into whole CPU cycles, and cycles
	// a CPU ran past the end of the previous line.
	m68kClock int
	z80Clock  int
	m68kDebt  int
	z80Debt   int

	// Z80 V-blank interrupt, held until the Z80 takes it (IFF1 drops).
	z80IntPending bool

	sink    FrameSink
	present []byte // H32 frames stretched for GetFramebuffer
	silence []int16
	frames  uint64

	fault       error
	faultLogged bool
}

// NewEmulator validates rom and powers on a console running at region's
// timing.
func NewEmulator(rom []byte, region Region) (*Emulator, error) {
	cart, err := LoadCartridge(rom)
	if err != nil {
		return nil, err
	}
	timing := GetTimingForRegion(region)
	pal := region == RegionPAL

	vdp := NewVDP(pal)
	io := NewIO(cart.Header.Console, pal)
	bus := NewGenesisBus(cart, vdp, io)
	vdp.SetBus(bus)
	z80Mem := NewZ80Memory(bus)

	return &Emulator{
		cpu:     m68k.New(bus),
		z80:     z80.New(z80Mem),
		z80Mem:  z80Mem,
		bus:     bus,
		vdp:     vdp,
		io:      io,
		cart:    cart,
		region:  region,
		timing:  timing,
		present: make([]byte, ScreenWidth*MaxScreenHeight*4),
	}, nil
}

// Reset performs a console reset: the 68K reloads its vectors, the VDP
// and I/O return to power-on state and the Z80 is held.
func (e *Emulator) Reset() {
	e.bus.Reset()
	e.vdp.Reset()
	e.io.Reset()
	e.cpu.Reset()
	e.z80.Reset()
	e.m68kClock, e.z80Clock, e.m68kDebt, e.z80Debt = 0, 0, 0, 0
	e.z80IntPending = false
	e.z80.INT(false, 0xFF)
	e.fault, e.faultLogged = nil, false
}

// SetFrameSink registers the receiver of completed frames.
func (e *Emulator) SetFrameSink(s FrameSink) {
	e.sink = s
}

// Frame returns the most recent frame. It aliases emulator memory.
func (e *Emulator) Frame() Frame {
	return e.vdp.Frame()
}

// Cartridge returns the loaded cartridge.
func (e *Emulator) Cartridge() *Cartridge {
	return e.cart
}

// FrameCount returns the number of frames completed.
func (e *Emulator) FrameCount() uint64 {
	return e.frames
}

// StepFrame runs one frame. An internal defect stops the core; it is
// returned now and on every later call.
func (e *Emulator) StepFrame() (err error) {
	if e.fault != nil {
		return e.fault
	}
	defer func() {
		if r := recover(); r != nil {
			d, ok := r.(*DefectError)
			if !ok {
				panic(r)
			}
			e.fault = d
			err = d
		}
	}()

	for line := 0; line < e.timing.Scanlines; line++ {
		e.runLine(line)
	}
	f := e.vdp.EndFrame()
	e.frames++
	if e.sink != nil {
		e.sink.PresentFrame(f)
	}
	return nil
}

// RunFrame implements emucore.Emulator. Defects are logged once.
func (e *Emulator) RunFrame() {
	if err := e.StepFrame(); err != nil && !e.faultLogged {
		log.Printf("emu: core stopped at frame %d: %v", e.frames, err)
		e.faultLogged = true
	}
}

// lineBudget converts one line of master clocks into CPU cycles,
// carrying the fractional remainder.
func lineBudget(clock *int, divider int) int {
	*clock += masterClocksPerLine
	n := *clock / divider
	*clock %= divider
	return n
}

func (e *Emulator) runLine(line int) {
	budget := lineBudget(&e.m68kClock, m68kDivider)
	e.vdp.BeginScanline(line, e.cpu.Cycles(), budget)

	ran := e.runM68K(budget)
	e.vdp.UpdateHCounter(ran, budget)
	e.vdp.SetHBlank(true)

	e.runZ80(lineBudget(&e.z80Clock, z80Divider))

	e.vdp.EndScanline(line)
	e.cpu.SetInterruptLevel(e.vdp.InterruptLevel())

	// The Z80 interrupt follows the VDP's vertical blank output and is
	// independent of the V-int enable bit.
	if line == e.vdp.ActiveHeight()-1 {
		e.z80IntPending = true
		e.z80.INT(true, 0xFF)
	}
}

// runM68K runs the 68K until it has paid off its debt and consumed
// budget cycles. Instructions are never split; the overrun becomes the
// next line's debt. It returns the cycles run on this line.
func (e *Emulator) runM68K(budget int) int {
	target := budget - e.m68kDebt
	start := e.cpu.Cycles()
	for ran := 0; ran < target; ran = int(e.cpu.Cycles() - start) {
		if e.cpu.Halted() {
			e.cpu.AddCycles(uint64(target - ran))
			break
		}
		e.cpu.Step()
		if stall := e.vdp.DMAStallCycles(); stall > 0 {
			e.cpu.AddCycles(uint64(stall))
		}
		e.cpu.SetInterruptLevel(e.vdp.InterruptLevel())
	}
	ran := int(e.cpu.Cycles() - start)
	e.m68kDebt = ran - target
	return ran
}

// runZ80 runs the Z80 for its share of the line when it is out of reset
// and the 68K does not hold its bus.
func (e *Emulator) runZ80(budget int) {
	if e.bus.z80PendingReset {
		e.z80.Reset()
		e.bus.z80PendingReset = false
	}
	if !e.bus.z80Reset || e.bus.z80BusRequested {
		e.z80Debt = 0
		return
	}

	target := budget - e.z80Debt
	ran := 0
	for ran < target {
		prevIFF1 := e.z80IntPending && e.z80.Registers().IFF1
		n := e.z80.StepCycles(target - ran)
		if n == 0 {
			break
		}
		ran += n
		if prevIFF1 && !e.z80.Registers().IFF1 {
			e.z80IntPending = false
			e.z80.INT(false, 0xFF)
		}
	}
	e.z80Debt = max(ran-target, 0)
}

// SetPad sets the button state of player 0 or 1.
func (e *Emulator) SetPad(player int, p Pad) {
	if player >= 0 && player < len(e.io.Ports) {
		e.io.Ports[player].Pad = p
	}
}

// SetInput implements emucore.Emulator with a host button bitmask.
func (e *Emulator) SetInput(player int, buttons uint32) {
	e.SetPad(player, PadFromMask(buttons))
}

// SetP2Connected plugs or unplugs the player 2 pad. An empty port
// reads with all pins high.
func (e *Emulator) SetP2Connected(connected bool) {
	e.io.Ports[1].Connected = connected
}

// SetSixButton selects 6-button or 3-button pads on both ports.
func (e *Emulator) SetSixButton(enabled bool) {
	e.io.Ports[0].SixButton = enabled
	e.io.Ports[1].SixButton = enabled
}

// GetFramebuffer returns the current frame as RGBA at ScreenWidth,
// with H32 lines stretched to fill it.
func (e *Emulator) GetFramebuffer() []byte {
	f := e.vdp.Frame()
	f.StretchTo(e.present, ScreenWidth*4)
	return e.present[:f.Height*ScreenWidth*4]
}

// GetFramebufferStride returns the bytes per row of GetFramebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return ScreenWidth * 4
}

// GetActiveHeight returns the number of rows in the frame, doubled in
// interlace double resolution.
func (e *Emulator) GetActiveHeight() int {
	return e.vdp.RenderHeight()
}

// GetRegion returns the display timing region.
func (e *Emulator) GetRegion() Region {
	return e.region
}

// GetTiming returns FPS and scanline count for the current region.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// SetRegion switches display timing. The change applies from the next
// frame.
func (e *Emulator) SetRegion(region Region) {
	e.region = region
	e.timing = GetTimingForRegion(region)
	e.vdp.isPAL = region == RegionPAL
	e.io.PAL = region == RegionPAL
}

// HasSRAM reports whether the cartridge declares backup RAM.
func (e *Emulator) HasSRAM() bool {
	return e.bus.HasSRAM()
}

// GetSRAM returns a copy of backup RAM.
func (e *Emulator) GetSRAM() []byte {
	return e.bus.GetSRAM()
}

// SetSRAM loads backup RAM from a save file.
func (e *Emulator) SetSRAM(data []byte) {
	e.bus.SetSRAM(data)
}

// GetSRAMSize returns the backup RAM size in bytes, or 0.
func (e *Emulator) GetSRAMSize() int {
	return len(e.bus.sram)
}

// GetAudioSamples returns one frame of silent stereo samples at
// SampleRate. The sound chips latch their registers but do not
// synthesize output.
func (e *Emulator) GetAudioSamples() []int16 {
	n := SampleRate / e.timing.FPS * 2
	if cap(e.silence) < n {
		e.silence = make([]int16, n)
	}
	return e.silence[:n]
}

// Close releases resources held by the emulator.
func (e *Emulator) Close() {}

// SetOption applies a core option.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "six_button":
		e.SetSixButton(value == "true")
	}
}

// ReadMemory copies from the flat inspection space into buf: work RAM at
// 0x000000 and Z80 RAM at 0x010000. It stops at the first unmapped byte.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var n uint32
	for i := range buf {
		cur := addr + uint32(i)
		switch {
		case cur <= mainRAMEnd:
			buf[i] = e.bus.ram[cur-mainRAMStart]
		case cur >= z80RAMStart && cur <= z80RAMEnd:
			buf[i] = e.bus.z80RAM[cur-z80RAMStart]
		default:
			return n
		}
		n++
	}
	return n
}

// MemoryMap lists the inspectable regions.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	regions := []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: mainRAMSize},
	}
	if n := e.GetSRAMSize(); n > 0 {
		regions = append(regions, emucore.MemoryRegion{Type: emucore.MemorySaveRAM, Size: n})
	}
	return regions
}

// ReadRegion returns a copy of a memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		return append([]byte(nil), e.bus.ram[:]...)
	case emucore.MemorySaveRAM:
		return e.GetSRAM()
	}
	return nil
}

// WriteRegion overwrites a memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		copy(e.bus.ram[:], data)
	case emucore.MemorySaveRAM:
		e.SetSRAM(data)
	}
}
