package emu

// sixButtonTimeoutCycles is how long (about 1.5ms of 68K time) the
// 6-button pad waits after the last TH edge before its counter returns
// to zero. The real pad uses an RC circuit, so the value is approximate
// and shared by NTSC and PAL.
const sixButtonTimeoutCycles uint64 = 11506

// padPhase selects which buttons a pad drives onto its data lines.
type padPhase uint8

const (
	phaseTHHigh padPhase = iota
	phaseTHLow
	phaseDetect
	phaseExtended
	phaseEnd
)

// sixButtonPhases maps the 6-button TH edge counter to its phase.
var sixButtonPhases = [8]padPhase{
	phaseTHHigh, phaseTHLow, phaseTHHigh, phaseTHLow,
	phaseTHHigh, phaseDetect, phaseExtended, phaseEnd,
}

// Port is one controller port: the I/O chip's data and control
// registers plus the attached pad.
type Port struct {
	Pad       Pad
	Connected bool
	SixButton bool

	data byte // output latch
	ctrl byte // 1 = pin is an output

	thCount    uint8  // 6-button edge counter (0-7)
	lastTHHigh bool   // previous TH level
	lastEdge   uint64 // 68K cycle of the last TH edge
}

func newPort(connected bool) Port {
	return Port{Connected: connected, SixButton: true, lastTHHigh: true}
}

// th returns the level on the TH pin. As an input it is pulled high.
func (p *Port) th(data byte) bool {
	if p.ctrl&0x40 == 0 {
		return true
	}
	return data&0x40 != 0
}

func (p *Port) expire(cycle uint64) {
	if cycle > 0 && p.lastEdge > 0 && cycle-p.lastEdge >= sixButtonTimeoutCycles {
		p.thCount = 0
		p.lastTHHigh = true
	}
}

// writeData latches the output pins and advances the 6-button counter
// on every TH transition.
func (p *Port) writeData(cycle uint64, val byte) {
	p.data = val
	if !p.SixButton || !p.Connected {
		return
	}
	th := p.th(val)
	if th == p.lastTHHigh {
		return
	}
	// After a timeout TH idles high, so a write of TH=1 is no edge.
	p.expire(cycle)
	if th != p.lastTHHigh {
		p.thCount = (p.thCount + 1) & 7
		p.lastTHHigh = th
		p.lastEdge = cycle
	}
}

// readData merges output pins from the latch with input pins from the pad.
func (p *Port) readData(cycle uint64) byte {
	if !p.Connected {
		return p.data&p.ctrl | ^p.ctrl
	}
	phase := phaseTHLow
	if p.SixButton {
		p.expire(cycle)
		phase = sixButtonPhases[p.thCount]
	} else if p.th(p.data) {
		phase = phaseTHHigh
	}
	lines := 0xC0 | p.Pad.lines(phase)
	return p.data&p.ctrl | lines&^p.ctrl
}

func (p *Port) reset() {
	p.data, p.ctrl = 0, 0
	p.thCount = 0
	p.lastTHHigh = true
	p.lastEdge = 0
}

// IO is the console's I/O chip: version register and two controller ports.
type IO struct {
	Ports   [2]Port
	Console ConsoleRegion
	PAL     bool
}

// NewIO creates the I/O chip with a pad in port 1 only.
func NewIO(console ConsoleRegion, pal bool) *IO {
	return &IO{
		Ports:   [2]Port{newPort(true), newPort(false)},
		Console: console,
		PAL:     pal,
	}
}

// version returns the 0xA10001 value: bit 7 overseas, bit 6 PAL,
// bit 5 set when no expansion unit is attached.
func (io *IO) version() byte {
	var v byte = 0x20
	if io.Console != ConsoleJapan {
		v |= 0x80
	}
	if io.PAL {
		v |= 0x40
	}
	return v
}

// ReadRegister reads a byte register. Registers live at odd addresses;
// even addresses read the same register as the following odd one.
func (io *IO) ReadRegister(cycle uint64, addr uint32) byte {
	switch addr | 1 {
	case 0xA10001:
		return io.version()
	case 0xA10003:
		return io.Ports[0].readData(cycle)
	case 0xA10005:
		return io.Ports[1].readData(cycle)
	case 0xA10009:
		return io.Ports[0].ctrl
	case 0xA1000B:
		return io.Ports[1].ctrl
	case 0xA10007, 0xA1000D:
		// Expansion port: no device, inputs float high.
		return 0x7F
	}
	return 0
}

// WriteRegister writes a byte register. cycle feeds the 6-button timeout.
func (io *IO) WriteRegister(cycle uint64, addr uint32, val byte) {
	switch addr {
	case 0xA10003:
		io.Ports[0].writeData(cycle, val)
	case 0xA10005:
		io.Ports[1].writeData(cycle, val)
	case 0xA10009:
		io.Ports[0].ctrl = val
	case 0xA1000B:
		io.Ports[1].ctrl = val
	}
}

// Reset returns both ports to power-on register state. Pad contents and
// connection settings are kept.
func (io *IO) Reset() {
	io.Ports[0].reset()
	io.Ports[1].reset()
}
