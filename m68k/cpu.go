// Package m68k implements a Motorola 68000 CPU core.
//
// Instructions are decoded through a table built once at package
// initialisation that maps every 16-bit opcode word to an operation,
// an operand size and its validity. Each call to Step executes exactly
// one instruction (or one exception sequence) and reports the cycles it
// consumed according to the 68000 timing tables.
//
// Address errors are detected by the CPU before the bus cycle is issued.
// The faulting instruction is aborted at that point: any address register
// adjustment already made by (An)+ or -(An) stays applied exactly once and
// the group 0 exception frame is built.
package m68k

import (
	"fmt"
	"log"
)

// Bus provides memory access for the CPU. Addresses are already masked
// to 24 bits, and word and long accesses are always even.
type Bus interface {
	Read(s Size, addr uint32) uint32
	Write(s Size, addr uint32, val uint32)
}

// CycleBus is optionally implemented by a Bus that wants the CPU cycle
// count at the time of each access.
type CycleBus interface {
	Bus
	ReadCycle(cycle uint64, s Size, addr uint32) uint32
	WriteCycle(cycle uint64, s Size, addr uint32, val uint32)
}

// Fetcher is optionally implemented by a Bus that distinguishes
// instruction fetches from data reads (for example to track the last
// word seen on the data bus).
type Fetcher interface {
	FetchCycle(cycle uint64, addr uint32) uint16
}

// Acknowledger is optionally implemented by a Bus that must observe the
// interrupt acknowledge cycle.
type Acknowledger interface {
	AcknowledgeInterrupt(level uint8)
}

// DeviceResetter is optionally implemented by a Bus that reacts to the
// RESET instruction.
type DeviceResetter interface {
	ResetDevices()
}

// AddressDecoder is optionally implemented by a Bus that can report
// whether an address is backed by a device. It is consulted when
// loading exception vectors.
type AddressDecoder interface {
	Mapped(addr uint32) bool
}

// ReadModifyWriter is optionally implemented by a Bus that cannot complete
// the indivisible read-modify-write cycle used by TAS. When it reports
// false the write half is dropped and only the flags are updated.
type ReadModifyWriter interface {
	CompletesReadModifyWrite() bool
}

// Registers holds the programmer-visible state of the 68000.
type Registers struct {
	D   [8]uint32
	A   [8]uint32 // A7 is the active stack pointer
	PC  uint32
	SR  uint16
	USP uint32
	SSP uint32
	IR  uint16
}

// Status register bits.
const (
	flagC uint16 = 1 << 0
	flagV uint16 = 1 << 1
	flagZ uint16 = 1 << 2
	flagN uint16 = 1 << 3
	flagX uint16 = 1 << 4
	flagS uint16 = 1 << 13
	flagT uint16 = 1 << 15

	srMask   uint16 = 0xA71F
	maskBits uint16 = 0x0700
)

// CPU is a 68000 processor bound to a bus.
type CPU struct {
	reg Registers
	bus Bus

	cycleBus CycleBus
	fetcher  Fetcher
	acker    Acknowledger
	resetter DeviceResetter
	decoder  AddressDecoder
	rmw      ReadModifyWriter

	cycles uint64
	ir     uint16
	opPC   uint32 // address of the executing instruction

	stopped bool
	halted  bool

	ipl     uint8 // level presented on the interrupt pins
	nmiEdge bool  // level 7 transition not yet serviced

	// Set by exceptions that must not be followed by a trace exception.
	noTrace bool

	onException func(vector int, cycle uint64)
}

// New creates a CPU on the given bus and performs a hardware reset.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.attach()
	c.Reset()
	return c
}

func (c *CPU) attach() {
	c.cycleBus, _ = c.bus.(CycleBus)
	c.fetcher, _ = c.bus.(Fetcher)
	c.acker, _ = c.bus.(Acknowledger)
	c.resetter, _ = c.bus.(DeviceResetter)
	c.decoder, _ = c.bus.(AddressDecoder)
	c.rmw, _ = c.bus.(ReadModifyWriter)
}

// Reset performs a hardware reset: SR=0x2700, SSP from vector 0 and PC
// from vector 1.
func (c *CPU) Reset() {
	c.reg = Registers{SR: 0x2700}
	c.stopped = false
	c.halted = false
	c.nmiEdge = false
	c.cycles = 0

	ssp := c.busRead(Long, 0)
	c.reg.A[7] = ssp
	c.reg.SSP = ssp
	c.reg.PC = c.busRead(Long, 4)
}

// SetState loads all programmer-visible registers without a reset.
// A7 is taken from SSP or USP according to SR.S.
func (c *CPU) SetState(regs Registers) {
	c.reg = regs
	c.reg.SR &= srMask
	if c.reg.SR&flagS != 0 {
		c.reg.A[7] = regs.SSP
	} else {
		c.reg.A[7] = regs.USP
	}
	c.stopped = false
	c.halted = false
	c.nmiEdge = false
	c.cycles = 0
}

// Registers returns a snapshot of the register file with USP/SSP
// reflecting the live A7.
func (c *CPU) Registers() Registers {
	r := c.reg
	if r.SR&flagS != 0 {
		r.SSP = r.A[7]
	} else {
		r.USP = r.A[7]
	}
	return r
}

// Cycles returns the total cycles consumed since reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// AddCycles charges n cycles without executing, e.g. while DMA holds the bus.
func (c *CPU) AddCycles(n uint64) {
	c.cycles += n
}

// Halted reports whether the CPU stopped on a double fault.
func (c *CPU) Halted() bool {
	return c.halted
}

// Stopped reports whether the CPU is waiting in STOP.
func (c *CPU) Stopped() bool {
	return c.stopped
}

// InterruptMask returns the SR interrupt priority mask (0-7).
func (c *CPU) InterruptMask() uint8 {
	return uint8((c.reg.SR & maskBits) >> 8)
}

// SetInterruptLevel drives the interrupt priority input. The level is
// sampled between instructions; it remains asserted until the source
// removes it.
func (c *CPU) SetInterruptLevel(level uint8) {
	level &= 7
	if level == 7 && c.ipl != 7 {
		c.nmiEdge = true
	}
	c.ipl = level
}

// SetExceptionHook registers a callback invoked for every exception
// taken, with the vector number and the cycle count.
func (c *CPU) SetExceptionHook(fn func(vector int, cycle uint64)) {
	c.onException = fn
}

// Step executes one instruction, or services a pending interrupt, and
// returns the cycles consumed. A halted CPU returns 0.
func (c *CPU) Step() (n int) {
	if c.halted {
		return 0
	}
	before := c.cycles

	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*addressFault)
			if !ok {
				panic(r)
			}
			c.addressError(f)
			n = int(c.cycles - before)
		}
	}()

	if c.checkInterrupt() {
		return int(c.cycles - before)
	}
	if c.stopped {
		c.cycles += 4
		return int(c.cycles - before)
	}

	tracing := c.reg.SR&flagT != 0
	c.noTrace = false

	c.opPC = c.reg.PC
	if c.opPC&1 != 0 {
		panic(&addressFault{addr: c.opPC, read: true, program: true})
	}
	c.ir = c.fetchWord()
	c.reg.IR = c.ir

	inst := decodeTable[c.ir]
	handlers[inst.op](c)

	if tracing && !c.noTrace && !c.halted {
		c.exception(vecTrace, c.reg.PC)
		c.cycles += 34
	}
	return int(c.cycles - before)
}

// String renders the register file for diagnostics.
func (c *CPU) String() string {
	r := c.Registers()
	return fmt.Sprintf("PC=%06X SR=%04X D=%08X A=%08X USP=%08X SSP=%08X",
		r.PC, r.SR, r.D, r.A, r.USP, r.SSP)
}

func (c *CPU) halt(format string, args ...any) {
	log.Printf("[m68k] halted: "+format, args...)
	c.halted = true
	c.stopped = false
}

// --- bus access ---

// addressFault aborts the executing instruction. It is raised with panic
// and recovered by Step.
type addressFault struct {
	addr    uint32
	read    bool
	program bool
}

func (f *addressFault) Error() string {
	kind := "write"
	if f.read {
		kind = "read"
	}
	return fmt.Sprintf("address error: %s at %06X", kind, f.addr)
}

func (c *CPU) busRead(s Size, addr uint32) uint32 {
	if c.cycleBus != nil {
		return c.cycleBus.ReadCycle(c.cycles, s, addr) & s.Mask()
	}
	return c.bus.Read(s, addr) & s.Mask()
}

func (c *CPU) busWrite(s Size, addr uint32, val uint32) {
	if c.cycleBus != nil {
		c.cycleBus.WriteCycle(c.cycles, s, addr, val&s.Mask())
		return
	}
	c.bus.Write(s, addr, val&s.Mask())
}

func (c *CPU) read(s Size, addr uint32) uint32 {
	addr &= 0xFFFFFF
	if s != Byte && addr&1 != 0 {
		panic(&addressFault{addr: addr, read: true})
	}
	return c.busRead(s, addr)
}

func (c *CPU) write(s Size, addr uint32, val uint32) {
	addr &= 0xFFFFFF
	if s != Byte && addr&1 != 0 {
		panic(&addressFault{addr: addr})
	}
	c.busWrite(s, addr, val)
}

// fetchWord reads the word at PC and advances PC.
func (c *CPU) fetchWord() uint16 {
	addr := c.reg.PC & 0xFFFFFF
	if addr&1 != 0 {
		panic(&addressFault{addr: addr, read: true, program: true})
	}
	c.reg.PC += 2
	if c.fetcher != nil {
		return c.fetcher.FetchCycle(c.cycles, addr)
	}
	return uint16(c.busRead(Word, addr))
}

func (c *CPU) fetchLong() uint32 {
	hi := c.fetchWord()
	lo := c.fetchWord()
	return uint32(hi)<<16 | uint32(lo)
}

func (c *CPU) push(s Size, val uint32) {
	c.reg.A[7] -= uint32(s)
	c.write(s, c.reg.A[7], val)
}

func (c *CPU) pop(s Size) uint32 {
	v := c.read(s, c.reg.A[7])
	c.reg.A[7] += uint32(s)
	return v
}

// --- status register ---

func (c *CPU) supervisor() bool {
	return c.reg.SR&flagS != 0
}

// setSR writes the status register. It is the only place A7 is swapped
// between USP and SSP.
func (c *CPU) setSR(sr uint16) {
	sr &= srMask
	wasS := c.reg.SR&flagS != 0
	isS := sr&flagS != 0
	switch {
	case wasS && !isS:
		c.reg.SSP = c.reg.A[7]
		c.reg.A[7] = c.reg.USP
	case !wasS && isS:
		c.reg.USP = c.reg.A[7]
		c.reg.A[7] = c.reg.SSP
	}
	c.reg.SR = sr
}

func (c *CPU) setCCR(ccr uint8) {
	c.reg.SR = c.reg.SR&0xFF00 | uint16(ccr)&0x1F
}
