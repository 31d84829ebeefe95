package emu

import "github.com/user-none/mdcore/m68k"

const (
	mainRAMSize = 0x10000 // 64KB work RAM
	z80RAMSize  = 0x2000  // 8KB Z80 RAM
)

// GenesisBus is the 68K side of the memory interconnect. Every access is
// routed through the page table built from memoryMap; long accesses are
// performed as two word accesses, high word first, so devices only ever
// see bytes and words.
type GenesisBus struct {
	pages [pageCount]device

	rom    []byte
	ram    [mainRAMSize]byte
	z80RAM [z80RAMSize]byte
	vdp    *VDP
	io     *IO
	fm     *fmPorts
	psg    *psgPort

	sram         []byte
	sramStart    uint32
	sramEnd      uint32
	sramEnabled  bool // mapped over ROM
	sramWritable bool

	tmss [4]byte

	z80BusRequested bool
	z80Reset        bool // true while the Z80 is allowed to run
	z80PendingReset bool // reset released since the last Z80 slice

	// Last word driven onto the data bus by an instruction fetch.
	openBus uint16
}

// NewGenesisBus maps a cartridge and the console devices.
func NewGenesisBus(cart *Cartridge, vdp *VDP, io *IO) *GenesisBus {
	b := &GenesisBus{
		pages: buildPageTable(memoryMap),
		rom:   cart.ROM,
		vdp:   vdp,
		io:    io,
		fm:    &fmPorts{},
		psg:   &psgPort{},
	}
	b.psg.reset()

	if h := cart.Header; h.HasSRAM {
		b.sram = make([]byte, h.SRAMEnd-h.SRAMStart+1)
		b.sramStart, b.sramEnd = h.SRAMStart, h.SRAMEnd
		// Small images leave the SRAM window free, and games expect it
		// mapped without touching the control register.
		if uint32(len(b.rom)) <= h.SRAMStart {
			b.sramEnabled, b.sramWritable = true, true
		}
	}
	return b
}

// Reset clears RAM. It implements the power-on side of the bus.
func (b *GenesisBus) Reset() {
	b.ram = [mainRAMSize]byte{}
	b.z80RAM = [z80RAMSize]byte{}
	b.z80BusRequested, b.z80Reset, b.z80PendingReset = false, false, false
	b.openBus = 0
}

// Read implements m68k.Bus.
func (b *GenesisBus) Read(s m68k.Size, addr uint32) uint32 {
	return b.ReadCycle(0, s, addr)
}

// Write implements m68k.Bus.
func (b *GenesisBus) Write(s m68k.Size, addr uint32, val uint32) {
	b.WriteCycle(0, s, addr, val)
}

// ReadCycle implements m68k.CycleBus.
func (b *GenesisBus) ReadCycle(cycle uint64, s m68k.Size, addr uint32) uint32 {
	addr &= addrMask
	switch s {
	case m68k.Byte:
		return uint32(b.read8(cycle, addr))
	case m68k.Word:
		b.checkAligned(s, addr)
		return uint32(b.read16(cycle, addr))
	case m68k.Long:
		b.checkAligned(s, addr)
		hi := uint32(b.read16(cycle, addr))
		return hi<<16 | uint32(b.read16(cycle, (addr+2)&addrMask))
	}
	defect("bus", "read of size %d at %06X", s, addr)
	return 0
}

// WriteCycle implements m68k.CycleBus.
func (b *GenesisBus) WriteCycle(cycle uint64, s m68k.Size, addr uint32, val uint32) {
	addr &= addrMask
	switch s {
	case m68k.Byte:
		b.write8(cycle, addr, uint8(val))
	case m68k.Word:
		b.checkAligned(s, addr)
		b.write16(cycle, addr, uint16(val))
	case m68k.Long:
		b.checkAligned(s, addr)
		b.write16(cycle, addr, uint16(val>>16))
		b.write16(cycle, (addr+2)&addrMask, uint16(val))
	default:
		defect("bus", "write of size %d at %06X", s, addr)
	}
}

// FetchCycle implements m68k.Fetcher. The fetched word becomes the open
// bus value.
func (b *GenesisBus) FetchCycle(cycle uint64, addr uint32) uint16 {
	addr &= addrMask
	b.checkAligned(m68k.Word, addr)
	w := b.read16(cycle, addr)
	b.openBus = w
	return w
}

// checkAligned enforces that the CPU raised its address error before an
// odd word access could reach a device.
func (b *GenesisBus) checkAligned(s m68k.Size, addr uint32) {
	if addr&1 != 0 {
		defect("bus", "odd %s access at %06X reached the bus", s, addr)
	}
}

// AcknowledgeInterrupt implements m68k.Acknowledger.
func (b *GenesisBus) AcknowledgeInterrupt(level uint8) {
	b.vdp.AcknowledgeInterrupt(level)
}

// ResetDevices implements m68k.DeviceResetter for the RESET instruction,
// which pulses the reset line of the I/O chip and the FM chip.
func (b *GenesisBus) ResetDevices() {
	b.io.Reset()
	b.fm.reset()
}

// CompletesReadModifyWrite implements m68k.ReadModifyWriter. The bus
// arbiter does not support the locked cycle, so TAS never writes back.
func (b *GenesisBus) CompletesReadModifyWrite() bool {
	return false
}

// Mapped implements m68k.AddressDecoder.
func (b *GenesisBus) Mapped(addr uint32) bool {
	addr &= addrMask
	switch b.pages[addr>>pageShift] {
	case devOpenBus:
		return false
	case devSystem:
		return systemRegister(addr) != 0
	case devCartridge:
		return addr < uint32(len(b.rom)) || b.inSRAM(addr)
	}
	return true
}

// ReadWord reads a word for VDP DMA.
func (b *GenesisBus) ReadWord(addr uint32) uint16 {
	return b.read16(0, addr&addrMask&^1)
}

// openBusByte is the half of the open bus word an odd or even byte sees.
func (b *GenesisBus) openBusByte(addr uint32) uint8 {
	if addr&1 == 0 {
		return uint8(b.openBus >> 8)
	}
	return uint8(b.openBus)
}

// --- byte and word dispatch ---

func (b *GenesisBus) read8(cycle uint64, addr uint32) uint8 {
	switch b.pages[addr>>pageShift] {
	case devCartridge:
		return b.cartByte(addr)
	case devZ80:
		return b.z80Byte(addr)
	case devSystem:
		return b.systemByte(cycle, addr)
	case devRAM:
		return b.ram[addr&0xFFFF]
	case devVDP:
		w := b.vdpRead(cycle, addr&^1)
		if addr&1 == 0 {
			return uint8(w >> 8)
		}
		return uint8(w)
	}
	return b.openBusByte(addr)
}

func (b *GenesisBus) read16(cycle uint64, addr uint32) uint16 {
	switch b.pages[addr>>pageShift] {
	case devCartridge:
		return uint16(b.cartByte(addr))<<8 | uint16(b.cartByte(addr+1))
	case devZ80:
		// The Z80 bus is 8 bits wide: the even byte appears on both halves.
		v := b.z80Byte(addr)
		return uint16(v)<<8 | uint16(v)
	case devSystem:
		return b.systemWord(cycle, addr)
	case devRAM:
		i := addr & 0xFFFF
		return uint16(b.ram[i])<<8 | uint16(b.ram[i+1])
	case devVDP:
		return b.vdpRead(cycle, addr)
	}
	return b.openBus
}

func (b *GenesisBus) write8(cycle uint64, addr uint32, val uint8) {
	switch b.pages[addr>>pageShift] {
	case devCartridge:
		b.writeSRAM(addr, val)
	case devZ80:
		b.writeZ80(addr, val)
	case devSystem:
		b.writeSystem(cycle, addr, val)
	case devRAM:
		b.ram[addr&0xFFFF] = val
	case devVDP:
		port := addr & 0x1F
		if port >= 0x10 && port < 0x18 {
			if addr&1 != 0 {
				b.psg.write(val)
			}
			return
		}
		// Byte writes reach the VDP with the byte on both halves.
		b.vdpWrite(cycle, addr&^1, uint16(val)<<8|uint16(val))
	}
}

func (b *GenesisBus) write16(cycle uint64, addr uint32, val uint16) {
	switch b.pages[addr>>pageShift] {
	case devCartridge:
		b.writeSRAM(addr, uint8(val>>8))
		b.writeSRAM(addr+1, uint8(val))
	case devZ80:
		b.writeZ80(addr, uint8(val>>8))
	case devSystem:
		b.writeSystem(cycle, addr, uint8(val>>8))
		b.writeSystem(cycle, addr+1, uint8(val))
	case devRAM:
		i := addr & 0xFFFF
		b.ram[i], b.ram[i+1] = uint8(val>>8), uint8(val)
	case devVDP:
		if port := addr & 0x1F; port >= 0x10 && port < 0x18 {
			b.psg.write(uint8(val))
			return
		}
		b.vdpWrite(cycle, addr, val)
	}
}

// --- cartridge ---

func (b *GenesisBus) inSRAM(addr uint32) bool {
	return b.sram != nil && addr >= b.sramStart && addr <= b.sramEnd
}

func (b *GenesisBus) cartByte(addr uint32) uint8 {
	if b.sramEnabled && b.inSRAM(addr) {
		return b.sram[addr-b.sramStart]
	}
	if addr < uint32(len(b.rom)) {
		return b.rom[addr]
	}
	return b.openBusByte(addr)
}

func (b *GenesisBus) writeSRAM(addr uint32, val uint8) {
	if b.sramEnabled && b.sramWritable && b.inSRAM(addr) {
		b.sram[addr-b.sramStart] = val
	}
}

// HasSRAM reports whether the cartridge declares backup RAM.
func (b *GenesisBus) HasSRAM() bool {
	return b.sram != nil
}

// GetSRAM returns a copy of backup RAM.
func (b *GenesisBus) GetSRAM() []byte {
	if b.sram == nil {
		return nil
	}
	return append([]byte(nil), b.sram...)
}

// SetSRAM loads backup RAM contents.
func (b *GenesisBus) SetSRAM(data []byte) {
	copy(b.sram, data)
}

// --- Z80 window ---

// z80Byte reads the Z80 side as the 68K sees it: RAM mirrored through
// 0x3FFF and the FM ports at 0x4000-0x5FFF.
func (b *GenesisBus) z80Byte(addr uint32) uint8 {
	off := addr & 0xFFFF
	switch {
	case off < 0x4000:
		return b.z80RAM[off&(z80RAMSize-1)]
	case off < 0x6000:
		return b.fm.read(uint8(off & 3))
	}
	return b.openBusByte(addr)
}

func (b *GenesisBus) writeZ80(addr uint32, val uint8) {
	off := addr & 0xFFFF
	switch {
	case off < 0x4000:
		b.z80RAM[off&(z80RAMSize-1)] = val
	case off < 0x6000:
		b.fm.write(uint8(off&3), val)
	}
}

// --- system page ---

func (b *GenesisBus) systemByte(cycle uint64, addr uint32) uint8 {
	switch systemRegister(addr) {
	case sysIO:
		return b.io.ReadRegister(cycle, addr)
	case sysBusRequest:
		// Bit 0 of the even byte reads 0 once the 68K owns the Z80 bus.
		v := b.openBusByte(addr) &^ 1
		if addr&1 == 0 && !b.z80BusRequested {
			v |= 1
		}
		return v
	case sysSRAMControl:
		if addr != 0xA130F1 {
			return b.openBusByte(addr)
		}
		var v uint8
		if b.sramEnabled {
			v |= 1
		}
		if !b.sramWritable {
			v |= 2
		}
		return v
	}
	return b.openBusByte(addr)
}

func (b *GenesisBus) systemWord(cycle uint64, addr uint32) uint16 {
	if systemRegister(addr) == sysIO {
		// I/O registers sit on odd addresses and mirror onto the even byte.
		v := b.io.ReadRegister(cycle, addr|1)
		return uint16(v)<<8 | uint16(v)
	}
	return uint16(b.systemByte(cycle, addr))<<8 | uint16(b.systemByte(cycle, addr+1))
}

// writeSystem writes one byte of the system page. Registers ignore the
// half of a word they are not wired to.
func (b *GenesisBus) writeSystem(cycle uint64, addr uint32, val uint8) {
	switch systemRegister(addr) {
	case sysIO:
		b.io.WriteRegister(cycle, addr, val)
	case sysBusRequest:
		if addr&1 == 0 {
			b.z80BusRequested = val&1 != 0
		}
	case sysZ80Reset:
		if addr&1 == 0 {
			running := val&1 != 0
			if running && !b.z80Reset {
				b.z80PendingReset = true
			}
			b.z80Reset = running
		}
	case sysSRAMControl:
		if addr == 0xA130F1 {
			b.sramEnabled = val&1 != 0
			b.sramWritable = val&2 == 0 // bit 1 write-protects
		}
	case sysTMSS:
		b.tmss[addr&3] = val
	}
}

// --- VDP ports, mirrored every 0x20 bytes ---

func (b *GenesisBus) vdpRead(cycle uint64, addr uint32) uint16 {
	switch port := addr & 0x1F; {
	case port < 0x04:
		return b.vdp.ReadData()
	case port < 0x08:
		return b.vdp.ReadControl(cycle)
	case port < 0x10:
		return b.vdp.ReadHVCounterAtCycle(cycle)
	}
	return b.openBus
}

func (b *GenesisBus) vdpWrite(cycle uint64, addr uint32, val uint16) {
	switch port := addr & 0x1F; {
	case port < 0x04:
		b.vdp.WriteData(cycle, val)
	case port < 0x08:
		b.vdp.WriteControl(cycle, val)
	}
}
