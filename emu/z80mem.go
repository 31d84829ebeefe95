package emu

import "github.com/user-none/mdcore/m68k"

// Z80Memory is the Z80's view of the console, passed to go-chip-z80.
//
//	0x0000-0x1FFF  Z80 RAM
//	0x2000-0x3FFF  Z80 RAM mirror
//	0x4000-0x5FFF  YM2612 ports
//	0x6000         bank register (one bit per write)
//	0x7F00-0x7F1F  VDP ports and PSG
//	0x8000-0xFFFF  32KB window into 68K space
//
// Everything else reads 0xFF and ignores writes.
type Z80Memory struct {
	bus  *GenesisBus
	bank uint16 // 9-bit shift register: 68K address bits 23:15
}

// NewZ80Memory creates the Z80 memory view over bus.
func NewZ80Memory(bus *GenesisBus) *Z80Memory {
	return &Z80Memory{bus: bus}
}

// Fetch reads an opcode byte. There are no M1-specific effects.
func (m *Z80Memory) Fetch(addr uint16) uint8 {
	return m.Read(addr)
}

func (m *Z80Memory) bankAddress(addr uint16) uint32 {
	return uint32(m.bank)<<15 | uint32(addr&0x7FFF)
}

// Read reads a byte.
func (m *Z80Memory) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return m.bus.z80RAM[addr&(z80RAMSize-1)]
	case addr < 0x6000:
		return m.bus.fm.read(uint8(addr & 3))
	case addr >= 0x7F00 && addr < 0x7F10:
		// VDP data, control and HV ports. Even addresses read the high byte.
		var w uint16
		switch {
		case addr&0x1F < 0x04:
			w = m.bus.vdp.ReadData()
		case addr&0x1F < 0x08:
			w = m.bus.vdp.ReadControl(0)
		default:
			w = m.bus.vdp.ReadHVCounter()
		}
		if addr&1 == 0 {
			return uint8(w >> 8)
		}
		return uint8(w)
	case addr >= 0x8000:
		return uint8(m.bus.ReadCycle(0, m68k.Byte, m.bankAddress(addr)))
	}
	return 0xFF
}

// Write writes a byte.
func (m *Z80Memory) Write(addr uint16, val uint8) {
	switch {
	case addr < 0x4000:
		m.bus.z80RAM[addr&(z80RAMSize-1)] = val
	case addr < 0x6000:
		m.bus.fm.write(uint8(addr&3), val)
	case addr == 0x6000:
		m.bank = m.bank>>1 | uint16(val&1)<<8
	case addr >= 0x7F00 && addr < 0x7F20:
		// The byte is duplicated onto both halves of the VDP data bus.
		word := uint16(val)<<8 | uint16(val)
		switch port := addr & 0x1F; {
		case port < 0x04:
			m.bus.vdp.WriteData(0, word)
		case port < 0x08:
			m.bus.vdp.WriteControl(0, word)
		case port >= 0x10 && port < 0x18:
			m.bus.psg.write(val)
		}
	case addr >= 0x8000:
		m.bus.WriteCycle(0, m68k.Byte, m.bankAddress(addr), uint32(val))
	}
}

// In reads an I/O port. Nothing is wired to Z80 I/O space.
func (m *Z80Memory) In(port uint16) uint8 {
	return 0xFF
}

// Out writes an I/O port. Nothing is wired to Z80 I/O space.
func (m *Z80Memory) Out(port uint16, val uint8) {}
