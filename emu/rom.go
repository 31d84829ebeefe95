package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"log"
	"strings"
)

const (
	vectorTableSize = 0x100
	headerEnd       = 0x200
	maxROMSize      = 0x400000 // 4MB of cartridge space
)

var (
	// ErrROMTooShort means the image cannot hold the 68000 vector table.
	ErrROMTooShort = errors.New("rom: image shorter than the vector table")
	// ErrOddResetVector means the initial program counter is not word aligned.
	ErrOddResetVector = errors.New("rom: reset vector is odd")
)

// Header is the parsed cartridge header at 0x100-0x1FF. Fields are
// trimmed of padding; images too short to hold a header leave it zero.
type Header struct {
	SystemType   string
	Copyright    string
	DomesticName string
	OverseasName string
	Serial       string
	Checksum     uint16
	ROMStart     uint32
	ROMEnd       uint32
	RAMStart     uint32
	RAMEnd       uint32
	HasSRAM      bool
	SRAMStart    uint32
	SRAMEnd      uint32
	RegionCodes  string
	Console      ConsoleRegion
	InitialSSP   uint32
	InitialPC    uint32
}

// Cartridge is a validated ROM image ready to be mapped.
type Cartridge struct {
	ROM    []byte
	Header Header
	CRC32  uint32
}

// LoadCartridge validates a ROM image and parses its header. Images
// larger than the cartridge space are truncated.
func LoadCartridge(rom []byte) (*Cartridge, error) {
	if len(rom) < vectorTableSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrROMTooShort, len(rom))
	}
	if len(rom) > maxROMSize {
		rom = rom[:maxROMSize]
	}

	h := Header{
		InitialSSP: binary.BigEndian.Uint32(rom[0:4]),
		InitialPC:  binary.BigEndian.Uint32(rom[4:8]),
		Console:    DetectConsoleRegion(rom),
	}
	if h.InitialPC&1 != 0 {
		return nil, fmt.Errorf("%w: PC=%06X", ErrOddResetVector, h.InitialPC)
	}
	if len(rom) >= headerEnd {
		parseHeader(rom, &h)
		if err := ValidateSystemType(rom); err != nil {
			log.Printf("rom: %v", err)
		}
		if err := ValidateChecksum(rom); err != nil {
			log.Printf("rom: %v", err)
		}
	}

	return &Cartridge{
		ROM:    rom,
		Header: h,
		CRC32:  crc32.ChecksumIEEE(rom),
	}, nil
}

func headerText(rom []byte, start, end int) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7E {
			return ' '
		}
		return r
	}, string(rom[start:end])))
}

func parseHeader(rom []byte, h *Header) {
	be := binary.BigEndian
	h.SystemType = headerText(rom, 0x100, 0x110)
	h.Copyright = headerText(rom, 0x110, 0x120)
	h.DomesticName = headerText(rom, 0x120, 0x150)
	h.OverseasName = headerText(rom, 0x150, 0x180)
	h.Serial = headerText(rom, 0x180, 0x18E)
	h.Checksum = be.Uint16(rom[0x18E:])
	h.ROMStart = be.Uint32(rom[0x1A0:])
	h.ROMEnd = be.Uint32(rom[0x1A4:])
	h.RAMStart = be.Uint32(rom[0x1A8:])
	h.RAMEnd = be.Uint32(rom[0x1AC:])
	h.RegionCodes = headerText(rom, 0x1F0, 0x200)

	// "RA" at 0x1B0 declares backup RAM in the SRAM window.
	if rom[0x1B0] == 'R' && rom[0x1B1] == 'A' {
		start := be.Uint32(rom[0x1B4:])
		end := be.Uint32(rom[0x1B8:])
		if start >= 0x200000 && end >= start && end <= 0x3FFFFF {
			h.HasSRAM = true
			h.SRAMStart = start
			h.SRAMEnd = end
		}
	}
}

// ValidateSystemType checks that the ROM contains a recognized system
// type string at offset 0x100-0x10F.
func ValidateSystemType(rom []byte) error {
	if len(rom) < 0x110 {
		return fmt.Errorf("ROM too short to contain system type header (%d bytes)", len(rom))
	}

	sysType := strings.TrimRight(string(rom[0x100:0x110]), " ")
	if strings.HasPrefix(sysType, "SEGA MEGA DRIVE") || strings.HasPrefix(sysType, "SEGA GENESIS") {
		return nil
	}
	return fmt.Errorf("unrecognized system type: %q", sysType)
}

// ValidateChecksum verifies the header checksum at 0x18E: the 16-bit sum
// of all big-endian words from 0x200 to the end of the image.
func ValidateChecksum(rom []byte) error {
	if len(rom) < headerEnd {
		return fmt.Errorf("ROM too short to validate checksum (%d bytes)", len(rom))
	}

	expected := binary.BigEndian.Uint16(rom[0x18E:0x190])
	if computed := romChecksum(rom); computed != expected {
		return fmt.Errorf("checksum mismatch: header=%04X computed=%04X", expected, computed)
	}
	return nil
}

func romChecksum(rom []byte) uint16 {
	var sum uint16
	data := rom[headerEnd:]
	for i := 0; i+1 < len(data); i += 2 {
		sum += binary.BigEndian.Uint16(data[i:])
	}
	// A trailing odd byte counts as a high byte.
	if len(data)%2 != 0 {
		sum += uint16(data[len(data)-1]) << 8
	}
	return sum
}
