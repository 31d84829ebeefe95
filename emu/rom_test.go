package emu

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestLoadCartridge_TooShort(t *testing.T) {
	_, err := LoadCartridge(make([]byte, 0xFF))
	if !errors.Is(err, ErrROMTooShort) {
		t.Errorf("expected ErrROMTooShort, got %v", err)
	}
}

func TestLoadCartridge_OddResetVector(t *testing.T) {
	rom := makeTestROM(nil)
	binary.BigEndian.PutUint32(rom[4:], 0x00000201)
	_, err := LoadCartridge(rom)
	if !errors.Is(err, ErrOddResetVector) {
		t.Errorf("expected ErrOddResetVector, got %v", err)
	}
}

func TestLoadCartridge_VectorTableOnly(t *testing.T) {
	rom := make([]byte, 0x100)
	binary.BigEndian.PutUint32(rom[4:], 0x00000100)
	cart, err := LoadCartridge(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Header.SystemType != "" {
		t.Errorf("expected empty header, got %q", cart.Header.SystemType)
	}
	if cart.Header.InitialPC != 0x100 {
		t.Errorf("expected PC 0x100, got 0x%06X", cart.Header.InitialPC)
	}
}

func TestLoadCartridge_Truncates(t *testing.T) {
	rom := make([]byte, maxROMSize+0x1000)
	cart, err := LoadCartridge(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.ROM) != maxROMSize {
		t.Errorf("expected %d bytes, got %d", maxROMSize, len(cart.ROM))
	}
}

func TestLoadCartridge_Header(t *testing.T) {
	rom := makeTestROM([]uint16{0x4E71, 0x60FE})
	copy(rom[0x120:], "TEST CART")
	copy(rom[0x180:], "GM 00000000-00")
	binary.BigEndian.PutUint32(rom[0x1A4:], 0x000203)
	withSRAM(rom, 0x200001, 0x203FFF)

	cart, err := LoadCartridge(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := cart.Header
	if h.SystemType != "SEGA GENESIS" {
		t.Errorf("expected system type, got %q", h.SystemType)
	}
	if h.DomesticName != "TEST CART" {
		t.Errorf("expected name, got %q", h.DomesticName)
	}
	if h.Serial != "GM 00000000-00" {
		t.Errorf("expected serial, got %q", h.Serial)
	}
	if h.ROMEnd != 0x203 {
		t.Errorf("expected ROM end 0x203, got 0x%X", h.ROMEnd)
	}
	if !h.HasSRAM || h.SRAMStart != 0x200001 || h.SRAMEnd != 0x203FFF {
		t.Errorf("unexpected SRAM %v %06X-%06X", h.HasSRAM, h.SRAMStart, h.SRAMEnd)
	}
	if h.Console != ConsoleUSA {
		t.Errorf("expected USA, got %v", h.Console)
	}
	if h.InitialSSP != 0x00FFFE00 || h.InitialPC != 0x200 {
		t.Errorf("unexpected vectors SSP=%08X PC=%08X", h.InitialSSP, h.InitialPC)
	}
	if cart.CRC32 == 0 {
		t.Error("expected CRC32")
	}
}

func TestLoadCartridge_SRAMOutsideWindowIgnored(t *testing.T) {
	rom := withSRAM(makeTestROM(nil), 0x100000, 0x10FFFF)
	cart, err := LoadCartridge(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Header.HasSRAM {
		t.Error("expected SRAM outside 0x200000-0x3FFFFF to be ignored")
	}
}

func TestLoadCartridge_BadChecksumStillLoads(t *testing.T) {
	rom := makeTestROM([]uint16{0x1234})
	rom[0x18F] ^= 0xFF
	if _, err := LoadCartridge(rom); err != nil {
		t.Errorf("expected checksum mismatch to be tolerated, got %v", err)
	}
	if err := ValidateChecksum(rom); err == nil {
		t.Error("expected ValidateChecksum to report the mismatch")
	}
}

func TestValidateSystemType(t *testing.T) {
	tests := []struct {
		sys  string
		want bool
	}{
		{"SEGA MEGA DRIVE", true},
		{"SEGA GENESIS", true},
		{"SEGA MEGA DRIVE (C)", true},
		{"SEGA SATURN", false},
		{"", false},
	}
	for _, tt := range tests {
		rom := makeTestROM(nil)
		for i := 0x100; i < 0x110; i++ {
			rom[i] = ' '
		}
		copy(rom[0x100:0x110], tt.sys)
		err := ValidateSystemType(rom)
		if (err == nil) != tt.want {
			t.Errorf("%q: expected valid=%v, got %v", tt.sys, tt.want, err)
		}
	}
}

func TestValidateSystemType_TooShort(t *testing.T) {
	if err := ValidateSystemType(make([]byte, 0x10F)); err == nil {
		t.Error("expected error")
	}
}

func TestValidateChecksum(t *testing.T) {
	rom := makeTestROM([]uint16{0x0123, 0x4567, 0x89AB})
	if err := ValidateChecksum(rom); err != nil {
		t.Errorf("expected valid checksum, got %v", err)
	}
	if got := binary.BigEndian.Uint16(rom[0x18E:]); got != 0xD035 {
		t.Errorf("expected 0xD035, got 0x%04X", got)
	}
}

func TestChecksum_OddTrailingByte(t *testing.T) {
	rom := make([]byte, 0x203)
	rom[0x200], rom[0x201], rom[0x202] = 0x00, 0x01, 0x02
	if got := romChecksum(rom); got != 0x0201 {
		t.Errorf("expected 0x0201, got 0x%04X", got)
	}
}
