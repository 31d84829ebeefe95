package emu

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/user-none/mdcore/m68k"
)

// makeTestROM builds a cartridge with SSP 0x00FFFE00, PC 0x200, a
// Genesis header and code at 0x200. The checksum is valid.
func makeTestROM(code []uint16) []byte {
	rom := make([]byte, 0x200+len(code)*2)
	binary.BigEndian.PutUint32(rom[0:], 0x00FFFE00)
	binary.BigEndian.PutUint32(rom[4:], 0x00000200)
	for i := 0x100; i < 0x200; i++ {
		rom[i] = ' '
	}
	copy(rom[0x100:], "SEGA GENESIS")
	copy(rom[0x1F0:], "U")
	for i, w := range code {
		binary.BigEndian.PutUint16(rom[0x200+i*2:], w)
	}
	binary.BigEndian.PutUint16(rom[0x18E:], romChecksum(rom))
	return rom
}

// withSRAM declares backup RAM at start-end in the header.
func withSRAM(rom []byte, start, end uint32) []byte {
	rom[0x1B0], rom[0x1B1] = 'R', 'A'
	binary.BigEndian.PutUint32(rom[0x1B4:], start)
	binary.BigEndian.PutUint32(rom[0x1B8:], end)
	return rom
}

func makeBusFromROM(t *testing.T, rom []byte) *GenesisBus {
	t.Helper()
	cart, err := LoadCartridge(rom)
	if err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	vdp := NewVDP(false)
	bus := NewGenesisBus(cart, vdp, NewIO(ConsoleUSA, false))
	vdp.SetBus(bus)
	return bus
}

// makeTestBus creates a bus over a ROM holding a single NOP.
func makeTestBus() *GenesisBus {
	cart, err := LoadCartridge(makeTestROM([]uint16{0x4E71}))
	if err != nil {
		panic(err)
	}
	vdp := NewVDP(false)
	bus := NewGenesisBus(cart, vdp, NewIO(ConsoleUSA, false))
	vdp.SetBus(bus)
	return bus
}

// expectDefect runs fn and reports whether it raised a DefectError for
// component.
func expectDefect(t *testing.T, component string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		var d *DefectError
		if !ok || !errors.As(err, &d) {
			t.Fatalf("expected DefectError panic, got %v", r)
		}
		if d.Component != component {
			t.Errorf("expected component %q, got %q", component, d.Component)
		}
	}()
	fn()
}

func TestGenesisBus_ReadROM(t *testing.T) {
	bus := makeTestBus()
	if val := bus.ReadCycle(0, m68k.Byte, 1); val != 0xFF {
		t.Errorf("expected 0xFF, got 0x%02X", val)
	}
	if val := bus.ReadCycle(0, m68k.Word, 0x200); val != 0x4E71 {
		t.Errorf("expected 0x4E71, got 0x%04X", val)
	}
	if val := bus.ReadCycle(0, m68k.Long, 0); val != 0x00FFFE00 {
		t.Errorf("expected 0x00FFFE00, got 0x%08X", val)
	}
}

func TestGenesisBus_ROMIgnoresWrites(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Word, 0x200, 0x1234)
	if val := bus.ReadCycle(0, m68k.Word, 0x200); val != 0x4E71 {
		t.Errorf("expected 0x4E71, got 0x%04X", val)
	}
}

func TestGenesisBus_RAMMirror(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Word, 0xFF1000, 0xBEEF)
	if val := bus.ReadCycle(0, m68k.Word, 0xE01000); val != 0xBEEF {
		t.Errorf("expected 0xBEEF through mirror, got 0x%04X", val)
	}
}

func TestGenesisBus_LongIsHighWordFirst(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Long, 0xFF0000, 0x11223344)
	want := []byte{0x11, 0x22, 0x33, 0x44}
	for i, b := range want {
		if got := bus.ram[i]; got != b {
			t.Errorf("ram[%d]: expected 0x%02X, got 0x%02X", i, b, got)
		}
	}
	if val := bus.ReadCycle(0, m68k.Long, 0xFF0000); val != 0x11223344 {
		t.Errorf("expected 0x11223344, got 0x%08X", val)
	}
}

func TestGenesisBus_LongToVDPControl(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Word, 0xC00004, 0x8F02)

	// Both command words in one long: VRAM write to 0x0000.
	bus.WriteCycle(0, m68k.Long, 0xC00004, 0x40000000)
	bus.WriteCycle(0, m68k.Long, 0xC00000, 0x11223344)

	want := []byte{0x11, 0x22, 0x33, 0x44}
	for i, b := range want {
		if got := bus.vdp.vram[i]; got != b {
			t.Errorf("vram[%d]: expected 0x%02X, got 0x%02X", i, b, got)
		}
	}
}

func TestGenesisBus_LongRegisterWritesInOrder(t *testing.T) {
	bus := makeTestBus()
	// The same register twice: the low word must land last.
	bus.WriteCycle(0, m68k.Long, 0xC00004, 0x8F048F02)
	if got := bus.vdp.Register(15); got != 0x02 {
		t.Errorf("expected reg 15 = 0x02, got 0x%02X", got)
	}
}

func TestGenesisBus_OpenBus(t *testing.T) {
	bus := makeTestBus()
	bus.FetchCycle(0, 0x200)

	if val := bus.ReadCycle(0, m68k.Word, 0x400000); val != 0x4E71 {
		t.Errorf("expected last fetched word 0x4E71, got 0x%04X", val)
	}
	if val := bus.ReadCycle(0, m68k.Byte, 0x800001); val != 0x71 {
		t.Errorf("expected 0x71, got 0x%02X", val)
	}
	// Past the end of the ROM image.
	if val := bus.ReadCycle(0, m68k.Word, 0x100000); val != 0x4E71 {
		t.Errorf("expected open bus past ROM, got 0x%04X", val)
	}
}

func TestGenesisBus_UnmappedWritesIgnored(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Long, 0x400000, 0xFFFFFFFF)
	bus.WriteCycle(0, m68k.Byte, 0xB00000, 0xFF)
	for i, b := range bus.ram {
		if b != 0 {
			t.Fatalf("ram[%d] changed to 0x%02X", i, b)
		}
	}
}

func TestGenesisBus_OddWordAccessIsDefect(t *testing.T) {
	bus := makeTestBus()
	expectDefect(t, "bus", func() { bus.ReadCycle(0, m68k.Word, 0xFF0001) })
	expectDefect(t, "bus", func() { bus.WriteCycle(0, m68k.Long, 0xFF0003, 0) })
	expectDefect(t, "bus", func() { bus.FetchCycle(0, 0x201) })
}

func TestGenesisBus_Mapped(t *testing.T) {
	bus := makeTestBus()
	tests := []struct {
		addr uint32
		want bool
	}{
		{0x000000, true},
		{0x000202, false}, // past the ROM image
		{0x400000, false},
		{0xA00000, true},
		{0xA10001, true},
		{0xA10100, false},
		{0xA11100, true},
		{0xA11200, true},
		{0xA130F1, true},
		{0xA14000, true},
		{0xB00000, false},
		{0xC00000, true},
		{0xFFFFFF, true},
	}
	for _, tt := range tests {
		if got := bus.Mapped(tt.addr); got != tt.want {
			t.Errorf("Mapped(%06X): expected %v, got %v", tt.addr, tt.want, got)
		}
	}
}

func TestGenesisBus_SRAMEnabledWhenPastROM(t *testing.T) {
	bus := makeBusFromROM(t, withSRAM(makeTestROM(nil), 0x200000, 0x20FFFF))
	if !bus.HasSRAM() {
		t.Fatal("expected SRAM")
	}
	bus.WriteCycle(0, m68k.Byte, 0x200011, 0x5A)
	if val := bus.ReadCycle(0, m68k.Byte, 0x200011); val != 0x5A {
		t.Errorf("expected 0x5A, got 0x%02X", val)
	}
	if got := bus.GetSRAM()[0x11]; got != 0x5A {
		t.Errorf("expected GetSRAM to reflect write, got 0x%02X", got)
	}
}

func TestGenesisBus_SRAMControl(t *testing.T) {
	bus := makeBusFromROM(t, withSRAM(makeTestROM(nil), 0x200000, 0x20FFFF))
	bus.WriteCycle(0, m68k.Byte, 0x200000, 0x11)

	// Enabled and write protected.
	bus.WriteCycle(0, m68k.Byte, 0xA130F1, 0x03)
	bus.WriteCycle(0, m68k.Byte, 0x200000, 0x22)
	if val := bus.ReadCycle(0, m68k.Byte, 0x200000); val != 0x11 {
		t.Errorf("expected protected SRAM to keep 0x11, got 0x%02X", val)
	}
	if val := bus.ReadCycle(0, m68k.Byte, 0xA130F1); val != 0x03 {
		t.Errorf("expected control 0x03, got 0x%02X", val)
	}

	// Disabled: the window reads open bus.
	bus.WriteCycle(0, m68k.Byte, 0xA130F1, 0x00)
	bus.FetchCycle(0, 0x000000)
	if val := bus.ReadCycle(0, m68k.Byte, 0x200000); val != 0x00 {
		t.Errorf("expected open bus 0x00, got 0x%02X", val)
	}
}

func TestGenesisBus_SetSRAM(t *testing.T) {
	bus := makeBusFromROM(t, withSRAM(makeTestROM(nil), 0x200000, 0x2000FF))
	bus.SetSRAM([]byte{1, 2, 3})
	if val := bus.ReadCycle(0, m68k.Word, 0x200000); val != 0x0102 {
		t.Errorf("expected 0x0102, got 0x%04X", val)
	}
	if n := len(bus.GetSRAM()); n != 0x100 {
		t.Errorf("expected 256 bytes of SRAM, got %d", n)
	}
}

func TestGenesisBus_NoSRAM(t *testing.T) {
	bus := makeTestBus()
	if bus.HasSRAM() || bus.GetSRAM() != nil {
		t.Error("expected no SRAM")
	}
}

func TestGenesisBus_Z80WindowIsByteWide(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Word, 0xA00010, 0xABCD)
	if bus.z80RAM[0x10] != 0xAB {
		t.Errorf("expected 0xAB, got 0x%02X", bus.z80RAM[0x10])
	}
	if bus.z80RAM[0x11] != 0x00 {
		t.Errorf("expected odd byte untouched, got 0x%02X", bus.z80RAM[0x11])
	}
	if val := bus.ReadCycle(0, m68k.Word, 0xA00010); val != 0xABAB {
		t.Errorf("expected 0xABAB, got 0x%04X", val)
	}
	bus.WriteCycle(0, m68k.Byte, 0xA02011, 0x77)
	if bus.z80RAM[0x11] != 0x77 {
		t.Errorf("expected mirrored byte write, got 0x%02X", bus.z80RAM[0x11])
	}
}

func TestGenesisBus_Z80BusRequest(t *testing.T) {
	bus := makeTestBus()
	if val := bus.ReadCycle(0, m68k.Byte, 0xA11100); val&1 != 1 {
		t.Errorf("expected bit 0 set before request, got 0x%02X", val)
	}
	bus.WriteCycle(0, m68k.Word, 0xA11100, 0x0100)
	if !bus.z80BusRequested {
		t.Error("expected bus requested")
	}
	if val := bus.ReadCycle(0, m68k.Word, 0xA11100); val&0x0100 != 0 {
		t.Errorf("expected bit 8 clear once granted, got 0x%04X", val)
	}
	bus.WriteCycle(0, m68k.Byte, 0xA11100, 0x00)
	if bus.z80BusRequested {
		t.Error("expected bus released")
	}
}

func TestGenesisBus_Z80Reset(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Word, 0xA11200, 0x0100)
	if !bus.z80Reset || !bus.z80PendingReset {
		t.Error("expected Z80 released with a pending reset")
	}
	bus.z80PendingReset = false
	bus.WriteCycle(0, m68k.Word, 0xA11200, 0x0100)
	if bus.z80PendingReset {
		t.Error("expected no new reset while already running")
	}
	bus.WriteCycle(0, m68k.Word, 0xA11200, 0x0000)
	if bus.z80Reset {
		t.Error("expected Z80 held in reset")
	}
}

func TestGenesisBus_IOWordMirrors(t *testing.T) {
	bus := makeTestBus()
	if val := bus.ReadCycle(0, m68k.Word, 0xA10000); val != 0xA0A0 {
		t.Errorf("expected 0xA0A0, got 0x%04X", val)
	}
	bus.WriteCycle(0, m68k.Word, 0xA10008, 0x0040)
	if bus.io.Ports[0].ctrl != 0x40 {
		t.Errorf("expected ctrl 0x40 from low byte, got 0x%02X", bus.io.Ports[0].ctrl)
	}
}

func TestGenesisBus_VDPByteWriteDuplicates(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Byte, 0xC00005, 0x8F)
	if got := bus.vdp.Register(15); got != 0x8F {
		t.Errorf("expected reg 15 = 0x8F, got 0x%02X", got)
	}
}

func TestGenesisBus_VDPPortMirrors(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Word, 0xC00024, 0x8F04)
	if got := bus.vdp.Register(15); got != 0x04 {
		t.Errorf("expected mirrored control write, got 0x%02X", got)
	}
	if val := bus.ReadCycle(0, m68k.Word, 0xD00004); val&0xFC00 != 0x7400 {
		t.Errorf("expected status through mirror, got 0x%04X", val)
	}
}

func TestGenesisBus_PSGWrite(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Byte, 0xC00011, 0x9A)
	if bus.psg.writes != 1 {
		t.Errorf("expected 1 PSG write, got %d", bus.psg.writes)
	}
	if bus.psg.regs[1] != 0x0A {
		t.Errorf("expected channel 0 volume 0x0A, got 0x%X", bus.psg.regs[1])
	}
}

func TestGenesisBus_FMRegisters(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Byte, 0xA04000, 0x28)
	bus.WriteCycle(0, m68k.Byte, 0xA04001, 0xF0)
	if got := bus.fm.Register(0, 0x28); got != 0xF0 {
		t.Errorf("expected 0xF0, got 0x%02X", got)
	}
}

func TestGenesisBus_ResetDevices(t *testing.T) {
	bus := makeTestBus()
	bus.WriteCycle(0, m68k.Byte, 0xA10009, 0x40)
	bus.ResetDevices()
	if bus.io.Ports[0].ctrl != 0 {
		t.Errorf("expected I/O reset, got ctrl 0x%02X", bus.io.Ports[0].ctrl)
	}
}

func TestGenesisBus_DMAReadWord(t *testing.T) {
	bus := makeTestBus()
	if got := bus.ReadWord(0x201); got != 0x4E71 {
		t.Errorf("expected aligned read 0x4E71, got 0x%04X", got)
	}
}
