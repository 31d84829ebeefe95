package emu

import "sort"

const (
	addrMask  = 0xFFFFFF // 24-bit address bus
	pageShift = 16
	pageCount = 1 << (24 - pageShift)
)

// device identifies the component that answers a 64KB page of the 68K
// address space.
type device uint8

const (
	devOpenBus device = iota
	devCartridge
	devZ80
	devSystem
	devVDP
	devRAM
)

func (d device) String() string {
	switch d {
	case devCartridge:
		return "cartridge"
	case devZ80:
		return "z80"
	case devSystem:
		return "system"
	case devVDP:
		return "vdp"
	case devRAM:
		return "ram"
	}
	return "open bus"
}

// region is one contiguous, page-aligned span of the address space.
type region struct {
	start, end uint32 // inclusive
	dev        device
}

// memoryMap is the 68K view of the console.
//
//	0x000000-0x3FFFFF  cartridge ROM (SRAM overlays 0x200000-0x3FFFFF)
//	0x400000-0x9FFFFF  open bus (expansion)
//	0xA00000-0xA0FFFF  Z80 RAM and YM2612
//	0xA10000-0xA1FFFF  I/O, Z80 bus control, SRAM control, TMSS
//	0xA20000-0xBFFFFF  open bus
//	0xC00000-0xDFFFFF  VDP ports, mirrored every 0x20 bytes
//	0xE00000-0xFFFFFF  64KB work RAM, mirrored
var memoryMap = []region{
	{0x000000, 0x3FFFFF, devCartridge},
	{0xA00000, 0xA0FFFF, devZ80},
	{0xA10000, 0xA1FFFF, devSystem},
	{0xC00000, 0xDFFFFF, devVDP},
	{0xE00000, 0xFFFFFF, devRAM},
}

// buildPageTable compiles regions into a page lookup. Overlapping or
// misaligned regions are a defect in the map itself.
func buildPageTable(regions []region) [pageCount]device {
	var pages [pageCount]device
	sorted := append([]region(nil), regions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	for i, r := range sorted {
		if r.start&0xFFFF != 0 || r.end&0xFFFF != 0xFFFF || r.end < r.start || r.end > addrMask {
			defect("memmap", "%s region %06X-%06X is not page aligned", r.dev, r.start, r.end)
		}
		if i > 0 && sorted[i-1].end >= r.start {
			defect("memmap", "%s region %06X-%06X overlaps %s", r.dev, r.start, r.end, sorted[i-1].dev)
		}
		for p := r.start >> pageShift; p <= r.end>>pageShift; p++ {
			pages[p] = r.dev
		}
	}
	return pages
}

// Registers decoded inside the system page.
const (
	sysIO = iota + 1
	sysBusRequest
	sysZ80Reset
	sysSRAMControl
	sysTMSS
)

// systemRegister decodes an address in 0xA10000-0xA1FFFF. Zero means
// nothing answers there.
func systemRegister(addr uint32) int {
	switch {
	case addr <= 0xA1001F:
		return sysIO
	case addr&^1 == 0xA11100:
		return sysBusRequest
	case addr&^1 == 0xA11200:
		return sysZ80Reset
	case addr >= 0xA130F0 && addr <= 0xA130FF:
		return sysSRAMControl
	case addr >= 0xA14000 && addr <= 0xA14003:
		return sysTMSS
	}
	return 0
}
