package emu

// Nametable entry layout: priority, palette, flips, tile index.
//
//	15   14-13  12  11  10-0
//	pri  pal    vf  hf  tile
const (
	entryPriority = 0x8000
	entryPalShift = 13
	entryPalMask  = 0x03
	entryVFlip    = 0x1000
	entryHFlip    = 0x0800
	entryTileMask = 0x07FF
)

func (v *VDP) vramWord(addr uint16) uint16 {
	return uint16(v.vram[addr])<<8 | uint16(v.vram[addr+1])
}

// decodeTilePixel returns the 4-bit color at (px, py) of the tile at
// tileAddr. Rows are 4 bytes, two pixels per byte, left pixel high.
func (v *VDP) decodeTilePixel(tileAddr uint16, px, py int, hFlip, vFlip bool) uint8 {
	if vFlip {
		py = v.tileRows() - 1 - py
	}
	if hFlip {
		px = 7 - px
	}
	b := v.vram[tileAddr+uint16(py*4+px>>1)]
	if px&1 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

// entryPixel resolves one pixel of a nametable entry.
func (v *VDP) entryPixel(entry uint16, px, py int) layerPixel {
	tileAddr := (entry & entryTileMask) * v.tileSize()
	return layerPixel{
		colorIndex: v.decodeTilePixel(tileAddr, px, py, entry&entryHFlip != 0, entry&entryVFlip != 0),
		palette:    uint8(entry>>entryPalShift) & entryPalMask,
		priority:   entry&entryPriority != 0,
	}
}

// nametableSize returns the plane size in cells from reg 16. The
// prohibited setting 2 behaves as 32.
func (v *VDP) nametableSize() (hCells, vCells int) {
	cells := [4]int{32, 64, 32, 128}
	return cells[v.regs[16]&0x03], cells[v.regs[16]>>4&0x03]
}

func (v *VDP) planeANametable() uint16 {
	return uint16(v.regs[2]&0x38) << 10
}

func (v *VDP) planeBNametable() uint16 {
	return uint16(v.regs[4]&0x07) << 13
}

func (v *VDP) hScrollTableBase() uint16 {
	return uint16(v.regs[13]&0x3F) << 10
}

// hScrollValues returns the signed 10-bit H scroll of planes A and B for
// line under reg 11 mode: full screen, per 8-line cell, or per line.
func (v *VDP) hScrollValues(line int) (hScrollA, hScrollB int) {
	var offset uint16
	switch v.regs[11] & 0x03 {
	case 1, 2:
		offset = uint16(line&^7) * 4
	case 3:
		offset = uint16(line) * 4
	}
	addr := v.hScrollTableBase() + offset
	signed := func(w uint16) int { return int(w&0x3FF^0x200) - 0x200 }
	return signed(v.vramWord(addr)), signed(v.vramWord(addr + 2))
}

// vScrollValue returns the V scroll for a plane at screen column x.
// Full-screen mode latches VSRAM at line start; 2-cell mode replays
// writes made before the column was fetched.
func (v *VDP) vScrollValue(screenX int, planeB bool) int {
	perColumn := v.regs[11]&0x04 != 0
	addr := 0
	if perColumn {
		addr = screenX / 16 * 4
	}
	if planeB {
		addr += 2
	}
	if addr+1 >= len(v.vsram) {
		return 0
	}

	hi, lo := v.vsram[addr], v.vsram[addr+1]
	if len(v.vsramChanges) > 0 {
		hi, lo = v.vsramSnapshot[addr], v.vsramSnapshot[addr+1]
		if perColumn {
			column := screenX / 16 * 16
			for _, c := range v.vsramChanges {
				if c.pixelX > column {
					break
				}
				if c.addr == addr {
					hi, lo = c.hi, c.lo
				}
			}
		}
	}
	return int(uint16(hi)<<8 | uint16(lo))
}

// planePixel samples a scrolling plane at screen position (x, line).
func (v *VDP) planePixel(base uint16, x, line, hScroll int, planeB bool, hCells, vCells int) layerPixel {
	rows := v.tileRows()
	vMask := 0x3FF
	if rows == 16 {
		vMask = 0x7FF
	}
	px := (x - hScroll) & (hCells*8 - 1)
	py := (v.sourceRow(line) + v.vScrollValue(x, planeB)&vMask) & (vCells*rows - 1)

	cell := (py>>v.tileRowShift())*hCells + px>>3
	entry := v.vramWord(base + uint16(cell*2))
	return v.entryPixel(entry, px&7, py&(rows-1))
}

func (v *VDP) renderPlaneB(line int) {
	hCells, vCells := v.nametableSize()
	_, hScroll := v.hScrollValues(line)
	base := v.planeBNametable()
	for x := 0; x < v.activeWidth(); x++ {
		v.lineBufB[x] = v.planePixel(base, x, line, hScroll, true, hCells, vCells)
	}
}

// renderPlaneAAndWindow fills the plane A buffer, taking window pixels
// wherever the window region covers the screen.
func (v *VDP) renderPlaneAAndWindow(line int) {
	hCells, vCells := v.nametableSize()
	hScroll, _ := v.hScrollValues(line)
	base := v.planeANametable()
	for x := 0; x < v.activeWidth(); x++ {
		if v.isWindowPixel(x, line) {
			v.lineBufA[x] = v.getWindowPixel(x, line)
			continue
		}
		v.lineBufA[x] = v.planePixel(base, x, line, hScroll, false, hCells, vCells)
	}
}
