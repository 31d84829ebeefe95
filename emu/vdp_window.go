package emu

// isWindowPixel reports whether (screenX, line) is inside the window.
// Reg 17 gives the horizontal split in 16-pixel units (bit 7: window on
// the right), reg 18 the vertical split in 8-line units (bit 7: window
// below). A zero split disables that axis; with both set the window is
// the union of the two areas.
func (v *VDP) isWindowPixel(screenX, line int) bool {
	hSplit := int(v.regs[17]&0x1F) * 16
	vSplit := int(v.regs[18]&0x1F) * 8

	inH := hSplit != 0 && (screenX < hSplit) != (v.regs[17]&0x80 != 0)
	inV := vSplit != 0 && (line < vSplit) != (v.regs[18]&0x80 != 0)
	return inH || inV
}

// windowNametableBase returns the window nametable address. H40 ignores
// bit 1 of reg 3.
func (v *VDP) windowNametableBase() uint16 {
	if v.h40Mode() {
		return uint16(v.regs[3]&0x3C) << 10
	}
	return uint16(v.regs[3]&0x3E) << 10
}

func (v *VDP) windowNametableWidth() int {
	if v.h40Mode() {
		return 64
	}
	return 32
}

// getWindowPixel samples the window, which never scrolls.
func (v *VDP) getWindowPixel(screenX, line int) layerPixel {
	row := v.sourceRow(line)
	cell := (row>>v.tileRowShift())*v.windowNametableWidth() + screenX>>3
	entry := v.vramWord(v.windowNametableBase() + uint16(cell*2))
	return v.entryPixel(entry, screenX&7, row&(v.tileRows()-1))
}
