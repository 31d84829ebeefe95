package emu

// spriteLimits are the per-line hardware caps: sprites, sprite pixels,
// and total table entries walked.
type spriteLimits struct {
	perLine, pixels, total int
}

var (
	spriteLimitsH32 = spriteLimits{perLine: 16, pixels: 256, total: 64}
	spriteLimitsH40 = spriteLimits{perLine: 20, pixels: 320, total: 80}
)

// satEntry is one 8-byte sprite attribute table entry.
//
//	0-1  Y position (9 bits, 10 in double resolution)
//	2    width-1 (bits 3:2), height-1 (bits 1:0)
//	3    link to the next entry
//	4-5  nametable-style attributes
//	6-7  X position (9 bits)
type satEntry struct {
	y, x           int
	cellsW, cellsH int
	link           int
	attr           uint16
}

func (v *VDP) spriteTableBase() uint16 {
	if v.h40Mode() {
		return uint16(v.regs[5]&0x7E) << 9
	}
	return uint16(v.regs[5]&0x7F) << 9
}

func (v *VDP) readSprite(index int) satEntry {
	addr := v.spriteTableBase() + uint16(index*8)
	size := v.vram[addr+2]
	e := satEntry{
		y:      int(v.vramWord(addr) & 0x03FF),
		cellsW: int(size>>2&0x03) + 1,
		cellsH: int(size&0x03) + 1,
		link:   int(v.vram[addr+3] & 0x7F),
		attr:   v.vramWord(addr + 4),
		x:      int(v.vramWord(addr+6) & 0x01FF),
	}
	if v.interlaceDoubleRes() {
		e.y -= 256
	} else {
		e.y = e.y&0x01FF - 128
	}
	return e
}

// renderSprites draws the sprites crossing line into lineBufSpr,
// walking the table in link order from entry 0. Sprites past the
// per-line count are dropped and set the overflow flag; drawing stops
// once the pixel budget for the line is spent. Earlier sprites win
// where they overlap, which sets the collision flag.
func (v *VDP) renderSprites(line int) {
	limits := spriteLimitsH32
	if v.h40Mode() {
		limits = spriteLimitsH40
	}
	row := v.sourceRow(line)
	rows := v.tileRows()
	width := v.activeWidth()

	onLine, pixels := 0, 0
	masking := false // a sprite with X != 0 has been seen on this line
	index := 0
	for walked := 0; walked < limits.total; walked++ {
		e := v.readSprite(index)
		height := e.cellsH * rows

		if row >= e.y && row < e.y+height {
			onLine++
			if onLine > limits.perLine {
				v.spriteOverflow = true
				return
			}
			// X=0 hides the rest of the line once another sprite is there.
			if e.x == 0 && masking {
				return
			}
			if e.x != 0 {
				masking = true
			}
			if v.drawSprite(e, row-e.y, width, &pixels, limits.pixels) {
				v.spriteOverflow = true
				return
			}
		}

		if e.link == 0 || e.link >= limits.total {
			return
		}
		index = e.link
	}
}

// drawSprite draws one row of a sprite. It returns true when the line's
// pixel budget ran out part way.
func (v *VDP) drawSprite(e satEntry, spriteRow, width int, pixels *int, budget int) bool {
	rows := v.tileRows()
	height := e.cellsH * rows
	spriteWidth := e.cellsW * 8
	hFlip := e.attr&entryHFlip != 0
	if e.attr&entryVFlip != 0 {
		spriteRow = height - 1 - spriteRow
	}
	pal := uint8(e.attr>>entryPalShift) & entryPalMask
	prio := e.attr&entryPriority != 0
	base := e.attr & entryTileMask
	xPos := e.x - 128

	for sx := 0; sx < spriteWidth; sx++ {
		*pixels++
		if *pixels > budget {
			return true
		}
		screenX := xPos + sx
		if screenX < 0 || screenX >= width {
			continue
		}
		col := sx
		if hFlip {
			col = spriteWidth - 1 - sx
		}
		// Cells are stored column-major.
		tile := base + uint16((col>>3)*e.cellsH+spriteRow>>v.tileRowShift())
		c := v.decodeTilePixel(tile*v.tileSize(), col&7, spriteRow&(rows-1), false, false)
		if c == 0 {
			continue
		}
		if v.lineBufSpr[screenX].opaque() {
			v.spriteCollision = true
			continue
		}
		v.lineBufSpr[screenX] = layerPixel{colorIndex: c, palette: pal, priority: prio}
	}
	return false
}
