package emu

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// layerPixel is one layer's contribution to one pixel.
type layerPixel struct {
	colorIndex uint8 // 0 = transparent
	palette    uint8
	priority   bool
}

func (p layerPixel) opaque() bool { return p.colorIndex != 0 }

// brightness is the shadow/highlight level applied to a resolved pixel.
type brightness uint8

const (
	brightnessShadow brightness = iota
	brightnessNormal
	brightnessHighlight
)

// expand3 widens a 3-bit channel to 8 bits.
func expand3(c uint8) uint8 {
	return c<<5 | c<<2 | c>>1
}

// cramColor converts CRAM entry index (0-63) to RGB. Entries are stored
// big-endian as 0000BBB0 GGG0RRR0.
func (v *VDP) cramColor(index uint8) (r, g, b uint8) {
	i := int(index&0x3F) * 2
	hi, lo := v.cram[i], v.cram[i+1]
	return expand3(lo >> 1 & 7), expand3(lo >> 5 & 7), expand3(hi >> 1 & 7)
}

// shade applies a brightness level: shadow halves the color, highlight
// halves it and adds half of full scale.
func shade(r, g, b uint8, level brightness) (uint8, uint8, uint8) {
	switch level {
	case brightnessShadow:
		return r >> 1, g >> 1, b >> 1
	case brightnessHighlight:
		return r>>1 | 0x80, g>>1 | 0x80, b>>1 | 0x80
	}
	return r, g, b
}

func (v *VDP) putPixel(row, x int, r, g, b uint8) {
	p := row*v.framebuffer.Stride + x*4
	pix := v.framebuffer.Pix[p : p+4 : p+4]
	pix[0], pix[1], pix[2], pix[3] = r, g, b, 0xFF
}

// fillBackdrop paints a whole row with the backdrop color.
func (v *VDP) fillBackdrop(row, width int) {
	pal, idx := v.backdropColor()
	r, g, b := v.cramColor(pal*16 + idx)
	for x := 0; x < width; x++ {
		v.putPixel(row, x, r, g, b)
	}
}

// resolve picks the visible layer at x. Priority order, highest first:
// high sprite, high A/window, high B, low sprite, low A, low B, backdrop.
func (v *VDP) resolve(x int) (palette, index uint8) {
	spr, a, b := v.lineBufSpr[x], v.lineBufA[x], v.lineBufB[x]
	switch {
	case spr.priority && spr.opaque():
		return spr.palette, spr.colorIndex
	case a.priority && a.opaque():
		return a.palette, a.colorIndex
	case b.priority && b.opaque():
		return b.palette, b.colorIndex
	case spr.opaque():
		return spr.palette, spr.colorIndex
	case a.opaque():
		return a.palette, a.colorIndex
	case b.opaque():
		return b.palette, b.colorIndex
	}
	return v.backdropColor()
}

// resolveShadowHighlight is resolve for shadow/highlight mode. Pixels
// start shadowed; any high priority plane or sprite lifts them to normal.
// Low priority sprites using palette 3 color 14 or 15 are operators:
// they are not drawn but highlight or shadow what lies beneath.
func (v *VDP) resolveShadowHighlight(x int) (palette, index uint8, level brightness) {
	spr, a, b := v.lineBufSpr[x], v.lineBufA[x], v.lineBufB[x]
	pal, idx := v.backdropColor()
	under := func() (uint8, uint8) {
		switch {
		case a.opaque():
			return a.palette, a.colorIndex
		case b.opaque():
			return b.palette, b.colorIndex
		}
		return pal, idx
	}

	switch {
	case spr.priority && spr.opaque():
		return spr.palette, spr.colorIndex, brightnessNormal
	case a.priority && a.opaque():
		return a.palette, a.colorIndex, brightnessNormal
	case b.priority && b.opaque():
		return b.palette, b.colorIndex, brightnessNormal
	case spr.opaque() && spr.palette == 3 && spr.colorIndex >= 14:
		p, i := under()
		if spr.colorIndex == 14 {
			return p, i, brightnessHighlight
		}
		return p, i, brightnessShadow
	case spr.opaque() && spr.palette == 3:
		return spr.palette, spr.colorIndex, brightnessNormal
	case spr.opaque():
		return spr.palette, spr.colorIndex, brightnessShadow
	}
	p, i := under()
	return p, i, brightnessShadow
}

// compositeRange writes pixels [startX, endX) of row with the current CRAM.
func (v *VDP) compositeRange(row, startX, endX int) {
	sh := v.shadowHighlightMode()
	bpal, bidx := v.backdropColor()
	for x := startX; x < endX; x++ {
		var r, g, b uint8
		switch {
		case x < 8 && v.leftColumnBlank():
			r, g, b = v.cramColor(bpal*16 + bidx)
			if sh {
				r, g, b = shade(r, g, b, brightnessShadow)
			}
		case sh:
			pal, idx, level := v.resolveShadowHighlight(x)
			r, g, b = v.cramColor(pal*16 + idx)
			r, g, b = shade(r, g, b, level)
		default:
			pal, idx := v.resolve(x)
			r, g, b = v.cramColor(pal*16 + idx)
		}
		v.putPixel(row, x, r, g, b)
	}
}

// compositeScanline composites the layer buffers into row. CRAM writes
// made while the line was displayed split it into segments, each drawn
// with the palette as it stood at that point.
func (v *VDP) compositeScanline(row int) {
	width := v.activeWidth()
	if len(v.cramChanges) == 0 {
		v.compositeRange(row, 0, width)
		return
	}

	final := v.cram
	v.cram = v.cramSnapshot
	x := 0
	for _, c := range v.cramChanges {
		if end := min(c.pixelX, width); end > x {
			v.compositeRange(row, x, end)
			x = end
		}
		v.cram[c.addr], v.cram[c.addr+1] = c.hi, c.lo
	}
	if x < width {
		v.compositeRange(row, x, width)
	}
	v.cram = final
}

// RenderScanline draws display line into its framebuffer row.
func (v *VDP) RenderScanline(line int) {
	row := line
	if v.interlaceDoubleRes() {
		row = line*2 + boolToInt(v.oddField)
	}
	if row < 0 || row >= MaxScreenHeight {
		defect("vdp", "render row %d outside framebuffer", row)
	}

	width := v.activeWidth()
	v.lineWidth[row] = uint16(width)
	if !v.displayEnabled() {
		v.fillBackdrop(row, width)
		return
	}

	clear(v.lineBufB[:width])
	clear(v.lineBufA[:width])
	clear(v.lineBufSpr[:width])

	v.renderPlaneB(line)
	v.renderPlaneAAndWindow(line)
	v.renderSprites(line)
	v.compositeScanline(row)
}
