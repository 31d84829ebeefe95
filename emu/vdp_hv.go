package emu

// activePercent is the share of a line's 68K cycles spent in active
// display. The remainder is horizontal blanking.
const activePercent = 73

func (v *VDP) activeCycles() int {
	return v.scanlineTotalCycles * activePercent / 100
}

// cycleToPixel maps a 68K cycle to a pixel column of the current line.
func (v *VDP) cycleToPixel(cycle uint64) int {
	if cycle <= v.scanlineStartCycle {
		return 0
	}
	rel := int(cycle - v.scanlineStartCycle)
	width := v.activeWidth()
	end := v.activeCycles()
	if rel >= end {
		return width - 1
	}
	return rel * width / end
}

// isHBlankAtCycle reports whether cycle falls in the blanking part of
// the current line.
func (v *VDP) isHBlankAtCycle(cycle uint64) bool {
	if v.scanlineTotalCycles == 0 {
		return v.hBlank
	}
	if cycle < v.scanlineStartCycle {
		return false
	}
	return int(cycle-v.scanlineStartCycle) >= v.activeCycles()
}

// hCounterRanges returns the last active H value and the first HBlank
// value for the display mode.
//
//	H32: active 00-93, blank E9-FF
//	H40: active 00-B6, blank E4-FF
func (v *VDP) hCounterRanges() (activeEnd, blankStart int) {
	if v.h40Mode() {
		return 0xB6, 0xE4
	}
	return 0x93, 0xE9
}

// hCounterAt interpolates the H counter at rel cycles into a line of
// total cycles.
func (v *VDP) hCounterAt(rel, total int) uint8 {
	if rel < 0 {
		return 0
	}
	activeEnd, blankStart := v.hCounterRanges()
	boundary := total * activePercent / 100
	if rel < boundary {
		return uint8(rel * activeEnd / boundary)
	}
	blankTotal := total - boundary
	if blankTotal <= 0 {
		return uint8(blankStart)
	}
	return uint8(blankStart + (rel-boundary)*(0xFF-blankStart)/blankTotal)
}

// UpdateHCounter sets the stored H counter from the cycles run so far
// in the line.
func (v *VDP) UpdateHCounter(cycleInScanline, totalCycles int) {
	if totalCycles > 0 {
		v.hCounter = v.hCounterAt(cycleInScanline, totalCycles)
	}
}

// formatHVCounter packs V and H. Interlace modes replace V bit 0 with
// V bit 8 of the 9-bit field-adjusted counter:
//
//	off:    V7-V0 | H
//	normal: V7-V1 V8 | H   (V = counter | odd<<8)
//	double: V7-V1 V8 | H   (V = counter*2 + odd)
func (v *VDP) formatHVCounter(h uint8) uint16 {
	vb := v.vCounter & 0xFF
	switch v.interlaceMode() {
	case 1:
		if v.oddField {
			vb |= 0x100
		}
		vb = vb&0xFE | vb>>8&1
	case 3:
		vb *= 2
		if v.oddField {
			vb |= 1
		}
		vb = vb&0xFE | vb>>8&1
	}
	return (vb&0xFF)<<8 | uint16(h)
}

// ReadHVCounter returns the HV counter using the stored H value.
func (v *VDP) ReadHVCounter() uint16 {
	return v.formatHVCounter(v.hCounter)
}

// ReadHVCounterAtCycle returns the HV counter with H taken from cycle.
func (v *VDP) ReadHVCounterAtCycle(cycle uint64) uint16 {
	h := v.hCounter
	if v.scanlineTotalCycles > 0 {
		h = v.hCounterAt(int(int64(cycle)-int64(v.scanlineStartCycle)), v.scanlineTotalCycles)
	}
	return v.formatHVCounter(h)
}

// vCounterValue maps a line to the V counter, including the jump back
// that keeps the counter within 8 bits.
//
//	NTSC:      00-EA, E5-FF
//	PAL V28:   00-FF, 00-02, CA-FF
//	PAL V30:   00-FF, 00-0A, D2-FF
func (v *VDP) vCounterValue(line int) uint16 {
	if !v.isPAL {
		if line <= 0xEA {
			return uint16(line)
		}
		return uint16(0xE5 + line - 0xEB)
	}
	wrapEnd, jump := 259, 0xCA
	if v.v30Mode() {
		wrapEnd, jump = 267, 0xD2
	}
	if line < wrapEnd {
		return uint16(line & 0xFF)
	}
	return uint16(jump + line - wrapEnd)
}
