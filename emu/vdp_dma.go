package emu

// DMA modes selected by reg 23 bits 7:6.
const (
	dmaTransfer = iota // 68K bus -> VRAM/CRAM/VSRAM
	dmaFill
	dmaCopy
)

// dmaRates holds bytes moved per line, indexed [mode][h40][blank].
var dmaRates = [3][2][2]int{
	dmaTransfer: {{16, 167}, {18, 205}},
	dmaFill:     {{15, 166}, {17, 204}},
	dmaCopy:     {{8, 83}, {9, 102}},
}

func (v *VDP) dmaBytesPerLine(mode int, blank bool) int {
	return dmaRates[mode][boolToInt(v.h40Mode())][boolToInt(blank)]
}

func (v *VDP) totalScanlines() int {
	if v.isPAL {
		return PALTiming.Scanlines
	}
	return NTSCTiming.Scanlines
}

// dmaLength reads regs 19-20. Zero means 0x10000.
func (v *VDP) dmaLength() uint32 {
	n := uint32(v.regs[20])<<8 | uint32(v.regs[19])
	if n == 0 {
		n = 0x10000
	}
	return n
}

// linesFor converts bytes at rate bytes/line into 68K cycles.
func (v *VDP) linesFor(bytes, rate int) int {
	return bytes/rate*v.scanlineTotalCycles + bytes%rate*v.scanlineTotalCycles/rate
}

// dmaCalcEndCycle returns the cycle at which a DMA of totalBytes started
// at triggerCycle finishes. A transfer that crosses between active
// display and blanking is split at the boundary and each part timed at
// its own rate.
func (v *VDP) dmaCalcEndCycle(triggerCycle uint64, totalBytes int, mode int) uint64 {
	if v.scanlineTotalCycles <= 0 {
		return triggerCycle
	}
	blank := v.vBlank || !v.displayEnabled()
	rate := v.dmaBytesPerLine(mode, blank)

	var lines int
	otherBlank := true
	if v.vBlank {
		lines = v.totalScanlines() - v.currentLine
		otherBlank = !v.displayEnabled()
	} else {
		lines = v.ActiveHeight() - v.currentLine
	}

	if capacity := lines * rate; totalBytes > capacity {
		first := lines * v.scanlineTotalCycles
		second := v.linesFor(totalBytes-capacity, v.dmaBytesPerLine(mode, otherBlank))
		return triggerCycle + uint64(first+second)
	}
	return triggerCycle + uint64(v.linesFor(totalBytes, rate))
}

// executeDMA starts the DMA described by regs 19-23.
func (v *VDP) executeDMA(cycle uint64) {
	switch v.regs[23] >> 6 {
	case 0, 1:
		v.executeDMA68K(cycle)
	case 2:
		// Runs on the next data port write.
		v.dmaFillPending = true
	case 3:
		v.executeDMACopy(cycle)
	}
}

// executeDMA68K copies words from the 68K bus. The CPU is held off the
// bus for the duration, charged through DMAStallCycles.
func (v *VDP) executeDMA68K(cycle uint64) {
	if v.bus == nil {
		return
	}
	length := v.dmaLength()
	v.dmaEndCycle = v.dmaCalcEndCycle(cycle, int(length)*2, dmaTransfer)
	if v.dmaEndCycle > cycle {
		v.dmaStallCycles = int(v.dmaEndCycle - cycle)
	}

	// Source is a word address in regs 21-23. It wraps within 128KB.
	source := uint32(v.regs[23]&0x7F)<<17 | uint32(v.regs[22])<<9 | uint32(v.regs[21])<<1

	var cyclesPerWord uint64
	if words := v.dmaBytesPerLine(dmaTransfer, v.vBlank || !v.displayEnabled()) / 2; words > 0 {
		cyclesPerWord = uint64(v.scanlineTotalCycles / words)
	}
	at := cycle
	for i := uint32(0); i < length; i++ {
		v.store(v.cycleToPixel(at), v.bus.ReadWord(source&addrMask))
		v.address += v.autoIncrement()
		source = source&0xFE0000 | (source+2)&0x01FFFF
		at += cyclesPerWord
	}

	source >>= 1
	v.regs[21] = uint8(source)
	v.regs[22] = uint8(source >> 8)
	v.regs[23] = v.regs[23]&0x80 | uint8(source>>16)&0x7F
	v.regs[19], v.regs[20] = 0, 0
}

// executeDMAFill writes the high byte of val through VRAM. The word
// itself has already been stored by WriteData.
func (v *VDP) executeDMAFill(cycle uint64, val uint16) {
	v.dmaFillPending = false
	length := v.dmaLength()
	v.dmaEndCycle = v.dmaCalcEndCycle(cycle, int(length), dmaFill)

	b := uint8(val >> 8)
	for i := uint32(0); i < length; i++ {
		v.vram[v.address^1] = b
		v.address += v.autoIncrement()
	}
	v.regs[19], v.regs[20] = 0, 0
}

// executeDMACopy copies bytes within VRAM. The source advances by one,
// the destination by the auto-increment.
func (v *VDP) executeDMACopy(cycle uint64) {
	length := v.dmaLength()
	v.dmaEndCycle = v.dmaCalcEndCycle(cycle, int(length), dmaCopy)

	source := uint16(v.regs[22])<<8 | uint16(v.regs[21])
	for i := uint32(0); i < length; i++ {
		v.vram[v.address] = v.vram[source]
		source++
		v.address += v.autoIncrement()
	}
	v.regs[21] = uint8(source)
	v.regs[22] = uint8(source >> 8)
	v.regs[19], v.regs[20] = 0, 0
}
