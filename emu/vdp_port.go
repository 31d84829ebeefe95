package emu

// portPhase is the control port's position in a two-word command.
type portPhase uint8

const (
	phaseFirstWord portPhase = iota
	phaseSecondWord
)

// Access codes (CD3-CD0) selecting the memory behind the data port.
const (
	codeVRAMRead   = 0x00
	codeVRAMWrite  = 0x01
	codeCRAMWrite  = 0x03
	codeVSRAMRead  = 0x04
	codeVSRAMWrite = 0x05
	codeCRAMRead   = 0x08
	codeVRAM8Read  = 0x0C

	codeTargetMask = 0x0F
	codeDMA        = 0x20 // CD5
)

// WriteControl writes to the control port.
//
// In the first phase a word of the form 10xRRRRR DDDDDDDD is a register
// write. Any other word starts an address/code command, and the next
// control write always completes it:
//
//	first:  CD1 CD0 A13-A0
//	second: 0 0 0 0 0 0 0 0 CD5-CD2 0 0 A15 A14
func (v *VDP) WriteControl(cycle uint64, val uint16) {
	switch v.phase {
	case phaseFirstWord:
		if val&0xC000 == 0x8000 {
			v.writeRegister(uint8(val>>8)&0x1F, uint8(val))
			v.code = v.code&0x3C | uint8(val>>14)&0x03
			return
		}
		v.phase = phaseSecondWord
		v.code = v.code&0x3C | uint8(val>>14)&0x03
		v.address = v.address&0xC000 | val&0x3FFF
	case phaseSecondWord:
		v.phase = phaseFirstWord
		v.code = v.code&0x03 | uint8(val>>2)&0x3C
		v.address = v.address&0x3FFF | (val&0x03)<<14

		if v.code&codeDMA != 0 && v.dmaEnabled() {
			v.executeDMA(cycle)
			return
		}
		if v.code&0x01 == 0 {
			v.prefetch()
		}
	default:
		defect("vdp", "control port in phase %d", v.phase)
	}
}

// ReadControl returns the status word and resets the port phase. The
// read clears the sprite flags. V-int pending stays set until the CPU
// acknowledges it.
//
//	15-10 fixed 011101   9 FIFO empty   7 V-int   6 sprite overflow
//	5 collision   4 odd field   3 VBlank   2 HBlank   1 DMA   0 PAL
func (v *VDP) ReadControl(cycle uint64) uint16 {
	status := uint16(0x7400) | 1<<9
	set := func(bit uint, on bool) {
		if on {
			status |= 1 << bit
		}
	}
	set(7, v.vIntPending)
	set(6, v.spriteOverflow)
	set(5, v.spriteCollision)
	set(4, v.oddField && v.interlaceMode() != 0)
	set(3, v.vBlank || !v.displayEnabled())
	set(2, v.hBlank || v.isHBlankAtCycle(cycle))
	set(1, cycle > 0 && cycle < v.dmaEndCycle)
	set(0, v.isPAL)

	v.phase = phaseFirstWord
	v.spriteOverflow = false
	v.spriteCollision = false
	return status
}

// WriteData writes a word to the memory selected by the access code and
// advances the address. A pending VRAM fill runs after the write.
func (v *VDP) WriteData(cycle uint64, val uint16) {
	v.phase = phaseFirstWord
	fill := v.dmaFillPending

	v.store(v.cycleToPixel(cycle), val)
	v.address += v.autoIncrement()

	if fill {
		v.executeDMAFill(cycle, val)
	}
}

// store writes one word at the current address. CRAM and VSRAM writes
// are logged with their pixel position for mid-line rendering.
func (v *VDP) store(pixelX int, val uint16) {
	switch v.code & codeTargetMask {
	case codeVRAMWrite:
		addr := v.address
		if addr&1 != 0 {
			// Odd addresses store the word byte-swapped.
			val = val<<8 | val>>8
		}
		addr &^= 1
		v.vram[addr] = uint8(val >> 8)
		v.vram[addr+1] = uint8(val)
	case codeCRAMWrite:
		addr := uint8(v.address) & 0x7E
		hi, lo := uint8(val>>8)&0x0E, uint8(val)&0xEE
		v.cram[addr], v.cram[addr+1] = hi, lo
		v.cramChanges = append(v.cramChanges, cramChange{pixelX: pixelX, addr: addr, hi: hi, lo: lo})
	case codeVSRAMWrite:
		addr := int(v.address & 0x7E)
		if addr >= len(v.vsram) {
			return
		}
		hi, lo := uint8(val>>8)&0x07, uint8(val)
		v.vsram[addr], v.vsram[addr+1] = hi, lo
		v.vsramChanges = append(v.vsramChanges, vsramChange{pixelX: pixelX, addr: addr, hi: hi, lo: lo})
	}
}

// ReadData returns the prefetched word and fetches the next one.
func (v *VDP) ReadData() uint16 {
	v.phase = phaseFirstWord
	result := v.readBuffer
	v.prefetch()
	return result
}

func (v *VDP) prefetch() {
	switch v.code & codeTargetMask {
	case codeVRAMRead:
		addr := v.address &^ 1
		v.readBuffer = uint16(v.vram[addr])<<8 | uint16(v.vram[addr+1])
	case codeVSRAMRead:
		addr := int(v.address & 0x7E)
		if addr < len(v.vsram) {
			v.readBuffer = uint16(v.vsram[addr])<<8 | uint16(v.vsram[addr+1])
		} else {
			v.readBuffer = 0
		}
	case codeCRAMRead:
		addr := v.address & 0x7E
		v.readBuffer = uint16(v.cram[addr])<<8 | uint16(v.cram[addr+1])
	case codeVRAM8Read:
		v.readBuffer = uint16(v.vram[v.address^1])
	default:
		v.readBuffer = 0
	}
	v.address += v.autoIncrement()
}
