package emu

// fmPorts latches writes to the YM2612 register file. Sound synthesis is
// not emulated: the status port reports the chip idle with both timers
// clear, which is what sound drivers poll for before each write.
type fmPorts struct {
	addr   [2]uint8
	regs   [2][256]uint8
	writes uint64
}

// write handles one of the four byte ports: even ports select a
// register, odd ports write it. Bit 1 picks part I or part II.
func (f *fmPorts) write(port, val uint8) {
	part := (port >> 1) & 1
	if port&1 == 0 {
		f.addr[part] = val
		return
	}
	f.regs[part][f.addr[part]] = val
	f.writes++
}

func (f *fmPorts) read(port uint8) uint8 {
	return 0
}

// Register returns the last value written to a register in part 0 or 1.
func (f *fmPorts) Register(part int, reg uint8) uint8 {
	return f.regs[part&1][reg]
}

func (f *fmPorts) reset() {
	*f = fmPorts{}
}

// psgPort latches writes to the SN76489 compatible PSG inside the VDP.
// Registers are numbered tone0, vol0, tone1, vol1, tone2, vol2, noise, vol3.
type psgPort struct {
	latch  uint8
	regs   [8]uint16
	writes uint64
}

func (p *psgPort) write(val uint8) {
	p.writes++
	if val&0x80 != 0 {
		p.latch = (val >> 4) & 7
		r := &p.regs[p.latch]
		if p.latch&1 == 0 && p.latch != 6 {
			*r = *r&0x3F0 | uint16(val&0x0F)
		} else {
			*r = uint16(val & 0x0F)
		}
		return
	}
	r := &p.regs[p.latch]
	if p.latch&1 == 0 && p.latch != 6 {
		*r = *r&0x00F | uint16(val&0x3F)<<4
	} else {
		*r = uint16(val & 0x0F)
	}
}

func (p *psgPort) reset() {
	*p = psgPort{}
	// Attenuation registers power up silent.
	for i := 1; i < 8; i += 2 {
		p.regs[i] = 0x0F
	}
}
