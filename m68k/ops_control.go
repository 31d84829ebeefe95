package m68k

// branchTarget returns the destination of a Bcc/BSR, consuming the word
// displacement when the byte displacement is zero.
func (c *CPU) branchTarget() (target uint32, wordForm bool) {
	base := c.opPC + 2
	disp := c.ir & 0xFF
	if disp == 0 {
		d := signExtend(uint32(c.fetchWord()), Word)
		return base + d, true
	}
	return base + signExtend(uint32(disp), Byte), false
}

func (c *CPU) execBcc() {
	target, wordForm := c.branchTarget()
	if c.condition(c.ir >> 8) {
		c.reg.PC = target
		c.cycles += 10
		return
	}
	if wordForm {
		c.cycles += 12
	} else {
		c.cycles += 8
	}
}

func (c *CPU) execBsr() {
	target, _ := c.branchTarget()
	c.push(Long, c.reg.PC)
	c.reg.PC = target
	c.cycles += 18
}

func (c *CPU) execDbcc() {
	base := c.reg.PC
	disp := signExtend(uint32(c.fetchWord()), Word)
	if c.condition(c.ir >> 8) {
		c.cycles += 12
		return
	}
	dn := c.ir & 7
	counter := uint16(c.reg.D[dn]) - 1
	c.reg.D[dn] = c.reg.D[dn]&0xFFFF0000 | uint32(counter)
	if counter == 0xFFFF {
		c.cycles += 14
		return
	}
	c.reg.PC = base + disp
	c.cycles += 10
}

func (c *CPU) execJmp() {
	kind := c.srcKind()
	c.reg.PC = c.eaAddress(c.ir & 0x3F)
	c.cycles += uint64(jmpCycles[kind])
}

func (c *CPU) execJsr() {
	kind := c.srcKind()
	target := c.eaAddress(c.ir & 0x3F)
	c.push(Long, c.reg.PC)
	c.reg.PC = target
	c.cycles += uint64(jsrCycles[kind])
}

func (c *CPU) execRts() {
	c.reg.PC = c.pop(Long)
	c.cycles += 16
}

func (c *CPU) execRte() {
	if !c.supervisor() {
		c.privilegeViolation()
		return
	}
	sr := uint16(c.pop(Word))
	pc := c.pop(Long)
	c.setSR(sr)
	c.reg.PC = pc
	c.cycles += 20
}

func (c *CPU) execRtr() {
	ccr := uint8(c.pop(Word))
	c.reg.PC = c.pop(Long)
	c.setCCR(ccr)
	c.cycles += 20
}

func (c *CPU) execTrap() {
	c.trap(vecTrapBase+int(c.ir&0xF), cyclesTrap)
}

func (c *CPU) execTrapv() {
	if c.reg.SR&flagV != 0 {
		c.trap(vecTRAPV, cyclesTrap)
		return
	}
	c.cycles += 4
}

func (c *CPU) execStop() {
	if !c.supervisor() {
		c.privilegeViolation()
		return
	}
	c.setSR(c.fetchWord())
	c.stopped = true
	c.cycles += 4
}

func (c *CPU) execReset() {
	if !c.supervisor() {
		c.privilegeViolation()
		return
	}
	if c.resetter != nil {
		c.resetter.ResetDevices()
	}
	c.cycles += 132
}

func (c *CPU) execMoveFromSR() {
	o := c.resolve(c.ir&0x3F, Word)
	c.writeOperand(&o, Word, uint32(c.reg.SR))
	if o.kind == eaDataReg {
		c.cycles += 6
	} else {
		c.cycles += uint64(8 + eaTime(o.kind, Word))
	}
}

func (c *CPU) execMoveToCCR() {
	o := c.resolve(c.ir&0x3F, Word)
	c.setCCR(uint8(c.readOperand(&o, Word)))
	c.cycles += uint64(12 + eaTime(o.kind, Word))
}

func (c *CPU) execMoveToSR() {
	if !c.supervisor() {
		c.privilegeViolation()
		return
	}
	o := c.resolve(c.ir&0x3F, Word)
	c.setSR(uint16(c.readOperand(&o, Word)))
	c.cycles += uint64(12 + eaTime(o.kind, Word))
}
