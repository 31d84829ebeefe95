package m68k

// Timing for instructions that only compute a control address, indexed
// by addressing kind.
var (
	leaCycles = [eaInvalid]int{eaIndirect: 4, eaDisp: 8, eaIndex: 12, eaAbsShort: 8, eaAbsLong: 12, eaPCDisp: 8, eaPCIndex: 12}
	peaCycles = [eaInvalid]int{eaIndirect: 12, eaDisp: 16, eaIndex: 20, eaAbsShort: 16, eaAbsLong: 20, eaPCDisp: 16, eaPCIndex: 20}
	jmpCycles = [eaInvalid]int{eaIndirect: 8, eaDisp: 10, eaIndex: 14, eaAbsShort: 10, eaAbsLong: 12, eaPCDisp: 10, eaPCIndex: 14}
	jsrCycles = [eaInvalid]int{eaIndirect: 16, eaDisp: 18, eaIndex: 22, eaAbsShort: 18, eaAbsLong: 20, eaPCDisp: 18, eaPCIndex: 22}

	movemToRegCycles = [eaInvalid]int{eaIndirect: 12, eaPostInc: 12, eaDisp: 16, eaIndex: 18, eaAbsShort: 16, eaAbsLong: 20, eaPCDisp: 16, eaPCIndex: 18}
	movemToMemCycles = [eaInvalid]int{eaIndirect: 8, eaPreDec: 8, eaDisp: 12, eaIndex: 14, eaAbsShort: 12, eaAbsLong: 16}
)

func (c *CPU) size() Size {
	return decodeTable[c.ir].size
}

func (c *CPU) srcKind() int {
	return eaKind((c.ir>>3)&7, c.ir&7)
}

// moveDestTime is the MOVE destination cost; -(An) costs the same as (An).
func moveDestTime(kind int, s Size) int {
	if kind == eaPreDec {
		kind = eaIndirect
	}
	return eaTime(kind, s)
}

func (c *CPU) execMove() {
	s := c.size()
	src := c.resolve(c.ir&0x3F, s)
	v := c.readOperand(&src, s)

	field := (c.ir>>3)&0x38 | (c.ir>>9)&7
	dst := c.resolve(field, s)
	c.setLogicFlags(v, s)
	c.writeOperand(&dst, s, v)

	c.cycles += uint64(4 + eaTime(src.kind, s) + moveDestTime(dst.kind, s))
}

func (c *CPU) execMovea() {
	s := c.size()
	src := c.resolve(c.ir&0x3F, s)
	v := signExtend(c.readOperand(&src, s), s)
	c.reg.A[(c.ir>>9)&7] = v
	c.cycles += uint64(4 + eaTime(src.kind, s))
}

func (c *CPU) execMoveq() {
	v := signExtend(uint32(c.ir&0xFF), Byte)
	c.reg.D[(c.ir>>9)&7] = v
	c.setLogicFlags(v, Long)
	c.cycles += 4
}

// register returns D0-D7 for 0-7 and A0-A7 for 8-15.
func (c *CPU) register(n int) uint32 {
	if n < 8 {
		return c.reg.D[n]
	}
	return c.reg.A[n-8]
}

func (c *CPU) setRegister(n int, v uint32) {
	if n < 8 {
		c.reg.D[n] = v
	} else {
		c.reg.A[n-8] = v
	}
}

func (c *CPU) execMovemToMem() {
	s := c.size()
	mask := c.fetchWord()
	kind := c.srcKind()
	count := 0

	if kind == eaPreDec {
		an := c.ir & 7
		addr := c.reg.A[an]
		// Mask is reversed: bit 0 is A7, bit 15 is D0.
		for i := 0; i < 16; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			addr -= uint32(s)
			c.write(s, addr, c.register(15-i))
			count++
		}
		c.reg.A[an] = addr
	} else {
		addr := c.eaAddress(c.ir & 0x3F)
		for i := 0; i < 16; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			c.write(s, addr, c.register(i))
			addr += uint32(s)
			count++
		}
	}
	c.cycles += uint64(movemToMemCycles[kind] + count*int(s)*2)
}

func (c *CPU) execMovemToReg() {
	s := c.size()
	mask := c.fetchWord()
	kind := c.srcKind()
	count := 0

	var addr uint32
	if kind == eaPostInc {
		addr = c.reg.A[c.ir&7]
	} else {
		addr = c.eaAddress(c.ir & 0x3F)
	}
	for i := 0; i < 16; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		c.setRegister(i, signExtend(c.read(s, addr), s))
		addr += uint32(s)
		count++
	}
	if kind == eaPostInc {
		c.reg.A[c.ir&7] = addr
	}
	c.cycles += uint64(movemToRegCycles[kind] + count*int(s)*2)
}

func (c *CPU) execMovep() {
	s := c.size()
	dn := (c.ir >> 9) & 7
	addr := c.reg.A[c.ir&7] + signExtend(uint32(c.fetchWord()), Word)
	shifts := int(s) - 1

	if c.ir&0x0080 != 0 {
		v := c.reg.D[dn]
		for i := shifts; i >= 0; i-- {
			c.write(Byte, addr, v>>(uint(i)*8))
			addr += 2
		}
	} else {
		var v uint32
		for i := 0; i <= shifts; i++ {
			v = v<<8 | c.read(Byte, addr)
			addr += 2
		}
		m := s.Mask()
		c.reg.D[dn] = c.reg.D[dn]&^m | v
	}
	if s == Long {
		c.cycles += 24
	} else {
		c.cycles += 16
	}
}

func (c *CPU) execLea() {
	kind := c.srcKind()
	c.reg.A[(c.ir>>9)&7] = c.eaAddress(c.ir & 0x3F)
	c.cycles += uint64(leaCycles[kind])
}

func (c *CPU) execPea() {
	kind := c.srcKind()
	addr := c.eaAddress(c.ir & 0x3F)
	c.push(Long, addr)
	c.cycles += uint64(peaCycles[kind])
}

func (c *CPU) execExg() {
	rx := int((c.ir >> 9) & 7)
	ry := int(c.ir & 7)
	switch c.ir & 0x01F8 {
	case 0x0140:
	case 0x0148:
		rx += 8
		ry += 8
	default:
		ry += 8
	}
	x := c.register(rx)
	c.setRegister(rx, c.register(ry))
	c.setRegister(ry, x)
	c.cycles += 6
}

func (c *CPU) execSwap() {
	r := c.ir & 7
	v := c.reg.D[r]<<16 | c.reg.D[r]>>16
	c.reg.D[r] = v
	c.setLogicFlags(v, Long)
	c.cycles += 4
}

func (c *CPU) execExt() {
	r := c.ir & 7
	if c.size() == Word {
		v := signExtend(c.reg.D[r], Byte) & 0xFFFF
		c.reg.D[r] = c.reg.D[r]&0xFFFF0000 | v
		c.setLogicFlags(v, Word)
	} else {
		v := signExtend(c.reg.D[r], Word)
		c.reg.D[r] = v
		c.setLogicFlags(v, Long)
	}
	c.cycles += 4
}

func (c *CPU) execLink() {
	an := c.ir & 7
	disp := signExtend(uint32(c.fetchWord()), Word)
	c.push(Long, c.reg.A[an])
	c.reg.A[an] = c.reg.A[7]
	c.reg.A[7] += disp
	c.cycles += 16
}

func (c *CPU) execUnlk() {
	an := c.ir & 7
	c.reg.A[7] = c.reg.A[an]
	c.reg.A[an] = c.pop(Long)
	c.cycles += 12
}

func (c *CPU) execMoveUSP() {
	if !c.supervisor() {
		c.privilegeViolation()
		return
	}
	an := c.ir & 7
	if c.ir&0x0008 != 0 {
		c.reg.A[an] = c.reg.USP
	} else {
		c.reg.USP = c.reg.A[an]
	}
	c.cycles += 4
}
