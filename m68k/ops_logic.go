package m68k

// execLogic is AND/OR in both directions.
func (c *CPU) execLogic() {
	s := c.size()
	dn := (c.ir >> 9) & 7
	and := decodeTable[c.ir].op == opAnd
	o := c.resolve(c.ir&0x3F, s)

	apply := func(a, b uint32) uint32 {
		if and {
			return a & b
		}
		return a | b
	}

	if c.ir&0x0100 == 0 {
		res := apply(c.reg.D[dn], c.readOperand(&o, s)) & s.Mask()
		c.reg.D[dn] = c.reg.D[dn]&^s.Mask() | res
		c.setLogicFlags(res, s)
		if s == Long {
			c.cycles += uint64(6 + longSourceExtra(o.kind) + eaTime(o.kind, s))
		} else {
			c.cycles += uint64(4 + eaTime(o.kind, s))
		}
		return
	}

	res := apply(c.readOperand(&o, s), c.reg.D[dn]) & s.Mask()
	c.setLogicFlags(res, s)
	c.writeOperand(&o, s, res)
	c.cycles += uint64(memOpBase(s) + eaTime(o.kind, s))
}

func (c *CPU) execEor() {
	s := c.size()
	o := c.resolve(c.ir&0x3F, s)
	res := (c.readOperand(&o, s) ^ c.reg.D[(c.ir>>9)&7]) & s.Mask()
	c.setLogicFlags(res, s)
	c.writeOperand(&o, s, res)
	switch {
	case o.kind == eaDataReg && s == Long:
		c.cycles += 8
	case o.kind == eaDataReg:
		c.cycles += 4
	default:
		c.cycles += uint64(memOpBase(s) + eaTime(o.kind, s))
	}
}

// execLogicCCR is ORI/ANDI/EORI to CCR.
func (c *CPU) execLogicCCR() {
	imm := uint8(c.fetchWord())
	ccr := uint8(c.reg.SR)
	switch decodeTable[c.ir].op {
	case opOriCCR:
		ccr |= imm
	case opAndiCCR:
		ccr &= imm
	default:
		ccr ^= imm
	}
	c.setCCR(ccr)
	c.cycles += 20
}

// execLogicSR is ORI/ANDI/EORI to SR, all privileged.
func (c *CPU) execLogicSR() {
	if !c.supervisor() {
		c.privilegeViolation()
		return
	}
	imm := c.fetchWord()
	sr := c.reg.SR
	switch decodeTable[c.ir].op {
	case opOriSR:
		sr |= imm
	case opAndiSR:
		sr &= imm
	default:
		sr ^= imm
	}
	c.setSR(sr)
	c.cycles += 20
}

// Bit operation cycle costs: register destination and memory base, for
// the dynamic (Dn) and static (#n) forms, indexed by BTST/BCHG/BCLR/BSET.
// Register costs are for bit numbers 16-31; BCHG/BCLR/BSET on a lower
// bit take 2 fewer cycles.
var (
	bitRegDynamic = [4]int{6, 8, 10, 8}
	bitMemDynamic = [4]int{4, 8, 8, 8}
	bitRegStatic  = [4]int{10, 12, 14, 12}
	bitMemStatic  = [4]int{8, 12, 12, 12}
)

func bitLowSaving(kind uint16, bit uint32) int {
	if kind != 0 && bit < 16 {
		return 2
	}
	return 0
}

// execBit is BTST/BCHG/BCLR/BSET with a register or immediate bit number.
// Data registers operate on 32 bits, memory on a byte.
func (c *CPU) execBit() {
	static := decodeTable[c.ir].op == opBitImm
	kind := (c.ir >> 6) & 3

	var bit uint32
	if static {
		bit = uint32(c.fetchWord())
	} else {
		bit = c.reg.D[(c.ir>>9)&7]
	}

	s := c.size()
	o := c.resolve(c.ir&0x3F, s)
	bit &= uint32(s.Bits() - 1)
	mask := uint32(1) << bit

	v := c.readOperand(&o, s)
	c.setFlag(flagZ, v&mask == 0)
	switch kind {
	case 1:
		c.writeOperand(&o, s, v^mask)
	case 2:
		c.writeOperand(&o, s, v&^mask)
	case 3:
		c.writeOperand(&o, s, v|mask)
	}

	switch {
	case o.kind == eaDataReg && static:
		c.cycles += uint64(bitRegStatic[kind] - bitLowSaving(kind, bit))
	case o.kind == eaDataReg:
		c.cycles += uint64(bitRegDynamic[kind] - bitLowSaving(kind, bit))
	case static:
		c.cycles += uint64(bitMemStatic[kind] + eaTime(o.kind, Byte))
	default:
		c.cycles += uint64(bitMemDynamic[kind] + eaTime(o.kind, Byte))
	}
}

// execTas tests a byte and sets its bit 7 with a read-modify-write cycle.
func (c *CPU) execTas() {
	o := c.resolve(c.ir&0x3F, Byte)
	v := c.readOperand(&o, Byte)
	c.setLogicFlags(v, Byte)
	if o.kind == eaDataReg || c.rmw == nil || c.rmw.CompletesReadModifyWrite() {
		c.writeOperand(&o, Byte, v|0x80)
	}
	if o.kind == eaDataReg {
		c.cycles += 4
	} else {
		c.cycles += uint64(10 + eaTime(o.kind, Byte))
	}
}

func (c *CPU) execScc() {
	o := c.resolve(c.ir&0x3F, Byte)
	cond := c.condition(c.ir >> 8)
	var v uint32
	if cond {
		v = 0xFF
	}
	c.writeOperand(&o, Byte, v)
	switch {
	case o.kind == eaDataReg && cond:
		c.cycles += 6
	case o.kind == eaDataReg:
		c.cycles += 4
	default:
		c.cycles += uint64(8 + eaTime(o.kind, Byte))
	}
}

// Shift and rotate kinds (instruction bits 4:3, or 10:9 for memory).
const (
	shiftArith = iota
	shiftLogical
	rotateExtend
	rotate
)

// shift applies count single-bit steps and sets XNZVC. Only ASL can
// set V; a zero count clears C except for ROXL/ROXR, where C takes X.
func (c *CPU) shift(kind int, left bool, v uint32, count int, s Size) uint32 {
	m := s.Mask()
	msb := s.MSB()
	v &= m
	x := c.reg.SR&flagX != 0
	carry := false
	over := false

	for i := 0; i < count; i++ {
		switch kind {
		case shiftArith:
			if left {
				carry = v&msb != 0
				next := (v << 1) & m
				if (next^v)&msb != 0 {
					over = true
				}
				v = next
			} else {
				carry = v&1 != 0
				v = v>>1 | v&msb
			}
		case shiftLogical:
			if left {
				carry = v&msb != 0
				v = (v << 1) & m
			} else {
				carry = v&1 != 0
				v >>= 1
			}
		case rotateExtend:
			if left {
				carry = v&msb != 0
				v = (v << 1) & m
				if x {
					v |= 1
				}
			} else {
				carry = v&1 != 0
				v >>= 1
				if x {
					v |= msb
				}
			}
			x = carry
		default:
			if left {
				carry = v&msb != 0
				v = (v << 1) & m
				if carry {
					v |= 1
				}
			} else {
				carry = v&1 != 0
				v >>= 1
				if carry {
					v |= msb
				}
			}
		}
	}

	c.setFlag(flagN, v&msb != 0)
	c.setFlag(flagZ, v == 0)
	c.setFlag(flagV, over)
	switch {
	case count == 0 && kind == rotateExtend:
		c.setFlag(flagC, x)
	case count == 0:
		c.reg.SR &^= flagC
	default:
		c.setFlag(flagC, carry)
		if kind != rotate {
			c.setFlag(flagX, carry)
		}
	}
	return v
}

func (c *CPU) execShiftReg() {
	s := c.size()
	dy := c.ir & 7
	left := c.ir&0x0100 != 0
	kind := int((c.ir >> 3) & 3)

	count := int((c.ir >> 9) & 7)
	if c.ir&0x0020 != 0 {
		count = int(c.reg.D[count] & 63)
	} else if count == 0 {
		count = 8
	}

	res := c.shift(kind, left, c.reg.D[dy], count, s)
	c.reg.D[dy] = c.reg.D[dy]&^s.Mask() | res

	base := 6
	if s == Long {
		base = 8
	}
	c.cycles += uint64(base + 2*count)
}

func (c *CPU) execShiftMem() {
	o := c.resolve(c.ir&0x3F, Word)
	left := c.ir&0x0100 != 0
	kind := int((c.ir >> 9) & 3)
	res := c.shift(kind, left, c.readOperand(&o, Word), 1, Word)
	c.writeOperand(&o, Word, res)
	c.cycles += uint64(8 + eaTime(o.kind, Word))
}
