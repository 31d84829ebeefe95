package m68k

import "math/bits"

// longSourceExtra is the additional cost of a long <ea>,Dn operation
// whose source is a register or immediate.
func longSourceExtra(kind int) int {
	switch kind {
	case eaDataReg, eaAddrReg, eaImmediate:
		return 2
	}
	return 0
}

func (c *CPU) isAdd() bool {
	return c.ir>>12 == 0xD
}

func (c *CPU) arith(dst, src, x uint32, s Size) (uint32, bool, bool) {
	if c.isAdd() {
		return add(dst, src, x, s)
	}
	return sub(dst, src, x, s)
}

// execArith is ADD/SUB in both directions.
func (c *CPU) execArith() {
	s := c.size()
	dn := (c.ir >> 9) & 7
	o := c.resolve(c.ir&0x3F, s)

	if c.ir&0x0100 == 0 {
		src := c.readOperand(&o, s)
		res, carry, over := c.arith(c.reg.D[dn], src, 0, s)
		c.reg.D[dn] = c.reg.D[dn]&^s.Mask() | res
		c.setArithFlags(res, carry, over, s)
		if s == Long {
			c.cycles += uint64(6 + longSourceExtra(o.kind) + eaTime(o.kind, s))
		} else {
			c.cycles += uint64(4 + eaTime(o.kind, s))
		}
		return
	}

	dst := c.readOperand(&o, s)
	res, carry, over := c.arith(dst, c.reg.D[dn], 0, s)
	c.setArithFlags(res, carry, over, s)
	c.writeOperand(&o, s, res)
	c.cycles += uint64(memOpBase(s) + eaTime(o.kind, s))
}

// memOpBase is the base cost of a read-modify-write on memory.
func memOpBase(s Size) int {
	if s == Long {
		return 12
	}
	return 8
}

// execAddrArith is ADDA/SUBA. No flags are affected.
func (c *CPU) execAddrArith() {
	s := c.size()
	an := (c.ir >> 9) & 7
	o := c.resolve(c.ir&0x3F, s)
	src := signExtend(c.readOperand(&o, s), s)
	if c.isAdd() {
		c.reg.A[an] += src
	} else {
		c.reg.A[an] -= src
	}
	if s == Long {
		c.cycles += uint64(6 + longSourceExtra(o.kind) + eaTime(o.kind, s))
	} else {
		c.cycles += uint64(8 + eaTime(o.kind, s))
	}
}

// execExtended is ADDX/SUBX, register or -(Ay),-(Ax) form.
func (c *CPU) execExtended() {
	s := c.size()
	rx := (c.ir >> 9) & 7
	ry := c.ir & 7

	if c.ir&0x0008 == 0 {
		res, carry, over := c.arith(c.reg.D[rx], c.reg.D[ry], c.xBit(), s)
		c.reg.D[rx] = c.reg.D[rx]&^s.Mask() | res
		c.setExtendedFlags(res, carry, over, s)
		if s == Long {
			c.cycles += 8
		} else {
			c.cycles += 4
		}
		return
	}

	src := c.resolve(eaPreDec<<3|ry, s)
	sv := c.readOperand(&src, s)
	dst := c.resolve(eaPreDec<<3|rx, s)
	dv := c.readOperand(&dst, s)
	res, carry, over := c.arith(dv, sv, c.xBit(), s)
	c.setExtendedFlags(res, carry, over, s)
	c.writeOperand(&dst, s, res)
	if s == Long {
		c.cycles += 30
	} else {
		c.cycles += 18
	}
}

func (c *CPU) execCmp() {
	s := c.size()
	o := c.resolve(c.ir&0x3F, s)
	src := c.readOperand(&o, s)
	res, borrow, over := sub(c.reg.D[(c.ir>>9)&7], src, 0, s)
	c.setCompareFlags(res, borrow, over, s)
	if s == Long {
		c.cycles += uint64(6 + eaTime(o.kind, s))
	} else {
		c.cycles += uint64(4 + eaTime(o.kind, s))
	}
}

func (c *CPU) execCmpa() {
	s := c.size()
	o := c.resolve(c.ir&0x3F, s)
	src := signExtend(c.readOperand(&o, s), s)
	res, borrow, over := sub(c.reg.A[(c.ir>>9)&7], src, 0, Long)
	c.setCompareFlags(res, borrow, over, Long)
	c.cycles += uint64(6 + eaTime(o.kind, s))
}

func (c *CPU) execCmpm() {
	s := c.size()
	src := c.resolve(eaPostInc<<3|c.ir&7, s)
	sv := c.readOperand(&src, s)
	dst := c.resolve(eaPostInc<<3|(c.ir>>9)&7, s)
	dv := c.readOperand(&dst, s)
	res, borrow, over := sub(dv, sv, 0, s)
	c.setCompareFlags(res, borrow, over, s)
	if s == Long {
		c.cycles += 20
	} else {
		c.cycles += 12
	}
}

// fetchImmediate reads an immediate operand of size s from the
// instruction stream.
func (c *CPU) fetchImmediate(s Size) uint32 {
	switch s {
	case Byte:
		return uint32(c.fetchWord()) & 0xFF
	case Word:
		return uint32(c.fetchWord())
	}
	return c.fetchLong()
}

func (c *CPU) execCmpi() {
	s := c.size()
	imm := c.fetchImmediate(s)
	o := c.resolve(c.ir&0x3F, s)
	dst := c.readOperand(&o, s)
	res, borrow, over := sub(dst, imm, 0, s)
	c.setCompareFlags(res, borrow, over, s)
	switch {
	case o.kind == eaDataReg && s == Long:
		c.cycles += 14
	case o.kind == eaDataReg:
		c.cycles += 8
	case s == Long:
		c.cycles += uint64(12 + eaTime(o.kind, s))
	default:
		c.cycles += uint64(8 + eaTime(o.kind, s))
	}
}

// execImmediate is ORI/ANDI/SUBI/ADDI/EORI to <ea>.
func (c *CPU) execImmediate() {
	s := c.size()
	imm := c.fetchImmediate(s)
	o := c.resolve(c.ir&0x3F, s)
	dst := c.readOperand(&o, s)

	var res uint32
	switch decodeTable[c.ir].op {
	case opOri:
		res = dst | imm
		c.setLogicFlags(res, s)
	case opAndi:
		res = dst & imm
		c.setLogicFlags(res, s)
	case opEori:
		res = dst ^ imm
		c.setLogicFlags(res, s)
	case opAddi:
		var carry, over bool
		res, carry, over = add(dst, imm, 0, s)
		c.setArithFlags(res, carry, over, s)
	default:
		var borrow, over bool
		res, borrow, over = sub(dst, imm, 0, s)
		c.setArithFlags(res, borrow, over, s)
	}
	c.writeOperand(&o, s, res&s.Mask())

	switch {
	case o.kind == eaDataReg && s == Long:
		c.cycles += 16
	case o.kind == eaDataReg:
		c.cycles += 8
	case s == Long:
		c.cycles += uint64(20 + eaTime(o.kind, s))
	default:
		c.cycles += uint64(12 + eaTime(o.kind, s))
	}
}

// execQuick is ADDQ/SUBQ. Address register destinations use the whole
// register and leave the flags alone.
func (c *CPU) execQuick() {
	s := c.size()
	data := uint32((c.ir >> 9) & 7)
	if data == 0 {
		data = 8
	}
	subtract := c.ir&0x0100 != 0
	o := c.resolve(c.ir&0x3F, s)

	if o.kind == eaAddrReg {
		if subtract {
			c.reg.A[o.reg] -= data
		} else {
			c.reg.A[o.reg] += data
		}
		c.cycles += 8
		return
	}

	dst := c.readOperand(&o, s)
	var res uint32
	var carry, over bool
	if subtract {
		res, carry, over = sub(dst, data, 0, s)
	} else {
		res, carry, over = add(dst, data, 0, s)
	}
	c.setArithFlags(res, carry, over, s)
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

// execUnary is NEGX/CLR/NEG/NOT.
func (c *CPU) execUnary() {
	s := c.size()
	op := decodeTable[c.ir].op
	o := c.resolve(c.ir&0x3F, s)

	var res uint32
	switch op {
	case opClr:
		res = 0
		c.setLogicFlags(0, s)
	case opNot:
		res = ^c.readOperand(&o, s) & s.Mask()
		c.setLogicFlags(res, s)
	case opNeg:
		var borrow, over bool
		res, borrow, over = sub(0, c.readOperand(&o, s), 0, s)
		c.setArithFlags(res, borrow, over, s)
	default:
		var borrow, over bool
		res, borrow, over = sub(0, c.readOperand(&o, s), c.xBit(), s)
		c.setExtendedFlags(res, borrow, over, s)
	}
	c.writeOperand(&o, s, res)

	switch {
	case o.kind == eaDataReg && s == Long:
		c.cycles += 6
	case o.kind == eaDataReg:
		c.cycles += 4
	default:
		c.cycles += uint64(memOpBase(s) + eaTime(o.kind, s))
	}
}

func (c *CPU) execTst() {
	s := c.size()
	o := c.resolve(c.ir&0x3F, s)
	c.setLogicFlags(c.readOperand(&o, s), s)
	c.cycles += uint64(4 + eaTime(o.kind, s))
}

func (c *CPU) execMulu() {
	o := c.resolve(c.ir&0x3F, Word)
	src := c.readOperand(&o, Word)
	dn := (c.ir >> 9) & 7
	res := (c.reg.D[dn] & 0xFFFF) * src
	c.reg.D[dn] = res
	c.setLogicFlags(res, Long)
	c.cycles += uint64(38 + 2*bits.OnesCount16(uint16(src)) + eaTime(o.kind, Word))
}

func (c *CPU) execMuls() {
	o := c.resolve(c.ir&0x3F, Word)
	src := c.readOperand(&o, Word)
	dn := (c.ir >> 9) & 7
	res := uint32(int32(int16(c.reg.D[dn])) * int32(int16(src)))
	c.reg.D[dn] = res
	c.setLogicFlags(res, Long)
	// One extra pair of cycles per 01 or 10 pattern in src:0.
	x := src << 1
	n := bits.OnesCount32((x ^ x>>1) & 0xFFFF)
	c.cycles += uint64(38 + 2*n + eaTime(o.kind, Word))
}

// divOverflow sets the flags left by an overflowing divide; the
// destination is not written.
func (c *CPU) divOverflow() {
	c.reg.SR |= flagV | flagN
	c.reg.SR &^= flagZ | flagC
}

func (c *CPU) execDivu() {
	o := c.resolve(c.ir&0x3F, Word)
	divisor := c.readOperand(&o, Word)
	ea := eaTime(o.kind, Word)
	if divisor == 0 {
		c.reg.SR &^= flagC
		c.trap(vecZeroDivide, cyclesZeroDivide+ea)
		return
	}
	dn := (c.ir >> 9) & 7
	dividend := c.reg.D[dn]
	c.cycles += uint64(divuCycles(dividend, uint16(divisor)) + ea)

	q := dividend / divisor
	if q > 0xFFFF {
		c.divOverflow()
		return
	}
	r := dividend % divisor
	c.reg.D[dn] = r<<16 | q
	c.setLogicFlags(q, Word)
}

func (c *CPU) execDivs() {
	o := c.resolve(c.ir&0x3F, Word)
	divisor := int16(c.readOperand(&o, Word))
	ea := eaTime(o.kind, Word)
	if divisor == 0 {
		c.reg.SR &^= flagC
		c.trap(vecZeroDivide, cyclesZeroDivide+ea)
		return
	}
	dn := (c.ir >> 9) & 7
	dividend := int32(c.reg.D[dn])
	c.cycles += uint64(divsCycles(dividend, divisor) + ea)

	q := int64(dividend) / int64(divisor)
	if q < -32768 || q > 32767 {
		c.divOverflow()
		return
	}
	r := int64(dividend) % int64(divisor)
	c.reg.D[dn] = uint32(uint16(r))<<16 | uint32(uint16(q))
	c.setLogicFlags(uint32(uint16(q)), Word)
}

// divuCycles is the data dependent DIVU time, replaying the 68000's
// shift-and-subtract microcode.
func divuCycles(dividend uint32, divisor uint16) int {
	if dividend>>16 >= uint32(divisor) {
		return 10
	}
	mcycles := 38
	hdivisor := uint32(divisor) << 16
	for i := 0; i < 15; i++ {
		msb := dividend&0x80000000 != 0
		dividend <<= 1
		if msb {
			dividend -= hdivisor
		} else {
			mcycles += 2
			if dividend >= hdivisor {
				dividend -= hdivisor
				mcycles--
			}
		}
	}
	return mcycles * 2
}

// divsCycles is the data dependent DIVS time.
func divsCycles(dividend int32, divisor int16) int {
	mcycles := 6
	if dividend < 0 {
		mcycles++
	}
	absDividend := uint32(dividend)
	if dividend < 0 {
		absDividend = uint32(-int64(dividend))
	}
	absDivisor := uint32(uint16(divisor))
	if divisor < 0 {
		absDivisor = uint32(-int32(divisor))
	}
	if absDividend>>16 >= absDivisor {
		return (mcycles + 2) * 2
	}
	quot := absDividend / absDivisor

	mcycles = 55
	if divisor >= 0 {
		if dividend >= 0 {
			mcycles--
		} else {
			mcycles++
		}
	}
	for i := 0; i < 15; i++ {
		if int16(quot) >= 0 {
			mcycles++
		}
		quot <<= 1
	}
	return mcycles * 2
}

// abcd adds two packed BCD bytes with extend.
func (c *CPU) abcd(dst, src uint32) uint32 {
	res := src&0x0F + dst&0x0F + c.xBit()
	v := ^res
	if res > 9 {
		res += 6
	}
	res += src&0xF0 + dst&0xF0
	carry := res > 0x99
	if carry {
		res -= 0xA0
	}
	c.setFlag(flagV, v&res&0x80 != 0)
	c.setFlag(flagC, carry)
	c.setFlag(flagX, carry)
	c.setFlag(flagN, res&0x80 != 0)
	if res&0xFF != 0 {
		c.reg.SR &^= flagZ
	}
	return res & 0xFF
}

// sbcd subtracts packed BCD src from dst with extend. The borrow comes
// from the binary subtraction, so invalid BCD inputs match the chip.
func (c *CPU) sbcd(dst, src uint32) uint32 {
	x := c.xBit()
	bin := dst - src - x
	res := bin
	if (dst&0x0F-src&0x0F-x)&0x10 != 0 {
		res -= 6
	}
	borrow := dst < src+x
	if borrow {
		res -= 0x60
	}
	carry := borrow || res&0x100 != 0
	res &= 0xFF
	c.setFlag(flagV, bin&0x80 != 0 && res&0x80 == 0)
	c.setFlag(flagC, carry)
	c.setFlag(flagX, carry)
	c.setFlag(flagN, res&0x80 != 0)
	if res != 0 {
		c.reg.SR &^= flagZ
	}
	return res
}

// execBCD is ABCD/SBCD, register or -(Ay),-(Ax) form.
func (c *CPU) execBCD() {
	rx := (c.ir >> 9) & 7
	ry := c.ir & 7
	op := c.abcd
	if decodeTable[c.ir].op == opSbcd {
		op = c.sbcd
	}

	if c.ir&0x0008 == 0 {
		res := op(c.reg.D[rx]&0xFF, c.reg.D[ry]&0xFF)
		c.reg.D[rx] = c.reg.D[rx]&^0xFF | res
		c.cycles += 6
		return
	}
	src := c.resolve(eaPreDec<<3|ry, Byte)
	sv := c.readOperand(&src, Byte)
	dst := c.resolve(eaPreDec<<3|rx, Byte)
	dv := c.readOperand(&dst, Byte)
	c.writeOperand(&dst, Byte, op(dv, sv))
	c.cycles += 18
}

func (c *CPU) execNbcd() {
	o := c.resolve(c.ir&0x3F, Byte)
	dst := c.readOperand(&o, Byte)
	res := (0x9A - dst - c.xBit()) & 0xFF

	if res != 0x9A {
		v := ^res
		if res&0x0F == 0x0A {
			res = (res & 0xF0) + 0x10
		}
		res &= 0xFF
		c.setFlag(flagV, v&res&0x80 != 0)
		c.writeOperand(&o, Byte, res)
		if res != 0 {
			c.reg.SR &^= flagZ
		}
		c.reg.SR |= flagC | flagX
		c.setFlag(flagN, res&0x80 != 0)
	} else {
		c.reg.SR &^= flagV | flagC | flagX
	}

	if o.kind == eaDataReg {
		c.cycles += 6
	} else {
		c.cycles += uint64(8 + eaTime(o.kind, Byte))
	}
}

func (c *CPU) execChk() {
	o := c.resolve(c.ir&0x3F, Word)
	bound := int16(c.readOperand(&o, Word))
	val := int16(c.reg.D[(c.ir>>9)&7])
	ea := eaTime(o.kind, Word)

	c.reg.SR &^= flagZ | flagV | flagC
	switch {
	case val < 0:
		c.reg.SR |= flagN
		c.trap(vecCHK, cyclesCHKTrap+ea)
	case val > bound:
		c.reg.SR &^= flagN
		c.trap(vecCHK, cyclesCHKTrap+ea)
	default:
		c.cycles += uint64(10 + ea)
	}
}
