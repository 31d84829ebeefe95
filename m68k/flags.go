package m68k

// condition evaluates one of the sixteen condition codes against SR.
func (c *CPU) condition(cc uint16) bool {
	sr := c.reg.SR
	carry := sr&flagC != 0
	over := sr&flagV != 0
	zero := sr&flagZ != 0
	neg := sr&flagN != 0
	switch cc & 0xF {
	case 0x0: // T
		return true
	case 0x1: // F
		return false
	case 0x2: // HI
		return !carry && !zero
	case 0x3: // LS
		return carry || zero
	case 0x4: // CC
		return !carry
	case 0x5: // CS
		return carry
	case 0x6: // NE
		return !zero
	case 0x7: // EQ
		return zero
	case 0x8: // VC
		return !over
	case 0x9: // VS
		return over
	case 0xA: // PL
		return !neg
	case 0xB: // MI
		return neg
	case 0xC: // GE
		return neg == over
	case 0xD: // LT
		return neg != over
	case 0xE: // GT
		return !zero && neg == over
	}
	// LE
	return zero || neg != over
}

func (c *CPU) setFlag(f uint16, on bool) {
	if on {
		c.reg.SR |= f
	} else {
		c.reg.SR &^= f
	}
}

// setLogicFlags sets N and Z from the result and clears V and C.
func (c *CPU) setLogicFlags(res uint32, s Size) {
	res &= s.Mask()
	c.reg.SR &^= flagN | flagZ | flagV | flagC
	if res == 0 {
		c.reg.SR |= flagZ
	}
	if res&s.MSB() != 0 {
		c.reg.SR |= flagN
	}
}

// add computes dst+src+x and returns the masked result with the carry
// and overflow conditions.
func add(dst, src, x uint32, s Size) (res uint32, carry, over bool) {
	m := s.Mask()
	dst &= m
	src &= m
	full := uint64(dst) + uint64(src) + uint64(x)
	res = uint32(full) & m
	carry = full>>uint(s.Bits()) != 0
	over = (^(dst ^ src) & (dst ^ res) & s.MSB()) != 0
	return
}

// sub computes dst-src-x.
func sub(dst, src, x uint32, s Size) (res uint32, borrow, over bool) {
	m := s.Mask()
	dst &= m
	src &= m
	full := uint64(dst) - uint64(src) - uint64(x)
	res = uint32(full) & m
	borrow = uint64(src)+uint64(x) > uint64(dst)
	over = ((dst ^ src) & (dst ^ res) & s.MSB()) != 0
	return
}

// setArithFlags sets XNZVC for ADD/SUB/NEG style results.
func (c *CPU) setArithFlags(res uint32, carry, over bool, s Size) {
	c.setCompareFlags(res, carry, over, s)
	c.setFlag(flagX, carry)
}

// setCompareFlags sets NZVC and leaves X untouched.
func (c *CPU) setCompareFlags(res uint32, carry, over bool, s Size) {
	c.setFlag(flagN, res&s.MSB() != 0)
	c.setFlag(flagZ, res&s.Mask() == 0)
	c.setFlag(flagV, over)
	c.setFlag(flagC, carry)
}

// setExtendedFlags handles ADDX/SUBX/NEGX: Z is only ever cleared.
func (c *CPU) setExtendedFlags(res uint32, carry, over bool, s Size) {
	c.setFlag(flagN, res&s.MSB() != 0)
	if res&s.Mask() != 0 {
		c.reg.SR &^= flagZ
	}
	c.setFlag(flagV, over)
	c.setFlag(flagC, carry)
	c.setFlag(flagX, carry)
}

func (c *CPU) xBit() uint32 {
	if c.reg.SR&flagX != 0 {
		return 1
	}
	return 0
}
