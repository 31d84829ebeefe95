package m68k

// Effective address kinds. Mode 7 is split by its register field.
const (
	eaDataReg = iota
	eaAddrReg
	eaIndirect
	eaPostInc
	eaPreDec
	eaDisp
	eaIndex
	eaAbsShort
	eaAbsLong
	eaPCDisp
	eaPCIndex
	eaImmediate
	eaInvalid
)

// eaKind maps a mode/register pair to an addressing kind.
func eaKind(mode, reg uint16) int {
	if mode < 7 {
		return int(mode)
	}
	if reg <= 4 {
		return eaAbsShort + int(reg)
	}
	return eaInvalid
}

// Addressing categories as bit sets over the kinds.
const (
	catAll             = 1<<eaImmediate<<1 - 1
	catData            = catAll &^ (1 << eaAddrReg)
	catMemory          = catData &^ (1 << eaDataReg)
	catControl         = 1<<eaIndirect | 1<<eaDisp | 1<<eaIndex | 1<<eaAbsShort | 1<<eaAbsLong | 1<<eaPCDisp | 1<<eaPCIndex
	catAlterable       = 1<<eaDataReg | 1<<eaAddrReg | 1<<eaIndirect | 1<<eaPostInc | 1<<eaPreDec | 1<<eaDisp | 1<<eaIndex | 1<<eaAbsShort | 1<<eaAbsLong
	catDataAlterable   = catAlterable &^ (1 << eaAddrReg)
	catMemoryAlterable = catDataAlterable &^ (1 << eaDataReg)
)

// allowed reports whether the mode/reg field in the low six bits of
// field is a member of the category.
func allowed(field uint16, cat int) bool {
	k := eaKind((field>>3)&7, field&7)
	return k != eaInvalid && cat&(1<<k) != 0
}

// eaCycles is the effective address calculation time for byte/word and
// long operands, indexed by kind.
var eaCycles = [eaInvalid][2]int{
	eaDataReg:   {0, 0},
	eaAddrReg:   {0, 0},
	eaIndirect:  {4, 8},
	eaPostInc:   {4, 8},
	eaPreDec:    {6, 10},
	eaDisp:      {8, 12},
	eaIndex:     {10, 14},
	eaAbsShort:  {8, 12},
	eaAbsLong:   {12, 16},
	eaPCDisp:    {8, 12},
	eaPCIndex:   {10, 14},
	eaImmediate: {4, 8},
}

func eaTime(kind int, s Size) int {
	if s == Long {
		return eaCycles[kind][1]
	}
	return eaCycles[kind][0]
}

// operand is a resolved effective address. Resolution performs every
// side effect (extension fetches, register adjustment) exactly once.
type operand struct {
	kind int
	reg  uint16
	addr uint32
	imm  uint32
}

func (o *operand) isReg() bool {
	return o.kind == eaDataReg || o.kind == eaAddrReg
}

// resolve decodes the six-bit mode/register field for an operand of
// size s.
func (c *CPU) resolve(field uint16, s Size) operand {
	reg := field & 7
	o := operand{kind: eaKind((field>>3)&7, reg), reg: reg}
	switch o.kind {
	case eaIndirect:
		o.addr = c.reg.A[reg]
	case eaPostInc:
		o.addr = c.reg.A[reg]
		c.reg.A[reg] += stepFor(reg, s)
	case eaPreDec:
		c.reg.A[reg] -= stepFor(reg, s)
		o.addr = c.reg.A[reg]
	case eaDisp:
		o.addr = c.reg.A[reg] + signExtend(uint32(c.fetchWord()), Word)
	case eaIndex:
		o.addr = c.indexed(c.reg.A[reg])
	case eaAbsShort:
		o.addr = signExtend(uint32(c.fetchWord()), Word)
	case eaAbsLong:
		o.addr = c.fetchLong()
	case eaPCDisp:
		base := c.reg.PC
		o.addr = base + signExtend(uint32(c.fetchWord()), Word)
	case eaPCIndex:
		o.addr = c.indexed(c.reg.PC)
	case eaImmediate:
		switch s {
		case Byte:
			o.imm = uint32(c.fetchWord()) & 0xFF
		case Word:
			o.imm = uint32(c.fetchWord())
		default:
			o.imm = c.fetchLong()
		}
	}
	return o
}

// stepFor is the (An)+/-(An) adjustment. Byte access through A7 keeps
// the stack word aligned.
func stepFor(reg uint16, s Size) uint32 {
	if s == Byte && reg == 7 {
		return 2
	}
	return uint32(s)
}

// indexed consumes a brief extension word: d8(base,Xn.size).
func (c *CPU) indexed(base uint32) uint32 {
	ext := c.fetchWord()
	xn := (ext >> 12) & 7
	var idx uint32
	if ext&0x8000 != 0 {
		idx = c.reg.A[xn]
	} else {
		idx = c.reg.D[xn]
	}
	if ext&0x0800 == 0 {
		idx = signExtend(idx, Word)
	}
	return base + idx + signExtend(uint32(ext), Byte)
}

func (c *CPU) readOperand(o *operand, s Size) uint32 {
	switch o.kind {
	case eaDataReg:
		return c.reg.D[o.reg] & s.Mask()
	case eaAddrReg:
		return c.reg.A[o.reg] & s.Mask()
	case eaImmediate:
		return o.imm & s.Mask()
	}
	return c.read(s, o.addr)
}

func (c *CPU) writeOperand(o *operand, s Size, v uint32) {
	switch o.kind {
	case eaDataReg:
		m := s.Mask()
		c.reg.D[o.reg] = c.reg.D[o.reg]&^m | v&m
	case eaAddrReg:
		c.reg.A[o.reg] = v
	default:
		c.write(s, o.addr, v)
	}
}

// eaAddress resolves a control-mode field to its address.
func (c *CPU) eaAddress(field uint16) uint32 {
	o := c.resolve(field, Long)
	return o.addr
}
