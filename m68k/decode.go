package m68k

// opcode identifies the handler for an instruction word.
type opcode uint8

const (
	opIllegal opcode = iota
	opLineA
	opLineF

	opOriCCR
	opOriSR
	opAndiCCR
	opAndiSR
	opEoriCCR
	opEoriSR
	opOri
	opAndi
	opSubi
	opAddi
	opEori
	opCmpi
	opBitReg
	opBitImm
	opMovep

	opMove
	opMovea
	opMoveq

	opMoveFromSR
	opMoveToCCR
	opMoveToSR
	opNegx
	opClr
	opNeg
	opNot
	opNbcd
	opSwap
	opPea
	opExt
	opMovemToMem
	opMovemToReg
	opTas
	opTst
	opTrap
	opLink
	opUnlk
	opMoveUSP
	opReset
	opNop
	opStop
	opRte
	opRts
	opTrapv
	opRtr
	opJsr
	opJmp
	opLea
	opChk

	opAddq
	opSubq
	opScc
	opDbcc
	opBcc
	opBsr

	opDivu
	opDivs
	opSbcd
	opOr
	opSuba
	opSubx
	opSub
	opCmpa
	opCmpm
	opEor
	opCmp
	opMulu
	opMuls
	opAbcd
	opExg
	opAnd
	opAdda
	opAddx
	opAdd
	opShiftMem
	opShiftReg

	opCount
)

// instruction is a decode table entry.
type instruction struct {
	op   opcode
	size Size
}

var decodeTable [0x10000]instruction

var handlers [opCount]func(*CPU)

func init() {
	handlers = [opCount]func(*CPU){
		opIllegal: func(c *CPU) { c.illegal(vecIllegal) },
		opLineA:   func(c *CPU) { c.illegal(vecLineA) },
		opLineF:   func(c *CPU) { c.illegal(vecLineF) },

		opOriCCR:  (*CPU).execLogicCCR,
		opOriSR:   (*CPU).execLogicSR,
		opAndiCCR: (*CPU).execLogicCCR,
		opAndiSR:  (*CPU).execLogicSR,
		opEoriCCR: (*CPU).execLogicCCR,
		opEoriSR:  (*CPU).execLogicSR,
		opOri:     (*CPU).execImmediate,
		opAndi:    (*CPU).execImmediate,
		opSubi:    (*CPU).execImmediate,
		opAddi:    (*CPU).execImmediate,
		opEori:    (*CPU).execImmediate,
		opCmpi:    (*CPU).execCmpi,
		opBitReg:  (*CPU).execBit,
		opBitImm:  (*CPU).execBit,
		opMovep:   (*CPU).execMovep,

		opMove:  (*CPU).execMove,
		opMovea: (*CPU).execMovea,
		opMoveq: (*CPU).execMoveq,

		opMoveFromSR: (*CPU).execMoveFromSR,
		opMoveToCCR:  (*CPU).execMoveToCCR,
		opMoveToSR:   (*CPU).execMoveToSR,
		opNegx:       (*CPU).execUnary,
		opClr:        (*CPU).execUnary,
		opNeg:        (*CPU).execUnary,
		opNot:        (*CPU).execUnary,
		opNbcd:       (*CPU).execNbcd,
		opSwap:       (*CPU).execSwap,
		opPea:        (*CPU).execPea,
		opExt:        (*CPU).execExt,
		opMovemToMem: (*CPU).execMovemToMem,
		opMovemToReg: (*CPU).execMovemToReg,
		opTas:        (*CPU).execTas,
		opTst:        (*CPU).execTst,
		opTrap:       (*CPU).execTrap,
		opLink:       (*CPU).execLink,
		opUnlk:       (*CPU).execUnlk,
		opMoveUSP:    (*CPU).execMoveUSP,
		opReset:      (*CPU).execReset,
		opNop:        func(c *CPU) { c.cycles += 4 },
		opStop:       (*CPU).execStop,
		opRte:        (*CPU).execRte,
		opRts:        (*CPU).execRts,
		opTrapv:      (*CPU).execTrapv,
		opRtr:        (*CPU).execRtr,
		opJsr:        (*CPU).execJsr,
		opJmp:        (*CPU).execJmp,
		opLea:        (*CPU).execLea,
		opChk:        (*CPU).execChk,

		opAddq: (*CPU).execQuick,
		opSubq: (*CPU).execQuick,
		opScc:  (*CPU).execScc,
		opDbcc: (*CPU).execDbcc,
		opBcc:  (*CPU).execBcc,
		opBsr:  (*CPU).execBsr,

		opDivu:     (*CPU).execDivu,
		opDivs:     (*CPU).execDivs,
		opSbcd:     (*CPU).execBCD,
		opOr:       (*CPU).execLogic,
		opSuba:     (*CPU).execAddrArith,
		opSubx:     (*CPU).execExtended,
		opSub:      (*CPU).execArith,
		opCmpa:     (*CPU).execCmpa,
		opCmpm:     (*CPU).execCmpm,
		opEor:      (*CPU).execEor,
		opCmp:      (*CPU).execCmp,
		opMulu:     (*CPU).execMulu,
		opMuls:     (*CPU).execMuls,
		opAbcd:     (*CPU).execBCD,
		opExg:      (*CPU).execExg,
		opAnd:      (*CPU).execLogic,
		opAdda:     (*CPU).execAddrArith,
		opAddx:     (*CPU).execExtended,
		opAdd:      (*CPU).execArith,
		opShiftMem: (*CPU).execShiftMem,
		opShiftReg: (*CPU).execShiftReg,
	}

	for i := range decodeTable {
		decodeTable[i] = decode(uint16(i))
	}
}

// Decoded returns the operation name for an opcode word. Invalid
// encodings report "ILLEGAL", "LINEA" or "LINEF".
func Decoded(op uint16) string {
	return opNames[decodeTable[op].op]
}

var opNames = [opCount]string{
	opIllegal: "ILLEGAL", opLineA: "LINEA", opLineF: "LINEF",
	opOriCCR: "ORI>CCR", opOriSR: "ORI>SR", opAndiCCR: "ANDI>CCR", opAndiSR: "ANDI>SR",
	opEoriCCR: "EORI>CCR", opEoriSR: "EORI>SR", opOri: "ORI", opAndi: "ANDI",
	opSubi: "SUBI", opAddi: "ADDI", opEori: "EORI", opCmpi: "CMPI",
	opBitReg: "BITOP", opBitImm: "BITOP#", opMovep: "MOVEP",
	opMove: "MOVE", opMovea: "MOVEA", opMoveq: "MOVEQ",
	opMoveFromSR: "MOVE<SR", opMoveToCCR: "MOVE>CCR", opMoveToSR: "MOVE>SR",
	opNegx: "NEGX", opClr: "CLR", opNeg: "NEG", opNot: "NOT", opNbcd: "NBCD",
	opSwap: "SWAP", opPea: "PEA", opExt: "EXT", opMovemToMem: "MOVEM>M",
	opMovemToReg: "MOVEM>R", opTas: "TAS", opTst: "TST", opTrap: "TRAP",
	opLink: "LINK", opUnlk: "UNLK", opMoveUSP: "MOVEUSP", opReset: "RESET",
	opNop: "NOP", opStop: "STOP", opRte: "RTE", opRts: "RTS", opTrapv: "TRAPV",
	opRtr: "RTR", opJsr: "JSR", opJmp: "JMP", opLea: "LEA", opChk: "CHK",
	opAddq: "ADDQ", opSubq: "SUBQ", opScc: "Scc", opDbcc: "DBcc", opBcc: "Bcc",
	opBsr: "BSR", opDivu: "DIVU", opDivs: "DIVS", opSbcd: "SBCD", opOr: "OR",
	opSuba: "SUBA", opSubx: "SUBX", opSub: "SUB", opCmpa: "CMPA", opCmpm: "CMPM",
	opEor: "EOR", opCmp: "CMP", opMulu: "MULU", opMuls: "MULS", opAbcd: "ABCD",
	opExg: "EXG", opAnd: "AND", opAdda: "ADDA", opAddx: "ADDX", opAdd: "ADD",
	opShiftMem: "SHIFT<M>", opShiftReg: "SHIFT",
}

var bad = instruction{op: opIllegal}

// decode classifies one opcode word.
func decode(op uint16) instruction {
	ea := op & 0x3F
	switch op >> 12 {
	case 0x0:
		return decodeLine0(op, ea)
	case 0x1, 0x2, 0x3:
		return decodeMove(op, ea)
	case 0x4:
		return decodeLine4(op, ea)
	case 0x5:
		return decodeLine5(op, ea)
	case 0x6:
		if (op>>8)&0xF == 1 {
			return instruction{op: opBsr}
		}
		return instruction{op: opBcc}
	case 0x7:
		if op&0x0100 != 0 {
			return bad
		}
		return instruction{op: opMoveq, size: Long}
	case 0x8:
		return decodeLine8(op, ea)
	case 0x9, 0xD:
		return decodeAddSub(op, ea)
	case 0xA:
		return instruction{op: opLineA}
	case 0xB:
		return decodeLineB(op, ea)
	case 0xC:
		return decodeLineC(op, ea)
	case 0xE:
		return decodeShift(op, ea)
	}
	return instruction{op: opLineF}
}

func decodeLine0(op, ea uint16) instruction {
	switch op {
	case 0x003C:
		return instruction{op: opOriCCR, size: Byte}
	case 0x007C:
		return instruction{op: opOriSR, size: Word}
	case 0x023C:
		return instruction{op: opAndiCCR, size: Byte}
	case 0x027C:
		return instruction{op: opAndiSR, size: Word}
	case 0x0A3C:
		return instruction{op: opEoriCCR, size: Byte}
	case 0x0A7C:
		return instruction{op: opEoriSR, size: Word}
	}

	if op&0x0138 == 0x0108 {
		if op&0x0040 != 0 {
			return instruction{op: opMovep, size: Long}
		}
		return instruction{op: opMovep, size: Word}
	}

	if op&0x0100 != 0 {
		// BTST/BCHG/BCLR/BSET Dn,<ea>
		cat := catDataAlterable
		if (op>>6)&3 == 0 {
			cat = catData
		}
		if !allowed(ea, cat) {
			return bad
		}
		return instruction{op: opBitReg, size: bitSize(ea)}
	}

	if op&0x0F00 == 0x0800 {
		// BTST/BCHG/BCLR/BSET #n,<ea>
		cat := catDataAlterable
		if (op>>6)&3 == 0 {
			cat = catData &^ (1 << eaImmediate)
		}
		if !allowed(ea, cat) {
			return bad
		}
		return instruction{op: opBitImm, size: bitSize(ea)}
	}

	s := sizeField(op)
	if s == 0 || !allowed(ea, catDataAlterable) {
		return bad
	}
	switch (op >> 9) & 7 {
	case 0:
		return instruction{op: opOri, size: s}
	case 1:
		return instruction{op: opAndi, size: s}
	case 2:
		return instruction{op: opSubi, size: s}
	case 3:
		return instruction{op: opAddi, size: s}
	case 5:
		return instruction{op: opEori, size: s}
	case 6:
		return instruction{op: opCmpi, size: s}
	}
	return bad
}

// bitSize is long for data registers and byte for memory.
func bitSize(ea uint16) Size {
	if ea>>3 == 0 {
		return Long
	}
	return Byte
}

func decodeMove(op, ea uint16) instruction {
	var s Size
	switch op >> 12 {
	case 1:
		s = Byte
	case 2:
		s = Long
	default:
		s = Word
	}
	src := catAll
	if s == Byte {
		src = catData
	}
	if !allowed(ea, src) {
		return bad
	}
	dst := (op>>3)&0x38 | (op>>9)&7
	if (dst>>3)&7 == 1 {
		if s == Byte {
			return bad
		}
		return instruction{op: opMovea, size: s}
	}
	if !allowed(dst, catDataAlterable) {
		return bad
	}
	return instruction{op: opMove, size: s}
}

func decodeLine4(op, ea uint16) instruction {
	switch op {
	case 0x4AFC:
		return bad
	case 0x4E70:
		return instruction{op: opReset}
	case 0x4E71:
		return instruction{op: opNop}
	case 0x4E72:
		return instruction{op: opStop}
	case 0x4E73:
		return instruction{op: opRte}
	case 0x4E75:
		return instruction{op: opRts}
	case 0x4E76:
		return instruction{op: opTrapv}
	case 0x4E77:
		return instruction{op: opRtr}
	}

	switch op & 0xFFF0 {
	case 0x4E40:
		return instruction{op: opTrap}
	case 0x4E60:
		return instruction{op: opMoveUSP, size: Long}
	}
	switch op & 0xFFF8 {
	case 0x4E50:
		return instruction{op: opLink, size: Word}
	case 0x4E58:
		return instruction{op: opUnlk, size: Long}
	case 0x4840:
		return instruction{op: opSwap, size: Long}
	case 0x4880:
		return instruction{op: opExt, size: Word}
	case 0x48C0:
		return instruction{op: opExt, size: Long}
	}

	if op&0xF1C0 == 0x41C0 {
		if !allowed(ea, catControl) {
			return bad
		}
		return instruction{op: opLea, size: Long}
	}
	if op&0xF1C0 == 0x4180 {
		if !allowed(ea, catData) {
			return bad
		}
		return instruction{op: opChk, size: Word}
	}

	switch op & 0xFFC0 {
	case 0x40C0:
		if !allowed(ea, catDataAlterable) {
			return bad
		}
		return instruction{op: opMoveFromSR, size: Word}
	case 0x44C0:
		if !allowed(ea, catData) {
			return bad
		}
		return instruction{op: opMoveToCCR, size: Word}
	case 0x46C0:
		if !allowed(ea, catData) {
			return bad
		}
		return instruction{op: opMoveToSR, size: Word}
	case 0x4800:
		if !allowed(ea, catDataAlterable) {
			return bad
		}
		return instruction{op: opNbcd, size: Byte}
	case 0x4840:
		if !allowed(ea, catControl) {
			return bad
		}
		return instruction{op: opPea, size: Long}
	case 0x4AC0:
		if !allowed(ea, catDataAlterable) {
			return bad
		}
		return instruction{op: opTas, size: Byte}
	case 0x4E80:
		if !allowed(ea, catControl) {
			return bad
		}
		return instruction{op: opJsr}
	case 0x4EC0:
		if !allowed(ea, catControl) {
			return bad
		}
		return instruction{op: opJmp}
	}

	if op&0xFB80 == 0x4880 {
		s := Word
		if op&0x0040 != 0 {
			s = Long
		}
		if op&0x0400 == 0 {
			if !allowed(ea, catControl&catAlterable|1<<eaPreDec) {
				return bad
			}
			return instruction{op: opMovemToMem, size: s}
		}
		if !allowed(ea, catControl|1<<eaPostInc) {
			return bad
		}
		return instruction{op: opMovemToReg, size: s}
	}

	s := sizeField(op)
	if s == 0 {
		return bad
	}
	switch op & 0xFF00 {
	case 0x4000:
		if allowed(ea, catDataAlterable) {
			return instruction{op: opNegx, size: s}
		}
	case 0x4200:
		if allowed(ea, catDataAlterable) {
			return instruction{op: opClr, size: s}
		}
	case 0x4400:
		if allowed(ea, catDataAlterable) {
			return instruction{op: opNeg, size: s}
		}
	case 0x4600:
		if allowed(ea, catDataAlterable) {
			return instruction{op: opNot, size: s}
		}
	case 0x4A00:
		if allowed(ea, catDataAlterable) {
			return instruction{op: opTst, size: s}
		}
	}
	return bad
}

func decodeLine5(op, ea uint16) instruction {
	if op&0x00C0 == 0x00C0 {
		if (ea>>3)&7 == 1 {
			return instruction{op: opDbcc, size: Word}
		}
		if !allowed(ea, catDataAlterable) {
			return bad
		}
		return instruction{op: opScc, size: Byte}
	}
	s := sizeField(op)
	cat := catAlterable
	if s == Byte {
		cat = catDataAlterable
	}
	if !allowed(ea, cat) {
		return bad
	}
	if op&0x0100 != 0 {
		return instruction{op: opSubq, size: s}
	}
	return instruction{op: opAddq, size: s}
}

func decodeLine8(op, ea uint16) instruction {
	switch op & 0x01C0 {
	case 0x00C0:
		if !allowed(ea, catData) {
			return bad
		}
		return instruction{op: opDivu, size: Word}
	case 0x01C0:
		if !allowed(ea, catData) {
			return bad
		}
		return instruction{op: opDivs, size: Word}
	}
	if op&0x01F0 == 0x0100 {
		return instruction{op: opSbcd, size: Byte}
	}
	return decodeLogic(op, ea, opOr)
}

func decodeLineC(op, ea uint16) instruction {
	switch op & 0x01C0 {
	case 0x00C0:
		if !allowed(ea, catData) {
			return bad
		}
		return instruction{op: opMulu, size: Word}
	case 0x01C0:
		if !allowed(ea, catData) {
			return bad
		}
		return instruction{op: opMuls, size: Word}
	}
	if op&0x01F0 == 0x0100 {
		return instruction{op: opAbcd, size: Byte}
	}
	switch op & 0x01F8 {
	case 0x0140, 0x0148, 0x0188:
		return instruction{op: opExg, size: Long}
	}
	return decodeLogic(op, ea, opAnd)
}

// decodeLogic handles the AND/OR <ea>,Dn and Dn,<ea> forms.
func decodeLogic(op, ea uint16, kind opcode) instruction {
	s := sizeField(op)
	if s == 0 {
		return bad
	}
	cat := catData
	if op&0x0100 != 0 {
		cat = catMemoryAlterable
	}
	if !allowed(ea, cat) {
		return bad
	}
	return instruction{op: kind, size: s}
}

func decodeAddSub(op, ea uint16) instruction {
	add := op>>12 == 0xD
	pick := func(a, s opcode) opcode {
		if add {
			return a
		}
		return s
	}

	if op&0x00C0 == 0x00C0 {
		if !allowed(ea, catAll) {
			return bad
		}
		s := Word
		if op&0x0100 != 0 {
			s = Long
		}
		return instruction{op: pick(opAdda, opSuba), size: s}
	}

	s := sizeField(op)
	if op&0x0130 == 0x0100 {
		return instruction{op: pick(opAddx, opSubx), size: s}
	}

	cat := catAll
	if op&0x0100 != 0 {
		cat = catMemoryAlterable
	} else if s == Byte {
		cat = catData
	}
	if !allowed(ea, cat) {
		return bad
	}
	return instruction{op: pick(opAdd, opSub), size: s}
}

func decodeLineB(op, ea uint16) instruction {
	if op&0x00C0 == 0x00C0 {
		if !allowed(ea, catAll) {
			return bad
		}
		s := Word
		if op&0x0100 != 0 {
			s = Long
		}
		return instruction{op: opCmpa, size: s}
	}
	s := sizeField(op)
	if op&0x0100 != 0 {
		if (ea>>3)&7 == 1 {
			return instruction{op: opCmpm, size: s}
		}
		if !allowed(ea, catDataAlterable) {
			return bad
		}
		return instruction{op: opEor, size: s}
	}
	cat := catAll
	if s == Byte {
		cat = catData
	}
	if !allowed(ea, cat) {
		return bad
	}
	return instruction{op: opCmp, size: s}
}

func decodeShift(op, ea uint16) instruction {
	if op&0x00C0 == 0x00C0 {
		if op&0x0800 != 0 || !allowed(ea, catMemoryAlterable) {
			return bad
		}
		return instruction{op: opShiftMem, size: Word}
	}
	return instruction{op: opShiftReg, size: sizeField(op)}
}
