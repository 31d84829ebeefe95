package m68k

// Size is an operand width.
type Size uint8

const (
	Byte Size = 1
	Word Size = 2
	Long Size = 4
)

// Mask returns the bit mask covering a value of this size.
func (s Size) Mask() uint32 {
	switch s {
	case Byte:
		return 0xFF
	case Word:
		return 0xFFFF
	}
	return 0xFFFFFFFF
}

// MSB returns the sign bit for this size.
func (s Size) MSB() uint32 {
	switch s {
	case Byte:
		return 0x80
	case Word:
		return 0x8000
	}
	return 0x80000000
}

// Bits returns the operand width in bits.
func (s Size) Bits() int {
	return int(s) * 8
}

func (s Size) String() string {
	switch s {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Long:
		return "long"
	}
	return "size?"
}

// signExtend widens v from size s to 32 bits.
func signExtend(v uint32, s Size) uint32 {
	switch s {
	case Byte:
		return uint32(int32(int8(v)))
	case Word:
		return uint32(int32(int16(v)))
	}
	return v
}

// sizeField decodes the standard two-bit size field (bits 7:6).
// The reserved encoding 11 returns 0.
func sizeField(op uint16) Size {
	switch (op >> 6) & 3 {
	case 0:
		return Byte
	case 1:
		return Word
	case 2:
		return Long
	}
	return 0
}
