package m68k

import "testing"

const (
	testSSP      = 0x8000
	testPC       = 0x1000
	testVecBase  = 0x4000
	testMemMask  = 0xFFFFF
	testUserSP   = 0x6000
	testDataAddr = 0x2000
)

// testBus is 1MB of flat RAM mirrored through the 24-bit space.
type testBus struct {
	mem    [testMemMask + 1]byte
	acks   []uint8
	resets int
}

func (b *testBus) Read(s Size, addr uint32) uint32 {
	var v uint32
	for i := uint32(0); i < uint32(s); i++ {
		v = v<<8 | uint32(b.mem[(addr+i)&testMemMask])
	}
	return v
}

func (b *testBus) Write(s Size, addr uint32, val uint32) {
	for i := uint32(0); i < uint32(s); i++ {
		b.mem[(addr+i)&testMemMask] = byte(val >> ((uint32(s) - 1 - i) * 8))
	}
}

func (b *testBus) AcknowledgeInterrupt(level uint8) {
	b.acks = append(b.acks, level)
}

func (b *testBus) ResetDevices() {
	b.resets++
}

func (b *testBus) poke16(addr uint32, v uint16) {
	b.Write(Word, addr, uint32(v))
}

func (b *testBus) peek16(addr uint32) uint16 {
	return uint16(b.Read(Word, addr))
}

func (b *testBus) peek32(addr uint32) uint32 {
	return b.Read(Long, addr)
}

// vectorHandler is where each exception vector points in tests.
func vectorHandler(v int) uint32 {
	return testVecBase + uint32(v)*0x10
}

// newTestCPU loads code at testPC and returns a reset CPU.
func newTestCPU(code ...uint16) (*CPU, *testBus) {
	bus := &testBus{}
	bus.Write(Long, 0, testSSP)
	bus.Write(Long, 4, testPC)
	for v := 2; v < 256; v++ {
		bus.Write(Long, uint32(v)*4, vectorHandler(v))
		bus.poke16(vectorHandler(v), 0x4E71)
	}
	for i, w := range code {
		bus.poke16(testPC+uint32(i)*2, w)
	}
	return New(bus), bus
}

func TestCPU_Reset(t *testing.T) {
	cpu, _ := newTestCPU()
	r := cpu.Registers()
	if r.PC != testPC {
		t.Errorf("expected PC 0x%06X, got 0x%06X", testPC, r.PC)
	}
	if r.A[7] != testSSP || r.SSP != testSSP {
		t.Errorf("expected A7/SSP 0x%X, got A7=0x%X SSP=0x%X", testSSP, r.A[7], r.SSP)
	}
	if r.SR != 0x2700 {
		t.Errorf("expected SR 0x2700, got 0x%04X", r.SR)
	}
}

// goldenVector is one instruction with its input state and the exact
// registers, flags and cycles it must produce.
type goldenVector struct {
	name   string
	code   []uint16
	d      map[int]uint32
	a      map[int]uint32
	sr     uint16
	wantD  map[int]uint32
	wantA  map[int]uint32
	wantSR uint16
	wantPC uint32
	cycles int
}

var goldenVectors = []goldenVector{
	{name: "MOVEQ #-1,D0", code: []uint16{0x70FF}, sr: 0x2700,
		wantD: map[int]uint32{0: 0xFFFFFFFF}, wantSR: 0x2708, cycles: 4},
	{name: "MOVEQ #0,D1", code: []uint16{0x7200}, d: map[int]uint32{1: 0x55}, sr: 0x2700,
		wantD: map[int]uint32{1: 0}, wantSR: 0x2704, cycles: 4},
	{name: "ADD.W D1,D0 overflow", code: []uint16{0xD041}, d: map[int]uint32{0: 0x7FFF, 1: 1}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x8000}, wantSR: 0x270A, cycles: 4},
	{name: "ADD.L D1,D0 carry", code: []uint16{0xD081}, d: map[int]uint32{0: 0xFFFFFFFF, 1: 1}, sr: 0x2700,
		wantD: map[int]uint32{0: 0}, wantSR: 0x2715, cycles: 8},
	{name: "SUB.B D1,D0 borrow", code: []uint16{0x9001}, d: map[int]uint32{0: 0x12345600, 1: 1}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x123456FF}, wantSR: 0x2719, cycles: 4},
	{name: "CMP.W D1,D0 keeps X", code: []uint16{0xB041}, d: map[int]uint32{0: 5, 1: 5}, sr: 0x2710,
		wantSR: 0x2714, cycles: 4},
	{name: "ADDX.B zero keeps Z", code: []uint16{0xD101}, d: map[int]uint32{0: 0xFF, 1: 0}, sr: 0x2714,
		wantD: map[int]uint32{0: 0}, wantSR: 0x2715, cycles: 4},
	{name: "ADDX.B nonzero clears Z", code: []uint16{0xD101}, d: map[int]uint32{0: 1, 1: 1}, sr: 0x2704,
		wantD: map[int]uint32{0: 2}, wantSR: 0x2700, cycles: 4},
	{name: "MULU.W D1,D0", code: []uint16{0xC0C1}, d: map[int]uint32{0: 3, 1: 4}, sr: 0x2700,
		wantD: map[int]uint32{0: 12}, wantSR: 0x2700, cycles: 40},
	{name: "MULS.W D1,D0", code: []uint16{0xC1C1}, d: map[int]uint32{0: 0xFFFE, 1: 3}, sr: 0x2700,
		wantD: map[int]uint32{0: 0xFFFFFFFA}, wantSR: 0x2708, cycles: 42},
	{name: "DIVU.W D1,D0", code: []uint16{0x80C1}, d: map[int]uint32{0: 100, 1: 7}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x0002000E}, wantSR: 0x2700, cycles: 130},
	{name: "LSL.W #1,D0", code: []uint16{0xE348}, d: map[int]uint32{0: 0x8001}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x0002}, wantSR: 0x2711, cycles: 8},
	{name: "ASR.L #2,D0", code: []uint16{0xE480}, d: map[int]uint32{0: 0x80000003}, sr: 0x2700,
		wantD: map[int]uint32{0: 0xE0000000}, wantSR: 0x2719, cycles: 12},
	{name: "ROL.B #4,D0", code: []uint16{0xE918}, d: map[int]uint32{0: 0x12}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x21}, wantSR: 0x2701, cycles: 14},
	{name: "ROXR.W D1,D0 count 0", code: []uint16{0xE270}, d: map[int]uint32{0: 0x1234, 1: 0}, sr: 0x2710,
		wantD: map[int]uint32{0: 0x1234}, wantSR: 0x2711, cycles: 6},
	{name: "ASL.B #1,D0 overflow", code: []uint16{0xE300}, d: map[int]uint32{0: 0x40}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x80}, wantSR: 0x270A, cycles: 8},
	{name: "ABCD D1,D0", code: []uint16{0xC101}, d: map[int]uint32{0: 0x45, 1: 0x38}, sr: 0x2704,
		wantD: map[int]uint32{0: 0x83}, wantSR: 0x270A, cycles: 6},
	{name: "SBCD D1,D0", code: []uint16{0x8101}, d: map[int]uint32{0: 0x10, 1: 0x01}, sr: 0x2704,
		wantD: map[int]uint32{0: 0x09}, wantSR: 0x2700, cycles: 6},
	{name: "SBCD D1,D0 invalid BCD", code: []uint16{0x8101}, d: map[int]uint32{0: 0xF8, 1: 0x4E}, sr: 0x2710,
		wantD: map[int]uint32{0: 0xA3}, wantSR: 0x2708, cycles: 6},
	{name: "SBCD D1,D0 borrow", code: []uint16{0x8101}, d: map[int]uint32{0: 0x00, 1: 0x01}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x99}, wantSR: 0x2719, cycles: 6},
	{name: "NEG.W D0", code: []uint16{0x4440}, d: map[int]uint32{0: 1}, sr: 0x2700,
		wantD: map[int]uint32{0: 0xFFFF}, wantSR: 0x2719, cycles: 4},
	{name: "CLR.L D0 keeps X", code: []uint16{0x4280}, d: map[int]uint32{0: 0xDEADBEEF}, sr: 0x271F,
		wantD: map[int]uint32{0: 0}, wantSR: 0x2714, cycles: 6},
	{name: "SWAP D0", code: []uint16{0x4840}, d: map[int]uint32{0: 0x12345678}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x56781234}, wantSR: 0x2700, cycles: 4},
	{name: "EXT.W D0", code: []uint16{0x4880}, d: map[int]uint32{0: 0xF0}, sr: 0x2700,
		wantD: map[int]uint32{0: 0xFFF0}, wantSR: 0x2708, cycles: 4},
	{name: "EXT.L D0", code: []uint16{0x48C0}, d: map[int]uint32{0: 0x8000}, sr: 0x2700,
		wantD: map[int]uint32{0: 0xFFFF8000}, wantSR: 0x2708, cycles: 4},
	{name: "TST.B D0", code: []uint16{0x4A00}, d: map[int]uint32{0: 0x100}, sr: 0x2703,
		wantSR: 0x2704, cycles: 4},
	{name: "BTST #3,D0", code: []uint16{0x0800, 0x0003}, d: map[int]uint32{0: 0x08}, sr: 0x2704,
		wantSR: 0x2700, cycles: 10},
	{name: "BSET D1,D0", code: []uint16{0x03C0}, d: map[int]uint32{0: 0, 1: 31}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x80000000}, wantSR: 0x2704, cycles: 8},
	{name: "BSET D1,D0 low bit", code: []uint16{0x03C0}, d: map[int]uint32{0: 0, 1: 4}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x10}, wantSR: 0x2704, cycles: 6},
	{name: "BCHG D1,D0 low bit", code: []uint16{0x0340}, d: map[int]uint32{0: 0, 1: 3}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x08}, wantSR: 0x2704, cycles: 6},
	{name: "BCLR D1,D0 low bit", code: []uint16{0x0380}, d: map[int]uint32{0: 0x08, 1: 3}, sr: 0x2700,
		wantD: map[int]uint32{0: 0}, wantSR: 0x2700, cycles: 8},
	{name: "BCLR D1,D0 high bit", code: []uint16{0x0380}, d: map[int]uint32{0: 0x00100000, 1: 20}, sr: 0x2700,
		wantD: map[int]uint32{0: 0}, wantSR: 0x2700, cycles: 10},
	{name: "BCLR #20,D0", code: []uint16{0x0880, 0x0014}, d: map[int]uint32{0: 0x00100000}, sr: 0x2700,
		wantD: map[int]uint32{0: 0}, wantSR: 0x2700, cycles: 14},
	{name: "BSET #2,D0", code: []uint16{0x08C0, 0x0002}, d: map[int]uint32{0: 0}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x04}, wantSR: 0x2704, cycles: 10},
	{name: "EOR.W D1,D0", code: []uint16{0xB340}, d: map[int]uint32{0: 0x0F0F, 1: 0xFFFF}, sr: 0x2700,
		wantD: map[int]uint32{0: 0xF0F0}, wantSR: 0x2708, cycles: 4},
	{name: "MOVE.W D1,D0", code: []uint16{0x3001}, d: map[int]uint32{0: 0x11110000, 1: 0x1234ABCD}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x1111ABCD}, wantSR: 0x2708, cycles: 4},
	{name: "MOVEA.W D0,A0", code: []uint16{0x3040}, d: map[int]uint32{0: 0x8000}, sr: 0x2704,
		wantA: map[int]uint32{0: 0xFFFF8000}, wantSR: 0x2704, cycles: 4},
	{name: "LEA 8(A0),A1", code: []uint16{0x43E8, 0x0008}, a: map[int]uint32{0: 0x1000}, sr: 0x2700,
		wantA: map[int]uint32{1: 0x1008}, wantSR: 0x2700, cycles: 8},
	{name: "ADDQ.L #8,D0", code: []uint16{0x5080}, d: map[int]uint32{0: 1}, sr: 0x2700,
		wantD: map[int]uint32{0: 9}, wantSR: 0x2700, cycles: 8},
	{name: "SUBQ.W #1,A0", code: []uint16{0x5348}, a: map[int]uint32{0: 0}, sr: 0x2704,
		wantA: map[int]uint32{0: 0xFFFFFFFF}, wantSR: 0x2704, cycles: 8},
	{name: "EXG D0,D1", code: []uint16{0xC141}, d: map[int]uint32{0: 1, 1: 2}, sr: 0x2700,
		wantD: map[int]uint32{0: 2, 1: 1}, wantSR: 0x2700, cycles: 6},
	{name: "DBRA D0 taken", code: []uint16{0x51C8, 0xFFFE}, d: map[int]uint32{0: 1}, sr: 0x2700,
		wantD: map[int]uint32{0: 0}, wantSR: 0x2700, wantPC: testPC, cycles: 10},
	{name: "DBRA D0 expired", code: []uint16{0x51C8, 0xFFFE}, d: map[int]uint32{0: 0x10000}, sr: 0x2700,
		wantD: map[int]uint32{0: 0x1FFFF}, wantSR: 0x2700, wantPC: testPC + 4, cycles: 14},
	{name: "BEQ.S taken", code: []uint16{0x6704}, sr: 0x2704,
		wantSR: 0x2704, wantPC: testPC + 6, cycles: 10},
	{name: "BEQ.S not taken", code: []uint16{0x6704}, sr: 0x2700,
		wantSR: 0x2700, wantPC: testPC + 2, cycles: 8},
	{name: "BNE.W not taken", code: []uint16{0x6600, 0x0010}, sr: 0x2704,
		wantSR: 0x2704, wantPC: testPC + 4, cycles: 12},
	{name: "NOT.B D0", code: []uint16{0x4600}, d: map[int]uint32{0: 0x0F}, sr: 0x2700,
		wantD: map[int]uint32{0: 0xF0}, wantSR: 0x2708, cycles: 4},
	{name: "ADDI.W #$10,D0", code: []uint16{0x0640, 0x0010}, d: map[int]uint32{0: 0xFFF0}, sr: 0x2700,
		wantD: map[int]uint32{0: 0}, wantSR: 0x2715, cycles: 8},
	{name: "ANDI.B #$0F,D0", code: []uint16{0x0200, 0x000F}, d: map[int]uint32{0: 0xF3}, sr: 0x2708,
		wantD: map[int]uint32{0: 0x03}, wantSR: 0x2700, cycles: 8},
	{name: "CMPI.L #1,D0", code: []uint16{0x0C80, 0x0000, 0x0001}, d: map[int]uint32{0: 0}, sr: 0x2700,
		wantSR: 0x2709, cycles: 14},
	{name: "ORI #$1F,CCR", code: []uint16{0x003C, 0x001F}, sr: 0x2700,
		wantSR: 0x271F, cycles: 20},
	{name: "NOP", code: []uint16{0x4E71}, sr: 0x2700,
		wantSR: 0x2700, wantPC: testPC + 2, cycles: 4},
}

func TestCPU_GoldenVectors(t *testing.T) {
	for _, gv := range goldenVectors {
		t.Run(gv.name, func(t *testing.T) {
			cpu, _ := newTestCPU(gv.code...)
			regs := cpu.Registers()
			for i, v := range gv.d {
				regs.D[i] = v
			}
			for i, v := range gv.a {
				regs.A[i] = v
			}
			regs.SR = gv.sr
			cpu.SetState(regs)

			cycles := cpu.Step()
			got := cpu.Registers()

			for i, v := range gv.wantD {
				if got.D[i] != v {
					t.Errorf("D%d: expected 0x%08X, got 0x%08X", i, v, got.D[i])
				}
			}
			for i, v := range gv.wantA {
				if got.A[i] != v {
					t.Errorf("A%d: expected 0x%08X, got 0x%08X", i, v, got.A[i])
				}
			}
			if got.SR != gv.wantSR {
				t.Errorf("SR: expected 0x%04X, got 0x%04X", gv.wantSR, got.SR)
			}
			if gv.wantPC != 0 && got.PC != gv.wantPC {
				t.Errorf("PC: expected 0x%06X, got 0x%06X", gv.wantPC, got.PC)
			}
			if cycles != gv.cycles {
				t.Errorf("cycles: expected %d, got %d", gv.cycles, cycles)
			}
		})
	}
}

func TestCPU_MoveLongToMemory(t *testing.T) {
	// MOVE.L D0,(A0)
	cpu, bus := newTestCPU(0x2080)
	regs := cpu.Registers()
	regs.D[0] = 0xCAFEBABE
	regs.A[0] = testDataAddr
	cpu.SetState(regs)

	if n := cpu.Step(); n != 12 {
		t.Errorf("expected 12 cycles, got %d", n)
	}
	if got := bus.peek32(testDataAddr); got != 0xCAFEBABE {
		t.Errorf("expected 0xCAFEBABE, got 0x%08X", got)
	}
}

func TestCPU_PostIncrementApplied(t *testing.T) {
	// MOVE.W (A0)+,D0 then MOVE.B (A7)+,D1
	cpu, bus := newTestCPU(0x3018, 0x121F)
	bus.poke16(testDataAddr, 0xBEEF)
	regs := cpu.Registers()
	regs.A[0] = testDataAddr
	cpu.SetState(regs)

	cpu.Step()
	r := cpu.Registers()
	if r.A[0] != testDataAddr+2 {
		t.Errorf("expected A0 0x%X, got 0x%X", testDataAddr+2, r.A[0])
	}
	if r.D[0]&0xFFFF != 0xBEEF {
		t.Errorf("expected D0.W 0xBEEF, got 0x%04X", r.D[0]&0xFFFF)
	}

	cpu.Step()
	r = cpu.Registers()
	if r.A[7] != testSSP+2 {
		t.Errorf("byte pop through A7 should step by 2, got A7=0x%X", r.A[7])
	}
}

func TestCPU_MovemRoundTrip(t *testing.T) {
	// MOVEM.L D0-D1/A0,-(A7); MOVEM.L (A7)+,D2-D3/A1
	cpu, _ := newTestCPU(0x48E7, 0xC080, 0x4CDF, 0x020C)
	regs := cpu.Registers()
	regs.D[0] = 0x11111111
	regs.D[1] = 0x22222222
	regs.A[0] = 0x33333333
	cpu.SetState(regs)

	if n := cpu.Step(); n != 32 {
		t.Errorf("MOVEM to memory: expected 32 cycles, got %d", n)
	}
	if r := cpu.Registers(); r.A[7] != testSSP-12 {
		t.Errorf("expected A7 0x%X, got 0x%X", testSSP-12, r.A[7])
	}
	if n := cpu.Step(); n != 36 {
		t.Errorf("MOVEM to registers: expected 36 cycles, got %d", n)
	}
	r := cpu.Registers()
	if r.D[2] != 0x11111111 || r.D[3] != 0x22222222 || r.A[1] != 0x33333333 {
		t.Errorf("restored D2=%08X D3=%08X A1=%08X", r.D[2], r.D[3], r.A[1])
	}
	if r.A[7] != testSSP {
		t.Errorf("expected A7 restored to 0x%X, got 0x%X", testSSP, r.A[7])
	}
}

func TestCPU_JsrRts(t *testing.T) {
	// JSR $1100.W ; at $1100: RTS
	cpu, bus := newTestCPU(0x4EB8, 0x1100)
	bus.poke16(0x1100, 0x4E75)

	if n := cpu.Step(); n != 18 {
		t.Errorf("JSR abs.W: expected 18 cycles, got %d", n)
	}
	if got := bus.peek32(testSSP - 4); got != testPC+4 {
		t.Errorf("expected return address 0x%X, got 0x%X", testPC+4, got)
	}
	if n := cpu.Step(); n != 16 {
		t.Errorf("RTS: expected 16 cycles, got %d", n)
	}
	if pc := cpu.Registers().PC; pc != testPC+4 {
		t.Errorf("expected PC 0x%X, got 0x%X", testPC+4, pc)
	}
}

func TestCPU_LinkUnlk(t *testing.T) {
	// LINK A6,#-8 ; UNLK A6
	cpu, _ := newTestCPU(0x4E56, 0xFFF8, 0x4E5E)
	regs := cpu.Registers()
	regs.A[6] = 0xABCD
	cpu.SetState(regs)

	cpu.Step()
	r := cpu.Registers()
	if r.A[6] != testSSP-4 {
		t.Errorf("expected A6 0x%X, got 0x%X", testSSP-4, r.A[6])
	}
	if r.A[7] != testSSP-12 {
		t.Errorf("expected A7 0x%X, got 0x%X", testSSP-12, r.A[7])
	}
	cpu.Step()
	r = cpu.Registers()
	if r.A[6] != 0xABCD || r.A[7] != testSSP {
		t.Errorf("expected A6=0xABCD A7=0x%X, got A6=0x%X A7=0x%X", testSSP, r.A[6], r.A[7])
	}
}

func TestCPU_DivuByZeroTraps(t *testing.T) {
	cpu, bus := newTestCPU(0x80C1)
	regs := cpu.Registers()
	regs.D[0] = 100
	cpu.SetState(regs)

	if n := cpu.Step(); n != 38 {
		t.Errorf("expected 38 cycles, got %d", n)
	}
	r := cpu.Registers()
	if r.PC != vectorHandler(vecZeroDivide) {
		t.Errorf("expected PC at zero divide handler, got 0x%06X", r.PC)
	}
	if got := bus.peek32(testSSP - 4); got != testPC+2 {
		t.Errorf("stacked PC: expected 0x%X, got 0x%X", testPC+2, got)
	}
	if r.D[0] != 100 {
		t.Errorf("dividend must be untouched, got 0x%X", r.D[0])
	}
}

func TestCPU_DivuOverflowLeavesDestination(t *testing.T) {
	cpu, _ := newTestCPU(0x80C1)
	regs := cpu.Registers()
	regs.D[0] = 0x00100000
	regs.D[1] = 1
	cpu.SetState(regs)

	if n := cpu.Step(); n != 10 {
		t.Errorf("expected 10 cycles, got %d", n)
	}
	r := cpu.Registers()
	if r.D[0] != 0x00100000 {
		t.Errorf("expected D0 unchanged, got 0x%08X", r.D[0])
	}
	if r.SR&flagV == 0 {
		t.Error("expected V set on overflow")
	}
}

func TestCPU_DivsNegative(t *testing.T) {
	// DIVS.W D1,D0 : -7 / 2 = -3 remainder -1
	cpu, _ := newTestCPU(0x81C1)
	regs := cpu.Registers()
	regs.D[0] = 0xFFFFFFF9
	regs.D[1] = 2
	cpu.SetState(regs)
	cpu.Step()
	if got := cpu.Registers().D[0]; got != 0xFFFFFFFD {
		t.Errorf("expected 0xFFFFFFFD, got 0x%08X", got)
	}
}

func TestDivuCyclesBounds(t *testing.T) {
	if n := divuCycles(0xFFFF0000, 0xFFFF); n != 10 {
		t.Errorf("overflowing divu: expected 10, got %d", n)
	}
	if n := divuCycles(0, 1); n != 136 {
		t.Errorf("divu of zero: expected 136, got %d", n)
	}
}

func TestDecoded(t *testing.T) {
	cases := []struct {
		op   uint16
		want string
	}{
		{0x4E71, "NOP"},
		{0x4AFC, "ILLEGAL"},
		{0xA000, "LINEA"},
		{0xF123, "LINEF"},
		{0x1008, "ILLEGAL"}, // MOVE.B A0,D0
		{0x7100, "ILLEGAL"},
		{0x2040, "MOVEA"},
		{0x46FC, "MOVE>SR"},
		{0x51C8, "DBcc"},
		{0xC141, "EXG"},
		{0xD101, "ADDX"},
		{0xE0D0, "SHIFT<M>"},
		{0x4E75, "RTS"},
		{0x0108, "MOVEP"},
		{0x4CDF, "MOVEM>R"},
		{0x48E7, "MOVEM>M"},
		{0x4EFB, "JMP"},
		{0x4EFC, "ILLEGAL"}, // JMP #imm
	}
	for _, tc := range cases {
		if got := Decoded(tc.op); got != tc.want {
			t.Errorf("opcode 0x%04X: expected %s, got %s", tc.op, tc.want, got)
		}
	}
}

// lockedBus refuses the write half of TAS, as the Genesis bus arbiter does.
type lockedBus struct {
	*testBus
}

func (lockedBus) CompletesReadModifyWrite() bool { return false }

func TestCPU_TasWriteBack(t *testing.T) {
	for _, tc := range []struct {
		name   string
		locked bool
		want   byte
	}{
		{"completes", false, 0x81},
		{"dropped", true, 0x01},
	} {
		_, tb := newTestCPU(0x4AD0) // TAS (A0)
		tb.mem[testDataAddr] = 0x01
		var cpu *CPU
		if tc.locked {
			cpu = New(lockedBus{tb})
		} else {
			cpu = New(tb)
		}
		regs := cpu.Registers()
		regs.A[0] = testDataAddr
		cpu.SetState(regs)

		if n := cpu.Step(); n != 14 {
			t.Errorf("%s: expected 14 cycles, got %d", tc.name, n)
		}
		if got := tb.mem[testDataAddr]; got != tc.want {
			t.Errorf("%s: expected 0x%02X, got 0x%02X", tc.name, tc.want, got)
		}
		if sr := cpu.Registers().SR; sr&0x0F != 0 {
			t.Errorf("%s: expected NZVC clear, got SR 0x%04X", tc.name, sr)
		}
	}
}
