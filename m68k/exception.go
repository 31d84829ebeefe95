package m68k

// Exception vector numbers.
const (
	vecAddressError   = 3
	vecIllegal        = 4
	vecZeroDivide     = 5
	vecCHK            = 6
	vecTRAPV          = 7
	vecPrivilege      = 8
	vecTrace          = 9
	vecLineA          = 10
	vecLineF          = 11
	vecAutovectorBase = 24
	vecTrapBase       = 32
)

// Exception processing costs that are not data dependent.
const (
	cyclesAddressError = 50
	cyclesInterrupt    = 44
	cyclesTrap         = 34
	cyclesZeroDivide   = 38
	cyclesCHKTrap      = 40
)

// exception enters supervisor mode, stacks pc and the previous SR and
// jumps through the vector. Cycle costs are charged by the caller.
func (c *CPU) exception(vector int, pc uint32) {
	if c.onException != nil {
		c.onException(vector, c.cycles)
	}
	old := c.reg.SR
	c.setSR((old | flagS) &^ flagT)
	c.stopped = false
	if c.reg.A[7]&1 != 0 {
		c.halt("odd supervisor stack %08X during vector %d", c.reg.A[7], vector)
		return
	}
	c.push(Long, pc)
	c.push(Word, uint32(old))
	c.jumpVector(vector)
}

// jumpVector loads PC from the vector table. A handler address that is
// odd or not backed by any device is unrecoverable.
func (c *CPU) jumpVector(vector int) {
	target := c.read(Long, uint32(vector)*4)
	if target&1 != 0 {
		c.halt("vector %d points to odd address %08X", vector, target)
		return
	}
	if c.decoder != nil && !c.decoder.Mapped(target&0xFFFFFF) {
		c.halt("vector %d points to unmapped address %08X", vector, target)
		return
	}
	c.reg.PC = target
}

// trap raises an exception whose stacked PC is the next instruction.
func (c *CPU) trap(vector int, cost int) {
	c.exception(vector, c.reg.PC)
	c.cycles += uint64(cost)
}

// illegal raises an exception whose stacked PC is the faulting
// instruction. No trace follows.
func (c *CPU) illegal(vector int) {
	c.noTrace = true
	c.exception(vector, c.opPC)
	c.cycles += cyclesTrap
}

// privilegeViolation is raised before any operand of a privileged
// instruction is resolved, so only the exception state changes.
func (c *CPU) privilegeViolation() {
	c.reg.PC = c.opPC
	c.illegal(vecPrivilege)
}

// addressError builds the 14-byte group 0 frame: status word, access
// address, instruction register, SR and PC.
func (c *CPU) addressError(f *addressFault) {
	if c.onException != nil {
		c.onException(vecAddressError, c.cycles)
	}
	old := c.reg.SR

	fc := uint16(1)
	if f.program {
		fc = 2
	}
	if old&flagS != 0 {
		fc |= 4
	}
	status := fc
	if f.read {
		status |= 1 << 4
	}
	if !f.program {
		status |= 1 << 3
	}

	c.setSR((old | flagS) &^ flagT)
	c.stopped = false
	c.noTrace = true
	if c.reg.A[7]&1 != 0 {
		c.halt("address error at %06X with odd supervisor stack %08X", f.addr, c.reg.A[7])
		return
	}

	c.reg.A[7] -= 14
	sp := c.reg.A[7]
	c.busWrite(Word, sp&0xFFFFFF, uint32(status))
	c.busWrite(Long, (sp+2)&0xFFFFFF, f.addr)
	c.busWrite(Word, (sp+6)&0xFFFFFF, uint32(c.ir))
	c.busWrite(Word, (sp+8)&0xFFFFFF, uint32(old))
	c.busWrite(Long, (sp+10)&0xFFFFFF, c.reg.PC)

	target := c.busRead(Long, vecAddressError*4)
	switch {
	case target&1 != 0:
		c.halt("address error vector points to odd address %08X", target)
		return
	case c.decoder != nil && !c.decoder.Mapped(target&0xFFFFFF):
		c.halt("address error vector points to unmapped address %08X", target)
		return
	}
	c.reg.PC = target
	c.cycles += cyclesAddressError
}

// checkInterrupt services the highest pending level if it is above the
// mask (level 7 is edge triggered and cannot be masked).
func (c *CPU) checkInterrupt() bool {
	level := c.ipl
	mask := c.InterruptMask()
	nmi := c.nmiEdge && level == 7
	if level == 0 || (level <= mask && !nmi) {
		return false
	}
	c.nmiEdge = false

	old := c.reg.SR
	if c.onException != nil {
		c.onException(vecAutovectorBase+int(level), c.cycles)
	}
	c.setSR((old|flagS)&^(flagT|maskBits) | uint16(level)<<8)
	c.stopped = false
	if c.reg.A[7]&1 != 0 {
		c.halt("odd supervisor stack %08X during interrupt %d", c.reg.A[7], level)
		return true
	}
	c.push(Long, c.reg.PC)
	c.push(Word, uint32(old))
	if c.acker != nil {
		c.acker.AcknowledgeInterrupt(level)
	}
	c.jumpVector(vecAutovectorBase + int(level))
	c.cycles += cyclesInterrupt
	return true
}
