// Package core implements a Thumb/Thumb-2 instruction interpreter for the
// node CPU: register file, condition flags, a hashed instruction dispatch
// table, and the cooperative interrupt-entry sequence between instructions.
package core

import "github.com/charmbracelet/log"

// Register indices for the three architectural registers the interpreter
// treats specially.
const (
	SP = 13
	LR = 14
	PC = 15
)

// Bus is the node-side memory bus a Core fetches instructions from and
// issues load/store traffic against. internal/soc implements it.
type Bus interface {
	ReadByte(addr uint32) uint8
	ReadHalf(addr uint32) uint16
	ReadWord(addr uint32) uint32
	WriteByte(addr uint32, data uint8)
	WriteHalf(addr uint32, data uint16)
	WriteWord(addr uint32, data uint32)
}

// Core is one node's CPU: 16 general registers (R13=SP, R14=LR, R15=PC),
// NZCV condition flags, and the cooperative interrupt state (pending/
// enabled masks, the currently active IRQ number, and the sleep latch WFI
// sets).
type Core struct {
	Name string

	R [16]uint32
	N bool
	Z bool
	C bool
	V bool

	IRQs     uint32 // pending
	IRQEn    uint32 // enabled
	IPSR     uint32 // active IRQ number while inside a handler, 0 otherwise
	Sleeping bool

	irqReturnPC uint32

	Opcode uint16

	Flash []uint16 // instruction memory, halfword-indexed
	Bus   Bus

	Logger *log.Logger
}

// New returns a zero-initialized Core wired to bus and fetching from flash.
func New(name string, flash []uint16, bus Bus, logger *log.Logger) *Core {
	return &Core{Name: name, Flash: flash, Bus: bus, Logger: logger}
}

// Reset clears the register file. PC and SP are expected to be loaded from
// the firmware's vector table by the caller afterwards.
func (c *Core) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
}

// IRQSet marks irq pending. Mirrors core_irq_set.
func (c *Core) IRQSet(irq int) {
	c.IRQs |= 1 << uint(irq)
}

// IRQClear clears irq's pending bit. Mirrors core_irq_clear.
func (c *Core) IRQClear(irq int) {
	c.IRQs &^= 1 << uint(irq)
}

// SetIRQEnable replaces the interrupt-enable mask, as driven by SYS_CTRL.
func (c *Core) SetIRQEnable(mask uint32) {
	c.IRQEn = mask
}

// Sleep latches the WFI-equivalent sleep state; Clk wakes the core again
// once a pending, enabled interrupt appears.
func (c *Core) Sleep() {
	c.Sleeping = true
}

// Clk fetches and executes one instruction, then services a pending,
// enabled interrupt if one exists and the CPU isn't already inside an
// interrupt handler.
func (c *Core) Clk() {
	if c.Sleeping {
		if c.IRQs&c.IRQEn != 0 {
			c.Sleeping = false
		} else {
			return
		}
	}

	c.Opcode = c.Flash[c.R[PC]>>1]
	c.R[PC] += 2

	dispatch[c.Opcode](c)

	c.checkInterrupt()
}

// checkInterrupt implements the cooperative IRQ-entry convention: there is
// no hardware-pushed exception frame the way a real Cortex-M stacks
// r0-r3/r12/lr/pc/xpsr on entry. Instead the handler address is read from
// the vector table in flash, the interrupted PC is saved in irqReturnPC,
// and LR is set to irqReturnSentinel; when a BX or POP {PC} branches to
// that sentinel, execution resumes where it left off. This is a
// deliberate simplification: the reference implementation never finished
// wiring interrupt delivery (trx_interrupt has a stale TODO and never calls
// into the core), so there is no working exception-frame behavior to port.
func (c *Core) checkInterrupt() {
	if c.IPSR != 0 {
		return
	}

	pending := c.IRQs & c.IRQEn
	if pending == 0 {
		return
	}

	irq := highestPriorityIRQ(pending)
	c.IRQs &^= 1 << uint(irq)
	c.IPSR = uint32(irq) + 1

	vector := vectorTableBase + uint32(irq)*4
	handler := uint32(c.Flash[vector>>1]) | uint32(c.Flash[vector>>1+1])<<16

	c.irqReturnPC = c.R[PC]
	c.R[LR] = irqReturnSentinel
	c.R[PC] = handler &^ 1
}

// IRQReturn is called by the firmware's interrupt epilogue (a BX LR or
// POP {PC} to the sentinel LR value) to resume the interrupted instruction
// stream.
func (c *Core) IRQReturn() {
	c.R[PC] = c.irqReturnPC
	c.IPSR = 0
}

// highestPriorityIRQ returns the lowest bit index set in pending: IRQ 0 has
// the highest priority, matching the node's IRQ numbering (TRX=0,
// SYS_TIMER[0..3]=1..4).
func highestPriorityIRQ(pending uint32) int {
	for i := 0; i < 32; i++ {
		if pending&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

const (
	vectorTableBase   = 0
	irqReturnSentinel = 0xfffffff9
)
