package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBus struct {
	mem [256]byte
}

func (b *fakeBus) ReadByte(addr uint32) uint8 { return b.mem[addr] }
func (b *fakeBus) ReadHalf(addr uint32) uint16 {
	return uint16(b.mem[addr]) | uint16(b.mem[addr+1])<<8
}
func (b *fakeBus) ReadWord(addr uint32) uint32 {
	return uint32(b.ReadHalf(addr)) | uint32(b.ReadHalf(addr+2))<<16
}
func (b *fakeBus) WriteByte(addr uint32, d uint8)  { b.mem[addr] = d }
func (b *fakeBus) WriteHalf(addr uint32, d uint16) { b.mem[addr] = uint8(d); b.mem[addr+1] = uint8(d >> 8) }
func (b *fakeBus) WriteWord(addr uint32, d uint32) {
	b.WriteHalf(addr, uint16(d))
	b.WriteHalf(addr+2, uint16(d>>16))
}

func newTestCore(opcodes ...uint16) *Core {
	flash := make([]uint16, 0x100)
	copy(flash, opcodes)
	bus := &fakeBus{}
	c := New("t", flash, bus, nil)
	c.Reset()
	return c
}

func TestMovImmSetsFlags(t *testing.T) {
	c := newTestCore(0x2005) // MOVS r0, #5
	c.Clk()
	assert.Equal(t, uint32(5), c.R[0])
	assert.False(t, c.Z)
	assert.False(t, c.N)
}

func TestAddRegComputesSumAndFlags(t *testing.T) {
	c := newTestCore(0x1888) // ADDS r0, r1, r2
	c.R[1] = 10
	c.R[2] = 20
	c.Clk()
	assert.Equal(t, uint32(30), c.R[0])
}

func TestSubRegUnderflowSetsCarryFalse(t *testing.T) {
	c := newTestCore(0x1a88) // SUBS r0, r1, r2
	c.R[1] = 0
	c.R[2] = 1
	c.Clk()
	assert.Equal(t, uint32(0xffffffff), c.R[0])
	assert.False(t, c.C)
}

func TestBCondBranchesWhenConditionHolds(t *testing.T) {
	c := newTestCore(0xd002) // BEQ #2*2
	c.Z = true
	pcBefore := c.R[PC]
	c.Clk()
	assert.Equal(t, pcBefore+2+4, c.R[PC])
}

func TestUnconditionalBranch(t *testing.T) {
	c := newTestCore(0xe001) // B #1*2
	pcBefore := c.R[PC]
	c.Clk()
	assert.Equal(t, pcBefore+2+2, c.R[PC])
}

func TestUndefinedOpcodePanics(t *testing.T) {
	c := newTestCore(0xffff)
	assert.Panics(t, func() { c.Clk() })
}
