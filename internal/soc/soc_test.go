package soc

import (
	"testing"

	"github.com/doismellburning/netsim/internal/mem"
	"github.com/stretchr/testify/assert"
)

type fakeIRQ struct {
	enabled uint32
	asleep  bool
	set     []int
}

func (f *fakeIRQ) SetIRQEnable(mask uint32) { f.enabled = mask }
func (f *fakeIRQ) Sleep()                   { f.asleep = true }
func (f *fakeIRQ) IRQSet(irq int)           { f.set = append(f.set, irq) }

func TestSOCUnhandledAccessPanics(t *testing.T) {
	s := New("n0")
	assert.Panics(t, func() { s.ReadWord(0x02000000) })
}

func TestSOCRAMRoundTrip(t *testing.T) {
	s := New("n0")
	var ram mem.Region
	s.Attach(IDs.RAM, &ram)

	s.WriteWord(uint32(IDs.RAM)<<24|0x10, 0xcafebabe)
	assert.Equal(t, uint32(0xcafebabe), s.ReadWord(uint32(IDs.RAM)<<24|0x10))
}

func TestSysCtrlIRQEnable(t *testing.T) {
	irq := &fakeIRQ{}
	ctrl := NewSysCtrl(irq)
	ctrl.WriteWord(sysCtrlRegIRQEn, 0x3)
	assert.Equal(t, uint32(0x3), irq.enabled)
	assert.Equal(t, uint32(0x3), ctrl.ReadWord(sysCtrlRegIRQEn))
}

func TestSysCtrlByteAccessPanics(t *testing.T) {
	ctrl := NewSysCtrl(&fakeIRQ{})
	assert.Panics(t, func() { ctrl.ReadByte(0) })
}

func TestSysCtrlSleep(t *testing.T) {
	irq := &fakeIRQ{}
	ctrl := NewSysCtrl(irq)
	ctrl.WriteWord(sysCtrlRegSleep, 1)
	assert.True(t, irq.asleep)
}
