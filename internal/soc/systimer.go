package soc

import (
	"fmt"

	"github.com/doismellburning/netsim/internal/sim"
)

// Sys timer register offsets, word-addressed.
const (
	sysTimerRegControl = 0x00 // bit0: enable, bit1: periodic
	sysTimerRegCompare = 0x04
	sysTimerRegValue   = 0x08
	sysTimerRegClear   = 0x0c
)

const (
	timerCtrlEnable   = 1 << 0
	timerCtrlPeriodic = 1 << 1
)

// IRQRaiser is implemented by Core: raising a numbered interrupt line.
type IRQRaiser interface {
	IRQSet(irq int)
}

// SysTimer is one SYS_TIMER instance: once enabled it raises its IRQ line
// Compare-Value microseconds later, optionally restarting from zero for
// periodic operation. Value does not advance between those events: it
// reads back the last value written, Compare after a one-shot expiry, or 0
// after a periodic one. There are four independent instances per node, at
// consecutive peripheral ids.
type SysTimer struct {
	irq     int
	core    IRQRaiser
	queue   *sim.EventQueue
	now     func() uint64
	control uint32
	compare uint32
	value   uint32
	event   *sim.Event
}

func NewSysTimer(irq int, core IRQRaiser, queue *sim.EventQueue, now func() uint64) *SysTimer {
	return &SysTimer{irq: irq, core: core, queue: queue, now: now}
}

func (t *SysTimer) ReadByte(offset uint32) uint8 {
	panic(fmt.Sprintf("unhandled sys_timer byte read @ 0x%06x", offset))
}

func (t *SysTimer) ReadHalf(offset uint32) uint16 {
	panic(fmt.Sprintf("unhandled sys_timer halfword read @ 0x%06x", offset))
}

func (t *SysTimer) ReadWord(offset uint32) uint32 {
	switch offset {
	case sysTimerRegControl:
		return t.control
	case sysTimerRegCompare:
		return t.compare
	case sysTimerRegValue:
		return t.value
	default:
		panic(fmt.Sprintf("unhandled sys_timer word read @ 0x%06x", offset))
	}
}

func (t *SysTimer) WriteByte(offset uint32, data uint8) {
	panic(fmt.Sprintf("unhandled sys_timer byte write @ 0x%06x [= 0x%02x]", offset, data))
}

func (t *SysTimer) WriteHalf(offset uint32, data uint16) {
	panic(fmt.Sprintf("unhandled sys_timer halfword write @ 0x%06x [= 0x%04x]", offset, data))
}

func (t *SysTimer) WriteWord(offset uint32, data uint32) {
	switch offset {
	case sysTimerRegControl:
		t.control = data
		t.reschedule()
	case sysTimerRegCompare:
		t.compare = data
		t.reschedule()
	case sysTimerRegValue:
		t.value = data
	case sysTimerRegClear:
		if t.event != nil {
			t.queue.Remove(t.event)
			t.event = nil
		}
	default:
		panic(fmt.Sprintf("unhandled sys_timer word write @ 0x%06x [= 0x%08x]", offset, data))
	}
}

func (t *SysTimer) reschedule() {
	if t.event != nil {
		t.queue.Remove(t.event)
		t.event = nil
	}
	if t.control&timerCtrlEnable == 0 || t.compare <= t.value {
		return
	}

	t.event = &sim.Event{Timeout: uint64(t.compare - t.value)}
	t.event.Callback = t.fire
	t.queue.Add(t.event, t.now())
}

func (t *SysTimer) fire(*sim.Event) {
	t.value = t.compare
	t.core.IRQSet(t.irq)
	t.event = nil
	if t.control&timerCtrlPeriodic != 0 {
		t.value = 0
		t.reschedule()
	}
}
