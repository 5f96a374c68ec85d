// Package trx implements the node's 802.15.4-style transceiver: its
// register-mapped peripheral interface, CSMA/CA backoff, auto-ACK
// turnaround, MAC frame filtering, and CRC handling. Propagation and
// contention between transceivers is modeled by internal/medium; this
// package only knows about one radio's own state machine.
package trx

import (
	"fmt"

	"github.com/doismellburning/netsim/internal/sim"
)

// State is one point in the transceiver's state machine.
type State int

const (
	StateSleep State = iota
	StateTRXOff
	StateIdle
	StateRXOn
	StateBusyRX
	StateRXAACK
	StateTXAckPending
	StateBusyTX
	StateTXARETBackoff
	StateTXARETCCA
	StateTXARETTX
	StateTXARETWaitAck
	StateTXARETDone
)

const (
	regMaskOffset = 0x7f // TRX_REG_MASK: buf is 128 bytes, reg fits under 0x54

	regState      = 0x02
	regIRQStatus  = 0x0f
	regIRQMask    = 0x0e
	regCCAMode    = 0x08
	regChannel    = 0x09
	regTxPower    = 0x05
	regFrameStart = 0x1000 // buf window: TRX_FRAME_START_REG
)

// IRQ bits in the IRQ status/mask registers.
const (
	IRQRxStart  = 1 << 0
	IRQRxEnd    = 1 << 1
	IRQTxEnd    = 1 << 2
	IRQCCAReady = 1 << 3
)

const (
	ackWaitDuration = (20 + 12 + 10 + 6*2) * 16 // 864us
	ccaDuration     = 8 * 16
	backoffUnit     = 20 * 16
	maxCSMABackoffs = 5
	maxFrameRetries = 3
	turnaroundTime  = 12 * 16
)

// Medium is the shared-radio side of the contract: trx asks it to start
// or stop transmitting, and to run a CCA sample.
type Medium interface {
	TxStart(t *TRX, frame []byte)
	TxEnd(t *TRX)
	CCAFree(t *TRX, mode int) bool
	Rand() *sim.Rand
}

// IRQRaiser notifies the owning node's core of a pending interrupt line.
type IRQRaiser interface {
	IRQSet(irq int)
}

// TRX is one node's transceiver.
type TRX struct {
	Name string

	state State

	irqStatus uint8
	irqMask   uint8
	ccaMode   uint8
	channel   uint8
	txPower   uint8

	buf [128]byte // frame buffer, 1 length byte + up to 127 PSDU bytes

	csmaRetries  int
	frameRetries int
	isAckFrame   bool
	waitForAck   bool

	queue     *sim.EventQueue
	now       func() uint64
	medium    Medium
	irq       IRQRaiser
	irqLine   int

	event *sim.Event
}

func New(name string, queue *sim.EventQueue, now func() uint64, medium Medium, irq IRQRaiser, irqLine int) *TRX {
	return &TRX{
		Name:    name,
		state:   StateTRXOff,
		queue:   queue,
		now:     now,
		medium:  medium,
		irq:     irq,
		irqLine: irqLine,
	}
}

func (t *TRX) State() State { return t.state }

var stateNames = [...]string{
	"SLEEP", "TRX_OFF", "IDLE", "RX_ON", "BUSY_RX", "RX_AACK",
	"TX_ACK_PENDING", "BUSY_TX", "TX_ARET_BACKOFF", "TX_ARET_CCA",
	"TX_ARET_TX", "TX_ARET_WAIT_ACK", "TX_ARET_DONE",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

func (t *TRX) setState(s State) { t.state = s }

func (t *TRX) raise(bit uint8) {
	t.irqStatus |= bit
	if t.irqMask&bit != 0 {
		t.irq.IRQSet(t.irqLine)
	}
}

// addEvent schedules a callback timeout cycles from now, fataling if an
// event is already outstanding for this TRX (the reference treats this as
// programmer error, never a recoverable condition).
func (t *TRX) addEvent(timeout uint64, cb func(*sim.Event)) {
	if t.event != nil {
		panic(fmt.Sprintf("trx %s: event already planned", t.Name))
	}
	t.event = &sim.Event{Timeout: timeout, Callback: func(e *sim.Event) {
		t.event = nil
		cb(e)
	}}
	t.queue.Add(t.event, t.now())
}

// Send begins a CSMA/CA-mediated transmission of frame, copying it into buf
// behind a length byte.
func (t *TRX) Send(frame []byte) {
	copy(t.buf[1:], frame)
	t.buf[0] = byte(len(frame))
	t.csmaRetries = 0
	t.frameRetries = 0
	t.setState(StateTXARETBackoff)
	t.scheduleBackoff()
}

func (t *TRX) scheduleBackoff() {
	backoffPeriods := 1 + int(t.medium.Rand().Next()%8)
	t.addEvent(uint64(backoffPeriods*backoffUnit), t.backoffDone)
}

func (t *TRX) backoffDone(*sim.Event) {
	t.setState(StateTXARETCCA)
	if t.medium.CCAFree(t, int(t.ccaMode)) {
		t.raise(IRQCCAReady)
		t.transmitFrame()
		return
	}

	t.csmaRetries++
	if t.csmaRetries > maxCSMABackoffs {
		t.setState(StateTXARETDone)
		t.raise(IRQTxEnd)
		return
	}
	t.setState(StateTXARETBackoff)
	t.scheduleBackoff()
}

func (t *TRX) transmitFrame() {
	t.setState(StateTXARETTX)
	frame := append([]byte(nil), t.buf[1:1+t.buf[0]]...)
	frame = insertCRC(frame)
	t.medium.TxStart(t, frame)

	txTime := uint64(len(frame)) * 32 // 32us/byte at 250kbps
	t.addEvent(txTime, t.txEndCB)
}

func (t *TRX) txEndCB(*sim.Event) {
	t.medium.TxEnd(t)
	t.raise(IRQTxEnd)

	if t.isAckFrame {
		t.setState(StateIdle)
		t.isAckFrame = false
		return
	}

	if !t.waitForAck {
		t.setState(StateTXARETDone)
		return
	}

	t.setState(StateTXARETWaitAck)
	t.addEvent(ackWaitDuration, t.ackWaitTimeout)
}

func (t *TRX) ackWaitTimeout(*sim.Event) {
	t.frameRetries++
	if t.frameRetries > maxFrameRetries {
		t.setState(StateTXARETDone)
		t.raise(IRQTxEnd)
		return
	}
	t.csmaRetries = 0
	t.setState(StateTXARETBackoff)
	t.scheduleBackoff()
}

// AckReceived is called by the medium when a matching ACK arrives while
// this TRX is in StateTXARETWaitAck.
func (t *TRX) AckReceived() {
	if t.state != StateTXARETWaitAck {
		return
	}
	if t.event != nil {
		t.queue.Remove(t.event)
		t.event = nil
	}
	t.setState(StateTXARETDone)
	t.raise(IRQTxEnd)
}

// RxStart is called by the medium when a frame begins arriving.
func (t *TRX) RxStart() {
	if t.state != StateRXOn && t.state != StateIdle {
		return
	}
	t.setState(StateBusyRX)
	t.raise(IRQRxStart)
}

// RxEnd is called by the medium once a frame finishes arriving. frame
// excludes the length byte but includes the trailing CRC.
func (t *TRX) RxEnd(frame []byte) {
	if t.state != StateBusyRX {
		return
	}

	ok := checkCRC(frame)
	t.buf[0] = byte(len(frame))
	copy(t.buf[1:], frame)
	t.raise(IRQRxEnd)

	if ok && trxFilterFrame(frame) && wantsAck(frame) {
		t.sendAck(frame)
		return
	}

	t.setState(StateIdle)
}

func (t *TRX) sendAck(frame []byte) {
	seq := frame[2]
	ack := []byte{0x02, 0x00, seq}
	t.isAckFrame = true
	t.setState(StateBusyTX)
	t.addEvent(turnaroundTime, func(*sim.Event) {
		t.buf[0] = byte(len(ack))
		copy(t.buf[1:], ack)
		t.transmitFrame()
	})
}

func wantsAck(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}
	fcf := uint16(frame[0]) | uint16(frame[1])<<8
	return fcf&(1<<5) != 0
}
