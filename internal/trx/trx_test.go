package trx

import (
	"testing"

	"github.com/doismellburning/netsim/internal/sim"
	"github.com/stretchr/testify/assert"
)

func TestCRCRoundTrip(t *testing.T) {
	payload := []byte{0x01, 0x88, 0x00, 0xaa, 0xbb}
	framed := insertCRC(append([]byte(nil), payload...))
	assert.True(t, checkCRC(framed))

	framed[0] ^= 0xff
	assert.False(t, checkCRC(framed))
}

func TestFilterFrameRejectsShort(t *testing.T) {
	assert.False(t, trxFilterFrame([]byte{0x01}))
}

func TestFilterFrameAcceptsDataFrame(t *testing.T) {
	frame := []byte{0x41, 0x88, 0x00, 0xaa, 0xbb, 0xcc, 0xdd}
	assert.True(t, trxFilterFrame(frame))
}

func TestFilterFrameRejectsSecured(t *testing.T) {
	frame := []byte{0x41 | 0x08, 0x88, 0x00}
	assert.False(t, trxFilterFrame(frame))
}

type fakeMedium struct {
	rnd      *sim.Rand
	ccaFree  bool
	txFrames [][]byte
}

func (m *fakeMedium) TxStart(t *TRX, frame []byte) { m.txFrames = append(m.txFrames, frame) }
func (m *fakeMedium) TxEnd(t *TRX)                 {}
func (m *fakeMedium) CCAFree(t *TRX, mode int) bool { return m.ccaFree }
func (m *fakeMedium) Rand() *sim.Rand              { return m.rnd }

type fakeIRQ struct{ set []int }

func (f *fakeIRQ) IRQSet(irq int) { f.set = append(f.set, irq) }

func TestSendSucceedsOnFreeChannel(t *testing.T) {
	var q sim.EventQueue
	var cycle uint64
	medium := &fakeMedium{rnd: sim.NewRand(1), ccaFree: true}
	irq := &fakeIRQ{}
	radio := New("n0", &q, func() uint64 { return cycle }, medium, irq, 0)
	radio.irqMask = IRQTxEnd

	radio.Send([]byte{0x01, 0x88, 0x00, 0xaa, 0xbb})
	assert.Equal(t, StateTXARETBackoff, radio.State())

	for i := 0; i < 100 && radio.state != StateTXARETDone; i++ {
		cycle += q.Jump(cycle)
		q.Tick(cycle)
	}

	assert.Equal(t, StateTXARETDone, radio.State())
	assert.Len(t, medium.txFrames, 1)
	assert.Contains(t, irq.set, 0)
}
