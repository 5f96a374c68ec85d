// Package medium models the shared radio channel: free-space path loss
// between every pair of transceivers, noise sources, and sniffers, plus
// the contention (who's dominant, who gets their frame clobbered) that
// determines whether a transmission is received cleanly.
package medium

import (
	"math"

	"github.com/doismellburning/netsim/internal/sim"
	"github.com/doismellburning/netsim/internal/trx"
	"github.com/golang/geo/r2"
)

const (
	noiseFloor   = -120.0 // dBm; the constant medium.c actually uses at runtime
	addPathLoss  = 6.0    // dB; fixed penalty applied only to trx-to-trx links
	speedOfLight = 299792458.0
)

// padd adds two dB-domain power quantities: 10*log10(10^(a/10)+10^(b/10)).
func padd(a, b float64) float64 {
	return 10 * math.Log10(math.Pow(10, a/10)+math.Pow(10, b/10))
}

// psub subtracts b from a in the dB domain, the inverse of padd. Callers
// must ensure a > b.
func psub(a, b float64) float64 {
	return 10 * math.Log10(math.Pow(10, a/10) - math.Pow(10, b/10))
}

func pathLoss(distance, freqHz float64) float64 {
	if distance <= 0 {
		distance = 0.01
	}
	lambda := speedOfLight / freqHz
	return 20 * math.Log10(4*math.Pi*distance/lambda)
}

// Node is one transceiver attached to the medium.
type Node struct {
	Radio    *trx.TRX
	Position r2.Point
	Freq     float64
	TxPower  float64

	rxLQI    float64
	receiving bool
	txFrame   []byte // frame of this node's current or last transmission
}

// Noise is an interfering source toggling between on/off power levels.
type Noise struct {
	Name     string
	Position r2.Point
	Freq     float64
	Power    float64
	On       bool
}

// Sniffer is a passive capture point; it never transmits or contends.
type Sniffer struct {
	Name        string
	Position    r2.Point
	FreqLow     float64
	FreqHigh    float64
	Sensitivity float64
	Capture     func(frame []byte, rssi float64)
}

// Medium owns every node, noise source, and sniffer and mediates
// propagation between them.
type Medium struct {
	nodes    []*Node
	noises   []*Noise
	sniffers []*Sniffer
	extra    map[[2]int]float64 // lazily-populated per-pair extra loss, in dB

	rnd *sim.Rand

	transmitting map[*Node]bool
}

func New(rnd *sim.Rand) *Medium {
	return &Medium{extra: make(map[[2]int]float64), transmitting: make(map[*Node]bool), rnd: rnd}
}

func (m *Medium) AddNode(n *Node)       { m.nodes = append(m.nodes, n) }
func (m *Medium) AddNoise(n *Noise)     { m.noises = append(m.noises, n) }
func (m *Medium) AddSniffer(s *Sniffer) { m.sniffers = append(m.sniffers, s) }

// SetExtraLoss records an additional, symmetric loss between two nodes,
// given by index into m.nodes. Only node-to-node links consult it; paths
// from noise sources and to sniffers never carry extra loss.
func (m *Medium) SetExtraLoss(a, b int, lossDB float64) {
	key := [2]int{a, b}
	if a > b {
		key = [2]int{b, a}
	}
	m.extra[key] = lossDB
}

func (m *Medium) extraLoss(a, b int) float64 {
	key := [2]int{a, b}
	if a > b {
		key = [2]int{b, a}
	}
	return m.extra[key]
}

func (m *Medium) nodeIndex(n *Node) int {
	for i, c := range m.nodes {
		if c == n {
			return i
		}
	}
	return -1
}

// rssiAt computes the received power at receiver from a transmission at
// txPower dBm, txPos, over distance-based free-space path loss plus a
// fixed 6dB penalty and random fading. fade is only applied to node-node
// links per the reference; noise and sniffer paths never see it.
func (m *Medium) rssiAt(txPower float64, txPos, rxPos r2.Point, freq float64, extra float64, applyNodeLinkTerms bool) float64 {
	d := txPos.Sub(rxPos).Norm()
	loss := pathLoss(d, freq) + extra
	if applyNodeLinkTerms {
		loss += addPathLoss
		loss -= 10 * math.Log10(float64(m.rnd.NextFloat())+1e-6)
	}
	return txPower - loss
}

// TxStart is called by a TRX beginning transmission. It computes the RSSI
// seen at every other node and starts reception at nodes not already
// receiving whose RSSI clears the noise floor; that RSSI is not added to
// any interference total.
func (m *Medium) TxStart(radio *trx.TRX, frame []byte) {
	tx := m.findByRadio(radio)
	if tx == nil {
		return
	}
	txIdx := m.nodeIndex(tx)
	m.transmitting[tx] = true
	tx.txFrame = frame

	for i, rx := range m.nodes {
		if rx == tx {
			continue
		}
		rssi := m.rssiAt(tx.TxPower, tx.Position, rx.Position, tx.Freq, m.extraLoss(txIdx, i), true)
		if rssi < noiseFloor {
			continue
		}
		if !rx.receiving {
			rx.receiving = true
			rx.rxLQI = 1.0
			rx.Radio.RxStart()
		}
	}

	for _, s := range m.sniffers {
		rssi := m.rssiAt(tx.TxPower, tx.Position, s.Position, tx.Freq, 0, false)
		if rssi >= s.Sensitivity && s.Capture != nil {
			s.Capture(frame, rssi)
		}
	}
}

// TxEnd is called once the transmitting TRX finishes sending its frame.
// Every other node still receiving is handed that frame through RxEnd.
func (m *Medium) TxEnd(radio *trx.TRX) {
	tx := m.findByRadio(radio)
	if tx == nil {
		return
	}
	delete(m.transmitting, tx)

	for _, rx := range m.nodes {
		if rx == tx || !rx.receiving {
			continue
		}
		rx.receiving = false
		rx.Radio.RxEnd(tx.txFrame)
	}
}

// CCAFree runs a clear-channel-assessment sample for radio, true meaning
// the channel looks free to transmit on. Mode selects which of the five
// 802.15.4 CCA algorithms to apply; modes 3-5 combine energy and carrier
// sense, which here both collapse to the same aggregate-noise comparison
// since this model doesn't simulate modulation-level carrier detection.
func (m *Medium) CCAFree(radio *trx.TRX, mode int) bool {
	rx := m.findByRadio(radio)
	if rx == nil {
		return true
	}
	idx := m.nodeIndex(rx)

	noise := noiseFloor
	for i, other := range m.nodes {
		if other == rx || !m.transmitting[other] {
			continue
		}
		rssi := m.rssiAt(other.TxPower, other.Position, rx.Position, other.Freq, m.extraLoss(idx, i), true)
		noise = padd(noise, rssi)
	}
	for _, n := range m.noises {
		if !n.On {
			continue
		}
		rssi := m.rssiAt(n.Power, n.Position, rx.Position, n.Freq, 0, false)
		noise = padd(noise, rssi)
	}

	switch mode {
	case 1, 3, 4, 5:
		return noise < noiseFloor+6 // energy-above-threshold style modes
	case 2:
		return len(m.transmitting) == 0 // pure carrier sense
	default:
		return noise < noiseFloor+6
	}
}

func (m *Medium) Rand() *sim.Rand { return m.rnd }

func (m *Medium) findByRadio(radio *trx.TRX) *Node {
	for _, n := range m.nodes {
		if n.Radio == radio {
			return n
		}
	}
	return nil
}
