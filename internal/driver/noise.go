package driver

import "github.com/doismellburning/netsim/internal/sim"

// Noise is a toggling interference source: it alternates between an "on"
// duration radiating Power and an "off" duration radiating nothing.
type Noise struct {
	Name string
	On   uint64
	Off  uint64

	state bool
	queue *sim.EventQueue
	now   func() uint64
	event *sim.Event
}

func NewNoise(name string, on, off uint64, queue *sim.EventQueue, now func() uint64) *Noise {
	return &Noise{Name: name, On: on, Off: off, queue: queue, now: now}
}

// State reports whether the source is currently radiating.
func (n *Noise) State() bool { return n.state }

// Start begins the on/off cycle from the off phase.
func (n *Noise) Start() {
	n.state = false
	n.scheduleNext(n.Off)
}

func (n *Noise) scheduleNext(timeout uint64) {
	n.event = &sim.Event{Timeout: timeout, Callback: n.toggle}
	n.queue.Add(n.event, n.now())
}

func (n *Noise) toggle(*sim.Event) {
	n.state = !n.state
	if n.state {
		n.scheduleNext(n.On)
	} else {
		n.scheduleNext(n.Off)
	}
}
