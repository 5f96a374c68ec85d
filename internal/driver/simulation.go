package driver

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/doismellburning/netsim/internal/config"
	"github.com/doismellburning/netsim/internal/medium"
	"github.com/doismellburning/netsim/internal/mem"
	"github.com/doismellburning/netsim/internal/sim"
	"github.com/doismellburning/netsim/internal/sniffer"
	"github.com/golang/geo/r2"
)

// Simulation owns the global cycle counter, the event queue every node and
// peripheral schedules against, the shared medium, and every node, noise
// source, and sniffer in the scenario.
type Simulation struct {
	Cycle uint64
	Until uint64

	Queue  sim.EventQueue
	Rand   *sim.Rand
	Medium *medium.Medium

	Nodes    []*Node
	Noises   []*driverNoise
	Sniffers []*sniffer.Writer

	logger *log.Logger
}

type driverNoise struct {
	*Noise
	medium *medium.Noise
}

// New builds a Simulation from a parsed scenario. logger is used for the
// simulation's own top-level progress messages and is also passed to every
// node's CPU through NewNode.
func New(scenario *config.Scenario, logger *log.Logger) (*Simulation, error) {
	s := &Simulation{
		Until:  scenario.Time,
		Rand:   sim.NewRand(scenario.Seed),
		logger: logger,
	}
	s.Medium = medium.New(s.Rand)

	now := func() uint64 { return s.Cycle }

	for _, nc := range scenario.Nodes {
		firmware, err := config.LoadFirmware(nc.Path, mem.Size)
		if err != nil {
			return nil, err
		}
		flashWords := bytesToWords(firmware)

		n := NewNode(nc.Name, nc.ID, r2.Point{X: nc.X, Y: nc.Y}, flashWords, &s.Queue, now, s.Medium, logger)
		n.Boot()
		s.Nodes = append(s.Nodes, n)

		s.Medium.AddNode(&medium.Node{
			Radio:    n.Radio,
			Position: n.Position,
			Freq:     2400000000,
			TxPower:  0,
		})
	}

	for _, nc := range scenario.Noises {
		dn := NewNoise(nc.Name, uint64(nc.On), uint64(nc.Off), &s.Queue, now)
		dn.Start()
		mn := &medium.Noise{Name: nc.Name, Position: r2.Point{X: nc.X, Y: nc.Y}, Freq: nc.FreqLow, Power: nc.Power}
		s.Medium.AddNoise(mn)
		s.Noises = append(s.Noises, &driverNoise{Noise: dn, medium: mn})
	}

	for _, sc := range scenario.Sniffers {
		w, err := sniffer.Create(sc.Path, time.Now())
		if err != nil {
			return nil, err
		}
		s.Sniffers = append(s.Sniffers, w)
		capture := w
		cycleFn := now
		s.Medium.AddSniffer(&medium.Sniffer{
			Name: sc.Name, Position: r2.Point{X: sc.X, Y: sc.Y},
			FreqLow: sc.FreqLow, FreqHigh: sc.FreqHigh, Sensitivity: sc.Sensitivity,
			Capture: func(frame []byte, rssi float64) {
				if err := capture.Write(cycleFn(), rssi, frame); err != nil {
					logger.Fatal("cannot write capture file", "err", err)
				}
			},
		})
	}

	resolveLosses(scenario, s)

	return s, nil
}

func resolveLosses(scenario *config.Scenario, s *Simulation) {
	nodeIndex := map[string]int{}
	for i, n := range scenario.Nodes {
		nodeIndex[n.Name] = i
	}
	for _, loss := range scenario.Losses {
		a, aok := nodeIndex[loss.From]
		b, bok := nodeIndex[loss.To]
		if aok && bok {
			s.Medium.SetExtraLoss(a, b, loss.LossDB)
		}
	}
}

func bytesToWords(b []byte) []uint16 {
	words := make([]uint16, (len(b)+1)/2)
	for i := range words {
		lo := uint16(b[i*2])
		var hi uint16
		if i*2+1 < len(b) {
			hi = uint16(b[i*2+1])
		}
		words[i] = lo | hi<<8
	}
	return words
}

// Run drives the simulation forward until the earlier of s.Until (0
// meaning unbounded) and stop being closed, clocking every node once per
// cycle and firing due events between cycles.
func (s *Simulation) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			s.logger.Info("simulation interrupted", "cycle", s.Cycle)
			return
		default:
		}

		if s.Until != 0 && s.Cycle >= s.Until {
			return
		}

		for _, n := range s.Nodes {
			n.Clk()
		}

		s.Queue.Tick(s.Cycle)
		s.Cycle++
	}
}

// Close flushes and closes every open sniffer capture file.
func (s *Simulation) Close() error {
	var firstErr error
	for _, w := range s.Sniffers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing capture file: %w", err)
		}
	}
	return firstErr
}

// NodeNames returns every node's name, sorted, for deterministic reporting.
func (s *Simulation) NodeNames() []string {
	names := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		names[i] = n.Name
	}
	sort.Strings(names)
	return names
}
