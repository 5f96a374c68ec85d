package driver

import (
	"github.com/charmbracelet/log"
	"github.com/doismellburning/netsim/internal/core"
	"github.com/doismellburning/netsim/internal/mem"
	"github.com/doismellburning/netsim/internal/sim"
	"github.com/doismellburning/netsim/internal/soc"
	"github.com/doismellburning/netsim/internal/trx"
	"github.com/golang/geo/r2"
)

// Node is one simulated device: its CPU, flash/RAM, bus, and transceiver,
// wired together and clocked once per simulation tick.
type Node struct {
	Name     string
	ID       int64
	Position r2.Point

	CPU   *core.Core
	Bus   *soc.SOC
	Flash []uint16
	RAM   mem.Region
	Radio *trx.TRX
}

// NewNode builds a node from a firmware image, attaching RAM, four system
// timers, and a transceiver to the bus. Flash is never bus-mapped: the CPU
// fetches instructions directly from its own Flash slice, the way the
// reference's core_clk indexes its flash pointer rather than going through
// the peripheral dispatch soc_read_* uses for everything else.
func NewNode(name string, id int64, pos r2.Point, flashWords []uint16, queue *sim.EventQueue, now func() uint64, medium trx.Medium, logger *log.Logger) *Node {
	n := &Node{Name: name, ID: id, Position: pos, Flash: flashWords}

	n.Bus = soc.New(name)
	n.Bus.Attach(soc.IDs.RAM, &n.RAM)

	n.CPU = core.New(name, flashWords, n.Bus, logger)
	n.CPU.Reset()

	n.Bus.Attach(soc.IDs.SysCtrl, soc.NewSysCtrl(n.CPU))

	for i := 0; i < 4; i++ {
		timer := soc.NewSysTimer(i+1, n.CPU, queue, now)
		n.Bus.Attach(soc.TimerPeripheralID(i), timer)
	}

	n.Radio = trx.New(name, queue, now, medium, n.CPU, 0)
	n.Bus.Attach(soc.IDs.TRX, n.Radio)

	return n
}

// Boot sets SP and PC from the firmware's vector table (words 0 and 1 of
// flash), the Cortex-M reset convention the firmware's startup code
// expects.
func (n *Node) Boot() {
	n.CPU.R[core.SP] = uint32(n.Flash[0]) | uint32(n.Flash[1])<<16
	n.CPU.R[core.PC] = (uint32(n.Flash[2]) | uint32(n.Flash[3])<<16) &^ 1
}

// Clk advances the node's CPU by one instruction.
func (n *Node) Clk() {
	n.CPU.Clk()
}
