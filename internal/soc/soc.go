// Package soc wires a node's CPU to its memory-mapped peripherals: RAM,
// the system controller, the four system timers, and the transceiver.
// Flash is intentionally not bus-mapped here: the CPU fetches instructions
// directly from its own flash slice, the way the reference's core_clk
// indexes a flash pointer rather than going through peripheral dispatch.
// Addresses are dispatched by their top byte, exactly as the reference's
// soc_read_*/soc_write_* functions do.
package soc

import "fmt"

const (
	peripheralShift = 24
	peripheralMask  = 0x00ffffff

	// Peripheral identities. RAM at id 0 is a simulator addition: the
	// reference's on-disk snapshot never finished wiring RAM into its
	// peripherals table at all. SYS_CTRL, SYS_TIMER and TRX ids match the
	// reference's soc_id enum.
	idRAM     = 0x00
	idSysCtrl = 0x01
	idTimer0  = 0x02
	idTimer1  = 0x03
	idTimer2  = 0x04
	idTimer3  = 0x05
	idTRX     = 0x40
)

// Peripheral is the memory-mapped I/O contract every device on the bus
// implements. A device that doesn't support a given access width panics
// with an "unhandled access" error, mirroring peripherals whose io_ops_t
// left that function pointer NULL.
type Peripheral interface {
	ReadByte(offset uint32) uint8
	ReadHalf(offset uint32) uint16
	ReadWord(offset uint32) uint32
	WriteByte(offset uint32, data uint8)
	WriteHalf(offset uint32, data uint16)
	WriteWord(offset uint32, data uint32)
}

// SOC is the per-node bus: a 256-slot table indexed by address bits
// [31:24], dispatching the low 24 bits as a peripheral-local offset.
type SOC struct {
	Name        string
	peripherals [256]Peripheral
}

// New returns an SOC with no peripherals attached; use Attach to wire one
// in at a given id.
func New(name string) *SOC {
	return &SOC{Name: name}
}

// Attach wires p in at peripheral id.
func (s *SOC) Attach(id int, p Peripheral) {
	s.peripherals[id] = p
}

func (s *SOC) lookup(addr uint32, kind string) (Peripheral, uint32) {
	id := addr >> peripheralShift
	p := s.peripherals[id]
	if p == nil {
		panic(fmt.Sprintf("unhandled %s access @ 0x%08x", kind, addr))
	}
	return p, addr & peripheralMask
}

func (s *SOC) ReadByte(addr uint32) uint8 {
	p, off := s.lookup(addr, "byte read")
	return p.ReadByte(off)
}

func (s *SOC) ReadHalf(addr uint32) uint16 {
	p, off := s.lookup(addr, "halfword read")
	return p.ReadHalf(off)
}

func (s *SOC) ReadWord(addr uint32) uint32 {
	p, off := s.lookup(addr, "word read")
	return p.ReadWord(off)
}

func (s *SOC) WriteByte(addr uint32, data uint8) {
	p, off := s.lookup(addr, "byte write")
	p.WriteByte(off, data)
}

func (s *SOC) WriteHalf(addr uint32, data uint16) {
	p, off := s.lookup(addr, "halfword write")
	p.WriteHalf(off, data)
}

func (s *SOC) WriteWord(addr uint32, data uint32) {
	p, off := s.lookup(addr, "word write")
	p.WriteWord(off, data)
}

// TimerPeripheralID returns the peripheral id for system timer index i
// (0..3).
func TimerPeripheralID(i int) int {
	return []int{idTimer0, idTimer1, idTimer2, idTimer3}[i]
}

// IDs exposes the fixed peripheral ids for callers wiring a node together.
var IDs = struct {
	RAM, SysCtrl, TRX int
}{idRAM, idSysCtrl, idTRX}
