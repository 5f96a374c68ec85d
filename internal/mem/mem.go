// Package mem implements the flat, power-of-two-sized byte-addressable
// memory used for a node's RAM. Size also bounds the firmware image, which
// a node keeps in a separate flash slice.
package mem

import "encoding/binary"

const (
	// Size is the capacity of a memory region: 128 KiB of flash or RAM.
	Size = 128 * 1024
	// Mask wraps any address into the region.
	Mask = Size - 1
)

// Region is a flat byte-addressable block of memory. Unlike the C
// implementation's pointer-cast aliasing between uint8_t*/uint16_t*/uint32_t*
// views of the same buffer, accesses here go through encoding/binary in
// little-endian order; halfword and word addresses are rounded down to
// their natural alignment.
type Region struct {
	Bytes [Size]byte
}

func (m *Region) ReadByte(addr uint32) uint8 {
	return m.Bytes[addr&Mask]
}

func (m *Region) WriteByte(addr uint32, data uint8) {
	m.Bytes[addr&Mask] = data
}

func (m *Region) ReadHalf(addr uint32) uint16 {
	off := (addr & Mask) &^ 1
	return binary.LittleEndian.Uint16(m.Bytes[off : off+2])
}

func (m *Region) WriteHalf(addr uint32, data uint16) {
	off := (addr & Mask) &^ 1
	binary.LittleEndian.PutUint16(m.Bytes[off:off+2], data)
}

func (m *Region) ReadWord(addr uint32) uint32 {
	off := (addr & Mask) &^ 3
	return binary.LittleEndian.Uint32(m.Bytes[off : off+4])
}

func (m *Region) WriteWord(addr uint32, data uint32) {
	off := (addr & Mask) &^ 3
	binary.LittleEndian.PutUint32(m.Bytes[off:off+4], data)
}
