package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionByteAccess(t *testing.T) {
	var m Region
	m.WriteByte(4, 0xAB)
	assert.Equal(t, uint8(0xAB), m.ReadByte(4))
}

func TestRegionHalfWraps(t *testing.T) {
	var m Region
	m.WriteHalf(Size+2, 0x1234)
	assert.Equal(t, uint16(0x1234), m.ReadHalf(2))
	assert.Equal(t, uint8(0x34), m.ReadByte(2))
	assert.Equal(t, uint8(0x12), m.ReadByte(3))
}

func TestRegionWordAligns(t *testing.T) {
	var m Region
	m.WriteWord(0x10, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), m.ReadWord(0x10))
	assert.Equal(t, uint32(0xDEADBEEF), m.ReadWord(0x13))
}
