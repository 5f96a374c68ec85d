package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicScenario(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		"seed 42",
		"time 1000000",
		"scale 2.0",
		"node alice 1.0 2.0 100 fw/alice.bin",
		"sniffer sniff0 0 0 2400-2480 -90 sniff.txt",
		"noise jammer 5 5 2400-2480 -20 100 200",
		"loss alice jammer 3.5",
		"# a comment",
		"",
	}, "\n"))

	s, err := Parse("test", src)
	require.NoError(t, err)

	assert.Equal(t, uint32(42), s.Seed)
	assert.Equal(t, uint64(1000000), s.Time)
	assert.Equal(t, 2.0, s.Scale)
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, "alice", s.Nodes[0].Name)
	assert.Equal(t, 2.0, s.Nodes[0].X) // scaled by 2.0
	require.Len(t, s.Sniffers, 1)
	require.Len(t, s.Noises, 1)
	require.Len(t, s.Losses, 1)
}

func TestParseDuplicateNodeFails(t *testing.T) {
	src := strings.NewReader("node a 0 0 1 fw.bin\nnode a 0 0 2 fw.bin\n")
	_, err := Parse("test", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestParseInvalidNameFails(t *testing.T) {
	src := strings.NewReader("node 9a 0 0 1 fw.bin\n")
	_, err := Parse("test", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with alphabetic")
}

func TestParseExtraJunkFails(t *testing.T) {
	src := strings.NewReader("seed 1 extra\n")
	_, err := Parse("test", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra junk")
}

func TestLoadFirmwareTooBig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fw.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 16), 0644))

	_, err := LoadFirmware(path, 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too big")
}

func TestLoadFirmwareFits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fw.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0644))

	data, err := LoadFirmware(path, 16)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}
