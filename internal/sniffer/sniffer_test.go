package sniffer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterHeaderAndFrame(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "capture-%Y%m%d.txt")
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	w, err := Create(pattern, ts)
	require.NoError(t, err)

	require.NoError(t, w.Write(100, -42.5, []byte{0x01, 0x02, 0x03, 0xaa, 0xbb}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "capture-20260102.txt"))
	require.NoError(t, err)

	contents := string(data)
	assert.Contains(t, contents, "#Format=4\r\n")
	assert.Contains(t, contents, "SNA v5.5.5.5")
	assert.Contains(t, contents, "010203ffff")
}
