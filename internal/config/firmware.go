package config

import (
	"fmt"
	"os"
)

// LoadFirmware reads the firmware image at path into a buffer of exactly
// size bytes. A file whose length equals size is rejected as too big: the
// reference's load_file treats read() returning exactly size (rather than
// a short read) as proof there was more data it didn't get to, so an
// image must be strictly smaller than the RAM it's loaded into.
func LoadFirmware(path string, size int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open firmware file %s", path)
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("cannot open firmware file %s", path)
	}
	if n == size {
		return nil, fmt.Errorf("firmware file %s is too big", path)
	}

	return buf[:n], nil
}
