// Package sniffer writes captured 802.15.4 frames to a packet-capture
// file in the text format the reference tooling's companion analysis
// scripts expect: a fixed two-line header followed by one line per frame.
package sniffer

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/lestrrat-go/strftime"
)

const (
	headerFormat = "#Format=4\r\n"
	headerSUS    = "# SNA v5.5.5.5 SUS:20140418 ACT:000000\r\n"
)

// Writer appends captured frames to an open capture file.
type Writer struct {
	w   io.Writer
	seq int
}

// Create opens a new capture file at a path built from pattern by
// expanding strftime directives against t (e.g. "capture-%Y%m%d-%H%M%S.txt"),
// and writes the fixed header.
func Create(pattern string, t time.Time) (*Writer, error) {
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("sniffer: bad capture file pattern: %w", err)
	}
	path := f.FormatString(t)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sniffer: cannot open capture file %s: %w", path, err)
	}

	w := &Writer{w: file}
	if _, err := io.WriteString(file, headerFormat+headerSUS); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends one captured frame. The frame's trailing 2-byte CRC is
// never meaningful once captured off the air (it was already validated, or
// not, by the receiving TRX), so it's always rendered as the sentinel
// "ffff" rather than the frame's real FCS bytes. The line holds the
// sequence number, the time in seconds (cycle is in microseconds), the
// frame size, the hex bytes, fixed fields, and the RSSI rounded to an
// integer.
func (w *Writer) Write(cycle uint64, rssi float64, frame []byte) error {
	w.seq++

	hex := make([]byte, 0, len(frame)*2)
	for i, b := range frame {
		if i >= len(frame)-2 {
			break
		}
		hex = append(hex, fmt.Sprintf("%02x", b)...)
	}
	hex = append(hex, "ffff"...)

	_, err := fmt.Fprintf(w.w, "%d %.6f %d %s 255 1 %d 15 0 0 1 32767\r\n",
		w.seq, float64(cycle)/1e6, len(frame), hex, int(math.Round(rssi)))
	return err
}

// Close closes the underlying file, if it implements io.Closer.
func (w *Writer) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
