// Package logging provides a thin charmbracelet/log wrapper that tags
// every line with the subsystem it came from (core, trx, medium, noise,
// sniffer, config, sim), the way the reference's DEBUG()/CORE_DBG()/
// TRX_DBG() macros prefix their printf output with a module name.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger tagged with component, writing to stderr at
// exactly level; it does not consult DefaultLevel.
func New(component string, level log.Level) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          component,
	})
	l.SetLevel(level)
	return l
}

// DefaultLevel returns the component's default verbosity absent an
// explicit --log-level override. Per the reference's compile-time debug
// toggles (DEBUG_CORE, DEBUG_TRX and DEBUG_NOISE default off, DEBUG_LOG
// defaults on), sim/config default to Info and every other component to
// Warn.
func DefaultLevel(component string) log.Level {
	switch component {
	case "sim", "config":
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}
