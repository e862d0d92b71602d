package singleinstance

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultPortStart = 49600
	defaultPortEnd   = 49650

	minPort = 1024
	maxPort = 65535
)

// PortRange is the inclusive loopback range scanned for a resident. The
// resident itself only ever binds Start.
type PortRange struct {
	Start, End int
}

func (r PortRange) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// Ports reads SINGLEINSTANCE_PORT_START and SINGLEINSTANCE_PORT_END. Unset or
// non-numeric values keep the defaults; the result is ordered and clamped to
// unprivileged ports.
func Ports() PortRange {
	r := PortRange{
		Start: envPort("SINGLEINSTANCE_PORT_START", defaultPortStart),
		End:   envPort("SINGLEINSTANCE_PORT_END", defaultPortEnd),
	}
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	r.Start = max(r.Start, minPort)
	r.End = min(max(r.End, r.Start), maxPort)
	return r
}

func envPort(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}
