package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const detectTimeout = 300 * time.Millisecond

var (
	// ErrResidentRunning means another resident answered on the range.
	ErrResidentRunning = errors.New("singleinstance: a resident is already running")
	// ErrPortInUse means the start port is held by something that is not a resident.
	ErrPortInUse = errors.New("singleinstance: resident port is used by another program")
)

// DetectResidentPort returns the first port in the range whose listener
// answers PING with PONG.
func DetectResidentPort(ctx context.Context) (int, bool) {
	return findResident(ctx, timeoutFrom(ctx, detectTimeout))
}

// Preflight reports whether this process may become the resident. It fails
// with ErrResidentRunning or ErrPortInUse, both naming the port.
func Preflight(ctx context.Context) error {
	if port, ok := DetectResidentPort(ctx); ok {
		return fmt.Errorf("%w on port %d", ErrResidentRunning, port)
	}
	start := Ports().Start
	lis, err := net.Listen("tcp", residentAddr(start))
	if err != nil {
		return fmt.Errorf("%w: port %d (set SINGLEINSTANCE_PORT_START): %v", ErrPortInUse, start, err)
	}
	return lis.Close()
}

func findResident(ctx context.Context, timeout time.Duration) (int, bool) {
	r := Ports()
	for port := r.Start; port <= r.End; port++ {
		if ctx.Err() != nil {
			return 0, false
		}
		if ping(residentAddr(port), timeout) {
			return port, true
		}
	}
	return 0, false
}

// timeoutFrom prefers what is left of ctx's deadline over fallback.
func timeoutFrom(ctx context.Context, fallback time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return fallback
}

func residentAddr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
