package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"
)

// usePorts keeps tests off the default range a real resident may hold.
func usePorts(t *testing.T, start, end int) {
	t.Helper()
	t.Setenv("SINGLEINSTANCE_PORT_START", strconv.Itoa(start))
	t.Setenv("SINGLEINSTANCE_PORT_END", strconv.Itoa(end))
}

func startServer(t *testing.T, ctx context.Context) Server {
	t.Helper()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback listener unavailable in this environment: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestServerClientRoundTrip(t *testing.T) {
	usePorts(t, 49690, 49691)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	// client delegates stdout request
	client := NewClient()
	type reply struct {
		delegated bool
		text      string
		err       error
	}
	replies := make(chan reply, 1)
	go func() {
		delegated, text, err := client.TryRunOnce(ctx, true)
		replies <- reply{delegated, text, err}
	}()

	// server accept and respond
	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !conn.Request().OutputToStdout {
		t.Errorf("expected stdout request")
	}
	if err := conn.RespondSuccess("ok"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	_ = conn.Close()

	r := <-replies
	if r.err != nil || !r.delegated || r.text != "ok" {
		t.Errorf("TryRunOnce = (%v, %q, %v), expected (true, \"ok\", nil)", r.delegated, r.text, r.err)
	}
}

func TestInjectRequestError(t *testing.T) {
	usePorts(t, 49693, 49694)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	errs := make(chan error, 1)
	go func() {
		delegated, _, err := NewClient().TryRunOnce(ctx, false)
		if !delegated {
			t.Errorf("expected delegation")
		}
		errs <- err
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if conn.Request().OutputToStdout {
		t.Errorf("expected inject request")
	}
	_ = conn.RespondError("Busy, please retry")
	_ = conn.Close()

	if err := <-errs; err == nil || err.Error() != "Busy, please retry" {
		t.Errorf("client error = %v, expected the resident's message", err)
	}
}

func TestNoResident(t *testing.T) {
	usePorts(t, 49696, 49697)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	delegated, _, err := NewClient().TryRunOnce(ctx, true)
	if delegated || err != nil {
		t.Errorf("TryRunOnce = (%v, %v), expected (false, nil)", delegated, err)
	}
	if _, ok := DetectResidentPort(ctx); ok {
		t.Error("DetectResidentPort found a resident that does not exist")
	}
}

func TestDetectResidentPort(t *testing.T) {
	usePorts(t, 49698, 49699)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	port, ok := DetectResidentPort(ctx)
	if !ok || port != srv.Port() {
		t.Errorf("DetectResidentPort = (%d, %v), expected (%d, true)", port, ok, srv.Port())
	}
}

func TestUnknownRequestRejected(t *testing.T) {
	usePorts(t, 49700, 49701)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	c, err := net.DialTimeout("tcp", net.JoinHostPort(residentHost, strconv.Itoa(srv.Port())), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(time.Second))
	if _, err := c.Write([]byte("CLIPBOARD\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	status, err := bufio.NewReader(c).ReadString('\n')
	if err != nil || status != errorStatus {
		t.Errorf("status = %q, %v; expected %q", status, err, errorStatus)
	}
}

func TestPorts(t *testing.T) {
	tests := []struct {
		start, end string
		expected   PortRange
	}{
		{"", "", PortRange{defaultPortStart, defaultPortEnd}},
		{"50000", "50010", PortRange{50000, 50010}},
		{"80", "2000", PortRange{1024, 2000}},
		{"50010", "50000", PortRange{50000, 50010}},
		{"x", "y", PortRange{defaultPortStart, defaultPortEnd}},
		{"60000", "70000", PortRange{60000, 65535}},
	}
	for _, tt := range tests {
		t.Setenv("SINGLEINSTANCE_PORT_START", tt.start)
		t.Setenv("SINGLEINSTANCE_PORT_END", tt.end)
		if got := Ports(); got != tt.expected {
			t.Errorf("Ports(%q, %q) = %s, expected %s", tt.start, tt.end, got, tt.expected)
		}
	}
}

func TestPreflight(t *testing.T) {
	t.Run("free range", func(t *testing.T) {
		usePorts(t, 49702, 49703)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := Preflight(ctx); err != nil {
			t.Errorf("Preflight() = %v, expected nil", err)
		}
	})

	t.Run("resident running", func(t *testing.T) {
		usePorts(t, 49704, 49705)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		startServer(t, ctx)
		if err := Preflight(ctx); !errors.Is(err, ErrResidentRunning) {
			t.Errorf("Preflight() = %v, expected ErrResidentRunning", err)
		}
	})

	t.Run("port held by another program", func(t *testing.T) {
		usePorts(t, 49706, 49706)
		lis, err := net.Listen("tcp", residentAddr(49706))
		if err != nil {
			t.Skipf("loopback listener unavailable in this environment: %v", err)
		}
		defer lis.Close()
		// A listener that never answers PING.
		go func() {
			for {
				c, err := lis.Accept()
				if err != nil {
					return
				}
				c.Close()
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = Preflight(ctx)
		if !errors.Is(err, ErrPortInUse) {
			t.Errorf("Preflight() = %v, expected ErrPortInUse", err)
		}
	})
}
