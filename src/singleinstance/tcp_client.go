package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"
)

const clientTimeout = 2 * time.Second

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryRunOnce(ctx context.Context, outputToStdout bool) (bool, string, error) {
	timeout := timeoutFrom(ctx, clientTimeout)
	port, ok := findResident(ctx, timeout)
	if !ok {
		return false, "", nil
	}
	log.Printf("singleinstance: delegating to resident on port %d", port)

	conn, err := net.DialTimeout("tcp", residentAddr(port), timeout)
	if err != nil {
		return false, "", err
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	if _, err := conn.Write([]byte(requestLine(outputToStdout))); err != nil {
		return true, "", err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return true, "", err
	}
	payload, _ := io.ReadAll(br)
	switch status {
	case successStatus:
		return true, string(payload), nil
	case errorStatus:
		return true, "", errors.New(string(payload))
	}
	return true, "", fmt.Errorf("singleinstance: unexpected status %q", status)
}
