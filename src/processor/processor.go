// Package processor runs the external command that turns captured text into
// the content injected back into the user's window.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"ai-anywhere/src/inject"
	"ai-anywhere/src/logutil"
	"ai-anywhere/src/session"
)

// ImagePrefix marks command output that names an image instead of text.
const ImagePrefix = "image:"

const waitDelay = 2 * time.Second

// Command pipes the captured text into Cmd through the platform shell and
// reads the result from its stdout.
type Command struct {
	Cmd string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// Process satisfies session.ProcessFunc.
func (c Command) Process(ctx context.Context, text string, p session.Params) (inject.Content, error) {
	if strings.TrimSpace(c.Cmd) == "" {
		return inject.Content{}, session.ErrNoProcessor
	}

	cmd := shell(ctx, c.Cmd)
	cmd.Dir = c.Dir
	cmd.Stdin = strings.NewReader(text)
	cmd.Env = append(os.Environ(),
		"AI_ANYWHERE_SOURCE="+p.Source.String(),
		"AI_ANYWHERE_PROCESS="+p.ProcessName,
		"AI_ANYWHERE_TITLE="+p.WindowTitle,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren of the shell can hold the pipes open after a kill.
	cmd.WaitDelay = waitDelay

	log.Printf("processor: running %q on %s", c.Cmd, logutil.SafeText(text))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return inject.Content{}, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return inject.Content{}, fmt.Errorf("processor: %w: %s", err, msg)
		}
		return inject.Content{}, fmt.Errorf("processor: %w", err)
	}
	return parseOutput(stdout.String()), nil
}

func parseOutput(out string) inject.Content {
	out = strings.TrimSpace(out)
	if url, ok := strings.CutPrefix(out, ImagePrefix); ok {
		return inject.Image(nil, strings.TrimSpace(url))
	}
	return inject.Text(out)
}

func shell(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	return exec.CommandContext(ctx, "sh", "-c", line)
}
