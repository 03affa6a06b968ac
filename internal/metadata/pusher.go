package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CommandPusher pushes the repository by running a command in its directory.
// An empty command disables pushing.
type CommandPusher struct {
	WorkDir string
	Command []string
	Timeout time.Duration
}

// NewCommandPusher creates a CommandPusher. A zero timeout means two minutes.
func NewCommandPusher(workDir string, command []string, timeout time.Duration) *CommandPusher {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &CommandPusher{WorkDir: workDir, Command: command, Timeout: timeout}
}

// Push runs the command and fails with its output when it exits non-zero.
func (p *CommandPusher) Push(ctx context.Context, owner string) error {
	if len(p.Command) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Dir = p.WorkDir
	cmd.Env = append(os.Environ(), "LAYERPLANE_PUSH_OWNER="+owner)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("push timed out after %s", p.Timeout)
		}
		return fmt.Errorf("%s: %w: %s", strings.Join(p.Command, " "), err, strings.TrimSpace(out.String()))
	}
	return nil
}
