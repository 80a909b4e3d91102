package strategy

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandOutput holds captured subprocess output, truncated at the caller's
// byte cap so a chatty tool cannot grow memory without bound.
type CommandOutput struct {
	Stdout string
	Stderr string
}

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Run(ctx context.Context, maxOutput int64, name string, args ...string) (CommandOutput, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Run executes a command, capturing stdout and stderr up to maxOutput bytes
// each. The command is killed when ctx expires.
func (r *ExecCommandRunner) Run(ctx context.Context, maxOutput int64, name string, args ...string) (CommandOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout := &cappedBuffer{max: maxOutput}
	stderr := &cappedBuffer{max: maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	out := CommandOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	return out, err
}

// cappedBuffer accepts writes but silently discards everything past max.
type cappedBuffer struct {
	buf bytes.Buffer
	max int64
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remain := b.max - int64(b.buf.Len())
	if remain <= 0 {
		return len(p), nil
	}
	if int64(len(p)) > remain {
		b.buf.Write(p[:remain])
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
