package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"voice-relay/internal/application/port/output"
	"voice-relay/internal/domain/entity"
)

var _ output.PlayerPort = (*ProcessPlayer)(nil)

// waitDelay bounds how long Play waits for pipes after the process was
// killed; grandchildren may keep them open.
const waitDelay = time.Second

// ProcessPlayer pipes audio into an external player's stdin.
type ProcessPlayer struct {
	command string
	args    []string
}

type Config struct {
	Command string
	Args    []string
}

func FFPlayConfig() Config {
	return Config{
		Command: "ffplay",
		Args:    []string{"-nodisp", "-autoexit", "-loglevel", "error", "-i", "pipe:0"},
	}
}

func NewProcessPlayer(cfg Config) *ProcessPlayer {
	return &ProcessPlayer{command: cfg.Command, args: cfg.Args}
}

// Play blocks until the player exits. Cancelling ctx kills the process.
func (p *ProcessPlayer) Play(ctx context.Context, audio *entity.Audio) error {
	if audio == nil || len(audio.Data) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Stdin = bytes.NewReader(audio.Data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with %d: %s", p.command, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("run %s: %w", p.command, err)
	}
	return nil
}
