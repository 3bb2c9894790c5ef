package playback

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-relay/internal/domain/entity"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestProcessPlayer_ConsumesAudioOnStdin(t *testing.T) {
	requireShell(t)
	p := NewProcessPlayer(Config{Command: "sh", Args: []string{"-c", `test "$(cat)" = "mp3-bytes"`}})

	err := p.Play(context.Background(), &entity.Audio{Data: []byte("mp3-bytes"), Format: "mp3"})

	assert.NoError(t, err)
}

func TestProcessPlayer_ReportsExitCode(t *testing.T) {
	requireShell(t)
	p := NewProcessPlayer(Config{Command: "sh", Args: []string{"-c", "cat >/dev/null; echo broken >&2; exit 3"}})

	err := p.Play(context.Background(), &entity.Audio{Data: []byte("x")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "3")
	assert.Contains(t, err.Error(), "broken")
}

func TestProcessPlayer_CancelStopsPlayback(t *testing.T) {
	requireShell(t)
	p := NewProcessPlayer(Config{Command: "sh", Args: []string{"-c", "exec sleep 10"}})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Play(ctx, &entity.Audio{Data: []byte("x")})

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestProcessPlayer_EmptyAudioIsNoop(t *testing.T) {
	p := NewProcessPlayer(Config{Command: "definitely-not-installed"})

	assert.NoError(t, p.Play(context.Background(), &entity.Audio{}))
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard{}.Play(context.Background(), &entity.Audio{Data: []byte("x")}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Discard{}.Play(ctx, &entity.Audio{Data: []byte("x")}), context.Canceled)
}
