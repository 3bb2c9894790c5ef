package playback

import (
	"context"

	"voice-relay/internal/application/port/output"
	"voice-relay/internal/domain/entity"
)

var _ output.PlayerPort = Discard{}

// Discard drops audio; used on headless hosts.
type Discard struct{}

func (Discard) Play(ctx context.Context, audio *entity.Audio) error {
	return ctx.Err()
}
