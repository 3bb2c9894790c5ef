package output

import (
	"context"

	"voice-relay/internal/domain/entity"
)

type SpeechPort interface {
	Synthesize(ctx context.Context, text string) (*entity.Audio, error)
}

// PlayerPort plays audio and returns once playback finished or ctx is done.
type PlayerPort interface {
	Play(ctx context.Context, audio *entity.Audio) error
}
