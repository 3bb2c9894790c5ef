package narrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-relay/internal/domain/entity"
	"voice-relay/internal/infrastructure/logger"
)

type fakeSpeech struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Audio{Data: []byte("audio:" + text), Format: "mp3"}, nil
}

// blockingPlayer plays until released or cancelled.
type blockingPlayer struct {
	release chan struct{}
	started chan string
	err     error
}

func newBlockingPlayer() *blockingPlayer {
	return &blockingPlayer{release: make(chan struct{}), started: make(chan string, 8)}
}

func (p *blockingPlayer) Play(ctx context.Context, audio *entity.Audio) error {
	p.started <- string(audio.Data)
	select {
	case <-p.release:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSpeak_StartsPlaybackWithoutBlocking(t *testing.T) {
	speech := &fakeSpeech{}
	player := newBlockingPlayer()
	n := New(speech, player, logger.NewNop(), Config{})
	defer n.Close()

	pb, err := n.Speak(context.Background(), "Could not complete")
	require.NoError(t, err)

	assert.Equal(t, entity.SpeechStarted, pb.Status())
	assert.Equal(t, "audio:Could not complete", <-player.started)
	assert.Equal(t, []string{"Could not complete"}, speech.texts)

	close(player.release)
	require.NoError(t, pb.Wait(context.Background()))
	assert.NoError(t, pb.Err())
}

func TestSpeak_WaitModeBlocksUntilPlayed(t *testing.T) {
	player := newBlockingPlayer()
	n := New(&fakeSpeech{}, player, logger.NewNop(), Config{Wait: true})
	defer n.Close()

	go func() {
		<-player.started
		close(player.release)
	}()

	pb, err := n.Speak(context.Background(), "Done.")
	require.NoError(t, err)

	assert.Equal(t, entity.SpeechPlayed, pb.Status())
	select {
	case <-pb.Done():
	default:
		t.Fatal("playback should be finished in wait mode")
	}
}

func TestSpeak_WaitModeReportsPlayerFailure(t *testing.T) {
	player := newBlockingPlayer()
	player.err = errors.New("ffplay: not found")
	close(player.release)
	n := New(&fakeSpeech{}, player, logger.NewNop(), Config{Wait: true})
	defer n.Close()

	pb, err := n.Speak(context.Background(), "Done.")

	assert.Error(t, err)
	assert.Equal(t, entity.SpeechFailed, pb.Status())
}

func TestSpeak_NewPlaybackCancelsPrevious(t *testing.T) {
	player := newBlockingPlayer()
	n := New(&fakeSpeech{}, player, logger.NewNop(), Config{})
	defer n.Close()

	first, err := n.Speak(context.Background(), "first")
	require.NoError(t, err)
	<-player.started

	_, err = n.Speak(context.Background(), "second")
	require.NoError(t, err)
	<-player.started

	select {
	case <-first.Done():
		assert.ErrorIs(t, first.Err(), context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("first playback was not cancelled")
	}
}

func TestSpeak_SynthesisFailure(t *testing.T) {
	speech := &fakeSpeech{err: errors.New("quota exceeded")}
	n := New(speech, newBlockingPlayer(), logger.NewNop(), Config{})
	defer n.Close()

	pb, err := n.Speak(context.Background(), "hello")

	assert.True(t, errors.Is(err, entity.ErrSpeechSynthesis))
	assert.Equal(t, entity.SpeechFailed, pb.Status())
}

func TestSpeak_EmptyTextSkipsProvider(t *testing.T) {
	speech := &fakeSpeech{}
	n := New(speech, newBlockingPlayer(), logger.NewNop(), Config{})
	defer n.Close()

	pb, err := n.Speak(context.Background(), "   ")
	require.NoError(t, err)

	assert.Equal(t, entity.SpeechSkipped, pb.Status())
	assert.Empty(t, speech.texts)
}

func TestSpeak_Disabled(t *testing.T) {
	n := New(nil, nil, logger.NewNop(), Config{})
	defer n.Close()

	pb, err := n.Speak(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, entity.SpeechDisabled, pb.Status())
}

func TestClose_CancelsPlaybackAndRejectsNewOnes(t *testing.T) {
	player := newBlockingPlayer()
	n := New(&fakeSpeech{}, player, logger.NewNop(), Config{})

	pb, err := n.Speak(context.Background(), "long text")
	require.NoError(t, err)
	<-player.started

	n.Close()

	assert.ErrorIs(t, pb.Err(), context.Canceled)

	after, err := n.Speak(context.Background(), "more")
	require.NoError(t, err)
	assert.Equal(t, entity.SpeechSkipped, after.Status())
}
