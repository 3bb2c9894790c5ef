package narrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"voice-relay/internal/application/port/output"
	"voice-relay/internal/domain/entity"
)

// Playback is a handle to audio started by Speak.
type Playback struct {
	status entity.SpeechStatus
	done   chan struct{}
	cancel context.CancelFunc
	err    error
}

func finished(status entity.SpeechStatus, err error) *Playback {
	done := make(chan struct{})
	close(done)
	return &Playback{status: status, done: done, cancel: func() {}, err: err}
}

func (p *Playback) Status() entity.SpeechStatus {
	return p.status
}

// Done is closed when the audio finished, failed or was cancelled.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Err reports the playback error once Done is closed.
func (p *Playback) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

func (p *Playback) Cancel() {
	p.cancel()
}

// Wait blocks until playback ends or ctx is done.
func (p *Playback) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Config struct {
	// Wait makes Speak block until the audio finished playing.
	Wait bool
}

// Narrator turns reply text into audio and plays it. Only one playback runs
// at a time; starting a new one cancels the previous.
type Narrator struct {
	speech output.SpeechPort
	player output.PlayerPort
	logger output.LoggerPort
	wait   bool

	base      context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup

	mu      sync.Mutex
	current *Playback
	closed  bool
}

// New returns a narrator. A nil speech port disables speech.
func New(speech output.SpeechPort, player output.PlayerPort, logger output.LoggerPort, cfg Config) *Narrator {
	base, cancel := context.WithCancel(context.Background())
	return &Narrator{
		speech:    speech,
		player:    player,
		logger:    logger,
		wait:      cfg.Wait,
		base:      base,
		cancelAll: cancel,
	}
}

// Speak synthesizes text within ctx and starts playback detached from it.
// The returned Playback is never nil; the error is set only when synthesis
// or (in wait mode) playback failed.
func (n *Narrator) Speak(ctx context.Context, text string) (*Playback, error) {
	if n.speech == nil {
		return finished(entity.SpeechDisabled, nil), nil
	}
	if strings.TrimSpace(text) == "" {
		return finished(entity.SpeechSkipped, nil), nil
	}

	audio, err := n.speech.Synthesize(ctx, text)
	if err != nil {
		if !errors.Is(err, entity.ErrSpeechSynthesis) {
			err = fmt.Errorf("%w: %w", entity.ErrSpeechSynthesis, err)
		}
		return finished(entity.SpeechFailed, err), err
	}

	pb := n.start(audio)
	if pb.status == entity.SpeechSkipped {
		return pb, nil
	}
	n.logger.Debug("Playback started", "textLen", len(text), "audioBytes", len(audio.Data), "format", audio.Format)

	if !n.wait {
		return pb, nil
	}

	if err := pb.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			// Preempted by a newer playback.
			return pb, nil
		}
		pb.status = entity.SpeechFailed
		return pb, err
	}
	pb.status = entity.SpeechPlayed
	return pb, nil
}

func (n *Narrator) start(audio *entity.Audio) *Playback {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return finished(entity.SpeechSkipped, nil)
	}

	ctx, cancel := context.WithCancel(n.base)
	pb := &Playback{
		status: entity.SpeechStarted,
		done:   make(chan struct{}),
		cancel: cancel,
	}
	if n.current != nil {
		n.current.Cancel()
	}
	n.current = pb
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()
		defer cancel()

		err := n.player.Play(ctx, audio)
		if err != nil && !errors.Is(err, context.Canceled) {
			n.logger.Warn("Playback failed", "error", err)
		}
		pb.err = err
		close(pb.done)

		n.mu.Lock()
		if n.current == pb {
			n.current = nil
		}
		n.mu.Unlock()
	}()

	return pb
}

// Close stops any playback and waits for it to exit.
func (n *Narrator) Close() {
	n.mu.Lock()
	n.closed = true
	n.cancelAll()
	n.mu.Unlock()
	n.wg.Wait()
}
