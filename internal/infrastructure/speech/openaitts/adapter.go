package openaitts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"voice-relay/internal/application/port/output"
	"voice-relay/internal/domain/entity"
)

var _ output.SpeechPort = (*Adapter)(nil)

// Adapter synthesizes speech through an OpenAI-compatible /v1/audio/speech
// endpoint.
type Adapter struct {
	client *openai.Client
	model  string
	voice  string
	format string
}

type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Voice    string
	Format   string
}

func DefaultConfig(endpoint, apiKey string) Config {
	return Config{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    string(openai.TTSModel1),
		Voice:    string(openai.VoiceAlloy),
		Format:   string(openai.SpeechResponseFormatMp3),
	}
}

func NewAdapter(cfg Config) *Adapter {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		config.BaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/v1"
	}
	return &Adapter{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		voice:  cfg.Voice,
		format: cfg.Format,
	}
}

func (a *Adapter) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	resp, err := a.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(a.model),
		Input:          text,
		Voice:          openai.SpeechVoice(a.voice),
		ResponseFormat: openai.SpeechResponseFormat(a.format),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSpeechSynthesis, err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %w", entity.ErrSpeechSynthesis, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty audio", entity.ErrSpeechSynthesis)
	}

	return &entity.Audio{Data: data, Format: a.format}, nil
}
