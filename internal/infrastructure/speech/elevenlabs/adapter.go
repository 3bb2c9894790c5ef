package elevenlabs

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/haguro/elevenlabs-go"

	"voice-relay/internal/application/port/output"
	"voice-relay/internal/domain/entity"
)

var _ output.SpeechPort = (*Adapter)(nil)

// ttsClient is the part of the ElevenLabs SDK client the adapter uses.
type ttsClient interface {
	TextToSpeech(voiceID string, req sdk.TextToSpeechRequest, queries ...sdk.QueryFunc) ([]byte, error)
}

// The SDK binds a context per client, so one is built for each call.
type clientFactory func(ctx context.Context, apiKey string, timeout time.Duration) ttsClient

func sdkClient(ctx context.Context, apiKey string, timeout time.Duration) ttsClient {
	return sdk.NewClient(ctx, apiKey, timeout)
}

type Adapter struct {
	newClient    clientFactory
	apiKey       string
	voiceID      string
	modelID      string
	outputFormat string
	timeout      time.Duration
}

type Config struct {
	APIKey       string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Timeout      time.Duration
}

func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:       apiKey,
		VoiceID:      "JBFqnCBsd6RMkjVDRZzb",
		ModelID:      "eleven_multilingual_v2",
		OutputFormat: "mp3_44100_128",
		Timeout:      30 * time.Second,
	}
}

func NewAdapter(cfg Config) *Adapter {
	return &Adapter{
		newClient:    sdkClient,
		apiKey:       cfg.APIKey,
		voiceID:      cfg.VoiceID,
		modelID:      cfg.ModelID,
		outputFormat: cfg.OutputFormat,
		timeout:      cfg.Timeout,
	}
}

func (a *Adapter) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("%w: %w: ElevenLabs API key is not set", entity.ErrSpeechSynthesis, entity.ErrConfiguration)
	}

	var queries []sdk.QueryFunc
	if a.outputFormat != "" {
		queries = append(queries, sdk.OutputFormat(a.outputFormat))
	}

	data, err := a.newClient(ctx, a.apiKey, a.timeout).TextToSpeech(a.voiceID, sdk.TextToSpeechRequest{
		Text:    text,
		ModelID: a.modelID,
	}, queries...)
	if err != nil {
		return nil, fmt.Errorf("%w: elevenlabs: %w", entity.ErrSpeechSynthesis, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty audio", entity.ErrSpeechSynthesis)
	}

	return &entity.Audio{Data: data, Format: containerFormat(a.outputFormat)}, nil
}

// containerFormat maps "mp3_44100_128" to "mp3".
func containerFormat(outputFormat string) string {
	if outputFormat == "" {
		return "mp3"
	}
	if i := strings.IndexByte(outputFormat, '_'); i > 0 {
		return outputFormat[:i]
	}
	return outputFormat
}
