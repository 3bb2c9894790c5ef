package di

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"voice-relay/internal/adapter/httpapi"
	"voice-relay/internal/application/port/input"
	"voice-relay/internal/application/port/output"
	"voice-relay/internal/infrastructure/htmlclean"
	"voice-relay/internal/infrastructure/imageproc"
	"voice-relay/internal/infrastructure/llm/openaicompat"
	"voice-relay/internal/infrastructure/logger"
	"voice-relay/internal/infrastructure/playback"
	"voice-relay/internal/infrastructure/prompts"
	"voice-relay/internal/infrastructure/speech/elevenlabs"
	"voice-relay/internal/infrastructure/speech/openaitts"
	"voice-relay/internal/usecase/narrator"
	"voice-relay/internal/usecase/relay"
)

type Container struct {
	Logger   output.LoggerPort
	LLM      output.LLMPort
	Speech   output.SpeechPort
	Narrator *narrator.Narrator
	Relay    input.Relay
	Handler  http.Handler
}

type Config struct {
	Log logger.Config

	LLMEndpoint     string
	LLMAPIKey       string
	LLMModel        string
	LLMTimeout      time.Duration
	LLMMaxRetries   int
	LLMRetryBackoff time.Duration

	HTMLCharLimit int
	HTMLClean     bool
	PromptVersion string
	PromptDir     string

	// SpeechProvider is one of "elevenlabs", "openai" or "none".
	SpeechProvider string
	ElevenLabs     elevenlabs.Config
	OpenAITTS      openaitts.Config
	// Player is "ffplay" or "discard".
	Player     string
	SpeechWait bool

	ScreenshotMaxWidth  int
	ScreenshotMaxPixels int
	HTTP                httpapi.Config
	Completions         relay.Config
}

func NewContainer(cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if strings.TrimSpace(cfg.LLMEndpoint) == "" {
		log.Warn("LLM_ENDPOINT is not set; model-backed endpoints will fail until it is configured")
	}

	llmCfg := openaicompat.DefaultConfig(cfg.LLMEndpoint, cfg.LLMModel)
	llmCfg.APIKey = cfg.LLMAPIKey
	llmCfg.Timeout = cfg.LLMTimeout
	llmCfg.MaxRetries = cfg.LLMMaxRetries
	llmCfg.RetryBackoff = cfg.LLMRetryBackoff
	llmCfg.Logger = log.WithField("component", "llm")
	llm := openaicompat.NewChatAdapter(llmCfg)

	promptCfg := prompts.Config{
		Version:   cfg.PromptVersion,
		Dir:       cfg.PromptDir,
		CharLimit: cfg.HTMLCharLimit,
	}
	if cfg.HTMLClean {
		promptCfg.Cleaner = htmlclean.New(htmlclean.DefaultCleanConfig)
	}
	builder, err := prompts.NewBuilder(promptCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	speech, err := newSpeech(cfg)
	if err != nil {
		log.Close()
		return nil, err
	}

	player, err := newPlayer(cfg.Player)
	if err != nil {
		log.Close()
		return nil, err
	}

	narr := narrator.New(speech, player, log.WithField("component", "narrator"), narrator.Config{Wait: cfg.SpeechWait})

	shotCfg := imageproc.DefaultConfig()
	if cfg.ScreenshotMaxWidth > 0 {
		shotCfg.MaxWidth = cfg.ScreenshotMaxWidth
	}
	if cfg.ScreenshotMaxPixels > 0 {
		shotCfg.MaxPixels = cfg.ScreenshotMaxPixels
	}

	uc := relay.New(llm, builder, narr, imageproc.New(shotCfg), log, cfg.Completions)

	log.Info("Relay configured",
		"model", cfg.LLMModel,
		"promptVersion", cfg.PromptVersion,
		"htmlCharLimit", cfg.HTMLCharLimit,
		"htmlClean", cfg.HTMLClean,
		"speechProvider", cfg.SpeechProvider,
		"player", cfg.Player,
		"speechWait", cfg.SpeechWait,
	)

	return &Container{
		Logger:   log,
		LLM:      llm,
		Speech:   speech,
		Narrator: narr,
		Relay:    uc,
		Handler:  httpapi.NewRouter(uc, log.WithField("component", "http"), cfg.HTTP),
	}, nil
}

func (c *Container) Close() {
	if c.Narrator != nil {
		c.Narrator.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

// newSpeech returns nil when speech is disabled.
func newSpeech(cfg Config) (output.SpeechPort, error) {
	switch strings.ToLower(cfg.SpeechProvider) {
	case "", "elevenlabs":
		return elevenlabs.NewAdapter(cfg.ElevenLabs), nil
	case "openai":
		return openaitts.NewAdapter(cfg.OpenAITTS), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.SpeechProvider)
	}
}

func newPlayer(name string) (output.PlayerPort, error) {
	switch strings.ToLower(name) {
	case "", "ffplay":
		return playback.NewProcessPlayer(playback.FFPlayConfig()), nil
	case "discard":
		return playback.Discard{}, nil
	default:
		return nil, fmt.Errorf("unknown player %q", name)
	}
}
