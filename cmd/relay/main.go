package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"voice-relay/internal/adapter/httpapi"
	"voice-relay/internal/di"
	"voice-relay/internal/infrastructure/env"
	"voice-relay/internal/infrastructure/logger"
	"voice-relay/internal/infrastructure/prompts"
	"voice-relay/internal/infrastructure/speech/elevenlabs"
	"voice-relay/internal/infrastructure/speech/openaitts"
	"voice-relay/internal/usecase/relay"
)

func main() {
	envService := env.NewEnvService()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(loadConfig(envService))
	if err != nil {
		log.Fatalf("Initialization failed: %v", err)
	}
	defer container.Close()

	addr := envService.GetWithDefault("HTTP_ADDR", ":8000")
	server := &http.Server{
		Addr:              addr,
		Handler:           container.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       envService.GetDuration("HTTP_READ_TIMEOUT", 30*time.Second),
		// Must outlast the LLM call plus blocking playback when SPEECH_WAIT is on.
		WriteTimeout: envService.GetDuration("HTTP_WRITE_TIMEOUT", 5*time.Minute),
		IdleTimeout:  2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		container.Logger.Info("Relay listening", "addr", addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Error("Server stopped", "error", err)
		}
		return
	case <-ctx.Done():
	}

	container.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Graceful shutdown failed", "error", err)
	}
}

func loadConfig(e *env.EnvService) di.Config {
	llmEndpoint := e.Get("LLM_ENDPOINT")
	llmKey := e.Get("LLM_API_KEY")

	eleven := elevenlabs.DefaultConfig(e.Get("ELEVENLABS_API_KEY"))
	eleven.VoiceID = e.GetWithDefault("ELEVENLABS_VOICE_ID", eleven.VoiceID)
	eleven.ModelID = e.GetWithDefault("ELEVENLABS_MODEL_ID", eleven.ModelID)
	eleven.OutputFormat = e.GetWithDefault("ELEVENLABS_OUTPUT_FORMAT", eleven.OutputFormat)

	tts := openaitts.DefaultConfig(
		e.GetWithDefault("OPENAI_TTS_ENDPOINT", llmEndpoint),
		e.GetWithDefault("OPENAI_TTS_API_KEY", llmKey),
	)
	tts.Model = e.GetWithDefault("OPENAI_TTS_MODEL", tts.Model)
	tts.Voice = e.GetWithDefault("OPENAI_TTS_VOICE", tts.Voice)

	logLevel := e.GetWithDefault("LOG_LEVEL", "info")
	logFormat := e.GetWithDefault("LOG_FORMAT", "json")

	httpCfg := httpapi.DefaultConfig()
	httpCfg.MaxBodyBytes = int64(e.GetInt("MAX_BODY_BYTES", int(httpCfg.MaxBodyBytes)))
	httpCfg.AccessLog = e.GetBool("ACCESS_LOG", true)
	httpCfg.LogLevel = logLevel
	httpCfg.JSONAccess = logFormat == "json"

	return di.Config{
		Log: logger.Config{
			Level:  logLevel,
			Format: logFormat,
			File:   e.Get("LOG_FILE"),
		},

		LLMEndpoint:     llmEndpoint,
		LLMAPIKey:       llmKey,
		LLMModel:        e.GetWithDefault("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:      e.GetDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxRetries:   e.GetInt("LLM_MAX_RETRIES", 0),
		LLMRetryBackoff: e.GetDuration("LLM_RETRY_BACKOFF", 500*time.Millisecond),

		HTMLCharLimit: e.GetInt("HTML_CHAR_LIMIT", prompts.DefaultCharLimit),
		HTMLClean:     e.GetBool("HTML_CLEAN", false),
		PromptVersion: e.GetWithDefault("PROMPT_VERSION", prompts.DefaultVersion),
		PromptDir:     e.Get("PROMPT_DIR"),

		SpeechProvider: e.GetWithDefault("SPEECH_PROVIDER", "elevenlabs"),
		ElevenLabs:     eleven,
		OpenAITTS:      tts,
		Player:         e.GetWithDefault("PLAYER", "ffplay"),
		SpeechWait:     e.GetBool("SPEECH_WAIT", false),

		ScreenshotMaxWidth:  e.GetInt("SCREENSHOT_MAX_WIDTH", 0),
		ScreenshotMaxPixels: e.GetInt("SCREENSHOT_MAX_PIXELS", 0),
		HTTP:                httpCfg,
		Completions:         relay.DefaultConfig(),
	}
}
