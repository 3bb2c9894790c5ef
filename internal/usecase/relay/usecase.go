package relay

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"voice-relay/internal/application/port/input"
	"voice-relay/internal/application/port/output"
	"voice-relay/internal/domain/entity"
	"voice-relay/internal/infrastructure/prompts"
	"voice-relay/internal/usecase/interpreter"
	"voice-relay/internal/usecase/narrator"
)

var _ input.Relay = (*UseCase)(nil)

type Completion struct {
	MaxTokens   int
	Temperature float32
}

type Config struct {
	Describe Completion
	Command  Completion
	Element  Completion
}

func DefaultConfig() Config {
	return Config{
		Describe: Completion{MaxTokens: 300, Temperature: 0.3},
		Command:  Completion{MaxTokens: 800, Temperature: 0},
		Element:  Completion{MaxTokens: 150, Temperature: 0.2},
	}
}

type Speaker interface {
	Speak(ctx context.Context, text string) (*narrator.Playback, error)
}

type ScreenshotPreparer interface {
	Prepare(encoded string) (*entity.Screenshot, error)
}

type UseCase struct {
	llm         output.LLMPort
	prompts     output.PromptBuilder
	speaker     Speaker
	screenshots ScreenshotPreparer
	logger      output.LoggerPort
	cfg         Config
}

func New(
	llm output.LLMPort,
	promptBuilder output.PromptBuilder,
	speaker Speaker,
	screenshots ScreenshotPreparer,
	logger output.LoggerPort,
	cfg Config,
) *UseCase {
	return &UseCase{
		llm:         llm,
		prompts:     promptBuilder,
		speaker:     speaker,
		screenshots: screenshots,
		logger:      logger,
		cfg:         cfg,
	}
}

func (uc *UseCase) Describe(ctx context.Context, req entity.DescribeRequest) (*input.Reply[entity.Description], error) {
	log := uc.logger.WithField("endpoint", "describe")

	fields := map[string]string{prompts.FieldHTML: req.HTML}
	var imageURL string
	if req.Screenshot != "" && uc.screenshots != nil {
		shot, err := uc.screenshots.Prepare(req.Screenshot)
		if err != nil {
			return nil, err
		}
		imageURL = shot.DataURL()
		fields[prompts.FieldScreenshot] = "attached"
		log.Debug("Screenshot attached", "width", shot.Width, "height", shot.Height, "bytes", len(shot.Data))
	}

	text, err := uc.complete(ctx, log, output.PromptDescribe, fields, imageURL, uc.cfg.Describe)
	if err != nil {
		return nil, err
	}

	return &input.Reply[entity.Description]{
		Body:   entity.Description{Description: text},
		Speech: uc.speak(ctx, log, text),
	}, nil
}

func (uc *UseCase) Command(ctx context.Context, req entity.CommandRequest) (*input.Reply[entity.CommandResult], error) {
	log := uc.logger.WithField("endpoint", "command")

	raw, err := uc.complete(ctx, log, output.PromptCommand, map[string]string{
		prompts.FieldTranscript: req.Transcript,
		prompts.FieldHTML:       req.HTML,
	}, "", uc.cfg.Command)
	if err != nil {
		return nil, err
	}

	result, err := interpreter.Interpret(raw)
	if err != nil {
		log.Warn("Model reply rejected", "error", err, "replyLen", len(raw))
		return nil, err
	}

	log.Info("Command interpreted",
		"intent", result.Intent,
		"scriptLen", len(result.Script),
		"transcriptLen", utf8.RuneCountInString(req.Transcript),
	)

	return &input.Reply[entity.CommandResult]{
		Body:   *result,
		Speech: uc.speak(ctx, log, result.SpokenText()),
	}, nil
}

func (uc *UseCase) Element(ctx context.Context, req entity.ElementRequest) (*input.Reply[entity.Description], error) {
	log := uc.logger.WithField("endpoint", "element")

	text, err := uc.complete(ctx, log, output.PromptElement, map[string]string{
		prompts.FieldElement: req.Element,
	}, "", uc.cfg.Element)
	if err != nil {
		return nil, err
	}

	return &input.Reply[entity.Description]{
		Body:   entity.Description{Description: text},
		Speech: uc.speak(ctx, log, text),
	}, nil
}

func (uc *UseCase) complete(
	ctx context.Context,
	log output.LoggerPort,
	id output.PromptID,
	fields map[string]string,
	imageURL string,
	opts Completion,
) (string, error) {
	prompt, err := uc.prompts.Build(id, fields)
	if err != nil {
		return "", fmt.Errorf("build %s prompt: %w", id, err)
	}

	start := time.Now()
	resp, err := uc.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleUser, Content: prompt, ImageURL: imageURL},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		log.Error("LLM request failed", "error", err, "durationMs", time.Since(start).Milliseconds())
		return "", fmt.Errorf("llm request failed: %w", err)
	}

	log.Debug("LLM replied",
		"promptLen", len(prompt),
		"replyLen", len(resp.Message.Content),
		"durationMs", time.Since(start).Milliseconds(),
	)

	return strings.TrimSpace(resp.Message.Content), nil
}

// speak never fails the request; the outcome only travels as a status.
func (uc *UseCase) speak(ctx context.Context, log output.LoggerPort, text string) entity.SpeechStatus {
	pb, err := uc.speaker.Speak(ctx, text)
	if err != nil {
		log.Warn("Speech failed", "error", err)
	}
	return pb.Status()
}
