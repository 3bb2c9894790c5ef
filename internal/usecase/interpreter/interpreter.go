// Package interpreter enforces the command intent contract on model replies.
//
// The reply must be a bare JSON object. Code fences, surrounding prose and
// partial objects are rejected rather than repaired, so prompt quality stays
// the prompt's problem.
package interpreter

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"voice-relay/internal/domain/entity"
)

type reply struct {
	Intent       json.RawMessage `json:"intent"`
	Answer       *string         `json:"answer"`
	Script       *string         `json:"script"`
	Confirmation *string         `json:"confirmation"`
}

// Interpret parses a model reply into a CommandResult. Absent or null
// optional fields become "". A conformant reply is returned unchanged.
func Interpret(raw string) (*entity.CommandResult, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: reply is not a JSON object: %s", entity.ErrInvalidJSON, preview(trimmed))
	}

	var r reply
	if err := json.Unmarshal([]byte(trimmed), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidJSON, err)
	}

	intent, err := parseIntent(r.Intent)
	if err != nil {
		return nil, err
	}

	return &entity.CommandResult{
		Intent:       intent,
		Answer:       deref(r.Answer),
		Script:       deref(r.Script),
		Confirmation: deref(r.Confirmation),
	}, nil
}

// parseIntent accepts only a string from the intent enum. A missing, null or
// non-string intent is valid JSON carrying an invalid intent.
func parseIntent(raw json.RawMessage) (entity.Intent, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("%w: intent is missing", entity.ErrInvalidIntent)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: intent is not a string: %s", entity.ErrInvalidIntent, preview(string(raw)))
	}

	intent := entity.Intent(s)
	if !intent.Valid() {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidIntent, s)
	}
	return intent, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// preview cuts s to its first 80 characters for error details.
func preview(s string) string {
	const max = 80
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
