package input

import (
	"context"

	"voice-relay/internal/domain/entity"
)

// Reply carries a pipeline's payload together with what happened to the
// spoken part of it.
type Reply[T any] struct {
	Body   T
	Speech entity.SpeechStatus
}

type Relay interface {
	Describe(ctx context.Context, req entity.DescribeRequest) (*Reply[entity.Description], error)
	Command(ctx context.Context, req entity.CommandRequest) (*Reply[entity.CommandResult], error)
	Element(ctx context.Context, req entity.ElementRequest) (*Reply[entity.Description], error)
}
