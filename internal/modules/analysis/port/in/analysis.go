package in

import (
	"context"

	"airpulse/internal/modules/analysis/dto"
)

type Usecase interface {
	// Fetch never returns Loading: the result is Loaded or Failed.
	Fetch(ctx context.Context, input dto.FetchInput) dto.ScreenOutput
	OpenChat(ctx context.Context, input dto.OpenChatInput) dto.ConversationOutput
	Compose(ctx context.Context, text string) (dto.MessageOutput, bool)
	// Reply waits for the configured delay and returns ctx.Err() if cancelled first.
	Reply(ctx context.Context, text string) (dto.MessageOutput, error)
}
