package in

import (
	"context"

	"airpulse/internal/modules/analysis/dto"
	analysisin "airpulse/internal/modules/analysis/port/in"
)

type CLIHandler struct {
	usecase analysisin.Usecase
}

func NewCLIHandler(usecase analysisin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Fetch(ctx context.Context, recordingID, recordingName string) dto.ScreenOutput {
	return h.usecase.Fetch(ctx, dto.FetchInput{RecordingID: recordingID, RecordingName: recordingName})
}

func (h CLIHandler) OpenChat(ctx context.Context, recordingName string, analysis dto.AnalysisOutput) dto.ConversationOutput {
	return h.usecase.OpenChat(ctx, dto.OpenChatInput{RecordingName: recordingName, BPM: analysis.BPM, Status: analysis.Status})
}

func (h CLIHandler) Compose(ctx context.Context, text string) (dto.MessageOutput, bool) {
	return h.usecase.Compose(ctx, text)
}

func (h CLIHandler) Reply(ctx context.Context, text string) (dto.MessageOutput, error) {
	return h.usecase.Reply(ctx, text)
}
