package usecase

import (
	"context"

	"airpulse/internal/modules/analysis/domain"
	"airpulse/internal/modules/analysis/dto"
	analysisin "airpulse/internal/modules/analysis/port/in"
	"airpulse/internal/modules/analysis/service"
)

type Interactor struct {
	analysis *service.AnalysisService
	chat     *service.ChatService
}

func NewInteractor(analysis *service.AnalysisService, chat *service.ChatService) analysisin.Usecase {
	return &Interactor{analysis: analysis, chat: chat}
}

func (i *Interactor) Fetch(ctx context.Context, input dto.FetchInput) dto.ScreenOutput {
	screen := i.analysis.Fetch(ctx, input.RecordingID, input.RecordingName)
	out := dto.ScreenOutput{
		RecordingID:   screen.RecordingID,
		RecordingName: screen.RecordingName,
		Phase:         string(screen.Phase),
		Err:           screen.Err,
	}
	if screen.Phase == domain.PhaseLoaded {
		out.Analysis = toAnalysisOutput(screen.Analysis)
	}
	return out
}

// OpenChat seeds a conversation from an already loaded analysis. The
// backend is not queried again.
func (i *Interactor) OpenChat(_ context.Context, input dto.OpenChatInput) dto.ConversationOutput {
	greeting := i.chat.Greet(input.RecordingName, domain.Analysis{BPM: input.BPM, Status: input.Status})
	name := input.RecordingName
	if name == "" {
		name = domain.UnknownRecording
	}
	return dto.ConversationOutput{RecordingName: name, Messages: []dto.MessageOutput{toMessageOutput(greeting)}}
}

func (i *Interactor) Compose(_ context.Context, text string) (dto.MessageOutput, bool) {
	msg, ok := i.chat.Compose(text)
	if !ok {
		return dto.MessageOutput{}, false
	}
	return toMessageOutput(msg), true
}

func (i *Interactor) Reply(ctx context.Context, text string) (dto.MessageOutput, error) {
	msg, err := i.chat.Reply(ctx, text)
	if err != nil {
		return dto.MessageOutput{}, err
	}
	return toMessageOutput(msg), nil
}

func toAnalysisOutput(a domain.Analysis) dto.AnalysisOutput {
	probs := domain.PlaceholderProbabilities()
	out := dto.AnalysisOutput{
		BPM:           a.BPM,
		ECG:           append([]float64(nil), a.ECG...),
		Status:        a.Status,
		Probabilities: make([]dto.ProbabilityOutput, 0, len(probs)),
	}
	for _, p := range probs {
		out.Probabilities = append(out.Probabilities, dto.ProbabilityOutput{Condition: p.Condition, Percent: p.Percent})
	}
	return out
}

func toMessageOutput(m domain.Message) dto.MessageOutput {
	return dto.MessageOutput{ID: m.ID, Text: m.Text, Sender: string(m.Sender)}
}
