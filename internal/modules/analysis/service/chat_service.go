package service

import (
	"context"
	"time"

	"airpulse/internal/modules/analysis/domain"
	"airpulse/internal/platform/id"
)

type ChatService struct {
	idGen id.Generator
	delay time.Duration
}

func NewChatService(idGen id.Generator, delay time.Duration) *ChatService {
	if delay < 0 {
		delay = 0
	}
	return &ChatService{idGen: idGen, delay: delay}
}

func (s *ChatService) Greet(recordingName string, analysis domain.Analysis) domain.Message {
	if recordingName == "" {
		recordingName = domain.UnknownRecording
	}
	return domain.Message{ID: s.idGen.New(), Text: domain.Greeting(recordingName, analysis), Sender: domain.SenderAI}
}

func (s *ChatService) Compose(input string) (domain.Message, bool) {
	return domain.Compose(s.idGen.New(), input)
}

// Reply produces the canned answer after the delay. Cancelling ctx abandons
// it.
func (s *ChatService) Reply(ctx context.Context, input string) (domain.Message, error) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	case <-timer.C:
	}
	return domain.Message{ID: s.idGen.New(), Text: domain.Reply(input), Sender: domain.SenderAI}, nil
}
