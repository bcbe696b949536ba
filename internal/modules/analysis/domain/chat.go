package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type Message struct {
	ID     string
	Text   string
	Sender Sender
}

const replyPrefix = "This is an AI medical assistant response to: "

func Greeting(recordingName string, analysis Analysis) string {
	return fmt.Sprintf("Hello! I've analyzed your recording \"%s\".\n\nStatus: %s\nHeart Rate: %s bpm\n\nYou can ask me anything about this analysis.",
		recordingName, analysis.Status, strconv.FormatFloat(analysis.BPM, 'f', -1, 64))
}

// Reply is the canned assistant answer. No model is consulted.
func Reply(input string) string {
	return replyPrefix + input
}

// Compose turns user input into a message. Blank input yields false.
func Compose(id, input string) (Message, bool) {
	if strings.TrimSpace(input) == "" {
		return Message{}, false
	}
	return Message{ID: id, Text: input, Sender: SenderUser}, true
}
