package dto

type FetchInput struct {
	RecordingID   string
	RecordingName string
}

type ProbabilityOutput struct {
	Condition string
	Percent   int
}

type AnalysisOutput struct {
	BPM    float64
	ECG    []float64
	Status string
	// Probabilities are client-side placeholders, not backend output.
	Probabilities []ProbabilityOutput
}

type ScreenOutput struct {
	RecordingID   string
	RecordingName string
	Phase         string
	Analysis      AnalysisOutput
	Err           error
}

type MessageOutput struct {
	ID     string
	Text   string
	Sender string
}

type OpenChatInput struct {
	RecordingName string
	BPM           float64
	Status        string
}

type ConversationOutput struct {
	RecordingName string
	Messages      []MessageOutput
}
