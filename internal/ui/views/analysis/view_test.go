package analysis

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	analysisdto "airpulse/internal/modules/analysis/dto"
)

func TestStaleFetchIsIgnored(t *testing.T) {
	t.Parallel()
	m := New(nil)
	m.Open(context.Background(), "rec_1.wav", "rec_1.wav")
	stale := loadedMsg{visit: m.visit, screen: analysisdto.ScreenOutput{RecordingID: "rec_1.wav", Phase: "loaded"}}

	m.Close()
	m.Open(context.Background(), "rec_2.wav", "rec_2.wav")
	m, _ = m.Update(stale)
	if m.Screen().RecordingID != "rec_2.wav" || m.Screen().Phase != "loading" {
		t.Fatalf("stale result replaced the current screen: %+v", m.Screen())
	}
}

func TestChatOnlyOpensWhenLoaded(t *testing.T) {
	t.Parallel()
	m := New(nil)
	m.Open(context.Background(), "rec_1.wav", "rec_1.wav")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}); cmd != nil {
		t.Fatalf("chat must not open while loading")
	}
	m, _ = m.Update(loadedMsg{visit: m.visit, screen: analysisdto.ScreenOutput{
		RecordingName: "rec_1.wav", Phase: "loaded",
		Analysis: analysisdto.AnalysisOutput{BPM: 72, Status: "Normal"},
	}})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if cmd == nil {
		t.Fatalf("expected open chat command")
	}
	open, ok := cmd().(OpenChatMsg)
	if !ok || open.Analysis.BPM != 72 {
		t.Fatalf("unexpected message %#v", open)
	}
	if FormatBPM(72) != "72" || FormatBPM(72.5) != "72.5" {
		t.Fatalf("unexpected bpm formatting")
	}
}
