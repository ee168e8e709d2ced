package lingotutor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func tutoringPrompts() *PromptLibrary {
	return NewPromptLibrary(map[string]PromptTemplate{
		"daily_life": {Text: "Sen bir İngilizce öğretmenisin. Konu: günlük hayat."},
	})
}

func TestConverseUnknownTopic(t *testing.T) {
	reg := NewSessionRegistry(&fakeModel{}, tutoringPrompts(), zap.NewNop())

	_, err := reg.Converse(context.Background(), "quantum_physics", "merhaba")
	if !errors.Is(err, ErrTopicNotConfigured) {
		t.Fatalf("error = %v, want ErrTopicNotConfigured", err)
	}
	if reg.Active("quantum_physics") {
		t.Fatal("failed seed left a session behind")
	}
}

func TestConverseOpeningTurn(t *testing.T) {
	model := &fakeModel{
		chatFn: func(turns []ChatTurn) (string, error) {
			if len(turns) != 2 {
				return "", errors.New("opening call should carry seed plus bootstrap")
			}
			if turns[1].Content != bootstrapMessage {
				return "", errors.New("missing bootstrap turn")
			}
			return "Merhaba! Hazır mısın?", nil
		},
	}
	reg := NewSessionRegistry(model, tutoringPrompts(), zap.NewNop())

	reply, err := reg.Converse(context.Background(), "daily_life", "")
	if err != nil {
		t.Fatalf("opening converse: %v", err)
	}
	if reply != "Merhaba! Hazır mısın?" {
		t.Fatalf("reply = %q", reply)
	}
	if model.chatCalls != 1 {
		t.Fatalf("model called %d times, want 1", model.chatCalls)
	}

	history := reg.History("daily_life")
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2 (seed + reply)", len(history))
	}
	if history[1].Role != RoleAssistant || history[1].Content != "Merhaba! Hazır mısın?" {
		t.Fatalf("unexpected last turn: %#v", history[1])
	}
	for _, turn := range history {
		if turn.Content == bootstrapMessage {
			t.Fatal("bootstrap message leaked into history")
		}
	}
}

func TestConverseEmptyMessageRefetchesWithoutModelCall(t *testing.T) {
	model := &fakeModel{
		chatFn: func([]ChatTurn) (string, error) { return "Merhaba!", nil },
	}
	reg := NewSessionRegistry(model, tutoringPrompts(), zap.NewNop())

	first, err := reg.Converse(context.Background(), "daily_life", "")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := reg.Converse(context.Background(), "daily_life", "")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first != second {
		t.Fatalf("refetch differs: %q vs %q", first, second)
	}
	if model.chatCalls != 1 {
		t.Fatalf("model called %d times, want 1", model.chatCalls)
	}
}

func TestConverseAppendsBothTurns(t *testing.T) {
	model := &fakeModel{
		chatFn: func(turns []ChatTurn) (string, error) {
			last := turns[len(turns)-1]
			if last.Role != RoleUser {
				return "", errors.New("last turn should be the user message")
			}
			return "cevap: " + last.Content, nil
		},
	}
	reg := NewSessionRegistry(model, tutoringPrompts(), zap.NewNop())

	if _, err := reg.Converse(context.Background(), "daily_life", ""); err != nil {
		t.Fatalf("opening: %v", err)
	}
	reply, err := reg.Converse(context.Background(), "daily_life", "How do I order coffee?")
	if err != nil {
		t.Fatalf("converse: %v", err)
	}
	if reply != "cevap: How do I order coffee?" {
		t.Fatalf("reply = %q", reply)
	}

	history := reg.History("daily_life")
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[2].Role != RoleUser || history[2].Content != "How do I order coffee?" {
		t.Fatalf("user turn not recorded: %#v", history[2])
	}
	if history[3].Role != RoleAssistant {
		t.Fatalf("reply turn not recorded: %#v", history[3])
	}
}

func TestConverseModelFailureDiscardsSession(t *testing.T) {
	fail := true
	model := &fakeModel{
		chatFn: func([]ChatTurn) (string, error) {
			if fail {
				return "", errors.New("servis kapalı")
			}
			return "tekrar merhaba", nil
		},
	}
	reg := NewSessionRegistry(model, tutoringPrompts(), zap.NewNop())

	if _, err := reg.Converse(context.Background(), "daily_life", ""); err == nil {
		t.Fatal("expected model failure")
	}
	if reg.Active("daily_life") {
		t.Fatal("failed session was not discarded")
	}

	fail = false
	reply, err := reg.Converse(context.Background(), "daily_life", "")
	if err != nil {
		t.Fatalf("converse after failure: %v", err)
	}
	if reply != "tekrar merhaba" {
		t.Fatalf("reply = %q", reply)
	}
}

func TestResetStartsFreshConversation(t *testing.T) {
	model := &fakeModel{
		chatFn: func([]ChatTurn) (string, error) { return "selam", nil },
	}
	reg := NewSessionRegistry(model, tutoringPrompts(), zap.NewNop())

	if _, err := reg.Converse(context.Background(), "daily_life", ""); err != nil {
		t.Fatalf("opening: %v", err)
	}
	if !reg.Reset("daily_life") {
		t.Fatal("reset of live session reported false")
	}
	if reg.Reset("daily_life") {
		t.Fatal("reset of absent session reported true")
	}

	if _, err := reg.Converse(context.Background(), "daily_life", ""); err != nil {
		t.Fatalf("converse after reset: %v", err)
	}
	if model.chatCalls != 2 {
		t.Fatalf("model called %d times, want 2 (fresh opening after reset)", model.chatCalls)
	}
}

func TestStructuredSeedRendering(t *testing.T) {
	raw := `{
		"role": "Kıdemli İngilizce Öğretmeni.",
		"methodology": "Sokratik sorular sor."
	}`
	var template PromptTemplate
	if err := json.Unmarshal([]byte(raw), &template); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !template.Structured() {
		t.Fatal("object template not marked structured")
	}

	seed := template.Seed()
	lines := strings.Split(seed, "\n")
	if len(lines) != 4 {
		t.Fatalf("seed has %d lines, want 4: %q", len(lines), seed)
	}
	wantPrefixes := []string{"ROLE: ", "PERSONA: ", "METHODOLOGY: ", "TASK: "}
	for i, prefix := range wantPrefixes {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Fatalf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
	if lines[0] != "ROLE: Kıdemli İngilizce Öğretmeni." {
		t.Fatalf("explicit role lost: %q", lines[0])
	}
	if lines[1] != "PERSONA: "+defaultSeedPersona {
		t.Fatalf("missing persona default: %q", lines[1])
	}
	if lines[3] != "TASK: "+defaultSeedTask {
		t.Fatalf("missing task default: %q", lines[3])
	}

	reg := NewSessionRegistry(&fakeModel{
		chatFn: func(turns []ChatTurn) (string, error) {
			if turns[0].Content != seed {
				return "", errors.New("seed turn does not match rendered template")
			}
			return "başlayalım", nil
		},
	}, NewPromptLibrary(map[string]PromptTemplate{"grammar": template}), zap.NewNop())

	if _, err := reg.Converse(context.Background(), "grammar", ""); err != nil {
		t.Fatalf("converse with structured seed: %v", err)
	}
}
