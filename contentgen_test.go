package lingotutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestContentGenerator(t *testing.T, model Model, words map[string]string) *ContentGenerator {
	t.Helper()
	store := newTestStore(t)
	seedCollection(t, store, "animals", NamespaceUser, words)
	prompts := testPrompts()
	translator := NewTranslator(model, prompts, zap.NewNop())
	return NewContentGenerator(store, model, prompts, translator, zap.NewNop())
}

func TestGenerateParagraph(t *testing.T) {
	model := &fakeModel{
		generateFn: func(prompt string) (string, error) {
			if strings.HasPrefix(prompt, "English only: ") {
				return strings.TrimPrefix(prompt, "English only: "), nil
			}
			if !strings.HasPrefix(prompt, "Paragraf ") {
				return "", errors.New("wrong template rendered")
			}
			return "A short practice paragraph.", nil
		},
	}
	gen := newTestContentGenerator(t, model, map[string]string{
		"cat": "kedi", "dog": "köpek", "bird": "kuş",
	})

	text, err := gen.Generate(context.Background(), "animals", ContentTypeParagraph, "B1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "A short practice paragraph." {
		t.Fatalf("text = %q", text)
	}
	// One generation call plus one cleanup pass.
	if model.generateCalls != 2 {
		t.Fatalf("model called %d times, want 2", model.generateCalls)
	}
}

func TestGenerateDialogueUsesDialogueTemplate(t *testing.T) {
	sawDialogue := false
	model := &fakeModel{
		generateFn: func(prompt string) (string, error) {
			if strings.HasPrefix(prompt, "Diyalog ") {
				sawDialogue = true
			}
			return "A: Hello.\nB: Hi.", nil
		},
	}
	gen := newTestContentGenerator(t, model, map[string]string{
		"cat": "kedi", "dog": "köpek", "bird": "kuş",
	})

	if _, err := gen.Generate(context.Background(), "animals", ContentTypeDialogue, "A2"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !sawDialogue {
		t.Fatal("dialogue template never rendered")
	}
}

func TestGenerateRequiresEnglishWords(t *testing.T) {
	// Enough entries, but the originals are not ASCII so the topic sampler
	// has nothing to draw from.
	gen := newTestContentGenerator(t, &fakeModel{}, map[string]string{
		"kedi": "cat", "köpek": "dog", "kuş": "bird", "tree": "ağaç",
	})

	_, err := gen.Generate(context.Background(), "animals", ContentTypeParagraph, "B1")
	if !errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("error = %v, want ErrInsufficientContent", err)
	}
}

func TestGenerateRequiresMinimumWords(t *testing.T) {
	gen := newTestContentGenerator(t, &fakeModel{}, map[string]string{
		"cat": "kedi", "dog": "köpek",
	})

	_, err := gen.Generate(context.Background(), "animals", ContentTypeParagraph, "B1")
	if !errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("error = %v, want ErrInsufficientContent", err)
	}
}

func TestGenerateInvalidType(t *testing.T) {
	model := &fakeModel{}
	gen := newTestContentGenerator(t, model, map[string]string{
		"cat": "kedi", "dog": "köpek", "bird": "kuş",
	})

	_, err := gen.Generate(context.Background(), "animals", ContentType("poem"), "B1")
	if err == nil {
		t.Fatal("expected error for unknown content type")
	}
	if model.generateCalls != 0 {
		t.Fatalf("model called %d times for invalid type", model.generateCalls)
	}
}
