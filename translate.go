package lingotutor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// translationFailureMarkers are the phrases the translation prompt instructs
// the model to answer with when it cannot translate the input. A reply
// carrying one of these is the translator flagging its own failure.
var translationFailureMarkers = []string{"hata oluştu", "içerik anlaşılmadı"}

// IsTranslationFailure reports whether a translation reply is the
// translator's failure marker rather than a usable translation.
func IsTranslationFailure(translation string) bool {
	lowered := strings.ToLower(translation)
	for _, marker := range translationFailureMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// Translator wraps the model capability with the translation prompt
// templates: plain word translation, level-aware smart translation and the
// english cleanup pass used after content generation.
type Translator struct {
	model   Model
	prompts *PromptLibrary
	logger  *zap.Logger
}

// NewTranslator creates a translator over the given collaborators.
func NewTranslator(model Model, prompts *PromptLibrary, logger *zap.Logger) *Translator {
	return &Translator{model: model, prompts: prompts, logger: logger}
}

// Translate translates a word or short text via the translate template.
// The reply may still be a failure marker; callers that must reject those
// check with IsTranslationFailure.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	prompt, err := t.prompts.Render(PromptTranslate, map[string]string{"prompt_text": text})
	if err != nil {
		return "", err
	}
	translation, err := t.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("çeviri alınamadı: %w", err)
	}
	return translation, nil
}

// SmartTranslate translates text at a target proficiency level, switching
// between the academic and standard register templates.
func (t *Translator) SmartTranslate(ctx context.Context, text, targetLevel string, academic bool) (string, error) {
	key := PromptSmartTranslateStandard
	if academic {
		key = PromptSmartTranslateAcademic
	}
	prompt, err := t.prompts.Render(key, map[string]string{
		"target_level":      targetLevel,
		"text_to_translate": text,
	})
	if err != nil {
		return "", err
	}
	translation, err := t.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("akıllı çeviri alınamadı: %w", err)
	}
	return translation, nil
}

// EnsureEnglish runs the cleanup pass that strips non-English fragments from
// generated text. It degrades gracefully: on a missing template or a model
// failure the input is returned unchanged.
func (t *Translator) EnsureEnglish(ctx context.Context, text string) string {
	prompt, err := t.prompts.Render(PromptEnsureEnglish, map[string]string{"text_to_clean": text})
	if err != nil {
		t.logger.Warn("english cleanup template missing, returning text as-is", zap.Error(err))
		return text
	}
	cleaned, err := t.model.Generate(ctx, prompt)
	if err != nil {
		t.logger.Warn("english cleanup failed, returning text as-is", zap.Error(err))
		return text
	}
	return cleaned
}
