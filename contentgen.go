package lingotutor

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentType selects what the content generator produces.
type ContentType string

const (
	ContentTypeParagraph ContentType = "paragraph"
	ContentTypeDialogue  ContentType = "dialogue"
)

// topicWordCount is how many english words seed a generated text's topic.
const topicWordCount = 3

// ContentGenerator produces practice texts (paragraphs or dialogues) themed
// around words sampled from a collection.
type ContentGenerator struct {
	store      *CollectionStore
	model      Model
	prompts    *PromptLibrary
	translator *Translator
	logger     *zap.Logger
	rng        *rand.Rand
}

// NewContentGenerator creates a generator over the given collaborators.
func NewContentGenerator(store *CollectionStore, model Model, prompts *PromptLibrary, translator *Translator, logger *zap.Logger) *ContentGenerator {
	return &ContentGenerator{
		store:      store,
		model:      model,
		prompts:    prompts,
		translator: translator,
		logger:     logger,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate samples three likely-English words from the collection as the
// topic, renders the paragraph or dialogue template at the given level and
// runs the reply through the english cleanup pass.
func (g *ContentGenerator) Generate(ctx context.Context, collection string, contentType ContentType, level string) (string, error) {
	words, _, err := g.store.Resolve(collection)
	if err != nil {
		return "", err
	}
	if len(words) < topicWordCount {
		return "", fmt.Errorf("%w: içerik üretmek için en az %d kelime gerekli", ErrInsufficientContent, topicWordCount)
	}

	english := make([]string, 0, len(words))
	for original := range words {
		if isLikelyEnglish(original) {
			english = append(english, original)
		}
	}
	if len(english) < topicWordCount {
		return "", fmt.Errorf("%w: içerik üretmek için en az %d İngilizce kelime gerekli", ErrInsufficientContent, topicWordCount)
	}

	g.rng.Shuffle(len(english), func(i, j int) {
		english[i], english[j] = english[j], english[i]
	})
	topic := strings.Join(english[:topicWordCount], ", ")

	var key string
	switch contentType {
	case ContentTypeParagraph:
		key = PromptGeneratorParagraph
	case ContentTypeDialogue:
		key = PromptGeneratorDialogue
	default:
		return "", fmt.Errorf("geçersiz içerik tipi: %q", contentType)
	}

	prompt, err := g.prompts.Render(key, map[string]string{
		"topic": topic,
		"level": level,
	})
	if err != nil {
		return "", err
	}

	g.logger.Info("generating practice content",
		zap.String("collection", collection),
		zap.String("type", string(contentType)),
		zap.String("topic", topic))

	text, err := g.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("içerik üretilemedi: %w", err)
	}

	return g.translator.EnsureEnglish(ctx, text), nil
}

// isLikelyEnglish reports whether every rune is plain ASCII, the same cheap
// heuristic the word lists use to tell english entries from translations.
func isLikelyEnglish(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
	}
	return true
}
