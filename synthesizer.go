package lingotutor

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxQuizQuestions = 10
	minQuizEntries   = 3

	// DefaultLevel is used when a request omits the difficulty level.
	DefaultLevel = "B1"
)

// completionRequiredFields is the contract a sentence-completion model reply
// must satisfy exactly; anything less skips the item.
var completionRequiredFields = []string{"question_sentence", "correct_answer", "distractor1", "distractor2"}

type wordPair struct {
	Original    string
	Translation string
}

// QuizSynthesizer builds multiple-choice quizzes from a collection, one
// question per drawn word. Per-item failures become diagnostics rather than
// aborting the run; the request fails only when no question survives.
type QuizSynthesizer struct {
	store   *CollectionStore
	model   Model
	prompts *PromptLibrary
	sampler *DistractorSampler
	logger  *zap.Logger
	rng     *rand.Rand

	// TranscriptDir, when non-empty, receives one model-interaction log per quiz.
	TranscriptDir string
}

// NewQuizSynthesizer creates a synthesizer over the given collaborators.
func NewQuizSynthesizer(store *CollectionStore, model Model, prompts *PromptLibrary, logger *zap.Logger) *QuizSynthesizer {
	return &QuizSynthesizer{
		store:   store,
		model:   model,
		prompts: prompts,
		sampler: NewDistractorSampler(),
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start synthesizes a quiz for the request. It draws min(10, |collection|)
// items uniformly without replacement up front; that draw is the question set
// for the whole quiz. A partial result is a success; the caller learns about
// skipped items only when every item was skipped.
func (s *QuizSynthesizer) Start(ctx context.Context, req QuizRequest) ([]QuizQuestion, error) {
	if req.Level == "" {
		req.Level = DefaultLevel
	}

	words, ns, err := s.store.Resolve(req.Collection)
	if err != nil {
		return nil, err
	}
	if len(words) < minQuizEntries {
		return nil, fmt.Errorf("%w: quiz oluşturmak için en az %d kelime gerekli", ErrInsufficientContent, minQuizEntries)
	}

	items := make([]wordPair, 0, len(words))
	pool := make([]string, 0, len(words))
	for original, translation := range words {
		items = append(items, wordPair{Original: original, Translation: translation})
		pool = append(pool, translation)
	}
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	drawn := items[:min(maxQuizQuestions, len(items))]

	quizID := uuid.NewString()
	s.logger.Info("starting quiz synthesis",
		zap.String("quiz_id", quizID),
		zap.String("collection", req.Collection),
		zap.String("namespace", string(ns)),
		zap.String("kind", string(req.Kind)),
		zap.Int("drawn", len(drawn)))

	var transcript *LLMLogger
	if s.TranscriptDir != "" {
		transcript, err = NewLLMLogger(s.TranscriptDir, quizID, req)
		if err != nil {
			s.logger.Warn("quiz transcript unavailable", zap.Error(err))
			transcript = nil
		} else {
			defer transcript.Close()
		}
	}

	questions := make([]QuizQuestion, 0, len(drawn))
	var diagnostics []string

	for _, item := range drawn {
		var q QuizQuestion
		var itemErr error

		switch req.Kind {
		case KindSentenceCompletion:
			q, itemErr = s.completionQuestion(ctx, item, req, transcript)
		case KindTranslation:
			q, itemErr = s.translationQuestion(item, pool)
		default:
			continue
		}

		if itemErr != nil {
			reason := fmt.Sprintf("'%s' için %v", item.Original, itemErr)
			diagnostics = append(diagnostics, reason)
			if transcript != nil {
				transcript.LogItemSkipped(item.Original, itemErr.Error())
			}
			s.logger.Warn("quiz item skipped",
				zap.String("quiz_id", quizID),
				zap.String("word", item.Original),
				zap.Error(itemErr))
			continue
		}

		if transcript != nil {
			transcript.LogItemAccepted(item.Original)
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, &GenerationError{Diagnostics: diagnostics}
	}

	s.logger.Info("quiz synthesis complete",
		zap.String("quiz_id", quizID),
		zap.Int("questions", len(questions)),
		zap.Int("skipped", len(diagnostics)))
	return questions, nil
}

// completionQuestion asks the model for a fill-in-the-blank question and
// validates the reply against the required-field contract. A structurally
// invalid reply never becomes a malformed question.
func (s *QuizSynthesizer) completionQuestion(ctx context.Context, item wordPair, req QuizRequest, transcript *LLMLogger) (QuizQuestion, error) {
	prompt, err := s.prompts.Render(PromptQuizSentenceCompletion, map[string]string{
		"topic":       req.Collection,
		"level":       req.Level,
		"prompt_text": item.Original,
	})
	if err != nil {
		return QuizQuestion{}, fmt.Errorf("soru üretilemedi: %v", err)
	}

	if transcript != nil {
		transcript.LogLLMRequest(item.Original, prompt)
	}
	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return QuizQuestion{}, fmt.Errorf("soru üretilemedi: %v", err)
	}
	if transcript != nil {
		transcript.LogLLMResponse(item.Original, raw)
	}

	fields := map[string]string{}
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &fields); err != nil {
		return QuizQuestion{}, fmt.Errorf("soru üretilemedi: yanıt JSON olarak çözümlenemedi")
	}
	for _, key := range completionRequiredFields {
		if fields[key] == "" {
			return QuizQuestion{}, fmt.Errorf("gelen yanıtta beklenen anahtarlar eksik")
		}
	}

	correct := fields["correct_answer"]
	options := s.sampler.BuildOptions(correct, []string{fields["distractor1"], fields["distractor2"]})
	return QuizQuestion{
		Question:      fields["question_sentence"],
		Options:       options,
		CorrectAnswer: correct,
	}, nil
}

// translationQuestion builds a question locally: the pool is every
// translation in the parent collection, not just the drawn subset.
func (s *QuizSynthesizer) translationQuestion(item wordPair, pool []string) (QuizQuestion, error) {
	distractors, err := s.sampler.Sample(item.Translation, pool, DistractorCount)
	if err != nil {
		return QuizQuestion{}, err
	}
	options := s.sampler.BuildOptions(item.Translation, distractors)
	return QuizQuestion{
		Question:      fmt.Sprintf("'%s' kelimesinin Türkçe karşılığı nedir?", item.Original),
		Options:       options,
		CorrectAnswer: item.Translation,
	}, nil
}

// stripJSONFences removes markdown code fences models wrap JSON replies in.
func stripJSONFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
