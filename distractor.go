package lingotutor

import (
	"fmt"
	"math/rand"
	"time"
)

// DistractorCount is how many wrong options accompany the correct answer.
const DistractorCount = 2

// DistractorSampler draws plausible wrong answers for multiple-choice
// questions from the values of a collection.
type DistractorSampler struct {
	rng *rand.Rand
}

// NewDistractorSampler creates a sampler with its own random source.
func NewDistractorSampler() *DistractorSampler {
	return &DistractorSampler{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample picks count distractors uniformly without replacement from pool.
// Candidates textually equal to the correct answer are excluded, as are
// duplicate candidate texts, so the result never repeats an option.
func (s *DistractorSampler) Sample(correct string, pool []string, count int) ([]string, error) {
	seen := make(map[string]struct{}, len(pool))
	candidates := make([]string, 0, len(pool))
	for _, c := range pool {
		if c == correct {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		candidates = append(candidates, c)
	}

	if len(candidates) < count {
		return nil, fmt.Errorf("%w (en az %d farklı çeviri daha gerekli)", ErrInsufficientDistractors, count)
	}

	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	return candidates[:count], nil
}

// BuildOptions combines the correct answer with its distractors and shuffles
// the result so the correct answer's position is not fixed.
func (s *DistractorSampler) BuildOptions(correct string, distractors []string) []string {
	options := make([]string, 0, 1+len(distractors))
	options = append(options, correct)
	options = append(options, distractors...)

	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return options
}
