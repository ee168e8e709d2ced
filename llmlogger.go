package lingotutor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes a per-quiz transcript of all model interactions to a file.
type LLMLogger struct {
	file   *os.File
	mu     sync.Mutex
	quizID string
}

// NewLLMLogger creates a transcript logger for one quiz synthesis run.
func NewLLMLogger(dir, quizID string, req QuizRequest) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", quizID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:   file,
		quizID: quizID,
	}

	logger.Logf("=== Quiz Synthesis Log ===\n")
	logger.Logf("Quiz ID: %s\n", quizID)
	logger.Logf("Collection: %s\n", req.Collection)
	logger.Logf("Question Kind: %s\n", req.Kind)
	logger.Logf("Level: %s\n", req.Level)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp.
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.logf(format, args...)
}

func (ll *LLMLogger) logf(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(ll.file, "[%s] %s", timestamp, message)
	ll.file.Sync()
}

// LogLLMRequest logs a model request.
func (ll *LLMLogger) LogLLMRequest(word, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", word)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs a model response.
func (ll *LLMLogger) LogLLMResponse(word, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", word)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogItemSkipped records why a drawn item produced no question.
func (ll *LLMLogger) LogItemSkipped(word, reason string) {
	ll.Logf("Item %q: SKIPPED - %s\n", word, reason)
}

// LogItemAccepted records a successfully built question.
func (ll *LLMLogger) LogItemAccepted(word string) {
	ll.Logf("Item %q: question built\n", word)
}

// Close closes the log file.
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file != nil {
		ll.logf("=== Quiz Synthesis Complete ===\n")
		ll.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
		ll.logf("=============================\n")
		return ll.file.Close()
	}
	return nil
}
