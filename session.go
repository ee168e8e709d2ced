package lingotutor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// bootstrapMessage is sent to obtain a session's opening turn. It is not
// recorded in history; only the model's reply is.
const bootstrapMessage = "Başla."

// ConversationSession is one tutoring conversation bound to a topic. History
// is append-only for the session's lifetime; entry 0 is the seed turn,
// recorded under the user role as the model capability expects.
type ConversationSession struct {
	mu      sync.Mutex
	topic   string
	history []ChatTurn
}

// SessionRegistry owns the process-wide topic -> session table. It is an
// explicit object rather than ambient state so tests can inject their own
// instance. Idle sessions are never expired; callers needing memory bounds
// should wrap the registry with an eviction policy.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*ConversationSession

	model   Model
	prompts *PromptLibrary
	logger  *zap.Logger
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(model Model, prompts *PromptLibrary, logger *zap.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*ConversationSession),
		model:    model,
		prompts:  prompts,
		logger:   logger,
	}
}

// Converse advances the conversation for a topic and returns the reply text.
//
// An empty message on a session whose only turn is the seed triggers exactly
// one model call for the opening turn; an empty message afterwards re-reads
// the most recent turn without calling the model. A non-empty message is
// forwarded and both it and the reply are appended. Any model failure
// discards the session so the next request reseeds.
func (r *SessionRegistry) Converse(ctx context.Context, topicID, message string) (string, error) {
	message = strings.TrimSpace(message)

	sess, err := r.lookupOrSeed(topicID)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if message == "" {
		if len(sess.history) > 1 {
			return sess.history[len(sess.history)-1].Content, nil
		}

		r.logger.Info("generating opening turn", zap.String("topic", topicID))
		reply, err := r.model.Chat(ctx, appendTurn(sess.history, ChatTurn{Role: RoleUser, Content: bootstrapMessage}))
		if err != nil {
			r.Reset(topicID)
			return "", fmt.Errorf("sohbet başlatılamadı: %w", err)
		}
		sess.history = append(sess.history, ChatTurn{Role: RoleAssistant, Content: reply})
		return reply, nil
	}

	reply, err := r.model.Chat(ctx, appendTurn(sess.history, ChatTurn{Role: RoleUser, Content: message}))
	if err != nil {
		r.Reset(topicID)
		return "", fmt.Errorf("yanıt alınamadı: %w", err)
	}
	sess.history = append(sess.history,
		ChatTurn{Role: RoleUser, Content: message},
		ChatTurn{Role: RoleAssistant, Content: reply},
	)
	return reply, nil
}

// Reset discards the session for a topic, if any, so the next request
// reseeds. It reports whether a session existed.
func (r *SessionRegistry) Reset(topicID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[topicID]
	if ok {
		r.logger.Info("discarding session", zap.String("topic", topicID))
		delete(r.sessions, topicID)
	}
	return ok
}

// Active reports whether a live session exists for the topic.
func (r *SessionRegistry) Active(topicID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[topicID]
	return ok
}

// History returns a copy of the topic's conversation history, or nil when no
// session exists.
func (r *SessionRegistry) History(topicID string) []ChatTurn {
	r.mu.Lock()
	sess, ok := r.sessions[topicID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]ChatTurn, len(sess.history))
	copy(out, sess.history)
	return out
}

// lookupOrSeed returns the live session for a topic, seeding a new one from
// the prompt table when absent.
func (r *SessionRegistry) lookupOrSeed(topicID string) (*ConversationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[topicID]; ok {
		return sess, nil
	}

	template, ok := r.prompts.Lookup(topicID)
	if !ok {
		return nil, fmt.Errorf("konu %q: %w", topicID, ErrTopicNotConfigured)
	}

	r.logger.Info("seeding new session", zap.String("topic", topicID), zap.Bool("structured_seed", template.Structured()))
	sess := &ConversationSession{
		topic:   topicID,
		history: []ChatTurn{{Role: RoleUser, Content: template.Seed()}},
	}
	r.sessions[topicID] = sess
	return sess, nil
}

// appendTurn copies turns before appending so callers never alias session history.
func appendTurn(turns []ChatTurn, turn ChatTurn) []ChatTurn {
	out := make([]ChatTurn, 0, len(turns)+1)
	out = append(out, turns...)
	return append(out, turn)
}
