package lingotutor

// QuestionKind selects how quiz questions are built from a collection.
type QuestionKind string

const (
	// KindSentenceCompletion asks the model for a fill-in-the-blank sentence per word.
	KindSentenceCompletion QuestionKind = "sentence_completion"
	// KindTranslation builds multiple-choice translation questions locally.
	KindTranslation QuestionKind = "translation"
)

// QuizRequest describes a single quiz synthesis call.
type QuizRequest struct {
	Collection string       `json:"collection"`
	Kind       QuestionKind `json:"kind"`
	Level      string       `json:"level,omitempty"` // CEFR-style difficulty, defaults to B1
}

// QuizQuestion is one multiple-choice question. Options always contains the
// correct answer at a random position; nothing is persisted or cached.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Chat roles as the model capability expects them.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one entry in a conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
