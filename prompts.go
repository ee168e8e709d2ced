package lingotutor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Semantic prompt keys the backend itself needs. Per-topic tutoring seeds use
// the topic identifier as key and may be structured objects instead.
const (
	PromptQuizSentenceCompletion = "quiz_sentence_completion_prompt"
	PromptEnsureEnglish          = "ensure_english_prompt"
	PromptSmartTranslateAcademic = "smart_translate_academic_prompt"
	PromptSmartTranslateStandard = "smart_translate_standard_prompt"
	PromptTranslate              = "translate_prompt"
	PromptGeneratorParagraph     = "generator_paragraph_prompt"
	PromptGeneratorDialogue      = "generator_dialogue_prompt"
)

// Defaults for missing fields of structured tutoring seeds.
const (
	defaultSeedRole    = "İngilizce Öğretmeni."
	defaultSeedPersona = "Destekleyici ve profesyonel."
	defaultSeedTask    = "Konuyla ilgili pratik yap."
)

// PromptTemplate is either a plain template string with {placeholder}
// substitution points or a structured tutoring seed with role, persona,
// methodology and task fields.
type PromptTemplate struct {
	Text string

	Role        string
	Persona     string
	Methodology string
	Task        string

	structured bool
}

// UnmarshalJSON accepts both template shapes.
func (t *PromptTemplate) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = PromptTemplate{Text: plain}
		return nil
	}

	var obj struct {
		Role        string `json:"role"`
		Persona     string `json:"persona"`
		Methodology string `json:"methodology"`
		Task        string `json:"task"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("prompt şablonu ne metin ne de nesne: %w", err)
	}
	*t = PromptTemplate{
		Role:        obj.Role,
		Persona:     obj.Persona,
		Methodology: obj.Methodology,
		Task:        obj.Task,
		structured:  true,
	}
	return nil
}

// Structured reports whether the template is a role/persona/methodology/task object.
func (t PromptTemplate) Structured() bool {
	return t.structured
}

// Seed renders the template as a conversation seed turn. Structured templates
// are concatenated into four labeled lines in fixed order, with defaults for
// missing fields.
func (t PromptTemplate) Seed() string {
	if !t.structured {
		return t.Text
	}
	role := t.Role
	if role == "" {
		role = defaultSeedRole
	}
	persona := t.Persona
	if persona == "" {
		persona = defaultSeedPersona
	}
	task := t.Task
	if task == "" {
		task = defaultSeedTask
	}
	return fmt.Sprintf("ROLE: %s\nPERSONA: %s\nMETHODOLOGY: %s\nTASK: %s", role, persona, t.Methodology, task)
}

// PromptLibrary is the table mapping topic identifiers and semantic keys to
// templates, loaded once from a JSON file.
type PromptLibrary struct {
	templates map[string]PromptTemplate
}

// LoadPromptLibrary reads the prompt table from path.
func LoadPromptLibrary(path string) (*PromptLibrary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt dosyası okunamadı: %w", err)
	}
	templates := map[string]PromptTemplate{}
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("prompt dosyası çözümlenemedi: %w", err)
	}
	return &PromptLibrary{templates: templates}, nil
}

// NewPromptLibrary builds a library from an in-memory table.
func NewPromptLibrary(templates map[string]PromptTemplate) *PromptLibrary {
	if templates == nil {
		templates = map[string]PromptTemplate{}
	}
	return &PromptLibrary{templates: templates}
}

// Lookup returns the template for a key.
func (l *PromptLibrary) Lookup(key string) (PromptTemplate, bool) {
	t, ok := l.templates[key]
	return t, ok
}

// Render substitutes {name} placeholders in a plain template. Rendering a
// structured template or a missing key is an error.
func (l *PromptLibrary) Render(key string, vars map[string]string) (string, error) {
	t, ok := l.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt şablonu %q: %w", key, ErrNotFound)
	}
	if t.structured {
		return "", fmt.Errorf("prompt şablonu %q yapılandırılmış, yerine koyma desteklenmez", key)
	}
	out := t.Text
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out, nil
}
