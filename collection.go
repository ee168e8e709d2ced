package lingotutor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Namespace selects one of the two collection roots.
type Namespace string

const (
	// NamespaceMain holds the pre-seeded read-only lists.
	NamespaceMain Namespace = "main"
	// NamespaceUser holds the mutable per-user lists.
	NamespaceUser Namespace = "user"
)

// TranslateFunc is the external translation capability used by AddWord.
type TranslateFunc func(ctx context.Context, word string) (string, error)

// SanitizeName strips every character that is not alphanumeric, space, hyphen
// or underscore and trims surrounding whitespace. An empty result is invalid.
func SanitizeName(name string) (string, error) {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if safe == "" {
		return "", ErrInvalidName
	}
	return safe, nil
}

// CollectionStore manages word->translation collections as one JSON object
// file per collection, split across a read-only main root and a mutable user
// root. Concurrent writers to the same file are not coordinated; the store
// assumes a single writer per collection.
type CollectionStore struct {
	mainDir string
	userDir string
}

// NewCollectionStore creates a store over the two roots.
func NewCollectionStore(mainDir, userDir string) *CollectionStore {
	return &CollectionStore{mainDir: mainDir, userDir: userDir}
}

func (s *CollectionStore) dir(ns Namespace) string {
	if ns == NamespaceMain {
		return s.mainDir
	}
	return s.userDir
}

func (s *CollectionStore) path(ns Namespace, safeName string) string {
	return filepath.Join(s.dir(ns), safeName+".json")
}

// Exists reports whether a collection with that name is present in the namespace.
func (s *CollectionStore) Exists(name string, ns Namespace) bool {
	safe, err := SanitizeName(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(s.path(ns, safe))
	return err == nil
}

// Create writes an empty user collection and returns its sanitized name.
func (s *CollectionStore) Create(name string) (string, error) {
	safe, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(s.path(NamespaceUser, safe)); err == nil {
		return "", fmt.Errorf("liste %q: %w", safe, ErrAlreadyExists)
	}
	if err := s.Save(safe, map[string]string{}, NamespaceUser); err != nil {
		return "", err
	}
	return safe, nil
}

// Load reads a collection. An empty file body yields an empty map, never nil.
func (s *CollectionStore) Load(name string, ns Namespace) (map[string]string, error) {
	safe, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path(ns, safe))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("liste %q: %w", safe, ErrNotFound)
		}
		return nil, fmt.Errorf("liste %q okunamadı: %w", safe, err)
	}
	words := map[string]string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &words); err != nil {
			return nil, fmt.Errorf("liste %q bozuk: %w", safe, err)
		}
	}
	if words == nil {
		words = map[string]string{}
	}
	return words, nil
}

// Save overwrites a collection file. The content is written to a temp file in
// the same directory and renamed over the target so a reader never observes a
// partial write.
func (s *CollectionStore) Save(name string, words map[string]string, ns Namespace) error {
	safe, err := SanitizeName(name)
	if err != nil {
		return err
	}
	dir := s.dir(ns)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("liste dizini oluşturulamadı: %w", err)
	}
	data, err := json.MarshalIndent(words, "", "    ")
	if err != nil {
		return fmt.Errorf("liste %q kodlanamadı: %w", safe, err)
	}
	tmp, err := os.CreateTemp(dir, safe+"-*.json")
	if err != nil {
		return fmt.Errorf("geçici dosya oluşturulamadı: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("liste %q yazılamadı: %w", safe, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("liste %q yazılamadı: %w", safe, err)
	}
	if err := os.Rename(tmp.Name(), s.path(ns, safe)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("liste %q kaydedilemedi: %w", safe, err)
	}
	return nil
}

// CopyFromMain duplicates a main collection into the user namespace. The copy
// is independent; later edits never touch the main original.
func (s *CollectionStore) CopyFromMain(name string) error {
	safe, err := SanitizeName(name)
	if err != nil {
		return err
	}
	words, err := s.Load(safe, NamespaceMain)
	if err != nil {
		return err
	}
	if s.Exists(safe, NamespaceUser) {
		return fmt.Errorf("liste %q: %w", safe, ErrAlreadyExists)
	}
	return s.Save(safe, words, NamespaceUser)
}

// AddWord translates original via the supplied capability and upserts the
// pair into a user collection. Adding to a collection that has no user copy
// is forbidden; copy or create it first.
func (s *CollectionStore) AddWord(ctx context.Context, collection, original string, translate TranslateFunc) (string, error) {
	safe, err := SanitizeName(collection)
	if err != nil {
		return "", err
	}
	original = strings.TrimSpace(original)
	if original == "" {
		return "", fmt.Errorf("kelime boş olamaz")
	}
	if !s.Exists(safe, NamespaceUser) {
		return "", fmt.Errorf("liste %q: %w", safe, ErrForbidden)
	}
	translation, err := translate(ctx, original)
	if err != nil {
		return "", fmt.Errorf("'%s' çevrilemedi: %w", original, err)
	}
	if IsTranslationFailure(translation) {
		return "", fmt.Errorf("'%s' kelimesi çevrilemedi veya anlaşılamadı", original)
	}
	words, err := s.Load(safe, NamespaceUser)
	if err != nil {
		return "", err
	}
	words[original] = translation
	if err := s.Save(safe, words, NamespaceUser); err != nil {
		return "", err
	}
	return translation, nil
}

// DeleteWord removes a word from a user collection and persists the result.
func (s *CollectionStore) DeleteWord(collection, word string) error {
	safe, err := SanitizeName(collection)
	if err != nil {
		return err
	}
	if !s.Exists(safe, NamespaceUser) {
		return fmt.Errorf("liste %q: %w", safe, ErrForbidden)
	}
	words, err := s.Load(safe, NamespaceUser)
	if err != nil {
		return err
	}
	if _, ok := words[word]; !ok {
		return fmt.Errorf("kelime %q: %w", word, ErrNotFound)
	}
	delete(words, word)
	return s.Save(safe, words, NamespaceUser)
}

// DeleteCollection removes a user collection file.
func (s *CollectionStore) DeleteCollection(name string) error {
	safe, err := SanitizeName(name)
	if err != nil {
		return err
	}
	path := s.path(NamespaceUser, safe)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("liste %q: %w", safe, ErrNotFound)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("liste %q silinemedi: %w", safe, err)
	}
	return nil
}

// RenameCollection renames a user collection. The destination name must be free.
func (s *CollectionStore) RenameCollection(oldName, newName string) error {
	safeOld, err := SanitizeName(oldName)
	if err != nil {
		return err
	}
	safeNew, err := SanitizeName(newName)
	if err != nil {
		return err
	}
	oldPath := s.path(NamespaceUser, safeOld)
	newPath := s.path(NamespaceUser, safeNew)
	if _, err := os.Stat(oldPath); err != nil {
		return fmt.Errorf("liste %q: %w", safeOld, ErrNotFound)
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("liste %q: %w", safeNew, ErrAlreadyExists)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("liste %q yeniden adlandırılamadı: %w", safeOld, err)
	}
	return nil
}

// ListAll enumerates collection names across the given namespaces,
// deduplicated and sorted ascending.
func (s *CollectionStore) ListAll(namespaces ...Namespace) ([]string, error) {
	seen := map[string]struct{}{}
	for _, ns := range namespaces {
		entries, err := os.ReadDir(s.dir(ns))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("liste dizini okunamadı: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), ".json")] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Resolve loads a collection, preferring the user copy over the main list.
func (s *CollectionStore) Resolve(name string) (map[string]string, Namespace, error) {
	safe, err := SanitizeName(name)
	if err != nil {
		return nil, "", err
	}
	if s.Exists(safe, NamespaceUser) {
		words, err := s.Load(safe, NamespaceUser)
		return words, NamespaceUser, err
	}
	words, err := s.Load(safe, NamespaceMain)
	return words, NamespaceMain, err
}
