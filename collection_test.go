package lingotutor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *CollectionStore {
	t.Helper()
	base := t.TempDir()
	return NewCollectionStore(filepath.Join(base, "main_lists"), filepath.Join(base, "user_lists"))
}

func seedCollection(t *testing.T, s *CollectionStore, name string, ns Namespace, words map[string]string) {
	t.Helper()
	if err := s.Save(name, words, ns); err != nil {
		t.Fatalf("seed %s/%s: %v", ns, name, err)
	}
}

func staticTranslator(translation string) TranslateFunc {
	return func(context.Context, string) (string, error) {
		return translation, nil
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"animals", "animals", false},
		{"  my list  ", "my list", false},
		{"a/b\\c", "abc", false},
		{"günlük-kelimeler_1", "günlük-kelimeler_1", false},
		{"../../etc/passwd", "etcpasswd", false},
		{"!!!", "", true},
		{"   ", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := SanitizeName(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidName) {
				t.Errorf("SanitizeName(%q) error = %v, want ErrInvalidName", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("SanitizeName(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateAndLoad(t *testing.T) {
	s := newTestStore(t)

	safe, err := s.Create("  my words ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if safe != "my words" {
		t.Fatalf("expected sanitized name %q, got %q", "my words", safe)
	}

	words, err := s.Load(safe, NamespaceUser)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if words == nil || len(words) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", words)
	}

	if _, err := s.Create(safe); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want ErrAlreadyExists", err)
	}
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("nope", NamespaceUser); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load missing error = %v, want ErrNotFound", err)
	}
}

func TestCopyFromMainIsIndependent(t *testing.T) {
	s := newTestStore(t)
	original := map[string]string{"cat": "kedi", "dog": "köpek"}
	seedCollection(t, s, "animals", NamespaceMain, original)

	if err := s.CopyFromMain("animals"); err != nil {
		t.Fatalf("copy: %v", err)
	}

	if _, err := s.AddWord(context.Background(), "animals", "bird", staticTranslator("kuş")); err != nil {
		t.Fatalf("add word: %v", err)
	}

	mainWords, err := s.Load("animals", NamespaceMain)
	if err != nil {
		t.Fatalf("load main: %v", err)
	}
	if !reflect.DeepEqual(mainWords, original) {
		t.Fatalf("main copy changed: %#v", mainWords)
	}

	userWords, err := s.Load("animals", NamespaceUser)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if userWords["bird"] != "kuş" || len(userWords) != 3 {
		t.Fatalf("user copy missing new word: %#v", userWords)
	}
}

func TestCopyFromMainErrors(t *testing.T) {
	s := newTestStore(t)
	if err := s.CopyFromMain("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("copy missing error = %v, want ErrNotFound", err)
	}

	seedCollection(t, s, "animals", NamespaceMain, map[string]string{"cat": "kedi"})
	seedCollection(t, s, "animals", NamespaceUser, map[string]string{"cat": "kedi"})
	if err := s.CopyFromMain("animals"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("copy existing error = %v, want ErrAlreadyExists", err)
	}
}

func TestAddWordRequiresUserCopy(t *testing.T) {
	s := newTestStore(t)
	seedCollection(t, s, "animals", NamespaceMain, map[string]string{"cat": "kedi"})

	_, err := s.AddWord(context.Background(), "animals", "dog", staticTranslator("köpek"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("add without user copy error = %v, want ErrForbidden", err)
	}

	if err := s.CopyFromMain("animals"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	translation, err := s.AddWord(context.Background(), "animals", "dog", staticTranslator("köpek"))
	if err != nil {
		t.Fatalf("add after copy: %v", err)
	}
	if translation != "köpek" {
		t.Fatalf("translation = %q, want köpek", translation)
	}
}

func TestAddWordRejectsFailureMarker(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create("animals"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := s.AddWord(context.Background(), "animals", "asdfgh", staticTranslator("İçerik anlaşılmadı."))
	if err == nil {
		t.Fatal("expected failure-marker translation to be rejected")
	}

	words, err := s.Load("animals", NamespaceUser)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(words) != 0 {
		t.Fatalf("rejected word was persisted: %#v", words)
	}
}

func TestDeleteWordNotFoundKeepsFile(t *testing.T) {
	s := newTestStore(t)
	seedCollection(t, s, "animals", NamespaceUser, map[string]string{"cat": "kedi"})

	path := s.path(NamespaceUser, "animals")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read before: %v", err)
	}

	if err := s.DeleteWord("animals", "dog"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing word error = %v, want ErrNotFound", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read after: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("storage file changed after failed delete")
	}
}

func TestDeleteWord(t *testing.T) {
	s := newTestStore(t)
	seedCollection(t, s, "animals", NamespaceUser, map[string]string{"cat": "kedi", "dog": "köpek"})

	if err := s.DeleteWord("animals", "cat"); err != nil {
		t.Fatalf("delete word: %v", err)
	}
	words, _ := s.Load("animals", NamespaceUser)
	if _, ok := words["cat"]; ok {
		t.Fatal("word still present after delete")
	}

	seedCollection(t, s, "mainonly", NamespaceMain, map[string]string{"cat": "kedi"})
	if err := s.DeleteWord("mainonly", "cat"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete from main-only error = %v, want ErrForbidden", err)
	}
}

func TestRenameCollection(t *testing.T) {
	s := newTestStore(t)
	original := map[string]string{"cat": "kedi", "dog": "köpek"}
	seedCollection(t, s, "old", NamespaceUser, original)

	if err := s.RenameCollection("old", "new"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	words, err := s.Load("new", NamespaceUser)
	if err != nil {
		t.Fatalf("load renamed: %v", err)
	}
	if !reflect.DeepEqual(words, original) {
		t.Fatalf("renamed mapping = %#v, want %#v", words, original)
	}

	if _, err := s.Load("old", NamespaceUser); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load old error = %v, want ErrNotFound", err)
	}

	seedCollection(t, s, "taken", NamespaceUser, map[string]string{})
	if err := s.RenameCollection("new", "taken"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("rename onto existing error = %v, want ErrAlreadyExists", err)
	}
	if err := s.RenameCollection("ghost", "fresh"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rename missing error = %v, want ErrNotFound", err)
	}
}

func TestDeleteCollection(t *testing.T) {
	s := newTestStore(t)
	seedCollection(t, s, "gone", NamespaceUser, map[string]string{})

	if err := s.DeleteCollection("gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteCollection("gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing error = %v, want ErrNotFound", err)
	}
}

func TestListAllDeduplicatedSorted(t *testing.T) {
	s := newTestStore(t)
	seedCollection(t, s, "b", NamespaceMain, map[string]string{})
	seedCollection(t, s, "a", NamespaceMain, map[string]string{})
	seedCollection(t, s, "b", NamespaceUser, map[string]string{})
	seedCollection(t, s, "c", NamespaceUser, map[string]string{})

	names, err := s.ListAll(NamespaceMain, NamespaceUser)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ListAll = %v, want %v", names, want)
	}

	userOnly, err := s.ListAll(NamespaceUser)
	if err != nil {
		t.Fatalf("list user: %v", err)
	}
	if !reflect.DeepEqual(userOnly, []string{"b", "c"}) {
		t.Fatalf("user ListAll = %v", userOnly)
	}
}

func TestResolvePrefersUserCopy(t *testing.T) {
	s := newTestStore(t)
	seedCollection(t, s, "animals", NamespaceMain, map[string]string{"cat": "kedi"})
	seedCollection(t, s, "animals", NamespaceUser, map[string]string{"cat": "kedi", "dog": "köpek"})

	words, ns, err := s.Resolve("animals")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ns != NamespaceUser || len(words) != 2 {
		t.Fatalf("resolve = (%v, %s), want user copy with 2 words", words, ns)
	}
}
