package lingotutor

import (
	"errors"
	"strings"
)

// Failure conditions shared across the word-list, quiz and chat surfaces.
// Callers match these with errors.Is to pick status codes and messages.
var (
	ErrInvalidName             = errors.New("geçersiz liste adı")
	ErrNotFound                = errors.New("bulunamadı")
	ErrAlreadyExists           = errors.New("bu isimde bir kayıt zaten var")
	ErrForbidden               = errors.New("hazır listeler değiştirilemez")
	ErrInsufficientContent     = errors.New("listede yeterli içerik yok")
	ErrInsufficientDistractors = errors.New("yeterli çeldirici bulunamadı")
	ErrTopicNotConfigured      = errors.New("bu konu için bir prompt tanımlı değil")
	ErrUpstreamUnavailable     = errors.New("yapay zeka servisi şu anda kullanılamıyor")
)

// GenerationError is returned when a quiz request produced zero questions.
// Diagnostics holds one human-readable reason per skipped item; it is empty
// when the request itself was unusable (for example an unknown question kind).
type GenerationError struct {
	Diagnostics []string
}

func (e *GenerationError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "Seçilen kriterlere uygun soru üretilemedi. Listenizi kontrol edin."
	}
	return "Sorular üretilirken hatalar oluştu. Detaylar: " + strings.Join(e.Diagnostics, "; ")
}
