package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"lingotutor"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const sessionName = "lingotutor-session"

// Server wires the HTTP surface to the application services.
type Server struct {
	cfg        *lingotutor.Config
	logger     *zap.Logger
	cookies    *sessions.CookieStore
	store      *lingotutor.CollectionStore
	translator *lingotutor.Translator
	synth      *lingotutor.QuizSynthesizer
	contentGen *lingotutor.ContentGenerator
	registry   *lingotutor.SessionRegistry
	attempts   *lingotutor.AttemptDB
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "JSON veri bulunamadı.")
		return false
	}
	return true
}

// errorStatus maps the shared failure conditions onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, lingotutor.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, lingotutor.ErrInsufficientContent):
		return http.StatusBadRequest
	case errors.Is(err, lingotutor.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, lingotutor.ErrNotFound), errors.Is(err, lingotutor.ErrTopicNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, lingotutor.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, lingotutor.ErrUpstreamUnavailable):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.cookies.Get(r, sessionName)
		if loggedIn, ok := session.Values["logged_in"].(bool); !ok || !loggedIn {
			writeError(w, http.StatusUnauthorized, "Oturum açmanız gerekiyor.")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	if req.Username != s.cfg.AdminUser || req.Password != s.cfg.AdminPassword {
		writeError(w, http.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı.")
		return
	}

	session, _ := s.cookies.Get(r, sessionName)
	session.Values["logged_in"] = true
	if err := session.Save(r, w); err != nil {
		s.logger.Error("failed to save session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Oturum kaydedilemedi.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Giriş başarılı"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.cookies.Get(r, sessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TopicID string `json:"topicId"`
		Message string `json:"message"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.TopicID == "" {
		writeError(w, http.StatusBadRequest, "Konu ID'si (topicId) eksik.")
		return
	}

	// An empty message on a live session is a reset; the call below reseeds
	// and generates a fresh opening turn.
	message := strings.TrimSpace(req.Message)
	if message == "" && s.registry.Active(req.TopicID) {
		s.registry.Reset(req.TopicID)
	}

	reply, err := s.registry.Converse(r.Context(), req.TopicID, message)
	if err != nil {
		if errors.Is(err, lingotutor.ErrTopicNotConfigured) {
			writeError(w, http.StatusNotFound, "Bu konu için bir pratik başlatılamadı.")
			return
		}
		s.logger.Error("chat failed", zap.String("topic", req.TopicID), zap.Error(err))
		writeError(w, errorStatus(err), "Yapay zekadan yanıt alınırken bir hata oluştu.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "botResponse": reply})
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListName string `json:"listName"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.ListName == "" {
		writeError(w, http.StatusBadRequest, "listName boş")
		return
	}

	safe, err := s.store.Create(req.ListName)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "list": safe})
}

func (s *Server) handleGetCollections(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListAll(lingotutor.NamespaceUser)
	if err != nil {
		s.logger.Error("failed to list collections", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Sunucu hatası: Koleksiyonlar yüklenemedi.")
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleGetMainLists(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListAll(lingotutor.NamespaceMain)
	if err != nil {
		s.logger.Error("failed to list main lists", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Sunucu hatası: Listeler yüklenemedi.")
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleCopyMainList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListName string `json:"listName"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.ListName == "" {
		writeError(w, http.StatusBadRequest, "Kopyalanacak liste adı eksik.")
		return
	}

	if err := s.store.CopyFromMain(req.ListName); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetCollectionWords(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	// A main list with the same name shadows the user copy here, matching
	// the read-only detail view.
	ns := lingotutor.NamespaceUser
	if s.store.Exists(name, lingotutor.NamespaceMain) {
		ns = lingotutor.NamespaceMain
	}

	words, err := s.store.Load(name, ns)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	type wordEntry struct {
		Original    string `json:"original"`
		Translation string `json:"translation"`
	}
	entries := make([]wordEntry, 0, len(words))
	for original, translation := range words {
		entries = append(entries, wordEntry{Original: original, Translation: translation})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Original < entries[j].Original })
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CollectionName string `json:"collectionName"`
		OriginalWord   string `json:"originalWord"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.CollectionName == "" || strings.TrimSpace(req.OriginalWord) == "" {
		writeError(w, http.StatusBadRequest, "Koleksiyon adı veya kelime eksik.")
		return
	}

	translation, err := s.store.AddWord(r.Context(), req.CollectionName, req.OriginalWord, s.translator.Translate)
	if err != nil {
		if errors.Is(err, lingotutor.ErrForbidden) {
			writeError(w, http.StatusForbidden, "Kelime eklemek için önce listeyi kopyalamanız veya oluşturmanız gerekir.")
			return
		}
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":         "ok",
		"originalWord":   strings.TrimSpace(req.OriginalWord),
		"translation":    translation,
		"collectionName": req.CollectionName,
	})
}

func (s *Server) handleDeleteWord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CollectionName string `json:"collectionName"`
		WordToDelete   string `json:"wordToDelete"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.CollectionName == "" || req.WordToDelete == "" {
		writeError(w, http.StatusBadRequest, "Koleksiyon adı veya silinecek kelime eksik.")
		return
	}

	if err := s.store.DeleteWord(req.CollectionName, req.WordToDelete); err != nil {
		if errors.Is(err, lingotutor.ErrForbidden) {
			writeError(w, http.StatusForbidden, "Hazır listelerden kelime silinemez.")
			return
		}
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListName string `json:"listName"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.ListName == "" {
		writeError(w, http.StatusBadRequest, "Liste adı eksik.")
		return
	}

	if err := s.store.DeleteCollection(req.ListName); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRenameList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldName string `json:"oldName"`
		NewName string `json:"newName"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.OldName == "" || req.NewName == "" {
		writeError(w, http.StatusBadRequest, "Eski veya yeni liste adı eksik.")
		return
	}

	if err := s.store.RenameCollection(req.OldName, req.NewName); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetAllQuizLists(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListAll(lingotutor.NamespaceMain, lingotutor.NamespaceUser)
	if err != nil {
		s.logger.Error("failed to list quiz lists", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Sunucu hatası: Listeler yüklenemedi.")
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListName        string `json:"listName"`
		QuestionType    string `json:"questionType"`
		DifficultyLevel string `json:"difficultyLevel"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	questions, err := s.synth.Start(r.Context(), lingotutor.QuizRequest{
		Collection: req.ListName,
		Kind:       lingotutor.QuestionKind(req.QuestionType),
		Level:      req.DifficultyLevel,
	})
	if err != nil {
		if errors.Is(err, lingotutor.ErrUpstreamUnavailable) {
			writeError(w, http.StatusTooManyRequests,
				"Günlük yapay zeka kullanım limitiniz dolmuş. Lütfen daha sonra tekrar deneyin.")
			return
		}
		var genErr *lingotutor.GenerationError
		if errors.As(err, &genErr) {
			writeError(w, http.StatusInternalServerError, genErr.Error())
			return
		}
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (s *Server) handleTranslateText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Çevrilecek metin eksik.")
		return
	}

	translation, err := s.translator.Translate(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("translation failed", zap.Error(err))
		writeError(w, errorStatus(err), "Çeviri sırasında bir sunucu hatası oluştu.")
		return
	}
	if lingotutor.IsTranslationFailure(translation) {
		writeError(w, http.StatusInternalServerError, translation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "translatedText": translation})
}

func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListName    string `json:"listName"`
		ContentType string `json:"contentType"`
		Level       string `json:"level"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.ListName == "" || req.ContentType == "" || req.Level == "" {
		writeError(w, http.StatusBadRequest, "Eksik parametreler: Liste, içerik tipi veya seviye belirtilmemiş.")
		return
	}

	contentType := lingotutor.ContentType(req.ContentType)
	if contentType != lingotutor.ContentTypeParagraph && contentType != lingotutor.ContentTypeDialogue {
		writeError(w, http.StatusBadRequest, "Geçersiz içerik tipi.")
		return
	}

	text, err := s.contentGen.Generate(r.Context(), req.ListName, contentType, req.Level)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "generated_text": text})
}

func (s *Server) handleSmartTranslate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Level    string `json:"level"`
		Academic bool   `json:"academic"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.Text == "" || req.Level == "" {
		writeError(w, http.StatusBadRequest, "Çevrilecek metin veya seviye eksik.")
		return
	}

	translation, err := s.translator.SmartTranslate(r.Context(), req.Text, req.Level, req.Academic)
	if err != nil {
		if errors.Is(err, lingotutor.ErrUpstreamUnavailable) {
			writeError(w, http.StatusTooManyRequests,
				"Günlük yapay zeka kullanım limitiniz dolmuş. Lütfen daha sonra tekrar deneyin veya API anahtarınızı kontrol edin.")
			return
		}
		s.logger.Error("smart translation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Çeviri sırasında beklenmedik bir sunucu hatası oluştu.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "translatedText": translation})
}

func (s *Server) handleQuizResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListName     string `json:"listName"`
		QuestionType string `json:"questionType"`
		Score        int    `json:"score"`
		Total        int    `json:"total"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.ListName == "" || req.Total <= 0 {
		writeError(w, http.StatusBadRequest, "Liste adı veya sonuç bilgisi eksik.")
		return
	}

	attempt := &lingotutor.QuizAttempt{
		Collection: req.ListName,
		Kind:       req.QuestionType,
		Score:      req.Score,
		Total:      req.Total,
	}
	if err := s.attempts.RecordAttempt(attempt); err != nil {
		s.logger.Error("failed to record attempt", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Sonuç kaydedilemedi.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": attempt.ID})
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListName string `json:"listName"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.ListName == "" {
		writeError(w, http.StatusBadRequest, "Liste adı eksik.")
		return
	}

	level, err := s.attempts.Level(req.ListName)
	if err != nil {
		s.logger.Error("failed to compute level", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Seviye hesaplanamadı.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"level": level})
}
