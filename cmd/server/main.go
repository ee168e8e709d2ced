package main

import (
	"log"
	"net/http"

	"lingotutor"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := lingotutor.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := lingotutor.NewLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := lingotutor.NewCollectionStore(cfg.MainListsDir, cfg.UserListsDir)
	prompts, err := lingotutor.LoadPromptLibrary(cfg.PromptsPath)
	if err != nil {
		logger.Fatal("failed to load prompt library", zap.Error(err))
	}

	model := lingotutor.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.ModelName)
	translator := lingotutor.NewTranslator(model, prompts, logger)

	synth := lingotutor.NewQuizSynthesizer(store, model, prompts, logger)
	synth.TranscriptDir = cfg.TranscriptDir

	contentGen := lingotutor.NewContentGenerator(store, model, prompts, translator, logger)
	registry := lingotutor.NewSessionRegistry(model, prompts, logger)

	attempts, err := lingotutor.OpenAttemptDB(cfg.AttemptDBPath)
	if err != nil {
		logger.Fatal("failed to open attempt database", zap.Error(err))
	}
	defer attempts.Close()
	if err := attempts.CreateTables(); err != nil {
		logger.Fatal("failed to create tables", zap.Error(err))
	}

	server := &Server{
		cfg:        cfg,
		logger:     logger,
		cookies:    sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		store:      store,
		translator: translator,
		synth:      synth,
		contentGen: contentGen,
		registry:   registry,
		attempts:   attempts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", server.handleLogin)
	mux.HandleFunc("POST /logout", server.handleLogout)

	mux.HandleFunc("POST /api/chat", server.requireLogin(server.handleChat))
	mux.HandleFunc("POST /api/list-ekle", server.requireLogin(server.handleCreateList))
	mux.HandleFunc("GET /api/get-collections", server.requireLogin(server.handleGetCollections))
	mux.HandleFunc("GET /api/get-main-lists", server.requireLogin(server.handleGetMainLists))
	mux.HandleFunc("POST /api/copy-main-list", server.requireLogin(server.handleCopyMainList))
	mux.HandleFunc("GET /api/get-collection-words/{name}", server.requireLogin(server.handleGetCollectionWords))
	mux.HandleFunc("POST /api/add-word-to-collection", server.requireLogin(server.handleAddWord))
	mux.HandleFunc("POST /api/delete-word-from-collection", server.requireLogin(server.handleDeleteWord))
	mux.HandleFunc("POST /api/delete-list", server.requireLogin(server.handleDeleteList))
	mux.HandleFunc("POST /api/rename-list", server.requireLogin(server.handleRenameList))
	mux.HandleFunc("GET /api/get-all-quiz-lists", server.requireLogin(server.handleGetAllQuizLists))
	mux.HandleFunc("POST /api/start-quiz", server.requireLogin(server.handleStartQuiz))
	mux.HandleFunc("POST /api/translate-text", server.requireLogin(server.handleTranslateText))
	mux.HandleFunc("POST /api/generate-content", server.requireLogin(server.handleGenerateContent))
	mux.HandleFunc("POST /api/smart-translate", server.requireLogin(server.handleSmartTranslate))
	mux.HandleFunc("POST /api/quiz-result", server.requireLogin(server.handleQuizResult))
	mux.HandleFunc("POST /getLevelName", server.requireLogin(server.handleGetLevel))

	logger.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
