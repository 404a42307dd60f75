package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"resync/internal/api"
	"resync/internal/chat"
	"resync/internal/config"
	"resync/internal/extract"
	"resync/internal/logger"
	"resync/internal/providers"
	"resync/internal/scholar"
	"resync/internal/session"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	log := logger.New(cfg.LogFile, cfg.Environment == "production")
	defer log.Sync()

	var provider providers.ChatProvider
	if cfg.GroqAPIKey == "" {
		log.Warn("GROQ_API_KEY not set, falling back to mock provider")
		provider = providers.NewMockProvider()
	} else {
		provider = providers.NewGroqProvider(cfg.GroqAPIKey, cfg.GroqBaseURL, providers.CompletionParams{
			Model:       cfg.GroqModel,
			Temperature: 0.7,
			MaxTokens:   1024,
			TopP:        1,
		}, time.Duration(cfg.LLMTimeoutSecs)*time.Second)
	}

	store := session.NewMemoryStore(chat.SystemPrompt, time.Duration(cfg.SessionIdleSecs)*time.Second)
	manager := chat.NewManager(store, provider, nil, chat.Options{
		TopK:             cfg.TopKChunks,
		MaxHistory:       cfg.MaxHistory,
		ContextCharLimit: cfg.ContextCharLimit,
	}, log)
	extractor := extract.New(time.Duration(cfg.FetchTimeoutSecs)*time.Second, cfg.MaxUploadBytes)
	sc := scholar.NewClient(cfg.CoreBaseURL, cfg.CoreAPIKey, cfg.OpenAlexBaseURL, cfg.PoliteEmail, time.Duration(cfg.FetchTimeoutSecs)*time.Second)

	srv := api.NewServer(cfg, store, manager, extractor, sc, log)

	httpServer := &http.Server{
		Addr:         cfg.APIAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
	}
	log.Info("api listening", zap.String("addr", cfg.APIAddr), zap.String("model", cfg.GroqModel))
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
