package cli

import (
	"os"
	"time"

	"go.uber.org/zap"

	"todoc/config"
	"todoc/internal/adapter/embedding"
	"todoc/internal/adapter/langdetect"
	"todoc/internal/adapter/llm"
	"todoc/internal/adapter/records"
	"todoc/internal/adapter/vecstore"
	"todoc/internal/adapter/websearch"
	"todoc/internal/port"
	"todoc/internal/usecase"
)

// buildAgent wires the full orchestrator from config. Collaborators that
// fail to construct (missing API key, missing database) stay nil so the
// agent degrades instead of the command failing outright.
func buildAgent(cfg *config.Config, logger *zap.Logger) (*usecase.Agent, func()) {
	cache := vecstore.NewCache(logger)

	var embedder port.Embedder
	if e, err := embedding.NewOpenAIEmbedder(cfg.OpenAI); err != nil {
		logger.Warn("embedding service unavailable", zap.Error(err))
	} else {
		embedder = e
	}
	retriever := vecstore.NewRetriever(embedder, logger)

	var chat port.ChatModel
	if c, err := llm.NewOpenAIChat(cfg.OpenAI); err != nil {
		logger.Warn("completion service unavailable", zap.Error(err))
	} else {
		chat = c
	}

	var recordStore port.RecordStore
	var communityStore port.CommunityStore
	var closeStore func()
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		logger.Warn("record store missing", zap.String("path", cfg.Database.Path))
	} else if store, err := records.Open(cfg.Database.Path); err != nil {
		logger.Warn("record store unavailable", zap.String("path", cfg.Database.Path), zap.Error(err))
	} else {
		recordStore = store
		communityStore = store
		closeStore = func() { _ = store.Close() }
	}

	var web port.WebSearcher
	if cfg.WebSearch.Enabled {
		web = websearch.New("", time.Duration(cfg.WebSearch.TimeoutSeconds)*time.Second)
	}

	agent := usecase.NewAgent(
		cfg,
		cache,
		retriever,
		chat,
		recordStore,
		communityStore,
		langdetect.New(),
		web,
		logger,
	)

	return agent, func() {
		if closeStore != nil {
			closeStore()
		}
	}
}
