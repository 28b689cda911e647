package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ragcore/ragcore/auth"
	"github.com/ragcore/ragcore/cache"
	"github.com/ragcore/ragcore/chunk"
	"github.com/ragcore/ragcore/config"
	"github.com/ragcore/ragcore/embedder"
	"github.com/ragcore/ragcore/generator"
	"github.com/ragcore/ragcore/handlers"
	"github.com/ragcore/ragcore/ingest"
	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/orchestrator"
	"github.com/ragcore/ragcore/store"
	"github.com/ragcore/ragcore/vectorindex"
	"github.com/ragcore/ragcore/webhooks"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := store.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	chunkStore := store.NewChunkStore(db)
	conversationStore := store.NewConversationStore(db)

	emb := buildEmbedder(cfg)
	gen := buildGenerator(cfg)
	vecIndex := buildVectorIndex(cfg, emb.Dimension())
	answerCache := cache.New(cfg.Redis.URL, cfg.Redis.TTLSeconds)

	if vecIndex != nil {
		if err := vecIndex.EnsureCollection(context.Background()); err != nil {
			log.Printf("Warning: vector index collection setup failed, continuing in degraded mode: %v", err)
		}
	}

	ingestSvc := ingest.New(chunkStore, emb, vecIndex, ingest.Options{
		ChunkOpts:    chunk.Options{TargetChars: cfg.Ingest.ChunkTargetChars, OverlapSentences: cfg.Ingest.OverlapSentences},
		StoragePath:  cfg.Storage.DocumentStoragePath,
		MaxFileBytes: cfg.Ingest.MaxFileBytes,
	})

	orch := orchestrator.New(chunkStore, conversationStore, emb, gen, vecIndex, answerCache, orchestrator.Options{
		CorpusLimit:  cfg.Retrieval.CorpusLimit,
		RetrieveTopK: cfg.Retrieval.TopK,
		RRFK:         cfg.Retrieval.RRFK,
		CacheTTL:     cfg.Redis.TTLSeconds,
	})

	queryHandlers := handlers.NewQueryHandlers(orch)
	ingestHandlers := handlers.NewIngestHandlers(ingestSvc)
	adminHandlers := handlers.NewAdminHandlers(chunkStore, vecIndex)
	jwtValidator := auth.NewJWTValidator(cfg.Auth.JWTSecret)

	teamsHandler := webhooks.NewTeamsHandler(orch)
	telegramHandler := webhooks.NewTelegramHandler(orch)
	whatsAppHandler := webhooks.NewWhatsAppHandler(orch, cfg.Channels.WhatsAppAppSecret)

	router := setupRouter(cfg, jwtValidator, queryHandlers, ingestHandlers, adminHandlers, teamsHandler, telegramHandler, whatsAppHandler)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("RAG core server starting on %s", cfg.GetServerAddress())
		log.Printf("Environment: %s", os.Getenv("ENVIRONMENT"))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// buildEmbedder selects the remote OpenAI-compatible embedder when a
// provider URL or an API key is configured, falling back to the deterministic embedder
// otherwise, per spec.md §4.3/§6.
func buildEmbedder(cfg *config.Config) embedder.Embedder {
	if cfg.Embedder.ProviderURL == "" && cfg.Embedder.APIKey == "" {
		log.Println("No embedding provider configured; using deterministic fallback embedder")
		return embedder.NewDeterministic()
	}
	return embedder.NewRemote(cfg.Embedder.APIKey, cfg.Embedder.ProviderURL, cfg.Embedder.Model, cfg.Embedder.BatchTokens)
}

// buildGenerator selects the remote generator when configured; a nil
// Generator is valid and every answer strategy degrades gracefully without
// one (spec.md §4.7/§4.8).
func buildGenerator(cfg *config.Config) generator.Generator {
	if cfg.Generator.ProviderURL == "" && cfg.Generator.APIKey == "" {
		log.Println("No generator provider configured; answer strategies will use their no-LLM fallback paths")
		return nil
	}
	return generator.NewOpenAIGenerator(cfg.Generator.APIKey, cfg.Generator.ProviderURL, cfg.Generator.Model)
}

// buildVectorIndex selects Qdrant when configured, falling back to a no-op
// index (spec.md §4.5: "best-effort, eventually consistent" side channel
// that the chunk store never depends on for correctness).
func buildVectorIndex(cfg *config.Config, dim int) vectorindex.Index {
	if cfg.Vector.URL == "" {
		log.Println("No vector index configured; retrieval falls back to BM25/Jaccard only")
		return vectorindex.Noop{}
	}
	idx, err := vectorindex.NewQdrant(cfg.Vector.URL, cfg.Vector.Collection, dim, cfg.Vector.Retries, cfg.Vector.RetryDelay)
	if err != nil {
		log.Printf("Warning: could not initialize Qdrant vector index, continuing without it: %v", err)
		return vectorindex.Noop{}
	}
	return idx
}

func setupRouter(
	cfg *config.Config,
	jwtValidator *auth.JWTValidator,
	queryHandlers *handlers.QueryHandlers,
	ingestHandlers *handlers.IngestHandlers,
	adminHandlers *handlers.AdminHandlers,
	teamsHandler *webhooks.TeamsHandler,
	telegramHandler *webhooks.TelegramHandler,
	whatsAppHandler *webhooks.WhatsAppHandler,
) *gin.Engine {
	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = 10 << 20 // 10 MiB, matches ingest's MaxFileBytes default

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3001", "http://localhost:5173"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ragcore",
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/query", queryHandlers.Query)
		v1.POST("/ingest", ingestHandlers.IngestJSON)
		v1.POST("/ingest/file", ingestHandlers.IngestFile)
	}

	admin := v1.Group("/admin/tenants/:tenantId")
	admin.Use(auth.RequireAdmin(jwtValidator, models.RoleAdmin))
	{
		admin.DELETE("/documents/:documentId", adminHandlers.DeleteDocument)
		admin.POST("/documents/:documentId/reindex", adminHandlers.ReindexDocument)
	}

	wh := router.Group("/webhooks")
	{
		wh.POST("/teams", teamsHandler.Webhook)
		wh.POST("/telegram", telegramHandler.Webhook)
		wh.POST("/whatsapp", whatsAppHandler.Webhook)
	}

	return router
}
