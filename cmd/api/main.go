package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"draftpad-backend/interfaces/http/rest"
	"draftpad-backend/internal/cache"
	"draftpad-backend/internal/config"
	"draftpad-backend/internal/media"
	"draftpad-backend/internal/repository"
	"draftpad-backend/internal/repository/ddb"
	"draftpad-backend/internal/repository/memory"
	"draftpad-backend/internal/service/automation"
	"draftpad-backend/internal/service/billing"
	"draftpad-backend/internal/service/chat"
	"draftpad-backend/internal/service/contextsvc"
	"draftpad-backend/internal/service/llm"
	"draftpad-backend/internal/service/reconcile"
	"draftpad-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	stores, awsCfg, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize stores", zap.Error(err))
	}

	metrics := observability.NewCollector("draftpad")

	registry := llm.NewRegistry(cfg.Models, cache.New())
	invoker := llm.NewInvoker(registry, nil, logger)
	assembler := contextsvc.NewAssembler(stores.docs, nil, nil, cache.New(), logger)
	reconciler := reconcile.NewReconciler(stores.docs, buildMediaAttacher(cfg, awsCfg, logger), logger)
	billingSvc := billing.NewService(stores.ledger, registry.Cost, logger)

	var extractor *automation.Extractor
	if cfg.Features.EnableAutomations {
		extractor = automation.NewExtractor(stores.automations, nil, automation.Config{
			CallbackOrigin:       cfg.CallbackOrigin,
			DefaultTimezone:      cfg.DefaultTimezone,
			ConfirmWindowSeconds: cfg.ConfirmWindowSeconds,
		}, logger)
	}

	pipeline := chat.NewPipeline(cfg, stores.docs, assembler, invoker, reconciler, billingSvc, extractor, stores.turns, metrics, logger)

	router := rest.NewRouter(pipeline, metrics, logger)
	handler := router.Setup()

	srv := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Streaming responses outlive the usual write window; the pipeline
		// deadline bounds them instead.
		WriteTimeout: cfg.Timeouts.Pipeline + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("address", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	log.Println("Server stopped")
}

type stores struct {
	docs        repository.DocumentRepository
	ledger      repository.LedgerStore
	automations repository.AutomationStore
	turns       repository.TurnRecorder
}

// buildStores wires the persistence layer: DynamoDB by default, in-memory
// when USE_MEMORY_STORES=true (local development, no AWS account needed).
// The returned aws.Config is nil in memory mode.
func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (stores, *aws.Config, error) {
	if os.Getenv("USE_MEMORY_STORES") == "true" {
		logger.Info("Using in-memory stores")
		return stores{
			docs:        memory.NewDocumentStore(),
			ledger:      memory.NewLedgerStore(),
			automations: memory.NewAutomationStore(),
			turns:       memory.NewTurnLog(),
		}, nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return stores{}, nil, err
	}
	client := dynamodb.NewFromConfig(awsCfg)

	logger.Info("Using DynamoDB stores",
		zap.String("region", cfg.Region),
		zap.String("document_table", cfg.DocumentTable))

	return stores{
		docs:        ddb.NewDocumentStore(client, cfg.DocumentTable, cfg.OwnerIndex),
		ledger:      ddb.NewLedgerStore(client, cfg.LedgerTable),
		automations: ddb.NewAutomationStore(client, cfg.AutomationTable),
		turns:       ddb.NewTurnLog(client, cfg.TurnTable),
	}, &awsCfg, nil
}

// buildMediaAttacher wires cover-image generation when the feature flag is
// on and the runtime has everything it needs; otherwise it returns nil and
// the reconciler skips attachment.
func buildMediaAttacher(cfg config.Config, awsCfg *aws.Config, logger *zap.Logger) *reconcile.MediaAttacher {
	if !cfg.Features.EnableImageAttach {
		return nil
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	switch {
	case awsCfg == nil:
		logger.Warn("Image attachment enabled but in-memory stores have no object storage; skipping")
		return nil
	case cfg.MediaBucket == "":
		logger.Warn("Image attachment enabled but MEDIA_BUCKET is not configured; skipping")
		return nil
	case apiKey == "":
		logger.Warn("Image attachment enabled but OPENAI_API_KEY is not set; skipping")
		return nil
	}

	baseURL := cfg.MediaBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.MediaBucket, cfg.Region)
	}

	logger.Info("Image attachment enabled",
		zap.String("bucket", cfg.MediaBucket),
		zap.String("image_model", cfg.ImageModel))

	return reconcile.NewMediaAttacher(
		media.NewOpenAIImageGenerator(apiKey, cfg.ImageModel),
		media.NewS3ObjectStore(s3.NewFromConfig(*awsCfg), cfg.MediaBucket, baseURL),
		logger,
	)
}
