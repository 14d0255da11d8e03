package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbonduro/roomplants/internal/catalog"
	"github.com/vbonduro/roomplants/internal/config"
	"github.com/vbonduro/roomplants/internal/db"
	"github.com/vbonduro/roomplants/internal/httpclient"
	"github.com/vbonduro/roomplants/internal/localtime"
	"github.com/vbonduro/roomplants/internal/logging"
	"github.com/vbonduro/roomplants/internal/photostore/local"
	"github.com/vbonduro/roomplants/internal/prefs"
	"github.com/vbonduro/roomplants/internal/service"
	"github.com/vbonduro/roomplants/internal/store"
	"github.com/vbonduro/roomplants/internal/upload"
	metisupload "github.com/vbonduro/roomplants/internal/upload/metis"
	s3upload "github.com/vbonduro/roomplants/internal/upload/s3"
	"github.com/vbonduro/roomplants/internal/vision"
	claudevision "github.com/vbonduro/roomplants/internal/vision/claude"
	"github.com/vbonduro/roomplants/internal/vision/completion"
	geminivision "github.com/vbonduro/roomplants/internal/vision/gemini"
	metisvision "github.com/vbonduro/roomplants/internal/vision/metis"
	"github.com/vbonduro/roomplants/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		cleanup()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		stop()
		cleanup()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, err := httpclient.New(cfg.OutboundProxy)
	if err != nil {
		return err
	}

	uploader, err := newUploader(ctx, cfg, client, logger)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(ctx, cfg, client, logger)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	prefStore, closePrefs, err := newPrefsStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePrefs()

	svc, err := newService(ctx, cfg, database, uploader, analyzer, prefStore, logger)
	if err != nil {
		return err
	}

	photos, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		return fmt.Errorf("failed to initialize photo store: %w", err)
	}

	server := web.NewServer(svc, photos, logger)

	// Upload and analysis each get RequestTimeout; leave room for both plus
	// the multipart read.
	writeTimeout := 2*cfg.RequestTimeout + 30*time.Second
	return server.ListenAndServe(ctx, cfg.ListenAddr, writeTimeout)
}

// newService assembles the recommendation service. The catalog is only
// attached when CATALOG_CSV is set, so suggestions report it as unavailable
// otherwise.
func newService(ctx context.Context, cfg *config.Config, database *sql.DB, uploader upload.Uploader, analyzer vision.Analyzer, prefStore prefs.Store, logger *slog.Logger) (*service.RecommendationService, error) {
	clock, err := localtime.New(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	opts := service.Options{
		Uploader:    uploader,
		Analyzer:    analyzer,
		Prefs:       prefStore,
		Clock:       clock,
		DefaultCity: cfg.DefaultCity,
		Timeout:     cfg.RequestTimeout,
		Logger:      logger,
	}
	if cfg.CatalogCSV != "" {
		plants := store.NewPlantStore(database)
		if err := catalog.Seed(ctx, plants, cfg.CatalogCSV, logger); err != nil {
			return nil, err
		}
		opts.Catalog = plants
	}
	return service.NewRecommendationService(opts), nil
}

func newUploader(ctx context.Context, cfg *config.Config, client *http.Client, logger *slog.Logger) (upload.Uploader, error) {
	switch cfg.UploadBackend {
	case "s3":
		logger.Info("using S3 upload backend", "bucket", cfg.S3.Bucket, "region", cfg.S3.Region)
		return s3upload.NewUploader(ctx, s3upload.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PublicURL:       cfg.S3.PublicURL,
			KeyPrefix:       cfg.S3.KeyPrefix,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, client, logger)
	default:
		logger.Info("using Metis upload backend")
		return metisupload.NewUploader(cfg.MetisAPIKey, cfg.MetisStorageURL, client, logger), nil
	}
}

func newAnalyzer(ctx context.Context, cfg *config.Config, client *http.Client, logger *slog.Logger) (vision.Analyzer, error) {
	switch cfg.VisionBackend {
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel, "", client, logger), nil
	case "gemini":
		logger.Info("using Gemini vision backend", "model", cfg.GeminiModel)
		return geminivision.NewAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, "", client, logger)
	case "completion":
		logger.Info("using chat completion vision backend", "model", cfg.CompletionModel)
		return completion.NewAnalyzer(cfg.CompletionURL, cfg.CompletionAPIKey, cfg.CompletionModel, cfg.CompletionMaxTokens, client, logger), nil
	default:
		logger.Info("using Metis session vision backend")
		return metisvision.NewSessionAnalyzer(cfg.MetisAPIKey, cfg.MetisBotID, cfg.MetisSessionURL, client, logger), nil
	}
}

// newPrefsStore returns the preference store and a func that releases it.
func newPrefsStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (prefs.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory preference store")
		return prefs.NewMemoryStore(), func() {}, nil
	}
	client, err := prefs.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis preference store", "addr", cfg.RedisAddr)
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}
	return prefs.NewRedisStore(client, cfg.PrefsTTL), closeFn, nil
}
