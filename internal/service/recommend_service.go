package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/roomplants/internal/chat"
	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/logging"
	"github.com/vbonduro/roomplants/internal/metrics"
	"github.com/vbonduro/roomplants/internal/prefs"
	"github.com/vbonduro/roomplants/internal/upload"
	"github.com/vbonduro/roomplants/internal/vision"
)

// catalogRepository is the subset of store.PlantStore that RecommendationService requires.
type catalogRepository interface {
	Random(ctx context.Context, env domain.Environment, n int) ([]domain.PlantSuggestion, error)
}

type clock interface {
	Month() string
	Hour() string
}

var ErrCatalogUnavailable = errors.New("plant catalog is not configured")

type RecommendationService struct {
	uploader    upload.Uploader
	analyzer    vision.Analyzer
	catalog     catalogRepository
	prefs       prefs.Store
	clock       clock
	defaultCity string
	timeout     time.Duration
	logger      *slog.Logger
}

type Options struct {
	Uploader    upload.Uploader
	Analyzer    vision.Analyzer
	Catalog     catalogRepository
	Prefs       prefs.Store
	Clock       clock
	DefaultCity string
	// Timeout bounds each outbound stage separately. Zero leaves the
	// caller's context as the only bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewRecommendationService(opts Options) *RecommendationService {
	if opts.Prefs == nil {
		opts.Prefs = prefs.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &RecommendationService{
		uploader:    opts.Uploader,
		analyzer:    opts.Analyzer,
		catalog:     opts.Catalog,
		prefs:       opts.Prefs,
		clock:       opts.Clock,
		defaultCity: opts.DefaultCity,
		timeout:     opts.Timeout,
		logger:      opts.Logger,
	}
}

// HandleIncomingPhoto uploads the photo at localPath, asks the analyzer for
// plants that suit c and normalizes the reply. Upload and analyzer failures
// are returned as errors carrying upload.Error or vision.ClientError; reply
// problems are reported through the result. Nothing is retried.
func (s *RecommendationService) HandleIncomingPhoto(ctx context.Context, localPath string, c domain.Context) (domain.RecommendationResult, error) {
	start := time.Now()
	s.logger.Info("recommendation started", "path", localPath, "city", c.City, "environment", c.Environment)

	locator, err := s.upload(ctx, localPath)
	if err != nil {
		metrics.UploadFailures.WithLabelValues(string(upload.KindOf(err))).Inc()
		metrics.Recommendations.WithLabelValues("upload_failed").Inc()
		s.logger.Error("upload failed", "path", localPath, "error", err)
		return domain.RecommendationResult{}, fmt.Errorf("failed to upload photo: %w", err)
	}
	s.logger.Info("photo uploaded", "locator", locator)

	req := domain.RecommendationRequest{Locator: locator, Context: c}
	raw, err := s.analyze(ctx, req)
	if err != nil {
		metrics.AnalyzeFailures.WithLabelValues(string(vision.KindOf(err))).Inc()
		metrics.Recommendations.WithLabelValues("analyze_failed").Inc()
		s.logger.Error("analysis failed", "locator", locator, "error", err)
		return domain.RecommendationResult{}, fmt.Errorf("failed to analyze photo: %w", err)
	}

	normStart := time.Now()
	result := vision.Normalize(raw)
	metrics.StageDuration.WithLabelValues("normalize").Observe(time.Since(normStart).Seconds())

	outcome := "ok"
	if !result.OK() {
		outcome = string(result.Error)
		s.logger.Warn("reply carried no usable plants", "error_kind", result.Error, "raw", logging.Snippet([]byte(raw)))
	}
	metrics.Recommendations.WithLabelValues(outcome).Inc()
	s.logger.Info("recommendation complete", "outcome", outcome, "plants", len(result.Plants), "duration", time.Since(start))
	return result, nil
}

func (s *RecommendationService) upload(ctx context.Context, localPath string) (string, error) {
	ctx, cancel := s.stageContext(ctx)
	defer cancel()
	defer observe("upload", time.Now())

	locator, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return "", err
	}
	if locator == "" {
		return "", &upload.Error{Kind: upload.KindMalformedResponse}
	}
	return locator, nil
}

func (s *RecommendationService) analyze(ctx context.Context, req domain.RecommendationRequest) (string, error) {
	ctx, cancel := s.stageContext(ctx)
	defer cancel()
	defer observe("analyze", time.Now())

	return s.analyzer.Analyze(ctx, req.Locator, req.Context)
}

func (s *RecommendationService) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func observe(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ContextFor assembles the recommendation context for a chat from its saved
// preferences and the current local time.
func (s *RecommendationService) ContextFor(ctx context.Context, chatID string) (domain.Context, error) {
	p, err := s.prefs.Get(ctx, chatID)
	if err != nil {
		return domain.Context{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	c := domain.Context{
		City:        p.City,
		Environment: domain.ParseEnvironment(string(p.Environment)),
	}
	if c.City == "" {
		c.City = s.defaultCity
	}
	if s.clock != nil {
		c.Month = s.clock.Month()
		c.Hour = s.clock.Hour()
	}
	return c, nil
}

// SetCity stores the chat's city. name may be English or Persian; the
// English name is stored. Unknown cities return chat.ErrCityNotFound.
func (s *RecommendationService) SetCity(ctx context.Context, chatID, name string) (chat.City, error) {
	city, err := chat.LookupCity(name)
	if err != nil {
		return chat.City{}, err
	}
	if err := s.prefs.SetCity(ctx, chatID, city.English); err != nil {
		return chat.City{}, fmt.Errorf("failed to save city: %w", err)
	}
	s.logger.Info("city selected", "chat_id", chatID, "city", city.English)
	return city, nil
}

func (s *RecommendationService) SetEnvironment(ctx context.Context, chatID string, env domain.Environment) error {
	if err := s.prefs.SetEnvironment(ctx, chatID, env); err != nil {
		return fmt.Errorf("failed to save environment: %w", err)
	}
	s.logger.Info("environment selected", "chat_id", chatID, "environment", env)
	return nil
}

// SuggestFromCatalog returns up to n random plants from the local catalog
// without calling any remote service.
func (s *RecommendationService) SuggestFromCatalog(ctx context.Context, env domain.Environment, n int) (domain.RecommendationResult, error) {
	if s.catalog == nil {
		return domain.RecommendationResult{}, ErrCatalogUnavailable
	}
	plants, err := s.catalog.Random(ctx, env, n)
	if err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("failed to pick plants: %w", err)
	}
	return domain.Success(plants), nil
}
