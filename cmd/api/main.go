package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"artcreator/internal/adapter/repo"
	"artcreator/internal/generation"
	"artcreator/internal/http/handlers"
	"artcreator/internal/http/httpapi"
	"artcreator/internal/infra"
	"artcreator/internal/infra/credentials"
	"artcreator/internal/infra/geoip"
	"artcreator/internal/providers/gemini"
	"artcreator/internal/providers/image"
	"artcreator/internal/providers/prompt"
	"artcreator/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	profiles := repo.NewProfileRepository(runner, cfg.DefaultDailyCredits)
	gallery := repo.NewGalleryRepository(runner)
	usage := repo.NewUsageRepository(runner)

	keys := credentials.NewKeySource(credentials.NewStore(runner), cfg.GeminiAPIKey, 5*time.Minute)
	aiEnabled := cfg.AIEnabled()
	if !aiEnabled {
		lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		stored, err := keys.GeminiKey(lookupCtx)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load gemini api key from store")
		}
		aiEnabled = strings.TrimSpace(stored) != ""
	}

	analyzer, enhancer := promptProviders(cfg, keys, aiEnabled, logger)

	images := image.NewPollinationsGenerator(image.PollinationsOptions{
		BaseURL:       cfg.ImageBaseURL,
		Model:         cfg.ImageModel,
		Prefetch:      cfg.ImagePrefetch,
		PrefetchLimit: cfg.ImagePrefetchLimit,
		HTTPClient:    &http.Client{Timeout: cfg.ImageFetchTimeout},
	})

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}
	fetcher := image.NewFetcher(&http.Client{Timeout: cfg.ImageFetchTimeout}, fileStore, logger)

	orchestrator, err := generation.NewOrchestrator(generation.Dependencies{
		Profiles:         profiles,
		Gallery:          gallery,
		Usage:            usage,
		Analyzer:         analyzer,
		Enhancer:         enhancer,
		Images:           images,
		AIEnabled:        aiEnabled,
		ImagesPerRequest: cfg.ImagesPerRequest,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure generation pipeline")
	}
	tracker := generation.NewTracker(orchestrator, generation.TrackerOptions{
		Timeout: cfg.GenerationTimeout,
		TTL:     cfg.GenerationTTL,
		Logger:  logger,
	})

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := &handlers.App{
		Logger:      logger,
		AIEnabled:   aiEnabled,
		Profiles:    profiles,
		Gallery:     gallery,
		Usage:       usage,
		Analyzer:    analyzer,
		Enhancer:    enhancer,
		Precheck:    orchestrator,
		Generations: tracker,
		Fetcher:     fetcher,
		Ping:        dbpool.Ping,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		JWTSecret:       cfg.AuthJWTSecret,
		JWTAudience:     cfg.AuthJWTAudience,
		JWTIssuer:       cfg.AuthJWTIssuer,
		CORSOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   resolver.Lookup(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Bool("ai_enabled", aiEnabled).Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := tracker.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("generations still running at shutdown")
	}
	logger.Info().Msg("server stopped")
}

// promptProviders returns the Gemini analyzer and enhancer when a key is
// available and the static pair otherwise.
func promptProviders(cfg *infra.Config, keys *credentials.KeySource, aiEnabled bool, logger zerolog.Logger) (prompt.Analyzer, prompt.Enhancer) {
	if !aiEnabled {
		logger.Warn().Msg("gemini api key missing, prompt analysis and enhancement disabled")
		return prompt.NewStaticAnalyzer(), prompt.NewStaticEnhancer()
	}
	client := gemini.NewClient(gemini.Options{
		Key:        keys.GeminiKey,
		Model:      cfg.GeminiModel,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.GeminiTimeout},
	})
	onFallback := func(reason string, err error) {
		logger.Warn().Err(err).Str("reason", reason).Str("model", client.Model()).Msg("gemini unavailable, using static prompt provider")
	}
	analyzer, err := prompt.NewGeminiAnalyzer(prompt.GeminiOptions{Client: client, OnFallback: onFallback})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure prompt analyzer")
	}
	enhancer, err := prompt.NewGeminiEnhancer(prompt.GeminiOptions{Client: client, OnFallback: onFallback})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure prompt enhancer")
	}
	return analyzer, enhancer
}
