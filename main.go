package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trend-finder/domain/repository"
	"trend-finder/infrastructure/cache"
	youtubeclient "trend-finder/infrastructure/clients/youtube"
	"trend-finder/infrastructure/configuration"
	"trend-finder/infrastructure/logger"
	"trend-finder/infrastructure/persistence"
	"trend-finder/infrastructure/pubsub"
	"trend-finder/infrastructure/servicebus"
	httpHandler "trend-finder/interfaces/http"
	"trend-finder/server"
	"trend-finder/usecase"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.Reload()
	app := configuration.C.App

	youtubeConfig, err := configuration.GetYouTubeConfig()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("YouTube credential missing; set YOUTUBE_API_KEY")
		os.Exit(1)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"hasAPIKey":  youtubeConfig.APIKey != "",
		"hasOAuth":   youtubeConfig.HasOAuth(),
		"baseURLSet": youtubeConfig.BaseURL != "",
		"rateLimit":  youtubeConfig.RateLimit,
	}).Info("Loaded YouTube configuration state")

	youtubeClient, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:         youtubeConfig.APIKey,
		BaseURL:        youtubeConfig.BaseURL,
		ClientID:       youtubeConfig.ClientID,
		ClientSecret:   youtubeConfig.ClientSecret,
		RedirectURL:    youtubeConfig.RedirectURL,
		AccessToken:    youtubeConfig.AccessToken,
		RefreshToken:   youtubeConfig.RefreshToken,
		RequestTimeout: youtubeConfig.RequestTimeout,
		RateLimit:      youtubeConfig.RateLimit,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to initialize YouTube client")
		os.Exit(1)
	}

	redisClient := InitiateCache(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}
	youtubeRepo := persistence.NewYouTubeRepository(youtubeClient, cache.NewYouTubeCache(redisClient), youtubeConfig.CacheTTL)

	historyRepo, historyDb := InitiateHistory()
	if historyDb != nil {
		defer historyDb.Close()
	}
	presetRepo := InitiatePresets()

	researchPubSub, researchServiceBus := InitiatePublishers(ctx)
	defer researchPubSub.Close()
	defer func() { _ = researchServiceBus.Close(context.Background()) }()

	researchUsecase := usecase.NewResearchUsecase(youtubeRepo, configuration.C.Research.Workers).
		WithHistory(historyRepo).
		WithPublishers(researchPubSub, researchServiceBus)
	presetUsecase := usecase.NewPresetUsecase(presetRepo)
	historyUsecase := usecase.NewHistoryUsecase(historyRepo)

	router, err := server.InitiateRouter(
		httpHandler.NewResearchHandler(researchUsecase, presetUsecase, configuration.ResearchDefaults, configuration.ResearchTimeout()),
		httpHandler.NewPresetHandler(presetUsecase),
		httpHandler.NewHistoryHandler(historyUsecase),
		httpHandler.NewHealthHandler(version),
		app.SecretKey,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to initialize router")
		os.Exit(1)
	}

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateCache connects to redis. The research still works without it, only slower on quota.
func InitiateCache(ctx context.Context) *redis.Client {
	rc := configuration.C.RedisClient
	if rc.Host == "" {
		logger.GetLogger().Info("Redis not configured; statistics are fetched on every request")
		return nil
	}
	client, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", rc.Host, rc.Port), rc.Username, rc.Password, rc.DatabaseName)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without statistics cache")
		return nil
	}
	logger.GetLogger().Info("Redis client initialized successfully.")
	return client
}

// InitiateHistory opens the research history store: MSSQL in production or with DB_VENDOR=mssql,
// otherwise PostgreSQL. A nil repository disables history.
func InitiateHistory() (repository.IResearchHistory, *sql.DB) {
	env := os.Getenv("ENV")
	if os.Getenv("DB_VENDOR") == "mssql" || env == "production" || env == "prod" {
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("MSSQL not available - research history disabled")
			return nil, nil
		}
		if err := persistence.EnsureResearchHistorySchemaMSSQL(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring research history schema (mssql)")
		}
		return persistence.NewResearchHistoryRepositoryMSSQL(db), db
	}

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PostgreSQL not available - research history disabled")
		return nil, nil
	}
	if err := persistence.EnsureResearchHistorySchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring research history schema")
	}
	return persistence.NewResearchHistoryRepository(db), db
}

// InitiatePresets opens the MySQL preset store. A nil repository disables preset changes.
func InitiatePresets() repository.IPreset {
	db, err := persistence.NewRepositories()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MySQL not available - presets disabled")
		return nil
	}
	presetRepo := persistence.NewPresetRepository(db)
	if err := presetRepo.Migrate(); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed migrating presets table")
		return nil
	}
	return presetRepo
}

// InitiatePublishers connects the event brokers. Unconfigured brokers give no-op publishers.
func InitiatePublishers(ctx context.Context) (*pubsub.ResearchPubSub, *servicebus.ResearchServiceBus) {
	var researchPubSub *pubsub.ResearchPubSub
	if pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID); err != nil {
		logger.GetLogger().WithField("error", err).Info("PubSub not available - continuing without PubSub events")
	} else {
		researchPubSub = pubsub.NewResearchPubSub(pubSubClient, configuration.C.Pubsub.TopicID)
	}

	researchServiceBus, _ := servicebus.NewResearchServiceBus(nil, configuration.C.ServiceBus.Queue)
	if azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace); err != nil {
		logger.GetLogger().WithField("error", err).Info("Azure Service Bus not available - continuing without Service Bus events")
	} else if sb, err := servicebus.NewResearchServiceBus(azServiceBusClient, configuration.C.ServiceBus.Queue); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus sender failed - continuing without Service Bus events")
	} else {
		researchServiceBus = sb
	}
	return researchPubSub, researchServiceBus
}
