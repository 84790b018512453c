package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/adearn/adearn-api/internal/config"
	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/adsession"
	"github.com/adearn/adearn-api/internal/domain/auth"
	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/dashboard"
	"github.com/adearn/adearn-api/internal/domain/insight"
	"github.com/adearn/adearn-api/internal/domain/profile"
	"github.com/adearn/adearn-api/internal/domain/review"
	"github.com/adearn/adearn-api/internal/pkg/database"
	"github.com/adearn/adearn-api/internal/pkg/events"
	"github.com/adearn/adearn-api/internal/pkg/imaging"
	"github.com/adearn/adearn-api/internal/pkg/jwt"
	"github.com/adearn/adearn-api/internal/pkg/logger"
	"github.com/adearn/adearn-api/internal/pkg/scheduler"
	"github.com/adearn/adearn-api/internal/pkg/storage"
	"github.com/adearn/adearn-api/internal/pkg/validator"
)

func main() {
	cfg := config.Load()
	logFile, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.LogFile).Msg("Failed to open log file")
	}
	defer logFile.Close()

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Msg("Starting AdEarn API")

	ctx := context.Background()

	cat := catalogue.Default()
	if cfg.CataloguePath != "" {
		cat, err = catalogue.Load(cfg.CataloguePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CataloguePath).Msg("Failed to load catalogue")
		}
	}
	validator.RegisterPaymentMethods(cat.HasPaymentMethod)

	// ---------- Snapshot store ----------
	var (
		db          *sqlx.DB
		redisClient *redis.Client
		repo        account.Repository
	)
	switch cfg.StoreDriver {
	case config.StoreRedis:
		redisClient, err = database.NewRedis(ctx, cfg.RedisURL)
		if err != nil || redisClient == nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		repo = account.NewRedisRepository(redisClient)
	case config.StorePostgres:
		db, err = database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		pg := account.NewPostgresRepository(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate snapshot table")
		}
		repo = pg
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory store, accounts are lost on restart")
		repo = account.NewMemoryRepository()
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("Unknown STORE_DRIVER")
	}
	defer database.ClosePostgres(db)

	// Redis is optional for the insight cache when it is not the store.
	if redisClient == nil && cfg.RedisURL != "" && cfg.StoreDriver != config.StoreMemory {
		redisClient, err = database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, insight cache disabled")
			redisClient = nil
		}
	}
	defer database.CloseRedis(redisClient)

	publisher := events.Connect(cfg.AMQPURL)
	defer publisher.Close()

	// ---------- Services ----------
	accounts := account.NewService(repo, cat,
		account.WithPublisher(publisher),
		account.WithLocation(cfg.Location()),
	)

	var sessionOpts []adsession.Option
	if cfg.AdServerTick {
		sessionOpts = append(sessionOpts, adsession.WithServerTick(time.Second))
	}
	sessions := adsession.NewManager(accounts, cat, sessionOpts...)
	defer sessions.Close()

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	var insightCache insight.Cache
	if redisClient != nil {
		insightCache = insight.NewRedisCache(redisClient)
	}
	insightService := insight.NewService(
		insight.NewClient(cfg.InsightURL, cfg.InsightAPIKey, cfg.InsightTimeout),
		insightCache,
		cfg.InsightCacheTTL,
		cfg.InsightPlaceholder,
	)

	avatarStore, localStore := openAvatarStorage(ctx, cfg)
	profileService := profile.NewService(accounts, avatarStore, imaging.NewProcessor(imaging.DefaultConfig()))

	authService := auth.NewService(accounts, sessions, jwtService, auth.DemoProfile{
		Balance:        cfg.DemoBalance,
		TotalEarned:    cfg.DemoTotalEarned,
		PackageID:      cfg.DemoPackageID,
		AdsViewedToday: cfg.DemoAdsViewedToday,
	})

	// ---------- Scheduled jobs ----------
	jobs := scheduler.New(cfg.Location())
	if err := jobs.Add(scheduler.Job{
		Name:     "quota-reset",
		Schedule: cfg.QuotaResetSchedule,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			n, err := accounts.ResetDailyQuotas(ctx)
			if err == nil {
				log.Info().Int("accounts", n).Msg("daily quotas reset")
			}
			return err
		},
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule quota reset")
	}
	jobs.Start()

	// ---------- Router ----------
	r := newRouter(cfg, handlers{
		auth:      auth.NewHandler(authService),
		catalogue: catalogue.NewHandler(cat),
		account:   account.NewHandler(accounts),
		session:   adsession.NewHandler(sessions, accounts, cfg.AllowedOrigins),
		dashboard: dashboard.NewHandler(dashboard.NewService(accounts, insightService)),
		profile:   profile.NewHandler(profileService, accounts),
		insight:   insight.NewHandler(insightService, accounts),
		review:    review.NewHandler(accounts),
		uploads:   localStore,
	}, jwtService)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	<-jobs.Stop().Done()
	// closes live websocket streams so Shutdown does not wait on them
	sessions.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// openAvatarStorage prefers S3 and falls back to a local directory. Both
// results are nil when neither is configured.
func openAvatarStorage(ctx context.Context, cfg *config.Config) (storage.Storage, *storage.LocalStorage) {
	if cfg.S3Enabled() {
		s3, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Avatar uploads stored in S3")
		return s3, nil
	}

	if cfg.UploadDir != "" {
		local, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadBaseURL)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to create upload directory")
		}
		log.Info().Str("dir", local.Dir()).Msg("Avatar uploads stored locally")
		return local, local
	}

	log.Warn().Msg("No avatar storage configured, uploads disabled")
	return nil, nil
}

// uploadsPath is the URL path local uploads are served under.
func uploadsPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" {
		return "/uploads"
	}
	return u.Path
}
