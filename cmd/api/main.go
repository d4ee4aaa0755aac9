package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"svcdir/internal/config"
	"svcdir/internal/db"
	apihttp "svcdir/internal/http"
	"svcdir/internal/logging"
	"svcdir/internal/media"
	"svcdir/internal/notify"
	"svcdir/internal/repository"
	"svcdir/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	identityRepo := repository.NewPgIdentityRepository(pool)

	var tokenStore service.TokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory token store", zap.Error(err))
		} else {
			tokenStore = service.NewRedisTokenStore(redisClient)
		}
		cancel()
	}
	tokens := service.NewTokenService(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute, tokenStore)

	smsSender := newSMSSender(cfg, logger)
	mailSender := newMailSender(cfg, logger)

	resolver, uploader := newMedia(ctx, cfg, logger)

	credentials := service.NewCredentialService(logger, identityRepo, smsSender, mailSender, cfg.PhoneRegion)
	authSvc := service.NewAuthService(logger, identityRepo, tokens, resolver)
	directorySvc := service.NewDirectoryService(logger, identityRepo, resolver)
	adminSvc := service.NewAdminService(logger, identityRepo, identityRepo, credentials, tokens, uploader, cfg.PhoneRegion)

	if err := apihttp.RegisterValidators(cfg.PhoneRegion); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}
	router := apihttp.NewRouter(
		logger,
		pool,
		authSvc,
		apihttp.NewAuthHandler(logger, authSvc),
		apihttp.NewUserHandler(logger, directorySvc),
		apihttp.NewAdminHandler(logger, adminSvc),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newSMSSender(cfg *config.Config, logger *zap.Logger) notify.Sender {
	if !cfg.SMSEnabled() {
		return notify.NewDisabledSender("sms gateway not configured")
	}
	sender, err := notify.NewSMSSender(cfg.SMSAPIURL, cfg.SMSAPIToken, cfg.SMSSenderID, cfg.SMSRouting, logger)
	if err != nil {
		logger.Warn("sms sender init failed", zap.Error(err))
		return notify.NewDisabledSender("sms gateway misconfigured")
	}
	return sender
}

func newMailSender(cfg *config.Config, logger *zap.Logger) notify.Sender {
	if cfg.SMTPHost == "" {
		return nil
	}
	sender, err := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
	if err != nil {
		logger.Warn("smtp sender init failed", zap.Error(err))
		return nil
	}
	return sender
}

// newMedia prefiere S3 cuando hay bucket; si no, resuelve contra la URL publica
// y deja las subidas deshabilitadas.
func newMedia(ctx context.Context, cfg *config.Config, logger *zap.Logger) (media.Resolver, media.Uploader) {
	if cfg.S3Enabled() {
		s3Resolver, err := media.NewS3Resolver(ctx, media.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			URLTTL:    time.Duration(cfg.S3URLTTLMinutes) * time.Minute,
		})
		if err == nil {
			return s3Resolver, s3Resolver
		}
		logger.Warn("s3 media init failed", zap.Error(err))
	}
	resolver, err := media.NewBaseURLResolver(cfg.PublicBaseURL, cfg.MediaPath)
	if err != nil {
		logger.Warn("media resolver disabled", zap.Error(err))
		return nil, nil
	}
	return resolver, nil
}
