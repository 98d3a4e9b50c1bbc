package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cineverse-auth/internal/config"
	"github.com/iliyamo/cineverse-auth/internal/database"
	"github.com/iliyamo/cineverse-auth/internal/handler"
	"github.com/iliyamo/cineverse-auth/internal/mailer"
	"github.com/iliyamo/cineverse-auth/internal/middleware"
	"github.com/iliyamo/cineverse-auth/internal/notify"
	"github.com/iliyamo/cineverse-auth/internal/queue"
	"github.com/iliyamo/cineverse-auth/internal/repository"
	"github.com/iliyamo/cineverse-auth/internal/router"
	"github.com/iliyamo/cineverse-auth/internal/service"
	"github.com/iliyamo/cineverse-auth/internal/worker"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBAutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.WithError(err).Fatal("schema setup failed")
		}
	}

	users := repository.NewUserRepo(db)
	otps := repository.NewOTPRepo(db)
	tokens := repository.NewTokenRepo(db)

	sender, err := mailer.NewSender(config.LoadMailConfig(), log)
	if err != nil {
		log.WithError(err).Fatal("mail setup failed")
	}
	direct := notify.NewMailDispatcher(sender, cfg.OTPTTL)

	var notifier service.Notifier = direct
	if qcfg := config.LoadQueueConfig(); qcfg.Enabled {
		notifier = notify.NewQueueDispatcher(queue.NewPublisher(qcfg.URL, qcfg.QueueName, log), cfg.OTPTTL)
		consumer := queue.NewConsumer(qcfg.URL, qcfg.QueueName, direct.Deliver, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("otp consumer stopped")
			}
		}()
	}

	sessions := service.NewSessionService(service.SessionDeps{
		Users:      users,
		OTPs:       otps,
		Refresh:    tokens,
		Notifier:   notifier,
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		OTPTTL:     cfg.OTPTTL,
		BcryptCost: cfg.BcryptCost,
		Clock:      service.SystemClock,
		Log:        log,
	})
	accounts := service.NewAccountService(users, cfg.BcryptCost, service.SystemClock, log)

	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb, log)

	health := &handler.HealthHandler{DB: db}
	if rdb != nil {
		defer rdb.Close()
		health.Redis = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	janitor := worker.NewJanitor(otps, tokens, cfg.CleanupInterval, cfg.CleanupRetention, log)
	go janitor.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	authH := handler.NewAuthHandler(sessions, cfg.RequestTimeout)
	accountH := handler.NewAccountHandler(accounts, cfg.RequestTimeout)
	router.RegisterRoutes(e, health)
	router.RegisterAuth(e, authH, accountH, limiter)
	router.RegisterAccount(e, authH, accountH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
