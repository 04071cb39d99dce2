package app

import (
	"context"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"service-planner/internal/config"
	transport "service-planner/internal/http"
	"service-planner/internal/http/handlers"
	"service-planner/internal/repository"
	"service-planner/internal/service"
)

type App struct {
	handler http.Handler
	auth    *service.AuthService
	cron    *cron.Cron
	logger  *log.Logger
}

func New(db *sqlx.DB, cfg config.Config, logger *log.Logger) (*App, error) {
	txManager := repository.NewPostgresTxManager(db)

	smsSender := service.NewLogSMSSender(logger)
	genaiClient := service.NewGenAIHTTPClient(cfg.GenAIBaseURL, cfg.GenAIAPIKey, cfg.GenAIModel, service.DefaultGenAIHTTPClient())

	authService := service.NewAuthService(txManager, smsSender, cfg.JWTSecret)
	eventService := service.NewEventService(txManager)
	aiService := service.NewAIService(txManager, genaiClient)

	authMiddleware := handlers.NewAuthMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService)
	aiHandler := handlers.NewAIHandler(aiService)

	router := transport.NewRouter(authMiddleware, authHandler, eventHandler, aiHandler)

	a := &App{
		handler: router.Handler(),
		auth:    authService,
		cron:    cron.New(),
		logger:  logger,
	}

	if _, err := a.cron.AddFunc(cfg.OTPPurgeCron, a.purgeExpiredOTPs); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// StartJobs launches the background cron schedule (currently just the
// OTP purge).
func (a *App) StartJobs() {
	a.cron.Start()
}

// StopJobs stops the scheduler and waits for running jobs to finish.
func (a *App) StopJobs() {
	<-a.cron.Stop().Done()
}

func (a *App) purgeExpiredOTPs() {
	purged, err := a.auth.PurgeExpiredOTPs(context.Background())
	if err != nil {
		a.logger.Printf("otp purge error: %v", err)
		return
	}
	if purged > 0 {
		a.logger.Printf("purged %d expired otp codes", purged)
	}
}
