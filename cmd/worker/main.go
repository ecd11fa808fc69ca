package main

import (
	"os"
	"os/signal"
	"syscall"

	"mini_painel_worker/internal/app"
	"mini_painel_worker/internal/domain/alert"
	"mini_painel_worker/internal/domain/settings"
	"mini_painel_worker/internal/infra/config"
	idb "mini_painel_worker/internal/infra/database"
	"mini_painel_worker/internal/infra/logger"
	"mini_painel_worker/internal/infra/scheduler"
	"mini_painel_worker/internal/infra/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	log := logger.New(cfg)
	log.Infof("Starting Automation Worker... Environment: %s, LogLevel: %s", cfg.Environment, cfg.LogLevel)

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	settingsClient := settings.NewClient(idb.NewPostgresSettingsRepository(db), log)
	contactRepo := idb.NewPostgresContactRepository(db)

	execLog := app.NewExecutionLog(settingsClient, log)
	delivery := app.NewWebhookDelivery(settingsClient, execLog, log,
		cfg.DefaultWebhookURL, cfg.WebhookMaxRetries, cfg.WebhookTimeout)
	statsService := app.NewStatsService(contactRepo, log)

	var notifier alert.Notifier
	if cfg.AlertsEnabled() {
		n, err := telegram.NewAdminNotifier(cfg.TelegramToken, cfg.AdminChatID)
		if err != nil {
			// Alerts are best-effort: a broken token degrades to log-only.
			log.WithError(err).Warn("Admin alerts disabled: could not create Telegram notifier")
		} else {
			notifier = n
			log.Info("Admin failure alerts enabled.")
		}
	}

	automation := app.NewAutomationService(settingsClient, statsService, delivery,
		notifier, log, cfg.RetryFailedReports)

	reportScheduler := scheduler.NewReportScheduler(automation, log)
	reportScheduler.Start()

	log.Info("Application setup complete. Worker is running.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker...")
	reportScheduler.Stop()
	log.Info("Worker shut down gracefully.")
}
