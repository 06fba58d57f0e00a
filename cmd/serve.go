package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"consultabot/config"
	"consultabot/internal/bot"
	"consultabot/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("telegram.token not configured (CONSULTA_TELEGRAM_TOKEN)")
			}
			return runServe(cfg)
		},
	}
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config directory (default is .)")
	return serve
}

func runServe(cfg *config.Config) error {
	logger := log.New(log.Writer(), "[SERVE] ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	prober := buildProber(cfg, svc.Registry, nil)
	if cfg.Health.Enabled {
		prober.Start()
		defer prober.Stop()
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram connect: %w", err)
	}
	api.Debug = cfg.General.Debug

	b := bot.New(api, svc, prober, bot.Options{
		SessionTTL:  cfg.Telegram.SessionTTL,
		InlineLimit: cfg.Telegram.InlineLimit,
		Timeout:     cfg.Fetch.Timeout * time.Duration(cfg.Fetch.Retries+2),
	}, nil)

	srv := server.New(svc, prober)
	srv.APIToken = cfg.Server.APIToken

	var updates <-chan tgbotapi.Update
	switch cfg.Telegram.Mode {
	case "webhook":
		ch := make(chan tgbotapi.Update, 128)
		srv.Updates = ch
		srv.WebhookToken = cfg.Telegram.Token
		updates = ch
		wh, err := tgbotapi.NewWebhook(cfg.Telegram.WebhookURL + "/webhook/" + cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("webhook config: %w", err)
		}
		if _, err := api.Request(wh); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
	default:
		// polling; a leftover webhook blocks getUpdates
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			logger.Printf("delete webhook: %v", err)
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updates = api.GetUpdatesChan(u)
	}

	e := srv.Echo()
	go func() {
		if err := e.Start(cfg.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("http server: %v", err)
			stop()
		}
	}()

	logger.Printf("bot @%s ready (%s mode, listening on %s)", api.Self.UserName, cfg.Telegram.Mode, cfg.Server.Listen)
	go b.Run(ctx, updates)

	<-ctx.Done()
	logger.Printf("shutting down")
	api.StopReceivingUpdates()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
