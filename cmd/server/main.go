package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tagpress/internal/config"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/handler"
	"github.com/tagpress/internal/logging"
	"github.com/tagpress/internal/mail"
	"github.com/tagpress/internal/router"
	"github.com/tagpress/internal/service"
)

func main() {
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)
	logging.Setup(cfg.LogLevel, cfg.GinMode == gin.DebugMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to initialize database")
	}

	if user, err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure super root user")
	} else if user != nil {
		log.Info().Str("username", user.Username).Msg("super root user ready")
	}

	share := service.NewShareService(newMailSender(cfg), cfg.MailFrom)
	api := handler.NewAPI(db.DB, share, handler.Options{
		SiteName:     cfg.SiteName,
		SiteBaseURL:  cfg.SiteBaseURL,
		PostsPerPage: cfg.PostsPerPage,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, cfg.SessionSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// newMailSender 配置了 SMTP 时走真实投递，否则只写日志。
func newMailSender(cfg config.AppConfig) mail.Sender {
	if !cfg.MailConfigured() {
		log.Warn().Msg("SMTP_HOST not set, share emails are logged instead of delivered")
		return mail.LogSender{}
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
}
