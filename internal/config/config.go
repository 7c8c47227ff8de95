package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	GinMode           string
	LogLevel          string
	SiteName          string
	SiteBaseURL       string
	PostsPerPage      int
	MailFrom          string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SuperRootUserName string
	SuperRootPassword string
}

// MailConfigured reports whether outbound mail should go through SMTP.
func (c AppConfig) MailConfigured() bool {
	return c.SMTPHost != ""
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// A .env file in the working directory is applied first when present;
// variables already set in the process environment win.
func Load() AppConfig {
	_ = godotenv.Load()

	port := envOr("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      envOr("DATABASE_PATH", "tagpress.db"),
		SessionSecret:     envOr("SESSION_SECRET", "tagpress-dev-secret"),
		GinMode:           envOr("GIN_MODE", "release"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		SiteName:          envOr("SITE_NAME", "TagPress"),
		SiteBaseURL:       strings.TrimRight(strings.TrimSpace(os.Getenv("SITE_BASE_URL")), "/"),
		PostsPerPage:      envInt("POSTS_PER_PAGE", 3),
		MailFrom:          envOr("MAIL_FROM", "noreply@tagpress.local"),
		SMTPHost:          strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:          envInt("SMTP_PORT", 587),
		SMTPUsername:      strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:      strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
		SuperRootUserName: strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
