package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortlink/internal/config"
)

const ServiceName = "url-shortener"

// NewLogger builds the request logger. Its embedded *slog.Logger is shared
// with the rest of the application.
func NewLogger(cfg *config.Config) *httplog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}

	return httplog.NewLogger(ServiceName, httplog.Options{
		JSON:             cfg.Env == config.EnvProd,
		LogLevel:         level,
		Concise:          cfg.Log.Concise,
		RequestHeaders:   cfg.Env != config.EnvProd,
		MessageFieldName: "message",
		TimeFieldFormat:  time.RFC3339,
		Tags: map[string]string{
			"env": cfg.Env,
		},
		QuietDownRoutes: []string{"/health"},
		QuietDownPeriod: 10 * time.Second,
	})
}
