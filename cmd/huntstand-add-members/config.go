package main

import (
	"log/slog"
	"os"
	"strings"

	"huntstand/lib/configutil"
)

type Config struct {
	BaseUrl   string `json:"base_url"`
	SessionID string `json:"sessionid"`
	CSRFToken string `json:"csrftoken"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func loadConfig() Config {
	config, err := configutil.ReadConfig[Config]("huntstand.json5")
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read huntstand.json5", "err", err)
	}

	overlay := func(target *string, key string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	overlay(&config.BaseUrl, "HUNTSTAND_BASE_URL")
	overlay(&config.SessionID, "HUNTSTAND_SESSIONID")
	overlay(&config.CSRFToken, "HUNTSTAND_CSRFTOKEN")
	overlay(&config.Username, "HUNTSTAND_USER")
	overlay(&config.Password, "HUNTSTAND_PASS")

	if config.BaseUrl == "" {
		config.BaseUrl = "https://app.huntstand.com"
	}
	return config
}

func setupLogging(jsonLogs bool) {
	level := slog.LevelInfo
	switch strings.ToUpper(os.Getenv("HUNTSTAND_LOG_LEVEL")) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARNING", "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if jsonLogs || strings.EqualFold(os.Getenv("HUNTSTAND_LOG_FORMAT"), "json") {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, opts)))
	}
}
