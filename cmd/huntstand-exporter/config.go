package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"huntstand/lib/configutil"
)

// Config is read from an optional huntstand.json5 (plus .local override);
// HUNTSTAND_* environment variables take precedence over the file.
type Config struct {
	BaseUrl   string `json:"base_url"`
	ProfileID string `json:"profile_id"`
	SessionID string `json:"sessionid"`
	CSRFToken string `json:"csrftoken"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Workers   int    `json:"parallel_workers"`
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
	overlay(&config.ProfileID, "HUNTSTAND_PROFILEID")
	overlay(&config.SessionID, "HUNTSTAND_SESSIONID")
	overlay(&config.CSRFToken, "HUNTSTAND_CSRFTOKEN")
	overlay(&config.Username, "HUNTSTAND_USER")
	overlay(&config.Password, "HUNTSTAND_PASS")
	if v := os.Getenv("HUNTSTAND_PARALLEL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Workers = n
		}
	}

	if config.BaseUrl == "" {
		config.BaseUrl = "https://app.huntstand.com"
	}
	if config.Workers == 0 {
		config.Workers = 4
	}
	return config
}

// all logging goes to stdout so callers can capture it easily
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
