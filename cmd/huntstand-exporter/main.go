package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"huntstand/lib/huntstand"
	"huntstand/lib/telemetry"
	"huntstand/services/exporter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var flags struct {
	cookiesFile     string
	profileID       string
	perHunt         bool
	noLoginFallback bool
	dryRun          bool
	includeAssets   bool
	assetsExtra     []string
	dynamicAssets   bool
	parallel        bool
	parallelWorkers int
	logJSON         bool
	outputDir       string
	format          string
}

var rootCmd = &cobra.Command{
	Use:          "huntstand-exporter",
	Short:        "Export HuntStand hunt area memberships, invites and requests",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.cookiesFile, "cookies-file", "", "JSON file containing sessionid/csrftoken")
	f.StringVar(&flags.profileID, "profile-id", "", "profile id for the hunt area listing fallback")
	f.BoolVar(&flags.perHunt, "per-hunt", false, "also write per-hunt CSV files")
	f.BoolVar(&flags.noLoginFallback, "no-login-fallback", false, "do not attempt login; require cookies")
	f.BoolVar(&flags.dryRun, "dry-run", false, "show planned output paths and exit without network or file writes")
	f.BoolVar(&flags.includeAssets, "include-assets", false, "also fetch stands/cameras/other assets")
	f.StringSliceVar(&flags.assetsExtra, "assets-extra", nil, "additional asset endpoint specs type:urlTemplate")
	f.BoolVar(&flags.dynamicAssets, "dynamic-assets", false, "probe asset endpoints against the first hunt area and keep only usable ones")
	f.BoolVar(&flags.parallel, "parallel", false, "fetch hunt areas in parallel")
	f.IntVar(&flags.parallelWorkers, "parallel-workers", 0, "worker count for parallel fetch (default 4)")
	f.BoolVar(&flags.logJSON, "log-json", false, "emit structured JSON logs to stdout")
	f.StringVar(&flags.outputDir, "output-dir", "exports", "base directory for outputs")
	f.StringVar(&flags.format, "format", "all", "select outputs: all, csv or json")
}

func main() {
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, huntstand.ErrNoSession) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	setupLogging(flags.logJSON)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch flags.format {
	case "all", "csv", "json":
	default:
		return fmt.Errorf("invalid --format %q (expected all, csv or json)", flags.format)
	}

	tel, err := telemetry.SetupFromEnv(ctx, "huntstand-exporter")
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("telemetry setup failed", "err", err)
	}
	defer tel.Shutdown(ctx)

	config := loadConfig()

	plan := exporter.PlanOutputs(
		flags.outputDir, time.Now(), flags.format, flags.perHunt, flags.includeAssets,
	)
	if flags.dryRun {
		slog.Info(
			"dry-run: skipping network and file generation",
			"format", flags.format,
			"planned", strings.Join(plan.Paths(), ", "),
		)
		return nil
	}

	sessionid, csrftoken := config.SessionID, config.CSRFToken
	if flags.cookiesFile != "" {
		// the cookie file outranks environment-supplied cookies
		if sid, csrf := huntstand.LoadCookiesFromFile(flags.cookiesFile); sid != "" || csrf != "" {
			if sid != "" {
				sessionid = sid
			}
			if csrf != "" {
				csrftoken = csrf
			}
		}
	}

	client, err := huntstand.EstablishSession(
		ctx,
		huntstand.ClientOptions{BaseUrl: config.BaseUrl},
		huntstand.Credentials{
			SessionID: sessionid,
			CSRFToken: csrftoken,
			Username:  config.Username,
			Password:  config.Password,
		},
		!flags.noLoginFallback,
	)
	if err != nil {
		if errors.Is(err, huntstand.ErrNoSession) {
			slog.Error("no sessionid cookie present and login fallback disabled; provide cookies via env or --cookies-file")
		}
		return err
	}

	endpoints := huntstand.DefaultAssetEndpoints()
	if env := os.Getenv("HUNTSTAND_ASSET_ENDPOINTS"); env != "" {
		endpoints = append(endpoints, huntstand.ParseAssetEndpointList(env)...)
	}
	for _, spec := range flags.assetsExtra {
		ep, ok := huntstand.ParseAssetEndpointSpec(spec)
		if !ok {
			slog.Warn("ignoring malformed assets-extra spec", "spec", spec)
			continue
		}
		endpoints = append(endpoints, ep)
		slog.Info("added extra asset endpoint", "type", ep.Type, "url", ep.URL)
	}

	profileID := flags.profileID
	if profileID == "" {
		profileID = config.ProfileID
	}
	workers := flags.parallelWorkers
	if workers == 0 {
		workers = config.Workers
	}

	result := exporter.Run(ctx, exporter.Options{
		Client:            client,
		FallbackProfileID: profileID,
		IncludeAssets:     flags.includeAssets,
		DynamicAssets:     flags.dynamicAssets,
		AssetEndpoints:    endpoints,
		Parallel:          flags.parallel,
		Workers:           workers,
	})

	if err := exporter.WriteOutputs(result, plan); err != nil {
		return err
	}
	exporter.PrintSummaryTable(result.Summary, flags.includeAssets)
	slog.Info("all done", "format", flags.format, "outputs", strings.Join(plan.Paths(), ", "))
	return nil
}
