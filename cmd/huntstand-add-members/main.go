package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"huntstand/lib/huntstand"
	"huntstand/lib/telemetry"
	"huntstand/services/importer"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	errNoHuntAreas        = errors.New("no hunt area ids loaded")
	errVerificationIssues = errors.New("verification found issues")
)

var flags struct {
	cookiesFile     string
	membersFile     string
	adminFile       string
	viewFile        string
	huntareasFile   string
	roles           []string
	dryRun          bool
	verifyResults   string
	logJSON         bool
	retries         int
	backoff         float64
	delay           float64
	noLoginFallback bool
	outputDir       string
}

var rootCmd = &cobra.Command{
	Use:          "huntstand-add-members",
	Short:        "Add members to HuntStand hunt areas from CSV lists",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.cookiesFile, "cookies-file", "", "JSON file containing sessionid/csrftoken")
	f.StringVar(&flags.membersFile, "members-file", "members.csv", "CSV file of member emails")
	f.StringVar(&flags.adminFile, "admin-file", "admin.csv", "CSV file of admin emails")
	f.StringVar(&flags.viewFile, "view-file", "view_only.csv", "CSV file of view-only emails")
	f.StringVar(&flags.huntareasFile, "huntareas-file", "huntareas.csv", "CSV file of hunt area ids")
	f.StringSliceVar(&flags.roles, "roles", []string{"member"}, "roles to import (subset of member/admin/view)")
	f.BoolVar(&flags.dryRun, "dry-run", false, "show planned additions and exit without network calls")
	f.StringVar(&flags.verifyResults, "verify-results", "", "verify additions from a previous results CSV file")
	f.BoolVar(&flags.logJSON, "log-json", false, "emit structured JSON logs to stdout")
	f.IntVar(&flags.retries, "retries", importer.DefaultRetries, "retries for transient errors")
	f.Float64Var(&flags.backoff, "backoff", 1.0, "base backoff seconds")
	f.Float64Var(&flags.delay, "delay", 0.25, "delay between successful calls in seconds")
	f.BoolVar(&flags.noLoginFallback, "no-login-fallback", false, "disable login fallback; require cookies")
	f.StringVar(&flags.outputDir, "output-dir", "exports", "directory for output results CSV")
}

func main() {
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, huntstand.ErrNoSession):
			os.Exit(2)
		case errors.Is(err, errNoHuntAreas):
			os.Exit(3)
		default:
			os.Exit(1)
		}
	}
}

func run(cmd *cobra.Command, _ []string) error {
	setupLogging(flags.logJSON)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tel, err := telemetry.SetupFromEnv(ctx, "huntstand-add-members")
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("telemetry setup failed", "err", err)
	}
	defer tel.Shutdown(ctx)

	config := loadConfig()

	roles := map[string]bool{}
	for _, role := range flags.roles {
		switch role {
		case "member", "admin", "view":
			roles[role] = true
		default:
			return fmt.Errorf("invalid role %q (expected member, admin or view)", role)
		}
	}

	emailsByRole := map[string][]string{}
	if roles["member"] {
		emailsByRole["member"] = importer.LoadSingleColumn(flags.membersFile, "email", "member_email")
	}
	if roles["admin"] {
		emailsByRole["admin"] = importer.LoadSingleColumn(flags.adminFile, "email", "admin_email")
	}
	if roles["view"] {
		emailsByRole["view"] = importer.LoadSingleColumn(flags.viewFile, "email", "view_email")
	}

	var plans []importer.Addition
	if flags.verifyResults == "" {
		huntareas := importer.LoadSingleColumn(flags.huntareasFile, "huntarea_id", "id")
		if len(huntareas) == 0 {
			slog.Error("no hunt area ids loaded", "file", flags.huntareasFile)
			return errNoHuntAreas
		}
		plans = importer.PlanAdditions(emailsByRole, huntareas)
		slog.Info("planned additions", "count", len(plans))

		if flags.dryRun {
			slog.Info("dry-run requested; skipping network", "planned", len(plans))
			return nil
		}
	}

	sessionid, csrftoken := config.SessionID, config.CSRFToken
	if flags.cookiesFile != "" {
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
			slog.Error("no session cookie and login fallback disabled")
		}
		return err
	}

	stamp := time.Now().Format("20060102_150405")

	if flags.verifyResults != "" {
		slog.Info("verification mode", "results", flags.verifyResults)
		verifications := importer.VerifyAdditions(ctx, client, flags.verifyResults)
		counts := importer.SummarizeVerifications(verifications)
		slog.Info(
			"verification summary",
			"verified", counts["verified"],
			"missing", counts["missing"],
			"role_mismatch", counts["role_mismatch"],
			"errors", counts["error"],
			"skipped", counts["skipped"],
		)

		out := filepath.Join(flags.outputDir, "members_verification_"+stamp+".csv")
		if err := importer.WriteVerificationCSV(verifications, out); err != nil {
			return err
		}
		if counts["missing"] > 0 || counts["role_mismatch"] > 0 || counts["error"] > 0 {
			slog.Warn("verification found issues", "report", out)
			return errVerificationIssues
		}
		slog.Info("verification complete; all additions confirmed")
		return nil
	}

	results := importer.Run(ctx, importer.Options{
		Client:  client,
		Retries: flags.retries,
		Backoff: time.Duration(flags.backoff * float64(time.Second)),
		Delay:   time.Duration(flags.delay * float64(time.Second)),
	}, plans)

	out := filepath.Join(flags.outputDir, "members_added_results_"+stamp+".csv")
	if err := importer.WriteResultsCSV(results, out); err != nil {
		return err
	}
	slog.Info("all done", "attempts", len(results))
	return nil
}
