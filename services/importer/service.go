// Package importer bulk-adds members to hunt areas from CSV email lists and
// can verify a previous run's additions against the live membership data.
package importer

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"huntstand/lib/huntstand"
)

// the importer's own write-path retry set, one wider than the transport's
// (522 shows up from the upstream's CDN)
var retriableStatuses = map[int]bool{
	429: true, 500: true, 502: true, 503: true, 504: true, 522: true,
}

const (
	DefaultRetries = 3
	DefaultBackoff = time.Second
	DefaultDelay   = 250 * time.Millisecond

	// cap stored response bodies, they only exist for diagnostics
	responseLimit = 500
)

// Roles the share endpoint accepts, in planning order.
var Roles = []string{"member", "admin", "view"}

type Addition struct {
	Role       string
	HuntAreaID string
	Email      string
}

// PlanAdditions expands role email lists against every hunt area.
func PlanAdditions(emailsByRole map[string][]string, huntareas []string) []Addition {
	var plans []Addition
	for _, role := range Roles {
		for _, area := range huntareas {
			for _, email := range emailsByRole[role] {
				plans = append(plans, Addition{Role: role, HuntAreaID: area, Email: email})
			}
		}
	}
	return plans
}

// ShareResult records one addition attempt. Status holds the numeric HTTP
// status, or "error" when every attempt failed at the transport level.
type ShareResult struct {
	Email      string
	HuntAreaID string
	Role       string
	Status     string
	Response   string
}

func exponentialSleep(attempt int, base time.Duration) {
	time.Sleep(base * (1 << attempt))
}

// PostShare performs one planned addition with exponential backoff on
// transient statuses in addition to the transport's retry policy.
func PostShare(ctx context.Context, client *huntstand.Client, add Addition, retries int, backoff time.Duration) ShareResult {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		res, err := client.ShareHuntArea(ctx, add.Email, add.HuntAreaID, add.Role)
		if err != nil {
			lastErr = err
			exponentialSleep(attempt, backoff)
			continue
		}
		if res.StatusCode() < 400 || !retriableStatuses[res.StatusCode()] {
			body := strings.TrimSpace(res.String())
			if len(body) > responseLimit {
				body = body[:responseLimit]
			}
			return ShareResult{
				Email:      add.Email,
				HuntAreaID: add.HuntAreaID,
				Role:       add.Role,
				Status:     strconv.Itoa(res.StatusCode()),
				Response:   body,
			}
		}
		exponentialSleep(attempt, backoff)
	}
	response := "max retries exhausted"
	if lastErr != nil {
		response = lastErr.Error()
	}
	return ShareResult{
		Email:      add.Email,
		HuntAreaID: add.HuntAreaID,
		Role:       add.Role,
		Status:     "error",
		Response:   response,
	}
}

type Options struct {
	Client  *huntstand.Client
	Retries int
	Backoff time.Duration
	// pause between successful calls to stay under the rate limit
	Delay time.Duration
}

// Run executes every planned addition in order.
func Run(ctx context.Context, opts Options, plans []Addition) []ShareResult {
	retries := opts.Retries
	if retries == 0 {
		retries = DefaultRetries
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = DefaultBackoff
	}

	results := make([]ShareResult, 0, len(plans))
	for _, add := range plans {
		res := PostShare(ctx, opts.Client, add, retries, backoff)
		slog.Info(
			"share attempt finished",
			"email", add.Email,
			"huntarea", add.HuntAreaID,
			"role", add.Role,
			"status", res.Status,
		)
		results = append(results, res)
		time.Sleep(opts.Delay)
	}
	return results
}
