package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"huntstand/lib/huntstand"
)

// Verification is the outcome of re-checking one earlier addition against
// the live membership data.
type Verification struct {
	Email        string
	HuntAreaID   string
	ExpectedRole string
	Found        bool
	ActualRole   string
	// one of "verified", "missing", "role_mismatch", "error", "skipped"
	Status string
	Notes  string
}

// FetchAreaMemberRoles merges the active members and pending invites of a
// hunt area into an email -> role mapping, lower-cased on both sides.
func FetchAreaMemberRoles(ctx context.Context, client *huntstand.Client, huntareaID string) map[string]string {
	roles := map[string]string{}

	members, err := client.FetchMembers(ctx, huntareaID)
	if err != nil {
		slog.Debug("error fetching members", "huntarea", huntareaID, "err", err)
	}
	invites, err := client.FetchInvites(ctx, huntareaID)
	if err != nil {
		slog.Debug("error fetching invites", "huntarea", huntareaID, "err", err)
	}

	for _, item := range append(members, invites...) {
		record := huntstand.AsDict(item)
		email := strings.ToLower(strings.TrimSpace(emailOf(record)))
		if email == "" {
			continue
		}
		roles[email] = strings.ToLower(roleOf(record))
	}
	return roles
}

func emailOf(record map[string]any) string {
	email, _ := record["email"].(string)
	return email
}

func roleOf(record map[string]any) string {
	if rankObj, ok := record["rank"].(map[string]any); ok {
		if name, ok := rankObj["name"].(string); ok && name != "" {
			return name
		}
		return "member"
	}
	if rank, ok := record["rank"].(string); ok && rank != "" {
		return rank
	}
	return "member"
}

const verifyPause = 200 * time.Millisecond

// VerifyAdditions re-reads a results CSV from a previous run and checks each
// successful addition against the hunt area's current membership.
func VerifyAdditions(ctx context.Context, client *huntstand.Client, resultsPath string) []Verification {
	f, err := os.Open(resultsPath)
	if err != nil {
		slog.Error("could not open results CSV", "path", resultsPath, "err", err)
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		slog.Error("could not read results CSV header", "path", resultsPath, "err", err)
		return nil
	}
	column := map[string]int{}
	for i, name := range header {
		column[name] = i
	}
	field := func(record []string, name string) string {
		if i, ok := column[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var verifications []Verification
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Error("error reading results CSV", "path", resultsPath, "err", err)
			break
		}

		email := strings.ToLower(field(record, "email"))
		huntareaID := field(record, "huntarea_id")
		expectedRole := strings.ToLower(field(record, "role"))
		status := field(record, "status_code")

		code, err := strconv.Atoi(status)
		if err != nil || code < 200 || code >= 300 {
			verifications = append(verifications, Verification{
				Email:        email,
				HuntAreaID:   huntareaID,
				ExpectedRole: expectedRole,
				Status:       "skipped",
				Notes:        fmt.Sprintf("original status was %s, not verified", status),
			})
			continue
		}

		roles := FetchAreaMemberRoles(ctx, client, huntareaID)
		actual, found := roles[email]
		v := Verification{
			Email:        email,
			HuntAreaID:   huntareaID,
			ExpectedRole: expectedRole,
			Found:        found,
			ActualRole:   actual,
		}
		switch {
		case !found:
			v.Status = "missing"
			v.Notes = "member not found in hunt area"
		case actual == expectedRole:
			v.Status = "verified"
			v.Notes = "member found with correct role"
		default:
			v.Status = "role_mismatch"
			v.Notes = fmt.Sprintf("expected %s, found %s", expectedRole, actual)
		}
		verifications = append(verifications, v)

		time.Sleep(verifyPause)
	}
	return verifications
}

// SummarizeVerifications counts outcomes by status.
func SummarizeVerifications(verifications []Verification) map[string]int {
	counts := map[string]int{}
	for _, v := range verifications {
		counts[v.Status]++
	}
	return counts
}
