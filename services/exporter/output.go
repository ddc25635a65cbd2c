package exporter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"huntstand/lib/huntstand"

	"github.com/jedib0t/go-pretty/v6/table"
)

var detailedColumns = []string{
	"huntarea_id", "huntarea_name", "name", "email", "rank", "status", "date_joined",
}

var assetColumns = []string{
	"huntarea_id", "huntarea_name", "asset_type", "asset_id", "name", "subtype",
	"latitude", "longitude", "created", "updated", "last_activity",
	"owner_email", "visibility",
}

func ensureParentDir(path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Debug("could not ensure parent directory", "path", path, "err", err)
	}
}

func writeCSV(path string, header []string, records [][]string) error {
	ensureParentDir(path)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	return errors.Join(w.Error(), f.Close())
}

// WriteDetailedCSV writes one row per MembershipRow, columns in fixed order.
func WriteDetailedCSV(rows []huntstand.MembershipRow, path string) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.HuntAreaID, r.HuntAreaName, r.Name, r.Email, r.Rank, r.Status, r.DateJoined,
		})
	}
	if err := writeCSV(path, detailedColumns, records); err != nil {
		return err
	}
	slog.Info("wrote detailed CSV", "path", path, "rows", len(rows))
	return nil
}

// BuildMembershipMatrix pivots rows into one row per distinct email and one
// column per distinct hunt area name, default cell "No". Later rows
// overwrite earlier ones for the same email/area pair; rows arrive ordered
// members, invites, requests per area, and that last-write-wins order is a
// load-bearing inherited behavior.
func BuildMembershipMatrix(rows []huntstand.MembershipRow) ([]string, [][]string) {
	emailSet := map[string]bool{}
	nameSet := map[string]bool{}
	for _, row := range rows {
		if email := strings.ToLower(strings.TrimSpace(row.Email)); email != "" {
			emailSet[email] = true
		}
		if row.HuntAreaName != "" {
			nameSet[row.HuntAreaName] = true
		}
	}
	emails := sortedKeys(emailSet)
	names := sortedKeys(nameSet)

	cells := make(map[string]map[string]string, len(emails))
	for _, email := range emails {
		inner := make(map[string]string, len(names))
		for _, name := range names {
			inner[name] = "No"
		}
		cells[email] = inner
	}
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Email))
		if email == "" {
			continue
		}
		if _, known := cells[email][row.HuntAreaName]; known {
			cells[email][row.HuntAreaName] = huntstand.Capitalize(row.Status)
		}
	}

	header := append([]string{"email"}, names...)
	records := make([][]string, 0, len(emails))
	for _, email := range emails {
		record := make([]string, 0, len(header))
		record = append(record, email)
		for _, name := range names {
			record = append(record, cells[email][name])
		}
		records = append(records, record)
	}
	return header, records
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func WriteMembershipMatrix(rows []huntstand.MembershipRow, path string) error {
	header, records := BuildMembershipMatrix(rows)
	if err := writeCSV(path, header, records); err != nil {
		return err
	}
	slog.Info("wrote membership matrix", "path", path, "rows", len(records))
	return nil
}

func WriteJSONSummary(summary Summary, path string) error {
	ensureParentDir(path)
	contents, err := json.MarshalIndent(summary, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		return err
	}
	slog.Info("wrote JSON summary", "path", path)
	return nil
}

// WritePerHuntCSVs writes one file per hunt area id, named after both the id
// and a filesystem-sanitized area name.
func WritePerHuntCSVs(rows []huntstand.MembershipRow, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var order []string
	grouped := map[string][]huntstand.MembershipRow{}
	for _, row := range rows {
		if row.HuntAreaID == "" {
			continue
		}
		if _, seen := grouped[row.HuntAreaID]; !seen {
			order = append(order, row.HuntAreaID)
		}
		grouped[row.HuntAreaID] = append(grouped[row.HuntAreaID], row)
	}

	for _, hid := range order {
		items := grouped[hid]
		name := items[0].HuntAreaName
		if name == "" {
			name = "Area-" + hid
		}
		safeName := strings.NewReplacer("/", "_", "\\", "_").Replace(name)
		path := filepath.Join(dir, fmt.Sprintf("hunt_%s_%s.csv", hid, safeName))

		records := make([][]string, 0, len(items))
		for _, r := range items {
			records = append(records, []string{r.Name, r.Email, r.Rank, r.Status, r.DateJoined})
		}
		header := []string{"name", "email", "rank", "status", "date_joined"}
		if err := writeCSV(path, header, records); err != nil {
			return err
		}
		slog.Info("wrote per-hunt CSV", "path", path, "rows", len(items))
	}
	return nil
}

func WriteAssetsCSV(assets []huntstand.AssetRow, path string) error {
	records := make([][]string, 0, len(assets))
	for _, a := range assets {
		records = append(records, []string{
			a.HuntAreaID, a.HuntAreaName, a.AssetType, a.AssetID, a.Name, a.Subtype,
			a.Latitude, a.Longitude, a.Created, a.Updated, a.LastActivity,
			a.OwnerEmail, a.Visibility,
		})
	}
	if err := writeCSV(path, assetColumns, records); err != nil {
		return err
	}
	slog.Info("wrote assets CSV", "path", path, "rows", len(assets))
	return nil
}

// PrintSummaryTable renders per-area counts to stdout after a run.
func PrintSummaryTable(summary Summary, includeAssets bool) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)

	header := table.Row{"Hunt Area", "ID", "Members", "Invites", "Requests"}
	if includeAssets {
		header = append(header, "Assets")
	}
	t.AppendHeader(header)
	for _, area := range summary.HuntAreas {
		row := table.Row{
			area.Name,
			area.ID,
			strconv.Itoa(area.Counts["members"]),
			strconv.Itoa(area.Counts["invites"]),
			strconv.Itoa(area.Counts["requests"]),
		}
		if includeAssets {
			row = append(row, strconv.Itoa(area.Counts["assets"]))
		}
		t.AppendRow(row)
	}
	t.Render()
}
