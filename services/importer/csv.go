package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadSingleColumn reads the first column of a CSV, skipping blanks and any
// cell matching a known header name. A missing file is an empty list, not an
// error; the role files are all optional.
func LoadSingleColumn(path string, headerNames ...string) []string {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("file not found, treated as empty", "path", path)
		} else {
			slog.Error("error opening file", "path", path, "err", err)
		}
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var items []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Error("error reading file", "path", path, "err", err)
			break
		}
		if len(record) == 0 {
			continue
		}
		cell := strings.TrimSpace(record[0])
		if cell == "" || isHeader(cell, headerNames) {
			continue
		}
		items = append(items, cell)
	}
	return items
}

func isHeader(cell string, headerNames []string) bool {
	for _, h := range headerNames {
		if strings.EqualFold(cell, h) {
			return true
		}
	}
	return false
}

func writeCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
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

// WriteResultsCSV records every addition attempt for later verification.
func WriteResultsCSV(results []ShareResult, path string) error {
	records := make([][]string, 0, len(results))
	for _, r := range results {
		records = append(records, []string{r.Email, r.HuntAreaID, r.Role, r.Status, r.Response})
	}
	header := []string{"email", "huntarea_id", "role", "status_code", "response"}
	if err := writeCSV(path, header, records); err != nil {
		return err
	}
	slog.Info("wrote results CSV", "path", path, "rows", len(results))
	return nil
}

func WriteVerificationCSV(verifications []Verification, path string) error {
	records := make([][]string, 0, len(verifications))
	for _, v := range verifications {
		found := "No"
		if v.Found {
			found = "Yes"
		}
		records = append(records, []string{
			v.Email, v.HuntAreaID, v.ExpectedRole, found, v.ActualRole, v.Status, v.Notes,
		})
	}
	header := []string{"email", "huntarea_id", "expected_role", "found", "actual_role", "status", "notes"}
	if err := writeCSV(path, header, records); err != nil {
		return err
	}
	slog.Info("wrote verification CSV", "path", path, "rows", len(verifications))
	return nil
}
