package exporter

import (
	"path/filepath"
	"time"
)

// OutputPlan holds the timestamped paths a run will write, filtered by the
// selected format. Empty fields mean the output is not selected.
type OutputPlan struct {
	DetailedCSV string
	MatrixCSV   string
	PerHuntDir  string
	AssetsCSV   string
	SummaryJSON string
}

// PlanOutputs computes output paths under dir using a shared timestamp.
// format is one of "all", "csv", "json".
func PlanOutputs(dir string, now time.Time, format string, perHunt, includeAssets bool) OutputPlan {
	stamp := now.Format("20060102_150405")
	var plan OutputPlan

	if format == "all" || format == "csv" {
		plan.DetailedCSV = filepath.Join(dir, "huntstand_members_detailed_"+stamp+".csv")
		plan.MatrixCSV = filepath.Join(dir, "huntstand_membership_matrix_"+stamp+".csv")
		if perHunt {
			plan.PerHuntDir = filepath.Join(dir, "huntstand_per_hunt_csvs_"+stamp)
		}
		if includeAssets {
			plan.AssetsCSV = filepath.Join(dir, "huntstand_assets_detailed_"+stamp+".csv")
		}
	}
	if format == "all" || format == "json" {
		plan.SummaryJSON = filepath.Join(dir, "huntstand_summary_"+stamp+".json")
	}
	return plan
}

// Paths lists the selected outputs in writing order.
func (p OutputPlan) Paths() []string {
	var out []string
	for _, path := range []string{
		p.DetailedCSV, p.MatrixCSV, p.PerHuntDir, p.AssetsCSV, p.SummaryJSON,
	} {
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

// WriteOutputs serializes a run's result to every selected path.
func WriteOutputs(result Result, plan OutputPlan) error {
	if plan.DetailedCSV != "" {
		if err := WriteDetailedCSV(result.Rows, plan.DetailedCSV); err != nil {
			return err
		}
	}
	if plan.SummaryJSON != "" {
		if err := WriteJSONSummary(result.Summary, plan.SummaryJSON); err != nil {
			return err
		}
	}
	if plan.MatrixCSV != "" {
		if err := WriteMembershipMatrix(result.Rows, plan.MatrixCSV); err != nil {
			return err
		}
	}
	if plan.PerHuntDir != "" {
		if err := WritePerHuntCSVs(result.Rows, plan.PerHuntDir); err != nil {
			return err
		}
	}
	if plan.AssetsCSV != "" {
		if err := WriteAssetsCSV(result.Assets, plan.AssetsCSV); err != nil {
			return err
		}
	}
	return nil
}
