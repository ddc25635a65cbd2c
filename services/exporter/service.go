package exporter

import (
	"context"
	"log/slog"
	"sync"

	"huntstand/lib/huntstand"
)

const defaultWorkers = 4

type Options struct {
	Client *huntstand.Client
	// queried when the myprofile listing errors or comes back empty
	FallbackProfileID string
	IncludeAssets     bool
	// probe asset endpoints against the first area and narrow the active
	// set before processing the rest
	DynamicAssets bool
	// active asset endpoint set; nil means the default candidates
	AssetEndpoints []huntstand.AssetEndpoint
	Parallel       bool
	Workers        int
}

type Summary struct {
	HuntAreas []*huntstand.AreaSummary `json:"hunt_areas"`
}

type Result struct {
	Rows    []huntstand.MembershipRow
	Assets  []huntstand.AssetRow
	Summary Summary
}

// Run discovers the hunt areas visible to the session and aggregates each
// one. Sequential mode preserves area order in rows and summary; parallel
// mode makes no ordering guarantee across areas, rows from different areas
// may interleave arbitrarily.
func Run(ctx context.Context, opts Options) Result {
	clubs := opts.Client.GatherHuntAreas(ctx, opts.FallbackProfileID)
	descriptors := huntstand.NormalizeAreaDescriptors(clubs)

	endpoints := opts.AssetEndpoints
	if endpoints == nil {
		endpoints = huntstand.DefaultAssetEndpoints()
	}
	if opts.IncludeAssets && opts.DynamicAssets && len(descriptors) > 0 {
		if sampleID := huntstand.IDString(descriptors[0]["huntarea_id"]); sampleID != "" {
			endpoints = opts.Client.RefineAssetEndpoints(ctx, sampleID, endpoints)
		}
	}
	// the endpoint set is frozen before any dispatch, workers only read it
	areaOpts := huntstand.AreaOptions{
		IncludeAssets:  opts.IncludeAssets,
		AssetEndpoints: endpoints,
	}

	result := Result{Summary: Summary{HuntAreas: []*huntstand.AreaSummary{}}}

	if opts.Parallel && len(descriptors) > 1 {
		runParallel(ctx, opts, descriptors, areaOpts, &result)
		return result
	}

	for _, descriptor := range descriptors {
		collect(&result, opts.Client.ProcessHuntArea(ctx, descriptor, areaOpts))
	}
	return result
}

func collect(result *Result, area huntstand.AreaResult) {
	if area.Summary != nil {
		result.Summary.HuntAreas = append(result.Summary.HuntAreas, area.Summary)
	}
	result.Rows = append(result.Rows, area.Rows...)
	result.Assets = append(result.Assets, area.Assets...)
}

func runParallel(
	ctx context.Context,
	opts Options,
	descriptors []map[string]any,
	areaOpts huntstand.AreaOptions,
	result *Result,
) {
	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	slog.Info("parallel fetch enabled", "workers", workers)

	jobs := make(chan map[string]any)
	var mu sync.Mutex
	var wg sync.WaitGroup

	started := 0
	for i := 0; i < workers; i++ {
		client, err := opts.Client.Clone()
		if err != nil {
			slog.Error("failed to clone client for worker", "err", err)
			continue
		}
		started++
		wg.Add(1)
		go func() {
			defer wg.Done()
			for descriptor := range jobs {
				area := processArea(ctx, client, descriptor, areaOpts)
				mu.Lock()
				collect(result, area)
				mu.Unlock()
			}
		}()
	}
	if started == 0 {
		for _, descriptor := range descriptors {
			collect(result, opts.Client.ProcessHuntArea(ctx, descriptor, areaOpts))
		}
		return
	}

	for _, descriptor := range descriptors {
		jobs <- descriptor
	}
	close(jobs)
	wg.Wait()
}

// one area's failure is logged and excluded, sibling workers keep going
func processArea(
	ctx context.Context,
	client *huntstand.Client,
	descriptor map[string]any,
	areaOpts huntstand.AreaOptions,
) (area huntstand.AreaResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("hunt area worker failed", "panic", r)
		}
	}()
	return client.ProcessHuntArea(ctx, descriptor, areaOpts)
}
