package huntstand

import (
	"context"
	"log/slog"
	"strings"
)

const (
	StatusActive    = "active"
	StatusInvited   = "invited"
	StatusRequested = "requested"
)

// MembershipRow is the unifying record for members, invites and join
// requests. Never mutated after creation.
type MembershipRow struct {
	HuntAreaID   string
	HuntAreaName string
	Name         string
	Email        string
	Rank         string
	Status       string
	DateJoined   string
}

// AreaSummary carries per-area counts plus a few raw records per category
// for diagnostics.
type AreaSummary struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Meta           map[string]any `json:"meta"`
	Counts         map[string]int `json:"counts"`
	MembersSample  []any          `json:"members_sample"`
	InvitesSample  []any          `json:"invites_sample"`
	RequestsSample []any          `json:"requests_sample"`
	AssetsSample   []AssetRow     `json:"assets_sample,omitempty"`
}

const summarySampleSize = 10

type AreaResult struct {
	Rows    []MembershipRow
	Assets  []AssetRow
	Summary *AreaSummary
}

type AreaOptions struct {
	IncludeAssets bool
	// the frozen set of active asset endpoints, computed before any
	// parallel dispatch begins
	AssetEndpoints []AssetEndpoint
}

// ProcessHuntArea aggregates one hunt area: members, invites, join requests
// and optionally assets, each fetched independently. A failure in any one
// category degrades to an empty result without blocking the others. An
// unresolvable area id yields an empty AreaResult with no Summary.
func (c *Client) ProcessHuntArea(ctx context.Context, descriptor map[string]any, opts AreaOptions) AreaResult {
	huntObj, nested := descriptor["huntarea"].(map[string]any)

	hid := IDString(descriptor["huntarea_id"])
	if hid == "" {
		hid = IDString(descriptor["id"])
	}
	if hid == "" && nested {
		hid = IDString(huntObj["id"])
	}
	if hid == "" {
		slog.Warn("skipping hunt area descriptor with no resolvable id")
		return AreaResult{}
	}

	meta := huntObj
	if !nested {
		meta = descriptor
	}
	huntName := stringField(meta, "name")
	if huntName == "" {
		huntName = stringField(descriptor, "name")
	}
	if huntName == "" {
		huntName = "Area-" + hid
	}

	slog.Info("processing hunt area", "name", huntName, "id", hid)

	members, err := c.FetchMembers(ctx, hid)
	if err != nil {
		slog.Error("failed to fetch members", "huntarea", hid, "err", err)
		members = nil
	}
	invites, err := c.FetchInvites(ctx, hid)
	if err != nil {
		slog.Error("failed to fetch invites", "huntarea", hid, "err", err)
		invites = nil
	}
	requests, err := c.FetchRequests(ctx, hid)
	if err != nil {
		slog.Error("failed to fetch join requests", "huntarea", hid, "err", err)
		requests = nil
	}

	// row order matters downstream: the matrix pivot is last-write-wins,
	// so members come first, then invites, then requests
	var rows []MembershipRow
	for _, item := range members {
		rows = append(rows, memberRow(AsDict(item), hid, huntName))
	}
	for _, item := range invites {
		rows = append(rows, inviteRow(AsDict(item), hid, huntName))
	}
	for _, item := range requests {
		rows = append(rows, requestRow(AsDict(item), hid, huntName))
	}

	var assets []AssetRow
	if opts.IncludeAssets {
		assets = c.FetchAssets(ctx, hid, huntName, opts.AssetEndpoints)
	}

	counts := map[string]int{
		"members":  len(members),
		"invites":  len(invites),
		"requests": len(requests),
	}
	summary := &AreaSummary{
		ID:             hid,
		Name:           huntName,
		Meta:           meta,
		Counts:         counts,
		MembersSample:  sampleRecords(members),
		InvitesSample:  sampleRecords(invites),
		RequestsSample: sampleRecords(requests),
	}
	if opts.IncludeAssets {
		counts["assets"] = len(assets)
		if len(assets) > summarySampleSize {
			summary.AssetsSample = assets[:summarySampleSize]
		} else {
			summary.AssetsSample = assets
		}
	}

	return AreaResult{Rows: rows, Assets: assets, Summary: summary}
}

func sampleRecords(items []any) []any {
	if items == nil {
		return []any{}
	}
	if len(items) > summarySampleSize {
		return items[:summarySampleSize]
	}
	return items
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// the active-members endpoint does not expose a rank, so it is fixed
func memberRow(m map[string]any, hid, huntName string) MembershipRow {
	first := strings.TrimSpace(stringField(m, "first_name"))
	last := strings.TrimSpace(stringField(m, "last_name"))
	return MembershipRow{
		HuntAreaID:   hid,
		HuntAreaName: huntName,
		Name:         strings.TrimSpace(first + " " + last),
		Email:        normalizeEmail(stringField(m, "email")),
		Rank:         "member",
		Status:       StatusActive,
	}
}

func inviteRow(inv map[string]any, hid, huntName string) MembershipRow {
	rank := ""
	if rankObj, ok := inv["rank"].(map[string]any); ok {
		rank = stringField(rankObj, "name", "title")
	} else {
		rank = stringField(inv, "rank")
	}
	if rank == "" {
		rank = stringField(inv, "role", "intended_rank")
	}
	return MembershipRow{
		HuntAreaID:   hid,
		HuntAreaName: huntName,
		Name:         strings.TrimSpace(stringField(inv, "name", "full_name")),
		Email:        normalizeEmail(stringField(inv, "email")),
		Rank:         strings.TrimSpace(rank),
		Status:       StatusInvited,
		DateJoined:   stringField(inv, "date_joined", "created", "date_sent"),
	}
}

// join requests nest identity twice: a profile object holding a user
// object, with profile fields taking precedence
func requestRow(rq map[string]any, hid, huntName string) MembershipRow {
	profile := AsDict(rq["profile"])
	user := AsDict(profile["user"])

	pick := func(key string) string {
		if v := stringField(profile, key); v != "" {
			return v
		}
		return stringField(user, key)
	}

	first := strings.TrimSpace(pick("first_name"))
	last := strings.TrimSpace(pick("last_name"))
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		name = strings.TrimSpace(pick("username"))
	}
	email := normalizeEmail(pick("email"))

	rank := ""
	if rankObj, ok := rq["rank"].(map[string]any); ok {
		rank = strings.TrimSpace(stringField(rankObj, "name"))
	}

	if name == "" && email == "" {
		if pid := IDString(profile["id"]); pid != "" {
			name = "Profile_" + pid
		} else if uid := IDString(user["id"]); uid != "" {
			name = "User_" + uid
		}
	}

	return MembershipRow{
		HuntAreaID:   hid,
		HuntAreaName: huntName,
		Name:         name,
		Email:        email,
		Rank:         rank,
		Status:       StatusRequested,
		DateJoined:   stringField(rq, "date_requested"),
	}
}
