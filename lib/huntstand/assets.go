package huntstand

import (
	"context"
	"log/slog"
	"strings"
)

// AssetEndpoint is one candidate per-area asset listing. The URL is a
// template whose {} placeholder receives a safety-checked area id; relative
// templates resolve against the client's base URL, operator-supplied ones
// may be absolute.
type AssetEndpoint struct {
	Type string
	URL  string
}

func (e AssetEndpoint) expand(huntID string) string {
	return strings.ReplaceAll(e.URL, "{}", huntID)
}

// DefaultAssetEndpoints returns the candidate endpoints observed or inferred
// from the upstream's REST naming. Non-success or malformed responses are
// treated as "no data for this type", so stale candidates cost one request
// each at most (or none after probing).
func DefaultAssetEndpoints() []AssetEndpoint {
	return []AssetEndpoint{
		{Type: "stand", URL: "/api/v1/stand/?huntarea_id={}"},
		{Type: "camera", URL: "/api/v1/camera/?huntarea_id={}"},
		// trailcam keys by 'huntarea', not 'huntarea_id'
		{Type: "trailcam", URL: "/api/v1/trailcam/?huntarea={}"},
		{Type: "blind", URL: "/api/v1/blind/?huntarea_id={}"},
		{Type: "feeder", URL: "/api/v1/feeder/?huntarea_id={}"},
		{Type: "foodplot", URL: "/api/v1/foodplot/?huntarea_id={}"},
		{Type: "waypoint", URL: "/api/v1/waypoint/?huntarea_id={}"},
		{Type: "trail", URL: "/api/v1/scouttrail/?huntarea_id={}"},
		{Type: "asset", URL: "/api/v1/asset/?huntarea_id={}"},
	}
}

// ParseAssetEndpointSpec parses one "type:urlTemplate" extension spec.
func ParseAssetEndpointSpec(spec string) (AssetEndpoint, bool) {
	atype, urlTmpl, found := strings.Cut(spec, ":")
	atype = strings.TrimSpace(atype)
	urlTmpl = strings.TrimSpace(urlTmpl)
	if !found || atype == "" || urlTmpl == "" {
		return AssetEndpoint{}, false
	}
	return AssetEndpoint{Type: atype, URL: urlTmpl}, true
}

// ParseAssetEndpointList parses a comma-separated list of extension specs,
// silently dropping malformed entries.
func ParseAssetEndpointList(s string) []AssetEndpoint {
	var out []AssetEndpoint
	for _, part := range strings.Split(s, ",") {
		if ep, ok := ParseAssetEndpointSpec(part); ok {
			out = append(out, ep)
		}
	}
	return out
}

// AssetRow is a normalized asset record. Absent fields stay empty strings.
type AssetRow struct {
	HuntAreaID   string `json:"huntarea_id"`
	HuntAreaName string `json:"huntarea_name"`
	AssetType    string `json:"asset_type"`
	AssetID      string `json:"asset_id"`
	Name         string `json:"name"`
	Subtype      string `json:"subtype"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Created      string `json:"created"`
	Updated      string `json:"updated"`
	LastActivity string `json:"last_activity"`
	OwnerEmail   string `json:"owner_email"`
	Visibility   string `json:"visibility"`
}

// FetchAssets tries every active asset endpoint for one hunt area and
// normalizes whatever comes back. Endpoint failures are logged and skipped,
// never fatal.
func (c *Client) FetchAssets(ctx context.Context, huntID, huntName string, endpoints []AssetEndpoint) []AssetRow {
	if !SafeID(huntID) {
		slog.Error("refusing asset fetch, unsafe hunt area id", "id", huntID)
		return nil
	}
	var assets []AssetRow
	for _, ep := range endpoints {
		link := ep.expand(huntID)
		payload, err := c.getJSON(ctx, link)
		if err != nil {
			slog.Debug("asset endpoint yielded no data", "type", ep.Type, "url", link, "err", err)
			continue
		}
		for _, item := range usableList(payload) {
			if raw, ok := item.(map[string]any); ok {
				assets = append(assets, normalizeAsset(raw, ep.Type, huntID, huntName))
			}
		}
	}
	return assets
}

// RefineAssetEndpoints probes every candidate against a single sample area
// and returns only those answering with a usable shape. When none qualify
// the original list is returned unchanged: a total probe failure must not
// silently disable asset collection for the whole run.
func (c *Client) RefineAssetEndpoints(ctx context.Context, sampleID string, candidates []AssetEndpoint) []AssetEndpoint {
	if !SafeID(sampleID) {
		slog.Debug("skipping asset endpoint probing, sample hunt id unsafe", "id", sampleID)
		return candidates
	}
	var kept []AssetEndpoint
	for _, ep := range candidates {
		link := ep.expand(sampleID)
		payload, err := c.getJSON(ctx, link)
		if err != nil {
			slog.Debug("asset endpoint probe failed", "type", ep.Type, "url", link, "err", err)
			continue
		}
		if usableList(payload) == nil {
			slog.Debug("asset endpoint returned unusable shape", "type", ep.Type, "url", link)
			continue
		}
		slog.Debug("asset endpoint kept", "type", ep.Type)
		kept = append(kept, ep)
	}
	if len(kept) == 0 {
		slog.Info("asset endpoint probing found nothing usable, retaining full candidate list",
			"count", len(candidates))
		return candidates
	}
	slog.Info("asset endpoints refined", "active", len(kept))
	return kept
}

// usableList accepts only the two shapes asset endpoints legitimately
// return: a bare list or an {"objects": [...]} envelope. Unlike ObjectList
// it does not flatten arbitrary objects; a nil result means unusable.
func usableList(payload any) []any {
	switch data := payload.(type) {
	case []any:
		return data
	case map[string]any:
		if objects, ok := data["objects"].([]any); ok {
			return objects
		}
	}
	return nil
}

func normalizeAsset(raw map[string]any, assetType, huntID, huntName string) AssetRow {
	aid := strings.TrimSpace(stringField(raw, "id", "asset_id", "uuid"))
	name := stringField(raw, "name", "title", "label", "device_name", "camera_name")
	if name == "" {
		name = strings.TrimRight(Capitalize(assetType)+"-"+aid, "-")
	}
	lat, lon := extractLatLon(raw)

	ownerEmail := ""
	for _, key := range []string{"owner", "user", "profile"} {
		if owner, ok := raw[key].(map[string]any); ok {
			if candidate := stringField(owner, "email", "username"); candidate != "" {
				ownerEmail = strings.TrimSpace(candidate)
				break
			}
		}
	}

	visibility := ""
	v := raw["public"]
	if v == nil {
		v = raw["shared"]
	}
	switch flag := v.(type) {
	case bool:
		if flag {
			visibility = "public"
		} else {
			visibility = "private"
		}
	case string:
		visibility = flag
	case float64:
		visibility = IDString(flag)
	}

	return AssetRow{
		HuntAreaID:   huntID,
		HuntAreaName: huntName,
		AssetType:    assetType,
		AssetID:      aid,
		Name:         truncate(name, 200),
		Subtype:      truncate(stringField(raw, "type", "subtype", "category"), 100),
		Latitude:     lat,
		Longitude:    lon,
		Created:      stringField(raw, "created", "date_created", "timestamp"),
		Updated:      stringField(raw, "updated", "modified", "last_updated"),
		LastActivity: stringField(raw, "last_activity", "last_image", "last_check_in", "last_seen"),
		OwnerEmail:   ownerEmail,
		Visibility:   visibility,
	}
}

func extractLatLon(raw map[string]any) (string, string) {
	lat := stringField(raw, "lat", "latitude")
	lon := stringField(raw, "lon", "longitude")
	if lat == "" || lon == "" {
		if loc, ok := raw["location"].(map[string]any); ok {
			if lat == "" {
				lat = stringField(loc, "lat", "latitude")
			}
			if lon == "" {
				lon = stringField(loc, "lon", "longitude")
			}
		}
	}
	return lat, lon
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
