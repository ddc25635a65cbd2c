package huntstand

import (
	"context"
	"log/slog"
	"net/url"
)

// GatherHuntAreas lists every hunt area the authenticated identity can see.
// The primary source is the "my profile" endpoint; when it errors or comes
// back empty and a fallback profile id is configured, the profile-scoped
// listing is queried instead. Both failure modes take the same fallback.
func (c *Client) GatherHuntAreas(ctx context.Context, fallbackProfileID string) []map[string]any {
	var clubs []any

	payload, err := c.getJSON(ctx, myProfilePath)
	if err != nil {
		slog.Warn("failed to fetch hunt areas from myprofile", "err", err)
	} else {
		profile := AsDict(payload)
		clubs, _ = profile["hunt_areas"].([]any)
		slog.Info("fetched hunt areas from myprofile", "count", len(clubs))
		if len(clubs) == 0 {
			slog.Warn("no hunt areas in myprofile response")
		}
	}

	if len(clubs) == 0 && fallbackProfileID != "" {
		link := huntareasByProfilePath + url.QueryEscape(fallbackProfileID)
		slog.Info("trying profile-scoped hunt area listing", "profile_id", fallbackProfileID)
		payload, err := c.getJSON(ctx, link)
		if err != nil {
			slog.Error("profile-scoped hunt area fallback failed", "err", err)
		} else {
			clubs = ObjectList(payload)
			slog.Info("fetched hunt areas via profile fallback", "count", len(clubs))
		}
	}

	out := make([]map[string]any, 0, len(clubs))
	for _, club := range clubs {
		if m, ok := club.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// NormalizeAreaDescriptors reshapes discovery results into descriptors that
// always carry a huntarea_id and a huntarea metadata object, regardless of
// whether the source nested the area under a "huntarea" key or returned it
// flat.
func NormalizeAreaDescriptors(clubs []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(clubs))
	for _, club := range clubs {
		huntObj, nested := club["huntarea"].(map[string]any)
		switch {
		case nested:
			hid := club["huntarea_id"]
			if IDString(hid) == "" {
				hid = huntObj["id"]
			}
			out = append(out, map[string]any{"huntarea_id": hid, "huntarea": huntObj})
		case IDString(club["id"]) != "" && stringField(club, "name") != "":
			out = append(out, map[string]any{"huntarea_id": club["id"], "huntarea": club})
		default:
			hid := club["huntarea_id"]
			if IDString(hid) == "" {
				hid = club["id"]
			}
			out = append(out, map[string]any{"huntarea_id": hid, "huntarea": club})
		}
	}
	return out
}
