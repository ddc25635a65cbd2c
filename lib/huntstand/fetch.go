package huntstand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnsafeID is reported when an identifier fails the safety predicate.
// The request is refused outright, which is distinct from a transport error.
var ErrUnsafeID = errors.New("unsafe hunt area identifier")

const (
	myProfilePath          = "/api/v1/myprofile/"
	huntareasByProfilePath = "/api/v1/huntarea/?profile_id="
	membersPath            = "/api/v1/clubmember/?huntarea_id="
	invitesPath            = "/api/v1/membershipemailinvite/?huntarea="
	requestsPath           = "/api/v1/membershiprequest/?huntarea="
	sharePath              = "/api/v2/huntarea/share/"
)

func (c *Client) getJSON(ctx context.Context, link string) (any, error) {
	res, err := c.Http.R().SetContext(ctx).Get(link)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: status %d", link, res.StatusCode())
	}
	var payload any
	if err := json.Unmarshal(res.Body(), &payload); err != nil {
		return nil, fmt.Errorf("GET %s: %w", link, err)
	}
	return payload, nil
}

func (c *Client) fetchObjects(ctx context.Context, what, path string, huntID any) ([]any, error) {
	if !SafeID(huntID) {
		slog.Error("refusing fetch, unsafe hunt area id", "what", what, "id", huntID)
		return nil, ErrUnsafeID
	}
	payload, err := c.getJSON(ctx, path+IDString(huntID))
	if err != nil {
		return nil, err
	}
	return ObjectList(payload), nil
}

// FetchMembers returns the active members of a hunt area.
func (c *Client) FetchMembers(ctx context.Context, huntID any) ([]any, error) {
	return c.fetchObjects(ctx, "members", membersPath, huntID)
}

// FetchInvites returns the pending email invites of a hunt area.
func (c *Client) FetchInvites(ctx context.Context, huntID any) ([]any, error) {
	return c.fetchObjects(ctx, "invites", invitesPath, huntID)
}

// FetchRequests returns the pending join requests of a hunt area.
func (c *Client) FetchRequests(ctx context.Context, huntID any) ([]any, error) {
	return c.fetchObjects(ctx, "requests", requestsPath, huntID)
}
