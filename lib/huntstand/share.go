package huntstand

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// ShareHuntArea issues one membership-addition POST for an email/area/rank
// triple. Callers own retry policy beyond the transport's and all response
// interpretation; the upstream answers with a grab bag of statuses and
// bodies.
func (c *Client) ShareHuntArea(ctx context.Context, email, huntareaID, rank string) (*resty.Response, error) {
	return c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"email":       email,
			"huntarea_id": huntareaID,
			"rank":        rank,
		}).
		Post(sharePath)
}
