package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Organization is the slice of the Snyk organization resource the CLI reads.
// Fields pass through the API untouched.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GroupOrgsPage is one page of the "list organizations in group" endpoint.
// The group's own id and name ride along on every page.
type GroupOrgsPage struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	URL  string         `json:"url"`
	Orgs []Organization `json:"orgs"`
}

// ListGroupOrgs fetches a single page of organizations belonging to a group
func (c *Client) ListGroupOrgs(ctx context.Context, groupID string, page, perPage int) (*GroupOrgsPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("perPage", strconv.Itoa(perPage))

	var result GroupOrgsPage
	endpoint := fmt.Sprintf("/v1/group/%s/orgs", url.PathEscape(groupID))
	if err := c.Get(ctx, endpoint, query, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
