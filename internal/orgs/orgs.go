// Package orgs aggregates the paginated "list organizations in group"
// endpoint into a single result file.
package orgs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/afero"

	"github.com/snyk-labs/orgscale/internal/api"
	scaleerrors "github.com/snyk-labs/orgscale/internal/errors"
)

const (
	// DefaultPerPage is how many organizations we request per API call
	DefaultPerPage = 100

	// maxPages caps the pagination loop should the API never produce a
	// short page, bounding a group at maxPages*perPage organizations
	maxPages = 50
)

// Metadata describes the group a listing was taken from
type Metadata struct {
	GroupID            string `json:"group_id"`
	GroupName          string `json:"group_name"`
	TotalOrganizations int    `json:"total_organizations"`
	ExcludedCount      int    `json:"excluded_count"`
}

// OrgSet wraps the active organization list. The nesting is part of the file
// contract consumed by `broker scale`.
type OrgSet struct {
	Orgs []api.Organization `json:"orgs"`
}

// ListResult is the file written by `orgs list`
type ListResult struct {
	Metadata              Metadata           `json:"metadata"`
	Organizations         OrgSet             `json:"organizations"`
	ExcludedOrganizations []api.Organization `json:"excluded_organizations"`
}

// Group is the aggregated view of a group after paging through all of its
// organizations
type Group struct {
	ID   string
	Name string
	Orgs []api.Organization
}

// ProgressFunc is called once per fetched page
type ProgressFunc func(page, fetched int)

// Collect pages through all organizations of a group. The loop stops on the
// first short or empty page; a page cap guards against an upstream that never
// signals the end. Any page error aborts the whole collection, pages fetched
// so far are discarded.
func Collect(ctx context.Context, client *api.Client, groupID string, perPage int, progress ProgressFunc) (*Group, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	group := &Group{ID: groupID}
	all := []api.Organization{}

	for page := 1; page <= maxPages; page++ {
		result, err := client.ListGroupOrgs(ctx, groupID, page, perPage)
		if err != nil {
			return nil, categorize(err, groupID)
		}

		if page == 1 {
			group.Name = result.Name
			if result.ID != "" {
				group.ID = result.ID
			}
		}

		all = append(all, result.Orgs...)

		if progress != nil {
			progress(page, len(result.Orgs))
		}

		if len(result.Orgs) < perPage {
			break
		}
	}

	group.Orgs = all
	return group, nil
}

// categorize maps API failures from the group listing onto the error taxonomy
func categorize(err error, groupID string) error {
	var errResp *api.ErrorResponse
	if errors.As(err, &errResp) {
		switch {
		case errResp.IsUnauthorized():
			return scaleerrors.NewAuthenticationError(err, "",
				"Check that SNYK_TOKEN holds a valid API token")
		case errResp.IsNotFound():
			return scaleerrors.NewNotFoundError(nil,
				fmt.Sprintf("group %q not found or not accessible with this token", groupID))
		case errResp.IsRateLimited():
			return scaleerrors.NewRateLimitError(err, "")
		default:
			return scaleerrors.NewAPIError(err, "")
		}
	}
	return scaleerrors.NewNetworkError(err, "")
}

// DefaultOrgName returns the name of the placeholder organization the
// platform creates alongside a group
func DefaultOrgName(groupName string) string {
	return groupName + "-default"
}

// Partition splits organizations into the active set and the platform-created
// default organization, which must never receive a broker connection. The
// match is an exact, case-sensitive comparison against "<group name>-default".
func Partition(organizations []api.Organization, groupName string) (kept, excluded []api.Organization) {
	defaultName := DefaultOrgName(groupName)
	kept = []api.Organization{}
	excluded = []api.Organization{}

	for _, org := range organizations {
		if org.Name == defaultName {
			excluded = append(excluded, org)
			continue
		}
		kept = append(kept, org)
	}

	return kept, excluded
}

// BuildResult assembles the list file content for a partitioned group
func BuildResult(group *Group, kept, excluded []api.Organization) *ListResult {
	return &ListResult{
		Metadata: Metadata{
			GroupID:            group.ID,
			GroupName:          group.Name,
			TotalOrganizations: len(kept),
			ExcludedCount:      len(excluded),
		},
		Organizations:         OrgSet{Orgs: kept},
		ExcludedOrganizations: excluded,
	}
}

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace  = regexp.MustCompile(`\s+`)
	edgeUnderscores  = regexp.MustCompile(`^_+|_+$`)
)

// DefaultFilename derives a filesystem-safe output filename from a group
// name, stable across runs for the same group
func DefaultFilename(groupName string) string {
	clean := unsafeChars.ReplaceAllString(groupName, "_")
	clean = whitespace.ReplaceAllString(clean, "_")
	clean = edgeUnderscores.ReplaceAllString(clean, "")
	return fmt.Sprintf("snyk_orgs_for_%s.json", clean)
}

// WriteResult writes the listing as formatted JSON. Nothing is written when
// marshalling fails, so a failed run leaves no partial file behind.
func WriteResult(fs afero.Fs, path string, result *ListResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}

	if err := afero.WriteFile(fs, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}

	return nil
}
