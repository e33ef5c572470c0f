// Package broker attaches organizations to a Universal Broker connection in
// batch, one API call at a time with a fixed delay between calls.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/snyk-labs/orgscale/internal/api"
	scaleerrors "github.com/snyk-labs/orgscale/internal/errors"
)

// ConnectionResult records the outcome of one connection attempt
type ConnectionResult struct {
	OrgID     string                 `json:"org_id"`
	OrgName   string                 `json:"org_name"`
	Success   bool                   `json:"success"`
	Response  map[string]interface{} `json:"response,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Summary aggregates a whole batch run
type Summary struct {
	TotalOrganizations    int     `json:"total_organizations"`
	SuccessfulConnections int     `json:"successful_connections"`
	FailedConnections     int     `json:"failed_connections"`
	SuccessRate           float64 `json:"success_rate"`
	TenantID              string  `json:"tenant_id"`
	ConnectionID          string  `json:"connection_id"`
	Timestamp             string  `json:"timestamp"`
}

// ConnectionLog is the file written at the end of a `broker scale` run
type ConnectionLog struct {
	Summary               Summary            `json:"summary"`
	Results               []ConnectionResult `json:"results"`
	ExcludedOrganizations []api.Organization `json:"excluded_organizations,omitempty"`
}

// Input is the parsed content of the organizations file
type Input struct {
	Organizations []api.Organization
	Excluded      []api.Organization
}

// listFileShape matches the file written by `orgs list`
type listFileShape struct {
	Organizations *struct {
		Orgs []api.Organization `json:"orgs"`
	} `json:"organizations"`
	Orgs                  []api.Organization `json:"orgs"`
	ExcludedOrganizations []api.Organization `json:"excluded_organizations"`
}

// LoadOrganizations reads the organizations file, tolerating the shapes the
// tooling has produced over time: the full `orgs list` output, a raw group
// response with a top-level "orgs" key, or a bare array of organizations.
func LoadOrganizations(fs afero.Fs, path string) (*Input, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, scaleerrors.NewConfigurationError(err, fmt.Sprintf("cannot read %q", path))
	}

	// a bare array first, the object shapes after
	var direct []api.Organization
	if err := json.Unmarshal(data, &direct); err == nil {
		return &Input{Organizations: direct}, nil
	}

	var shape listFileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, scaleerrors.NewStructureError(err, fmt.Sprintf("%q is not valid JSON", path))
	}

	switch {
	case shape.Organizations != nil:
		return &Input{Organizations: shape.Organizations.Orgs, Excluded: shape.ExcludedOrganizations}, nil
	case shape.Orgs != nil:
		return &Input{Organizations: shape.Orgs, Excluded: shape.ExcludedOrganizations}, nil
	default:
		return nil, scaleerrors.NewStructureError(nil,
			fmt.Sprintf("unsupported JSON structure in %q: expected an \"orgs\" key, an \"organizations.orgs\" key, or a list of organizations", path))
	}
}

// Options configures a batch run
type Options struct {
	TenantID        string
	ConnectionID    string
	IntegrationID   string
	IntegrationType string

	// Delay is slept after every attempt except the last
	Delay time.Duration

	// Sleep defaults to time.Sleep, injectable for tests
	Sleep func(time.Duration)

	// Now defaults to time.Now, injectable for tests
	Now func() time.Time

	// Progress, when set, is called after each organization completes
	Progress func(i, total int, result ConnectionResult)
}

// Run connects every organization to the broker connection, one at a time in
// input order. A failed attempt is recorded and the batch moves on; nothing
// short of context cancellation stops the loop.
func Run(ctx context.Context, client *api.Client, organizations []api.Organization, opts Options) (*ConnectionLog, error) {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	total := len(organizations)
	results := make([]ConnectionResult, 0, total)
	successful, failed := 0, 0

	for i, org := range organizations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := ConnectionResult{
			OrgID:     org.ID,
			OrgName:   org.Name,
			Timestamp: now().Format(time.RFC3339),
		}

		if org.ID == "" {
			result.Error = "missing organization id"
		} else {
			response, err := client.ConnectBrokerOrg(ctx, opts.TenantID, opts.ConnectionID, org.ID, opts.IntegrationID, opts.IntegrationType)
			if err != nil {
				result.Error = describeFailure(err, org.ID)
			} else {
				result.Success = true
				result.Response = response
			}
		}

		if result.Success {
			successful++
		} else {
			failed++
		}
		results = append(results, result)

		if opts.Progress != nil {
			opts.Progress(i+1, total, result)
		}

		if i < total-1 && opts.Delay > 0 {
			sleep(opts.Delay)
		}
	}

	log := &ConnectionLog{
		Summary: Summary{
			TotalOrganizations:    total,
			SuccessfulConnections: successful,
			FailedConnections:     failed,
			SuccessRate:           successRate(successful, total),
			TenantID:              opts.TenantID,
			ConnectionID:          opts.ConnectionID,
			Timestamp:             now().Format(time.RFC3339),
		},
		Results: results,
	}

	return log, nil
}

func successRate(successful, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}

func describeFailure(err error, orgID string) string {
	var errResp *api.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.IsRateLimited() {
			return fmt.Sprintf("rate limited connecting organization %s: %s (consider raising --delay)", orgID, errResp.Error())
		}
		return fmt.Sprintf("failed to connect organization %s: %s", orgID, errResp.Error())
	}
	return fmt.Sprintf("request failed for organization %s: %s", orgID, err.Error())
}

// WriteLog writes the connection log as formatted JSON
func WriteLog(fs afero.Fs, path string, log *ConnectionLog) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode connection log: %w", err)
	}

	if err := afero.WriteFile(fs, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}

	return nil
}
