package broker_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snyk-labs/orgscale/internal/api"
	"github.com/snyk-labs/orgscale/internal/broker"
	"github.com/snyk-labs/orgscale/internal/errors"
)

func writeInput(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLoadOrganizationsShapes(t *testing.T) {
	t.Parallel()

	const orgList = `[{"id":"a","name":"alpha","url":"u"},{"id":"b","name":"beta","url":"u"}]`

	tests := []struct {
		name    string
		content string
	}{
		{"full listing file", `{"metadata":{"group_id":"g"},"organizations":{"orgs":` + orgList + `}}`},
		{"raw group response", `{"name":"g","orgs":` + orgList + `}`},
		{"bare array", orgList},
	}

	var want []api.Organization
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeInput(t, fs, "/in.json", tc.content)

			input, err := broker.LoadOrganizations(fs, "/in.json")
			require.NoError(t, err)
			require.Len(t, input.Organizations, 2)

			// every accepted shape yields identical organizations
			if want == nil {
				want = input.Organizations
			} else {
				assert.Equal(t, want, input.Organizations)
			}
		})
	}
}

func TestLoadOrganizationsCarriesExclusions(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeInput(t, fs, "/in.json",
		`{"organizations":{"orgs":[{"id":"a","name":"alpha","url":"u"}]},"excluded_organizations":[{"id":"d","name":"g-default","url":"u"}]}`)

	input, err := broker.LoadOrganizations(fs, "/in.json")
	require.NoError(t, err)
	require.Len(t, input.Excluded, 1)
	assert.Equal(t, "g-default", input.Excluded[0].Name)
}

func TestLoadOrganizationsRejectsUnknownShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"object without orgs", `{"foo":"bar"}`},
		{"malformed JSON", `{"orgs": [`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			writeInput(t, fs, "/in.json", tc.content)

			_, err := broker.LoadOrganizations(fs, "/in.json")
			require.Error(t, err)
			assert.True(t, errors.IsStructureError(err))
		})
	}
}

func TestLoadOrganizationsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := broker.LoadOrganizations(afero.NewMemMapFs(), "/absent.json")
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

// connServer fails requests for org ids present in failing with a 500
func connServer(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		// /rest/tenants/{t}/brokers/connections/{c}/orgs/{o}/integration
		orgID := parts[len(parts)-2]
		if failing[orgID] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"status":"connected"}`)
	}))
}

func makeOrgs(n int) []api.Organization {
	organizations := make([]api.Organization, n)
	for i := range organizations {
		organizations[i] = api.Organization{
			ID:   fmt.Sprintf("org-%03d", i),
			Name: fmt.Sprintf("org %d", i),
		}
	}
	return organizations
}

func TestRunMixedOutcomes(t *testing.T) {
	t.Parallel()

	s := connServer(t, map[string]bool{"org-007": true})
	defer s.Close()

	client := api.NewClient("test-token", api.WithBaseURL(s.URL))

	log, err := broker.Run(context.Background(), client, makeOrgs(25), broker.Options{
		TenantID:     "ten-1",
		ConnectionID: "conn-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 25, log.Summary.TotalOrganizations)
	assert.Equal(t, 24, log.Summary.SuccessfulConnections)
	assert.Equal(t, 1, log.Summary.FailedConnections)
	assert.InDelta(t, 96.0, log.Summary.SuccessRate, 0.001)
	assert.Equal(t, log.Summary.TotalOrganizations,
		log.Summary.SuccessfulConnections+log.Summary.FailedConnections)

	require.Len(t, log.Results, 25)
	for i, result := range log.Results {
		assert.Equal(t, fmt.Sprintf("org-%03d", i), result.OrgID, "results keep input order")
		if result.OrgID == "org-007" {
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, "org-007")
		} else {
			assert.True(t, result.Success)
			assert.Empty(t, result.Error)
		}
	}
}

func TestRunSkipsTheNetworkForMissingIDs(t *testing.T) {
	t.Parallel()

	calls := 0
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	defer s.Close()

	client := api.NewClient("test-token", api.WithBaseURL(s.URL))

	organizations := []api.Organization{
		{ID: "org-1", Name: "alpha"},
		{Name: "no id"},
	}

	log, err := broker.Run(context.Background(), client, organizations, broker.Options{
		TenantID:     "ten-1",
		ConnectionID: "conn-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, log.Summary.SuccessfulConnections)
	assert.Equal(t, 1, log.Summary.FailedConnections)
	assert.Equal(t, "missing organization id", log.Results[1].Error)
}

func TestRunDelaysBetweenAttempts(t *testing.T) {
	t.Parallel()

	s := connServer(t, nil)
	defer s.Close()

	client := api.NewClient("test-token", api.WithBaseURL(s.URL))

	var slept time.Duration
	_, err := broker.Run(context.Background(), client, makeOrgs(3), broker.Options{
		TenantID:     "ten-1",
		ConnectionID: "conn-1",
		Delay:        time.Second,
		Sleep:        func(d time.Duration) { slept += d },
	})
	require.NoError(t, err)

	// no delay is owed after the final attempt
	assert.GreaterOrEqual(t, slept, 2*time.Second)
	assert.Less(t, slept, 3*time.Second)
}

func TestRunEmptyBatch(t *testing.T) {
	t.Parallel()

	client := api.NewClient("test-token", api.WithBaseURL("http://127.0.0.1:1"))

	log, err := broker.Run(context.Background(), client, nil, broker.Options{})
	require.NoError(t, err)
	assert.Zero(t, log.Summary.SuccessRate)
	assert.Zero(t, log.Summary.TotalOrganizations)
	assert.Empty(t, log.Results)
}

func TestRunReportsProgressInOrder(t *testing.T) {
	t.Parallel()

	s := connServer(t, nil)
	defer s.Close()

	client := api.NewClient("test-token", api.WithBaseURL(s.URL))

	var seen []int
	_, err := broker.Run(context.Background(), client, makeOrgs(3), broker.Options{
		TenantID:     "ten-1",
		ConnectionID: "conn-1",
		Progress: func(i, total int, result broker.ConnectionResult) {
			assert.Equal(t, 3, total)
			seen = append(seen, i)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestRunTimestampsComeFromTheClock(t *testing.T) {
	t.Parallel()

	s := connServer(t, nil)
	defer s.Close()

	client := api.NewClient("test-token", api.WithBaseURL(s.URL))

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	log, err := broker.Run(context.Background(), client, makeOrgs(1), broker.Options{
		TenantID:     "ten-1",
		ConnectionID: "conn-1",
		Now:          func() time.Time { return fixed },
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T12:00:00Z", log.Results[0].Timestamp)
	assert.Equal(t, "2025-06-01T12:00:00Z", log.Summary.Timestamp)
}

func TestWriteLog(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	log := &broker.ConnectionLog{
		Summary: broker.Summary{TotalOrganizations: 1, SuccessfulConnections: 1, SuccessRate: 100},
		Results: []broker.ConnectionResult{{OrgID: "a", OrgName: "alpha", Success: true}},
	}

	require.NoError(t, broker.WriteLog(fs, "/log.json", log))

	data, err := afero.ReadFile(fs, "/log.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"successful_connections": 1`)
	assert.Contains(t, string(data), `"org_id": "a"`)
}
