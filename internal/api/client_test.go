package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snyk-labs/orgscale/internal/api"
)

func TestListGroupOrgs(t *testing.T) {
	t.Parallel()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/group/group-1/orgs", r.URL.Path)
		assert.Equal(t, "token test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("perPage"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"group-1","name":"My Group","orgs":[{"id":"org-1","name":"one","url":"https://api.snyk.io/org/one"}]}`))
	}))
	defer s.Close()

	client := api.NewClient("test-token", api.WithBaseURL(s.URL))

	page, err := client.ListGroupOrgs(context.Background(), "group-1", 2, 100)
	require.NoError(t, err)
	assert.Equal(t, "My Group", page.Name)
	require.Len(t, page.Orgs, 1)
	assert.Equal(t, "org-1", page.Orgs[0].ID)
}

func TestErrorResponsePredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		predicate func(*api.ErrorResponse) bool
	}{
		{http.StatusUnauthorized, (*api.ErrorResponse).IsUnauthorized},
		{http.StatusNotFound, (*api.ErrorResponse).IsNotFound},
		{http.StatusConflict, (*api.ErrorResponse).IsConflict},
		{http.StatusTooManyRequests, (*api.ErrorResponse).IsRateLimited},
		{http.StatusBadGateway, (*api.ErrorResponse).IsServerError},
	}

	for _, tc := range tests {
		tc := tc
		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))

		client := api.NewClient("test-token", api.WithBaseURL(s.URL))
		_, err := client.ListGroupOrgs(context.Background(), "group-1", 1, 100)
		s.Close()

		var errResp *api.ErrorResponse
		require.ErrorAs(t, err, &errResp)
		assert.Equal(t, tc.status, errResp.StatusCode)
		assert.True(t, tc.predicate(errResp))
	}
}

func TestConnectBrokerOrg(t *testing.T) {
	t.Parallel()

	t.Run("sends the integration payload", func(t *testing.T) {
		t.Parallel()

		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/rest/tenants/ten-1/brokers/connections/conn-1/orgs/org-1/integration", r.URL.Path)
			assert.Equal(t, "2024-02-08~experimental", r.URL.Query().Get("version"))
			assert.Equal(t, "application/vnd.api+json", r.Header.Get("Content-Type"))

			var body struct {
				Data struct {
					IntegrationID string `json:"integration_id"`
					Type          string `json:"type"`
				} `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "int-1", body.Data.IntegrationID)
			assert.Equal(t, "github", body.Data.Type)

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"id":"org-1"}}`))
		}))
		defer s.Close()

		client := api.NewClient("test-token", api.WithBaseURL(s.URL))
		response, err := client.ConnectBrokerOrg(context.Background(), "ten-1", "conn-1", "org-1", "int-1", "github")
		require.NoError(t, err)
		assert.Contains(t, response, "data")
	})

	t.Run("empty success body becomes a status marker", func(t *testing.T) {
		t.Parallel()

		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))
		defer s.Close()

		client := api.NewClient("test-token", api.WithBaseURL(s.URL))
		response, err := client.ConnectBrokerOrg(context.Background(), "ten-1", "conn-1", "org-1", "int-1", "github")
		require.NoError(t, err)
		assert.Equal(t, "success", response["status"])
	})

	t.Run("conflict means already connected", func(t *testing.T) {
		t.Parallel()

		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "already there", http.StatusConflict)
		}))
		defer s.Close()

		client := api.NewClient("test-token", api.WithBaseURL(s.URL))
		response, err := client.ConnectBrokerOrg(context.Background(), "ten-1", "conn-1", "org-1", "int-1", "github")
		require.NoError(t, err)
		assert.Equal(t, "already_connected", response["status"])
	})

	t.Run("server error is returned", func(t *testing.T) {
		t.Parallel()

		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer s.Close()

		client := api.NewClient("test-token", api.WithBaseURL(s.URL))
		_, err := client.ConnectBrokerOrg(context.Background(), "ten-1", "conn-1", "org-1", "int-1", "github")

		var errResp *api.ErrorResponse
		require.ErrorAs(t, err, &errResp)
		assert.True(t, errResp.IsServerError())
	})
}

func TestDebugDumpDoesNotChangeResults(t *testing.T) {
	t.Parallel()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"My Group","orgs":[]}`))
	}))
	defer s.Close()

	var debug bytes.Buffer
	client := api.NewClient("test-token", api.WithBaseURL(s.URL), api.WithDebug(&debug))

	page, err := client.ListGroupOrgs(context.Background(), "group-1", 1, 100)
	require.NoError(t, err)
	assert.Equal(t, "My Group", page.Name)

	assert.Contains(t, debug.String(), "DEBUG request")
	assert.Contains(t, debug.String(), "DEBUG response")
}

func TestTransportErrorIsNotErrorResponse(t *testing.T) {
	t.Parallel()

	client := api.NewClient("test-token", api.WithBaseURL("http://127.0.0.1:1"))
	_, err := client.ListGroupOrgs(context.Background(), "group-1", 1, 100)
	require.Error(t, err)

	var errResp *api.ErrorResponse
	assert.False(t, errors.As(err, &errResp))
}
