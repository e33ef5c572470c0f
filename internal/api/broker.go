package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// brokerAPIVersion pins the experimental Universal Broker integration endpoint
const brokerAPIVersion = "2024-02-08~experimental"

type brokerIntegrationBody struct {
	Data struct {
		IntegrationID string `json:"integration_id"`
		Type          string `json:"type"`
	} `json:"data"`
}

// ConnectBrokerOrg attaches one organization to a Universal Broker connection.
// A 409 from the API means the organization is already attached and is
// reported as a success.
func (c *Client) ConnectBrokerOrg(ctx context.Context, tenantID, connectionID, orgID, integrationID, integrationType string) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("/rest/tenants/%s/brokers/connections/%s/orgs/%s/integration",
		url.PathEscape(tenantID), url.PathEscape(connectionID), url.PathEscape(orgID))
	query := url.Values{}
	query.Set("version", brokerAPIVersion)

	var body brokerIntegrationBody
	body.Data.IntegrationID = integrationID
	body.Data.Type = integrationType

	response := map[string]interface{}{}
	err := c.Do(ctx, http.MethodPost, endpoint, query, "application/vnd.api+json", body, &response)
	if err != nil {
		var errResp *ErrorResponse
		if errors.As(err, &errResp) && errResp.IsConflict() {
			return map[string]interface{}{
				"status":  "already_connected",
				"message": "Organization already connected to broker",
			}, nil
		}
		return nil, err
	}

	if len(response) == 0 {
		response["status"] = "success"
	}

	return response, nil
}
