package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
)

// ProvisionClient talks to the identity provisioning/lookup endpoint:
// request {issuer} -> response {accountId}, or a failure the resolver
// surfaces as RESOLUTION_FAILED.
type ProvisionClient struct {
	endpoint string
	http     *http.Client
}

// NewProvisionClient creates a provisioning client for the given endpoint URL.
func NewProvisionClient(endpoint string, timeout time.Duration) *ProvisionClient {
	return &ProvisionClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type provisionRequest struct {
	Issuer string `json:"issuer"`
}

type provisionResponse struct {
	AccountID string `json:"accountId"`
}

// Provision resolves or creates the ledger account for an issuer.
// Every failure path returns RESOLUTION_FAILED so callers can retry with
// backoff without inspecting transport details.
func (c *ProvisionClient) Provision(ctx context.Context, issuer string) (string, error) {
	body, err := json.Marshal(provisionRequest{Issuer: issuer})
	if err != nil {
		return "", ledger.NewResolutionError(issuer, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", ledger.NewResolutionError(issuer, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", ledger.NewResolutionError(issuer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", ledger.NewResolutionError(issuer,
			fmt.Errorf("provisioner returned %d: %s", resp.StatusCode, msg))
	}

	var out provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", ledger.NewResolutionError(issuer, fmt.Errorf("decode response: %w", err))
	}
	if out.AccountID == "" {
		return "", ledger.NewResolutionError(issuer, fmt.Errorf("provisioner returned empty account id"))
	}
	return ledger.CanonicalID(out.AccountID), nil
}
