// Package mirror is the HTTP client for the consensus log's query service
// and the identity provisioning endpoint.
//
// The query service exposes topic messages over a paginated REST API:
//
//	GET {base}/api/v1/topics/{topic}/messages?order=asc&limit=N&timestamp=gt:<cursor>
//
// Responses carry a links.next path when more pages exist; its absence
// signals the end of the current backlog.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/normalize"
)

// DefaultPageLimit is the per-request message limit when none is configured.
const DefaultPageLimit = 100

// Client queries topic messages from the mirror REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a mirror client for the given base URL.
// The HTTP client carries its own timeout as a backstop; callers still
// pass bounded contexts per request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// MessagesPage is one page of topic messages.
type MessagesPage struct {
	Messages []normalize.RawMessage `json:"messages"`
	Links    struct {
		Next string `json:"next"`
	} `json:"links"`
}

// HasNext reports whether the mirror announced a further page.
func (p MessagesPage) HasNext() bool {
	return p.Links.Next != ""
}

// Messages fetches one page of messages for a topic, oldest first,
// strictly after the given consensus cursor (nanoseconds; 0 means from
// the beginning).
//
// Failures are wrapped as TRANSPORT_FAILURE: unreachable endpoint,
// non-success status, or an unreadable body all abort the caller's poll
// cycle and are retried on the next scheduled tick.
func (c *Client) Messages(ctx context.Context, topic string, afterNS int64, limit int) (MessagesPage, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	q := url.Values{}
	q.Set("order", "asc")
	q.Set("limit", fmt.Sprintf("%d", limit))
	if afterNS > 0 {
		q.Set("timestamp", "gt:"+ledger.FormatConsensusTimestamp(afterNS))
	}
	endpoint := fmt.Sprintf("%s/api/v1/topics/%s/messages?%s", c.baseURL, url.PathEscape(topic), q.Encode())

	return c.fetchPage(ctx, topic, endpoint)
}

// NextPage follows a links.next path returned by a prior page.
func (c *Client) NextPage(ctx context.Context, topic, next string) (MessagesPage, error) {
	return c.fetchPage(ctx, topic, c.baseURL+next)
}

func (c *Client) fetchPage(ctx context.Context, topic, endpoint string) (MessagesPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return MessagesPage{}, ledger.NewTransportError(topic, "", fmt.Errorf("build request: %w", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return MessagesPage{}, ledger.NewTransportError(topic, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return MessagesPage{}, ledger.NewTransportError(topic, "",
			fmt.Errorf("mirror returned %d: %s", resp.StatusCode, body))
	}

	var page MessagesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return MessagesPage{}, ledger.NewTransportError(topic, "", fmt.Errorf("decode page: %w", err))
	}
	return page, nil
}
