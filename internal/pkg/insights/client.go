// Package insights is the client for the aggregator insights endpoint
// (zomato, swiggy, takeaway, subs).
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/upstream"
)

type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// envelope is the outer response object. Body may itself be a
// JSON-encoded string that needs one extra decode.
type envelope struct {
	Body json.RawMessage `json:"body"`
}

func (c *Client) Fetch(ctx context.Context, req domain.InsightsRequest) (*domain.PlatformInsightsResult, error) {
	q := url.Values{}
	q.Set("platformId", req.PlatformID)
	q.Set("startDate", req.StartDate)
	q.Set("endDate", req.EndDate)
	if req.GroupBy != "" && req.GroupBy != domain.GroupByTotal {
		q.Set("groupBy", string(req.GroupBy))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/insights?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequest: %w", err)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, &upstream.NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &upstream.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstream.StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	payload, err := unwrap(raw)
	if err != nil {
		return nil, &upstream.ParseError{Err: err}
	}

	var result domain.PlatformInsightsResult
	if err := sonic.Unmarshal(payload, &result); err != nil {
		return nil, &upstream.ParseError{Err: err}
	}

	return &result, nil
}

// unwrap peels the outer envelope. The body field is sometimes a plain
// JSON object and sometimes a JSON string holding the object; only one
// extra layer is ever present.
func unwrap(raw []byte) ([]byte, error) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err == nil && len(env.Body) > 0 {
		raw = env.Body
	}

	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := sonic.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("unwrap body string: %w", err)
		}
		raw = []byte(inner)
	}

	return raw, nil
}
