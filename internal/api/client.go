// Package api talks to the console's notification endpoints. The endpoints
// themselves are external collaborators; only their response shapes matter
// here.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"console-sync/internal/classify"
	"console-sync/internal/notify"
)

const defaultTimeout = 10 * time.Second

// Client is a thin client over the notification HTTP endpoints.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the console at baseURL.
func New(baseURL string) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: defaultTimeout},
	}
}

// wireNotification is the shape of one entry in the list response. The id
// is numeric for persisted notifications but may be a string or absent.
type wireNotification struct {
	ID       classify.EventID `json:"id"`
	Severity string           `json:"severity"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Details  string           `json:"details"`
}

// ListNotifications fetches the server-side notification list, newest
// first. A cache-busting timestamp parameter keeps intermediaries from
// serving a stale list.
func (c *Client) ListNotifications(ctx context.Context) ([]notify.Record, error) {
	u := fmt.Sprintf("%s/notifications?%s", c.base,
		url.Values{"_ts": {strconv.FormatInt(time.Now().UnixMilli(), 10)}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("list notifications: %s", responseError(resp))
	}

	var body struct {
		Notifications []wireNotification `json:"notifications"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode notification list: %w", err)
	}

	now := time.Now()
	records := make([]notify.Record, 0, len(body.Notifications))
	for _, n := range body.Notifications {
		records = append(records, notify.Record{
			ID:         string(n.ID),
			Severity:   notify.ParseSeverity(n.Severity),
			Title:      n.Title,
			Message:    n.Message,
			Details:    n.Details,
			ReceivedAt: now,
		})
	}
	return records, nil
}

// ClearAll asks the server to delete every notification.
func (c *Client) ClearAll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/notifications/clear-all", nil)
	if err != nil {
		return fmt.Errorf("build clear request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("clear notifications: %s", responseError(resp))
	}
	return nil
}

// responseError extracts the server's error message from a non-2xx
// response, falling back to the HTTP status.
func responseError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			return body.Error
		}
	}
	return resp.Status
}
