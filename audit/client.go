package audit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zeropapel/zeropapel-go/transport"
)

// Log is one audit trail entry.
type Log struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id,omitempty"`
	DocumentID int64     `json:"document_id,omitempty"`
	ActionType string    `json:"action_type"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// LogsParams narrows and pages the audit log listing.
type LogsParams struct {
	Page       int
	PerPage    int
	ActionType string
	DocumentID int64
	StartDate  string // ISO date
	EndDate    string // ISO date
}

// LogList is one page of audit logs.
type LogList struct {
	Logs        []Log `json:"logs"`
	Total       int   `json:"total"`
	Pages       int   `json:"pages"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
}

// DailyActivity is one day's event count in the stats period.
type DailyActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats is the dashboard aggregation for a trailing period.
type Stats struct {
	PeriodDays                 int             `json:"period_days"`
	TotalLogs                  int             `json:"total_logs"`
	TotalDocuments             int             `json:"total_documents"`
	DocumentsUploaded          int             `json:"documents_uploaded"`
	DocumentsSigned            int             `json:"documents_signed"`
	SignatureRequestsSent      int             `json:"signature_requests_sent"`
	SignatureRequestsCompleted int             `json:"signature_requests_completed"`
	ActionTypes                map[string]int  `json:"action_types"`
	DailyActivity              []DailyActivity `json:"daily_activity"`
}

// Client provides the typed /audit endpoints.
type Client struct {
	transport *transport.Client
}

// New creates a Client over the given transport.
func New(t *transport.Client) (*Client, error) {
	if t == nil {
		return nil, fmt.Errorf("[audit.New] transport is required")
	}
	return &Client{transport: t}, nil
}

// Logs returns one page of audit trail entries.
func (c *Client) Logs(ctx context.Context, params LogsParams) (*LogList, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(params.PerPage))
	}
	if params.ActionType != "" {
		query.Set("action_type", params.ActionType)
	}
	if params.DocumentID > 0 {
		query.Set("document_id", strconv.FormatInt(params.DocumentID, 10))
	}
	if params.StartDate != "" {
		query.Set("start_date", params.StartDate)
	}
	if params.EndDate != "" {
		query.Set("end_date", params.EndDate)
	}

	path := "/audit/logs"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var list LogList
	if err := c.transport.Do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Stats returns the dashboard aggregation for the trailing days window
// (the server defaults to 30 when days is zero).
func (c *Client) Stats(ctx context.Context, days int) (*Stats, error) {
	path := "/audit/stats"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}

	var stats Stats
	if err := c.transport.Do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
