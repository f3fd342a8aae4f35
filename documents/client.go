package documents

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zeropapel/zeropapel-go/transport"
)

// DocumentStatus values reported by the platform.
const (
	StatusUploaded = "uploaded"
	StatusPending  = "pending"
	StatusSigned   = "signed"
	StatusRejected = "rejected"
)

// Document is a document record as returned by the platform.
type Document struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
	SHA256Hash string    `json:"sha256_hash,omitempty"`
	SignedPath string    `json:"signed_path,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// SignatureRequest tracks one signer's progress on a document.
type SignatureRequest struct {
	ID            int64      `json:"id"`
	DocumentID    int64      `json:"document_id"`
	SignerEmail   string     `json:"signer_email"`
	Status        string     `json:"status"`
	SignatureType string     `json:"signature_type"`
	SentAt        time.Time  `json:"sent_at,omitempty"`
	SignedAt      *time.Time `json:"signed_at,omitempty"`
}

// ListParams narrows and pages the document listing.
type ListParams struct {
	Page    int
	PerPage int
	Status  string
	Search  string
}

// DocumentList is one page of documents.
type DocumentList struct {
	Documents   []Document `json:"documents"`
	Total       int        `json:"total"`
	Pages       int        `json:"pages"`
	CurrentPage int        `json:"current_page"`
	PerPage     int        `json:"per_page"`
}

// CreateSignatureRequestParams describes the signers to invite.
type CreateSignatureRequestParams struct {
	SignerEmails  []string `json:"signer_emails"`
	SignatureType string   `json:"signature_type"`
	Message       string   `json:"message,omitempty"`
}

// Verification is the integrity check result for a signed document.
type Verification struct {
	DocumentID int64  `json:"document_id"`
	Valid      bool   `json:"valid"`
	SHA256Hash string `json:"sha256_hash,omitempty"`
	Details    string `json:"details,omitempty"`
}

// Client provides the typed /documents endpoints. Every call rides the
// authenticated transport, so an expired access credential is refreshed
// and the call retried transparently.
type Client struct {
	transport *transport.Client
}

// New creates a Client over the given transport.
func New(t *transport.Client) (*Client, error) {
	if t == nil {
		return nil, fmt.Errorf("[documents.New] transport is required")
	}
	return &Client{transport: t}, nil
}

// List returns one page of the caller's documents.
func (c *Client) List(ctx context.Context, params ListParams) (*DocumentList, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(params.PerPage))
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	path := "/documents"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var list DocumentList
	if err := c.transport.Do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Get fetches a single document.
func (c *Client) Get(ctx context.Context, id int64) (*Document, error) {
	var resp struct {
		Document *Document `json:"document"`
	}
	if err := c.transport.Do(ctx, http.MethodGet, fmt.Sprintf("/documents/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Document, nil
}

// Delete removes a document and everything hanging off it.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.transport.Do(ctx, http.MethodDelete, fmt.Sprintf("/documents/%d", id), nil, nil)
}

// CreateSignatureRequest invites signers to a document.
func (c *Client) CreateSignatureRequest(ctx context.Context, documentID int64, params CreateSignatureRequestParams) ([]SignatureRequest, error) {
	var resp struct {
		SignatureRequests []SignatureRequest `json:"signature_requests"`
	}
	path := fmt.Sprintf("/documents/%d/signature-requests", documentID)
	if err := c.transport.Do(ctx, http.MethodPost, path, params, &resp); err != nil {
		return nil, err
	}
	return resp.SignatureRequests, nil
}

// ListSignatureRequests returns the signature requests for a document.
func (c *Client) ListSignatureRequests(ctx context.Context, documentID int64) ([]SignatureRequest, error) {
	var resp struct {
		SignatureRequests []SignatureRequest `json:"signature_requests"`
	}
	path := fmt.Sprintf("/documents/%d/signature-requests", documentID)
	if err := c.transport.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.SignatureRequests, nil
}

// Verify runs the server-side integrity check on a signed document.
func (c *Client) Verify(ctx context.Context, documentID int64) (*Verification, error) {
	var v Verification
	if err := c.transport.Do(ctx, http.MethodGet, fmt.Sprintf("/documents/%d/verify", documentID), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
