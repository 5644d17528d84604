// Package api is the HTTP client for the linekeeper server. It mirrors the
// server's JSON API one method per endpoint and maps HTTP statuses back to
// the shared sentinel errors.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linekeeper/linekeeper/internal/common"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken attaches a bearer token to all subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Line is the client-side view of a line returned by the server.
type Line struct {
	LineID       int64     `json:"line_id"`
	Name         string    `json:"name"`
	Creator      string    `json:"creator"`
	CreatedAt    time.Time `json:"created_at"`
	MemberCount  int64     `json:"member_count"`
	MessageCount int64     `json:"message_count"`
}

// Message is one decoded ledger entry.
type Message struct {
	Seq        int64
	Sender     string
	Ciphertext []byte
	SentAt     time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var buf io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if respBody != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// statusError converts an error response to the matching sentinel error so
// callers can use errors.Is regardless of transport.
func statusError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrInvalidInput, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrForbidden, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrAlreadyMember, msg)
	default:
		return fmt.Errorf("%w: %s", common.ErrInternal, msg)
	}
}

// IssueToken exchanges an identity for a bearer token and installs it on
// the client.
func (c *Client) IssueToken(ctx context.Context, identity string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/token", map[string]string{"identity": identity}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

// CreateLine creates a new line and returns its id.
func (c *Client) CreateLine(ctx context.Context, name string) (int64, error) {
	var out struct {
		LineID int64 `json:"line_id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/lines", map[string]string{"name": name}, &out)
	return out.LineID, err
}

// Join adds the authenticated identity to the line.
func (c *Client) Join(ctx context.Context, lineID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/lines/%d/join", lineID), nil, nil)
}

// Line fetches line metadata and counts.
func (c *Client) Line(ctx context.Context, lineID int64) (*Line, error) {
	var out Line
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/lines/%d", lineID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LineCount returns the total number of lines on the server.
func (c *Client) LineCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/lines/count", nil, &out)
	return out.Count, err
}

// IsMember reports whether identity belongs to the line.
func (c *Client) IsMember(ctx context.Context, lineID int64, identity string) (bool, error) {
	var out struct {
		Member bool `json:"member"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/lines/%d/members/%s", lineID, identity), nil, &out)
	return out.Member, err
}

// Post appends one encrypted entry and returns its sequence number.
func (c *Client) Post(ctx context.Context, lineID int64, ciphertext []byte) (int64, error) {
	var out struct {
		Seq int64 `json:"seq"`
	}
	req := map[string]string{"ciphertext": base64.StdEncoding.EncodeToString(ciphertext)}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/lines/%d/messages", lineID), req, &out)
	return out.Seq, err
}

// Message fetches the ledger entry at (lineID, seq).
func (c *Client) Message(ctx context.Context, lineID, seq int64) (*Message, error) {
	var out struct {
		Seq        int64     `json:"seq"`
		Sender     string    `json:"sender"`
		Ciphertext string    `json:"ciphertext"`
		SentAt     time.Time `json:"sent_at"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/lines/%d/messages/%d", lineID, seq), nil, &out); err != nil {
		return nil, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(out.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}
	return &Message{Seq: out.Seq, Sender: out.Sender, Ciphertext: ciphertext, SentAt: out.SentAt}, nil
}

// MessageCount returns the number of ledger entries for the line.
func (c *Client) MessageCount(ctx context.Context, lineID int64) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/lines/%d/messages/count", lineID), nil, &out)
	return out.Count, err
}

// SecretHandle returns the engine handle of the line's shared secret.
func (c *Client) SecretHandle(ctx context.Context, lineID int64) (string, error) {
	var out struct {
		Handle string `json:"handle"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/lines/%d/secret", lineID), nil, &out)
	return out.Handle, err
}
