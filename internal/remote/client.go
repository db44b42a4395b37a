package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

const maxErrorBodySize = 64 << 10

// Error is a failed call to the record store: a non-2xx response or a
// transport failure (StatusCode 0). Detail is meant to be shown to the user
// as is.
type Error struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Detail
	}
	return fmt.Sprintf("record store returned %d: %s", e.StatusCode, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Detail returns the user-facing detail of err: the record store's message
// for an *Error, err.Error() otherwise.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) && re.Detail != "" {
		return re.Detail
	}
	return err.Error()
}

// Client talks to the HCP record store over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for baseURL. A zero timeout means requests wait for
// the server indefinitely unless their context says otherwise.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a Client using hc for transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		logger:     slog.Default(),
	}
}

// ListHCPs fetches the full HCP roster.
func (c *Client) ListHCPs(ctx context.Context) ([]model.HCP, error) {
	var hcps []model.HCP
	if err := c.do(ctx, http.MethodGet, "/hcps", nil, &hcps); err != nil {
		return nil, err
	}
	if hcps == nil {
		hcps = []model.HCP{}
	}
	return hcps, nil
}

// CreateHCP creates an HCP and returns the stored record.
func (c *Client) CreateHCP(ctx context.Context, in model.NewHCP) (model.HCP, error) {
	var h model.HCP
	if err := c.do(ctx, http.MethodPost, "/hcps/", in, &h); err != nil {
		return model.HCP{}, err
	}
	return h, nil
}

// LogInteraction stores a form-submitted interaction.
func (c *Client) LogInteraction(ctx context.Context, in model.InteractionInput) (model.Interaction, error) {
	var ix model.Interaction
	if err := c.do(ctx, http.MethodPost, "/interactions/", in, &ix); err != nil {
		return model.Interaction{}, err
	}
	return ix, nil
}

// LogChat submits free chat text for the record store to turn into an
// interaction.
func (c *Client) LogChat(ctx context.Context, in model.ChatInput) (model.ChatReply, error) {
	var reply model.ChatReply
	if err := c.do(ctx, http.MethodPost, "/interactions/chat", in, &reply); err != nil {
		return model.ChatReply{}, err
	}
	return reply, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("record store unreachable", "method", method, "path", path, "error", err)
		return &Error{Detail: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		rerr := &Error{StatusCode: resp.StatusCode, Detail: errorDetail(resp.StatusCode, raw)}
		c.logger.Warn("record store error", "method", method, "path", path, "status", resp.StatusCode, "detail", rerr.Detail)
		return rerr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// errorDetail extracts a FastAPI-style {"detail": ...} message, falling back
// to the raw body and then the status text.
func errorDetail(status int, raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 && string(body.Detail) != "null" {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		return string(body.Detail)
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return http.StatusText(status)
}
