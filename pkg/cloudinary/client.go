package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vouchlyhq/vouchly-backend/pkg/config"
)

// publicIDRe captures the path segment between /upload/ (optionally followed
// by a version marker) and the final extension of a delivery URL.
var publicIDRe = regexp.MustCompile(`/upload/(?:v\d+/)?(.+)\.[A-Za-z0-9]+$`)

var ErrNoPublicID = errors.New("cloudinary: public id not resolvable from url")

// Client talks to the Cloudinary admin/upload API. Only the destroy surface
// is wired; uploads happen client-side via the widget.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	now        func() time.Time
}

// NewClient builds a Cloudinary client from configuration.
func NewClient(cfg config.CloudinaryConfig) (*Client, error) {
	if cfg.CloudName == "" {
		return nil, errors.New("cloudinary cloud name is required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary api credentials are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.cloudinary.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		now:        time.Now,
	}, nil
}

type destroyResponse struct {
	Result string `json:"result"`
}

// Destroy issues a signed destroy request for the given video public id.
// A "not found" result is treated as success so retried deletes stay
// idempotent.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return errors.New("cloudinary: public id is required")
	}

	timestamp := strconv.FormatInt(c.now().UTC().Unix(), 10)
	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(publicID, timestamp))

	endpoint := fmt.Sprintf("%s/v1_1/%s/video/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("destroy %s: unexpected status %d", publicID, resp.StatusCode)
	}

	var payload destroyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode destroy response: %w", err)
	}
	switch payload.Result {
	case "ok", "not found":
		return nil
	default:
		return fmt.Errorf("destroy %s: provider result %q", publicID, payload.Result)
	}
}

// sign computes the request signature: SHA-1 over the sorted parameter string
// with the API secret appended, per the provider's signing scheme.
func (c *Client) sign(publicID, timestamp string) string {
	toSign := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	sum := sha1.Sum([]byte(toSign))
	return hex.EncodeToString(sum[:])
}

// ExtractPublicID derives the storage public id from a delivery URL when the
// row carries no explicit id. Returns ErrNoPublicID when the URL does not
// match the delivery pattern.
func ExtractPublicID(videoURL string) (string, error) {
	trimmed := strings.TrimSpace(videoURL)
	if trimmed == "" {
		return "", ErrNoPublicID
	}
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	m := publicIDRe.FindStringSubmatch(trimmed)
	if m == nil {
		return "", ErrNoPublicID
	}
	return m[1], nil
}
