package gateway

import (
	"bytes"
	"context"
	"delivery-tracking-client/config"
	"encoding/json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for authenticated calls. An
// unauthorized response invalidates it, which logs the session out.
type TokenSource interface {
	Token() string
	Invalidate()
}

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(cfg *config.ApiConfig, tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

// envelope is the failure-signaling shape shared by every response body.
// The backend sometimes reports failure in-body under a 200 transport
// status, hence the dual check in do.
type envelope struct {
	Status  *int   `json:"status"`
	Message string `json:"message"`
	ErrMsg  string `json:"error"`
}

const maxServerMessage = 300

// do executes one API call and returns the raw body. A response counts as
// successful only when the transport status is 2xx and, if the body has a
// numeric status field, that field equals 200. The body is returned even
// alongside a RequestError so callers can classify failures further.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, authed bool) ([]byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("transId", uuid.New().String())
	req.Header.Set("transactionSrc", "delivery_tracking_client")
	if authed {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	_ = json.Unmarshal(raw, &env) // non-JSON bodies still produce a useful error below

	transportOK := resp.StatusCode >= 200 && resp.StatusCode < 300
	bodyOK := env.Status == nil || *env.Status == 200
	if transportOK && bodyOK {
		return raw, nil
	}

	if resp.StatusCode == http.StatusUnauthorized && authed {
		c.tokens.Invalidate()
	}

	statusCode := resp.StatusCode
	if transportOK && env.Status != nil {
		statusCode = *env.Status
	}

	c.logger.Warn("Request failed",
		zap.String("path", path),
		zap.Int("http_status", resp.StatusCode),
	)

	return raw, &RequestError{
		StatusCode:    statusCode,
		StatusText:    http.StatusText(statusCode),
		ServerMessage: serverMessage(env, raw),
		BaseURL:       c.baseURL,
	}
}

func serverMessage(env envelope, raw []byte) string {
	if env.Message != "" {
		return env.Message
	}
	if env.ErrMsg != "" {
		return env.ErrMsg
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > maxServerMessage {
		text = text[:maxServerMessage]
	}
	return text
}
