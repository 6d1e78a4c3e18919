package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"datachat-cli/internal/config"
	"datachat-cli/internal/logger"

	"github.com/google/uuid"
)

const (
	chatPath = "/api/chat"

	// DefaultTimeout applies when the config does not set one.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 8 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(cfg *config.Config) *Client {
	c := NewClientWithServer(cfg.Server)
	if cfg.TimeoutSeconds > 0 {
		c.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return c
}

func NewClientWithServer(serverURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

func (c *Client) setHeaders(req *http.Request, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
}

// Chat posts one question to /api/chat. Every failure is a *RequestError,
// except cancellation by the caller, which returns the context error.
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest) (*ChatResponse, []byte, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.New().String()
	c.setHeaders(req, requestID)

	log := logger.WithFields(logger.Fields{
		"request_id":  requestID,
		"force_agent": agentField(chatReq.ForceAgent),
	})
	start := time.Now()
	log.Debug("sending chat request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, c.requestFailed(ctx, log, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, c.requestFailed(ctx, log, fmt.Errorf("reading response: %w", err))
	}

	log = log.WithFields(logger.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("chat request rejected")
		return nil, respBody, &RequestError{
			Kind:       KindTransport,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	var chatResp ChatResponse
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(&chatResp); err != nil {
		log.WithError(err).Warn("chat response is not JSON")
		return nil, respBody, &RequestError{Kind: KindMalformed, Err: err}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after JSON body")
		}
		log.WithError(err).Warn("chat response has trailing data")
		return nil, respBody, &RequestError{Kind: KindMalformed, Err: err}
	}

	log.Debug("chat request complete")
	return &chatResp, respBody, nil
}

func (c *Client) requestFailed(ctx context.Context, log *logger.Entry, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warn("chat request timed out")
		return &RequestError{Kind: KindTimeout, Timeout: c.timeout, Err: ctx.Err()}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		log.Debug("chat request cancelled")
		return ctx.Err()
	}
	log.WithError(err).Warn("chat request failed")
	return &RequestError{Kind: KindTransport, Err: err}
}

func agentField(agent *string) string {
	if agent == nil {
		return AgentAuto
	}
	return *agent
}
