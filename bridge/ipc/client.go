package ipc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/http2"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/errors"
	"github.com/kbukum/nativefetch/logger"
)

// PathPrefix is the route prefix of IPC commands.
const PathPrefix = "/ipc/"

// maxErrorBody caps how much of a failed response is decoded.
const maxErrorBody = 1 << 20

// Client is a bridge.Invoker that reaches a host over HTTP.
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
}

var _ bridge.Invoker = (*Client)(nil)

// New creates an IPC client.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var transport http.RoundTripper
	if cfg.H2C {
		transport = &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		}
	} else {
		t := http.DefaultTransport.(*http.Transport).Clone()
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			t.TLSClientConfig = tlsCfg
		}
		transport = t
	}

	return &Client{
		cfg:        cfg,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
	}, nil
}

// Invoke posts args to the command route and decodes the result into out.
// Host failures come back as *errors.AppError.
func (c *Client) Invoke(ctx context.Context, cmd string, args, out any) error {
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("ipc: encode args for %s: %w", cmd, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+PathPrefix+url.PathEscape(cmd), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ipc: build request for %s: %w", cmd, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ipc: %s: %w", cmd, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(cmd, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("ipc: decode result of %s: %w", cmd, err)
	}
	return nil
}

// Close drops idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func decodeError(cmd string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errors.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Code != "" {
		return errors.FromResponse(body, resp.StatusCode)
	}
	return errors.New(errors.ErrCodeInternal,
		fmt.Sprintf("ipc: %s returned HTTP %d: %s", cmd, resp.StatusCode, strings.TrimSpace(string(raw))),
		resp.StatusCode)
}
