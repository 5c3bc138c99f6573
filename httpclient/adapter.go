package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/logger"
	"github.com/kbukum/nativefetch/observability"
	"github.com/kbukum/nativefetch/resilience"
	"github.com/kbukum/nativefetch/util"
)

// cancelTimeout bounds the fetch_cancel sent for an abandoned exchange.
const cancelTimeout = 5 * time.Second

// Adapter services requests through a bridge.Invoker. It holds no state
// besides its configuration and is safe for concurrent use.
type Adapter struct {
	invoker bridge.Invoker
	config  Config
	retry   *resilience.RetryConfig
	log     *logger.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for per-command debug output.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New creates an adapter that sends every request through invoker.
func New(invoker bridge.Invoker, cfg Config, opts ...Option) (*Adapter, error) {
	if invoker == nil {
		return nil, fmt.Errorf("httpclient: invoker is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		invoker: invoker,
		config:  cfg,
		log:     logger.WithComponent("httpclient"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.Retry != nil {
		retry := *cfg.Retry
		if retry.RetryIf == nil {
			retry.RetryIf = IsRetryable
		}
		if retry.OnRetry == nil {
			log := a.log
			retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
				log.Warn("retrying request", logger.MergeWithDuration(
					logger.Fields("attempt", attempt, logger.FieldError, err.Error()), backoff))
			}
		}
		a.retry = &retry
	}
	return a, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return a.config.Name
}

// Config returns the adapter's configuration.
func (a *Adapter) Config() Config {
	return a.config
}

// Do sends req through the bridge and returns the normalized response.
//
// The body in req.Data is encoded as follows: strings as UTF-8, byte slices
// and readers as-is, and maps, slices, arrays, structs and non-nil pointers
// as JSON. nil, numbers, booleans, funcs and chans send no body.
//
// A response outside 2xx is returned together with an *Error carrying it.
// Failures of the bridge are returned unchanged.
func (a *Adapter) Do(ctx context.Context, req *Request) (resp *Response, err error) {
	if req == nil {
		return nil, newOptionError(nil, fmt.Errorf("request is nil"))
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanAdapterRequest)
	defer func() { observability.EndSpan(span, err) }()

	cc, err := a.normalize(req)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, methodOrDefault(cc.Method))
	observability.SetSpanAttribute(ctx, observability.AttrHTTPURL, cc.URL)

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	if a.retry != nil {
		return resilience.Retry(ctx, *a.retry, func(ctx context.Context) (*Response, error) {
			return a.send(ctx, req, cc)
		})
	}
	return a.send(ctx, req, cc)
}

func (a *Adapter) send(ctx context.Context, req *Request, cc *bridge.ClientConfig) (*Response, error) {
	raw, body, err := roundTrip(ctx, a.invoker, a.log, cc)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Data:       decodeData(util.Coalesce(req.ResponseType, a.config.ResponseType), body),
		Status:     raw.Status,
		StatusText: statusText(raw.Status, raw.StatusText),
		Headers:    flattenHeaders(raw.Headers),
		Config:     req,
		URL:        raw.URL,
		Body:       body,
	}
	observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, resp.Status)

	if !resp.IsSuccess() {
		return resp, newStatusError(resp, cc)
	}
	return resp, nil
}

// normalize builds the bridge request: URL, ordered headers with auth, and body.
func (a *Adapter) normalize(req *Request) (*bridge.ClientConfig, error) {
	responseType := util.Coalesce(req.ResponseType, a.config.ResponseType)
	if !responseType.valid() {
		return nil, newOptionError(req, fmt.Errorf("unknown response type %q", responseType))
	}

	data, contentType, err := encodeBody(req.Data)
	if err != nil {
		return nil, newOptionError(req, err)
	}

	headers := normalizeHeaders(a.config.Headers, req.Headers)
	if len(data) > 0 && contentType != "" && !headers.has("Content-Type") {
		headers = append(headers, [2]string{"Content-Type", contentType})
	}

	auth := a.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	params := auth.apply(&headers, req.Params)

	base := util.Coalesce(req.BaseURL, a.config.BaseURL)

	cc := &bridge.ClientConfig{
		Method:  strings.ToUpper(req.Method),
		URL:     buildURL(base, req.URL, params),
		Headers: headers,
		Proxy:   a.config.Proxy,
	}
	if len(data) > 0 {
		cc.Data = data
	}
	if req.Proxy != nil {
		cc.Proxy = req.Proxy
	}

	cc.MaxRedirections = a.config.MaxRedirections
	if req.MaxRedirections != nil {
		cc.MaxRedirections = req.MaxRedirections
	}

	if connectTimeout := util.Coalesce(req.ConnectTimeout, a.config.ConnectTimeout); connectTimeout > 0 {
		cc.ConnectTimeout = util.Ptr(connectTimeout.Milliseconds())
	}
	return cc, nil
}

// roundTrip runs fetch, fetch_send and fetch_read_body for cc. The body is
// read with the rid from the fetch_send result. When ctx ends mid-exchange
// the outstanding handle is canceled on a detached context.
func roundTrip(ctx context.Context, inv bridge.Invoker, log *logger.Logger, cc *bridge.ClientConfig) (bridge.FetchSendResponse, []byte, error) {
	var rid bridge.Message[bridge.ResourceID]
	if err := call(ctx, inv, log, bridge.CmdFetch, 0, bridge.FetchArgs{ClientConfig: *cc}, &rid); err != nil {
		return bridge.FetchSendResponse{}, nil, err
	}

	var sent bridge.Message[bridge.FetchSendResponse]
	if err := call(ctx, inv, log, bridge.CmdFetchSend, rid.Value, bridge.RIDArgs{RID: rid.Value}, &sent); err != nil {
		abandon(ctx, inv, log, rid.Value)
		return bridge.FetchSendResponse{}, nil, err
	}
	raw := sent.Value

	var body bridge.Message[bridge.ByteArray]
	if err := call(ctx, inv, log, bridge.CmdFetchReadBody, raw.RID, bridge.RIDArgs{RID: raw.RID}, &body); err != nil {
		abandon(ctx, inv, log, raw.RID)
		return raw, nil, err
	}
	return raw, body.Value, nil
}

func call(ctx context.Context, inv bridge.Invoker, log *logger.Logger, cmd string, rid bridge.ResourceID, args, out any) error {
	start := time.Now()
	err := inv.Invoke(ctx, cmd, args, out)
	fields := logger.CommandFields(cmd, uint32(rid))
	if err != nil {
		fields[logger.FieldError] = err.Error()
	}
	log.WithContext(ctx).Debug("bridge call", logger.MergeWithDuration(fields, time.Since(start)))
	return err
}

// abandon tells the host to drop rid after a failed step so its slot is not
// held until the host timeout. Errors are only logged.
func abandon(ctx context.Context, inv bridge.Invoker, log *logger.Logger, rid bridge.ResourceID) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
	defer cancel()
	if err := inv.Invoke(cctx, bridge.CmdFetchCancel, bridge.RIDArgs{RID: rid}, nil); err != nil {
		log.Debug("fetch_cancel failed", logger.Fields(logger.FieldRID, uint32(rid), logger.FieldError, err.Error()))
	}
}

// decodeData shapes body according to the response type.
func decodeData(t ResponseType, body []byte) any {
	switch t {
	case ResponseBytes:
		if body == nil {
			return []byte{}
		}
		return body
	case ResponseText:
		return string(body)
	}
	text := string(body)
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return text
	}
	return v
}

// flattenHeaders keeps the last value of every header name.
func flattenHeaders(headers [][2]string) map[string]string {
	out := make(map[string]string, len(headers))
	for _, kv := range headers {
		out[kv[0]] = kv[1]
	}
	return out
}

// statusText returns the canonical phrase for status, or fallback when the
// status is unknown.
func statusText(status int, fallback string) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fallback
}

func methodOrDefault(m string) string {
	if m == "" {
		return http.MethodGet
	}
	return m
}
