package host

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/errors"
	"github.com/kbukum/nativefetch/logger"
	"github.com/kbukum/nativefetch/observability"
	"github.com/kbukum/nativefetch/resilience"
	"github.com/kbukum/nativefetch/validation"
)

// Host services bridge commands with a real HTTP stack.
type Host struct {
	cfg      Config
	scope    *Scope
	clients  *clientFactory
	table    *resourceTable
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	log      *logger.Logger
}

// Option customizes a Host.
type Option func(*Host)

// WithMetrics records command metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Host) { h.metrics = m }
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Host) { h.log = l }
}

// New creates a host from cfg.
func New(cfg Config, opts ...Option) (*Host, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scope, err := NewScope(cfg.Scope)
	if err != nil {
		return nil, err
	}
	clients, err := newClientFactory(cfg)
	if err != nil {
		return nil, err
	}

	h := &Host{
		cfg:     cfg,
		scope:   scope,
		clients: clients,
		table:   newResourceTable(),
		log:     logger.WithComponent("host"),
	}
	h.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "host.fetch",
		MaxConcurrent: cfg.MaxConcurrent,
		MaxWait:       cfg.MaxWait,
	})
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// pendingRequest is an exchange started by Fetch and not yet claimed by FetchSend.
type pendingRequest struct {
	url     string
	ctx     context.Context
	cancel  context.CancelFunc
	release func()
	done    chan struct{}

	mu       sync.Mutex
	canceled bool
	expired  bool
	resp     *http.Response
	err      error
}

func (p *pendingRequest) abort() {
	p.mu.Lock()
	p.canceled = true
	p.mu.Unlock()
	p.cancel()
}

func (p *pendingRequest) wasCanceled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canceled
}

// close aborts the exchange and frees its slot once the round trip returns.
func (p *pendingRequest) close() {
	p.abort()
	p.finish()
}

// expire frees an exchange whose timeout ran out before anyone claimed it.
func (p *pendingRequest) expire() {
	p.mu.Lock()
	p.expired = true
	p.mu.Unlock()
	p.cancel()
	p.finish()
}

func (p *pendingRequest) finish() {
	go func() {
		<-p.done
		p.mu.Lock()
		resp := p.resp
		p.mu.Unlock()
		if resp != nil {
			_ = resp.Body.Close()
		}
		p.release()
	}()
}

// unclaimed explains why a waiting FetchSend lost rid to someone else.
func (p *pendingRequest) unclaimed(rid bridge.ResourceID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.canceled:
		return errors.Canceled(uint32(rid))
	case p.expired:
		return errors.FetchFailed(p.url, context.DeadlineExceeded)
	default:
		return errors.ResourceNotFound(uint32(rid))
	}
}

// bodyResource is an unread response body.
type bodyResource struct {
	url     string
	body    io.ReadCloser
	cancel  context.CancelFunc
	release func()
}

func (b *bodyResource) close() {
	_ = b.body.Close()
	b.cancel()
	b.release()
}

// Fetch validates cc, starts the exchange in the background and returns the
// request's resource id.
func (h *Host) Fetch(ctx context.Context, cc bridge.ClientConfig) (bridge.ResourceID, error) {
	if err := validation.Validate(cc); err != nil {
		return 0, err
	}
	target, err := url.Parse(cc.URL)
	if err != nil {
		return 0, errors.InvalidArgs(bridge.CmdFetch, err.Error())
	}
	if !h.scope.Allows(target) {
		return 0, errors.ScopeDenied(cc.URL)
	}
	client, err := h.clients.clientFor(&cc)
	if err != nil {
		return 0, errors.InvalidArgs(bridge.CmdFetch, err.Error())
	}

	release, err := h.bulkhead.Acquire(ctx)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, errors.HostBusy(h.bulkhead.MaxConcurrent())
	}

	// The exchange outlives this call, so it gets its own context.
	exchangeCtx, cancel := context.WithTimeout(context.Background(), h.cfg.Timeout)
	req, err := h.newRequest(exchangeCtx, &cc)
	if err != nil {
		cancel()
		release()
		return 0, errors.InvalidArgs(bridge.CmdFetch, err.Error())
	}

	p := &pendingRequest{url: cc.URL, ctx: exchangeCtx, cancel: cancel, release: release, done: make(chan struct{})}
	rid := h.table.add(p)
	h.metrics.ResourceOpened(ctx)
	h.metrics.FetchStarted(ctx)

	// Nobody sent rid before the exchange ended: reclaim its slot and entry.
	context.AfterFunc(exchangeCtx, func() {
		if h.table.takeIf(rid, p) {
			p.expire()
			h.dropped(context.Background())
			h.log.Debug("fetch expired unclaimed", logger.Fields(logger.FieldRID, uint32(rid), logger.FieldURL, p.url))
		}
	})

	go func() {
		defer close(p.done)
		resp, err := client.Do(req)
		p.mu.Lock()
		p.resp, p.err = resp, err
		p.mu.Unlock()
	}()

	h.log.Debug("fetch started", logger.Fields(logger.FieldRID, uint32(rid), logger.FieldMethod, req.Method, logger.FieldURL, cc.URL))
	return rid, nil
}

func (h *Host) newRequest(ctx context.Context, cc *bridge.ClientConfig) (*http.Request, error) {
	method := cc.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if cc.Data != nil {
		body = bytes.NewReader(cc.Data)
	}

	req, err := http.NewRequestWithContext(ctx, method, cc.URL, body)
	if err != nil {
		return nil, err
	}
	for _, kv := range cc.Headers {
		req.Header.Add(kv[0], kv[1])
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.cfg.UserAgent)
	}
	return req, nil
}

// FetchSend waits for the response head of rid and hands the body over to a
// new resource id carried in the result. The request stays in the table
// while FetchSend waits, so Cancel can still abort it.
func (h *Host) FetchSend(ctx context.Context, rid bridge.ResourceID) (*bridge.FetchSendResponse, error) {
	res, ok := h.table.get(rid)
	if !ok {
		return nil, errors.ResourceNotFound(uint32(rid))
	}
	p, ok := res.(*pendingRequest)
	if !ok {
		return nil, errors.InvalidArgs(bridge.CmdFetchSend, fmt.Sprintf("resource id %d is not a pending request", rid))
	}

	select {
	case <-p.done:
	case <-ctx.Done():
		if h.table.takeIf(rid, p) {
			p.close()
			h.dropped(context.WithoutCancel(ctx))
		}
		return nil, ctx.Err()
	}
	if !h.table.takeIf(rid, p) {
		return nil, p.unclaimed(rid)
	}
	h.metrics.ResourceClosed(ctx)

	p.mu.Lock()
	resp, err := p.resp, p.err
	p.mu.Unlock()
	if err == nil && p.ctx.Err() != nil {
		// The head arrived but the exchange ended before the claim; its body is dead.
		_ = resp.Body.Close()
		err = p.ctx.Err()
	}
	if err != nil {
		p.cancel()
		p.release()
		h.metrics.FetchFinished(ctx)
		if p.wasCanceled() {
			return nil, errors.Canceled(uint32(rid))
		}
		h.log.Warn("fetch failed", logger.Fields(logger.FieldRID, uint32(rid), logger.FieldURL, p.url, logger.FieldError, err.Error()))
		return nil, errors.FetchFailed(p.url, err)
	}

	bodyRID := h.table.add(&bodyResource{url: p.url, body: resp.Body, cancel: p.cancel, release: p.release})
	h.metrics.ResourceOpened(ctx)

	out := &bridge.FetchSendResponse{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    headerPairs(resp.Header),
		RID:        bodyRID,
		URL:        resp.Request.URL.String(),
	}
	h.log.Debug("fetch sent", logger.Fields(logger.FieldRID, uint32(rid), "body_rid", uint32(bodyRID), logger.FieldStatus, resp.StatusCode))
	return out, nil
}

// ReadBody reads the whole body behind rid and releases it.
func (h *Host) ReadBody(ctx context.Context, rid bridge.ResourceID) (bridge.ByteArray, error) {
	res, ok := h.table.get(rid)
	if !ok {
		return nil, errors.ResourceNotFound(uint32(rid))
	}
	b, ok := res.(*bodyResource)
	if !ok {
		return nil, errors.InvalidArgs(bridge.CmdFetchReadBody, fmt.Sprintf("resource id %d is not a response body", rid))
	}
	if _, ok := h.table.take(rid); !ok {
		return nil, errors.ResourceNotFound(uint32(rid))
	}
	defer func() {
		b.close()
		h.metrics.ResourceClosed(context.WithoutCancel(ctx))
		h.metrics.FetchFinished(context.WithoutCancel(ctx))
	}()

	stop := context.AfterFunc(ctx, b.cancel)
	defer stop()

	data, err := io.ReadAll(io.LimitReader(b.body, h.cfg.MaxBodySize+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.FetchFailed(b.url, err).WithDetail("rid", uint32(rid))
	}
	if int64(len(data)) > h.cfg.MaxBodySize {
		return nil, errors.BodyTooLarge(uint32(rid), h.cfg.MaxBodySize)
	}
	if data == nil {
		data = []byte{}
	}
	h.metrics.RecordBodyBytes(ctx, len(data))
	return data, nil
}

// Cancel aborts a pending exchange or drops an unread body. Either way rid
// leaves the table and its slot is freed; a FetchSend already waiting on rid
// reports REQUEST_CANCELED.
func (h *Host) Cancel(ctx context.Context, rid bridge.ResourceID) error {
	res, ok := h.table.take(rid)
	if !ok {
		return errors.ResourceNotFound(uint32(rid))
	}
	res.close()
	h.dropped(ctx)
	h.log.Debug("fetch canceled", logger.Fields(logger.FieldRID, uint32(rid)))
	return nil
}

// dropped records a resource leaving the table before its exchange finished.
func (h *Host) dropped(ctx context.Context) {
	h.metrics.ResourceClosed(ctx)
	h.metrics.FetchFinished(ctx)
}

// Open returns the number of live resources.
func (h *Host) Open() int { return h.table.len() }

// InFlight returns the number of exchanges holding a slot.
func (h *Host) InFlight() int { return h.bulkhead.InUse() }

// Close aborts every pending exchange and drops every unread body.
func (h *Host) Close() error {
	for _, r := range h.table.drain() {
		r.close()
	}
	h.clients.close()
	return nil
}

// statusText strips the numeric prefix of resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode)); ok {
		return text
	}
	if resp.Status != "" && resp.Status != fmt.Sprint(resp.StatusCode) {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

// headerPairs lowercases names and orders them by name, keeping the order of
// repeated values.
func headerPairs(h http.Header) [][2]string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]string, 0, len(h))
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, v := range h[name] {
			pairs = append(pairs, [2]string{lower, v})
		}
	}
	return pairs
}
