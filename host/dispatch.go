package host

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/errors"
	"github.com/kbukum/nativefetch/logger"
	"github.com/kbukum/nativefetch/observability"
)

type handler func(ctx context.Context, args json.RawMessage) (any, error)

// Dispatcher routes bridge commands to a Host.
type Dispatcher struct {
	host     *Host
	handlers map[string]handler
}

// NewDispatcher registers the HTTP plugin commands of h.
func NewDispatcher(h *Host) *Dispatcher {
	d := &Dispatcher{host: h}
	d.handlers = map[string]handler{
		bridge.CmdFetch:         d.fetch,
		bridge.CmdFetchSend:     d.fetchSend,
		bridge.CmdFetchReadBody: d.fetchReadBody,
		bridge.CmdFetchCancel:   d.fetchCancel,
	}
	return d
}

// Host returns the host behind the dispatcher.
func (d *Dispatcher) Host() *Host { return d.host }

// Dispatch runs cmd with JSON args and returns a JSON-encodable result.
// Failures are *errors.AppError, or the context error.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd string, args json.RawMessage) (any, error) {
	h, ok := d.handlers[cmd]
	if !ok {
		return nil, errors.UnknownCommand(cmd)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanHostCommand)
	observability.SetSpanAttribute(ctx, observability.AttrCommand, cmd)
	start := time.Now()

	result, err := h(ctx, args)

	status := "ok"
	if err != nil {
		status = string(errors.Wrap(err).Code)
		observability.SetSpanAttribute(ctx, observability.AttrErrorCode, status)
		d.host.log.WithContext(ctx).Debug("command failed", logger.MergeWithDuration(
			logger.Fields(logger.FieldCommand, cmd, logger.FieldError, err.Error()), time.Since(start)))
	}
	d.host.metrics.RecordCommand(ctx, cmd, status, time.Since(start))
	observability.EndSpan(span, err)
	return result, err
}

// Invoker returns an in-process bridge.Invoker. Arguments and results make
// the same JSON round trip they would over IPC.
func (d *Dispatcher) Invoker() bridge.Invoker {
	return bridge.InvokerFunc(func(ctx context.Context, cmd string, args, out any) error {
		raw, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("host: encode args for %s: %w", cmd, err)
		}
		result, err := d.Dispatch(ctx, cmd, raw)
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("host: encode result of %s: %w", cmd, err)
		}
		return json.Unmarshal(encoded, out)
	})
}

func (d *Dispatcher) wrap(v any) any {
	if d.host.cfg.Envelope {
		return map[string]any{"message": v}
	}
	return v
}

func decodeArgs[T any](cmd string, raw json.RawMessage) (T, error) {
	var args T
	if len(raw) == 0 {
		return args, errors.InvalidArgs(cmd, "missing arguments")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, errors.InvalidArgs(cmd, err.Error())
	}
	return args, nil
}

func (d *Dispatcher) fetch(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := decodeArgs[bridge.FetchArgs](bridge.CmdFetch, raw)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, args.ClientConfig.Method)
	observability.SetSpanAttribute(ctx, observability.AttrHTTPURL, args.ClientConfig.URL)
	return d.host.Fetch(ctx, args.ClientConfig)
}

func (d *Dispatcher) fetchSend(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := decodeArgs[bridge.RIDArgs](bridge.CmdFetchSend, raw)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrRID, uint32(args.RID))
	resp, err := d.host.FetchSend(ctx, args.RID)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, resp.Status)
	return d.wrap(resp), nil
}

func (d *Dispatcher) fetchReadBody(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := decodeArgs[bridge.RIDArgs](bridge.CmdFetchReadBody, raw)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrRID, uint32(args.RID))
	body, err := d.host.ReadBody(ctx, args.RID)
	if err != nil {
		return nil, err
	}
	return d.wrap(body), nil
}

func (d *Dispatcher) fetchCancel(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := decodeArgs[bridge.RIDArgs](bridge.CmdFetchCancel, raw)
	if err != nil {
		return nil, err
	}
	return nil, d.host.Cancel(ctx, args.RID)
}
