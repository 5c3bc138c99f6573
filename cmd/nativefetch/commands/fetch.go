package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/nativefetch/auth"
	"github.com/kbukum/nativefetch/bootstrap"
	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/bridge/ipc"
	"github.com/kbukum/nativefetch/host"
	"github.com/kbukum/nativefetch/httpclient"
	"github.com/kbukum/nativefetch/logger"
	"github.com/kbukum/nativefetch/util"
)

var FetchCommand = cli.Command{
	Name:        "fetch",
	Usage:       "fetch [options] <url>",
	Description: "Sends one request through the bridge and prints the response body",

	Flags: []cli.Flag{
		&cli.StringFlag{Name: "method", Aliases: []string{"X"}, Value: "GET", Usage: "request method"},
		&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Usage: "request header as 'Name: value'"},
		&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "request body, or @file to read it from a file"},
		&cli.StringFlag{Name: "response-type", Value: string(httpclient.ResponseText), Usage: "json, text or arraybuffer"},
		&cli.BoolFlag{Name: "include", Aliases: []string{"i"}, Usage: "print the status line and headers"},
		&cli.BoolFlag{Name: "remote", Usage: "send through the IPC endpoint instead of an embedded host"},
		&cli.IntFlag{Name: "max-redirections", Value: -1, Usage: "redirect cap, -1 keeps the host default"},
		&cli.DurationFlag{Name: "timeout", Usage: "overall request timeout"},
	},

	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.Exit("fetch: exactly one url is required", 2)
		}
		req, err := newRequest(ctx)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}

		cfg := configFrom(ctx)
		if ctx.IsSet("timeout") {
			cfg.Client.Timeout = ctx.Duration("timeout")
		}
		app, err := bootstrap.NewApp(cfg)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		invoker, err := newInvoker(cfg, app, ctx.Bool("remote"))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		client := httpclient.NewComponent(invoker, cfg.Client, httpclient.WithLogger(app.Logger))
		if err := app.RegisterComponent(client); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		return app.RunTask(ctx.Context, func(taskCtx context.Context) error {
			resp, err := client.Adapter().Do(taskCtx, req)
			if httpErr, ok := httpclient.AsError(err); ok && httpErr.Response != nil {
				resp = httpErr.Response
			}
			if resp != nil {
				writeResponse(ctx.App.Writer, resp, ctx.Bool("include"))
			}
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		})
	},
}

func newRequest(ctx *cli.Context) (*httpclient.Request, error) {
	headers, err := parseHeaders(ctx.StringSlice("header"))
	if err != nil {
		return nil, err
	}
	req := &httpclient.Request{
		Method:       ctx.String("method"),
		URL:          ctx.Args().First(),
		Headers:      headers,
		ResponseType: httpclient.ResponseType(ctx.String("response-type")),
	}
	if n := ctx.Int("max-redirections"); n >= 0 {
		req.MaxRedirections = util.Ptr(n)
	}
	if data := ctx.String("data"); data != "" {
		body, err := readData(data)
		if err != nil {
			return nil, err
		}
		req.Data = body
	}
	return req, nil
}

// parseHeaders turns "Name: value" flags into ordered pairs.
func parseHeaders(raw []string) (httpclient.Pairs, error) {
	var pairs httpclient.Pairs
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("fetch: malformed header %q", h)
		}
		pairs = append(pairs, httpclient.Pair{Key: name, Value: strings.TrimSpace(value)})
	}
	return pairs, nil
}

func readData(data string) ([]byte, error) {
	path, ok := strings.CutPrefix(data, "@")
	if !ok {
		return []byte(data), nil
	}
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// newInvoker returns an IPC client when remote is set, otherwise an
// in-process host registered with app.
func newInvoker(cfg *AppConfig, app *bootstrap.App[*AppConfig], remote bool) (bridge.Invoker, error) {
	if !remote {
		h, err := host.New(cfg.Host)
		if err != nil {
			return nil, err
		}
		if err := app.RegisterComponent(host.NewComponent(h)); err != nil {
			return nil, err
		}
		return host.NewDispatcher(h).Invoker(), nil
	}

	ipcCfg := cfg.IPC
	if ipcCfg.Token == "" && cfg.Auth.Enabled {
		tokens, err := auth.NewTokenService(cfg.Auth)
		if err != nil {
			return nil, err
		}
		if ipcCfg.Token, err = tokens.Issue("cli", bridge.Commands...); err != nil {
			return nil, err
		}
	}
	client, err := ipc.New(ipcCfg)
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("using IPC endpoint", logger.Fields(
		"endpoint", ipcCfg.Endpoint,
		"token", util.MaskSecret(ipcCfg.Token, 8),
	))
	app.OnStop(func(context.Context) error {
		client.Close()
		return nil
	})
	return client, nil
}

func writeResponse(w io.Writer, resp *httpclient.Response, include bool) {
	if include {
		fmt.Fprintf(w, "HTTP %d %s\n", resp.Status, resp.StatusText)
		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s: %s\n", name, resp.Headers[name])
		}
		fmt.Fprintln(w)
	}
	_, _ = w.Write(resp.Body)
}
