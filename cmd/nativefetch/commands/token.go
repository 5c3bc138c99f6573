package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/nativefetch/auth"
)

var TokenCommand = cli.Command{
	Name:        "token",
	Usage:       "token [--subject <name>] [--command <cmd>]...",
	Description: "Issues a bearer token for the IPC endpoint signed with auth.secret",

	Flags: []cli.Flag{
		&cli.StringFlag{Name: "subject", Value: "webview", Usage: "token subject"},
		&cli.StringSliceFlag{Name: "command", Usage: "restrict the token to a bridge command, repeatable"},
		&cli.DurationFlag{Name: "ttl", Usage: "override auth.ttl"},
	},

	Action: func(ctx *cli.Context) error {
		authCfg := configFrom(ctx).Auth
		if ctx.IsSet("ttl") {
			authCfg.TTL = ctx.Duration("ttl")
		}
		tokens, err := auth.NewTokenService(authCfg)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		token, err := tokens.Issue(ctx.String("subject"), ctx.StringSlice("command")...)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		fmt.Fprintln(ctx.App.Writer, token)
		return nil
	},
}
