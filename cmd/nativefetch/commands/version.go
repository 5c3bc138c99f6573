package commands

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/nativefetch/version"
)

var VersionCommand = cli.Command{
	Name:        "version",
	Usage:       "version [--json]",
	Description: "Prints build information",

	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
	},

	Action: func(ctx *cli.Context) error {
		info := version.GetVersionInfo()
		if !ctx.Bool("json") {
			fmt.Fprintln(ctx.App.Writer, info.String())
			return nil
		}
		enc := json.NewEncoder(ctx.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}
