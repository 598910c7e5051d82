// Command dsctl runs eligibility calculations and admin chores from the
// shell against the same configuration as the server.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "dsctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "dsctl",
		Usage:   "dropship listing eligibility toolkit",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (default: ./config.toml when present)",
				EnvVars: []string{"DSE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "use the built-in compliance rules instead of the database",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			profitCommand(),
			suggestPriceCommand(),
			checkCommand(),
			tokenCommand(),
			hashPasswordCommand(),
		},
	}
}
