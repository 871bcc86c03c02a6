package commands

import (
	"fmt"
	"runtime/debug"

	"github.com/golang-module/carbon/v2"
	"github.com/urfave/cli/v2"
)

// NewVersionCommand returns a cli.Command for "ion version".
func NewVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Shows the ion CLI version",
		Action: func(c *cli.Context) error {
			w := c.App.Writer

			info, ok := debug.ReadBuildInfo()
			if !ok {
				_, err := fmt.Fprintln(w, `version not available in GOPATH mode; use "go install" with Go modules enabled`)
				return err
			}

			_, err := fmt.Fprintf(w, "ion %v\n", info.Main.Version)
			if err != nil {
				return err
			}

			for _, s := range info.Settings {
				if s.Key != "vcs.time" {
					continue
				}
				t := carbon.Parse(s.Value, "UTC")
				if t.Error != nil {
					break
				}
				_, err = fmt.Fprintf(w, "built %s UTC\n", t.ToDateTimeString())
				break
			}
			return err
		},
	}
}
