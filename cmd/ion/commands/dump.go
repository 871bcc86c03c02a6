package commands

import (
	"github.com/chaisql/ion"
	"github.com/chaisql/ion/internal/export"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// NewDumpCommand returns a cli.Command for "ion dump".
func NewDumpCommand(st *state) *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Print the values of a document as text",
		UsageText: `ion dump [options] file`,
		Description: `The dump command prints the values of a binary ion document, one per line:

$ ion dump a.ion
{name:"alice", age:31}

Symbol tables and version markers are printed with the --system flag.
Use - to read the document from the standard input.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "system",
				Aliases: []string{"s"},
				Usage:   "print system values too",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New(c.Command.UsageText)
			}

			dg, err := st.loadDatagram(c, path)
			if err != nil {
				return err
			}

			return dg.Dump(c.App.Writer, c.Bool("system"))
		},
	}
}

// NewExportCommand returns a cli.Command for "ion export".
func NewExportCommand(st *state) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Convert a document to JSON, CBOR or MessagePack",
		UsageText: `ion export [options] file`,
		Description: `The export command writes the values of a binary ion document in another format.

JSON values are written one per line, CBOR and MessagePack values are concatenated:

$ ion export -f msgpack a.ion > a.msgpack`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "json, cbor or msgpack",
				Value:   "json",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New(c.Command.UsageText)
			}

			f, err := export.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}

			dg, err := st.loadDatagram(c, path)
			if err != nil {
				return err
			}

			enc := export.NewEncoder(c.App.Writer, f)
			err = dg.Iterate(func(i int, v ion.Value) error {
				return errors.Wrapf(enc.Encode(v), "value %d", i)
			})
			if err != nil {
				return err
			}
			return enc.Flush()
		},
	}
}
