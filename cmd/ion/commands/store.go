package commands

import (
	"fmt"
	"os"

	"github.com/chaisql/ion/internal/docstore"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Usage:    "path of the document store",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "pebble or bolt",
			Value: docstore.EnginePebble,
		},
	}
}

func (st *state) openStore(c *cli.Context, compression docstore.Compression) (*docstore.Store, error) {
	return docstore.Open(docstore.Options{
		Engine:      c.String("engine"),
		Path:        c.String("db"),
		Compression: compression,
		Logger:      st.logger,
	})
}

// NewPutCommand returns a cli.Command for "ion put".
func NewPutCommand(st *state) *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Store a document",
		UsageText: `ion put [options] name file`,
		Description: `The put command stores a binary ion document under a name,
replacing any document with the same name:

$ ion put --db docs -c zstd users users.ion`,
		Flags: append(storeFlags(),
			&cli.StringFlag{
				Name:    "compression",
				Aliases: []string{"c"},
				Usage:   "none, lz4 or zstd",
				Value:   "none",
			},
		),
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New(c.Command.UsageText)
			}
			name, path := c.Args().Get(0), c.Args().Get(1)

			compression, err := docstore.ParseCompression(c.String("compression"))
			if err != nil {
				return err
			}

			doc, err := readInput(c, path)
			if err != nil {
				return err
			}

			s, err := st.openStore(c, compression)
			if err != nil {
				return err
			}
			defer s.Close()

			return s.Put(name, doc)
		},
	}
}

// NewGetCommand returns a cli.Command for "ion get".
func NewGetCommand(st *state) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read a stored document",
		UsageText: `ion get [options] name`,
		Description: `The get command writes a stored document to the standard output or to a file.
With --dump, its values are printed as text instead.`,
		Flags: append(storeFlags(),
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "name of the file to output to. Defaults to STDOUT.",
			},
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "print the values as text",
			},
		),
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return errors.New(c.Command.UsageText)
			}

			s, err := st.openStore(c, docstore.NoCompression)
			if err != nil {
				return err
			}
			defer s.Close()

			if c.Bool("dump") {
				dg, err := s.GetDatagram(name, st.options())
				if err != nil {
					return err
				}
				return dg.Dump(c.App.Writer, false)
			}

			doc, err := s.Get(name)
			if err != nil {
				return err
			}

			if f := c.String("file"); f != "" {
				return errors.WithStack(os.WriteFile(f, doc, 0o644))
			}
			_, err = c.App.Writer.Write(doc)
			return err
		},
	}
}

// NewListCommand returns a cli.Command for "ion ls".
func NewListCommand(st *state) *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List the stored documents",
		UsageText: `ion ls [options] [prefix]`,
		Flags:     storeFlags(),
		Action: func(c *cli.Context) error {
			s, err := st.openStore(c, docstore.NoCompression)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.Names(c.Args().First())
			if err != nil {
				return err
			}

			for _, n := range names {
				if _, err := fmt.Fprintln(c.App.Writer, n); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
