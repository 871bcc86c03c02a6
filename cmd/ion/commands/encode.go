package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chaisql/ion"
	"github.com/chaisql/ion/internal/jsonload"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// NewEncodeCommand returns a cli.Command for "ion encode".
func NewEncodeCommand(st *state) *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode JSON documents as binary ion",
		UsageText: `ion encode [options] file...`,
		Description: `The encode command converts JSON files into binary ion documents.
Each file may hold any number of JSON values, comments and trailing commas are allowed.

Every file.json is written to file.ion, next to it or in the output directory.
Files are encoded concurrently:

$ ion encode a.json b.json

When the only argument is -, the JSON is read from the standard input and the
document is written to the standard output.

Symbol tables may import shared tables from the catalog:

$ ion --catalog tables.yaml encode -i colors:2 a.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "directory to write the documents to",
			},
			&cli.StringSliceFlag{
				Name:    "import",
				Aliases: []string{"i"},
				Usage:   "shared table to import, as name or name:version",
			},
		},
		Action: func(c *cli.Context) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return errors.New(c.Command.UsageText)
			}

			imports, err := st.imports(c.StringSlice("import"))
			if err != nil {
				return err
			}

			if len(files) == 1 && files[0] == "-" {
				data, err := readInput(c, "-")
				if err != nil {
					return err
				}
				b, err := st.encode(data, imports)
				if err != nil {
					return err
				}
				_, err = c.App.Writer.Write(b)
				return err
			}

			return st.encodeFiles(c.Context, files, c.String("output"), imports)
		},
	}
}

func (st *state) encode(data []byte, imports []ion.Import) ([]byte, error) {
	values, err := jsonload.ParseStream(data)
	if err != nil {
		return nil, err
	}

	opts := st.options()
	opts.Imports = imports
	opts.InitialCapacity = len(data)

	dg := ion.New(opts)
	for _, v := range values {
		if err := dg.Append(v); err != nil {
			return nil, err
		}
	}

	return dg.ToBytes()
}

func outputPath(file, dir string) string {
	name := strings.TrimSuffix(file, filepath.Ext(file)) + ".ion"
	if dir == "" {
		return name
	}
	return filepath.Join(dir, filepath.Base(name))
}

// encodeFiles encodes every file in its own goroutine.
func (st *state) encodeFiles(ctx context.Context, files []string, dir string, imports []ion.Import) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return errors.WithStack(err)
			}

			b, err := st.encode(data, imports)
			if err != nil {
				return errors.Wrapf(err, "cannot encode %s", file)
			}

			out := outputPath(file, dir)
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return errors.WithStack(err)
			}

			st.logger.Debug("document encoded",
				slog.String("input", file),
				slog.String("output", out),
				slog.Int("size", len(b)))
			return nil
		})
	}

	return g.Wait()
}
