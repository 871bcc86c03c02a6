package commands

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chaisql/ion"
	"github.com/chaisql/ion/internal/catalog"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// state is shared by the commands of an app once the global flags are parsed.
type state struct {
	logger  *slog.Logger
	catalog *catalog.Catalog
}

// NewApp creates the ion CLI app.
func NewApp() *cli.App {
	var st state

	app := cli.NewApp()
	app.Name = "ion"
	app.Usage = "Encode, inspect and store binary ion documents"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "catalog",
			Usage: "YAML file listing the shared symbol tables",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log debug messages to stderr",
		},
	}

	app.Commands = []*cli.Command{
		NewVersionCommand(),
		NewEncodeCommand(&st),
		NewDumpCommand(&st),
		NewExportCommand(&st),
		NewPutCommand(&st),
		NewGetCommand(&st),
		NewListCommand(&st),
	}

	app.Before = func(c *cli.Context) error {
		level := slog.LevelInfo
		if c.Bool("verbose") {
			level = slog.LevelDebug
		}
		st.logger = slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))

		if path := c.String("catalog"); path != "" {
			cat, err := catalog.LoadFile(path)
			if err != nil {
				return err
			}
			st.catalog = cat
			st.logger.Debug("catalog loaded",
				slog.String("path", path),
				slog.Int("tables", len(cat.Tables())))
		}

		return nil
	}

	return app
}

// options returns the datagram options of the app.
func (st *state) options() *ion.Options {
	opts := ion.Options{Logger: st.logger}
	if st.catalog != nil {
		opts.Catalog = st.catalog
	}
	return &opts
}

// imports resolves the name[:version] declarations through the catalog.
func (st *state) imports(decls []string) ([]ion.Import, error) {
	if len(decls) == 0 {
		return nil, nil
	}
	if st.catalog == nil {
		return nil, errors.New("imports need a catalog")
	}

	imports := make([]ion.Import, 0, len(decls))
	for _, d := range decls {
		name, v, found := strings.Cut(d, ":")
		version := 1
		if found {
			var err error
			version, err = strconv.Atoi(v)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid version in import %q", d)
			}
		}

		t, err := st.catalog.Find(name, version)
		if err != nil {
			return nil, err
		}
		imports = append(imports, ion.Import{Table: t, MaxID: t.MaxID()})
	}

	return imports, nil
}

// readInput reads the named file, or the app input when path is "-".
func readInput(c *cli.Context, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(c.App.Reader)
	}

	b, err := os.ReadFile(path)
	return b, errors.WithStack(err)
}

// loadDatagram reads and decodes the datagram at path.
func (st *state) loadDatagram(c *cli.Context, path string) (*ion.Datagram, error) {
	b, err := readInput(c, path)
	if err != nil {
		return nil, err
	}

	dg, err := ion.Load(b, st.options())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load %s", path)
	}
	return dg, nil
}
