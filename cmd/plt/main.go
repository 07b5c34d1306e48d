package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/plt"
	"github.com/bodgit/plt/layer"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

const defaultDB = "plt.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func withDB(c *cli.Context, fn func(*plt.PLT, *plt.TextureDB) error) error {
	db, err := plt.NewTextureDB(c.String("db"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	if err := fn(plt.New(db, newLogger(c)), db); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "plt"
	app.Usage = "Packed Layer Texture conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   plt.PNG,
		Usage:   "layer image format, " + plt.PNG + " or " + plt.TIFF,
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"PLT_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "unpack",
			Usage:       "Split PLT files into one image per layer",
			Description: "Writes NAME_LAYER.EXT for each layer and a NAME.layers manifest for every FILE.",
			ArgsUsage:   "FILE...",
			Flags: []cli.Flag{
				formatFlag,
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   ".",
					Usage:   "directory to write layer images to",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of files to unpack at once",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				p := plt.New(nil, newLogger(c))

				if err := p.UnpackAll(c.Args().Slice(), c.String("output"), c.String("format"), c.Int("workers")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "pack",
			Usage:       "Merge layer images into a PLT file",
			Description: "Reads the NAME.layers manifest in DIRECTORY, or NAME_LAYER.EXT images if there isn't one.",
			ArgsUsage:   "DIRECTORY NAME FILE",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:  "hide",
					Usage: "treat the named layer as not visible",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 3 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				p := plt.New(nil, newLogger(c))

				if err := p.Pack(c.Args().Get(0), c.Args().Get(1), c.Args().Get(2), c.StringSlice("hide")...); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "init",
			Usage:       "Create any missing layer images",
			Description: "New layers are fully transparent; existing images are left alone.",
			ArgsUsage:   "DIRECTORY NAME",
			Flags: []cli.Flag{
				formatFlag,
				&cli.IntFlag{
					Name:  "width",
					Usage: "width of new layers if there is no manifest",
				},
				&cli.IntFlag{
					Name:  "height",
					Usage: "height of new layers if there is no manifest",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				p := plt.New(nil, newLogger(c))

				if err := p.Init(c.Args().Get(0), c.Args().Get(1), c.Int("width"), c.Int("height"), c.String("format")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Show the size and layer coverage of PLT files",
			ArgsUsage: "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				p := plt.New(nil, newLogger(c))

				for _, file := range c.Args().Slice() {
					info, err := p.Info(file)
					if err != nil {
						return cli.Exit(err, 1)
					}

					fmt.Fprintf(c.App.Writer, "%s: %dx%d, version %d.%d, %s\n", file, info.Header.Width, info.Header.Height, info.Header.VersionMajor, info.Header.VersionMinor, humanize.Bytes(uint64(info.Size)))
					total := int(info.Header.Width) * int(info.Header.Height)
					for i, n := range info.Coverage {
						fmt.Fprintf(c.App.Writer, "  %-8s %12s pixels %5.1f%%\n", layer.Name(i), humanize.Comma(int64(n)), float64(n)*100/float64(total))
					}
				}

				return nil
			},
		},
		{
			Name:      "preview",
			Usage:     "Render a tinted preview of a PLT file",
			ArgsUsage: "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Value: 64,
					Usage: "maximum number of colors in the preview",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				p := plt.New(nil, newLogger(c))

				if err := p.Preview(c.Args().Get(0), c.Args().Get(1), c.Int("colors")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "catalog",
			Usage:     "Scan a directory tree and add PLT files to the catalog",
			ArgsUsage: "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Value: 10,
					Usage: "number of files to process at once",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				return withDB(c, func(p *plt.PLT, _ *plt.TextureDB) error {
					return p.Catalog(c.Args().First(), c.Int("workers"))
				})
			},
		},
		{
			Name:  "list",
			Usage: "List the textures in the catalog",
			Action: func(c *cli.Context) error {
				return withDB(c, func(_ *plt.PLT, db *plt.TextureDB) error {
					textures, err := db.Textures()
					if err != nil {
						return err
					}
					for _, t := range textures {
						fmt.Fprintf(c.App.Writer, "%s %5dx%-5d %10s %s\n", t.Digest, t.Width, t.Height, humanize.Bytes(uint64(t.Size)), t.Path)
					}
					return nil
				})
			},
		},
		{
			Name:      "extract",
			Usage:     "Write a texture from the catalog back out to a file",
			ArgsUsage: "DIGEST FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				return withDB(c, func(p *plt.PLT, _ *plt.TextureDB) error {
					return p.Extract(strings.ToUpper(c.Args().Get(0)), c.Args().Get(1))
				})
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
