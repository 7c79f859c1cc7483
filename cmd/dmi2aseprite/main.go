package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	dmi2aseprite "github.com/masterdanvk/DMI2Aseprite"
	"github.com/masterdanvk/DMI2Aseprite/chunk"
	"github.com/masterdanvk/DMI2Aseprite/grid"
	"github.com/urfave/cli/v2"
)

const defaultDB = "dmi2aseprite.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newApp(c *cli.Context) (*dmi2aseprite.App, func(), error) {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	db, err := dmi2aseprite.NewChunkDB(c.String("db"))
	if err != nil {
		return nil, nil, err
	}

	store := chunk.NewFileStore(c.String("chunk"))

	return dmi2aseprite.New(db, store, logger), func() { db.Close() }, nil
}

func cellFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "cell-width",
			Aliases: []string{"W"},
			Value:   32,
			Usage:   "cell width in pixels",
		},
		&cli.IntFlag{
			Name:    "cell-height",
			Aliases: []string{"H"},
			Value:   32,
			Usage:   "cell height in pixels",
		},
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "dmi2aseprite"
	app.Usage = "DMI metadata preservation and sprite-sheet utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"DMI2ASEPRITE_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to the chunk library",
		},
		&cli.StringFlag{
			Name:    "chunk",
			EnvVars: []string{"DMI2ASEPRITE_CHUNK"},
			Value:   filepath.Join(cwd, chunk.Filename),
			Usage:   "path to the loaded-chunk slot file",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "import",
			Usage:     "Extract and load the metadata chunk from a DMI file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				ch, err := a.Import(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Printf("loaded %s chunk, %d byte payload\n", ch.Type(), ch.Length())

				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Splice the loaded metadata chunk into a PNG",
			ArgsUsage: "IN OUT",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				if err := a.Export(c.Args().Get(0), c.Args().Get(1)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "info",
			Usage: "Report the currently loaded metadata chunk",
			Action: func(c *cli.Context) error {
				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				ch, err := a.Status()
				if err != nil {
					return cli.Exit(err, 1)
				}
				if ch == nil {
					fmt.Println("no metadata chunk loaded")
					return nil
				}

				fmt.Printf("%s chunk, %d byte payload, %d bytes total\n", ch.Type(), ch.Length(), ch.Size())

				return nil
			},
		},
		{
			Name:  "clear",
			Usage: "Unload the metadata chunk",
			Action: func(c *cli.Context) error {
				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				if err := a.Clear(); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "library",
			Usage: "List every metadata chunk recorded in the library",
			Action: func(c *cli.Context) error {
				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				entries, err := a.Library()
				if err != nil {
					return cli.Exit(err, 1)
				}

				for _, e := range entries {
					fmt.Printf("%s  %s  %6d  %s\n", e.ImportedAt.Format("2006-01-02 15:04:05"), e.CRC, e.Length, e.Source)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Record the metadata chunk of every DMI/PNG under a directory",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				if err := a.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "mirror",
			Usage:     "Mirror cells of one facing onto the adjacent facing",
			ArgsUsage: "IN OUT",
			Flags: append(cellFlags(),
				&cli.StringFlag{
					Name:  "from",
					Value: "east",
					Usage: "facing to copy from",
				},
				&cli.StringFlag{
					Name:  "to",
					Value: "west",
					Usage: "facing to overwrite",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				src, err := grid.ParseDirection(c.String("from"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				dst, err := grid.ParseDirection(c.String("to"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				n, err := a.Mirror(c.Args().Get(0), c.Args().Get(1), c.Int("cell-width"), c.Int("cell-height"), src, dst)
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Printf("%d cell pair(s) mirrored\n", n)

				return nil
			},
		},
		{
			Name:      "delete",
			Usage:     "Clear every cell of one facing to transparency",
			ArgsUsage: "IN OUT",
			Flags: append(cellFlags(),
				&cli.StringFlag{
					Name:  "dir",
					Value: "west",
					Usage: "facing to clear",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				d, err := grid.ParseDirection(c.String("dir"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				n, err := a.Delete(c.Args().Get(0), c.Args().Get(1), c.Int("cell-width"), c.Int("cell-height"), d)
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Printf("%d cell(s) cleared\n", n)

				return nil
			},
		},
		{
			Name:      "thumb",
			Usage:     "Write a quantized preview of a single cell",
			ArgsUsage: "IN OUT",
			Flags: append(cellFlags(),
				&cli.IntFlag{
					Name:  "cell",
					Value: 0,
					Usage: "row-major cell index",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				a, closeFn, err := newApp(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFn()

				if err := a.Thumb(c.Args().Get(0), c.Args().Get(1), c.Int("cell-width"), c.Int("cell-height"), c.Int("cell")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
