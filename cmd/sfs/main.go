package main

import (
	"log"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v2"

	"simplefs/internal/disk"
	"simplefs/internal/shell"
)

// Config carries environment defaults; command-line flags override them.
type Config struct {
	Image  string `envconfig:"SFS_IMAGE" default:"sfs.img"`
	Blocks uint   `envconfig:"SFS_BLOCKS" default:"100"`
}

func main() {
	var config Config
	if err := envconfig.Process("sfs", &config); err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name:  "sfs",
		Usage: "interactive shell for a simple inode file system image",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "path to the disk image",
				Value:   config.Image,
			},
			&cli.UintFlag{
				Name:    "blocks",
				Aliases: []string{"b"},
				Usage:   "number of blocks in the disk image",
				Value:   config.Blocks,
			},
		},
		Action: func(ctx *cli.Context) error {
			dev, err := disk.Open(ctx.String("image"), uint32(ctx.Uint("blocks")))
			if err != nil {
				return err
			}
			defer dev.Close()

			return shell.New(dev, os.Stdin, os.Stdout).Run()
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
