package main

import (
	"log"
	"os"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	"github.com/dargueta/uv6fs/fsbridge"
	"github.com/dargueta/uv6fs/shell"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage:     "Mount and inspect UNIX v6 disk images",
		ArgsUsage: "[DISK_IMAGE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "fuse",
				Usage: "mount DISK_IMAGE at this path via FUSE instead of starting the REPL",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err)
	}
}

func run(c *cli.Context) error {
	diskPath := c.Args().First()
	mountpoint := c.String("fuse")

	if mountpoint == "" {
		s := shell.New(os.Stdout)
		if diskPath != "" {
			m, err := unixv6.MountFile(diskPath)
			if err != nil {
				return err
			}
			defer m.Unmount()
			return s.RunMounted(os.Stdin, m)
		}
		return s.Run(os.Stdin)
	}

	if diskPath == "" {
		return cli.Exit("a disk image is required with -fuse", 1)
	}

	m, err := unixv6.MountFile(diskPath)
	if err != nil {
		return err
	}
	defer m.Unmount()

	server, err := fs.Mount(mountpoint, fsbridge.Root(m), &fs.Options{})
	if err != nil {
		return err
	}
	server.Wait()
	return nil
}
