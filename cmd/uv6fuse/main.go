package main

import (
	"log"
	"os"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	"github.com/dargueta/uv6fs/fsbridge"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage:     "Mount a UNIX v6 disk image as a FUSE filesystem",
		ArgsUsage: "DISK_IMAGE MOUNTPOINT",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("usage: uv6fuse DISK_IMAGE MOUNTPOINT", 1)
	}
	diskPath := c.Args().Get(0)
	mountpoint := c.Args().Get(1)

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
