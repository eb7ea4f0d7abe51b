// Package shell implements the line-oriented REPL described in
// SPEC_FULL.md §6: whitespace-tokenized commands dispatched against a
// single, replaceable Mount handle.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	fserrors "github.com/dargueta/uv6fs/errors"
	"github.com/dargueta/uv6fs/report"
	"github.com/dargueta/uv6fs/sha"
)

// Shell holds the REPL's one process-wide mount handle, replaced wholesale
// by the mount command.
type Shell struct {
	mount *unixv6.Mount
	out   io.Writer
}

// New builds a Shell writing its output to out.
func New(out io.Writer) *Shell {
	return &Shell{out: out}
}

// RunMounted is Run, but starting from an already-mounted handle instead of
// requiring the first command to be `mount`. Used by the cmd/uv6shell
// binary when a disk image is given on the command line.
func (s *Shell) RunMounted(in io.Reader, m *unixv6.Mount) error {
	s.mount = m
	return s.Run(in)
}

// Run reads whitespace-separated command lines from in until EOF or an
// exit/quit command, dispatching each to its handler.
func (s *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}

		done, err := s.dispatch(tokens[0], tokens[1:])
		if err != nil {
			// Filesystem-engine errors get ERROR FS:, the shell's own ERROR SHELL:.
			prefix := "ERROR SHELL"
			var fsErr *fserrors.FSError
			if errors.As(err, &fsErr) {
				prefix = "ERROR FS"
			}
			fmt.Fprintf(s.out, "%s: %s\n", prefix, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

func (s *Shell) dispatch(cmd string, args []string) (exit bool, err error) {
	switch cmd {
	case "help":
		s.help()
	case "exit", "quit":
		if s.mount != nil {
			s.mount.Unmount()
		}
		return true, nil
	case "mkfs":
		err = s.cmdMkfs(args)
	case "mount":
		err = s.cmdMount(args)
	case "mkdir":
		// stub, matches the source's unfinished create path.
	case "lsall":
		err = s.cmdLsall()
	case "add":
		// stub, matches the source's unfinished create path.
	case "cat":
		err = s.cmdCat(args)
	case "istat":
		err = s.cmdIstat(args)
	case "inode":
		err = s.cmdInode(args)
	case "sha":
		err = s.cmdSha(args)
	case "psb":
		err = s.cmdPsb()
	case "report":
		err = s.cmdReport(args)
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", cmd)
	}
	return false, err
}

func (s *Shell) help() {
	fmt.Fprintln(s.out, "help                          list commands")
	fmt.Fprintln(s.out, "exit|quit                     unmount and exit")
	fmt.Fprintln(s.out, "mkfs <disk> <#inodes> <#blocks>   create new image")
	fmt.Fprintln(s.out, "mount <disk>                  unmount current, mount new")
	fmt.Fprintln(s.out, "mkdir <dirname>               stub")
	fmt.Fprintln(s.out, "lsall                         recursive tree print")
	fmt.Fprintln(s.out, "add <src> <dst>               stub")
	fmt.Fprintln(s.out, "cat <path>                    dump file")
	fmt.Fprintln(s.out, "istat <inode_nr>              print inode")
	fmt.Fprintln(s.out, "inode <path>                  print resolved inode number")
	fmt.Fprintln(s.out, "sha <path>                    print SHA-256 of file content")
	fmt.Fprintln(s.out, "psb                           print superblock")
	fmt.Fprintln(s.out, "report [csv-path]             dump the inode table as CSV")
}

func (s *Shell) requireMount() error {
	if s.mount == nil || !s.mount.IsMounted() {
		return fmt.Errorf("mount the FS before the operation")
	}
	return nil
}

// cmdMkfs implements `mkfs <disk> <#inodes> <#blocks>`. The help text's
// argument order (disk, inodes, blocks) is authoritative for the shell; it
// reorders before calling unixv6.MkfsFile(path, numBlocks, numInodes),
// whose own parameter order keeps blocks before inodes, matching the
// source -- this mismatch is intentional (see SPEC_FULL.md §9).
func (s *Shell) cmdMkfs(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: mkfs <disk> <#inodes> <#blocks>")
	}
	numInodes, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return fmt.Errorf("bad inode count: %s", err)
	}
	numBlocks, err := strconv.ParseUint(args[2], 10, 16)
	if err != nil {
		return fmt.Errorf("bad block count: %s", err)
	}
	return unixv6.MkfsFile(args[0], uint16(numBlocks), uint16(numInodes))
}

func (s *Shell) cmdMount(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mount <disk>")
	}
	if s.mount != nil && s.mount.IsMounted() {
		s.mount.Unmount()
	}
	m, err := unixv6.MountFile(args[0])
	if err != nil {
		return err
	}
	s.mount = m
	return nil
}

func (s *Shell) cmdLsall() error {
	if err := s.requireMount(); err != nil {
		return err
	}
	out, err := s.mount.PrintTree(unixv6.RootInumber, "")
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, out)
	return nil
}

func (s *Shell) cmdCat(args []string) error {
	if err := s.requireMount(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: cat <path>")
	}
	inr, err := s.mount.DirLookup(unixv6.RootInumber, args[0])
	if err != nil {
		return err
	}
	f, err := s.mount.OpenFile(inr)
	if err != nil {
		return err
	}
	if f.Inode.IsDirectory() {
		return fserrors.New(fserrors.ErrInvalidDirectoryInode)
	}

	size := f.Inode.Size()
	var written uint32
	buf := make([]byte, unixv6.SectorSize)
	for written < size {
		n, err := f.ReadBlock(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		chunk := uint32(n)
		if remaining := size - written; chunk > remaining {
			chunk = remaining
		}
		if _, err := s.out.Write(buf[:chunk]); err != nil {
			return err
		}
		written += chunk
	}
	return nil
}

func (s *Shell) cmdIstat(args []string) error {
	if err := s.requireMount(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: istat <inode_nr>")
	}
	inr, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil || inr < 1 {
		return fmt.Errorf("bad inode number: %s", args[0])
	}
	inode, err := s.mount.InodeRead(uint16(inr))
	if err != nil {
		return err
	}
	kind := "FIL"
	if inode.IsDirectory() {
		kind = "DIR"
	}
	fmt.Fprintf(s.out, "inode %d (%s) size %d nlink %d uid %d gid %d\n",
		inr, kind, inode.Size(), inode.Nlink, inode.UID, inode.GID)
	return nil
}

func (s *Shell) cmdInode(args []string) error {
	if err := s.requireMount(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: inode <path>")
	}
	inr, err := s.mount.DirLookup(unixv6.RootInumber, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "inode: %d\n", inr)
	return nil
}

func (s *Shell) cmdSha(args []string) error {
	if err := s.requireMount(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: sha <path>")
	}
	inr, err := s.mount.DirLookup(unixv6.RootInumber, args[0])
	if err != nil {
		return err
	}
	f, err := s.mount.OpenFile(inr)
	if err != nil {
		return err
	}
	digest, err := sha.Sum256(f)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, digest)
	return nil
}

func (s *Shell) cmdPsb() error {
	if err := s.requireMount(); err != nil {
		return err
	}
	fmt.Fprint(s.out, s.mount.PrintSuperblock())
	return nil
}

func (s *Shell) cmdReport(args []string) error {
	if err := s.requireMount(); err != nil {
		return err
	}
	records, err := report.Collect(s.mount)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return report.WriteCSV(s.out, records)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "create %s: %s", args[0], err)
	}
	defer f.Close()
	return report.WriteCSV(f, records)
}
