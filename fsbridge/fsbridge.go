// Package fsbridge is the kernel filesystem bridge: an fs.InodeEmbedder
// tree, built with github.com/hanwen/go-fuse/v2/fs, whose nodes delegate
// every operation straight to the unixv6 driver. It carries no filesystem
// logic of its own -- DirLookup, OpenDir/Next, and OpenFile/Lseek/ReadBlock
// do all the real work.
package fsbridge

import (
	"context"
	"syscall"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	fserrors "github.com/dargueta/uv6fs/errors"
	"github.com/dargueta/uv6fs/logging"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// permAll is the fixed rwxr-xr-x permission this filesystem reports for
// every node, matching the source's hardcoded stat output.
const permAll = 0o755

var log = logging.New("fsbridge: ")

// Node is one file or directory in the bridged tree, identified by its
// inumber on the mounted image.
type Node struct {
	fs.Inode
	mount   *unixv6.Mount
	inumber uint16
}

var (
	_ fs.InodeEmbedder = (*Node)(nil)
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
)

// Root builds the root node of the bridged tree for an already-mounted
// filesystem.
func Root(m *unixv6.Mount) *Node {
	return &Node{mount: m, inumber: unixv6.RootInumber}
}

func (n *Node) stableAttr(inode unixv6.RawInode) fs.StableAttr {
	mode := uint32(syscall.S_IFREG)
	if inode.IsDirectory() {
		mode = syscall.S_IFDIR
	}
	return fs.StableAttr{Mode: mode, Ino: uint64(n.inumber)}
}

func (n *Node) loadInode() (unixv6.RawInode, syscall.Errno) {
	inode, err := n.mount.InodeRead(n.inumber)
	if err != nil {
		return unixv6.RawInode{}, errnoOf("inoderead", err)
	}
	return inode, 0
}

// Getattr reports the fixed rwxr-xr-x permissions and the inode's real
// size, with its kind (file/directory) taken from IFmt.
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	inode, errno := n.loadInode()
	if errno != 0 {
		return errno
	}
	out.Mode = permAll
	out.Size = inode.Size()
	if inode.IsDirectory() {
		out.Mode |= syscall.S_IFDIR
	} else {
		out.Mode |= syscall.S_IFREG
	}
	return 0
}

// Lookup resolves one path segment via DirLookup and wraps the result in a
// new child Node.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, err := n.mount.DirLookup(n.inumber, name)
	if err != nil {
		return nil, errnoOf("lookup "+name, err)
	}

	childNode := &Node{mount: n.mount, inumber: child}
	inode, errno := childNode.loadInode()
	if errno != 0 {
		return nil, errno
	}

	out.Mode = permAll
	out.Size = inode.Size()
	return n.NewInode(ctx, childNode, childNode.stableAttr(inode)), 0
}

// Readdir lists the directory's live entries (empty slots are skipped)
// eagerly into an in-memory DirStream.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	d, err := n.mount.OpenDir(n.inumber)
	if err != nil {
		return nil, errnoOf("opendir", err)
	}

	var entries []fuse.DirEntry
	for {
		result, err := d.Next()
		if err != nil {
			return nil, errnoOf("readdir", err)
		}
		switch result.Kind {
		case unixv6.DirentEndOfDir:
			return fs.NewListDirStream(entries), 0
		case unixv6.DirentEmptySlot:
			continue
		case unixv6.DirentFound:
			mode := uint32(syscall.S_IFREG)
			if inode, err := n.mount.InodeRead(result.Inumber); err == nil && inode.IsDirectory() {
				mode = syscall.S_IFDIR
			}
			entries = append(entries, fuse.DirEntry{
				Name: result.Name,
				Ino:  uint64(result.Inumber),
				Mode: mode,
			})
		}
	}
}

// fileHandle carries an open FileV6 across Open/Read calls.
type fileHandle struct {
	file *unixv6.FileV6
}

// Open opens the node's inode for reading. Files only; Getattr/Readdir
// cover directories.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	f, err := n.mount.OpenFile(n.inumber)
	if err != nil {
		return nil, 0, errnoOf("open", err)
	}
	return &fileHandle{file: f}, 0, 0
}

// Read satisfies one kernel read by seeking the backing FileV6 to off and
// pulling whole sectors until dest is filled or EOF, clamping the final
// sector against the inode's real size (see SPEC_FULL.md §9).
func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	fh, ok := f.(*fileHandle)
	if !ok {
		return nil, syscall.EBADF
	}

	size := fh.file.Inode.Size()
	if uint32(off) >= size {
		return fuse.ReadResultData(nil), 0
	}

	sectorOff := uint32(off) - uint32(off)%unixv6.SectorSize
	if err := fh.file.Lseek(sectorOff); err != nil {
		return nil, errnoOf("lseek", err)
	}

	buf := make([]byte, unixv6.SectorSize)
	within := uint32(off) - sectorOff
	copied := 0
	for copied < len(dest) && sectorOff < size {
		n2, err := fh.file.ReadBlock(buf)
		if err != nil {
			return nil, errnoOf("readblock", err)
		}
		if n2 == 0 {
			break
		}
		end := uint32(n2)
		if sectorOff+end > size {
			end = size - sectorOff
		}
		copied += copy(dest[copied:], buf[within:end])
		within = 0
		sectorOff += end
	}
	return fuse.ReadResultData(dest[:copied]), 0
}

// errnoOf maps err to the kernel errno the bridge should return, logging it
// first under op so the bridge's stderr shows why a syscall failed --
// the FUSE bridge's share of SPEC_FULL.md §7's debug-print requirement.
func errnoOf(op string, err error) syscall.Errno {
	if fsErr, ok := err.(*fserrors.FSError); ok {
		log.Errorf("%s: %s", op, fsErr)
		return fserrors.ToErrno(fsErr.Kind)
	}
	log.Errorf("%s: %s", op, err)
	return syscall.EIO
}
