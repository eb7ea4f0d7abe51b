package unixv6

import (
	fserrors "github.com/dargueta/uv6fs/errors"
	"github.com/dargueta/uv6fs/internal/sector"
)

// FileV6 wraps an inode with a byte offset into it. It borrows its Mount;
// it has no lifetime of its own beyond the mount's.
type FileV6 struct {
	mount   *Mount
	Inumber uint16
	Inode   RawInode
	Offset  uint32
}

// OpenFile loads inode inr and returns a FileV6 positioned at offset 0.
func (m *Mount) OpenFile(inr uint16) (*FileV6, error) {
	inode, err := m.InodeRead(inr)
	if err != nil {
		return nil, err
	}
	return &FileV6{mount: m, Inumber: inr, Inode: inode, Offset: 0}, nil
}

// ReadBlock reads the next SectorSize-byte block into buf, advancing the
// offset by one full sector. It returns the number of bytes read: 0 at
// end-of-file (and resets Offset to 0), SectorSize otherwise.
//
// Note this always reports SectorSize even for the file's final, partial
// block -- the source does the same (see SPEC_FULL.md §9, "short last
// block"). Callers that need the exact byte count clamp against the
// inode's size themselves; see sha.Sum256 and the shell's cat command.
func (f *FileV6) ReadBlock(buf []byte) (int, error) {
	size := f.Inode.Size()
	if f.Offset >= size {
		f.Offset = 0
		return 0, nil
	}

	sectorNum, err := f.mount.findSector(f.Inode, int32(f.Offset/SectorSize))
	if err != nil {
		return 0, err
	}

	if err := sector.Read(f.mount.stream, uint32(sectorNum), buf); err != nil {
		return 0, err
	}
	f.Offset += SectorSize
	return SectorSize, nil
}

// Lseek repositions the file's offset. off must be in [0, size].
func (f *FileV6) Lseek(off uint32) error {
	if off > f.Inode.Size() {
		return fserrors.New(fserrors.ErrOffsetOutOfRange)
	}
	f.Offset = off
	return nil
}

// Create writes a zero-initialized inode with the given mode to this
// FileV6's inumber and refreshes the cached inode. It does not allocate or
// initialize any data blocks -- matching the source, this is a stub
// sufficient for an empty file or directory, not a general file-creation
// path (see SPEC_FULL.md §9, file creation is a non-goal).
func (f *FileV6) Create(mode uint16) error {
	inode := RawInode{Mode: mode}
	if err := f.mount.InodeWrite(f.Inumber, inode); err != nil {
		return err
	}
	f.Inode = inode
	return nil
}
