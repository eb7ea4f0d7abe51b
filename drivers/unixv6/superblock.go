package unixv6

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dargueta/uv6fs/bitmap"
	fserrors "github.com/dargueta/uv6fs/errors"
	"github.com/dargueta/uv6fs/internal/sector"
	"github.com/dargueta/uv6fs/logging"
	"github.com/hashicorp/go-multierror"
)

// Mount is the filesystem engine's process-wide handle: the open image
// stream, the parsed superblock, and the two allocation bitmaps. It is
// created by MountFile/MountStream and torn down by Unmount.
//
// A zero-value Mount is "unmounted": every operation on it that needs the
// image or the bitmaps fails with ErrIO, mirroring the source's detection
// of an unmounted handle via a null file pointer.
type Mount struct {
	stream      io.ReadWriteSeeker
	closer      io.Closer
	Superblock  RawSuperblock
	InodeBitmap *bitmap.Bitmap
	FreeBitmap  *bitmap.Bitmap
	log         *logging.Logger
}

// IsMounted reports whether this handle currently owns an open image.
func (m *Mount) IsMounted() bool {
	return m != nil && m.stream != nil
}

// MountFile opens the disk image at path read-write and mounts it.
func MountFile(path string) (*Mount, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fserrors.Newf(fserrors.ErrIO, "open %s: %s", path, err)
	}

	m, err := MountStream(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	m.closer = f
	return m, nil
}

// MountStream mounts a filesystem already open on stream. Tests use this
// directly against an in-memory image; MountFile is the path-based
// convenience wrapper used by the shell and the FUSE bridge.
func MountStream(stream io.ReadWriteSeeker) (*Mount, error) {
	m := &Mount{stream: stream, log: logging.New("unixv6: ")}
	m.log.Debugf("mounting")

	bootSector := make([]byte, SectorSize)
	if err := sector.Read(stream, BootSector, bootSector); err != nil {
		m.log.Errorf("read boot sector: %s", err)
		return nil, err
	}
	if bootSector[BootMagicOffset] != BootMagic {
		m.log.Errorf("bad boot sector magic: got 0x%02x, want 0x%02x", bootSector[BootMagicOffset], BootMagic)
		return nil, fserrors.New(fserrors.ErrBadBootSector)
	}

	sbSector := make([]byte, SectorSize)
	if err := sector.Read(stream, SuperblockSector, sbSector); err != nil {
		m.log.Errorf("read superblock: %s", err)
		return nil, err
	}
	sb, err := decodeSuperblock(sbSector)
	if err != nil {
		m.log.Errorf("decode superblock: %s", err)
		return nil, fserrors.Newf(fserrors.ErrIO, "decode superblock: %s", err)
	}
	m.Superblock = sb
	m.log.Debugf("superblock: isize=%d fsize=%d inode_start=%d block_start=%d",
		sb.Isize, sb.Fsize, sb.InodeStart, sb.BlockStart)

	m.InodeBitmap, err = bitmap.New(uint64(sb.InodeStart), uint64(sb.Isize)*InodesPerSector-1)
	if err != nil {
		m.log.Errorf("build inode bitmap: %s", err)
		return nil, err
	}
	m.FreeBitmap, err = bitmap.New(uint64(sb.BlockStart)+1, uint64(sb.Fsize)-1)
	if err != nil {
		m.log.Errorf("build free bitmap: %s", err)
		return nil, err
	}

	if err := m.fillBitmaps(); err != nil {
		m.log.Errorf("fill bitmaps: %s", err)
		return nil, err
	}
	m.log.Debugf("mounted")
	return m, nil
}

// fillBitmaps scans every inode sector and marks allocated inodes in
// InodeBitmap, then walks each allocated inode's data sectors via
// findSector and marks them in FreeBitmap.
func (m *Mount) fillBitmaps() error {
	for i := uint16(0); i < m.Superblock.Isize; i++ {
		buf := make([]byte, SectorSize)
		if err := sector.Read(m.stream, uint32(m.Superblock.InodeStart)+uint32(i), buf); err != nil {
			return err
		}
		inodes, err := decodeInodeSector(buf)
		if err != nil {
			return fserrors.Newf(fserrors.ErrIO, "decode inode sector %d: %s", i, err)
		}

		for slot, inode := range inodes {
			if !inode.IsAllocated() {
				continue
			}
			inumber := uint64(i)*InodesPerSector + uint64(slot)
			m.InodeBitmap.Set(inumber)

			for k := int32(0); ; k++ {
				sectorNum, err := m.findSector(inode, k)
				if err != nil || sectorNum <= 0 {
					break
				}
				m.FreeBitmap.Set(uint64(sectorNum))
			}
		}
	}
	return nil
}

// Unmount closes the underlying image stream (if it owns one) and releases
// both bitmaps, aggregating every error it hits along the way rather than
// stopping at the first.
func (m *Mount) Unmount() error {
	if !m.IsMounted() {
		return fserrors.New(fserrors.ErrIO)
	}
	m.log.Debugf("unmounting")

	var result *multierror.Error
	if m.closer != nil {
		if err := m.closer.Close(); err != nil {
			m.log.Errorf("close image: %s", err)
			result = multierror.Append(result, fserrors.Newf(fserrors.ErrIO, "close image: %s", err))
		}
	}

	m.stream = nil
	m.closer = nil
	m.InodeBitmap = nil
	m.FreeBitmap = nil

	return result.ErrorOrNil()
}

// PrintSuperblock renders the superblock fields in the source's diagnostic
// format.
func (m *Mount) PrintSuperblock() string {
	sb := m.Superblock
	var b strings.Builder
	b.WriteString("**********FS SUPERBLOCK START**********\n")
	fmt.Fprintf(&b, "s_isize\t\t\t: %d\n", sb.Isize)
	fmt.Fprintf(&b, "s_fsize\t\t\t: %d\n", sb.Fsize)
	fmt.Fprintf(&b, "s_fbmsize\t\t: %d\n", sb.FreeBMSize)
	fmt.Fprintf(&b, "s_ibmsize\t\t: %d\n", sb.InodeBMSize)
	fmt.Fprintf(&b, "s_inode_start\t\t: %d\n", sb.InodeStart)
	fmt.Fprintf(&b, "s_block_start\t\t: %d\n", sb.BlockStart)
	fmt.Fprintf(&b, "s_fbm_start\t\t: %d\n", sb.FreeBMStart)
	fmt.Fprintf(&b, "s_ibm_start\t\t: %d\n", sb.InodeBMStart)
	fmt.Fprintf(&b, "s_flock\t\t\t: %d\n", sb.FLock)
	fmt.Fprintf(&b, "s_ilock\t\t\t: %d\n", sb.ILock)
	fmt.Fprintf(&b, "s_fmod\t\t\t: %d\n", sb.FMod)
	fmt.Fprintf(&b, "s_ronly\t\t\t: %d\n", sb.RONLY)
	fmt.Fprintf(&b, "s_time\t\t\t: [%d] %d\n", sb.Time[0], sb.Time[1])
	b.WriteString("**********FS SUPERBLOCK END***********\n")
	return b.String()
}

// MkfsFile creates a fresh image at path sized for numBlocks total sectors
// and numInodes inodes, and writes it to disk. The parameter order mirrors
// the original C signature (blocks before inodes); see the shell command
// for the user-facing argument order, which differs on purpose (see
// SPEC_FULL.md §9).
func MkfsFile(path string, numBlocks, numInodes uint16) error {
	f, err := os.Create(path)
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "create %s: %s", path, err)
	}
	defer f.Close()

	return Mkfs(f, numBlocks, numInodes)
}

// mkfsLog is package-level since Mkfs, unlike the Mount methods, runs
// before any Mount exists to own a Logger.
var mkfsLog = logging.New("unixv6: mkfs: ")

// Mkfs writes a fresh filesystem image to stream: a boot sector with the
// magic byte, a superblock sized per the arguments, one inode sector with
// the root directory allocated at RootInumber, and the remaining
// zero-filled inode sectors.
func Mkfs(stream io.WriteSeeker, numBlocks, numInodes uint16) error {
	mkfsLog.Debugf("building image: numBlocks=%d numInodes=%d", numBlocks, numInodes)
	var result *multierror.Error

	sb := RawSuperblock{
		Isize: numInodes / InodesPerSector,
		Fsize: numBlocks,
	}
	if sb.Fsize < sb.Isize+numInodes {
		mkfsLog.Errorf("not enough blocks: fsize=%d isize=%d numInodes=%d", sb.Fsize, sb.Isize, numInodes)
		result = multierror.Append(result, fserrors.New(fserrors.ErrNotEnoughBlocks))
		return result.ErrorOrNil()
	}
	sb.InodeStart = SuperblockSector + 1
	sb.BlockStart = sb.InodeStart + sb.Isize

	bootBuf := make([]byte, SectorSize)
	bootBuf[BootMagicOffset] = BootMagic
	if err := sector.Write(stream, BootSector, bootBuf); err != nil {
		return err
	}

	sbBuf, err := encodeSuperblock(sb)
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "encode superblock: %s", err)
	}
	if err := sector.Write(stream, SuperblockSector, sbBuf); err != nil {
		return err
	}

	var rootInodes [InodesPerSector]RawInode
	rootInodes[RootInumber].Mode = IAlloc | IFDir
	firstInodeSector, err := encodeInodeSector(rootInodes)
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "encode root inode sector: %s", err)
	}
	if err := sector.Write(stream, uint32(sb.InodeStart), firstInodeSector); err != nil {
		return err
	}

	var zeroInodes [InodesPerSector]RawInode
	zeroSector, err := encodeInodeSector(zeroInodes)
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "encode empty inode sector: %s", err)
	}
	for i := uint16(1); i < sb.Isize; i++ {
		if err := sector.Write(stream, uint32(sb.InodeStart)+uint32(i), zeroSector); err != nil {
			return err
		}
	}

	mkfsLog.Debugf("image built: isize=%d inode_start=%d block_start=%d", sb.Isize, sb.InodeStart, sb.BlockStart)
	return result.ErrorOrNil()
}
