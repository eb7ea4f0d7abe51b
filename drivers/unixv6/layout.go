// Package unixv6 implements the on-disk UNIX v6 filesystem: superblock
// parsing, the inode layer, the sequential file reader, and the directory
// iterator/path resolver. It is grounded on the teaching filesystem this
// driver is modeled after rather than the "real" historical v6 superblock
// layout (free list, 100-entry tables) some other v6 implementations use.
package unixv6

import "time"

// SectorSize is the fixed sector size of the on-disk format.
const SectorSize = 512

// InodesPerSector is the number of 32-byte RawInode records packed into one
// sector.
const InodesPerSector = SectorSize / 32

// AddressesPerIndirectSector is the number of 16-bit sector addresses
// packed into one indirect block.
const AddressesPerIndirectSector = SectorSize / 2

// DirentsPerSector is the number of 16-byte directory entries packed into
// one sector.
const DirentsPerSector = SectorSize / 16

// BootSector and SuperblockSector are the fixed sector numbers of the boot
// block and the superblock.
const (
	BootSector       = 0
	SuperblockSector = 1
)

// BootMagicOffset is the byte offset within the boot sector where the magic
// value lives. BootMagic is that value.
const (
	BootMagicOffset = 0
	BootMagic       = 0xDA // arbitrary byte, distinct from the 0x00 fill value
)

// RootInumber is the inumber of the filesystem root directory.
const RootInumber = 1

// ExtraLargeFileSize is the largest size, in bytes, a file on this
// filesystem can have: only 7 of the 8 indirect slots are honored.
const ExtraLargeFileSize = 7 * AddressesPerIndirectSector * SectorSize

// SmallFileSectorCount is the number of sectors directly addressable from
// RawInode.Addr before the inode switches to indirect addressing.
const SmallFileSectorCount = 8

// Inode mode bits.
const (
	IAlloc = 0x8000 // inode is in use
	IFmt   = 0x6000 // mask for the file-type subfield
	IFDir  = 0x4000 // directory
	IFile  = 0x0000 // plain file
)

// RawSuperblock is the bit-exact, 512-byte-sector-resident superblock
// record. Field order and widths match the on-disk layout exactly; this
// struct is read and written with encoding/binary, little-endian.
type RawSuperblock struct {
	Isize        uint16 // number of sectors occupied by the inode region
	Fsize        uint16 // total number of sectors on the filesystem
	FreeBMSize   uint16 // size in sectors of the free-block bitmap (unused by this driver, kept for layout parity)
	InodeBMSize  uint16 // size in sectors of the inode bitmap (unused by this driver, kept for layout parity)
	InodeStart   uint16 // first sector of the inode region
	BlockStart   uint16 // first sector of the data region
	FreeBMStart  uint16
	InodeBMStart uint16
	FLock        uint8
	ILock        uint8
	FMod         uint8
	RONLY        uint8
	Time         [2]uint16
}

// RawInode is the bit-exact, 32-byte on-disk inode record.
type RawInode struct {
	Mode  uint16
	Nlink uint8
	UID   uint8
	GID   uint8
	Size0 uint8 // high byte of the 24-bit size
	Size1 uint16
	Addr  [8]uint16
	ATime uint32 // last-accessed time, seconds since the filesystem epoch
	MTime uint32 // last-modified time, seconds since the filesystem epoch
}

// IsAllocated reports whether the IAlloc flag is set.
func (i RawInode) IsAllocated() bool {
	return i.Mode&IAlloc != 0
}

// IsDirectory reports whether this inode's IFmt subfield is IFDir.
func (i RawInode) IsDirectory() bool {
	return i.Mode&IFmt == IFDir
}

// Size returns the inode's logical size in bytes, assembled from the split
// 24-bit Size0/Size1 fields.
func (i RawInode) Size() uint32 {
	return uint32(i.Size0)<<16 | uint32(i.Size1)
}

// SetSize packs a byte size back into Size0/Size1.
func (i *RawInode) SetSize(size uint32) {
	i.Size0 = uint8(size >> 16)
	i.Size1 = uint16(size)
}

// RawDirent is the bit-exact, 16-byte on-disk directory entry: a
// NUL-padded (not necessarily NUL-terminated) 14-byte name plus a 16-bit
// inumber. An inumber of 0 marks an unallocated slot.
type RawDirent struct {
	Name    [14]byte
	Inumber uint16
}

// fsEpoch is the epoch timeFromRaw uses to translate the superblock's raw
// uint16 pair timestamp into a time.Time. Nothing in the package calls
// timeFromRaw; PrintSuperblock prints the raw pair. The on-disk format itself
// doesn't specify an epoch, so this mirrors the teacher driver's informal
// choice of the Unix epoch.
var fsEpoch = time.Unix(0, 0)

func timeFromRaw(raw [2]uint16) time.Time {
	return fsEpoch.Add(time.Duration(uint32(raw[0])<<16|uint32(raw[1])) * time.Second)
}
