package unixv6

import (
	"fmt"
	"strings"

	fserrors "github.com/dargueta/uv6fs/errors"
	"github.com/dargueta/uv6fs/internal/sector"
)

// InodeRead loads the inode numbered inr. It fails with ErrInodeOutOfRange
// if inr's sector falls outside the inode region, and ErrUnallocatedInode
// if the slot's IAlloc bit is clear.
func (m *Mount) InodeRead(inr uint16) (RawInode, error) {
	sectorNum := uint32(m.Superblock.InodeStart) + uint32(inr)/InodesPerSector
	slot := inr % InodesPerSector

	if uint32(inr)/InodesPerSector > uint32(m.Superblock.Isize) {
		return RawInode{}, fserrors.New(fserrors.ErrInodeOutOfRange)
	}

	buf := make([]byte, SectorSize)
	if err := sector.Read(m.stream, sectorNum, buf); err != nil {
		return RawInode{}, err
	}
	inodes, err := decodeInodeSector(buf)
	if err != nil {
		return RawInode{}, fserrors.Newf(fserrors.ErrIO, "decode inode sector: %s", err)
	}

	inode := inodes[slot]
	if !inode.IsAllocated() {
		return RawInode{}, fserrors.New(fserrors.ErrUnallocatedInode)
	}
	return inode, nil
}

// InodeWrite read-modify-writes the sector containing inode inr, replacing
// its slot with the given record.
func (m *Mount) InodeWrite(inr uint16, inode RawInode) error {
	sectorNum := uint32(m.Superblock.InodeStart) + uint32(inr)/InodesPerSector
	slot := inr % InodesPerSector

	if uint32(inr)/InodesPerSector > uint32(m.Superblock.Isize) {
		return fserrors.New(fserrors.ErrInodeOutOfRange)
	}

	buf := make([]byte, SectorSize)
	if err := sector.Read(m.stream, sectorNum, buf); err != nil {
		return err
	}
	inodes, err := decodeInodeSector(buf)
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "decode inode sector: %s", err)
	}

	inodes[slot] = inode
	out, err := encodeInodeSector(inodes)
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "encode inode sector: %s", err)
	}
	return sector.Write(m.stream, sectorNum, out)
}

// InodeAlloc finds the next free inumber via InodeBitmap.FindNext, marks it
// used, and returns it. It fails with ErrNoMemory if the inode region is
// full.
func (m *Mount) InodeAlloc() (uint16, error) {
	if m.InodeBitmap == nil {
		return 0, fserrors.New(fserrors.ErrIO)
	}
	next := m.InodeBitmap.FindNext()
	if next < 0 {
		return 0, fserrors.New(fserrors.ErrNoMemory)
	}
	m.InodeBitmap.Set(uint64(next))
	return uint16(next), nil
}

// findSector resolves the k-th logical sector of inode to a physical
// sector number. It is the central routine of the addressing scheme
// described in SPEC_FULL.md §3/§4.4: small files address their sectors
// directly out of RawInode.Addr, large files go through one level of
// indirection. A return value of 0 or less means "no such sector" without
// being a hard error (used by the bitmap-filling scan to detect the end of
// a file's sector list).
func (m *Mount) findSector(inode RawInode, k int32) (int32, error) {
	if k < 0 {
		return 0, fserrors.New(fserrors.ErrBadParameter)
	}
	if !inode.IsAllocated() {
		return 0, fserrors.New(fserrors.ErrUnallocatedInode)
	}

	size := inode.Size()
	if size > ExtraLargeFileSize {
		return 0, fserrors.New(fserrors.ErrFileTooLarge)
	}

	if size < SmallFileSectorCount*SectorSize {
		numSectorsUsed := int32(size / SectorSize)
		if k > numSectorsUsed {
			return 0, fserrors.New(fserrors.ErrOffsetOutOfRange)
		}
		return int32(inode.Addr[k]), nil
	}

	indirectIdx := k / AddressesPerIndirectSector
	if indirectIdx >= SmallFileSectorCount-1 {
		return 0, fserrors.New(fserrors.ErrOffsetOutOfRange)
	}
	slot := k % AddressesPerIndirectSector

	buf := make([]byte, SectorSize)
	if err := sector.Read(m.stream, uint32(inode.Addr[indirectIdx]), buf); err != nil {
		return 0, err
	}
	addrs, err := decodeIndirectSector(buf)
	if err != nil {
		return 0, fserrors.Newf(fserrors.ErrIO, "decode indirect sector: %s", err)
	}
	return int32(addrs[slot]), nil
}

// FindSector is the exported form of findSector, used by the file layer
// and by diagnostics.
func (m *Mount) FindSector(inode RawInode, k int32) (int32, error) {
	return m.findSector(inode, k)
}

// ScanPrint renders every allocated inode's number, kind, and size, in the
// source's diagnostic format.
func (m *Mount) ScanPrint() (string, error) {
	var b strings.Builder
	for i := uint16(0); i < m.Superblock.Isize; i++ {
		buf := make([]byte, SectorSize)
		if err := sector.Read(m.stream, uint32(m.Superblock.InodeStart)+uint32(i), buf); err != nil {
			return "", err
		}
		inodes, err := decodeInodeSector(buf)
		if err != nil {
			return "", fserrors.Newf(fserrors.ErrIO, "decode inode sector: %s", err)
		}

		for slot, inode := range inodes {
			if !inode.IsAllocated() {
				continue
			}
			kind := "FIL"
			if inode.IsDirectory() {
				kind = "DIR"
			}
			fmt.Fprintf(&b, "inode\t%d (%s) len   %d\n", uint32(i)*InodesPerSector+uint32(slot), kind, inode.Size())
		}
	}
	return b.String(), nil
}
