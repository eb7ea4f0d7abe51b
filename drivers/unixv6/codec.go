package unixv6

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// decodeSuperblock reads a RawSuperblock out of one sector's worth of bytes.
func decodeSuperblock(buf []byte) (RawSuperblock, error) {
	var sb RawSuperblock
	err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &sb)
	return sb, err
}

// encodeSuperblock serializes a RawSuperblock into a fresh SectorSize
// buffer, ready for sector.Write. The buffer is filled in place with
// bytewriter rather than a growable bytes.Buffer, since its final size is
// always known up front.
func encodeSuperblock(sb RawSuperblock) ([]byte, error) {
	buf := make([]byte, SectorSize)
	w := bytewriter.New(buf)
	if err := binary.Write(w, binary.LittleEndian, sb); err != nil {
		return nil, err
	}
	return buf, nil
}

// decodeInodeSector reads InodesPerSector RawInode records out of one
// sector's worth of bytes.
func decodeInodeSector(buf []byte) ([InodesPerSector]RawInode, error) {
	var inodes [InodesPerSector]RawInode
	err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &inodes)
	return inodes, err
}

// encodeInodeSector serializes InodesPerSector RawInode records into a
// fresh SectorSize buffer.
func encodeInodeSector(inodes [InodesPerSector]RawInode) ([]byte, error) {
	buf := make([]byte, SectorSize)
	w := bytewriter.New(buf)
	if err := binary.Write(w, binary.LittleEndian, inodes); err != nil {
		return nil, err
	}
	return buf, nil
}

// decodeIndirectSector reads AddressesPerIndirectSector 16-bit sector
// addresses out of one sector's worth of bytes.
func decodeIndirectSector(buf []byte) ([AddressesPerIndirectSector]uint16, error) {
	var addrs [AddressesPerIndirectSector]uint16
	err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &addrs)
	return addrs, err
}

// decodeDirentSector reads DirentsPerSector RawDirent records out of one
// sector's worth of bytes.
func decodeDirentSector(buf []byte) ([DirentsPerSector]RawDirent, error) {
	var dirents [DirentsPerSector]RawDirent
	err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &dirents)
	return dirents, err
}
