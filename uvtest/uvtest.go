// Package uvtest builds minimal, valid UNIX v6 disk images in memory for use
// by the other packages' tests. It plays the same role here that the
// teacher's testing package plays for disko: a small, shared fixture
// builder, not a test runner of its own.
package uvtest

import (
	"io"
	"testing"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// DefaultBlocks and DefaultInodes size the image NewImage builds when the
// caller doesn't need a specific layout.
const (
	DefaultBlocks = 64
	DefaultInodes = unixv6.InodesPerSector * 2
)

// NewImage mkfs's a fresh numBlocks-sector, numInodes-inode image in memory
// and returns the backing stream, unmounted. Callers typically pass the
// result straight to unixv6.MountStream.
func NewImage(t *testing.T, numBlocks, numInodes uint16) io.ReadWriteSeeker {
	buf := make([]byte, int(numBlocks)*unixv6.SectorSize)
	stream := bytesextra.NewReadWriteSeeker(buf)

	err := unixv6.Mkfs(stream, numBlocks, numInodes)
	require.NoError(t, err, "mkfs failed building test image")

	_, err = stream.Seek(0, 0)
	require.NoError(t, err)

	return stream
}

// MustMount builds a DefaultBlocks/DefaultInodes image and mounts it,
// failing the test immediately on any error. It's the one-liner most tests
// that just need "a mounted, empty filesystem" should reach for.
func MustMount(t *testing.T) *unixv6.Mount {
	stream := NewImage(t, DefaultBlocks, DefaultInodes)
	m, err := unixv6.MountStream(stream)
	require.NoError(t, err, "mount failed on freshly built test image")
	return m
}

// PutSector writes data directly to sectorNum on stream, bypassing the
// inode/file layers entirely. Tests use this to plant exact bytes (file
// content, hand-built directory entries) at a sector an inode already
// references, the same direct-stream-write technique used to corrupt the
// boot sector in superblock_test.go. data must be at most SectorSize bytes;
// it's zero-padded to a full sector.
func PutSector(t *testing.T, stream io.WriteSeeker, sectorNum uint32, data []byte) {
	t.Helper()
	require.LessOrEqualf(t, len(data), unixv6.SectorSize, "sector %d: payload too large", sectorNum)

	buf := make([]byte, unixv6.SectorSize)
	copy(buf, data)

	_, err := stream.Seek(int64(sectorNum)*unixv6.SectorSize, io.SeekStart)
	require.NoError(t, err)
	_, err = stream.Write(buf)
	require.NoError(t, err)
}
