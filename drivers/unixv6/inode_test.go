package unixv6_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	"github.com/dargueta/uv6fs/uvtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeIndirectSectorForTest builds the raw bytes of an indirect block:
// AddressesPerIndirectSector little-endian uint16 sector numbers, matching
// unixv6's own on-disk codec.
func encodeIndirectSectorForTest(t *testing.T, addrs [unixv6.AddressesPerIndirectSector]uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, addrs))
	return buf.Bytes()
}

func TestInodeRead_UnallocatedSlotFails(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	_, err := m.InodeRead(unixv6.RootInumber + 1)
	assert.Error(t, err)
}

func TestInodeRead_OutOfRangeFails(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	farOut := m.Superblock.Isize*unixv6.InodesPerSector + 10000
	_, err := m.InodeRead(farOut)
	assert.Error(t, err)
}

func TestInodeWrite_RoundTrip(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	inr, err := m.InodeAlloc()
	require.NoError(t, err)

	want := unixv6.RawInode{Mode: unixv6.IAlloc | unixv6.IFile}
	want.SetSize(1234)
	require.NoError(t, m.InodeWrite(inr, want))

	got, err := m.InodeRead(inr)
	require.NoError(t, err)
	assert.Equal(t, want.Mode, got.Mode)
	assert.EqualValues(t, 1234, got.Size())
}

func TestInodeAlloc_AssignsDistinctInumbers(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	first, err := m.InodeAlloc()
	require.NoError(t, err)
	second, err := m.InodeAlloc()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestFindSector_SmallFileDirectAddressing(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	inode := unixv6.RawInode{Mode: unixv6.IAlloc | unixv6.IFile}
	inode.SetSize(3 * unixv6.SectorSize)
	inode.Addr[0] = 50
	inode.Addr[1] = 51
	inode.Addr[2] = 52

	got, err := m.FindSector(inode, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 50, got)

	got, err = m.FindSector(inode, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 52, got)
}

func TestFindSector_OffsetPastEndOfFileFails(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	inode := unixv6.RawInode{Mode: unixv6.IAlloc | unixv6.IFile}
	inode.SetSize(1 * unixv6.SectorSize)

	_, err := m.FindSector(inode, 5)
	assert.Error(t, err)
}

func TestFindSector_UnallocatedInodeFails(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	_, err := m.FindSector(unixv6.RawInode{}, 0)
	assert.Error(t, err)
}

func TestFindSector_NegativeIndexFails(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	inode := unixv6.RawInode{Mode: unixv6.IAlloc | unixv6.IFile}
	_, err := m.FindSector(inode, -1)
	assert.Error(t, err)
}

func TestFindSector_IndirectAddressing(t *testing.T) {
	stream := uvtest.NewImage(t, uvtest.DefaultBlocks, uvtest.DefaultInodes)
	m, err := unixv6.MountStream(stream)
	require.NoError(t, err)
	defer m.Unmount()

	const indirectSector = 40

	var addrs [unixv6.AddressesPerIndirectSector]uint16
	addrs[0] = 100
	addrs[5] = 105
	addrs[unixv6.AddressesPerIndirectSector-1] = 255
	uvtest.PutSector(t, stream, indirectSector, encodeIndirectSectorForTest(t, addrs))

	inode := unixv6.RawInode{Mode: unixv6.IAlloc | unixv6.IFile}
	// Size must clear SmallFileSectorCount*SectorSize to force the indirect
	// path (inode.go:97); Addr[0] is the only indirect block this test
	// plants, so only k in [0, AddressesPerIndirectSector) is checked.
	inode.SetSize(unixv6.SmallFileSectorCount * unixv6.SectorSize)
	inode.Addr[0] = indirectSector

	got, err := m.FindSector(inode, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 100, got)

	got, err = m.FindSector(inode, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 105, got)

	got, err = m.FindSector(inode, unixv6.AddressesPerIndirectSector-1)
	require.NoError(t, err)
	assert.EqualValues(t, 255, got)
}

func TestFindSector_IndirectAddressingSpansMultipleIndirectBlocks(t *testing.T) {
	stream := uvtest.NewImage(t, uvtest.DefaultBlocks, uvtest.DefaultInodes)
	m, err := unixv6.MountStream(stream)
	require.NoError(t, err)
	defer m.Unmount()

	const firstIndirect = 40
	const secondIndirect = 41

	var firstAddrs [unixv6.AddressesPerIndirectSector]uint16
	firstAddrs[unixv6.AddressesPerIndirectSector-1] = 111
	uvtest.PutSector(t, stream, firstIndirect, encodeIndirectSectorForTest(t, firstAddrs))

	var secondAddrs [unixv6.AddressesPerIndirectSector]uint16
	secondAddrs[0] = 222
	uvtest.PutSector(t, stream, secondIndirect, encodeIndirectSectorForTest(t, secondAddrs))

	inode := unixv6.RawInode{Mode: unixv6.IAlloc | unixv6.IFile}
	inode.SetSize(unixv6.ExtraLargeFileSize)
	inode.Addr[0] = firstIndirect
	inode.Addr[1] = secondIndirect

	// Last slot of the first indirect block.
	got, err := m.FindSector(inode, unixv6.AddressesPerIndirectSector-1)
	require.NoError(t, err)
	assert.EqualValues(t, 111, got)

	// First slot of the second indirect block (indirectIdx == 1).
	got, err = m.FindSector(inode, unixv6.AddressesPerIndirectSector)
	require.NoError(t, err)
	assert.EqualValues(t, 222, got)
}

func TestFindSector_IndirectAddressingRejectsUnhonoredSlot(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	inode := unixv6.RawInode{Mode: unixv6.IAlloc | unixv6.IFile}
	inode.SetSize(unixv6.ExtraLargeFileSize)

	// indirectIdx == SmallFileSectorCount-1 == 7: the 8th Addr slot is
	// never honored for indirection (inode.go:106).
	k := int32(unixv6.SmallFileSectorCount-1) * unixv6.AddressesPerIndirectSector
	_, err := m.FindSector(inode, k)
	assert.Error(t, err)
}

func TestScanPrint_ListsRootInode(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	out, err := m.ScanPrint()
	require.NoError(t, err)
	assert.Contains(t, out, "DIR")
}
