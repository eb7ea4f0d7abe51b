package unixv6_test

import (
	"testing"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	"github.com/dargueta/uv6fs/uvtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDataInode(t *testing.T, m *unixv6.Mount, sizeBytes uint32, sectors []uint16) (uint16, unixv6.RawInode) {
	t.Helper()
	inr, err := m.InodeAlloc()
	require.NoError(t, err)

	inode := unixv6.RawInode{Mode: unixv6.IAlloc | unixv6.IFile}
	inode.SetSize(sizeBytes)
	for i, s := range sectors {
		inode.Addr[i] = s
	}
	require.NoError(t, m.InodeWrite(inr, inode))
	return inr, inode
}

func TestFileV6_ReadBlockIsTotalOverWholeFile(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	// Two full sectors, addressed past the inode region so they don't
	// collide with anything mkfs already wrote.
	dataSector0 := uint32(m.Superblock.BlockStart) + 1
	dataSector1 := uint32(m.Superblock.BlockStart) + 2

	inr, _ := makeDataInode(t, m, 2*unixv6.SectorSize, []uint16{uint16(dataSector0), uint16(dataSector1)})

	f, err := m.OpenFile(inr)
	require.NoError(t, err)

	buf := make([]byte, unixv6.SectorSize)
	n, err := f.ReadBlock(buf)
	require.NoError(t, err)
	assert.Equal(t, unixv6.SectorSize, n)

	n, err = f.ReadBlock(buf)
	require.NoError(t, err)
	assert.Equal(t, unixv6.SectorSize, n)

	// End of file: zero bytes, offset resets.
	n, err = f.ReadBlock(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.EqualValues(t, 0, f.Offset)
}

func TestFileV6_Lseek(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	inr, _ := makeDataInode(t, m, unixv6.SectorSize, []uint16{uint16(m.Superblock.BlockStart) + 1})
	f, err := m.OpenFile(inr)
	require.NoError(t, err)

	require.NoError(t, f.Lseek(unixv6.SectorSize))
	assert.EqualValues(t, unixv6.SectorSize, f.Offset)

	err = f.Lseek(unixv6.SectorSize + 1)
	assert.Error(t, err)
}

func TestFileV6_Create(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	f, err := m.OpenFile(unixv6.RootInumber)
	require.NoError(t, err)

	require.NoError(t, f.Create(unixv6.IAlloc|unixv6.IFile))
	assert.EqualValues(t, unixv6.IAlloc|unixv6.IFile, f.Inode.Mode)

	reloaded, err := m.InodeRead(unixv6.RootInumber)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDirectory())
}
