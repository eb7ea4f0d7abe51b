package unixv6_test

import (
	"testing"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	"github.com/dargueta/uv6fs/uvtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func TestMountStream_FreshlyMkfsdImageHasOnlyRootAllocated(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	allocated := 0
	for i := uint16(0); i < m.Superblock.Isize*unixv6.InodesPerSector; i++ {
		inode, err := m.InodeRead(i)
		if err != nil {
			continue
		}
		if inode.IsAllocated() {
			allocated++
			assert.Equal(t, unixv6.RootInumber, int(i), "the only allocated inode should be the root")
		}
	}
	assert.Equal(t, 1, allocated)

	root, err := m.InodeRead(unixv6.RootInumber)
	require.NoError(t, err)
	assert.True(t, root.IsDirectory())
	assert.EqualValues(t, 0, root.Size())
}

func TestMountStream_RejectsBadBootMagic(t *testing.T) {
	stream := uvtest.NewImage(t, uvtest.DefaultBlocks, uvtest.DefaultInodes)

	// Corrupt the boot sector's magic byte directly.
	buf := make([]byte, 1)
	buf[0] = 0x00
	_, err := stream.Seek(0, 0)
	require.NoError(t, err)
	_, err = stream.Write(buf)
	require.NoError(t, err)
	_, err = stream.Seek(0, 0)
	require.NoError(t, err)

	_, err = unixv6.MountStream(stream)
	assert.Error(t, err)
}

func TestUnmount_FailsWhenNotMounted(t *testing.T) {
	var m unixv6.Mount
	assert.False(t, m.IsMounted())
	err := m.Unmount()
	assert.Error(t, err)
}

func TestUnmount_ClearsMountedState(t *testing.T) {
	m := uvtest.MustMount(t)
	require.True(t, m.IsMounted())
	require.NoError(t, m.Unmount())
	assert.False(t, m.IsMounted())
}

func TestPrintSuperblock_ContainsKnownFields(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	out := m.PrintSuperblock()
	assert.Contains(t, out, "s_isize")
	assert.Contains(t, out, "s_fsize")
	assert.Contains(t, out, "FS SUPERBLOCK START")
	assert.Contains(t, out, "FS SUPERBLOCK END")
}

func TestMkfs_FailsWhenNotEnoughBlocks(t *testing.T) {
	stream := bytesextra.NewReadWriteSeeker(make([]byte, 4*unixv6.SectorSize))
	err := unixv6.Mkfs(stream, 4, 64)
	assert.Error(t, err)
}
