package shell_test

import (
	"strings"
	"testing"

	"github.com/dargueta/uv6fs/shell"
	"github.com/dargueta/uv6fs/uvtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMounted_LsallPrintsRoot(t *testing.T) {
	m := uvtest.MustMount(t)

	var out strings.Builder
	s := shell.New(&out)
	err := s.RunMounted(strings.NewReader("lsall\nexit\n"), m)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "DIR /")
}

func TestRun_UnmountedCommandReportsError(t *testing.T) {
	var out strings.Builder
	s := shell.New(&out)
	err := s.Run(strings.NewReader("lsall\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ERROR SHELL:")
	assert.Contains(t, out.String(), "mount the FS")
}

func TestRun_HelpListsCommands(t *testing.T) {
	var out strings.Builder
	s := shell.New(&out)
	err := s.Run(strings.NewReader("help\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "mkfs")
	assert.Contains(t, out.String(), "report")
}

func TestRunMounted_PsbPrintsSuperblock(t *testing.T) {
	m := uvtest.MustMount(t)
	defer m.Unmount()

	var out strings.Builder
	s := shell.New(&out)
	err := s.RunMounted(strings.NewReader("psb\n"), m)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "FS SUPERBLOCK")
}
