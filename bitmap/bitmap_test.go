package bitmap_test

import (
	"testing"

	"github.com/dargueta/uv6fs/bitmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvertedRange(t *testing.T) {
	_, err := bitmap.New(10, 5)
	require.Error(t, err)
}

func TestSetGetClear_RoundTrip(t *testing.T) {
	b, err := bitmap.New(4, 131)
	require.NoError(t, err)

	b.Set(5)
	set, err := b.Get(5)
	require.NoError(t, err)
	assert.True(t, set)

	b.Clear(5)
	set, err = b.Get(5)
	require.NoError(t, err)
	assert.False(t, set)
}

func TestGet_OutOfRangeIsError(t *testing.T) {
	b, err := bitmap.New(4, 131)
	require.NoError(t, err)

	_, err = b.Get(3)
	assert.Error(t, err)
	_, err = b.Get(132)
	assert.Error(t, err)
}

func TestSetClear_OutOfRangeIsNoop(t *testing.T) {
	b, err := bitmap.New(4, 131)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		b.Set(1000)
		b.Clear(1000)
	})
}

func TestFindNext_ScenarioFromSpec(t *testing.T) {
	b, err := bitmap.New(4, 131)
	require.NoError(t, err)

	b.Set(4)
	b.Set(5)
	b.Set(6)
	assert.EqualValues(t, 7, b.FindNext())

	for v := uint64(4); v <= 131; v += 3 {
		b.Set(v)
	}
	assert.EqualValues(t, 8, b.FindNext())

	for v := uint64(5); v <= 131; v += 5 {
		b.Clear(v)
	}
	assert.EqualValues(t, 5, b.FindNext())
}

func TestFindNext_ExhaustedReturnsNegativeOne(t *testing.T) {
	b, err := bitmap.New(0, 7)
	require.NoError(t, err)
	for v := uint64(0); v <= 7; v++ {
		b.Set(v)
	}
	assert.EqualValues(t, -1, b.FindNext())
}
