// Package bitmap implements the range-keyed bit vector that backs both the
// inode allocation map and the free-block map: a contiguous run of bits
// addressed by an arbitrary integer range [Min, Max] rather than [0, N).
//
// The bit storage itself is delegated to github.com/boljen/go-bitmap, which
// only understands 0-based indices; this package's job is the [Min, Max]
// remapping, the "no-op on out-of-range" semantics the original C bit-vector
// had, and the linear find-next-zero scan.
package bitmap

import (
	"fmt"
	"strings"

	"github.com/boljen/go-bitmap"
	fserrors "github.com/dargueta/uv6fs/errors"
)

// Bitmap is a bit vector over the inclusive range [Min, Max]. The zero value
// is not usable; construct with New.
type Bitmap struct {
	Min, Max uint64
	cursor   uint64
	bits     bitmap.Bitmap
}

// New allocates a Bitmap covering [min, max], all bits cleared. It fails if
// min > max.
func New(min, max uint64) (*Bitmap, error) {
	if min > max {
		return nil, fserrors.Newf(fserrors.ErrBadParameter, "bitmap range [%d, %d] is empty", min, max)
	}
	size := int(max-min) + 1
	return &Bitmap{
		Min:  min,
		Max:  max,
		bits: bitmap.New(size),
	}, nil
}

func (b *Bitmap) inRange(v uint64) bool {
	return v >= b.Min && v <= b.Max
}

// Get reports whether the bit for v is set. It fails with ErrBadParameter if
// v is outside [Min, Max].
func (b *Bitmap) Get(v uint64) (bool, error) {
	if !b.inRange(v) {
		return false, fserrors.Newf(fserrors.ErrBadParameter, "%d not in range [%d, %d]", v, b.Min, b.Max)
	}
	return b.bits.Get(int(v - b.Min)), nil
}

// Set marks v as used. Out-of-range values and values already set are
// silent no-ops, matching the source's bm_set.
func (b *Bitmap) Set(v uint64) {
	if !b.inRange(v) {
		return
	}
	b.bits.Set(int(v-b.Min), true)
}

// Clear marks v as free. Out-of-range values and values already clear are
// silent no-ops, matching the source's bm_clear.
func (b *Bitmap) Clear(v uint64) {
	if !b.inRange(v) {
		return
	}
	b.bits.Set(int(v-b.Min), false)
}

// FindNext returns the smallest value in [Min, Max] whose bit is clear, or -1
// if the range is fully allocated. It's a linear scan from Min, same as the
// source; the cursor field is carried for parity with the original struct
// but correctness never depends on it.
func (b *Bitmap) FindNext() int64 {
	for v := b.Min; v <= b.Max; v++ {
		if !b.bits.Get(int(v - b.Min)) {
			b.cursor = v
			return int64(v)
		}
	}
	return -1
}

// String renders a human-readable dump of the bitmap header and its bits
// grouped in bytes, for diagnostics only.
func (b *Bitmap) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "min: %d\n", b.Min)
	fmt.Fprintf(&sb, "max: %d\n", b.Max)
	fmt.Fprintf(&sb, "cursor: %d\n", b.cursor)
	sb.WriteString("content:\n")

	count := b.Max - b.Min + 1
	for row := uint64(0); row*64 < count; row++ {
		fmt.Fprintf(&sb, "%d: ", row)
		for col := uint64(0); col < 64; col++ {
			v := b.Min + row*64 + col
			if v > b.Max {
				sb.WriteByte('0')
			} else if set, _ := b.Get(v); set {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
			if (col+1)%8 == 0 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
