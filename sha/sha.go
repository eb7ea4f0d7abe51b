// Package sha computes the SHA-256 digest of a v6 file's content, clamping
// the final ReadBlock call's short-last-block quirk against the inode's
// real size (see SPEC_FULL.md §9).
package sha

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dargueta/uv6fs/drivers/unixv6"
)

// Sum256 reads f block by block to end-of-file and returns the hex digest of
// the bytes read. The final chunk is clamped by counting bytes from the start
// of the file, so the digest covers exactly the file's content when f is at
// offset 0, as OpenFile leaves it.
func Sum256(f *unixv6.FileV6) (string, error) {
	size := f.Inode.Size()
	h := sha256.New()
	buf := make([]byte, unixv6.SectorSize)
	var read uint32

	for read < size {
		n, err := f.ReadBlock(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			break
		}
		chunk := uint32(n)
		if remaining := size - read; chunk > remaining {
			chunk = remaining
		}
		h.Write(buf[:chunk])
		read += chunk
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
