// Package sector implements positioned 512-byte sector I/O against a disk
// image stream. It is the lowest layer of the filesystem engine: no
// caching, no buffering beyond what the caller supplies.
package sector

import (
	"io"

	fserrors "github.com/dargueta/uv6fs/errors"
)

// Size is the fixed sector size of the v6 on-disk format.
const Size = 512

// Read seeks to sector*Size in stream and reads exactly Size bytes into buf.
// buf must be at least Size bytes long. A nil stream, any seek failure or a
// short read is reported as ErrIO.
func Read(stream io.ReadSeeker, sectorNum uint32, buf []byte) error {
	if len(buf) < Size {
		return fserrors.Newf(fserrors.ErrBadParameter, "sector buffer must be at least %d bytes, got %d", Size, len(buf))
	}
	if stream == nil {
		return fserrors.Newf(fserrors.ErrIO, "read sector %d: no image stream", sectorNum)
	}

	if _, err := stream.Seek(int64(sectorNum)*Size, io.SeekStart); err != nil {
		return fserrors.Newf(fserrors.ErrIO, "seek to sector %d: %s", sectorNum, err)
	}

	n, err := io.ReadFull(stream, buf[:Size])
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "read sector %d: %s", sectorNum, err)
	}
	if n != Size {
		return fserrors.Newf(fserrors.ErrIO, "short read on sector %d: got %d bytes", sectorNum, n)
	}
	return nil
}

// Write seeks to sector*Size in stream and writes exactly Size bytes from
// buf. buf must be at least Size bytes long.
func Write(stream io.WriteSeeker, sectorNum uint32, buf []byte) error {
	if len(buf) < Size {
		return fserrors.Newf(fserrors.ErrBadParameter, "sector buffer must be at least %d bytes, got %d", Size, len(buf))
	}

	if _, err := stream.Seek(int64(sectorNum)*Size, io.SeekStart); err != nil {
		return fserrors.Newf(fserrors.ErrIO, "seek to sector %d: %s", sectorNum, err)
	}

	n, err := stream.Write(buf[:Size])
	if err != nil {
		return fserrors.Newf(fserrors.ErrIO, "write sector %d: %s", sectorNum, err)
	}
	if n != Size {
		return fserrors.Newf(fserrors.ErrIO, "short write on sector %d: wrote %d bytes", sectorNum, n)
	}
	return nil
}
