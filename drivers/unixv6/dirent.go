package unixv6

import (
	"errors"
	"fmt"
	"strings"

	fserrors "github.com/dargueta/uv6fs/errors"
)

// DirentKind tags the three outcomes of DirentReader.Next, replacing the
// source's habit of overloading the UnallocatedInode error as a
// skip-this-slot sentinel (see SPEC_FULL.md §9).
type DirentKind int

const (
	DirentEndOfDir DirentKind = iota
	DirentEmptySlot
	DirentFound
)

// DirentResult is one outcome of iterating a directory: either a live
// entry (DirentFound, with Name/Inumber populated), a slot that was never
// filled in (DirentEmptySlot), or the end of the directory (DirentEndOfDir).
type DirentResult struct {
	Kind    DirentKind
	Name    string
	Inumber uint16
}

// DirentReader streams the 16-byte directory records backing a directory
// file, one entry at a time, buffering a sector's worth (DirentsPerSector
// entries) at a time.
type DirentReader struct {
	file    *FileV6
	cur     uint32
	last    uint32
	dirents [DirentsPerSector]RawDirent
}

// OpenDir opens inode inr as a directory. It fails with
// ErrInvalidDirectoryInode if the inode's IFmt subfield isn't IFDir.
func (m *Mount) OpenDir(inr uint16) (*DirentReader, error) {
	f, err := m.OpenFile(inr)
	if err != nil {
		return nil, err
	}
	if !f.Inode.IsDirectory() {
		return nil, fserrors.New(fserrors.ErrInvalidDirectoryInode)
	}
	return &DirentReader{file: f}, nil
}

// Next yields the next directory slot. Unlike the source, it advances past
// empty slots instead of returning the same slot forever, so a caller's
// loop can unconditionally call Next again on DirentEmptySlot (see
// DESIGN.md's open-question resolutions for this exact bug in the original).
func (d *DirentReader) Next() (DirentResult, error) {
	if d.cur == d.last {
		buf := make([]byte, SectorSize)
		n, err := d.file.ReadBlock(buf)
		if err != nil {
			return DirentResult{}, err
		}
		if n == 0 {
			d.cur, d.last = 0, 0
			return DirentResult{Kind: DirentEndOfDir}, nil
		}

		dirents, err := decodeDirentSector(buf)
		if err != nil {
			return DirentResult{}, fserrors.Newf(fserrors.ErrIO, "decode dirent sector: %s", err)
		}
		d.dirents = dirents
		d.last += DirentsPerSector
	}

	entry := d.dirents[d.cur%DirentsPerSector]
	d.cur++

	if entry.Inumber == 0 {
		return DirentResult{Kind: DirentEmptySlot}, nil
	}

	name := entryName(entry)
	return DirentResult{Kind: DirentFound, Name: name, Inumber: entry.Inumber}, nil
}

func entryName(entry RawDirent) string {
	n := 0
	for n < len(entry.Name) && entry.Name[n] != 0 {
		n++
	}
	return string(entry.Name[:n])
}

// PrintTree renders the directory tree rooted at inr, in the source's
// "DIR prefix/" / "FIL prefix" format. Opening inr as a directory and
// getting ErrInvalidDirectoryInode is recovered as "this is a leaf file".
func (m *Mount) PrintTree(inr uint16, prefix string) (string, error) {
	var b strings.Builder
	if err := m.printTree(&b, inr, prefix); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (m *Mount) printTree(b *strings.Builder, inr uint16, prefix string) error {
	d, err := m.OpenDir(inr)
	if err != nil {
		if errors.Is(err, fserrors.ErrInvalidDirectoryInode) {
			fmt.Fprintf(b, "FIL %s\n", prefix)
			return nil
		}
		return err
	}

	fmt.Fprintf(b, "DIR %s/\n", prefix)

	for {
		result, err := d.Next()
		if err != nil {
			return err
		}
		switch result.Kind {
		case DirentEndOfDir:
			return nil
		case DirentEmptySlot:
			continue
		case DirentFound:
			if err := m.printTree(b, result.Inumber, prefix+"/"+result.Name); err != nil {
				return err
			}
		}
	}
}

// DirLookup resolves a slash-separated path against startInr (usually
// RootInumber), returning the matched inumber or ErrInodeOutOfRange if no
// entry matches.
func (m *Mount) DirLookup(startInr uint16, path string) (uint16, error) {
	// An empty relative path, or exactly "/", resolves to startInr.
	segments := splitPath(path)
	if len(segments) == 0 {
		return startInr, nil
	}
	return m.dirLookupSegments(startInr, segments)
}

func (m *Mount) dirLookupSegments(inr uint16, segments []string) (uint16, error) {
	d, err := m.OpenDir(inr)
	if err != nil {
		return 0, err
	}

	target := segments[0]
	rest := segments[1:]

	for {
		result, err := d.Next()
		if err != nil {
			return 0, err
		}
		switch result.Kind {
		case DirentEndOfDir:
			return 0, fserrors.New(fserrors.ErrInodeOutOfRange)
		case DirentEmptySlot:
			continue
		case DirentFound:
			// A segment matches an entry whose name begins with it.
			if !strings.HasPrefix(result.Name, target) {
				continue
			}
			if len(rest) == 0 {
				return result.Inumber, nil
			}
			return m.dirLookupSegments(result.Inumber, rest)
		}
	}
}

// splitPath breaks a '/'-separated path into its non-empty segments,
// collapsing runs of '/' the way the source's pos_next_entry_name does.
func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
