// Package report exports the allocated-inode table as CSV, the same
// information `ScanPrint` renders as text, grounded on the teacher's
// disks.DiskGeometry pattern of gocsv struct tags.
package report

import (
	"io"

	"github.com/dargueta/uv6fs/drivers/unixv6"
	"github.com/gocarina/gocsv"
)

// InodeRecord is one row of the report: an allocated inode's number, kind
// ("DIR" or "FIL"), and size in bytes.
type InodeRecord struct {
	Inumber uint16 `csv:"inode"`
	Kind    string `csv:"kind"`
	Size    uint32 `csv:"size"`
}

// Collect walks every inode sector of the mounted filesystem and returns one
// InodeRecord per allocated inode, in inumber order.
func Collect(m *unixv6.Mount) ([]InodeRecord, error) {
	var records []InodeRecord
	for i := uint16(0); i < m.Superblock.Isize*unixv6.InodesPerSector; i++ {
		inode, err := m.InodeRead(i)
		if err != nil {
			continue
		}
		kind := "FIL"
		if inode.IsDirectory() {
			kind = "DIR"
		}
		records = append(records, InodeRecord{Inumber: i, Kind: kind, Size: inode.Size()})
	}
	return records, nil
}

// WriteCSV marshals records as CSV to w.
func WriteCSV(w io.Writer, records []InodeRecord) error {
	return gocsv.Marshal(records, w)
}
