package records

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gravitrone/datafiles/internal/api"
)

// Detail is a record together with the storage token its links need.
type Detail struct {
	Record api.Record
	Token  string
}

// Download is a token-authorized link to one attachment.
type Download struct {
	Slot     int
	Filename string
	URL      string
}

// Download returns the link for a 1-based slot, if the slot holds a file.
func (d *Detail) Download(slot int) (Download, bool) {
	file := d.Record.Attachment(slot)
	if file == nil {
		return Download{}, false
	}
	name := file.Filename
	if name == "" {
		name = fmt.Sprintf("File %d", slot)
	}
	return Download{
		Slot:     slot,
		Filename: name,
		URL:      api.DownloadURL(*file, d.Token),
	}, true
}

// LocalName is a file name safe to create in a local directory. Directory
// components in the remote name are dropped.
func (d Download) LocalName() string {
	name := filepath.Base(strings.ReplaceAll(d.Filename, "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return fmt.Sprintf("file_%d", d.Slot)
	}
	return name
}

// Downloads lists the links of every present slot in slot order.
func (d *Detail) Downloads() []Download {
	var out []Download
	for slot := 1; slot <= api.SlotCount; slot++ {
		if dl, ok := d.Download(slot); ok {
			out = append(out, dl)
		}
	}
	return out
}

// FormatTimestamp renders t as "D Mon YYYY, H:M" in local time, without zero
// padding. The zero time renders as "-".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.Local()
	return fmt.Sprintf("%d %s %d, %d:%d", t.Day(), t.Format("Jan"), t.Year(), t.Hour(), t.Minute())
}
