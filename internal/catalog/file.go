// Package catalog defines the file records dankfind indexes and the
// in-memory catalogue that holds them.
package catalog

import (
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Kind classifies a filesystem entry. The zero value is KindRegular.
type Kind int

const (
	KindRegular Kind = iota
	KindDirectory
	KindSymlink
	KindBlockDevice
	KindCharDevice
	KindFIFO
	KindSocket
)

var kindNames = [...]string{
	KindRegular:     "regular file",
	KindDirectory:   "directory",
	KindSymlink:     "symlink",
	KindBlockDevice: "block device",
	KindCharDevice:  "char device",
	KindFIFO:        "fifo",
	KindSocket:      "socket",
}

// KindOf maps file mode bits to a Kind. Char devices carry both device
// bits, so they are checked before block devices.
func KindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDirectory
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode&fs.ModeCharDevice != 0:
		return KindCharDevice
	case mode&fs.ModeDevice != 0:
		return KindBlockDevice
	case mode&fs.ModeNamedPipe != 0:
		return KindFIFO
	case mode&fs.ModeSocket != 0:
		return KindSocket
	default:
		return KindRegular
	}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "regular file"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the serialized kind names case-insensitively.
func (k *Kind) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("invalid file kind %q", string(text))
}

// File is one catalogue entry. Path is the identity: a catalogue never
// holds two records for the same path. DataType is "" when the content
// type is unknown, which is distinct from "no type". Tags is never nil.
type File struct {
	Path         string    `json:"path"`
	Kind         Kind      `json:"file_type"`
	DataType     string    `json:"data_type,omitempty"`
	Tags         []string  `json:"tags"`
	LastModified time.Time `json:"last_modified"`
	LastIndexed  time.Time `json:"last_indexed"`
}

// Name returns the base name component of the record's path.
func (f *File) Name() string {
	if i := strings.LastIndexByte(f.Path, '/'); i >= 0 {
		return f.Path[i+1:]
	}
	return f.Path
}

// HasTag reports whether tag is in the record's tag set.
func (f *File) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
