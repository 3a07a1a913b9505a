package catalog

import (
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// TagSource supplies the tag set for a path. The xattr tag store
// implements it; tests substitute their own.
type TagSource interface {
	Get(path string) ([]string, error)
}

// Builder constructs catalogue records from filesystem paths.
type Builder struct {
	tags TagSource
}

// NewBuilder returns a Builder. A nil TagSource leaves every record's
// tag set empty.
func NewBuilder(tags TagSource) *Builder {
	return &Builder{tags: tags}
}

// Build stats path and assembles its record. Symlinks are recorded as
// symlinks, not followed. Content sniffing runs only for regular files
// and a sniff failure fails the build; tag store failures degrade to an
// empty tag set.
func (b *Builder) Build(path string) (*File, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	f := &File{
		Path:         path,
		Kind:         KindOf(info.Mode()),
		Tags:         []string{},
		LastModified: info.ModTime().UTC(),
		LastIndexed:  time.Now().UTC(),
	}

	if f.Kind == KindRegular {
		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, err
		}
		// mimetype appends charset parameters to text types; Mime terms
		// match against the bare type.
		dataType := mtype.String()
		if i := strings.IndexByte(dataType, ';'); i >= 0 {
			dataType = strings.TrimSpace(dataType[:i])
		}
		f.DataType = dataType
	}

	if b.tags != nil {
		if tags, err := b.tags.Get(path); err == nil && len(tags) > 0 {
			f.Tags = tags
		}
	}

	return f, nil
}
