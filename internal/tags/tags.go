// Package tags stores file tags in the user.tags extended attribute
// as a comma-separated list.
package tags

import (
	"errors"
	"strings"

	"github.com/pkg/xattr"
)

// Attr is the extended attribute holding a file's tags.
const Attr = "user.tags"

// Store reads and writes tags on files and directories. Symlinks are
// followed, so tagging a link tags its target.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Get returns the tags on path. A file with no tag attribute has no
// tags; a missing file is an error.
func (s *Store) Get(path string) ([]string, error) {
	raw, err := xattr.Get(path, Attr)
	if err != nil {
		if errors.Is(err, xattr.ENOATTR) {
			return []string{}, nil
		}
		return nil, err
	}
	return parseTags(string(raw)), nil
}

// Set replaces the tags on path. An empty list removes the attribute
// entirely.
func (s *Store) Set(path string, tags []string) error {
	if len(tags) == 0 {
		err := xattr.Remove(path, Attr)
		if err != nil && errors.Is(err, xattr.ENOATTR) {
			return nil
		}
		return err
	}
	return xattr.Set(path, Attr, []byte(strings.Join(tags, ",")))
}

// parseTags splits a comma-separated tag list, trimming whitespace
// around each entry.
func parseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, len(parts))
	for i, p := range parts {
		tags[i] = strings.TrimSpace(p)
	}
	return tags
}

// Parse turns a user-supplied comma-separated list into tags, the same
// way the stored attribute is read.
func Parse(raw string) []string {
	return parseTags(raw)
}
