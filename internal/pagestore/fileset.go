package pagestore

import (
	"os"
	"path/filepath"
)

// FileSet names the on-disk file backing one index. It is a direct
// simplification of the teacher's storage.FileSet/LocalFileSet: the index
// file is small and page ids are monotonic with no free list (spec.md
// §6.5), so there is no need for the teacher's multi-segment layout.
type FileSet struct {
	Dir  string
	Name string
}

func (fs FileSet) path() string {
	return filepath.Join(fs.Dir, fs.Name)
}

// Exists reports whether the backing file is already present (spec.md
// §6.2).
func (fs FileSet) Exists() bool {
	_, err := os.Stat(fs.path())
	return err == nil
}

func (fs FileSet) openFile(create bool) (*os.File, error) {
	if err := os.MkdirAll(fs.Dir, 0o755); err != nil {
		return nil, err
	}
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE | os.O_EXCL
	}
	return os.OpenFile(fs.path(), flags, FileMode0644)
}
