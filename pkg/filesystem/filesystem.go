// Package filesystem provides the OS-backed implementation of types.FS.
package filesystem

import (
	"io/fs"
	"os"

	"github.com/otiai10/copy"
)

// OS implements types.FS against the real filesystem
type OS struct{}

// NewOS returns a filesystem backed by the os package
func NewOS() *OS {
	return &OS{}
}

func (*OS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (*OS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (*OS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (*OS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (*OS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (*OS) Remove(name string) error {
	return os.Remove(name)
}

func (*OS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// CopyTree copies a directory tree preserving modes and symlinks.
// Implements types.TreeCopier.
func (*OS) CopyTree(src, dst string) error {
	return copy.Copy(src, dst, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
	})
}
