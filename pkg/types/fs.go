// Package types holds the small set of interfaces shared across loom's
// packages. Mutation primitives operate against the FS abstraction so
// they can be exercised against an in-memory filesystem in tests.
package types

import (
	"io/fs"
)

// FS is the filesystem surface loom mutates through
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Removal operations
	Remove(name string) error
	RemoveAll(path string) error
}

// TreeCopier is an optional FS capability. The OS-backed filesystem
// implements it to copy directory trees with modes and symlinks
// preserved; implementations without it fall back to a plain walk.
type TreeCopier interface {
	CopyTree(src, dst string) error
}
