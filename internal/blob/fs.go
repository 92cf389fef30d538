package blob

import (
	"io/fs"
	"os"
)

// FS is the filesystem surface the blob store needs.
type FS interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
	Remove(name string) error
	ReadDir(name string) ([]os.DirEntry, error)
	Open(name string) (fs.File, error)
	Stat(name string) (fs.FileInfo, error)
}

// OSFS is the FS backed by the host filesystem.
type OSFS struct{}

func (OSFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (OSFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFS) Remove(name string) error { return os.Remove(name) }

func (OSFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

func (OSFS) Open(name string) (fs.File, error) { return os.Open(name) }

func (OSFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
