package config

import (
	"os"
)

// FileSystem is the interface to read config files.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

// NewFileSystem creates a FileSystem that uses the real OS file system.
func NewFileSystem() FileSystem {
	return &fileSystemImpl{}
}

type fileSystemImpl struct{}

func (fs *fileSystemImpl) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}
