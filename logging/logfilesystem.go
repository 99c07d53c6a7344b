package logging

import (
	"os"
)

// LogFile is an append-only log file.
type LogFile interface {
	Append(content []byte) error
	Close() error
}

// LogFileSystem creates log directories and opens log files for appending.
type LogFileSystem interface {
	MkDir(dirname string) error
	Open(name string) (f LogFile, err error)
}

type osLogFile struct {
	f *os.File
}

func (l *osLogFile) Append(content []byte) (err error) {
	_, err = l.f.Write(content)
	return
}

func (l *osLogFile) Close() error {
	return l.f.Close()
}

// LogFileSystemImpl is the LogFileSystem backed by the local disk.
type LogFileSystemImpl struct {
}

// MkDir creates the directory and any missing parents.
func (fs *LogFileSystemImpl) MkDir(name string) error {
	return os.MkdirAll(name, 0755)
}

// Open opens the file for appending, creating it with owner-only permissions if needed.
func (fs *LogFileSystemImpl) Open(name string) (LogFile, error) {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &osLogFile{f: f}, nil
}
