package logging

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/archlinux/archwiki-sub029/testutils"

	"github.com/stretchr/testify/assert"
)

func TestFileAccessLogger(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	fileSystem := &mockFileSystem{fmap: make(map[string]LogFile)}
	logger, err := NewFileAccessLogger(fileSystem, "/var/log/abusefilter", testutils.NewTestLogger(t))
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}
	logger.(*filelogAccessLogger).now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	// Act
	logger.LogProtectedVarsAccess("Admin", []string{"user_unnamed_ip"})
	logger.LogProtectedVarsAccess("Checker", []string{"user_unnamed_ip", "other_protected_variable"})

	// Assert
	log := fileSystem.Get(filepath.Join("/var/log/abusefilter", FileName))
	expected := `{"timestamp":"2024-03-01T12:00:00Z","operationName":"ViewProtectedVariables","category":"AbuseFilterProtectedVarsAccessLog","viewer":"Admin","variables":["user_unnamed_ip"]}` + "\n" +
		`{"timestamp":"2024-03-01T12:00:00Z","operationName":"ViewProtectedVariables","category":"AbuseFilterProtectedVarsAccessLog","viewer":"Checker","variables":["user_unnamed_ip","other_protected_variable"]}` + "\n"
	assert.Equal(expected, log)
}

func TestFileAccessLoggerClose(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	fileSystem := &mockFileSystem{fmap: make(map[string]LogFile)}
	logger, err := NewFileAccessLogger(fileSystem, "logs", testutils.NewTestLogger(t))
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	// Act
	err = logger.(io.Closer).Close()

	// Assert
	assert.Nil(err)
	assert.True(fileSystem.fmap[filepath.Join("logs", FileName)].(*mockFile).Closed)
}

func TestZerologAccessLogger(t *testing.T) {
	assert := assert.New(t)

	// Arrange
	var buf bytes.Buffer
	zl, err := NewLogger("info", &buf)
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	// Act
	NewZerologAccessLogger(zl).LogProtectedVarsAccess("Admin", []string{"user_unnamed_ip"})

	// Assert
	out := buf.String()
	assert.True(strings.Contains(out, "Protected variables viewed"))
	assert.True(strings.Contains(out, "Admin"))
	assert.True(strings.Contains(out, "user_unnamed_ip"))
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	assert := assert.New(t)

	_, err := NewLogger("loud", &bytes.Buffer{})

	assert.Error(err)
}

type mockFile struct {
	Content string
	Closed  bool
}

func (fs *mockFile) Append(content []byte) (err error) {
	fs.Content = fs.Content + string(content)
	return nil
}

func (fs *mockFile) Close() error {
	fs.Closed = true
	return nil
}

type mockFileSystem struct {
	fmap map[string]LogFile
}

func (fs *mockFileSystem) MkDir(name string) error {
	return nil
}

func (fs *mockFileSystem) Open(name string) (f LogFile, err error) {
	f = &mockFile{}
	fs.fmap[name] = f
	return f, nil
}

func (fs *mockFileSystem) Get(name string) (content string) {
	return fs.fmap[name].(*mockFile).Content
}
