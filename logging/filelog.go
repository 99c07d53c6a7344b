package logging

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// FileName is the access log file name.
const FileName = "protected_vars_access.log"

type filelogAccessLogger struct {
	fileSystem   LogFileSystem
	file         LogFile
	logger       zerolog.Logger
	now          func() time.Time
	writelogline chan []byte
	writeDone    chan bool
}

// NewFileAccessLogger creates an access logger that appends one JSON line per access to FileName in dir.
func NewFileAccessLogger(fileSystem LogFileSystem, dir string, logger zerolog.Logger) (ProtectedVarsAccessLogger, error) {
	r := &filelogAccessLogger{fileSystem: fileSystem, logger: logger, now: time.Now}

	err := fileSystem.MkDir(dir)
	if err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create the directory while initializing")
		return nil, err
	}

	name := filepath.Join(dir, FileName)
	r.file, err = fileSystem.Open(name)
	if err != nil {
		logger.Error().Err(err).Str("file", name).Msg("Failed to open the file at initiation")
		return nil, err
	}

	r.writelogline = make(chan []byte)
	r.writeDone = make(chan bool)
	go func() {
		for v := range r.writelogline {
			if err := r.file.Append(append(v, '\n')); err != nil {
				r.logger.Error().Err(err).Msg("Failed to append to the access log")
			}
			r.writeDone <- true
		}
	}()

	return r, nil
}

func (l *filelogAccessLogger) LogProtectedVarsAccess(viewer string, vars []string) {
	lg := &protectedVarsAccessLogEntry{
		Timestamp:     l.now().UTC().Format(time.RFC3339),
		OperationName: accessOperationName,
		Category:      accessCategory,
		Viewer:        viewer,
		Variables:     vars,
	}

	bb, err := json.Marshal(lg)
	if err != nil {
		l.logger.Error().Err(err).Msg("Error while marshaling JSON access log")
		return
	}

	l.writelogline <- bb
	<-l.writeDone
}

// Close stops the writer and closes the log file. The logger must not be used afterwards.
func (l *filelogAccessLogger) Close() error {
	close(l.writelogline)
	return l.file.Close()
}
