// Package diagnostics implements the per-node error and data file logging
// described in spec.md §6.4: optional plain-text files opened once at
// startup and appended to for the life of the process, the way the
// teacher's saver package opens one output file per connection and keeps
// writing to it until rotation (saver.go's Connection.Writer).
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Sink owns the optional errors_<addr>.txt and data_<addr>.txt files a node
// may be configured to keep. Either file is nil when its corresponding
// config flag (Config.ErrorsToFile / Config.DataToFile) is false, in which
// case LogError / LogData are no-ops.
type Sink struct {
	mu      sync.Mutex
	errFile io.WriteCloser
	dataFile io.WriteCloser
}

// NewSink opens errors_<addr>.txt when errorsToFile is true and
// data_<addr>.txt when dataToFile is true, both in append mode, creating
// them if necessary. Either argument may be false to skip that file
// entirely.
func NewSink(addr uint8, errorsToFile, dataToFile bool) (*Sink, error) {
	s := &Sink{}
	if errorsToFile {
		f, err := os.OpenFile(fmt.Sprintf("errors_%d.txt", addr), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("diagnostics: opening error file: %w", err)
		}
		s.errFile = f
	}
	if dataToFile {
		f, err := os.OpenFile(fmt.Sprintf("data_%d.txt", addr), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			if s.errFile != nil {
				s.errFile.Close()
			}
			return nil, fmt.Errorf("diagnostics: opening data file: %w", err)
		}
		s.dataFile = f
	}
	return s, nil
}

// LogError appends a timestamped, formatted line to the error file. It is a
// no-op when the file was not opened.
func (s *Sink) LogError(format string, args ...interface{}) {
	if s.errFile == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.errFile, "%s %s\n", time.Now().Format(time.RFC3339Nano), fmt.Sprintf(format, args...))
}

// LogData appends a hex dump of a raw DATA frame to the data file. It is a
// no-op when the file was not opened.
func (s *Sink) LogData(raw []byte) {
	if s.dataFile == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.dataFile, "%s %x\n", time.Now().Format(time.RFC3339Nano), raw)
}

// Close closes whichever files were opened.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.errFile != nil {
		err = s.errFile.Close()
	}
	if s.dataFile != nil {
		if dErr := s.dataFile.Close(); dErr != nil && err == nil {
			err = dErr
		}
	}
	return err
}
