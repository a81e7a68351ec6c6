package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileAdapter appends json log entries to a file.
type FileAdapter struct {
	name string
	file *os.File
	mu   sync.Mutex
}

// NewFileAdapter creates a new file adapter, creating parent directories as
// needed.
func NewFileAdapter(name, path string) (*FileAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &FileAdapter{
		name: name,
		file: file,
	}, nil
}

// Write writes a log entry to the file
func (a *FileAdapter) Write(entry *LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	output, err := formatJSON(entry)
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	_, err = fmt.Fprintln(a.file, output)
	return err
}

// Close closes the underlying file
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}

// Name returns the name of the adapter
func (a *FileAdapter) Name() string {
	return a.name
}
