package logging

import (
	"fmt"
	"sync"
)

var (
	globalLogger Logger
	globalMu     sync.RWMutex
	initOnce     sync.Once
)

// GetGlobalLogger returns the process-wide logger, lazily initialized with a
// stdout adapter so early startup code can always log.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	if globalLogger != nil {
		defer globalMu.RUnlock()
		return globalLogger
	}
	globalMu.RUnlock()

	initOnce.Do(func() {
		logger := NewMultiLogger()
		_ = logger.AddAdapter(NewStdoutAdapter("stdout", "json"))
		SetGlobalLogger(logger)
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// AdapterSettings mirrors the logging adapter section of the YAML config.
type AdapterSettings struct {
	Name    string
	Type    string
	Enabled bool
	Options map[string]interface{}
}

// Setup builds the global logger from configuration. Unknown adapter types
// are an error so config typos surface at startup instead of silently
// dropping logs.
func Setup(level, format string, adapters []AdapterSettings) error {
	logger := NewMultiLogger()
	logger.SetLevel(ParseLogLevel(level))

	if len(adapters) == 0 {
		adapters = []AdapterSettings{{Name: "stdout", Type: "stdout", Enabled: true}}
	}

	for _, settings := range adapters {
		if !settings.Enabled {
			continue
		}

		adapter, err := buildAdapter(settings, format)
		if err != nil {
			return err
		}
		if err := logger.AddAdapter(adapter); err != nil {
			return err
		}
	}

	SetGlobalLogger(logger)
	return nil
}

func buildAdapter(settings AdapterSettings, format string) (LogAdapter, error) {
	switch settings.Type {
	case "stdout":
		if f, ok := settings.Options["format"].(string); ok && f != "" {
			format = f
		}
		return NewStdoutAdapter(settings.Name, format), nil
	case "file":
		path, _ := settings.Options["path"].(string)
		if path == "" {
			path = "logs/hiredesk.log"
		}
		return NewFileAdapter(settings.Name, path)
	default:
		return nil, fmt.Errorf("unknown logging adapter type %q", settings.Type)
	}
}
