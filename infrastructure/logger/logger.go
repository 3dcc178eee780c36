package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	env := os.Getenv("ENV")
	logger.Out = os.Stdout

	// LOG_TO_FILE=true writes to logs/<date><env>.log, stdout otherwise (systemd/docker friendly).
	if os.Getenv("LOG_TO_FILE") == "true" {
		if f, err := openLogFile(env); err != nil {
			log.Warnf("Failed to open log file: %v, falling back to stdout", err)
		} else {
			logger.Out = f
		}
	}

	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}

	level := log.DebugLevel
	if env == "prod" || env == "production" {
		level = log.InfoLevel
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := log.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)
}

func openLogFile(env string) (*os.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logsDir := filepath.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	filePath := filepath.Join(logsDir, fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), env))
	return os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

// GetLogger returns an entry annotated with the caller's function, file and line
func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	functionObject := runtime.FuncForPC(function)
	entry := logger.WithFields(log.Fields{
		"requestId": time.Now().UnixNano() / int64(time.Millisecond),
		"function":  functionObject.Name(),
		"file":      file,
		"line":      line,
	})

	return entry
}

// SetLevel changes the level at runtime
func SetLevel(level log.Level) {
	logger.SetLevel(level)
}

// SetOutput redirects the log stream, e.g. to stderr when stdout carries command output
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
