package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

// setupLogging sends the standard logger to path, keeping the previous run's
// file as path.1. With echo set, lines are also written to stderr.
// It returns the opened log file so callers can close it on shutdown.
func setupLogging(path string, echo bool) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}

	_ = os.Remove(path + ".1")
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".1"); err != nil {
			return nil, fmt.Errorf("failed to rotate existing log: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var out io.Writer = f
	if echo {
		out = io.MultiWriter(f, os.Stderr)
	}
	log.SetOutput(out)
	return f, nil
}
