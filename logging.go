package main

import (
	"fmt"
	"log"
	"os"
)

// setupLogging directs the standard logger to the given file, keeping one
// rotated history file. An empty path leaves logging on stderr, which is
// what containerized deployments want; the returned file is nil then.
func setupLogging(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}

	// Keep a single backup
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

	log.SetOutput(f)
	return f, nil
}
