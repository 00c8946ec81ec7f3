package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// openStdioLog opens path for appending, creating its directory, and
// writes a marker so runs can be told apart in one file.
func openStdioLog(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("stdio log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(f, "--- pixeltoy %s pid %d ---\n", time.Now().Format(time.RFC3339), os.Getpid()); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
