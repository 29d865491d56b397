// ABOUTME: Log destination setup
// ABOUTME: TUI mode logs to the file only, streaming mode to stdout as well
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
)

// setupLogging points the standard logger at path. The returned func
// closes the file.
func setupLogging(path string, useTUI bool, stdout io.Writer) (func(), error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(stdout, f))
	}

	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
