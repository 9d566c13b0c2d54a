// Command audioforge is the batch audio converter and loudness normalizer
// CLI. It converts audio files between formats via ffmpeg, optionally
// applying EBU R128 loudness normalization, with a bounded worker pool and
// a folder-watch mode.
package main

import (
	"fmt"
	"os"
)

// version and commit are set at build time via -ldflags (e.g. Makefile).
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "audioforge: %v\n", err)
		os.Exit(1)
	}
}
