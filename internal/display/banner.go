package display

import (
	"fmt"
	"os"

	"github.com/audioforge/audioforge/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Cyan if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Cyan)
	}
	fmt.Fprint(os.Stdout, `    _             _ _       _____
   / \  _   _  __| (_) ___ |  ___|__  _ __ __ _  ___
  / _ \| | | |/ _`+"`"+` | |/ _ \| |_ / _ \| '__/ _`+"`"+` |/ _ \
 / ___ \ |_| | (_| | | (_) |  _| (_) | | | (_| |  __/
/_/   \_\__,_|\__,_|_|\___/|_|  \___/|_|  \__, |\___|
                                          |___/
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
