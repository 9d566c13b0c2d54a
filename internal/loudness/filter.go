package loudness

import (
	"fmt"
	"strings"

	"github.com/audioforge/audioforge/internal/config"
)

// MeasureFilter returns the pass-1 loudnorm filter: measure only, JSON
// diagnostics on stderr, discarded output.
func MeasureFilter(s config.Settings) string {
	return fmt.Sprintf("loudnorm=I=%g:TP=%g:LRA=%g:print_format=json",
		s.TargetI, s.TargetTP, s.TargetLRA)
}

// ApplyFilter returns the pass-2 loudnorm filter. The three configured
// targets and the four measured values pass through unchanged; linear mode
// with the measured offset gives the precise correction the two-pass
// protocol exists for.
func ApplyFilter(s config.Settings, m *Measurement) string {
	return fmt.Sprintf(
		"loudnorm=I=%g:TP=%g:LRA=%g:measured_I=%g:measured_TP=%g:measured_LRA=%g:measured_thresh=%g:offset=%g:linear=true:print_format=summary",
		s.TargetI, s.TargetTP, s.TargetLRA,
		m.InputI, m.InputTP, m.InputLRA, m.InputThresh, m.TargetOffset)
}

// OnePassFilter returns the single-invocation loudnorm filter: targets
// only, dynamic mode. Lower accuracy than two-pass, one engine run.
func OnePassFilter(s config.Settings) string {
	return fmt.Sprintf("loudnorm=I=%g:TP=%g:LRA=%g:print_format=summary",
		s.TargetI, s.TargetTP, s.TargetLRA)
}

// FadeFilters returns afade filter strings for the configured fade-in and
// fade-out. The fade-out needs the source duration to anchor its start
// point; it is omitted when the duration is unknown.
func FadeFilters(s config.Settings, duration float64) []string {
	var filters []string
	if s.FadeIn > 0 {
		filters = append(filters, fmt.Sprintf("afade=t=in:st=0:d=%g", s.FadeIn))
	}
	if s.FadeOut > 0 && duration > 0 {
		start := duration - s.FadeOut
		if start < 0 {
			start = 0
		}
		filters = append(filters, fmt.Sprintf("afade=t=out:st=%g:d=%g", start, s.FadeOut))
	}
	return filters
}

// Chain joins filters into an -af argument value. Empty when no filters apply.
func Chain(filters []string) string {
	return strings.Join(filters, ",")
}
