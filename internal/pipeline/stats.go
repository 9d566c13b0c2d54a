package pipeline

import "github.com/audioforge/audioforge/internal/queue"

// RunStats aggregates terminal job counts and byte totals for the batch
// summary.
type RunStats struct {
	Total            int
	Succeeded        int
	Failed           int
	Skipped          int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// Summarize projects queue state into RunStats. Output bytes count only
// succeeded jobs; skipped and failed jobs contribute input bytes only.
func Summarize(q *queue.Queue) RunStats {
	var s RunStats
	for _, j := range q.Snapshot() {
		s.Total++
		s.TotalInputBytes += j.SizeBytes
		switch j.Status {
		case queue.StatusSucceeded:
			s.Succeeded++
			s.TotalOutputBytes += outputSize(j.OutputPath)
		case queue.StatusFailed:
			s.Failed++
		case queue.StatusSkipped:
			s.Skipped++
		}
	}
	return s
}
