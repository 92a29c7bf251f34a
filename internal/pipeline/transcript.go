package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/vox/internal/repository"
)

const transcriptTimeLayout = "2006-01-02 15:04:05"

// FormatTranscript renders one line per segment, prefixed with the time
// elapsed since startedAt.
func FormatTranscript(startedAt time.Time, segments []repository.Segment) string {
	lines := make([]string, 0, len(segments)+2)
	lines = append(lines, fmt.Sprintf("Started: %s", startedAt.UTC().Format(transcriptTimeLayout)), "")
	for _, seg := range segments {
		elapsed := seg.SpokenAt.Sub(startedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		lines = append(lines, fmt.Sprintf("%s %s => %s", formatElapsedHMS(elapsed), seg.SourceText, seg.TranslatedText))
	}
	return strings.Join(lines, "\n")
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
