package progress

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Reporter outputs human-readable progress information for a pipeline run.
// The pipeline is strictly sequential, so the reporter is event-driven:
// each stage reports what it did as it finishes.
type Reporter struct {
	out       io.Writer
	startTime time.Time

	volumes int
	bytes   int64
}

// NewReporter creates a reporter writing to out. A nil out defaults to
// os.Stderr.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stderr
	}
	return &Reporter{out: out}
}

// Start begins a run against the given source URL.
func (r *Reporter) Start(sourceURL string) {
	r.startTime = time.Now()
	fmt.Fprintf(r.out, "[jlcsnap] Fetching volumes from: %s\n", sourceURL)
}

// VolumeRetrieved records a successfully fetched volume.
func (r *Reporter) VolumeRetrieved(name string, size int64) {
	r.volumes++
	r.bytes += size
	fmt.Fprintf(r.out, "[jlcsnap] Retrieved %s (%s)\n", name, FormatBytes(size))
}

// VolumeAbsent records a volume the source does not publish.
func (r *Reporter) VolumeAbsent(name string) {
	fmt.Fprintf(r.out, "[jlcsnap] %s not published, volume set complete\n", name)
}

// Stage announces a pipeline stage.
func (r *Reporter) Stage(msg string) {
	fmt.Fprintf(r.out, "[jlcsnap] %s\n", msg)
}

// Done reports the final artifact and run summary.
func (r *Reporter) Done(artifact string) {
	fmt.Fprintf(r.out, "[jlcsnap] Wrote %s | %d volumes, %s fetched | Total time: %s\n",
		artifact,
		r.volumes,
		FormatBytes(r.bytes),
		formatDuration(time.Since(r.startTime)),
	)
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
