package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/extract"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// printer renders snapshots to a writer, as a table or as JSON lines. It
// serializes writes: watch mode can deliver snapshots from the engine's
// emission goroutine while a forced scan prints inline.
type printer struct {
	mu     sync.Mutex
	w      io.Writer
	asJSON bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, asJSON: asJSON}
}

// Consume implements schemas.SnapshotConsumer.
func (p *printer) Consume(_ context.Context, snap schemas.DetectionSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.asJSON {
		enc := jsonAPI.NewEncoder(p.w)
		return enc.Encode(snap)
	}

	fmt.Fprintf(p.w, "snapshot %s (pass %s, %d candidates)\n",
		snap.SnapshotID, snap.PassID, len(snap.Records))

	tw := tabwriter.NewWriter(p.w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTITLE\tQUALITY\tFORMAT\tSIZE\tSUGGESTED NAME\tURL")
	for i := range snap.Records {
		r := &snap.Records[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.MediaKind, r.Title, r.QualityLabel, r.Format,
			formatSize(r.FileSizeBytes), extract.SuggestedFileName(r), r.SourceURL)
	}
	return tw.Flush()
}

func formatSize(bytes *int64) string {
	if bytes == nil {
		return "-"
	}
	const unit = 1024
	b := *bytes
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// fanout forwards each snapshot to every sink, returning the first error
// after all sinks have seen it.
type fanout struct {
	sinks []schemas.SnapshotConsumer
}

func newFanout(sinks ...schemas.SnapshotConsumer) *fanout {
	return &fanout{sinks: sinks}
}

func (f *fanout) Consume(ctx context.Context, snap schemas.DetectionSnapshot) error {
	var firstErr error
	for _, s := range f.sinks {
		if err := s.Consume(ctx, snap); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
