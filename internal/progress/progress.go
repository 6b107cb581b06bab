// Package progress renders the batch progress bar. It satisfies the
// pipeline's Reporter interface; the orchestration core never depends on how
// progress is drawn.
package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar tracks completed files out of the discovered total.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar returns a bar for total files, drawn on stderr so it never
// interleaves with piped stdout output.
func NewBar(total int) *Bar {
	return &Bar{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Converting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		),
	}
}

// Step records one completed file.
func (b *Bar) Step() {
	_ = b.bar.Add(1)
}

// Finish clears the bar.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
}
