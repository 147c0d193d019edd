package dataset

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// progress wraps the terminal progress bar; the zero value is a no-op,
// so disabled progress needs no branching at call sites.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(total int, desc string, enabled bool) *progress {
	if !enabled || total <= 0 {
		return &progress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &progress{bar: bar}
}

func (p *progress) Add(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

func (p *progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
