package updater

import (
	"io"

	"github.com/caedis/factorio-mod-downloader/internal/logging"
	"github.com/schollz/progressbar/v3"
)

// progress renders a bar over the batch. A nil bar makes every method a no-op.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(total int, w io.Writer, enabled bool) *progress {
	if !enabled || total == 0 {
		return &progress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	logging.SetBeforeWrite(func() { _ = bar.Clear() })
	return &progress{bar: bar}
}

func (p *progress) describe(mod string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe("Downloading " + mod)
}

func (p *progress) step() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

func (p *progress) finish() {
	if p.bar == nil {
		return
	}
	logging.SetBeforeWrite(nil)
	_ = p.bar.Finish()
}
