package main

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v2"
)

// progressBarWidth is the width of the bar in characters.
const progressBarWidth = 40

// bar lazily creates a progress bar once the total is known. A nil writer
// or unknown total disables output.
type bar struct {
	mu    sync.Mutex
	w     io.Writer
	desc  string
	pb    *progressbar.ProgressBar
	total int
}

func newBar(w io.Writer, desc string) *bar {
	return &bar{w: w, desc: desc}
}

func (b *bar) set(done, total int) {
	if b == nil || b.w == nil || total <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pb == nil || b.total != total {
		b.total = total
		b.pb = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetDescription(b.desc),
			progressbar.OptionSetWidth(progressBarWidth),
		)
	}
	b.pb.Set(done)
	if done >= total {
		b.pb.Finish()
		io.WriteString(b.w, "\n")
	}
}

// bytes adapts set to the download callback.
func (b *bar) bytes(written, total int64) {
	b.set(int(written), int(total))
}
