package progress

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// BarObserver renders a terminal progress bar. A known total gives a
// determinate bar; an unknown total switches to a spinner.
type BarObserver struct {
	w     io.Writer
	bar   *progressbar.ProgressBar
	total int
}

// NewBarObserver draws onto w.
func NewBarObserver(w io.Writer) *BarObserver {
	return &BarObserver{w: w, total: -1}
}

func (o *BarObserver) Progress(current, total int, label string) {
	if total <= 0 {
		total = 0
	}
	if o.bar == nil || total != o.total {
		o.reset(total)
	}
	o.bar.Describe(label)
	if total > 0 {
		_ = o.bar.Set(current)
	} else {
		_ = o.bar.Add(1)
	}
}

func (o *BarObserver) Finished(err error) {
	if o.bar != nil {
		_ = o.bar.Finish()
		o.bar = nil
	}
	o.total = -1
	if err != nil {
		fmt.Fprintf(o.w, "\nrun failed: %v\n", err)
		return
	}
	fmt.Fprintln(o.w, "\nrun complete")
}

func (o *BarObserver) reset(total int) {
	if o.bar != nil {
		_ = o.bar.Finish()
	}
	limit := total
	if limit == 0 {
		limit = -1
	}
	o.bar = progressbar.NewOptions(limit,
		progressbar.OptionSetWriter(o.w),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
	)
	o.total = total
}
