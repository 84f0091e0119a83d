// Package progress defines the progress-reporter capability consumed by the
// batch driver: anything that can take one tick per completed unit of work
// and be closed when the batch ends.
//
// The interface is deliberately narrow so that a terminal progress bar, a
// metrics counter, or a no-op reporter are all interchangeable. The default
// implementation is a github.com/schollz/progressbar/v3 bar, whose
// *ProgressBar satisfies Reporter directly.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives progress updates for a batch. Add is called exactly once
// per completed unit; Close is guaranteed to be called when the batch ends,
// on every exit path.
type Reporter interface {
	Add(n int) error
	Close() error
}

// Bar returns a terminal progress bar sized for total units, writing to
// stderr so that it does not interleave with the program's stdout.
func Bar(total int) Reporter {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

type discard struct{}

func (discard) Add(int) error { return nil }
func (discard) Close() error  { return nil }

// Discard returns a Reporter that drops every update. Use it to disable
// progress reporting entirely, e.g. in tests or non-interactive runs.
func Discard() Reporter {
	return discard{}
}
