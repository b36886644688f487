// File: internal/bridge/recorder.go
package bridge

import (
	"fmt"
	"time"
)

// recorder accumulates the ordered, timestamped execution log returned to the
// caller in the result's execution_logs field. One bridge invocation is
// single-threaded, so no locking is needed.
type recorder struct {
	now     func() time.Time
	entries []string
}

func newRecorder(now func() time.Time) *recorder {
	if now == nil {
		now = time.Now
	}
	return &recorder{now: now}
}

func (r *recorder) Log(msg string) {
	r.entries = append(r.entries, fmt.Sprintf("[%s] %s", r.now().Format(time.RFC3339Nano), msg))
}

func (r *recorder) Logf(format string, args ...any) {
	r.Log(fmt.Sprintf(format, args...))
}

func (r *recorder) Entries() []string {
	return r.entries
}
