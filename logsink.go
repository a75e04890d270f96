package dfsenv

import (
	"fmt"
	"time"
)

const (
	// First formatting attempt; covers the overwhelming majority of lines.
	logSinkSmallBufSize = 512
	// Single retry; content beyond this is truncated, never retried again.
	logSinkLargeBufSize = 30000
)

// ThreadIDFunc returns an identifier for the calling thread of execution.
// The sink takes it as a plain function value so it stays decoupled from
// any specific concurrency runtime; callers supply whatever notion of a
// thread id their host engine uses.
type ThreadIDFunc func() uint64

// LogSink formats printf-style diagnostic messages and appends them, one
// line each, to a WritableFile it exclusively owns.
//
// Every line is prefixed with a local timestamp and the caller's thread
// id, ends in exactly one newline, and is flushed immediately. Messages
// longer than the large retry buffer are truncated at its capacity rather
// than failing.
type LogSink struct {
	file WritableFile
	tid  ThreadIDFunc
}

// NewLogSink creates a LogSink writing to file. Ownership of file passes
// to the sink; closing the sink closes the file. If tid is nil the thread
// id is logged as zero.
func NewLogSink(file WritableFile, tid ThreadIDFunc) *LogSink {
	if tid == nil {
		tid = func() uint64 { return 0 }
	}
	return &LogSink{file: file, tid: tid}
}

// Logv formats and writes one log line.
//
// Formatting is attempted at most twice: once into a small buffer and, if
// the line does not fit, once more into a large one. That caps the worst
// case at two format passes and one extra allocation. Write and flush
// errors have no channel to the caller and are dropped, mirroring the
// best-effort nature of diagnostic logging.
func (l *LogSink) Logv(format string, args ...any) {
	now := time.Now()
	tid := l.tid()

	for _, size := range [2]int{logSinkSmallBufSize, logSinkLargeBufSize} {
		buf := make([]byte, 0, size)
		buf = fmt.Appendf(buf, "%04d/%02d/%02d-%02d:%02d:%02d.%06d %x ",
			now.Year(),
			int(now.Month()),
			now.Day(),
			now.Hour(),
			now.Minute(),
			now.Second(),
			now.Nanosecond()/1e3,
			tid,
		)
		buf = fmt.Appendf(buf, format, args...)

		if len(buf) >= size {
			if size == logSinkSmallBufSize {
				continue // Retry once with the large buffer.
			}
			buf = buf[:size-1] // Truncate, leaving room for the newline.
		}

		// Exactly one trailing newline.
		if len(buf) == 0 || buf[len(buf)-1] != '\n' {
			buf = append(buf, '\n')
		}

		_ = l.file.Append(buf)
		_ = l.file.Flush()
		break
	}
}

// Close closes the owned file. If this sink is the current process-wide
// sink, the pointer is cleared.
func (l *LogSink) Close() error {
	if currentLogSink == l {
		currentLogSink = nil
	}
	return l.file.Close()
}

// currentLogSink is a process-wide alias (never an owner) of one LogSink.
// It is intentionally unsynchronized: the contract is configure-once at
// initialization, before concurrent access begins. Reconfiguring it while
// other goroutines log through it is a data race.
var currentLogSink *LogSink

// SetCurrentLogSink installs s as the process-wide diagnostic sink.
// Call it once during initialization; see currentLogSink's contract.
func SetCurrentLogSink(s *LogSink) {
	currentLogSink = s
}

// CurrentLogSink returns the process-wide diagnostic sink, or nil when
// none is installed.
func CurrentLogSink() *LogSink {
	return currentLogSink
}
